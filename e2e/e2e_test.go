//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var serviceURL string

func TestMain(m *testing.M) {
	serviceURL = os.Getenv("PREDICTION_URL")
	if serviceURL == "" {
		serviceURL = "http://localhost:8000"
	}

	// Wait for the service to be ready
	for i := 0; i < 30; i++ {
		resp, err := http.Get(serviceURL + "/readyz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		time.Sleep(2 * time.Second)
	}

	os.Exit(m.Run())
}

func postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, serviceURL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token := os.Getenv("PREDICTION_TOKEN"); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestHealthCheck(t *testing.T) {
	resp, err := http.Get(serviceURL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestSinglePrediction(t *testing.T) {
	resp := postJSON(t, "/predict/single", map[string]any{
		"student_id": "E2E-0001",
		"features": map[string]any{
			"attendance":            5,
			"study_hours":           5,
			"internal_marks":        40,
			"assignments_submitted": 2,
			"activities":            "low",
		},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, []any{"low", "medium", "high"}, body["risk_category"])
	assert.Contains(t, []any{"at_risk", "normal"}, body["predicted_label"])
	score, ok := body["risk_score"].(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestBatchPrediction(t *testing.T) {
	resp := postJSON(t, "/predict/batch", map[string]any{
		"records": []map[string]any{
			{"attendance": 95, "study_hours": 30, "activities": "high"},
			{"attendance": 40, "study_hours": 2, "activities": "low"},
		},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		BatchID string           `json:"batch_id"`
		Items   []map[string]any `json:"items"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.BatchID)
	assert.Len(t, body.Items, 2)
}

func TestModelStatus(t *testing.T) {
	resp, err := http.Get(serviceURL + "/diagnostic/model-status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body, "is_fallback")
	assert.Contains(t, body, "class_ordering")
}
