package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/acadrisk/acadrisk/internal/application/dto"
)

const testModel = "../infrastructure/ml/testdata/model.json"

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestPredictCommand(t *testing.T) {
	t.Run("trained model", func(t *testing.T) {
		out, err := runCLI(t, "predict", "--model", testModel,
			"--features", `{"attendance": 95, "study_hours": 30, "internal_marks": 88, "assignments_submitted": 14, "activities": "high"}`)
		require.NoError(t, err)

		var resp dto.PredictionResponse
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, "low", resp.RiskCategory)
		assert.Equal(t, "normal", resp.PredictedLabel)
		assert.InDelta(t, 0.05, resp.RiskScore, 1e-9)
	})

	t.Run("missing artifact falls back to the heuristic", func(t *testing.T) {
		file := writeFile(t, "student.json", `{"attendance": 5, "study_hours": 5, "assignments_submitted": 2}`)
		out, err := runCLI(t, "predict", "--model", filepath.Join(t.TempDir(), "absent.json"), "--file", file, "-o", "yaml")
		require.NoError(t, err)

		var resp map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(out), &resp))
		assert.Equal(t, "high", resp["risk_category"])
	})

	t.Run("requires input", func(t *testing.T) {
		_, err := runCLI(t, "predict", "--model", testModel)
		assert.ErrorContains(t, err, "--features or --file")
	})

	t.Run("rejects non-object input", func(t *testing.T) {
		_, err := runCLI(t, "predict", "--model", testModel, "--features", `[1, 2]`)
		assert.ErrorContains(t, err, "JSON object")
	})
}

func TestBatchCommand(t *testing.T) {
	t.Run("csv input", func(t *testing.T) {
		file := writeFile(t, "records.csv", "attendance,study_hours,internal_marks,assignments_submitted,activities\n"+
			"95,30,88,14,high\n"+
			"50,2,,4,low\n")
		out, err := runCLI(t, "batch", "--model", testModel, "--file", file)
		require.NoError(t, err)

		var resp dto.PredictBatchResponse
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		require.Len(t, resp.Items, 2)
		assert.Equal(t, "low", resp.Items[0].RiskCategory)
		assert.Equal(t, "high", resp.Items[1].RiskCategory)
	})

	t.Run("json envelope input", func(t *testing.T) {
		file := writeFile(t, "records.json", `{"records": [{"attendance": 95, "study_hours": 30}]}`)
		out, err := runCLI(t, "batch", "--model", testModel, "--file", file)
		require.NoError(t, err)
		assert.Contains(t, out, `"items"`)
	})

	t.Run("bad record fails the whole batch", func(t *testing.T) {
		file := writeFile(t, "records.json", `[{"attendance": 95}, {"attendance": "ninety"}]`)
		_, err := runCLI(t, "batch", "--model", testModel, "--file", file)
		assert.Error(t, err)
	})

	t.Run("unknown format", func(t *testing.T) {
		file := writeFile(t, "records.txt", "x")
		_, err := runCLI(t, "batch", "--model", testModel, "--file", file)
		assert.ErrorContains(t, err, "unknown input format")
	})
}

func TestParseCSVRecords(t *testing.T) {
	records, err := parseCSVRecords(strings.NewReader("attendance, activities ,study_hours\n80, medium ,\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, map[string]any{"attendance": 80.0, "activities": "medium"}, records[0])
}

func TestModelInspectCommand(t *testing.T) {
	out, err := runCLI(t, "model", "inspect", "--model", testModel)
	require.NoError(t, err)

	var resp dto.ModelStatusResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.False(t, resp.IsFallback)
	assert.Equal(t, "random_forest", resp.Kind)
	require.NotNil(t, resp.FailIndex)
	assert.Equal(t, 0, *resp.FailIndex)
	assert.Equal(t, []string{"high", "low", "medium"}, resp.Schema.Categories["activities"])
}

func TestTokenCommand(t *testing.T) {
	out, err := runCLI(t, "token", "--secret", "s3cret", "--role", "admin")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(strings.TrimSpace(out), "."))

	t.Setenv("JWT_SECRET", "")
	_, err = runCLI(t, "token", "--secret", "")
	assert.ErrorContains(t, err, "signing key")
}

func TestWriteUnknownFormat(t *testing.T) {
	assert.Error(t, write(&bytes.Buffer{}, "xml", map[string]int{"a": 1}))
}
