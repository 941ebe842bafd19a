package usecase_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadrisk/acadrisk/internal/application/usecase"
	"github.com/acadrisk/acadrisk/internal/domain/event"
	"github.com/acadrisk/acadrisk/pkg/events"
	"github.com/acadrisk/acadrisk/pkg/observability"
	"github.com/acadrisk/acadrisk/pkg/testutil"
)

func decodeBatchCompleted(t *testing.T, evt events.DomainEvent) event.BatchCompleted {
	t.Helper()
	require.Equal(t, event.EventTypeBatchCompleted, evt.EventType())
	var payload struct {
		event.BatchCompleted
		Items json.RawMessage `json:"items"`
	}
	require.NoError(t, json.Unmarshal(evt.Payload(), &payload))
	return payload.BatchCompleted
}

func TestProcessBatchRequest_Execute(t *testing.T) {
	newHandler := func(results *mockEventPublisher) *usecase.ProcessBatchRequest {
		batch := usecase.NewPredictBatch(heuristicPredictor(), nil, &mockEventPublisher{}, 0, observability.Discard())
		return usecase.NewProcessBatchRequest(batch, results, observability.Discard())
	}

	t.Run("publishes a summary of the scored batch", func(t *testing.T) {
		results := &mockEventPublisher{}
		payload, err := json.Marshal(map[string]any{
			"batch_id": testutil.TestBatchID.String(),
			"records":  []map[string]any{testutil.StrugglingStudent(), testutil.StrongStudent()},
		})
		require.NoError(t, err)

		require.NoError(t, newHandler(results).Execute(context.Background(), payload))

		require.Len(t, results.published, 1)
		got := decodeBatchCompleted(t, results.published[0])
		assert.Equal(t, testutil.TestBatchID, got.BatchID)
		assert.Equal(t, 2, got.Records)
		assert.Empty(t, got.Error)
		assert.Equal(t, map[string]int{"high": 1, "low": 1}, got.Categories)
	})

	t.Run("reports inference failure in the event", func(t *testing.T) {
		results := &mockEventPublisher{}
		payload := []byte(`{"records":[{"attendance":"ninety"}]}`)

		require.NoError(t, newHandler(results).Execute(context.Background(), payload))

		require.Len(t, results.published, 1)
		got := decodeBatchCompleted(t, results.published[0])
		assert.Contains(t, got.Error, "inference")
		assert.Nil(t, got.Categories)
	})

	t.Run("rejects undecodable payloads", func(t *testing.T) {
		results := &mockEventPublisher{}

		err := newHandler(results).Execute(context.Background(), []byte(`not json`))

		assert.ErrorIs(t, err, usecase.ErrInvalidRequest)
		assert.Empty(t, results.published)
	})
}
