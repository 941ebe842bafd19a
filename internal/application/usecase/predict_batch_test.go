package usecase_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadrisk/acadrisk/internal/application/dto"
	"github.com/acadrisk/acadrisk/internal/application/usecase"
	"github.com/acadrisk/acadrisk/internal/domain/model"
	"github.com/acadrisk/acadrisk/internal/domain/service"
	"github.com/acadrisk/acadrisk/pkg/observability"
	"github.com/acadrisk/acadrisk/pkg/testutil"
)

func TestPredictBatch_Execute(t *testing.T) {
	t.Run("scores every record and echoes normalized features", func(t *testing.T) {
		repo := &mockPredictionRepository{}
		publisher := &mockEventPublisher{}
		uc := usecase.NewPredictBatch(heuristicPredictor(), repo, publisher, 10, observability.Discard())

		resp, err := uc.Execute(context.Background(), dto.PredictBatchRequest{
			Records: []map[string]any{
				testutil.StrugglingStudent(),
				testutil.StrongStudent(),
				testutil.LegacyStudent(),
			},
		})

		require.NoError(t, err)
		_, err = uuid.Parse(resp.BatchID)
		require.NoError(t, err)
		require.Len(t, resp.Items, 3)

		assert.Equal(t, "high", resp.Items[0].RiskCategory)
		assert.Equal(t, "low", resp.Items[1].RiskCategory)
		for _, item := range resp.Items {
			require.NotNil(t, item.InputFeatures)
			assert.Equal(t, resp.BatchID, item.BatchID)
		}

		legacy := resp.Items[2].InputFeatures
		v, ok := legacy.Get("assignments_submitted")
		assert.True(t, ok)
		assert.Equal(t, 10.0, v)
		_, ok = legacy.Get("assignments_completed")
		assert.False(t, ok)

		assert.Len(t, repo.saved, 3)
		// one completed event per record plus one at-risk event
		assert.Len(t, publisher.published, 4)
	})

	t.Run("uses the supplied batch id", func(t *testing.T) {
		uc := usecase.NewPredictBatch(heuristicPredictor(), nil, &mockEventPublisher{}, 0, observability.Discard())

		resp, err := uc.Execute(context.Background(), dto.PredictBatchRequest{
			BatchID: testutil.TestBatchID.String(),
			Records: []map[string]any{testutil.StrongStudent()},
		})

		require.NoError(t, err)
		assert.Equal(t, testutil.TestBatchID.String(), resp.BatchID)
	})

	t.Run("empty batch returns no items", func(t *testing.T) {
		oracle := newStubOracle(0.3)
		uc := usecase.NewPredictBatch(stubPredictor(oracle), nil, &mockEventPublisher{}, 0, observability.Discard())

		resp, err := uc.Execute(context.Background(), dto.PredictBatchRequest{Records: []map[string]any{}})

		require.NoError(t, err)
		assert.Empty(t, resp.Items)
		assert.Zero(t, oracle.calls)
	})

	t.Run("uses one oracle call for the whole batch", func(t *testing.T) {
		oracle := newStubOracle(0.3)
		uc := usecase.NewPredictBatch(stubPredictor(oracle), nil, &mockEventPublisher{}, 0, observability.Discard())

		_, err := uc.Execute(context.Background(), dto.PredictBatchRequest{
			Records: []map[string]any{{"attendance": 1}, {"attendance": 2}, {"attendance": 3}},
		})

		require.NoError(t, err)
		assert.Equal(t, 1, oracle.calls)
	})

	t.Run("fails atomically on a bad record", func(t *testing.T) {
		repo := &mockPredictionRepository{}
		publisher := &mockEventPublisher{}
		uc := usecase.NewPredictBatch(heuristicPredictor(), repo, publisher, 0, observability.Discard())

		_, err := uc.Execute(context.Background(), dto.PredictBatchRequest{
			Records: []map[string]any{
				testutil.StrongStudent(),
				{"attendance": "ninety", "study_hours": 5},
			},
		})

		assert.ErrorIs(t, err, service.ErrInferenceFailure)
		assert.Empty(t, repo.saved)
		assert.Empty(t, publisher.published)
	})

	t.Run("rejects invalid requests", func(t *testing.T) {
		uc := usecase.NewPredictBatch(heuristicPredictor(), nil, &mockEventPublisher{}, 2, observability.Discard())

		tests := []struct {
			name string
			req  dto.PredictBatchRequest
		}{
			{name: "missing records", req: dto.PredictBatchRequest{}},
			{name: "too many records", req: dto.PredictBatchRequest{Records: make([]map[string]any, 3)}},
			{name: "malformed batch id", req: dto.PredictBatchRequest{BatchID: "batch-7", Records: []map[string]any{{}}}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := uc.Execute(context.Background(), tt.req)
				assert.ErrorIs(t, err, usecase.ErrInvalidRequest)
			})
		}
	})

	t.Run("storage failure does not fail the batch", func(t *testing.T) {
		repo := &mockPredictionRepository{saveBatchFunc: func(context.Context, []*model.Prediction) error { return errBoom }}
		uc := usecase.NewPredictBatch(heuristicPredictor(), repo, &mockEventPublisher{}, 0, observability.Discard())

		resp, err := uc.Execute(context.Background(), dto.PredictBatchRequest{Records: []map[string]any{testutil.StrongStudent()}})

		require.NoError(t, err)
		assert.Len(t, resp.Items, 1)
	})
}
