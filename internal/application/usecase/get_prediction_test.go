package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadrisk/acadrisk/internal/application/dto"
	"github.com/acadrisk/acadrisk/internal/application/usecase"
	"github.com/acadrisk/acadrisk/internal/domain/model"
	"github.com/acadrisk/acadrisk/internal/domain/port"
	"github.com/acadrisk/acadrisk/internal/domain/valueobject"
	"github.com/acadrisk/acadrisk/pkg/observability"
	"github.com/acadrisk/acadrisk/pkg/testutil"
)

func storedPrediction(id uuid.UUID, studentID string) *model.Prediction {
	return model.Reconstruct(
		id, studentID, testutil.TestBatchID,
		valueobject.NewFeatureRow(valueobject.Feature{Name: "attendance", Value: 40.0}),
		valueobject.LabelAtRisk, valueobject.RiskCategoryMedium, 0.55,
		map[string]float64{"attendance": 1}, false, "heuristic", testutil.FixedTime,
	)
}

func TestGetPrediction_Execute(t *testing.T) {
	t.Run("returns a stored prediction", func(t *testing.T) {
		repo := &mockPredictionRepository{
			findByIDFunc: func(_ context.Context, id uuid.UUID) (*model.Prediction, error) {
				return storedPrediction(id, testutil.TestStudentID), nil
			},
		}
		uc := usecase.NewGetPrediction(repo)

		resp, err := uc.Execute(context.Background(), dto.GetPredictionRequest{PredictionID: testutil.TestPredictionID})

		require.NoError(t, err)
		assert.Equal(t, testutil.TestPredictionID.String(), resp.ID)
		assert.Equal(t, testutil.TestBatchID.String(), resp.BatchID)
		assert.Equal(t, "medium", resp.RiskCategory)
		require.NotNil(t, resp.InputFeatures)
		assert.Equal(t, []string{"attendance"}, resp.InputFeatures.Names())
	})

	t.Run("not found", func(t *testing.T) {
		uc := usecase.NewGetPrediction(&mockPredictionRepository{})

		_, err := uc.Execute(context.Background(), dto.GetPredictionRequest{PredictionID: uuid.New()})
		assert.ErrorIs(t, err, port.ErrNotFound)
	})

	t.Run("without persistence everything is not found", func(t *testing.T) {
		uc := usecase.NewGetPrediction(nil)

		_, err := uc.Execute(context.Background(), dto.GetPredictionRequest{PredictionID: uuid.New()})
		assert.ErrorIs(t, err, port.ErrNotFound)
	})
}

func TestListStudentPredictions_Execute(t *testing.T) {
	var gotLimit, gotOffset int
	repo := &mockPredictionRepository{
		findByStudentIDFunc: func(_ context.Context, studentID string, limit, offset int) ([]*model.Prediction, error) {
			gotLimit, gotOffset = limit, offset
			return []*model.Prediction{storedPrediction(uuid.New(), studentID), storedPrediction(uuid.New(), studentID)}, nil
		},
	}
	uc := usecase.NewListStudentPredictions(repo)

	tests := []struct {
		name       string
		req        dto.ListStudentPredictionsRequest
		wantLimit  int
		wantOffset int
	}{
		{name: "default page size", req: dto.ListStudentPredictionsRequest{StudentID: "s1"}, wantLimit: usecase.DefaultPageSize},
		{name: "explicit page", req: dto.ListStudentPredictionsRequest{StudentID: "s1", Limit: 5, Offset: 10}, wantLimit: 5, wantOffset: 10},
		{name: "limit is capped", req: dto.ListStudentPredictionsRequest{StudentID: "s1", Limit: 5000}, wantLimit: usecase.MaxPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := uc.Execute(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Len(t, resp.Predictions, 2)
			assert.Equal(t, tt.wantLimit, gotLimit)
			assert.Equal(t, tt.wantOffset, gotOffset)
			assert.Equal(t, "s1", resp.Predictions[0].StudentID)
		})
	}

	t.Run("requires a student id", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), dto.ListStudentPredictionsRequest{StudentID: "  "})
		assert.ErrorIs(t, err, usecase.ErrInvalidRequest)
	})

	t.Run("rejects negative offset", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), dto.ListStudentPredictionsRequest{StudentID: "s1", Offset: -1})
		assert.ErrorIs(t, err, usecase.ErrInvalidRequest)
	})

	t.Run("without persistence returns an empty page", func(t *testing.T) {
		resp, err := usecase.NewListStudentPredictions(nil).Execute(context.Background(),
			dto.ListStudentPredictionsRequest{StudentID: "s1"})
		require.NoError(t, err)
		assert.NotNil(t, resp.Predictions)
		assert.Empty(t, resp.Predictions)
	})
}

func TestListPredictions_Execute(t *testing.T) {
	var gotLimit, gotOffset int
	repo := &mockPredictionRepository{
		findRecentFunc: func(_ context.Context, limit, offset int) ([]*model.Prediction, error) {
			gotLimit, gotOffset = limit, offset
			return []*model.Prediction{storedPrediction(uuid.New(), "s1"), storedPrediction(uuid.New(), "s2")}, nil
		},
	}
	uc := usecase.NewListPredictions(repo)

	tests := []struct {
		name       string
		req        dto.ListPredictionsRequest
		wantLimit  int
		wantOffset int
		wantErr    error
	}{
		{name: "default page size", wantLimit: usecase.DefaultPageSize},
		{name: "explicit page", req: dto.ListPredictionsRequest{Limit: 7, Offset: 14}, wantLimit: 7, wantOffset: 14},
		{name: "limit is capped", req: dto.ListPredictionsRequest{Limit: 1000}, wantLimit: usecase.MaxPageSize},
		{name: "negative offset", req: dto.ListPredictionsRequest{Offset: -3}, wantErr: usecase.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := uc.Execute(context.Background(), tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, resp.Predictions, 2)
			assert.Empty(t, resp.StudentID)
			assert.Equal(t, tt.wantLimit, gotLimit)
			assert.Equal(t, tt.wantOffset, gotOffset)
		})
	}

	t.Run("without persistence returns an empty page", func(t *testing.T) {
		resp, err := usecase.NewListPredictions(nil).Execute(context.Background(), dto.ListPredictionsRequest{})
		require.NoError(t, err)
		assert.NotNil(t, resp.Predictions)
		assert.Empty(t, resp.Predictions)
	})
}

func batchSummary(id uuid.UUID) model.BatchSummary {
	return model.BatchSummary{BatchID: id, Total: 3, Low: 1, Medium: 1, High: 1, CreatedAt: testutil.FixedTime}
}

func TestGetBatch_Execute(t *testing.T) {
	var gotBatch uuid.UUID
	var gotLimit, gotOffset int
	found := &mockPredictionRepository{
		summarizeBatchFunc: func(_ context.Context, id uuid.UUID) (model.BatchSummary, error) {
			return batchSummary(id), nil
		},
		findByBatchIDFunc: func(_ context.Context, id uuid.UUID, limit, offset int) ([]*model.Prediction, error) {
			gotBatch, gotLimit, gotOffset = id, limit, offset
			return []*model.Prediction{storedPrediction(uuid.New(), "s1"), storedPrediction(uuid.New(), "s2")}, nil
		},
	}
	listFails := &mockPredictionRepository{
		summarizeBatchFunc: found.summarizeBatchFunc,
		findByBatchIDFunc: func(context.Context, uuid.UUID, int, int) ([]*model.Prediction, error) {
			return nil, errBoom
		},
	}

	tests := []struct {
		name       string
		repo       *mockPredictionRepository
		req        dto.GetBatchRequest
		wantErr    error
		wantCount  int
		wantLimit  int
		wantOffset int
	}{
		{
			name:      "summary with the first page",
			repo:      found,
			req:       dto.GetBatchRequest{BatchID: testutil.TestBatchID},
			wantCount: 2,
			wantLimit: usecase.DefaultPageSize,
		},
		{
			name:       "explicit page",
			repo:       found,
			req:        dto.GetBatchRequest{BatchID: testutil.TestBatchID, Limit: 2, Offset: 4},
			wantCount:  2,
			wantLimit:  2,
			wantOffset: 4,
		},
		{
			name:    "unknown batch",
			repo:    &mockPredictionRepository{},
			req:     dto.GetBatchRequest{BatchID: uuid.New()},
			wantErr: port.ErrNotFound,
		},
		{
			name:    "negative offset",
			repo:    found,
			req:     dto.GetBatchRequest{BatchID: testutil.TestBatchID, Offset: -1},
			wantErr: usecase.ErrInvalidRequest,
		},
		{
			name:    "listing error",
			repo:    listFails,
			req:     dto.GetBatchRequest{BatchID: testutil.TestBatchID},
			wantErr: errBoom,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := usecase.NewGetBatch(tt.repo).Execute(context.Background(), tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testutil.TestBatchID, gotBatch)
			assert.Equal(t, tt.wantLimit, gotLimit)
			assert.Equal(t, tt.wantOffset, gotOffset)
			assert.Len(t, resp.Predictions, tt.wantCount)
			assert.Equal(t, testutil.TestBatchID.String(), resp.Batch.BatchID)
			assert.Equal(t, 3, resp.Batch.Total)
			assert.Equal(t, 1, resp.Batch.High)
		})
	}

	t.Run("without persistence the batch is not found", func(t *testing.T) {
		_, err := usecase.NewGetBatch(nil).Execute(context.Background(), dto.GetBatchRequest{BatchID: uuid.New()})
		assert.ErrorIs(t, err, port.ErrNotFound)
	})
}

func TestListBatches_Execute(t *testing.T) {
	first, second := uuid.New(), uuid.New()
	repo := &mockPredictionRepository{
		listBatchesFunc: func(_ context.Context, limit, offset int) ([]model.BatchSummary, error) {
			assert.Equal(t, usecase.MaxPageSize, limit)
			assert.Equal(t, 0, offset)
			return []model.BatchSummary{batchSummary(first), batchSummary(second)}, nil
		},
	}

	resp, err := usecase.NewListBatches(repo).Execute(context.Background(), dto.ListBatchesRequest{Limit: 500})

	require.NoError(t, err)
	require.Len(t, resp.Batches, 2)
	assert.Equal(t, first.String(), resp.Batches[0].BatchID)
	assert.Equal(t, second.String(), resp.Batches[1].BatchID)
	assert.Equal(t, testutil.FixedTime, resp.Batches[0].CreatedAt)

	t.Run("without persistence returns an empty page", func(t *testing.T) {
		resp, err := usecase.NewListBatches(nil).Execute(context.Background(), dto.ListBatchesRequest{})
		require.NoError(t, err)
		assert.NotNil(t, resp.Batches)
		assert.Empty(t, resp.Batches)
	})
}

func TestDeleteBatch_Execute(t *testing.T) {
	tests := []struct {
		name        string
		repo        port.PredictionRepository
		wantErr     error
		wantDeleted int64
	}{
		{
			name: "removes the batch",
			repo: &mockPredictionRepository{
				deleteBatchFunc: func(_ context.Context, id uuid.UUID) (int64, error) {
					if id != testutil.TestBatchID {
						return 0, errors.New("unexpected batch")
					}
					return 3, nil
				},
			},
			wantDeleted: 3,
		},
		{name: "unknown batch", repo: &mockPredictionRepository{}, wantErr: port.ErrNotFound},
		{name: "without persistence", repo: nil, wantErr: port.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := usecase.NewDeleteBatch(tt.repo, observability.Discard())

			resp, err := uc.Execute(context.Background(), dto.DeleteBatchRequest{BatchID: testutil.TestBatchID})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDeleted, resp.Deleted)
			assert.Equal(t, testutil.TestBatchID.String(), resp.BatchID)
		})
	}
}
