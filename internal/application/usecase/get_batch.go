package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/acadrisk/acadrisk/internal/application/dto"
	"github.com/acadrisk/acadrisk/internal/domain/port"
)

// GetBatch is the use case for reading a stored batch back.
type GetBatch struct {
	repo port.PredictionRepository
}

// NewGetBatch creates a new GetBatch use case. A nil repo reports every
// batch as not found.
func NewGetBatch(repo port.PredictionRepository) *GetBatch {
	return &GetBatch{repo: repo}
}

// Execute returns the batch summary and one page of its predictions in
// scoring order.
func (uc *GetBatch) Execute(ctx context.Context, req dto.GetBatchRequest) (dto.BatchResponse, error) {
	limit, err := pageSize(req.Limit, req.Offset)
	if err != nil {
		return dto.BatchResponse{}, err
	}
	if uc.repo == nil {
		return dto.BatchResponse{}, fmt.Errorf("batch %s: %w", req.BatchID, port.ErrNotFound)
	}

	summary, err := uc.repo.SummarizeBatch(ctx, req.BatchID)
	if err != nil {
		return dto.BatchResponse{}, fmt.Errorf("failed to find batch: %w", err)
	}

	predictions, err := uc.repo.FindByBatchID(ctx, req.BatchID, limit, req.Offset)
	if err != nil {
		return dto.BatchResponse{}, fmt.Errorf("failed to list batch predictions: %w", err)
	}

	resp := dto.BatchResponse{
		Batch:       dto.FromBatchSummary(summary),
		Predictions: make([]dto.PredictionResponse, 0, len(predictions)),
		Limit:       limit,
		Offset:      req.Offset,
	}
	for _, p := range predictions {
		resp.Predictions = append(resp.Predictions, dto.FromModel(p))
	}
	return resp, nil
}

// ListBatches is the use case for browsing stored batches.
type ListBatches struct {
	repo port.PredictionRepository
}

// NewListBatches creates a new ListBatches use case.
func NewListBatches(repo port.PredictionRepository) *ListBatches {
	return &ListBatches{repo: repo}
}

// Execute returns one page of batch summaries, newest first.
func (uc *ListBatches) Execute(ctx context.Context, req dto.ListBatchesRequest) (dto.ListBatchesResponse, error) {
	limit, err := pageSize(req.Limit, req.Offset)
	if err != nil {
		return dto.ListBatchesResponse{}, err
	}

	resp := dto.ListBatchesResponse{
		Batches: []dto.BatchSummaryResponse{},
		Limit:   limit,
		Offset:  req.Offset,
	}
	if uc.repo == nil {
		return resp, nil
	}

	summaries, err := uc.repo.ListBatches(ctx, limit, req.Offset)
	if err != nil {
		return dto.ListBatchesResponse{}, fmt.Errorf("failed to list batches: %w", err)
	}
	for _, s := range summaries {
		resp.Batches = append(resp.Batches, dto.FromBatchSummary(s))
	}
	return resp, nil
}

// DeleteBatch is the use case for removing a stored batch.
type DeleteBatch struct {
	repo   port.PredictionRepository
	logger *slog.Logger
}

// NewDeleteBatch creates a new DeleteBatch use case.
func NewDeleteBatch(repo port.PredictionRepository, logger *slog.Logger) *DeleteBatch {
	return &DeleteBatch{repo: repo, logger: logger}
}

// Execute removes every prediction of the batch.
func (uc *DeleteBatch) Execute(ctx context.Context, req dto.DeleteBatchRequest) (dto.DeleteBatchResponse, error) {
	if uc.repo == nil {
		return dto.DeleteBatchResponse{}, fmt.Errorf("batch %s: %w", req.BatchID, port.ErrNotFound)
	}

	deleted, err := uc.repo.DeleteBatch(ctx, req.BatchID)
	if err != nil {
		return dto.DeleteBatchResponse{}, fmt.Errorf("failed to delete batch: %w", err)
	}

	uc.logger.InfoContext(ctx, "batch deleted", "batch_id", req.BatchID, "predictions", deleted)
	return dto.DeleteBatchResponse{BatchID: req.BatchID.String(), Deleted: deleted}, nil
}
