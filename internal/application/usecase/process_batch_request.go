package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/acadrisk/acadrisk/internal/application/dto"
	"github.com/acadrisk/acadrisk/internal/domain/event"
	"github.com/acadrisk/acadrisk/internal/domain/port"
)

// ProcessBatchRequest handles asynchronous batch requests received from the
// message bus and announces the outcome as a batch-completed event.
type ProcessBatchRequest struct {
	batch     *PredictBatch
	publisher port.EventPublisher
	logger    *slog.Logger
}

// NewProcessBatchRequest creates a new ProcessBatchRequest use case.
func NewProcessBatchRequest(batch *PredictBatch, publisher port.EventPublisher, logger *slog.Logger) *ProcessBatchRequest {
	return &ProcessBatchRequest{batch: batch, publisher: publisher, logger: logger}
}

// Execute decodes and scores one batch request. Scoring failures are
// reported in the published event; only undecodable payloads and publish
// failures are returned.
func (uc *ProcessBatchRequest) Execute(ctx context.Context, payload []byte) error {
	// 1. Decode the request.
	var req dto.PredictBatchRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("%w: failed to decode batch request: %w", ErrInvalidRequest, err)
	}
	if req.BatchID == "" {
		req.BatchID = uuid.NewString()
	}
	batchID, err := uuid.Parse(req.BatchID)
	if err != nil {
		return fmt.Errorf("%w: batch_id: %w", ErrInvalidRequest, err)
	}

	// 2. Score the batch.
	completed := event.BatchCompleted{
		BatchID: batchID,
		Records: len(req.Records),
	}
	resp, err := uc.batch.Execute(ctx, req)
	switch {
	case err == nil:
		completed.Categories = make(map[string]int)
		for _, item := range resp.Items {
			completed.Categories[item.RiskCategory]++
		}
		completed.Items = resp.Items
	case errors.Is(err, ErrInvalidRequest):
		completed.Error = err.Error()
	default:
		uc.logger.ErrorContext(ctx, "batch request failed", "batch_id", batchID, "error", err)
		completed.Error = err.Error()
	}
	completed.CompletedAt = time.Now().UTC()

	// 3. Announce the outcome.
	evt, err := event.NewBatchCompleted(completed)
	if err != nil {
		return fmt.Errorf("failed to create batch event: %w", err)
	}
	if err := uc.publisher.Publish(ctx, evt); err != nil {
		return fmt.Errorf("failed to publish batch event: %w", err)
	}
	return nil
}
