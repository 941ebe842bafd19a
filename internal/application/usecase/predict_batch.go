package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/acadrisk/acadrisk/internal/application/dto"
	"github.com/acadrisk/acadrisk/internal/domain/model"
	"github.com/acadrisk/acadrisk/internal/domain/port"
	"github.com/acadrisk/acadrisk/internal/domain/service"
	"github.com/acadrisk/acadrisk/pkg/events"
)

// PredictBatch is the use case for scoring many student records with one
// oracle invocation.
type PredictBatch struct {
	predictor *service.Predictor
	repo      port.PredictionRepository
	publisher port.EventPublisher
	logger    *slog.Logger
	deps      predictDeps
	maxSize   int
}

// NewPredictBatch creates a new PredictBatch use case. maxSize <= 0 means no
// limit. repo may be nil.
func NewPredictBatch(
	predictor *service.Predictor,
	repo port.PredictionRepository,
	publisher port.EventPublisher,
	maxSize int,
	logger *slog.Logger,
	opts ...PredictOption,
) *PredictBatch {
	uc := &PredictBatch{
		predictor: predictor,
		repo:      repo,
		publisher: publisher,
		maxSize:   maxSize,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(&uc.deps)
	}
	return uc
}

// Execute scores every record. A failed oracle call fails the whole batch
// with an error wrapping service.ErrInferenceFailure.
func (uc *PredictBatch) Execute(ctx context.Context, req dto.PredictBatchRequest) (dto.PredictBatchResponse, error) {
	ctx, span := tracer.Start(ctx, "PredictBatch")
	defer span.End()

	start := time.Now()
	defer func() {
		uc.deps.metrics.ObserveDuration(ctx, modeBatch, time.Since(start).Seconds())
	}()

	// 1. Validate the request.
	if req.Records == nil {
		return dto.PredictBatchResponse{}, fmt.Errorf("%w: records are required", ErrInvalidRequest)
	}
	if uc.maxSize > 0 && len(req.Records) > uc.maxSize {
		return dto.PredictBatchResponse{}, fmt.Errorf("%w: batch of %d records exceeds the limit of %d",
			ErrInvalidRequest, len(req.Records), uc.maxSize)
	}
	batchID := uuid.New()
	if req.BatchID != "" {
		parsed, err := uuid.Parse(req.BatchID)
		if err != nil {
			return dto.PredictBatchResponse{}, fmt.Errorf("%w: batch_id: %w", ErrInvalidRequest, err)
		}
		batchID = parsed
	}
	span.SetAttributes(
		attribute.String("batch.id", batchID.String()),
		attribute.Int("batch.size", len(req.Records)),
	)

	// 2. Score all records in one pass.
	results, err := uc.predictor.PredictBatch(ctx, req.Records)
	if err != nil {
		uc.deps.metrics.RecordFailure(ctx, modeBatch)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return dto.PredictBatchResponse{}, err
	}

	// 3. Create the prediction aggregates.
	kind := uc.predictor.Oracle().Describe().Kind
	predictions := make([]*model.Prediction, len(results))
	for i, r := range results {
		p, err := model.NewPrediction(model.PredictionParams{
			BatchID:           batchID,
			InputFeatures:     r.Features,
			Label:             r.Label,
			Category:          r.Category,
			RiskScore:         r.RiskScore,
			FeatureImportance: r.FeatureImportance,
			OracleKind:        kind,
		})
		if err != nil {
			return dto.PredictBatchResponse{}, fmt.Errorf("failed to create prediction %d: %w", i, err)
		}
		predictions[i] = p
	}

	// 4. Persist the batch.
	if uc.repo != nil && len(predictions) > 0 {
		if err := uc.repo.SaveBatch(ctx, predictions); err != nil {
			uc.logger.WarnContext(ctx, "failed to save batch", "batch_id", batchID, "error", err)
		}
	}

	// 5. Publish domain events.
	var evts []events.DomainEvent
	for _, p := range predictions {
		evts = append(evts, p.DomainEvents()...)
	}
	if len(evts) > 0 {
		if err := uc.publisher.Publish(ctx, evts...); err != nil {
			uc.logger.WarnContext(ctx, "failed to publish batch events", "batch_id", batchID, "error", err)
		}
	}

	resp := dto.PredictBatchResponse{
		BatchID: batchID.String(),
		Items:   make([]dto.PredictionResponse, len(predictions)),
	}
	for i, p := range predictions {
		resp.Items[i] = dto.FromModel(p)
		uc.deps.metrics.RecordPrediction(ctx, modeBatch, p.Category().String())
	}

	uc.logger.InfoContext(ctx, "batch scored", "batch_id", batchID, "records", len(predictions))
	return resp, nil
}
