package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/acadrisk/acadrisk/internal/application/dto"
	"github.com/acadrisk/acadrisk/internal/domain/model"
	"github.com/acadrisk/acadrisk/internal/domain/port"
	"github.com/acadrisk/acadrisk/internal/domain/service"
	"github.com/acadrisk/acadrisk/internal/domain/valueobject"
	"github.com/acadrisk/acadrisk/pkg/observability"
)

// KeyFunc derives a cache key from the oracle checksum and a normalized row.
type KeyFunc func(checksum string, row valueobject.FeatureRow) (string, error)

// PredictOption configures optional collaborators of the prediction use cases.
type PredictOption func(*predictDeps)

type predictDeps struct {
	cache    port.PredictionCache
	cacheKey KeyFunc
	metrics  *observability.PredictionMetrics
	cacheTTL time.Duration
}

// WithCache enables result caching for single predictions.
func WithCache(cache port.PredictionCache, key KeyFunc, ttl time.Duration) PredictOption {
	return func(d *predictDeps) {
		d.cache = cache
		d.cacheKey = key
		d.cacheTTL = ttl
	}
}

// WithMetrics records prediction metrics.
func WithMetrics(m *observability.PredictionMetrics) PredictOption {
	return func(d *predictDeps) { d.metrics = m }
}

// PredictSingle is the use case for scoring one student record.
type PredictSingle struct {
	predictor *service.Predictor
	repo      port.PredictionRepository
	publisher port.EventPublisher
	logger    *slog.Logger
	deps      predictDeps
}

// NewPredictSingle creates a new PredictSingle use case. repo may be nil, in
// which case predictions are not stored.
func NewPredictSingle(
	predictor *service.Predictor,
	repo port.PredictionRepository,
	publisher port.EventPublisher,
	logger *slog.Logger,
	opts ...PredictOption,
) *PredictSingle {
	uc := &PredictSingle{
		predictor: predictor,
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(&uc.deps)
	}
	return uc
}

type cachedResult struct {
	FeatureImportance map[string]float64 `json:"feature_importance"`
	Label             string             `json:"predicted_label"`
	Category          string             `json:"risk_category"`
	RiskScore         float64            `json:"risk_score"`
}

// Execute scores the record, records the prediction, and publishes its events.
// Only ErrInvalidRequest and service.ErrSchemaMismatch are returned as errors;
// storage, publishing and caching failures are logged.
func (uc *PredictSingle) Execute(ctx context.Context, req dto.PredictSingleRequest) (dto.PredictionResponse, error) {
	ctx, span := tracer.Start(ctx, "PredictSingle")
	defer span.End()

	start := time.Now()
	defer func() {
		uc.deps.metrics.ObserveDuration(ctx, modeSingle, time.Since(start).Seconds())
	}()

	if req.Features == nil {
		return dto.PredictionResponse{}, fmt.Errorf("%w: features are required", ErrInvalidRequest)
	}

	// 1. Normalize the record against the oracle schema.
	row := uc.predictor.Normalize(ctx, req.Features)

	// 2. Serve from cache or run the predictor.
	key := uc.key(ctx, row)
	result, hit := uc.lookup(ctx, key, row)
	if !hit {
		var err error
		result, err = uc.predictor.PredictRow(ctx, row)
		if err != nil {
			uc.deps.metrics.RecordFailure(ctx, modeSingle)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return dto.PredictionResponse{}, err
		}
		if result.Degraded {
			uc.deps.metrics.RecordDegraded(ctx)
		} else {
			uc.store(ctx, key, result)
		}
	}

	// 3. Create the prediction aggregate.
	prediction, err := model.NewPrediction(model.PredictionParams{
		StudentID:         req.StudentID,
		InputFeatures:     row,
		Label:             result.Label,
		Category:          result.Category,
		RiskScore:         result.RiskScore,
		FeatureImportance: result.FeatureImportance,
		Degraded:          result.Degraded,
		OracleKind:        uc.predictor.Oracle().Describe().Kind,
	})
	if err != nil {
		return dto.PredictionResponse{}, fmt.Errorf("failed to create prediction: %w", err)
	}

	// 4. Persist the prediction.
	if uc.repo != nil {
		if err := uc.repo.Save(ctx, prediction); err != nil {
			uc.logger.WarnContext(ctx, "failed to save prediction", "prediction_id", prediction.ID(), "error", err)
		}
	}

	// 5. Publish domain events.
	if evts := prediction.DomainEvents(); len(evts) > 0 {
		if err := uc.publisher.Publish(ctx, evts...); err != nil {
			uc.logger.WarnContext(ctx, "failed to publish prediction events", "prediction_id", prediction.ID(), "error", err)
		}
	}

	uc.deps.metrics.RecordPrediction(ctx, modeSingle, prediction.Category().String())
	span.SetAttributes(
		attribute.String("prediction.id", prediction.ID().String()),
		attribute.String("prediction.risk_category", prediction.Category().String()),
		attribute.Bool("prediction.degraded", prediction.Degraded()),
		attribute.Bool("prediction.cache_hit", hit),
	)

	resp := dto.FromModel(prediction)
	resp.InputFeatures = nil
	return resp, nil
}

func (uc *PredictSingle) key(ctx context.Context, row valueobject.FeatureRow) string {
	if uc.deps.cache == nil {
		return ""
	}
	d := uc.predictor.Oracle().Describe()
	key, err := uc.deps.cacheKey(d.Kind+":"+d.Checksum, row)
	if err != nil {
		uc.logger.WarnContext(ctx, "failed to derive cache key", "error", err)
		return ""
	}
	return key
}

func (uc *PredictSingle) lookup(ctx context.Context, key string, row valueobject.FeatureRow) (service.PredictionResult, bool) {
	if key == "" {
		return service.PredictionResult{}, false
	}

	data, err := uc.deps.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, port.ErrNotFound) {
			uc.logger.WarnContext(ctx, "prediction cache read failed", "error", err)
		}
		return service.PredictionResult{}, false
	}

	var cached cachedResult
	if err := json.Unmarshal(data, &cached); err != nil {
		uc.logger.WarnContext(ctx, "discarding unreadable cache entry", "error", err)
		return service.PredictionResult{}, false
	}
	label, err := valueobject.PredictedLabelFromString(cached.Label)
	if err != nil {
		return service.PredictionResult{}, false
	}
	category, err := valueobject.RiskCategoryFromString(cached.Category)
	if err != nil {
		return service.PredictionResult{}, false
	}

	return service.PredictionResult{
		Label:             label,
		Category:          category,
		RiskScore:         cached.RiskScore,
		FeatureImportance: cached.FeatureImportance,
		Features:          row,
	}, true
}

func (uc *PredictSingle) store(ctx context.Context, key string, result service.PredictionResult) {
	if key == "" {
		return
	}
	data, err := json.Marshal(cachedResult{
		Label:             result.Label.String(),
		Category:          result.Category.String(),
		RiskScore:         result.RiskScore,
		FeatureImportance: result.FeatureImportance,
	})
	if err != nil {
		return
	}
	if err := uc.deps.cache.Set(ctx, key, data, uc.deps.cacheTTL); err != nil {
		uc.logger.WarnContext(ctx, "prediction cache write failed", "error", err)
	}
}
