package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/acadrisk/acadrisk/internal/domain/port"
	"github.com/acadrisk/acadrisk/internal/domain/valueobject"
)

// DegradedRiskScore is the neutral score returned when a single prediction
// cannot be computed.
const DegradedRiskScore = 0.5

// PredictionResult is the outcome of scoring one record.
type PredictionResult struct {
	FeatureImportance map[string]float64
	Label             valueobject.PredictedLabel
	Category          valueobject.RiskCategory
	Features          valueobject.FeatureRow
	RiskScore         float64
	Degraded          bool
}

// Predictor composes normalization, inference, risk scoring and attribution
// over one oracle. The fail index is resolved once at construction.
type Predictor struct {
	oracle      port.Oracle
	failErr     error
	attribution *AttributionExtractor
	logger      *slog.Logger
	failIndex   int
}

// NewPredictor binds a Predictor to oracle. A class ordering without a fail
// class is remembered and reported by every prediction call.
func NewPredictor(oracle port.Oracle, logger *slog.Logger) *Predictor {
	p := &Predictor{
		oracle:      oracle,
		attribution: NewAttributionExtractor(logger),
		logger:      logger,
	}
	p.failIndex, p.failErr = ResolveFailIndex(oracle.ClassOrdering())
	if p.failErr != nil {
		logger.Error("oracle class ordering unusable", "error", p.failErr)
	}
	return p
}

// Oracle returns the bound oracle.
func (p *Predictor) Oracle() port.Oracle {
	return p.oracle
}

// FailIndex returns the cached fail-class index or the schema mismatch error.
func (p *Predictor) FailIndex() (int, error) {
	return p.failIndex, p.failErr
}

// Attribute returns the attribution for a normalized row.
func (p *Predictor) Attribute(row valueobject.FeatureRow) map[string]float64 {
	return p.attribution.Extract(p.oracle, row)
}

// Normalize reconciles a raw record with the oracle schema and logs any
// replaced values.
func (p *Predictor) Normalize(ctx context.Context, raw map[string]any) valueobject.FeatureRow {
	row, warnings := NormalizeFeatures(raw, p.oracle.Schema())
	for _, w := range warnings {
		p.logger.WarnContext(ctx, "feature validation warning",
			"feature", w.Feature,
			"kind", string(w.Kind),
			"given", w.Given,
			"replacement", w.Replacement,
		)
	}
	return row
}

// PredictSingle scores one record. Inference failures produce a degraded
// result rather than an error; only ErrSchemaMismatch is returned.
func (p *Predictor) PredictSingle(ctx context.Context, raw map[string]any) (PredictionResult, error) {
	return p.PredictRow(ctx, p.Normalize(ctx, raw))
}

// PredictRow is PredictSingle for a row that is already normalized.
func (p *Predictor) PredictRow(ctx context.Context, row valueobject.FeatureRow) (PredictionResult, error) {
	if p.failErr != nil {
		return PredictionResult{}, p.failErr
	}

	proba, classes, err := p.infer([]valueobject.FeatureRow{row})
	if err != nil {
		p.logger.ErrorContext(ctx, "prediction failed, returning degraded result", "error", err)
		return p.degraded(row), nil
	}

	risk, err := AssessRisk(proba[0], p.failIndex, classes[0])
	if err != nil {
		p.logger.ErrorContext(ctx, "prediction failed, returning degraded result", "error", err)
		return p.degraded(row), nil
	}

	return PredictionResult{
		Label:             risk.Label,
		Category:          risk.Category,
		RiskScore:         risk.Score,
		FeatureImportance: p.attribution.Extract(p.oracle, row),
		Features:          row,
	}, nil
}

// PredictBatch scores all records with one inference call. Any inference
// failure fails the whole batch with an error wrapping ErrInferenceFailure.
func (p *Predictor) PredictBatch(ctx context.Context, raws []map[string]any) ([]PredictionResult, error) {
	if len(raws) == 0 {
		return []PredictionResult{}, nil
	}

	rows := make([]valueobject.FeatureRow, len(raws))
	for i, raw := range raws {
		rows[i] = p.Normalize(ctx, raw)
	}

	if p.failErr != nil {
		return nil, p.failErr
	}

	proba, classes, err := p.infer(rows)
	if err != nil {
		return nil, fmt.Errorf("batch of %d records: %w", len(rows), err)
	}

	results := make([]PredictionResult, len(rows))
	for i, row := range rows {
		risk, err := AssessRisk(proba[i], p.failIndex, classes[i])
		if err != nil {
			return nil, fmt.Errorf("batch record %d: %w", i, err)
		}

		results[i] = PredictionResult{
			Label:             risk.Label,
			Category:          risk.Category,
			RiskScore:         risk.Score,
			FeatureImportance: p.attribution.Extract(p.oracle, row),
			Features:          row,
		}
	}

	return results, nil
}

func (p *Predictor) degraded(row valueobject.FeatureRow) PredictionResult {
	return PredictionResult{
		Label:             valueobject.LabelAtRisk,
		Category:          valueobject.RiskCategoryMedium,
		RiskScore:         DegradedRiskScore,
		FeatureImportance: p.attribution.Extract(p.oracle, row),
		Features:          row,
		Degraded:          true,
	}
}

// Infer runs the oracle over normalized rows without scoring them.
func (p *Predictor) Infer(rows []valueobject.FeatureRow) ([][]float64, []valueobject.ClassLabel, error) {
	return p.infer(rows)
}

// infer runs both oracle calls and checks their shapes. Panics are reported
// as inference failures.
func (p *Predictor) infer(rows []valueobject.FeatureRow) (proba [][]float64, classes []valueobject.ClassLabel, err error) {
	defer func() {
		if r := recover(); r != nil {
			proba, classes = nil, nil
			err = fmt.Errorf("%w: oracle panicked: %v", ErrInferenceFailure, r)
		}
	}()

	proba, err = p.oracle.PredictProba(rows)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInferenceFailure, err)
	}
	classes, err = p.oracle.Predict(rows)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInferenceFailure, err)
	}
	if len(proba) != len(rows) || len(classes) != len(rows) {
		return nil, nil, fmt.Errorf("%w: oracle returned %d probability rows and %d classes for %d inputs",
			ErrInferenceFailure, len(proba), len(classes), len(rows))
	}
	return proba, classes, nil
}
