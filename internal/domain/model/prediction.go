package model

import (
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/acadrisk/acadrisk/internal/domain/event"
	"github.com/acadrisk/acadrisk/internal/domain/valueobject"
	"github.com/acadrisk/acadrisk/pkg/events"
)

// Prediction is the aggregate root for a recorded risk prediction.
type Prediction struct {
	events.EventCollector

	createdAt         time.Time
	featureImportance map[string]float64
	studentID         string
	oracleKind        string
	label             valueobject.PredictedLabel
	category          valueobject.RiskCategory
	inputFeatures     valueobject.FeatureRow
	riskScore         float64
	id                uuid.UUID
	batchID           uuid.UUID
	degraded          bool
}

// PredictionParams carries the outcome of scoring one feature row.
type PredictionParams struct {
	FeatureImportance map[string]float64
	StudentID         string
	OracleKind        string
	Label             valueobject.PredictedLabel
	Category          valueobject.RiskCategory
	InputFeatures     valueobject.FeatureRow
	RiskScore         float64
	BatchID           uuid.UUID
	Degraded          bool
}

// NewPrediction records a scored row and emits its domain events.
func NewPrediction(p PredictionParams) (*Prediction, error) {
	if p.RiskScore < 0 || p.RiskScore > 1 {
		return nil, fmt.Errorf("risk score must be between 0 and 1, got %v", p.RiskScore)
	}
	if p.Label.IsZero() {
		return nil, fmt.Errorf("predicted label is required")
	}
	if p.Category.IsZero() {
		return nil, fmt.Errorf("risk category is required")
	}

	pred := &Prediction{
		id:                uuid.New(),
		studentID:         p.StudentID,
		batchID:           p.BatchID,
		inputFeatures:     p.InputFeatures,
		label:             p.Label,
		category:          p.Category,
		riskScore:         p.RiskScore,
		featureImportance: maps.Clone(p.FeatureImportance),
		degraded:          p.Degraded,
		oracleKind:        p.OracleKind,
		createdAt:         time.Now().UTC(),
	}
	if pred.featureImportance == nil {
		pred.featureImportance = map[string]float64{}
	}

	completed, err := event.NewPredictionCompleted(event.PredictionCompleted{
		PredictionID:   pred.id,
		StudentID:      pred.studentID,
		BatchID:        pred.batchID,
		PredictedLabel: pred.label.String(),
		RiskCategory:   pred.category.String(),
		RiskScore:      pred.riskScore,
		OracleKind:     pred.oracleKind,
		Degraded:       pred.degraded,
		PredictedAt:    pred.createdAt,
	})
	if err != nil {
		return nil, err
	}
	pred.Record(completed)

	if pred.category.Equal(valueobject.RiskCategoryHigh) {
		atRisk, err := event.NewAtRiskDetected(event.AtRiskDetected{
			PredictionID:      pred.id,
			StudentID:         pred.studentID,
			RiskScore:         pred.riskScore,
			FeatureImportance: pred.featureImportance,
			DetectedAt:        pred.createdAt,
		})
		if err != nil {
			return nil, err
		}
		pred.Record(atRisk)
	}

	return pred, nil
}

// Reconstruct rebuilds a Prediction from persisted data (no validation, no events).
func Reconstruct(
	id uuid.UUID,
	studentID string,
	batchID uuid.UUID,
	inputFeatures valueobject.FeatureRow,
	label valueobject.PredictedLabel,
	category valueobject.RiskCategory,
	riskScore float64,
	featureImportance map[string]float64,
	degraded bool,
	oracleKind string,
	createdAt time.Time,
) *Prediction {
	return &Prediction{
		id:                id,
		studentID:         studentID,
		batchID:           batchID,
		inputFeatures:     inputFeatures,
		label:             label,
		category:          category,
		riskScore:         riskScore,
		featureImportance: featureImportance,
		degraded:          degraded,
		oracleKind:        oracleKind,
		createdAt:         createdAt,
	}
}

// --- Accessors ---

func (p *Prediction) ID() uuid.UUID                         { return p.id }
func (p *Prediction) StudentID() string                     { return p.studentID }
func (p *Prediction) BatchID() uuid.UUID                    { return p.batchID }
func (p *Prediction) InputFeatures() valueobject.FeatureRow { return p.inputFeatures }
func (p *Prediction) Label() valueobject.PredictedLabel     { return p.label }
func (p *Prediction) Category() valueobject.RiskCategory    { return p.category }
func (p *Prediction) RiskScore() float64                    { return p.riskScore }
func (p *Prediction) FeatureImportance() map[string]float64 { return maps.Clone(p.featureImportance) }
func (p *Prediction) Degraded() bool                        { return p.degraded }
func (p *Prediction) OracleKind() string                    { return p.oracleKind }
func (p *Prediction) CreatedAt() time.Time                  { return p.createdAt }

// DomainEvents returns all accumulated domain events and clears them.
func (p *Prediction) DomainEvents() []events.DomainEvent {
	return p.ClearEvents()
}
