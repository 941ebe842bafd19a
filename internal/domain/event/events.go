package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/acadrisk/acadrisk/pkg/events"
)

const (
	// AggregateTypePrediction is the aggregate type of prediction events.
	AggregateTypePrediction = "Prediction"

	// EventTypePredictionCompleted is emitted for every recorded prediction.
	EventTypePredictionCompleted = "prediction.completed"

	// EventTypeAtRiskDetected is emitted when a prediction falls in the high tier.
	EventTypeAtRiskDetected = "prediction.at_risk_detected"

	// EventTypeBatchCompleted is emitted when an asynchronous batch request finishes.
	EventTypeBatchCompleted = "prediction.batch_completed"
)

// PredictionCompleted is the payload published when a prediction is recorded.
type PredictionCompleted struct {
	PredictedAt    time.Time `json:"predicted_at"`
	StudentID      string    `json:"student_id,omitempty"`
	PredictedLabel string    `json:"predicted_label"`
	RiskCategory   string    `json:"risk_category"`
	OracleKind     string    `json:"oracle_kind"`
	RiskScore      float64   `json:"risk_score"`
	PredictionID   uuid.UUID `json:"prediction_id"`
	BatchID        uuid.UUID `json:"batch_id,omitempty"`
	Degraded       bool      `json:"degraded"`
}

// NewPredictionCompleted wraps the payload in a domain event.
func NewPredictionCompleted(p PredictionCompleted) (events.DomainEvent, error) {
	return events.NewBaseEvent(EventTypePredictionCompleted, p.PredictionID, AggregateTypePrediction, p)
}

// AtRiskDetected is the payload published when a student is scored high risk,
// prompting advisor follow-up.
type AtRiskDetected struct {
	DetectedAt        time.Time          `json:"detected_at"`
	FeatureImportance map[string]float64 `json:"feature_importance"`
	StudentID         string             `json:"student_id,omitempty"`
	RiskScore         float64            `json:"risk_score"`
	PredictionID      uuid.UUID          `json:"prediction_id"`
}

// NewAtRiskDetected wraps the payload in a domain event.
func NewAtRiskDetected(p AtRiskDetected) (events.DomainEvent, error) {
	return events.NewBaseEvent(EventTypeAtRiskDetected, p.PredictionID, AggregateTypePrediction, p)
}

// BatchCompleted summarizes a finished batch.
type BatchCompleted struct {
	CompletedAt time.Time      `json:"completed_at"`
	Error       string         `json:"error,omitempty"`
	Categories  map[string]int `json:"categories,omitempty"`
	Items       any            `json:"items,omitempty"`
	Records     int            `json:"records"`
	BatchID     uuid.UUID      `json:"batch_id"`
}

// NewBatchCompleted wraps the payload in a domain event.
func NewBatchCompleted(p BatchCompleted) (events.DomainEvent, error) {
	return events.NewBaseEvent(EventTypeBatchCompleted, p.BatchID, AggregateTypePrediction, p)
}
