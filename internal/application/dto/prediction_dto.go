package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/acadrisk/acadrisk/internal/domain/model"
	"github.com/acadrisk/acadrisk/internal/domain/valueobject"
)

// PredictSingleRequest is the input DTO for the PredictSingle use case.
type PredictSingleRequest struct {
	Features  map[string]any `json:"features"`
	StudentID string         `json:"student_id,omitempty"`
}

// PredictBatchRequest is the input DTO for the PredictBatch use case.
type PredictBatchRequest struct {
	BatchID string           `json:"batch_id,omitempty"`
	Records []map[string]any `json:"records"`
}

// PredictionResponse is the output DTO for one prediction. InputFeatures is
// set for batch items and stored predictions.
type PredictionResponse struct {
	CreatedAt         time.Time               `json:"created_at"`
	FeatureImportance map[string]float64      `json:"feature_importance"`
	InputFeatures     *valueobject.FeatureRow `json:"input_features,omitempty"`
	ID                string                  `json:"id,omitempty"`
	StudentID         string                  `json:"student_id,omitempty"`
	BatchID           string                  `json:"batch_id,omitempty"`
	PredictedLabel    string                  `json:"predicted_label"`
	RiskCategory      string                  `json:"risk_category"`
	RiskScore         float64                 `json:"risk_score"`
	Degraded          bool                    `json:"degraded"`
}

// PredictBatchResponse is the output DTO of the PredictBatch use case.
type PredictBatchResponse struct {
	BatchID string               `json:"batch_id"`
	Items   []PredictionResponse `json:"items"`
}

// ListStudentPredictionsRequest pages through a student's history.
type ListStudentPredictionsRequest struct {
	StudentID string `json:"student_id"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
}

// ListPredictionsRequest pages through every stored prediction.
type ListPredictionsRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ListPredictionsResponse wraps a page of predictions.
type ListPredictionsResponse struct {
	StudentID   string               `json:"student_id,omitempty"`
	Predictions []PredictionResponse `json:"predictions"`
	Limit       int                  `json:"limit"`
	Offset      int                  `json:"offset"`
}

// FromModel maps a domain model to the response DTO.
func FromModel(p *model.Prediction) PredictionResponse {
	features := p.InputFeatures()
	resp := PredictionResponse{
		ID:                p.ID().String(),
		StudentID:         p.StudentID(),
		PredictedLabel:    p.Label().String(),
		RiskCategory:      p.Category().String(),
		RiskScore:         p.RiskScore(),
		FeatureImportance: p.FeatureImportance(),
		InputFeatures:     &features,
		Degraded:          p.Degraded(),
		CreatedAt:         p.CreatedAt(),
	}
	if p.BatchID() != uuid.Nil {
		resp.BatchID = p.BatchID().String()
	}
	if resp.FeatureImportance == nil {
		resp.FeatureImportance = map[string]float64{}
	}
	return resp
}

// GetPredictionRequest is the input DTO for retrieving a prediction.
type GetPredictionRequest struct {
	PredictionID uuid.UUID `json:"prediction_id"`
}

// GetBatchRequest pages through the predictions of one batch.
type GetBatchRequest struct {
	BatchID uuid.UUID `json:"batch_id"`
	Limit   int       `json:"limit"`
	Offset  int       `json:"offset"`
}

// BatchSummaryResponse counts a batch's predictions by risk category.
type BatchSummaryResponse struct {
	CreatedAt time.Time `json:"created_at"`
	BatchID   string    `json:"batch_id"`
	Total     int       `json:"total"`
	Low       int       `json:"low"`
	Medium    int       `json:"medium"`
	High      int       `json:"high"`
}

// FromBatchSummary maps a domain batch summary to the response DTO.
func FromBatchSummary(s model.BatchSummary) BatchSummaryResponse {
	return BatchSummaryResponse{
		CreatedAt: s.CreatedAt,
		BatchID:   s.BatchID.String(),
		Total:     s.Total,
		Low:       s.Low,
		Medium:    s.Medium,
		High:      s.High,
	}
}

// BatchResponse is a batch summary with one page of its predictions.
type BatchResponse struct {
	Predictions []PredictionResponse `json:"predictions"`
	Batch       BatchSummaryResponse `json:"batch"`
	Limit       int                  `json:"limit"`
	Offset      int                  `json:"offset"`
}

// ListBatchesRequest pages through stored batches.
type ListBatchesRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ListBatchesResponse wraps a page of batch summaries.
type ListBatchesResponse struct {
	Batches []BatchSummaryResponse `json:"batches"`
	Limit   int                    `json:"limit"`
	Offset  int                    `json:"offset"`
}

// DeleteBatchRequest identifies the batch to remove.
type DeleteBatchRequest struct {
	BatchID uuid.UUID `json:"batch_id"`
}

// DeleteBatchResponse reports how many predictions were removed.
type DeleteBatchResponse struct {
	BatchID string `json:"batch_id"`
	Deleted int64  `json:"deleted"`
}
