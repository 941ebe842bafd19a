package service

import (
	"fmt"
	"math"

	"github.com/acadrisk/acadrisk/internal/domain/valueobject"
)

// RiskAssessment is the scored outcome for one row.
type RiskAssessment struct {
	Label    valueobject.PredictedLabel
	Category valueobject.RiskCategory
	Score    float64
}

// AssessRisk reads the fail probability at failIndex and derives the tier and
// label. The label depends only on the predicted class.
func AssessRisk(proba []float64, failIndex int, predicted valueobject.ClassLabel) (RiskAssessment, error) {
	if failIndex < 0 || failIndex >= len(proba) {
		return RiskAssessment{}, fmt.Errorf("%w: fail index %d outside probability vector of length %d",
			ErrInferenceFailure, failIndex, len(proba))
	}

	score := proba[failIndex]
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return RiskAssessment{}, fmt.Errorf("%w: non-finite fail probability", ErrInferenceFailure)
	}
	score = math.Min(1, math.Max(0, score))

	return RiskAssessment{
		Score:    score,
		Category: valueobject.CategoryFromScore(score),
		Label:    valueobject.LabelFromClass(predicted),
	}, nil
}
