package service_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadrisk/acadrisk/internal/domain/service"
	"github.com/acadrisk/acadrisk/internal/domain/valueobject"
)

func TestAssessRisk(t *testing.T) {
	tests := []struct {
		name      string
		proba     []float64
		failIndex int
		predicted valueobject.ClassLabel
		score     float64
		category  valueobject.RiskCategory
		label     valueobject.PredictedLabel
	}{
		{"confident pass", []float64{0.1, 0.9}, 0, valueobject.NumericClass(1), 0.1, valueobject.RiskCategoryLow, valueobject.LabelNormal},
		{"borderline", []float64{0.4, 0.6}, 0, valueobject.NumericClass(1), 0.4, valueobject.RiskCategoryMedium, valueobject.LabelNormal},
		{"likely fail", []float64{0.85, 0.15}, 0, valueobject.NumericClass(0), 0.85, valueobject.RiskCategoryHigh, valueobject.LabelAtRisk},
		{"reversed ordering", []float64{0.25, 0.75}, 1, valueobject.NumericClass(0), 0.75, valueobject.RiskCategoryHigh, valueobject.LabelAtRisk},
		{"named classes label at risk", []float64{0.2, 0.8}, 0, valueobject.NamedClass("Pass"), 0.2, valueobject.RiskCategoryLow, valueobject.LabelAtRisk},
		{"clamped above one", []float64{1.0000001, 0}, 0, valueobject.NumericClass(0), 1, valueobject.RiskCategoryHigh, valueobject.LabelAtRisk},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.AssessRisk(tt.proba, tt.failIndex, tt.predicted)
			require.NoError(t, err)
			assert.InDelta(t, tt.score, got.Score, 1e-9)
			assert.True(t, tt.category.Equal(got.Category), "category %s", got.Category)
			assert.True(t, tt.label.Equal(got.Label), "label %s", got.Label)
		})
	}
}

func TestAssessRisk_Errors(t *testing.T) {
	_, err := service.AssessRisk([]float64{0.5}, 1, valueobject.NumericClass(0))
	assert.ErrorIs(t, err, service.ErrInferenceFailure)

	_, err = service.AssessRisk([]float64{math.NaN(), 0.5}, 0, valueobject.NumericClass(0))
	assert.ErrorIs(t, err, service.ErrInferenceFailure)

	_, err = service.AssessRisk(nil, -1, valueobject.NumericClass(0))
	assert.ErrorIs(t, err, service.ErrInferenceFailure)
}
