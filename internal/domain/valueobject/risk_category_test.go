package valueobject_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadrisk/acadrisk/internal/domain/valueobject"
)

func TestCategoryFromScore(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		expected valueobject.RiskCategory
	}{
		{"zero is low", 0.0, valueobject.RiskCategoryLow},
		{"just below medium", 0.399999, valueobject.RiskCategoryLow},
		{"medium threshold is medium", 0.4, valueobject.RiskCategoryMedium},
		{"mid medium", 0.55, valueobject.RiskCategoryMedium},
		{"just below high", 0.699999, valueobject.RiskCategoryMedium},
		{"high threshold is high", 0.7, valueobject.RiskCategoryHigh},
		{"one is high", 1.0, valueobject.RiskCategoryHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.expected.Equal(valueobject.CategoryFromScore(tt.score)))
		})
	}
}

func TestRiskCategory_FromString(t *testing.T) {
	tests := []struct {
		input    string
		expected valueobject.RiskCategory
		wantErr  bool
	}{
		{"low", valueobject.RiskCategoryLow, false},
		{"medium", valueobject.RiskCategoryMedium, false},
		{"high", valueobject.RiskCategoryHigh, false},
		{"HIGH", valueobject.RiskCategory{}, true},
		{"", valueobject.RiskCategory{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := valueobject.RiskCategoryFromString(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(result))
			assert.Equal(t, tt.input, result.String())
		})
	}
}

func TestRiskCategory_IsZero(t *testing.T) {
	assert.True(t, valueobject.RiskCategory{}.IsZero())
	assert.False(t, valueobject.RiskCategoryLow.IsZero())
}

func TestLabelFromClass(t *testing.T) {
	tests := []struct {
		name     string
		class    valueobject.ClassLabel
		expected valueobject.PredictedLabel
	}{
		{"numeric pass", valueobject.NumericClass(1), valueobject.LabelNormal},
		{"numeric fail", valueobject.NumericClass(0), valueobject.LabelAtRisk},
		{"other numeric", valueobject.NumericClass(2), valueobject.LabelAtRisk},
		{"named pass is not numeric one", valueobject.NamedClass("Pass"), valueobject.LabelAtRisk},
		{"named one is not numeric one", valueobject.NamedClass("1"), valueobject.LabelAtRisk},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := valueobject.LabelFromClass(tt.class)
			assert.True(t, tt.expected.Equal(got), "got %s", got)
		})
	}
}

func TestPredictedLabel_FromString(t *testing.T) {
	l, err := valueobject.PredictedLabelFromString("at_risk")
	require.NoError(t, err)
	assert.True(t, l.IsAtRisk())

	l, err = valueobject.PredictedLabelFromString("normal")
	require.NoError(t, err)
	assert.False(t, l.IsAtRisk())

	_, err = valueobject.PredictedLabelFromString("fail")
	assert.Error(t, err)
}
