package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/acadrisk/acadrisk/internal/application/dto"
	"github.com/acadrisk/acadrisk/internal/domain/service"
	"github.com/acadrisk/acadrisk/internal/domain/valueobject"
)

// TestPrediction runs a fixed sample through the oracle to verify it works.
type TestPrediction struct {
	predictor *service.Predictor
}

// NewTestPrediction creates a new TestPrediction use case.
func NewTestPrediction(predictor *service.Predictor) *TestPrediction {
	return &TestPrediction{predictor: predictor}
}

// Execute scores the sample. Failures are reported in the response.
func (uc *TestPrediction) Execute(ctx context.Context) dto.TestPredictionResponse {
	oracle := uc.predictor.Oracle()

	activity := service.DefaultCategory
	if known := oracle.Schema().KnownCategories(service.FeatureActivities); len(known) > 0 {
		activity = known[0]
	}
	features := map[string]any{
		"attendance":            85.0,
		"study_hours":           25.0,
		"assignments_submitted": 10.0,
		"internal_marks":        75.0,
		"activities":            activity,
	}

	resp := dto.TestPredictionResponse{
		TestFeatures: features,
		IsFallback:   oracle.IsFallback(),
	}

	failIndex, err := uc.predictor.FailIndex()
	if err != nil {
		resp.Error = err.Error()
		resp.Message = "Prediction failed, check error details."
		return resp
	}

	probs, classes, err := uc.predictor.Infer([]valueobject.FeatureRow{uc.predictor.Normalize(ctx, features)})
	if err != nil {
		resp.Error = err.Error()
		resp.Message = "Prediction failed, check error details."
		return resp
	}

	risk, err := service.AssessRisk(probs[0], failIndex, classes[0])
	if err != nil {
		resp.Error = err.Error()
		resp.Message = "Prediction failed, check error details."
		return resp
	}

	resp.Success = true
	resp.Probabilities = probs[0]
	resp.PredictedClass = classes[0].String()
	resp.RiskScore = risk.Score
	resp.Message = "Prediction successful."
	return resp
}

type analysisCase struct {
	features map[string]any
	name     string
	expected string
}

var analysisCases = []analysisCase{
	{
		name:     "Very Low Performance",
		expected: "Should predict Fail with high risk",
		features: map[string]any{
			"attendance":            5.0,
			"study_hours":           5.0,
			"assignments_submitted": 2.0,
			"internal_marks":        30.0,
			"activities":            "low",
		},
	},
	{
		name:     "Very High Performance",
		expected: "Should predict Pass with low risk",
		features: map[string]any{
			"attendance":            95.0,
			"study_hours":           35.0,
			"assignments_submitted": 15.0,
			"internal_marks":        90.0,
			"activities":            "high",
		},
	},
	{
		name:     "Medium Performance",
		expected: "Should predict based on balanced features",
		features: map[string]any{
			"attendance":            75.0,
			"study_hours":           20.0,
			"assignments_submitted": 8.0,
			"internal_marks":        70.0,
			"activities":            "medium",
		},
	},
}

// AnalyzeModel reports importances and the oracle's behavior on canned cases.
type AnalyzeModel struct {
	predictor *service.Predictor
}

// NewAnalyzeModel creates a new AnalyzeModel use case.
func NewAnalyzeModel(predictor *service.Predictor) *AnalyzeModel {
	return &AnalyzeModel{predictor: predictor}
}

// Execute builds the analysis report. The fail probability of every case is
// read through the resolved fail index.
func (uc *AnalyzeModel) Execute(ctx context.Context) (dto.AnalysisResponse, error) {
	failIndex, err := uc.predictor.FailIndex()
	if err != nil {
		return dto.AnalysisResponse{}, err
	}

	oracle := uc.predictor.Oracle()
	schema := oracle.Schema()
	d := oracle.Describe()

	rows := make([]valueobject.FeatureRow, len(analysisCases))
	for i, c := range analysisCases {
		rows[i] = uc.predictor.Normalize(ctx, c.features)
	}

	probs, classes, err := uc.predictor.Infer(rows)
	if err != nil {
		return dto.AnalysisResponse{}, err
	}

	ordering := classNames(oracle.ClassOrdering())
	resp := dto.AnalysisResponse{
		IsFallback:            oracle.IsFallback(),
		NumericFeatures:       schema.NumericFeatures(),
		CategoricalCategories: schema.KnownCategories(service.FeatureActivities),
		FeatureImportance:     uc.predictor.Attribute(rows[0]),
		ModelInfo:             dto.ModelInfo{Kind: d.Kind, Trees: d.Trees, MaxDepth: d.MaxDepth},
		TestCases:             make([]dto.AnalysisCase, len(analysisCases)),
	}
	if resp.CategoricalCategories == nil {
		resp.CategoricalCategories = []string{}
	}

	for i, c := range analysisCases {
		risk, err := service.AssessRisk(probs[i], failIndex, classes[i])
		if err != nil {
			return dto.AnalysisResponse{}, fmt.Errorf("case %q: %w", c.name, err)
		}
		percent, _ := decimal.NewFromFloat(risk.Score).Mul(decimal.NewFromInt(100)).Round(2).Float64()

		resp.TestCases[i] = dto.AnalysisCase{
			Name:             c.name,
			Features:         c.features,
			ClassOrdering:    ordering,
			ProbFail:         risk.Score,
			ProbPass:         1 - risk.Score,
			PredictedClass:   classes[i].String(),
			PredictedLabel:   risk.Label.String(),
			RiskCategory:     risk.Category.String(),
			RiskScorePercent: percent,
			ExpectedBehavior: c.expected,
		}
	}
	return resp, nil
}
