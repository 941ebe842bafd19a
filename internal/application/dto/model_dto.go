package dto

import "time"

// ModelLoad records how the oracle was obtained at startup.
type ModelLoad struct {
	LoadedAt       time.Time
	Location       string
	Error          string
	ArtifactExists bool
}

// ModelSchema describes the features an oracle consumes.
type ModelSchema struct {
	Categories  map[string][]string `json:"categories,omitempty"`
	Numeric     []string            `json:"numeric"`
	Categorical []string            `json:"categorical"`
}

// ModelStatusResponse is the output DTO of the ModelStatus use case.
type ModelStatusResponse struct {
	LoadedAt       time.Time   `json:"loaded_at"`
	FailIndex      *int        `json:"fail_index"`
	Schema         ModelSchema `json:"schema"`
	ClassOrdering  []string    `json:"class_ordering"`
	Source         string      `json:"source"`
	Kind           string      `json:"kind"`
	Checksum       string      `json:"checksum,omitempty"`
	LoadError      string      `json:"load_error,omitempty"`
	SchemaError    string      `json:"schema_error,omitempty"`
	Message        string      `json:"message"`
	Trees          int         `json:"trees,omitempty"`
	MaxDepth       int         `json:"max_depth,omitempty"`
	ModelLoaded    bool        `json:"model_loaded"`
	IsFallback     bool        `json:"is_fallback"`
	ArtifactExists bool        `json:"artifact_exists"`
}

// TestPredictionResponse is the output DTO of the TestPrediction use case.
type TestPredictionResponse struct {
	TestFeatures   map[string]any `json:"test_features"`
	Probabilities  []float64      `json:"probabilities,omitempty"`
	PredictedClass string         `json:"predicted_class,omitempty"`
	Error          string         `json:"error,omitempty"`
	Message        string         `json:"message"`
	RiskScore      float64        `json:"risk_score"`
	Success        bool           `json:"success"`
	IsFallback     bool           `json:"is_fallback"`
}

// AnalysisCase is one canned scenario in the model analysis report.
type AnalysisCase struct {
	Features         map[string]any `json:"features"`
	Name             string         `json:"name"`
	PredictedClass   string         `json:"predicted_class"`
	PredictedLabel   string         `json:"predicted_label"`
	RiskCategory     string         `json:"risk_category"`
	ExpectedBehavior string         `json:"expected_behavior"`
	ClassOrdering    []string       `json:"class_order"`
	ProbFail         float64        `json:"prob_fail"`
	ProbPass         float64        `json:"prob_pass"`
	RiskScorePercent float64        `json:"risk_score_percent"`
}

// ModelInfo summarizes ensemble structure.
type ModelInfo struct {
	Kind     string `json:"kind"`
	Trees    int    `json:"n_estimators,omitempty"`
	MaxDepth int    `json:"max_depth,omitempty"`
}

// AnalysisResponse is the output DTO of the AnalyzeModel use case.
type AnalysisResponse struct {
	FeatureImportance     map[string]float64 `json:"feature_importance"`
	NumericFeatures       []string           `json:"numeric_features"`
	CategoricalCategories []string           `json:"categorical_categories"`
	TestCases             []AnalysisCase     `json:"test_cases"`
	ModelInfo             ModelInfo          `json:"model_info"`
	IsFallback            bool               `json:"is_fallback"`
}
