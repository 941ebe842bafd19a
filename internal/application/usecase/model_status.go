package usecase

import (
	"context"

	"github.com/acadrisk/acadrisk/internal/application/dto"
	"github.com/acadrisk/acadrisk/internal/domain/service"
	"github.com/acadrisk/acadrisk/internal/domain/valueobject"
)

// ModelStatus reports which oracle is active and what it expects.
type ModelStatus struct {
	predictor *service.Predictor
	load      dto.ModelLoad
}

// NewModelStatus creates a new ModelStatus use case.
func NewModelStatus(predictor *service.Predictor, load dto.ModelLoad) *ModelStatus {
	return &ModelStatus{predictor: predictor, load: load}
}

// Ready reports whether predictions can be served.
func (uc *ModelStatus) Ready() error {
	_, err := uc.predictor.FailIndex()
	return err
}

// Execute builds the status report.
func (uc *ModelStatus) Execute(_ context.Context) dto.ModelStatusResponse {
	oracle := uc.predictor.Oracle()
	d := oracle.Describe()

	resp := dto.ModelStatusResponse{
		ModelLoaded:    !oracle.IsFallback(),
		IsFallback:     oracle.IsFallback(),
		Source:         d.Source,
		ArtifactExists: uc.load.ArtifactExists,
		LoadedAt:       uc.load.LoadedAt,
		LoadError:      uc.load.Error,
		Kind:           d.Kind,
		Checksum:       d.Checksum,
		Trees:          d.Trees,
		MaxDepth:       d.MaxDepth,
		Schema:         describeSchema(oracle.Schema()),
		ClassOrdering:  classNames(oracle.ClassOrdering()),
	}

	if idx, err := uc.predictor.FailIndex(); err != nil {
		resp.SchemaError = err.Error()
	} else {
		resp.FailIndex = &idx
	}

	switch {
	case resp.SchemaError != "":
		resp.Message = "Model class ordering has no fail class; predictions are unavailable."
	case oracle.IsFallback():
		resp.Message = "Heuristic fallback model is being used. Train and deploy a model artifact."
	default:
		resp.Message = "Trained model is loaded."
	}
	return resp
}

func describeSchema(s valueobject.Schema) dto.ModelSchema {
	out := dto.ModelSchema{
		Numeric:     s.NumericFeatures(),
		Categorical: s.CategoricalFeatures(),
	}
	for _, name := range out.Categorical {
		if known := s.KnownCategories(name); len(known) > 0 {
			if out.Categories == nil {
				out.Categories = make(map[string][]string)
			}
			out.Categories[name] = known
		}
	}
	return out
}

func classNames(ordering valueobject.ClassOrdering) []string {
	out := make([]string, len(ordering))
	for i, c := range ordering {
		out[i] = c.String()
	}
	return out
}
