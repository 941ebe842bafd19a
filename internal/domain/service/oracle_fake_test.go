package service_test

import (
	"github.com/acadrisk/acadrisk/internal/domain/port"
	"github.com/acadrisk/acadrisk/internal/domain/valueobject"
)

var studentSchema = valueobject.NewSchema(
	[]string{"attendance", "study_hours", "internal_marks", "assignments_submitted"},
	[]string{"activities"},
	map[string][]string{"activities": {"high", "low", "medium"}},
)

var passFail = valueobject.ClassOrdering{valueobject.NumericClass(0), valueobject.NumericClass(1)}

// fakeOracle is a hand-written Oracle whose behavior is set per test.
type fakeOracle struct {
	probaFunc   func(rows []valueobject.FeatureRow) ([][]float64, error)
	predictFunc func(rows []valueobject.FeatureRow) ([]valueobject.ClassLabel, error)
	ordering    valueobject.ClassOrdering
	schema      valueobject.Schema
	probaCalls  int
}

func newFakeOracle(failProb float64) *fakeOracle {
	return &fakeOracle{
		ordering: passFail,
		schema:   studentSchema,
		probaFunc: func(rows []valueobject.FeatureRow) ([][]float64, error) {
			out := make([][]float64, len(rows))
			for i := range rows {
				out[i] = []float64{failProb, 1 - failProb}
			}
			return out, nil
		},
		predictFunc: func(rows []valueobject.FeatureRow) ([]valueobject.ClassLabel, error) {
			out := make([]valueobject.ClassLabel, len(rows))
			for i := range rows {
				if failProb >= 0.5 {
					out[i] = valueobject.NumericClass(0)
				} else {
					out[i] = valueobject.NumericClass(1)
				}
			}
			return out, nil
		},
	}
}

func (f *fakeOracle) PredictProba(rows []valueobject.FeatureRow) ([][]float64, error) {
	f.probaCalls++
	return f.probaFunc(rows)
}

func (f *fakeOracle) Predict(rows []valueobject.FeatureRow) ([]valueobject.ClassLabel, error) {
	return f.predictFunc(rows)
}

func (f *fakeOracle) ClassOrdering() valueobject.ClassOrdering { return f.ordering }
func (f *fakeOracle) Schema() valueobject.Schema               { return f.schema }
func (f *fakeOracle) IsFallback() bool                         { return false }
func (f *fakeOracle) Describe() port.Descriptor                { return port.Descriptor{Kind: "fake"} }

// structuralOracle adds ImportanceSource.
type structuralOracle struct {
	*fakeOracle
	importancesFunc func() (map[string]float64, error)
}

func (s *structuralOracle) FeatureImportances() (map[string]float64, error) {
	return s.importancesFunc()
}

// attributingOracle adds Attributor.
type attributingOracle struct {
	*fakeOracle
	attributionFunc func(row valueobject.FeatureRow) map[string]float64
}

func (a *attributingOracle) Attribution(row valueobject.FeatureRow) map[string]float64 {
	return a.attributionFunc(row)
}
