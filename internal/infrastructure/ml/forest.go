package ml

import (
	"fmt"

	"github.com/acadrisk/acadrisk/internal/domain/port"
	"github.com/acadrisk/acadrisk/internal/domain/valueobject"
)

// Forest evaluates a validated random-forest Artifact.
type Forest struct {
	artifact *Artifact
	schema   valueobject.Schema
	source   string
	checksum string
	maxDepth int
}

// NewForest validates the artifact and prepares it for evaluation.
func NewForest(a *Artifact, source, checksum string) (*Forest, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	depth := a.MaxDepth
	if depth == 0 {
		for _, t := range a.Trees {
			depth = max(depth, t.depth())
		}
	}
	return &Forest{
		artifact: a,
		schema:   a.Schema(),
		source:   source,
		checksum: checksum,
		maxDepth: depth,
	}, nil
}

// transform maps a raw row into the expanded feature space.
func (f *Forest) transform(row valueobject.FeatureRow) ([]float64, error) {
	pre := f.artifact.Preprocessor
	x := make([]float64, 0, len(f.artifact.ExpandedFeatureNames()))

	for i, name := range pre.Numeric.Features {
		v, err := numericFeature(row, name)
		if err != nil {
			return nil, err
		}
		scale := pre.Numeric.Scale[i]
		if scale == 0 {
			scale = 1
		}
		x = append(x, (v-pre.Numeric.Mean[i])/scale)
	}

	for _, c := range pre.Categorical {
		v, _ := row.Get(c.Feature)
		s, _ := v.(string)
		for _, cat := range c.Categories {
			if s == cat {
				x = append(x, 1)
			} else {
				x = append(x, 0)
			}
		}
	}
	return x, nil
}

func (t Tree) leaf(x []float64) []float64 {
	node := 0
	for t.ChildrenLeft[node] != -1 {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return t.Value[node]
}

// PredictProba averages the normalized leaf distributions of all trees.
func (f *Forest) PredictProba(rows []valueobject.FeatureRow) ([][]float64, error) {
	nClasses := len(f.artifact.Classes)
	out := make([][]float64, len(rows))

	for i, row := range rows {
		x, err := f.transform(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}

		proba := make([]float64, nClasses)
		for _, t := range f.artifact.Trees {
			value := t.leaf(x)
			var total float64
			for _, w := range value {
				total += w
			}
			for k, w := range value {
				if total > 0 {
					proba[k] += w / total
				} else {
					proba[k] += 1 / float64(nClasses)
				}
			}
		}
		for k := range proba {
			proba[k] /= float64(len(f.artifact.Trees))
		}
		out[i] = proba
	}
	return out, nil
}

// Predict returns the class with the highest averaged probability. Ties go
// to the earlier class.
func (f *Forest) Predict(rows []valueobject.FeatureRow) ([]valueobject.ClassLabel, error) {
	proba, err := f.PredictProba(rows)
	if err != nil {
		return nil, err
	}
	out := make([]valueobject.ClassLabel, len(proba))
	for i, p := range proba {
		best := 0
		for k := range p {
			if p[k] > p[best] {
				best = k
			}
		}
		out[i] = f.artifact.Classes[best]
	}
	return out, nil
}

func (f *Forest) ClassOrdering() valueobject.ClassOrdering {
	return append(valueobject.ClassOrdering{}, f.artifact.Classes...)
}

func (f *Forest) Schema() valueobject.Schema { return f.schema }
func (f *Forest) IsFallback() bool           { return false }

func (f *Forest) Describe() port.Descriptor {
	trees := f.artifact.NEstimators
	if trees == 0 {
		trees = len(f.artifact.Trees)
	}
	return port.Descriptor{
		Kind:     port.OracleKindForest,
		Source:   f.source,
		Checksum: f.checksum,
		Trees:    trees,
		MaxDepth: f.maxDepth,
	}
}

// FeatureImportances returns the stored importances keyed by expanded
// feature name, or nil when the artifact carries none.
func (f *Forest) FeatureImportances() (map[string]float64, error) {
	if f.artifact.FeatureImportances == nil {
		return nil, nil
	}
	names := f.artifact.ExpandedFeatureNames()
	out := make(map[string]float64, len(names))
	for i, name := range names {
		out[name] = f.artifact.FeatureImportances[i]
	}
	return out, nil
}

var (
	_ port.Oracle           = (*Forest)(nil)
	_ port.ImportanceSource = (*Forest)(nil)
)
