package ml

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/acadrisk/acadrisk/internal/domain/valueobject"
)

// ArtifactFormat is the only supported artifact format identifier.
const ArtifactFormat = "forest/v1"

// ErrInvalidArtifact wraps every artifact decoding and validation failure.
var ErrInvalidArtifact = errors.New("invalid model artifact")

// Artifact is the serialized form of a trained random forest together with
// its preprocessing pipeline.
type Artifact struct {
	Format             string                    `json:"format"`
	Classes            valueobject.ClassOrdering `json:"classes"`
	Preprocessor       Preprocessor              `json:"preprocessor"`
	Trees              []Tree                    `json:"trees"`
	FeatureImportances []float64                 `json:"feature_importances,omitempty"`
	NEstimators        int                       `json:"n_estimators,omitempty"`
	MaxDepth           int                       `json:"max_depth,omitempty"`
}

// Preprocessor mirrors a standard-scaler plus one-hot column transformer.
type Preprocessor struct {
	Numeric     NumericTransform       `json:"numeric"`
	Categorical []CategoricalTransform `json:"categorical"`
}

// NumericTransform standardizes numeric features as (x - mean) / scale.
type NumericTransform struct {
	Features []string  `json:"features"`
	Mean     []float64 `json:"mean"`
	Scale    []float64 `json:"scale"`
}

// CategoricalTransform one-hot encodes a feature. Unknown values encode as
// all zeros.
type CategoricalTransform struct {
	Feature    string   `json:"feature"`
	Categories []string `json:"categories"`
}

// Tree is a decision tree in flat-array form. Leaves have children -1.
// Value holds per-class weights at every node.
type Tree struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

// DecodeArtifact parses and validates an artifact.
func DecodeArtifact(data []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Checksum returns the hex SHA-256 of raw artifact bytes.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ExpandedFeatureNames lists the post-preprocessing feature space: numeric
// features, then "<feature>_<category>" per categorical feature.
func (a *Artifact) ExpandedFeatureNames() []string {
	names := append([]string{}, a.Preprocessor.Numeric.Features...)
	for _, c := range a.Preprocessor.Categorical {
		for _, cat := range c.Categories {
			names = append(names, c.Feature+"_"+cat)
		}
	}
	return names
}

// Schema returns the raw feature schema the artifact consumes.
func (a *Artifact) Schema() valueobject.Schema {
	categorical := make([]string, 0, len(a.Preprocessor.Categorical))
	categories := make(map[string][]string, len(a.Preprocessor.Categorical))
	for _, c := range a.Preprocessor.Categorical {
		categorical = append(categorical, c.Feature)
		categories[c.Feature] = c.Categories
	}
	return valueobject.NewSchema(a.Preprocessor.Numeric.Features, categorical, categories)
}

// Validate checks structural consistency so evaluation cannot index out of
// range or loop.
func (a *Artifact) Validate() error {
	if a.Format != ArtifactFormat {
		return fmt.Errorf("%w: unsupported format %q", ErrInvalidArtifact, a.Format)
	}
	if len(a.Classes) < 2 {
		return fmt.Errorf("%w: need at least two classes, got %d", ErrInvalidArtifact, len(a.Classes))
	}

	num := a.Preprocessor.Numeric
	if len(num.Mean) != len(num.Features) || len(num.Scale) != len(num.Features) {
		return fmt.Errorf("%w: numeric transform has %d features, %d means, %d scales",
			ErrInvalidArtifact, len(num.Features), len(num.Mean), len(num.Scale))
	}

	seen := make(map[string]bool)
	for _, f := range num.Features {
		if seen[f] {
			return fmt.Errorf("%w: duplicate feature %q", ErrInvalidArtifact, f)
		}
		seen[f] = true
	}
	for _, c := range a.Preprocessor.Categorical {
		if seen[c.Feature] {
			return fmt.Errorf("%w: duplicate feature %q", ErrInvalidArtifact, c.Feature)
		}
		seen[c.Feature] = true
		if len(c.Categories) == 0 {
			return fmt.Errorf("%w: categorical feature %q has no categories", ErrInvalidArtifact, c.Feature)
		}
	}

	width := len(a.ExpandedFeatureNames())
	if width == 0 {
		return fmt.Errorf("%w: no input features", ErrInvalidArtifact)
	}
	if len(a.Trees) == 0 {
		return fmt.Errorf("%w: no trees", ErrInvalidArtifact)
	}
	for i, t := range a.Trees {
		if err := t.validate(width, len(a.Classes)); err != nil {
			return fmt.Errorf("%w: tree %d: %w", ErrInvalidArtifact, i, err)
		}
	}
	if a.FeatureImportances != nil && len(a.FeatureImportances) != width {
		return fmt.Errorf("%w: %d feature importances for %d expanded features",
			ErrInvalidArtifact, len(a.FeatureImportances), width)
	}
	return nil
}

func (t Tree) validate(width, classes int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return errors.New("empty tree")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return errors.New("node arrays differ in length")
	}
	parented := make([]bool, n)
	for node := 0; node < n; node++ {
		left, right := t.ChildrenLeft[node], t.ChildrenRight[node]
		if left == -1 && right == -1 {
			if len(t.Value[node]) != classes {
				return fmt.Errorf("leaf %d has %d class values, want %d", node, len(t.Value[node]), classes)
			}
			continue
		}
		// Children must point forward so traversal terminates.
		if left <= node || left >= n || right <= node || right >= n {
			return fmt.Errorf("node %d has invalid children %d/%d", node, left, right)
		}
		// Each node has at most one parent, keeping the tree a tree.
		if left == right || parented[left] || parented[right] {
			return fmt.Errorf("node %d shares a child with another split", node)
		}
		parented[left], parented[right] = true, true
		if t.Feature[node] < 0 || t.Feature[node] >= width {
			return fmt.Errorf("node %d splits on feature %d outside [0,%d)", node, t.Feature[node], width)
		}
	}
	return nil
}

// depth returns the longest root-to-leaf path length.
func (t Tree) depth() int {
	var walk func(node int) int
	walk = func(node int) int {
		if t.ChildrenLeft[node] == -1 {
			return 0
		}
		return 1 + max(walk(t.ChildrenLeft[node]), walk(t.ChildrenRight[node]))
	}
	return walk(0)
}
