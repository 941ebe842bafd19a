package port

import (
	"github.com/acadrisk/acadrisk/internal/domain/valueobject"
)

// Oracle kinds reported by Descriptor.Kind.
const (
	OracleKindForest    = "random_forest"
	OracleKindHeuristic = "heuristic"
)

// Descriptor carries diagnostic facts about a loaded oracle.
type Descriptor struct {
	Kind     string
	Source   string
	Checksum string
	// Trees and MaxDepth are zero for oracles without an ensemble.
	Trees    int
	MaxDepth int
}

// Oracle is the classification capability the predictor depends on. Both the
// trained model and the heuristic fallback implement it. Implementations are
// immutable after load and safe for concurrent use.
type Oracle interface {
	// PredictProba returns one probability vector per row, indexed by ClassOrdering.
	PredictProba(rows []valueobject.FeatureRow) ([][]float64, error)

	// Predict returns the predicted class per row, consistent with PredictProba.
	Predict(rows []valueobject.FeatureRow) ([]valueobject.ClassLabel, error)

	// ClassOrdering returns the class labels in probability-vector order.
	ClassOrdering() valueobject.ClassOrdering

	// Schema returns the features the oracle consumes.
	Schema() valueobject.Schema

	// IsFallback reports whether this is the heuristic stand-in.
	IsFallback() bool

	// Describe returns diagnostic metadata.
	Describe() Descriptor
}

// ImportanceSource is implemented by oracles exposing structural feature
// importances over the post-preprocessing feature space, where a
// categorical feature expands to "<feature>_<category>" entries.
type ImportanceSource interface {
	FeatureImportances() (map[string]float64, error)
}

// Attributor is implemented by oracles that compute a per-row attribution
// directly.
type Attributor interface {
	Attribution(row valueobject.FeatureRow) map[string]float64
}
