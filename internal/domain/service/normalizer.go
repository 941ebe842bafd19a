package service

import (
	"fmt"
	"slices"
	"sort"

	"github.com/acadrisk/acadrisk/internal/domain/valueobject"
)

// Feature names with special handling.
const (
	FeatureAssignmentsSubmitted = "assignments_submitted"
	FeatureAssignmentsCompleted = "assignments_completed"
	FeatureActivities           = "activities"

	// DefaultCategory fills an absent categorical feature.
	DefaultCategory = "low"
)

// WarningKind classifies a FeatureWarning.
type WarningKind string

const (
	WarningUnknownCategory WarningKind = "unknown_category"
	WarningMissingFeature  WarningKind = "missing_feature"
)

// FeatureWarning records a value the normalizer replaced.
type FeatureWarning struct {
	Given       any
	Replacement any
	Feature     string
	Kind        WarningKind
}

func (w FeatureWarning) String() string {
	switch w.Kind {
	case WarningUnknownCategory:
		return fmt.Sprintf("unknown category %v for %s, using %v", w.Given, w.Feature, w.Replacement)
	default:
		return fmt.Sprintf("missing feature %s, using %v", w.Feature, w.Replacement)
	}
}

// NormalizeFeatures reconciles a raw client record with the oracle schema.
//
// The legacy key assignments_completed is renamed to assignments_submitted
// unless the latter is present. Absent categorical features default to
// DefaultCategory and absent numeric features to 0; JSON null counts as
// absent. A categorical value outside a known, non-empty category set is
// replaced by the first known category. Schema features come first in schema
// order, followed by the remaining keys sorted by name.
func NormalizeFeatures(raw map[string]any, schema valueobject.Schema) (valueobject.FeatureRow, []FeatureWarning) {
	values := make(map[string]any, len(raw)+2)
	for k, v := range raw {
		if v != nil {
			values[k] = v
		}
	}

	if legacy, ok := values[FeatureAssignmentsCompleted]; ok {
		if _, exists := values[FeatureAssignmentsSubmitted]; !exists {
			values[FeatureAssignmentsSubmitted] = legacy
			delete(values, FeatureAssignmentsCompleted)
		}
	}

	if _, ok := values[FeatureActivities]; !ok {
		values[FeatureActivities] = DefaultCategory
	}

	var warnings []FeatureWarning
	features := make([]valueobject.Feature, 0, len(values))

	for _, name := range schema.NumericFeatures() {
		v, ok := values[name]
		if !ok {
			v = 0.0
			warnings = append(warnings, FeatureWarning{Feature: name, Kind: WarningMissingFeature, Replacement: v})
		}
		features = append(features, valueobject.Feature{Name: name, Value: v})
		delete(values, name)
	}

	for _, name := range schema.CategoricalFeatures() {
		v, ok := values[name]
		if !ok {
			v = DefaultCategory
			warnings = append(warnings, FeatureWarning{Feature: name, Kind: WarningMissingFeature, Replacement: v})
		}
		if known := schema.KnownCategories(name); len(known) > 0 {
			if s, isString := v.(string); !isString || !slices.Contains(known, s) {
				warnings = append(warnings, FeatureWarning{Feature: name, Kind: WarningUnknownCategory, Given: v, Replacement: known[0]})
				v = known[0]
			}
		}
		features = append(features, valueobject.Feature{Name: name, Value: v})
		delete(values, name)
	}

	extras := make([]string, 0, len(values))
	for name := range values {
		extras = append(extras, name)
	}
	sort.Strings(extras)
	for _, name := range extras {
		features = append(features, valueobject.Feature{Name: name, Value: values[name]})
	}

	return valueobject.NewFeatureRow(features...), warnings
}
