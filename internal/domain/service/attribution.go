package service

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/acadrisk/acadrisk/internal/domain/port"
	"github.com/acadrisk/acadrisk/internal/domain/valueobject"
)

// AttributionExtractor produces per-feature contribution weights for a
// prediction. It never fails: every error degrades to a simpler source.
type AttributionExtractor struct {
	logger *slog.Logger
}

// NewAttributionExtractor creates an AttributionExtractor.
func NewAttributionExtractor(logger *slog.Logger) *AttributionExtractor {
	return &AttributionExtractor{logger: logger}
}

// Extract returns weights keyed by original feature name.
//
// Structural importances are preferred: expanded categorical entries are
// summed into their parent feature and the result is normalized to 1. An
// all-zero mapping is returned as is. Without structural importances the
// oracle's own attribution is used, then a uniform split over the row's
// model features. A row with no features yields an empty map.
func (a *AttributionExtractor) Extract(oracle port.Oracle, row valueobject.FeatureRow) map[string]float64 {
	schema := a.schema(oracle)

	if src, ok := oracle.(port.ImportanceSource); ok {
		raw, err := a.structural(src)
		if err == nil && len(raw) > 0 {
			return collapseImportances(raw, schema)
		}
		if err != nil {
			a.logger.Warn("attribution failure, using fallback", "error", err)
		}
	}

	if attr, ok := oracle.(port.Attributor); ok {
		weights, err := a.direct(attr, row)
		if err == nil && len(weights) > 0 {
			normalize(weights)
			return weights
		}
		if err != nil {
			a.logger.Warn("attribution failure, using uniform weights", "error", err)
		}
	}

	return uniform(modelFeatures(row, schema))
}

func (a *AttributionExtractor) schema(oracle port.Oracle) (s valueobject.Schema) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn("attribution failure reading schema", "panic", r)
			s = valueobject.Schema{}
		}
	}()
	return oracle.Schema()
}

func (a *AttributionExtractor) structural(src port.ImportanceSource) (raw map[string]float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("feature importances panicked: %v", r)
		}
	}()
	return src.FeatureImportances()
}

func (a *AttributionExtractor) direct(attr port.Attributor, row valueobject.FeatureRow) (weights map[string]float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("attribution panicked: %v", r)
		}
	}()
	src := attr.Attribution(row)
	weights = make(map[string]float64, len(src))
	for k, v := range src {
		weights[k] = v
	}
	return weights, nil
}

// collapseImportances sums "<parent>_<category>" entries into parent for
// each categorical parent, then normalizes. Numeric features keep their own
// entry even when their name carries a categorical prefix.
func collapseImportances(raw map[string]float64, schema valueobject.Schema) map[string]float64 {
	categorical := schema.CategoricalFeatures()
	out := make(map[string]float64, len(raw))
	for name, w := range raw {
		if schema.IsNumeric(name) {
			out[name] += w
			continue
		}
		out[parentFeature(name, categorical)] += w
	}
	normalize(out)
	return out
}

// parentFeature returns the longest categorical parent prefixing name.
func parentFeature(name string, categorical []string) string {
	parent := name
	best := 0
	for _, c := range categorical {
		if strings.HasPrefix(name, c+"_") && len(c) > best {
			parent, best = c, len(c)
		}
	}
	return parent
}

// normalize scales weights to sum to 1 when the total is positive.
func normalize(weights map[string]float64) {
	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return
	}
	for k, w := range weights {
		weights[k] = w / total
	}
}

// modelFeatures leaves out request keys the model schema does not name.
func modelFeatures(row valueobject.FeatureRow, schema valueobject.Schema) []string {
	var names []string
	for _, n := range schema.FeatureNames() {
		if _, ok := row.Get(n); ok {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		names = row.Names()
	}
	return names
}

func uniform(names []string) map[string]float64 {
	out := make(map[string]float64, len(names))
	if len(names) == 0 {
		return out
	}
	w := 1.0 / float64(len(names))
	for _, n := range names {
		out[n] = w
	}
	return out
}
