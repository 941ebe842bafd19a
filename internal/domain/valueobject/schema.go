package valueobject

import "slices"

// Schema describes the features a model consumes: ordered numeric features,
// ordered categorical features and, per categorical feature, the closed set
// of known categories. An empty category set means the categories are unknown.
type Schema struct {
	categories  map[string][]string
	numeric     []string
	categorical []string
}

// NewSchema creates a Schema. Category lists are copied.
func NewSchema(numeric, categorical []string, categories map[string][]string) Schema {
	cats := make(map[string][]string, len(categories))
	for k, v := range categories {
		cats[k] = slices.Clone(v)
	}
	return Schema{
		numeric:     slices.Clone(numeric),
		categorical: slices.Clone(categorical),
		categories:  cats,
	}
}

// NumericFeatures returns the numeric feature names in model order.
func (s Schema) NumericFeatures() []string { return slices.Clone(s.numeric) }

// CategoricalFeatures returns the categorical feature names in model order.
func (s Schema) CategoricalFeatures() []string { return slices.Clone(s.categorical) }

// FeatureNames returns numeric then categorical names.
func (s Schema) FeatureNames() []string {
	return append(slices.Clone(s.numeric), s.categorical...)
}

// KnownCategories returns the known categories for a categorical feature.
func (s Schema) KnownCategories(feature string) []string {
	return slices.Clone(s.categories[feature])
}

// IsNumeric reports whether name is a numeric feature.
func (s Schema) IsNumeric(name string) bool {
	return slices.Contains(s.numeric, name)
}

// IsZero reports whether the schema declares no features.
func (s Schema) IsZero() bool {
	return len(s.numeric) == 0 && len(s.categorical) == 0
}
