package valueobject

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Feature is one named value in a FeatureRow.
type Feature struct {
	Value any
	Name  string
}

// FeatureRow is an ordered set of features. Order is significant: schema
// features come first in schema order, followed by pass-through extras.
type FeatureRow struct {
	features []Feature
}

// NewFeatureRow builds a row. Later duplicates replace earlier values in place.
func NewFeatureRow(features ...Feature) FeatureRow {
	row := FeatureRow{features: make([]Feature, 0, len(features))}
	for _, f := range features {
		row = row.With(f.Name, f.Value)
	}
	return row
}

// With returns a copy of the row with name set to value.
func (r FeatureRow) With(name string, value any) FeatureRow {
	out := make([]Feature, len(r.features), len(r.features)+1)
	copy(out, r.features)
	for i := range out {
		if out[i].Name == name {
			out[i].Value = value
			return FeatureRow{features: out}
		}
	}
	return FeatureRow{features: append(out, Feature{Name: name, Value: value})}
}

// Get returns the value for name.
func (r FeatureRow) Get(name string) (any, bool) {
	for _, f := range r.features {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Names returns feature names in row order.
func (r FeatureRow) Names() []string {
	names := make([]string, len(r.features))
	for i, f := range r.features {
		names[i] = f.Name
	}
	return names
}

// Features returns a copy of the features in row order.
func (r FeatureRow) Features() []Feature {
	out := make([]Feature, len(r.features))
	copy(out, r.features)
	return out
}

// Len returns the number of features.
func (r FeatureRow) Len() int {
	return len(r.features)
}

// Map returns the row as an unordered map.
func (r FeatureRow) Map() map[string]any {
	m := make(map[string]any, len(r.features))
	for _, f := range r.features {
		m[f.Name] = f.Value
	}
	return m
}

// MarshalJSON encodes the row as a JSON object preserving row order.
func (r FeatureRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.features {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", f.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping key order.
func (r *FeatureRow) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("feature row must be a JSON object")
	}

	row := FeatureRow{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("feature %q: %w", name, err)
		}
		if n, ok := v.(json.Number); ok {
			if f, err := n.Float64(); err == nil {
				v = f
			}
		}
		row = row.With(name, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = row
	return nil
}
