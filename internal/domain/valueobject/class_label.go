package valueobject

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ClassLabel identifies a model output class. Classes are either integers
// (0, 1) or names ("Fail", "Pass").
type ClassLabel struct {
	name    string
	num     int64
	numeric bool
}

// NumericClass creates an integer class.
func NumericClass(n int64) ClassLabel {
	return ClassLabel{num: n, numeric: true}
}

// NamedClass creates a string class.
func NamedClass(name string) ClassLabel {
	return ClassLabel{name: name}
}

// Int returns the integer value for numeric classes.
func (c ClassLabel) Int() (int64, bool) {
	return c.num, c.numeric
}

// Name returns the name for string classes.
func (c ClassLabel) Name() (string, bool) {
	return c.name, !c.numeric
}

// IsNumeric reports whether the class is an integer class.
func (c ClassLabel) IsNumeric() bool {
	return c.numeric
}

// String returns a display form. Numeric and named classes with the same
// text are still distinct under Equal.
func (c ClassLabel) String() string {
	if c.numeric {
		return strconv.FormatInt(c.num, 10)
	}
	return c.name
}

// Equal compares kind and value.
func (c ClassLabel) Equal(other ClassLabel) bool {
	if c.numeric != other.numeric {
		return false
	}
	if c.numeric {
		return c.num == other.num
	}
	return c.name == other.name
}

// MarshalJSON encodes numeric classes as JSON numbers and named classes as strings.
func (c ClassLabel) MarshalJSON() ([]byte, error) {
	if c.numeric {
		return []byte(strconv.FormatInt(c.num, 10)), nil
	}
	return json.Marshal(c.name)
}

// UnmarshalJSON accepts an integral JSON number or a string.
func (c *ClassLabel) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = NamedClass(s)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("class label must be a number or string: %w", err)
	}
	if f != math.Trunc(f) {
		return fmt.Errorf("numeric class label must be integral, got %v", f)
	}
	*c = NumericClass(int64(f))
	return nil
}

// ClassOrdering is the model's label list in probability-vector order.
type ClassOrdering []ClassLabel

// IndexOf returns the position of label, or -1.
func (o ClassOrdering) IndexOf(label ClassLabel) int {
	for i, c := range o {
		if c.Equal(label) {
			return i
		}
	}
	return -1
}
