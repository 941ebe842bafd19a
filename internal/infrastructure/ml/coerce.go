package ml

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/acadrisk/acadrisk/internal/domain/valueobject"
)

// toFloat converts a numeric feature value. Numeric strings are accepted;
// anything else is an error.
func toFloat(name string, v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("feature %s: could not convert %q to float", name, x.String())
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("feature %s: could not convert %q to float", name, x)
		}
		f = parsed
	case bool:
		if x {
			f = 1
		}
	case nil:
		f = 0
	default:
		return 0, fmt.Errorf("feature %s: unsupported value type %T", name, v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("feature %s: value is not finite", name)
	}
	return f, nil
}

// numericFeature reads a feature as a number. Absent features read as 0.
func numericFeature(row valueobject.FeatureRow, name string) (float64, error) {
	v, ok := row.Get(name)
	if !ok {
		return 0, nil
	}
	return toFloat(name, v)
}

func clamp(x, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, x))
}
