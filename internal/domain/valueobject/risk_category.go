package valueobject

import "fmt"

// Score thresholds for the risk tiers. A score equal to a threshold belongs
// to the upper tier.
const (
	RiskThresholdHigh   = 0.7
	RiskThresholdMedium = 0.4
)

// RiskCategory is an immutable value object representing the three-tier risk
// classification of a fail probability.
type RiskCategory struct {
	value string
}

var (
	RiskCategoryLow    = RiskCategory{value: "low"}
	RiskCategoryMedium = RiskCategory{value: "medium"}
	RiskCategoryHigh   = RiskCategory{value: "high"}
)

// RiskCategoryFromString reconstructs a RiskCategory from its string representation.
func RiskCategoryFromString(s string) (RiskCategory, error) {
	switch s {
	case "low":
		return RiskCategoryLow, nil
	case "medium":
		return RiskCategoryMedium, nil
	case "high":
		return RiskCategoryHigh, nil
	default:
		return RiskCategory{}, fmt.Errorf("invalid risk category: %s", s)
	}
}

// CategoryFromScore maps a risk score in [0,1] to its tier.
func CategoryFromScore(score float64) RiskCategory {
	switch {
	case score >= RiskThresholdHigh:
		return RiskCategoryHigh
	case score >= RiskThresholdMedium:
		return RiskCategoryMedium
	default:
		return RiskCategoryLow
	}
}

// String returns the string representation.
func (r RiskCategory) String() string {
	return r.value
}

// IsZero returns true if the RiskCategory has not been set.
func (r RiskCategory) IsZero() bool {
	return r.value == ""
}

// Equal checks equality with another RiskCategory.
func (r RiskCategory) Equal(other RiskCategory) bool {
	return r.value == other.value
}
