package valueobject

import "fmt"

// PredictedLabel is the outward label of a prediction.
type PredictedLabel struct {
	value string
}

var (
	LabelNormal = PredictedLabel{value: "normal"}
	LabelAtRisk = PredictedLabel{value: "at_risk"}
)

// PredictedLabelFromString reconstructs a label from its string representation.
func PredictedLabelFromString(s string) (PredictedLabel, error) {
	switch s {
	case "normal":
		return LabelNormal, nil
	case "at_risk":
		return LabelAtRisk, nil
	default:
		return PredictedLabel{}, fmt.Errorf("invalid predicted label: %s", s)
	}
}

// LabelFromClass maps a predicted class to a label. Only the numeric class 1
// is normal; every other class, named classes included, is at risk.
func LabelFromClass(c ClassLabel) PredictedLabel {
	if n, ok := c.Int(); ok && n == 1 {
		return LabelNormal
	}
	return LabelAtRisk
}

// String returns the string representation.
func (l PredictedLabel) String() string {
	return l.value
}

// IsZero returns true if the label has not been set.
func (l PredictedLabel) IsZero() bool {
	return l.value == ""
}

// Equal checks equality with another PredictedLabel.
func (l PredictedLabel) Equal(other PredictedLabel) bool {
	return l.value == other.value
}

// IsAtRisk returns true for the at_risk label.
func (l PredictedLabel) IsAtRisk() bool {
	return l.value == "at_risk"
}
