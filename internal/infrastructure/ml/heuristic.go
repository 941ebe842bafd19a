package ml

import (
	"fmt"

	"github.com/acadrisk/acadrisk/internal/domain/port"
	"github.com/acadrisk/acadrisk/internal/domain/valueobject"
)

// Heuristic weights and normalization caps.
const (
	heuristicAttendanceWeight  = 0.4
	heuristicStudyHoursWeight  = 0.35
	heuristicAssignmentsWeight = 0.25

	maxAttendance  = 100.0
	maxStudyHours  = 40.0
	maxAssignments = 15.0
)

// TrainingSchema is the feature layout the production model is trained on.
// The heuristic uses it too, without a known category set.
func TrainingSchema(categories []string) valueobject.Schema {
	var cats map[string][]string
	if len(categories) > 0 {
		cats = map[string][]string{"activities": categories}
	}
	return valueobject.NewSchema(
		[]string{"attendance", "study_hours", "internal_marks", "assignments_submitted"},
		[]string{"activities"},
		cats,
	)
}

// Heuristic is the stand-in oracle used when no trained model is available.
// Its probability vector is [pass, fail] and its class ordering is [1, 0].
type Heuristic struct {
	source string
}

// NewHeuristic creates a Heuristic. source records where a model was expected.
func NewHeuristic(source string) *Heuristic {
	return &Heuristic{source: source}
}

// Risk computes the fail probability of one row.
func (h *Heuristic) Risk(row valueobject.FeatureRow) (float64, error) {
	attendance, err := numericFeature(row, "attendance")
	if err != nil {
		return 0, err
	}
	hours, err := numericFeature(row, "study_hours")
	if err != nil {
		return 0, err
	}
	assignments, err := numericFeature(row, "assignments_submitted")
	if err != nil {
		return 0, err
	}

	a := clamp(attendance, 0, maxAttendance) / maxAttendance
	s := clamp(hours, 0, maxStudyHours) / maxStudyHours
	g := clamp(assignments, 0, maxAssignments) / maxAssignments

	score := heuristicAttendanceWeight*a + heuristicStudyHoursWeight*s + heuristicAssignmentsWeight*g
	return clamp(1-score, 0, 1), nil
}

// PredictProba returns [1-risk, risk] per row.
func (h *Heuristic) PredictProba(rows []valueobject.FeatureRow) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		risk, err := h.Risk(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = []float64{1 - risk, risk}
	}
	return out, nil
}

// Predict returns class 1 when risk is below one half and class 0 otherwise.
func (h *Heuristic) Predict(rows []valueobject.FeatureRow) ([]valueobject.ClassLabel, error) {
	out := make([]valueobject.ClassLabel, len(rows))
	for i, row := range rows {
		risk, err := h.Risk(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if risk < 0.5 {
			out[i] = valueobject.NumericClass(1)
		} else {
			out[i] = valueobject.NumericClass(0)
		}
	}
	return out, nil
}

// ClassOrdering reports that index 0 holds the pass probability.
func (h *Heuristic) ClassOrdering() valueobject.ClassOrdering {
	return valueobject.ClassOrdering{valueobject.NumericClass(1), valueobject.NumericClass(0)}
}

func (h *Heuristic) Schema() valueobject.Schema { return TrainingSchema(nil) }
func (h *Heuristic) IsFallback() bool           { return true }

func (h *Heuristic) Describe() port.Descriptor {
	return port.Descriptor{Kind: port.OracleKindHeuristic, Source: h.source}
}

// Attribution returns the fixed heuristic weights.
func (h *Heuristic) Attribution(valueobject.FeatureRow) map[string]float64 {
	return map[string]float64{
		"attendance":            heuristicAttendanceWeight,
		"study_hours":           heuristicStudyHoursWeight,
		"assignments_submitted": heuristicAssignmentsWeight,
	}
}

var (
	_ port.Oracle     = (*Heuristic)(nil)
	_ port.Attributor = (*Heuristic)(nil)
)
