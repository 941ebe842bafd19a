package testutil

import (
	"time"

	"github.com/google/uuid"
)

// Fixed identifiers for deterministic tests.
var (
	TestPredictionID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	TestBatchID      = uuid.MustParse("00000000-0000-0000-0000-000000000002")
)

const TestStudentID = "STU-0001"

// FixedTime is a deterministic timestamp for stored fixtures.
var FixedTime = time.Date(2025, time.September, 1, 9, 0, 0, 0, time.UTC)

// StrugglingStudent returns raw features that score high risk on the
// heuristic model.
func StrugglingStudent() map[string]any {
	return map[string]any{
		"attendance":            5.0,
		"study_hours":           5.0,
		"assignments_submitted": 2.0,
	}
}

// StrongStudent returns raw features that score low risk on every model.
func StrongStudent() map[string]any {
	return map[string]any{
		"attendance":            95.0,
		"study_hours":           30.0,
		"internal_marks":        88.0,
		"assignments_submitted": 14.0,
		"activities":            "high",
	}
}

// LegacyStudent uses the pre-rename assignments key.
func LegacyStudent() map[string]any {
	return map[string]any{
		"attendance":            70.0,
		"study_hours":           12.0,
		"internal_marks":        60.0,
		"assignments_completed": 10.0,
		"activities":            "medium",
	}
}
