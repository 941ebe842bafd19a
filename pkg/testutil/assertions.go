package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertErrorContains checks that err contains the expected substring.
func AssertErrorContains(t *testing.T, err error, expected string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), expected)
	}
}

// AssertSumsToOne checks that the weights add up to 1 within tolerance.
func AssertSumsToOne(t *testing.T, weights map[string]float64, tolerance float64) {
	t.Helper()
	var total float64
	for _, w := range weights {
		total += w
	}
	assert.InDelta(t, 1.0, total, tolerance, "weights %v", weights)
}
