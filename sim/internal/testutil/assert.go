// Package testutil provides assertion helpers shared by the sim test packages.
package testutil

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertSumAtMost fails if the values sum to more than limit plus an absolute
// tolerance.
func AssertSumAtMost(t *testing.T, name string, values []float64, limit, absTol float64) {
	t.Helper()
	if sum := floats.Sum(values); sum > limit+absTol {
		t.Errorf("%s: sum %v exceeds %v (tolerance %v)", name, sum, limit, absTol)
	}
}
