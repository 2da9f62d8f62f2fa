// Package testutil holds the numeric assertion helpers shared by this
// module's tests. Internal only: everything here exists to keep the
// floating-point tolerance plumbing out of the test bodies themselves.
package testutil

import (
	"math"
	"testing"
)

// AlmostEqual reports whether a and b differ by at most tolerance.
func AlmostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

// AssertAlmostEqual fails the test when actual strays from expected by
// more than tolerance, reporting the difference alongside msg.
func AssertAlmostEqual(t *testing.T, actual, expected, tolerance float64, msg string) {
	t.Helper()
	if !AlmostEqual(actual, expected, tolerance) {
		t.Errorf("%s: expected %g, got %g (diff %.3e)", msg, expected, actual, math.Abs(actual-expected))
	}
}
