package testutil

import "testing"

// Point2D is the minimal shape testutil needs to compare 2D points without
// importing the geometry package (which itself has tests that import
// testutil — keeping this package dependency-free avoids an import cycle).
type Point2D struct {
	X, Y float64
}

// AssertPointAlmostEqual compares two 2D points component-wise.
func AssertPointAlmostEqual(t *testing.T, actual, expected Point2D, tolerance float64, msg string) {
	t.Helper()
	AssertAlmostEqual(t, actual.X, expected.X, tolerance, msg+".X")
	AssertAlmostEqual(t, actual.Y, expected.Y, tolerance, msg+".Y")
}
