// Package geometry provides the pure numeric kernel shared by every tracker
// and renderer: 4x4 affine composition, perspective projection, 3x3
// homography application, and point-in-polygon testing. Nothing in this
// package holds state; every function is a value-in, value-out transform.
package geometry

import "math"

// Vector2 is a plain 2D point or offset. There are no invariants beyond
// the components being finite; non-finite values are rejected by callers
// that care (see ApplyHomography2D).
type Vector2 struct {
	X, Y float64
}

// Vector3 is a plain 3D point or offset.
type Vector3 struct {
	X, Y, Z float64
}

// Add returns the component-wise sum.
func (v Vector2) Add(o Vector2) Vector2 {
	return Vector2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns the component-wise difference.
func (v Vector2) Sub(o Vector2) Vector2 {
	return Vector2{X: v.X - o.X, Y: v.Y - o.Y}
}

// IsFinite reports whether both components are finite (not NaN/Inf).
func (v Vector2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// Add returns the component-wise sum.
func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// XY drops the Z component.
func (v Vector3) XY() Vector2 {
	return Vector2{X: v.X, Y: v.Y}
}

// IsFinite reports whether all three components are finite.
func (v Vector3) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

// WithinBounds reports whether both coordinates are within [-limit, limit].
// Used to reject degenerate corner propagation.
func (v Vector2) WithinBounds(limit float64) bool {
	return math.Abs(v.X) <= limit && math.Abs(v.Y) <= limit
}
