package geometry

import "math"

// Mat3 is a row-major 3x3 matrix, length 9 — chosen to match the external
// vision library's convention (gocv.FindHomography returns row-major data).
// This choice is load-bearing for ApplyHomography2D below.
type Mat3 [9]float64

// Identity3 returns the 3x3 identity matrix.
func Identity3() Mat3 {
	var m Mat3
	m[0], m[4], m[8] = 1, 1, 1
	return m
}

// ApplyHomography2D transforms the (x, y) of p by the 3x3 homography in
// homogeneous coordinates, preserving z. Fails silently (returns p
// unchanged) if h is nil or the divisor w is exactly zero producing a
// non-finite result — callers that need to detect degeneracy should check
// the returned point's IsFinite().
func ApplyHomography2D(p Vector3, h *Mat3) Vector3 {
	if h == nil {
		return p
	}
	m := *h
	xh := m[0]*p.X + m[1]*p.Y + m[2]
	yh := m[3]*p.X + m[4]*p.Y + m[5]
	w := m[6]*p.X + m[7]*p.Y + m[8]
	if w == 0 {
		return p
	}
	return Vector3{X: xh / w, Y: yh / w, Z: p.Z}
}

// PointInConvexQuad reports whether p lies inside the convex quadrilateral
// quad (4 points, any consistent winding) using a cross-product sign test.
// All four cross products must agree in sign (or be zero, i.e. on an edge).
func PointInConvexQuad(p Vector2, quad [4]Vector2) bool {
	var sign int
	for i := 0; i < 4; i++ {
		a := quad[i]
		b := quad[(i+1)%4]
		edge := Vector2{X: b.X - a.X, Y: b.Y - a.Y}
		toP := Vector2{X: p.X - a.X, Y: p.Y - a.Y}
		cross := edge.X*toP.Y - edge.Y*toP.X

		s := 0
		switch {
		case cross > 0:
			s = 1
		case cross < 0:
			s = -1
		}
		if s == 0 {
			continue
		}
		if sign == 0 {
			sign = s
		} else if s != sign {
			return false
		}
	}
	return true
}

// QuadCenter returns the arithmetic mean of the four corners.
func QuadCenter(quad [4]Vector2) Vector2 {
	var sx, sy float64
	for _, c := range quad {
		sx += c.X
		sy += c.Y
	}
	return Vector2{X: sx / 4, Y: sy / 4}
}

// QuadIsConvex reports whether the quad's cross-product signs are all
// consistent (no sign flips once zero-cross edges are ignored), i.e. the
// same winding-consistency test PointInConvexQuad relies on internally,
// exposed for invariant checks.
func QuadIsConvex(quad [4]Vector2) bool {
	var sign int
	for i := 0; i < 4; i++ {
		a := quad[i]
		b := quad[(i+1)%4]
		c := quad[(i+2)%4]
		e1 := Vector2{X: b.X - a.X, Y: b.Y - a.Y}
		e2 := Vector2{X: c.X - b.X, Y: c.Y - b.Y}
		cross := e1.X*e2.Y - e1.Y*e2.X
		s := 0
		switch {
		case cross > 0:
			s = 1
		case cross < 0:
			s = -1
		}
		if s == 0 {
			continue
		}
		if sign == 0 {
			sign = s
		} else if s != sign {
			return false
		}
	}
	return true
}

// QuadWithinBounds reports whether every corner satisfies |coordinate| <= limit.
func QuadWithinBounds(quad [4]Vector2, limit float64) bool {
	for _, c := range quad {
		if !c.WithinBounds(limit) {
			return false
		}
	}
	return true
}

// QuadIsFinite reports whether every corner coordinate is finite.
func QuadIsFinite(quad [4]Vector2) bool {
	for _, c := range quad {
		if !c.IsFinite() {
			return false
		}
	}
	return true
}

// Mat3FromRowMajor builds a Mat3 from a flat row-major slice of length 9.
// Returns (Mat3{}, false) if the length doesn't match. Callers that want a
// missing or malformed H to fail silently as identity should fall back to
// passing nil to ApplyHomography2D rather than a zero Mat3.
func Mat3FromRowMajor(data []float64) (Mat3, bool) {
	var m Mat3
	if len(data) != 9 {
		return m, false
	}
	copy(m[:], data)
	return m, true
}

// IsFinite reports whether every entry of the matrix is finite.
func (m Mat3) IsFinite() bool {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
