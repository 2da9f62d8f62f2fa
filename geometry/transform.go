package geometry

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Transform3D is a position/rotation/scale triple interpreted as an offset
// from some anchor. Rotation is in Euler degrees; scale is 2D (text has no
// depth extent of its own).
type Transform3D struct {
	Position Vector3
	Rotation Vector3 // degrees, applied X then Y then Z
	Scale    Vector2
}

// Mat4 is a column-major 4x4 matrix, length 16. Column-major is load-bearing
// for every formula in this package and must stay uniform across the
// codebase.
type Mat4 [16]float64

// Identity4 returns the 4x4 identity matrix.
func Identity4() Mat4 {
	var m Mat4
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	return m
}

func mat4FromDense(d *mat.Dense) Mat4 {
	var m Mat4
	// gonum Dense is row-major internally; we read column-major out of it.
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			m[col*4+row] = d.At(row, col)
		}
	}
	return m
}

func denseFromMat4(m Mat4) *mat.Dense {
	d := mat.NewDense(4, 4, nil)
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			d.Set(row, col, m[col*4+row])
		}
	}
	return d
}

func scaleMatrix(s Vector2) *mat.Dense {
	d := mat.NewDense(4, 4, nil)
	d.Set(0, 0, s.X)
	d.Set(1, 1, s.Y)
	d.Set(2, 2, 1)
	d.Set(3, 3, 1)
	return d
}

func rotateXMatrix(degrees float64) *mat.Dense {
	r := degrees * math.Pi / 180
	c, s := math.Cos(r), math.Sin(r)
	d := mat.NewDense(4, 4, nil)
	d.Set(0, 0, 1)
	d.Set(1, 1, c)
	d.Set(1, 2, -s)
	d.Set(2, 1, s)
	d.Set(2, 2, c)
	d.Set(3, 3, 1)
	return d
}

func rotateYMatrix(degrees float64) *mat.Dense {
	r := degrees * math.Pi / 180
	c, s := math.Cos(r), math.Sin(r)
	d := mat.NewDense(4, 4, nil)
	d.Set(0, 0, c)
	d.Set(0, 2, s)
	d.Set(1, 1, 1)
	d.Set(2, 0, -s)
	d.Set(2, 2, c)
	d.Set(3, 3, 1)
	return d
}

func rotateZMatrix(degrees float64) *mat.Dense {
	r := degrees * math.Pi / 180
	c, s := math.Cos(r), math.Sin(r)
	d := mat.NewDense(4, 4, nil)
	d.Set(0, 0, c)
	d.Set(0, 1, -s)
	d.Set(1, 0, s)
	d.Set(1, 1, c)
	d.Set(2, 2, 1)
	d.Set(3, 3, 1)
	return d
}

func translateMatrix(p Vector3) *mat.Dense {
	d := mat.NewDense(4, 4, nil)
	d.Set(0, 0, 1)
	d.Set(1, 1, 1)
	d.Set(2, 2, 1)
	d.Set(3, 3, 1)
	d.Set(0, 3, p.X)
	d.Set(1, 3, p.Y)
	d.Set(2, 3, p.Z)
	return d
}

// Compose builds the 4x4 matrix for t using the fixed order scale ->
// rotate-X -> rotate-Y -> rotate-Z -> translate, right-multiplying column
// vectors: M = T * Rz * Ry * Rx * S.
func Compose(t Transform3D) Mat4 {
	s := scaleMatrix(t.Scale)
	rx := rotateXMatrix(t.Rotation.X)
	ry := rotateYMatrix(t.Rotation.Y)
	rz := rotateZMatrix(t.Rotation.Z)
	tr := translateMatrix(t.Position)

	var rxs, ryrxs, rzryrxs, m mat.Dense
	rxs.Mul(rx, s)
	ryrxs.Mul(ry, &rxs)
	rzryrxs.Mul(rz, &ryrxs)
	m.Mul(tr, &rzryrxs)

	return mat4FromDense(&m)
}

// Apply transforms a point by the matrix, treating it as homogeneous
// (x, y, z, 1) and dropping the resulting w.
func (m Mat4) Apply(p Vector3) Vector3 {
	d := denseFromMat4(m)
	v := mat.NewDense(4, 1, []float64{p.X, p.Y, p.Z, 1})
	var out mat.Dense
	out.Mul(d, v)
	return Vector3{X: out.At(0, 0), Y: out.At(1, 0), Z: out.At(2, 0)}
}

// ProjectionParams configures ProjectToScreen. FOV is in degrees.
type ProjectionParams struct {
	Width, Height float64
	FOVDegrees    float64
	Near, Far     float64
}

// DefaultProjectionParams returns the default camera projection (fov=60,
// near=0.1, far=1000).
func DefaultProjectionParams(width, height float64) ProjectionParams {
	return ProjectionParams{Width: width, Height: height, FOVDegrees: 60, Near: 0.1, Far: 1000}
}

// ProjectToScreen performs a pinhole projection of a world point to screen
// coordinates. Z is not clipped against Near/Far; callers apply their own
// depth cues (see projection.Renderer).
func ProjectToScreen(p Vector3, params ProjectionParams) Vector2 {
	aspect := params.Width / params.Height
	f := 1.0 / math.Tan(params.FOVDegrees*math.Pi/180/2)

	x := (f/aspect*p.X + 1) * params.Width / 2
	y := (1 - f*p.Y) * params.Height / 2
	return Vector2{X: x, Y: y}
}
