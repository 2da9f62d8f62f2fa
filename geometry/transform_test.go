package geometry_test

import (
	"testing"

	"github.com/nmichlo/texttrack/geometry"
	"github.com/nmichlo/texttrack/internal/testutil"
)

func TestCompose_Identity(t *testing.T) {
	m := geometry.Compose(geometry.Transform3D{Scale: geometry.Vector2{X: 1, Y: 1}})
	want := geometry.Identity4()
	for i := range want {
		testutil.AssertAlmostEqual(t, m[i], want[i], 1e-9, "identity compose")
	}
}

func TestCompose_TranslationOnly(t *testing.T) {
	tr := geometry.Transform3D{
		Position: geometry.Vector3{X: 10, Y: -5, Z: 2},
		Scale:    geometry.Vector2{X: 1, Y: 1},
	}
	m := geometry.Compose(tr)
	p := m.Apply(geometry.Vector3{})
	testutil.AssertPointAlmostEqual(t,
		testutil.Point2D{X: p.X, Y: p.Y},
		testutil.Point2D{X: 10, Y: -5},
		1e-9, "translated origin")
	testutil.AssertAlmostEqual(t, p.Z, 2, 1e-9, "translated origin Z")
}

func TestCompose_ScaleAppliedBeforeRotationAndTranslation(t *testing.T) {
	tr := geometry.Transform3D{
		Position: geometry.Vector3{X: 100, Y: 0, Z: 0},
		Rotation: geometry.Vector3{Z: 90},
		Scale:    geometry.Vector2{X: 2, Y: 1},
	}
	m := geometry.Compose(tr)
	// point (1,0,0) scaled -> (2,0,0), rotated 90 about Z -> (0,2,0), translated -> (100,2,0)
	p := m.Apply(geometry.Vector3{X: 1, Y: 0, Z: 0})
	testutil.AssertAlmostEqual(t, p.X, 100, 1e-6, "x")
	testutil.AssertAlmostEqual(t, p.Y, 2, 1e-6, "y")
}

func TestProjectToScreen_ZeroRotationIsLinear(t *testing.T) {
	params := geometry.DefaultProjectionParams(1920, 1080)

	rect := []geometry.Vector3{
		{X: -0.1, Y: 0.1, Z: 0},
		{X: 0.1, Y: 0.1, Z: 0},
		{X: 0.1, Y: -0.1, Z: 0},
		{X: -0.1, Y: -0.1, Z: 0},
	}
	screen := make([]geometry.Vector2, len(rect))
	for i, p := range rect {
		screen[i] = geometry.ProjectToScreen(p, params)
	}

	// Rectangles with 0 rotation remain axis-aligned: opposite edges share
	// a coordinate.
	testutil.AssertAlmostEqual(t, screen[0].Y, screen[1].Y, 1e-6, "top edge Y")
	testutil.AssertAlmostEqual(t, screen[2].Y, screen[3].Y, 1e-6, "bottom edge Y")
	testutil.AssertAlmostEqual(t, screen[0].X, screen[3].X, 1e-6, "left edge X")
	testutil.AssertAlmostEqual(t, screen[1].X, screen[2].X, 1e-6, "right edge X")
}

func TestProjectToScreen_CentersOrigin(t *testing.T) {
	params := geometry.DefaultProjectionParams(800, 600)
	s := geometry.ProjectToScreen(geometry.Vector3{}, params)
	testutil.AssertAlmostEqual(t, s.X, 400, 1e-6, "center x")
	testutil.AssertAlmostEqual(t, s.Y, 300, 1e-6, "center y")
}
