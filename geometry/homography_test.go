package geometry_test

import (
	"testing"

	"github.com/nmichlo/texttrack/geometry"
	"github.com/nmichlo/texttrack/internal/testutil"
)

func TestApplyHomography2D_NilIsIdentity(t *testing.T) {
	p := geometry.Vector3{X: 5, Y: -3, Z: 1}
	got := geometry.ApplyHomography2D(p, nil)
	if got != p {
		t.Errorf("nil homography should pass through unchanged, got %+v", got)
	}
}

func TestApplyHomography2D_ZeroDivisorIsIdentity(t *testing.T) {
	// h row 2 all zero -> w == 0 for any (x,y)
	h := geometry.Mat3{1, 0, 0, 0, 1, 0, 0, 0, 0}
	p := geometry.Vector3{X: 2, Y: 3, Z: 9}
	got := geometry.ApplyHomography2D(p, &h)
	if got != p {
		t.Errorf("degenerate divisor should pass through unchanged, got %+v", got)
	}
}

func TestApplyHomography2D_IdentityMatrix(t *testing.T) {
	h := geometry.Identity3()
	p := geometry.Vector3{X: 4, Y: 7, Z: 2}
	got := geometry.ApplyHomography2D(p, &h)
	testutil.AssertPointAlmostEqual(t,
		testutil.Point2D{X: got.X, Y: got.Y},
		testutil.Point2D{X: p.X, Y: p.Y}, 1e-9, "identity homography")
	testutil.AssertAlmostEqual(t, got.Z, p.Z, 1e-9, "z preserved")
}

func TestApplyHomography2D_Scale(t *testing.T) {
	// scale x by 2, y by 3
	h := geometry.Mat3{2, 0, 0, 0, 3, 0, 0, 0, 1}
	got := geometry.ApplyHomography2D(geometry.Vector3{X: 5, Y: 4, Z: 0}, &h)
	testutil.AssertAlmostEqual(t, got.X, 10, 1e-9, "scaled x")
	testutil.AssertAlmostEqual(t, got.Y, 12, 1e-9, "scaled y")
}

func TestPointInConvexQuad(t *testing.T) {
	quad := [4]geometry.Vector2{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
	}
	if !geometry.PointInConvexQuad(geometry.Vector2{X: 5, Y: 5}, quad) {
		t.Error("expected center point inside quad")
	}
	if geometry.PointInConvexQuad(geometry.Vector2{X: 15, Y: 5}, quad) {
		t.Error("expected point outside quad")
	}
}

func TestQuadCenter_IsMeanOfCorners(t *testing.T) {
	quad := [4]geometry.Vector2{
		{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 8}, {X: 0, Y: 8},
	}
	got := geometry.QuadCenter(quad)
	testutil.AssertPointAlmostEqual(t,
		testutil.Point2D{X: got.X, Y: got.Y},
		testutil.Point2D{X: 2, Y: 4}, 1e-9, "quad center")
}

func TestQuadIsConvex(t *testing.T) {
	square := [4]geometry.Vector2{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
	}
	if !geometry.QuadIsConvex(square) {
		t.Error("expected square to be convex")
	}

	// bowtie / self-intersecting ordering is not convex
	bowtie := [4]geometry.Vector2{
		{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 10},
	}
	if geometry.QuadIsConvex(bowtie) {
		t.Error("expected bowtie ordering to be non-convex")
	}
}

func TestQuadWithinBoundsAndFinite(t *testing.T) {
	ok := [4]geometry.Vector2{
		{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2, Y: 2}, {X: 1, Y: 2},
	}
	if !geometry.QuadWithinBounds(ok, 10000) {
		t.Error("expected quad within bounds")
	}
	if !geometry.QuadIsFinite(ok) {
		t.Error("expected quad finite")
	}

	oob := ok
	oob[2] = geometry.Vector2{X: 20000, Y: 2}
	if geometry.QuadWithinBounds(oob, 10000) {
		t.Error("expected quad out of bounds")
	}
}

func TestMat3FromRowMajor(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}
	m, ok := geometry.Mat3FromRowMajor(data)
	if !ok {
		t.Fatal("expected ok for length-9 slice")
	}
	if m != (geometry.Mat3{1, 2, 3, 4, 5, 6, 7, 8, 9}) {
		t.Errorf("unexpected matrix: %+v", m)
	}

	if _, ok := geometry.Mat3FromRowMajor([]float64{1, 2, 3}); ok {
		t.Error("expected !ok for wrong length")
	}
}

func TestMat3_IsFinite(t *testing.T) {
	if !geometry.Identity3().IsFinite() {
		t.Error("expected identity to be finite")
	}
}
