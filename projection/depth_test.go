package projection_test

import (
	"testing"

	"github.com/nmichlo/texttrack/internal/testutil"
	"github.com/nmichlo/texttrack/projection"
)

func TestDepthScale_AtZeroDepthIsOne(t *testing.T) {
	got := projection.DepthScale(0)
	want := projection.CameraZ / projection.CameraZ
	testutil.AssertAlmostEqual(t, got, want, 1e-9, "depth scale at z=0")
}

func TestDepthScale_NonPositiveDivisorFallsBackToOne(t *testing.T) {
	got := projection.DepthScale(projection.CameraZ)
	testutil.AssertAlmostEqual(t, got, 1, 1e-9, "depth scale at z==cameraZ")

	got = projection.DepthScale(projection.CameraZ + 100)
	testutil.AssertAlmostEqual(t, got, 1, 1e-9, "depth scale beyond cameraZ")
}

func TestForeshorten_ZeroRotationIsIdentity(t *testing.T) {
	fx, fy := projection.Foreshorten(10, 20, 0, 0)
	testutil.AssertAlmostEqual(t, fx, 10, 1e-9, "foreshorten x")
	testutil.AssertAlmostEqual(t, fy, 20, 1e-9, "foreshorten y")
}

func TestForeshorten_NinetyDegreesCollapsesToZero(t *testing.T) {
	fx, fy := projection.Foreshorten(10, 20, 90, 90)
	testutil.AssertAlmostEqual(t, fx, 0, 1e-6, "foreshorten x at 90deg")
	testutil.AssertAlmostEqual(t, fy, 0, 1e-6, "foreshorten y at 90deg")
}

func TestDepthOpacity_NearIsFullyOpaque(t *testing.T) {
	got := projection.DepthOpacity(projection.CameraZ - 300)
	testutil.AssertAlmostEqual(t, got, 1.0, 1e-9, "depth opacity at near radius")
	got = projection.DepthOpacity(projection.CameraZ)
	testutil.AssertAlmostEqual(t, got, 1.0, 1e-9, "depth opacity at camera plane")
}

func TestDepthOpacity_FarFloorsAt0_3(t *testing.T) {
	got := projection.DepthOpacity(projection.CameraZ - 800)
	testutil.AssertAlmostEqual(t, got, 0.3, 1e-9, "depth opacity at far radius")
	got = projection.DepthOpacity(projection.CameraZ - 2000)
	testutil.AssertAlmostEqual(t, got, 0.3, 1e-9, "depth opacity beyond far radius")
}

func TestDepthOpacity_LinearBetweenNearAndFar(t *testing.T) {
	// Midpoint between 300 and 800 is 550: opacity should be halfway
	// between 1.0 and 0.3.
	got := projection.DepthOpacity(projection.CameraZ - 550)
	testutil.AssertAlmostEqual(t, got, 0.65, 1e-9, "depth opacity at midpoint")
}
