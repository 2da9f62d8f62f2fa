package trackingdriver_test

// End-to-end scenario tests driving trackingdriver.Driver across several
// frames against a real pointtrack.Store/planartrack.Store pair, rather
// than asserting on a single mocked call. Scenarios are scripted as
// synthetic fakeVision sequences and replayed frame by frame against
// real store state.

import (
	"math"
	"testing"

	"gocv.io/x/gocv"

	"github.com/nmichlo/texttrack/geometry"
	"github.com/nmichlo/texttrack/planartrack"
	"github.com/nmichlo/texttrack/pointtrack"
	"github.com/nmichlo/texttrack/trackingdriver"
)

// scenarioVision feeds a fixed per-frame flow delta and homography to the
// driver, letting a test script a whole scenario's motion without a real
// video.
type scenarioVision struct {
	flowDelta geometry.Vector2
	homog     geometry.Mat3
}

func (v scenarioVision) PyramidalLK(_, _ gocv.Mat, prevPoints []geometry.Vector2, _ trackingdriver.FlowParams) ([]geometry.Vector2, []bool, []float64) {
	out := make([]geometry.Vector2, len(prevPoints))
	ok := make([]bool, len(prevPoints))
	conf := make([]float64, len(prevPoints))
	for i, p := range prevPoints {
		out[i] = p.Add(v.flowDelta)
		ok[i] = true
		conf[i] = 0.9
	}
	return out, ok, conf
}

func (v scenarioVision) FindHomography(srcPts, _ []geometry.Vector2, _ trackingdriver.HomographyParams) (geometry.Mat3, []bool, bool) {
	mask := make([]bool, len(srcPts))
	for i := range mask {
		mask[i] = true
	}
	return v.homog, mask, true
}

func buildScenarioTracker(pts *pointtrack.Store, cx, cy, w, h float64, frame int) *planartrack.PlanarTracker {
	planartrack.ClearGridCache()
	tr := planartrack.NewPlanarTracker(0, cx, cy, w, h, frame)
	grid := planartrack.GenerateFeatureGrid(tr, nil)
	for _, g := range grid {
		p := pts.Create(frame, g.Position)
		tr.FeaturePoints = append(tr.FeaturePoints, planartrack.FeaturePoint{PointID: p.ID, Confidence: g.Confidence})
	}
	return tr
}

func advanceFeaturePoints(t *planartrack.PlanarTracker, pts *pointtrack.Store, d *trackingdriver.Driver, mat gocv.Mat, fPrev, fNew int) {
	for _, fp := range t.FeaturePoints {
		if p, ok := pts.Get(fp.PointID); ok && p.Active {
			d.UpdatePoint(mat, mat, p, fPrev, fNew)
		}
	}
}

// TestScenario_StaticScene: a perfectly still scene (every feature point
// reports the same position frame to frame) must yield the identity
// homography and confidence >= 0.95 every frame — the "Homography
// identity" law.
func TestScenario_StaticScene(t *testing.T) {
	pts := pointtrack.NewStore()
	tr := buildScenarioTracker(pts, 500, 500, 1000, 1000, 0)
	originalCorners := tr.Corners

	d := &trackingdriver.Driver{Vision: scenarioVision{}}
	mat := gocv.NewMat()
	defer mat.Close()

	for f := 1; f <= 5; f++ {
		for _, fp := range tr.FeaturePoints {
			p, _ := pts.Get(fp.PointID)
			pos := p.GetPositionAtFrame(f - 1)
			p.Commit(f, pos)
		}
		d.UpdatePlanarTracker(mat, mat, tr, pts, f-1, f, nil)

		if tr.Confidence < 0.95 {
			t.Fatalf("frame %d: expected confidence >= 0.95 for a static scene, got %v", f, tr.Confidence)
		}
		h, ok := tr.HomographyAtFrame(f)
		if !ok || h != geometry.Identity3() {
			t.Fatalf("frame %d: expected identity homography, got %+v (ok=%v)", f, h, ok)
		}
		if tr.State != planartrack.TrackingOK {
			t.Fatalf("frame %d: expected TrackingOK, got %v", f, tr.State)
		}
	}
	for i := range tr.Corners {
		if tr.Corners[i] != originalCorners[i] {
			t.Errorf("corner %d drifted in a static scene: got %+v, want %+v", i, tr.Corners[i], originalCorners[i])
		}
	}
}

// TestScenario_PureTranslation: every feature point and corner drifts by
// the same constant delta each frame. After N frames the tracker's
// corners must have shifted by exactly N*delta and tracking must stay OK
// throughout.
func TestScenario_PureTranslation(t *testing.T) {
	pts := pointtrack.NewStore()
	tr := buildScenarioTracker(pts, 500, 500, 1000, 1000, 0)
	startCorners := tr.Corners

	delta := geometry.Vector2{X: 3, Y: -2}
	d := &trackingdriver.Driver{Vision: scenarioVision{
		flowDelta: delta,
		homog: geometry.Mat3{
			1, 0, delta.X,
			0, 1, delta.Y,
			0, 0, 1,
		},
	}}
	mat := gocv.NewMat()
	defer mat.Close()

	const frames = 10
	for f := 1; f <= frames; f++ {
		advanceFeaturePoints(tr, pts, d, mat, f-1, f)
		d.UpdatePlanarTracker(mat, mat, tr, pts, f-1, f, nil)

		if tr.State != planartrack.TrackingOK {
			t.Fatalf("frame %d: expected TrackingOK during pure translation, got %v", f, tr.State)
		}
	}

	for i := range tr.Corners {
		want := geometry.Vector2{
			X: startCorners[i].X + delta.X*frames,
			Y: startCorners[i].Y + delta.Y*frames,
		}
		got := tr.Corners[i].Position()
		if math.Abs(got.X-want.X) > 1e-6 || math.Abs(got.Y-want.Y) > 1e-6 {
			t.Errorf("corner %d after %d frames: got %+v, want %+v", i, frames, got, want)
		}
	}
}

// TestScenario_Rotation30Degrees: a single frame's homography rotates the
// tracked quad by 30 degrees about its center. Corners must end up at the
// rotated positions and the tracker must remain TrackingOK.
func TestScenario_Rotation30Degrees(t *testing.T) {
	pts := pointtrack.NewStore()
	tr := buildScenarioTracker(pts, 0, 0, 1000, 1000, 0)
	startCorners := tr.Corners

	const degrees = 30.0
	rad := degrees * math.Pi / 180
	cosT, sinT := math.Cos(rad), math.Sin(rad)
	homog := geometry.Mat3{
		cosT, -sinT, 0,
		sinT, cosT, 0,
		0, 0, 1,
	}

	d := &trackingdriver.Driver{Vision: scenarioVision{homog: homog}}
	mat := gocv.NewMat()
	defer mat.Close()

	// Feature points must move (else the identical-pair shortcut fires
	// and the fake homography is never consulted), but their exact
	// positions don't matter — FindHomography is mocked to return the
	// scripted rotation regardless of input.
	for _, fp := range tr.FeaturePoints {
		p, _ := pts.Get(fp.PointID)
		prev := p.GetPositionAtFrame(0)
		p.Commit(1, prev.Add(geometry.Vector2{X: 1, Y: 1}))
	}
	d.UpdatePlanarTracker(mat, mat, tr, pts, 0, 1, nil)

	if tr.State != planartrack.TrackingOK {
		t.Fatalf("expected TrackingOK after a clean rotation, got %v", tr.State)
	}
	for i, c := range startCorners {
		pos := c.Position()
		want := geometry.ApplyHomography2D(geometry.Vector3{X: pos.X, Y: pos.Y}, &homog).XY()
		got := tr.Corners[i].Position()
		if math.Abs(got.X-want.X) > 1e-6 || math.Abs(got.Y-want.Y) > 1e-6 {
			t.Errorf("corner %d: got %+v, want %+v (30deg rotation)", i, got, want)
		}
	}
}

// TestScenario_OcclusionDegradesThenRecovers: an occluder sweeps over
// the tracked square, wiping out roughly half the feature grid on frames
// 5-6 and 8-9 (lifting briefly at 7). Every occluded frame must degrade
// the tracker and regenerate its grid in place; tracking must be OK
// again by frame 11 and the tracker must never be declared Lost.
func TestScenario_OcclusionDegradesThenRecovers(t *testing.T) {
	pts := pointtrack.NewStore()
	tr := buildScenarioTracker(pts, 500, 500, 1000, 1000, 0)

	d := &trackingdriver.Driver{Vision: scenarioVision{}}
	mat := gocv.NewMat()
	defer mat.Close()

	occluded := map[int]bool{5: true, 6: true, 8: true, 9: true}
	regenerations := 0

	for f := 1; f <= 12; f++ {
		if occluded[f] {
			// Points under the occluder lose optical flow this frame.
			for i, fp := range tr.FeaturePoints {
				if i%2 == 0 {
					p, _ := pts.Get(fp.PointID)
					p.Active = false
				}
			}
		} else {
			for _, fp := range tr.FeaturePoints {
				p, _ := pts.Get(fp.PointID)
				if !p.Active {
					continue
				}
				p.Commit(f, p.GetPositionAtFrame(f-1))
			}
		}

		d.UpdatePlanarTracker(mat, mat, tr, pts, f-1, f, nil)

		if occluded[f] {
			if tr.State != planartrack.Degraded {
				t.Fatalf("frame %d: expected Degraded under occlusion, got %v", f, tr.State)
			}
			// Regeneration must have dropped the lost points and
			// refilled the grid with live ones.
			if len(tr.FeaturePoints) < trackingdriver.NMin {
				t.Fatalf("frame %d: expected regeneration to refill the grid, have %d points", f, len(tr.FeaturePoints))
			}
			for _, fp := range tr.FeaturePoints {
				if p, ok := pts.Get(fp.PointID); !ok || !p.Active {
					t.Fatalf("frame %d: regenerated grid kept a dead point %d", f, fp.PointID)
				}
			}
			regenerations++
		}
		if tr.State == planartrack.Lost {
			t.Fatalf("frame %d: tracker declared Lost during a recoverable occlusion", f)
		}
	}

	if regenerations == 0 {
		t.Fatal("expected at least one regeneration event")
	}
	if tr.State != planartrack.TrackingOK {
		t.Fatalf("expected TrackingOK once the occluder passed, got %v", tr.State)
	}
	if !tr.Active {
		t.Fatal("expected tracker still active after recovery")
	}
}
