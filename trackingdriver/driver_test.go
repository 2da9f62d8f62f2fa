package trackingdriver_test

import (
	"testing"

	"gocv.io/x/gocv"

	"github.com/nmichlo/texttrack/geometry"
	"github.com/nmichlo/texttrack/internal/testutil"
	"github.com/nmichlo/texttrack/planartrack"
	"github.com/nmichlo/texttrack/pointtrack"
	"github.com/nmichlo/texttrack/trackerr"
	"github.com/nmichlo/texttrack/trackingdriver"
)

// fakeVision is a deterministic stand-in for the gocv-backed vision
// primitive so driver tests don't depend on real optical-flow/RANSAC
// numerics.
type fakeVision struct {
	flowDelta  geometry.Vector2
	flowOK     bool
	flowConf   float64
	homography geometry.Mat3
	inliers    []bool
	homogOK    bool
}

func (f fakeVision) PyramidalLK(_, _ gocv.Mat, prevPoints []geometry.Vector2, _ trackingdriver.FlowParams) ([]geometry.Vector2, []bool, []float64) {
	out := make([]geometry.Vector2, len(prevPoints))
	statuses := make([]bool, len(prevPoints))
	confs := make([]float64, len(prevPoints))
	for i, p := range prevPoints {
		out[i] = p.Add(f.flowDelta)
		statuses[i] = f.flowOK
		confs[i] = f.flowConf
	}
	return out, statuses, confs
}

func (f fakeVision) FindHomography(srcPts, dstPts []geometry.Vector2, _ trackingdriver.HomographyParams) (geometry.Mat3, []bool, bool) {
	mask := f.inliers
	if mask == nil {
		mask = make([]bool, len(srcPts))
		for i := range mask {
			mask[i] = true
		}
	}
	return f.homography, mask, f.homogOK
}

func TestUpdatePoint_CommitsOnSuccess(t *testing.T) {
	d := &trackingdriver.Driver{Vision: fakeVision{flowDelta: geometry.Vector2{X: 5, Y: 0}, flowOK: true, flowConf: 0.8}}
	p := pointtrack.NewTrackingPoint(1, 0, geometry.Vector2{X: 100, Y: 100})

	mat := gocv.NewMat()
	defer mat.Close()

	d.UpdatePoint(mat, mat, p, 0, 1)

	if !p.Active {
		t.Fatal("expected point to remain active")
	}
	got := p.GetPositionAtFrame(1)
	testutil.AssertPointAlmostEqual(t,
		testutil.Point2D{X: got.X, Y: got.Y},
		testutil.Point2D{X: 105, Y: 100}, 1e-9, "tracked position")
	testutil.AssertAlmostEqual(t, p.Confidence, 0.8, 1e-9, "confidence")
}

func TestUpdatePoint_DeactivatesOnFlowFailure(t *testing.T) {
	var reported *trackerr.Error
	d := &trackingdriver.Driver{
		Vision:       fakeVision{flowOK: false},
		OnLocalError: func(e *trackerr.Error) { reported = e },
	}
	p := pointtrack.NewTrackingPoint(1, 0, geometry.Vector2{X: 0, Y: 0})

	mat := gocv.NewMat()
	defer mat.Close()
	d.UpdatePoint(mat, mat, p, 0, 1)

	if p.Active {
		t.Fatal("expected point to be deactivated on flow failure")
	}
	if reported == nil || reported.Kind != trackerr.KindVisionPrimitiveFailure {
		t.Fatalf("expected VisionPrimitiveFailure reported, got %+v", reported)
	}
	// history retained
	if p.FrameCount() == 0 {
		t.Fatal("expected history retained after deactivation")
	}
}

func buildTrackerWithGrid(t *testing.T, pts *pointtrack.Store, cx, cy, w, h float64, frame int) *planartrack.PlanarTracker {
	t.Helper()
	tr := planartrack.NewPlanarTracker(0, cx, cy, w, h, frame)
	grid := planartrack.GenerateFeatureGrid(tr, nil)
	for _, g := range grid {
		p := pts.Create(frame, g.Position)
		tr.FeaturePoints = append(tr.FeaturePoints, planartrack.FeaturePoint{PointID: p.ID, Confidence: g.Confidence})
	}
	return tr
}

func TestUpdatePlanarTracker_IdenticalPairsYieldsIdentityAndNoCornerChange(t *testing.T) {
	planartrack.ClearGridCache()
	pts := pointtrack.NewStore()
	tr := buildTrackerWithGrid(t, pts, 500, 500, 1000, 1000, 0)

	// Commit the same position at frame 1 as frame 0 for every feature point
	// (perfectly static scene).
	for _, fp := range tr.FeaturePoints {
		p, _ := pts.Get(fp.PointID)
		pos := p.GetPositionAtFrame(0)
		p.Commit(1, pos)
	}

	originalCorners := tr.Corners

	d := &trackingdriver.Driver{Vision: fakeVision{}}
	mat := gocv.NewMat()
	defer mat.Close()
	d.UpdatePlanarTracker(mat, mat, tr, pts, 0, 1, nil)

	h, ok := tr.HomographyAtFrame(1)
	if !ok {
		t.Fatal("expected a homography stored for frame 1")
	}
	if h != geometry.Identity3() {
		t.Errorf("expected identity homography for static scene, got %+v", h)
	}
	for i := range tr.Corners {
		if tr.Corners[i] != originalCorners[i] {
			t.Errorf("corner %d changed for a static scene: got %+v, want %+v", i, tr.Corners[i], originalCorners[i])
		}
	}
	if tr.State != planartrack.TrackingOK {
		t.Errorf("expected state TrackingOK, got %v", tr.State)
	}
}

func TestUpdatePlanarTracker_InsufficientFeaturesTriggersRegeneration(t *testing.T) {
	planartrack.ClearGridCache()
	pts := pointtrack.NewStore()
	tr := planartrack.NewPlanarTracker(0, 500, 500, 1000, 1000, 0)
	// Only a handful of feature points, well under N_MIN.
	for i := 0; i < 5; i++ {
		p := pts.Create(0, geometry.Vector2{X: 490 + float64(i), Y: 490})
		tr.FeaturePoints = append(tr.FeaturePoints, planartrack.FeaturePoint{PointID: p.ID, Confidence: 1})
	}

	d := &trackingdriver.Driver{Vision: fakeVision{}}
	mat := gocv.NewMat()
	defer mat.Close()
	d.UpdatePlanarTracker(mat, mat, tr, pts, 0, 1, nil)

	if tr.State != planartrack.Degraded {
		t.Errorf("expected Degraded state, got %v", tr.State)
	}
	if tr.NeedsFeatureRegeneration {
		t.Error("expected NeedsFeatureRegeneration cleared by regenerate()")
	}
	if len(tr.FeaturePoints) == 0 {
		t.Error("expected regeneration to populate feature points")
	}
}

func TestUpdatePlanarTracker_LostAfterThreeConsecutiveDegraded(t *testing.T) {
	planartrack.ClearGridCache()
	pts := pointtrack.NewStore()
	tr := buildTrackerWithGrid(t, pts, 500, 500, 1000, 1000, 0)
	originalCorners := tr.Corners

	// A homography that flings every corner far past the coordinate
	// bound degrades the tracker (DegenerateTransform, corners reverted);
	// three such frames in a row mean Lost.
	blowUp := geometry.Mat3{
		1, 0, 50000,
		0, 1, 0,
		0, 0, 1,
	}
	d := &trackingdriver.Driver{Vision: fakeVision{homogOK: true, homography: blowUp}}
	mat := gocv.NewMat()
	defer mat.Close()

	for f := 1; f <= 3; f++ {
		// Commit a slightly different position per point so pairs are not
		// all-identical (which would short-circuit to an identity homography
		// without ever calling FindHomography).
		for _, fp := range tr.FeaturePoints {
			p, _ := pts.Get(fp.PointID)
			prev := p.GetPositionAtFrame(f - 1)
			p.Commit(f, prev.Add(geometry.Vector2{X: 1, Y: 0}))
		}
		d.UpdatePlanarTracker(mat, mat, tr, pts, f-1, f, nil)
	}

	if tr.State != planartrack.Lost {
		t.Fatalf("expected Lost after 3 consecutive degraded frames, got %v", tr.State)
	}
	if tr.Active {
		t.Error("expected tracker to be inactive once Lost")
	}
	for i := range tr.Corners {
		if tr.Corners[i] != originalCorners[i] {
			t.Errorf("corner %d moved despite every propagation being rejected", i)
		}
	}
}

func TestUpdatePlanarTracker_LocalFailuresLeaveStateUntouched(t *testing.T) {
	planartrack.ClearGridCache()
	pts := pointtrack.NewStore()
	tr := buildTrackerWithGrid(t, pts, 500, 500, 1000, 1000, 0)

	// Establish TrackingOK first via a static frame.
	for _, fp := range tr.FeaturePoints {
		p, _ := pts.Get(fp.PointID)
		p.Commit(1, p.GetPositionAtFrame(0))
	}
	d := &trackingdriver.Driver{Vision: fakeVision{}}
	mat := gocv.NewMat()
	defer mat.Close()
	d.UpdatePlanarTracker(mat, mat, tr, pts, 0, 1, nil)
	if tr.State != planartrack.TrackingOK {
		t.Fatalf("setup: expected TrackingOK, got %v", tr.State)
	}

	cases := []struct {
		name   string
		vision fakeVision
		kind   trackerr.Kind
	}{
		{"primitive failure", fakeVision{homogOK: false}, trackerr.KindVisionPrimitiveFailure},
		{"confidence too low", fakeVision{homogOK: true, inliers: []bool{true, false, false, false}}, trackerr.KindConfidenceTooLow},
	}

	for i, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := 2 + i
			for _, fp := range tr.FeaturePoints {
				p, _ := pts.Get(fp.PointID)
				prev := p.GetPositionAtFrame(f - 1)
				p.Commit(f, prev.Add(geometry.Vector2{X: 1, Y: 0}))
			}
			corners := tr.Corners
			trajectoryLen := len(tr.Trajectory)

			var reported *trackerr.Error
			d.Vision = c.vision
			d.OnLocalError = func(e *trackerr.Error) { reported = e }
			d.UpdatePlanarTracker(mat, mat, tr, pts, f-1, f, nil)

			if reported == nil || reported.Kind != c.kind {
				t.Fatalf("expected %v reported, got %+v", c.kind, reported)
			}
			if tr.State != planartrack.TrackingOK {
				t.Errorf("expected state unchanged (TrackingOK), got %v", tr.State)
			}
			if tr.ConsecutiveDegraded != 0 {
				t.Errorf("expected ConsecutiveDegraded unchanged, got %d", tr.ConsecutiveDegraded)
			}
			if tr.Corners != corners {
				t.Error("expected corners unchanged on a skipped update")
			}
			if len(tr.Trajectory) != trajectoryLen {
				t.Error("expected no trajectory entry for a skipped update")
			}
			if _, ok := tr.HomographyAtFrame(f); ok {
				t.Errorf("expected no homography stored for frame %d", f)
			}
		})
	}
}

func TestManualEditCorner_FlagsRegeneration(t *testing.T) {
	tr := planartrack.NewPlanarTracker(0, 100, 100, 1000, 1000, 0)
	d := &trackingdriver.Driver{}
	d.ManualEditCorner(tr, 0, 0, 0)

	if !tr.NeedsFeatureRegeneration {
		t.Error("expected manual edit to flag regeneration")
	}
}

func TestManualEditCorner_ReEntersIdleFromLost(t *testing.T) {
	tr := planartrack.NewPlanarTracker(0, 100, 100, 1000, 1000, 0)
	tr.State = planartrack.Lost
	tr.Active = false

	d := &trackingdriver.Driver{}
	d.ManualEditCorner(tr, 0, 50, 50)

	if tr.State != planartrack.Idle {
		t.Errorf("expected Lost -> Idle on manual edit, got %v", tr.State)
	}
	if !tr.Active {
		t.Error("expected tracker reactivated on manual edit")
	}
}
