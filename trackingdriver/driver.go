// Package trackingdriver runs the per-frame update loop (C4): optical-flow
// point tracking, RANSAC homography estimation, corner propagation, and
// feature regeneration. It is the only package that depends on the
// external vision primitives (gocv); pointtrack and planartrack stay pure.
package trackingdriver

import (
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"

	"github.com/nmichlo/texttrack/geometry"
	"github.com/nmichlo/texttrack/planartrack"
	"github.com/nmichlo/texttrack/pointtrack"
	"github.com/nmichlo/texttrack/trackerr"
)

const (
	// TauConf is the confidence threshold below which feature points and
	// homography results are discarded.
	TauConf = 0.3
	// NMin is the minimum surviving feature-point count below which
	// regeneration is triggered.
	NMin = 15
	// RegenerationMinSpacing is the minimum distance (px) a newly
	// admitted regeneration point must keep from every preserved point.
	RegenerationMinSpacing = 20
	// IdenticalPairEpsilon is the per-axis delta below which a
	// prev/curr pair is considered numerically unchanged (post-scrub).
	IdenticalPairEpsilon = 0.1
	// CornerBoundsLimit bounds corner coordinates per the data model's
	// |coordinate| <= 10000 invariant.
	CornerBoundsLimit = 10000
	// ConsecutiveDegradedToLost is the number of consecutive degraded
	// frames after which a tracker transitions to Lost.
	ConsecutiveDegradedToLost = 3
	// RegenerationConfidenceVarianceLimit flags a regenerated feature
	// grid whose per-point confidence variance exceeds this, a sign the
	// grid leans on a handful of strong survivors over a weak fill.
	RegenerationConfidenceVarianceLimit = 0.15
)

// Driver runs the per-frame update loop over a point store and a planar
// tracker store. It holds no frame data itself — callers supply the
// previous/current grayscale frames for each call, per the single-
// threaded cooperative scheduling model: the driver never retains a
// Mat across a suspension point.
type Driver struct {
	Vision VisionPrimitive
	Flow   FlowParams
	Homog  HomographyParams

	// OnLocalError, if set, is invoked for every local (non-fatal)
	// failure — the progress-callback hook in the local-vs-fatal error
	// propagation policy. It must not block; the driver treats it as best-effort
	// logging, not a gate on progress.
	OnLocalError func(err *trackerr.Error)

	// Smoother, if set, damps optical-flow jitter before a position is
	// committed (pointtrack's opt-in Kalman smoother). Left nil by
	// default, which preserves the exact-bytes trajectory replay law for
	// callers that never ask for smoothing.
	Smoother *pointtrack.Smoother
}

// NewDriver builds a Driver wired to the default gocv-backed vision
// primitive and default flow/homography parameters.
func NewDriver() *Driver {
	return &Driver{
		Vision: GocvVisionPrimitive{},
		Flow:   DefaultFlowParams(),
		Homog:  DefaultHomographyParams(),
	}
}

func (d *Driver) reportLocal(kind trackerr.Kind, op, msg string) {
	if d.OnLocalError != nil {
		d.OnLocalError(trackerr.New(kind, op, msg))
	}
}

// UpdatePoint advances a single independent point from fPrev to fNew using
// optical flow. On success it commits the new position at fNew with a
// clamped confidence; on failure it marks the point inactive but keeps
// its history.
func (d *Driver) UpdatePoint(prevGray, currGray gocv.Mat, p *pointtrack.TrackingPoint, fPrev, fNew int) {
	prevPos := p.GetPositionAtFrame(fPrev)
	newPts, statuses, confidences := d.Vision.PyramidalLK(prevGray, currGray, []geometry.Vector2{prevPos}, FlowParams{
		WindowSize:      p.AdaptiveWindowSize,
		MaxLevel:        d.Flow.MaxLevel,
		MaxIter:         d.Flow.MaxIter,
		Epsilon:         d.Flow.Epsilon,
		MinEigThreshold: d.Flow.MinEigThreshold,
	})

	if len(newPts) == 0 || !statuses[0] {
		p.Active = false
		d.reportLocal(trackerr.KindVisionPrimitiveFailure, "trackingdriver.UpdatePoint", "flow primitive failed for point")
		return
	}

	conf := confidences[0]
	if conf < 0 {
		conf = 0
	} else if conf > 1 {
		conf = 1
	}
	p.Confidence = conf
	p.Active = true

	newPos := newPts[0]
	if d.Smoother != nil {
		newPos = d.Smoother.Smooth(p.ID, newPos)
	}
	p.Commit(fNew, newPos)
}

// planarUpdateInput is the per-feature-point data the driver needs for one
// planar-tracker update: its prev/curr positions plus its pointtrack ID.
type planarUpdateInput struct {
	pointID int
	prev    geometry.Vector2
	curr    geometry.Vector2
}

// UpdatePlanarTracker runs one frame of the per-planar-tracker update:
// gather surviving feature correspondences, regenerate if too
// few remain, special-case an all-identical pair set (post-scrub), else
// run RANSAC homography and propagate it to the current corners.
func (d *Driver) UpdatePlanarTracker(prevGray, currGray gocv.Mat, t *planartrack.PlanarTracker, pts *pointtrack.Store, fPrev, fNew int, src planartrack.GradientSource) {
	inputs := d.gatherSurvivingPairs(t, pts, fPrev, fNew)

	if len(inputs) < NMin {
		d.reportLocal(trackerr.KindInsufficientFeatures, "trackingdriver.UpdatePlanarTracker", "fewer than N_MIN feature points survived filtering")
		d.regenerate(t, pts, fNew, src)
		d.transitionOnDegraded(t)
		return
	}

	if allIdentical(inputs, IdenticalPairEpsilon) {
		t.Confidence = 1
		t.StoreHomography(fNew, geometry.Identity3())
		t.CommitTrajectory(fNew)
		d.transitionOnSuccess(t)
		return
	}

	src2, dst2 := make([]geometry.Vector2, len(inputs)), make([]geometry.Vector2, len(inputs))
	for i, in := range inputs {
		src2[i] = in.prev
		dst2[i] = in.curr
	}

	h, inlierMask, ok := d.Vision.FindHomography(src2, dst2, d.Homog)
	if !ok {
		// Local failure: the update is skipped, tracker state untouched.
		d.reportLocal(trackerr.KindVisionPrimitiveFailure, "trackingdriver.UpdatePlanarTracker", "homography primitive returned empty matrix")
		return
	}

	confidence := inlierFraction(inlierMask)
	t.Confidence = confidence
	if confidence < TauConf {
		// Same local policy as a primitive failure.
		d.reportLocal(trackerr.KindConfidenceTooLow, "trackingdriver.UpdatePlanarTracker", "inlier fraction below tau_conf")
		return
	}

	current := [4]geometry.Vector2{}
	for i, c := range t.Corners {
		current[i] = c.Position()
	}

	var propagated [4]geometry.Vector2
	for i, c := range current {
		p := geometry.ApplyHomography2D(geometry.Vector3{X: c.X, Y: c.Y}, &h)
		propagated[i] = p.XY()
	}

	if !geometry.QuadIsFinite(propagated) || !geometry.QuadWithinBounds(propagated, CornerBoundsLimit) {
		d.reportLocal(trackerr.KindDegenerateTransform, "trackingdriver.UpdatePlanarTracker", "propagated corners NaN or out of range")
		d.transitionOnDegraded(t)
		return
	}

	t.ApplyCorners(propagated)
	t.CommitTrajectory(fNew)
	t.StoreHomography(fNew, h)
	d.transitionOnSuccess(t)
}

func (d *Driver) gatherSurvivingPairs(t *planartrack.PlanarTracker, pts *pointtrack.Store, fPrev, fNew int) []planarUpdateInput {
	var out []planarUpdateInput
	for _, fp := range t.FeaturePoints {
		p, ok := pts.Get(fp.PointID)
		if !ok || !p.Active || p.Confidence <= TauConf {
			continue
		}
		out = append(out, planarUpdateInput{
			pointID: fp.PointID,
			prev:    p.GetPositionAtFrame(fPrev),
			curr:    p.GetPositionAtFrame(fNew),
		})
	}
	return out
}

// inlierFraction reduces a RANSAC inlier mask to a [0,1] confidence via
// gonum/stat.Mean over a 0/1-coded sample.
func inlierFraction(mask []bool) float64 {
	if len(mask) == 0 {
		return 0
	}
	samples := make([]float64, len(mask))
	for i, in := range mask {
		if in {
			samples[i] = 1
		}
	}
	return stat.Mean(samples, nil)
}

func allIdentical(inputs []planarUpdateInput, eps float64) bool {
	for _, in := range inputs {
		d := in.curr.Sub(in.prev)
		if d.X >= eps || d.X <= -eps || d.Y >= eps || d.Y <= -eps {
			return false
		}
	}
	return true
}

// regenerate preserves feature points still inside the (possibly edited)
// quad with confidence > TauConf, deactivates the rest, and generates a
// fresh uniform grid, admitting new points only if farther than
// RegenerationMinSpacing from every preserved point, until NGrid is
// reached.
func (d *Driver) regenerate(t *planartrack.PlanarTracker, pts *pointtrack.Store, fNew int, src planartrack.GradientSource) {
	quad := [4]geometry.Vector2{}
	for i, c := range t.Corners {
		quad[i] = c.Position()
	}

	var preserved []planartrack.FeaturePoint
	var preservedPos []geometry.Vector2
	for _, fp := range t.FeaturePoints {
		p, ok := pts.Get(fp.PointID)
		if !ok {
			continue
		}
		if !p.Active || p.Confidence <= TauConf {
			p.Active = false
			continue
		}
		pos := p.GetPositionAtFrame(fNew)
		if !geometry.PointInConvexQuad(pos, quad) {
			p.Active = false
			continue
		}
		preserved = append(preserved, fp)
		preservedPos = append(preservedPos, pos)
	}

	grid := planartrack.GenerateFeatureGrid(t, src)
	for _, g := range grid {
		if len(preserved) >= planartrack.NGrid {
			break
		}
		if tooClose(g.Position, preservedPos, RegenerationMinSpacing) {
			continue
		}
		np := pts.Create(fNew, g.Position)
		np.Confidence = g.Confidence
		preserved = append(preserved, planartrack.FeaturePoint{PointID: np.ID, Confidence: g.Confidence})
		preservedPos = append(preservedPos, g.Position)
	}

	t.FeaturePoints = preserved
	t.NeedsFeatureRegeneration = false

	if variance := confidenceVariance(preserved); variance > RegenerationConfidenceVarianceLimit {
		d.reportLocal(trackerr.KindConfidenceTooLow, "trackingdriver.regenerate", "preserved feature-point confidence is highly uneven after regeneration")
	}
}

// confidenceVariance reports the sample variance of a regenerated feature
// grid's per-point confidence, a cheap way to flag a grid that mixes a
// few very confident survivors with a pile of fresh low-confidence
// fills (uneven coverage the caller may want to log).
func confidenceVariance(fps []planartrack.FeaturePoint) float64 {
	if len(fps) < 2 {
		return 0
	}
	samples := make([]float64, len(fps))
	for i, fp := range fps {
		samples[i] = fp.Confidence
	}
	return stat.Variance(samples, nil)
}

func tooClose(p geometry.Vector2, others []geometry.Vector2, minDist float64) bool {
	for _, o := range others {
		d := p.Sub(o)
		if d.X*d.X+d.Y*d.Y < minDist*minDist {
			return true
		}
	}
	return false
}

// ManualEditCorner applies a user-driven corner edit: update corner i,
// recompute center, overwrite the latest trajectory entry, and flag
// regeneration for the next driver pass. This also resets the tracker's
// incremental homography reference —
// callers should not expect frameHomographies for frames before this
// edit to remain meaningful as a "from-here" baseline.
func (d *Driver) ManualEditCorner(t *planartrack.PlanarTracker, i int, x, y float64) {
	t.SetCorner(i, x, y)
	if t.State == planartrack.Lost {
		t.State = planartrack.Idle
		t.Active = true
	}
}

func (d *Driver) transitionOnSuccess(t *planartrack.PlanarTracker) {
	t.ConsecutiveDegraded = 0
	t.State = planartrack.TrackingOK
}

// transitionOnDegraded is reserved for the two conditions that demote a
// tracker — feature starvation and a degenerate corner propagation. A
// plain primitive failure or a low inlier fraction skips the update and
// leaves state alone.
func (d *Driver) transitionOnDegraded(t *planartrack.PlanarTracker) {
	t.ConsecutiveDegraded++
	t.State = planartrack.Degraded
	d.maybeDeclaresLost(t)
}

func (d *Driver) maybeDeclaresLost(t *planartrack.PlanarTracker) {
	if t.ConsecutiveDegraded >= ConsecutiveDegradedToLost {
		t.State = planartrack.Lost
		t.Active = false
	}
}
