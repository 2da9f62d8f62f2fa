// Package planartrack maintains a quadrilateral region of interest whose
// motion across frames is estimated by a single 3x3 homography per frame.
// A PlanarTracker owns a feature-point grid (tracked by the pointtrack
// package) used to estimate that homography; this package never runs
// optical flow or RANSAC itself — see trackingdriver for the per-frame
// update loop that drives both.
package planartrack

import (
	"math"
	"sort"
	"sync"

	"github.com/nmichlo/texttrack/geometry"
)

// NGrid is the total number of feature-grid points generated for a fresh
// or regenerated tracker: NGrid-4 interior points plus the 4 corners, so
// the interior count is 22, not NGrid.
const NGrid = 26

// CornerLabel names the four corners in their fixed cyclic order.
type CornerLabel int

const (
	TL CornerLabel = iota
	TR
	BR
	BL
)

// PlanarCorner is one of a tracker's four corners.
type PlanarCorner struct {
	ID     int
	X, Y   float64
	Active bool
}

// Position returns the corner as a Vector2.
func (c PlanarCorner) Position() geometry.Vector2 {
	return geometry.Vector2{X: c.X, Y: c.Y}
}

// TrajectoryEntry is one append-only commit: the quad's center and four
// corners observed at a frame.
type TrajectoryEntry struct {
	Frame   int
	Center  geometry.Vector2
	Corners [4]geometry.Vector2
}

// State is the per-tracker lifecycle state machine.
type State int

const (
	Idle State = iota
	TrackingOK
	Degraded
	Lost
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case TrackingOK:
		return "TrackingOK"
	case Degraded:
		return "Degraded"
	case Lost:
		return "Lost"
	default:
		return "Unknown"
	}
}

// FeaturePoint is a grid point belonging to a tracker, tracked by optical
// flow in the surrounding pointtrack.Store. PointID is the stable ID
// the pointtrack store uses; the tracker only ever holds this reference,
// never a direct pointer, so deletion in either store can't dangle.
type FeaturePoint struct {
	PointID    int
	Confidence float64
}

// PlanarTracker is a quadrilateral region of interest tracked frame to
// frame via homography.
//
// Invariant: Center always equals the arithmetic mean of Corners; the
// quadrilateral must remain convex and within |coordinate| <= 10000.
type PlanarTracker struct {
	ID int

	Corners [4]PlanarCorner // TL, TR, BR, BL
	Center  geometry.Vector2

	FeaturePoints []FeaturePoint

	// HomographyMatrix is the last successful 3x3 homography, or nil if
	// none has ever succeeded.
	HomographyMatrix *geometry.Mat3

	// frameHomographies maps frame -> homography, kept with a sorted key
	// slice for log-time "most recent <= f" queries.
	frameHomographies map[int]geometry.Mat3
	homographyFrames  []int

	Trajectory []TrajectoryEntry

	Confidence               float64
	NeedsFeatureRegeneration bool

	State              State
	ConsecutiveDegraded int
	Active             bool
}

// corners2 returns the current corners as a plain [4]Vector2, the shape
// the geometry package's quad helpers expect.
func (t *PlanarTracker) corners2() [4]geometry.Vector2 {
	var q [4]geometry.Vector2
	for i, c := range t.Corners {
		q[i] = c.Position()
	}
	return q
}

func recenter(q [4]geometry.Vector2) geometry.Vector2 {
	return geometry.QuadCenter(q)
}

// NewPlanarTracker builds a centered axis-aligned square of side
// 0.2*min(videoW, videoH) around (cx, cy), with corners in TL, TR, BR, BL
// order, and a trajectory initialized with the singleton (frame, center,
// corners) entry.
func NewPlanarTracker(id int, cx, cy, videoW, videoH float64, frame int) *PlanarTracker {
	side := 0.2 * math.Min(videoW, videoH)
	half := side / 2

	corners := [4]geometry.Vector2{
		{X: cx - half, Y: cy - half}, // TL
		{X: cx + half, Y: cy - half}, // TR
		{X: cx + half, Y: cy + half}, // BR
		{X: cx - half, Y: cy + half}, // BL
	}

	t := &PlanarTracker{
		ID:                id,
		Center:            geometry.Vector2{X: cx, Y: cy},
		frameHomographies: make(map[int]geometry.Mat3),
		State:             Idle,
		Active:            true,
	}
	for i, c := range corners {
		t.Corners[i] = PlanarCorner{ID: i, X: c.X, Y: c.Y, Active: true}
	}
	t.Trajectory = append(t.Trajectory, TrajectoryEntry{Frame: frame, Center: t.Center, Corners: corners})
	return t
}

// RestorePlanarTracker rebuilds a PlanarTracker from persisted fields.
// frameHomographies is intentionally not part of the persisted shape (it's
// a derived cache); only the last-successful HomographyMatrix is restored,
// and the frame-indexed map starts empty.
func RestorePlanarTracker(id int, corners [4]PlanarCorner, center geometry.Vector2, featurePoints []FeaturePoint, homographyMatrix *geometry.Mat3, trajectory []TrajectoryEntry, confidence float64, needsFeatureRegeneration bool, state State, consecutiveDegraded int, active bool) *PlanarTracker {
	return &PlanarTracker{
		ID:                       id,
		Corners:                  corners,
		Center:                   center,
		FeaturePoints:            featurePoints,
		HomographyMatrix:         homographyMatrix,
		frameHomographies:        make(map[int]geometry.Mat3),
		Trajectory:               trajectory,
		Confidence:               confidence,
		NeedsFeatureRegeneration: needsFeatureRegeneration,
		State:                    state,
		ConsecutiveDegraded:      consecutiveDegraded,
		Active:                   active,
	}
}

// SetCorner updates corner i, recomputes Center, overwrites the latest
// trajectory entry with the new corners/center, and sets
// NeedsFeatureRegeneration. The next driver update starts with this quad
// as the prior frame's reference.
func (t *PlanarTracker) SetCorner(i int, x, y float64) {
	t.Corners[i].X, t.Corners[i].Y = x, y
	q := t.corners2()
	t.Center = recenter(q)
	t.NeedsFeatureRegeneration = true

	if len(t.Trajectory) == 0 {
		return
	}
	last := &t.Trajectory[len(t.Trajectory)-1]
	last.Center = t.Center
	last.Corners = q
}

// ApplyCorners overwrites all four corners at once (used by the driver
// after a successful homography propagation) and recomputes Center. The
// caller is responsible for appending the trajectory entry and storing
// the homography — ApplyCorners only updates the live quad.
func (t *PlanarTracker) ApplyCorners(q [4]geometry.Vector2) {
	for i, c := range q {
		t.Corners[i].X, t.Corners[i].Y = c.X, c.Y
	}
	t.Center = recenter(q)
}

// CommitTrajectory appends a new trajectory entry for frame f using the
// tracker's current corners/center.
func (t *PlanarTracker) CommitTrajectory(f int) {
	t.Trajectory = append(t.Trajectory, TrajectoryEntry{Frame: f, Center: t.Center, Corners: t.corners2()})
}

// StoreHomography records h as both the frame-indexed homography for f
// and the tracker's last-successful HomographyMatrix.
func (t *PlanarTracker) StoreHomography(f int, h geometry.Mat3) {
	if _, exists := t.frameHomographies[f]; !exists {
		i := sort.SearchInts(t.homographyFrames, f)
		t.homographyFrames = append(t.homographyFrames, 0)
		copy(t.homographyFrames[i+1:], t.homographyFrames[i:])
		t.homographyFrames[i] = f
	}
	t.frameHomographies[f] = h
	hc := h
	t.HomographyMatrix = &hc
}

// HomographyAtFrame returns the homography stored for frame f, if any.
func (t *PlanarTracker) HomographyAtFrame(f int) (geometry.Mat3, bool) {
	h, ok := t.frameHomographies[f]
	return h, ok
}

// IsConvex reports whether the current quad is convex.
func (t *PlanarTracker) IsConvex() bool {
	return geometry.QuadIsConvex(t.corners2())
}

// WithinBounds reports whether every corner satisfies |coordinate| <= limit.
func (t *PlanarTracker) WithinBounds(limit float64) bool {
	return geometry.QuadWithinBounds(t.corners2(), limit)
}

// SyncToFrame restores Corners/Center to the trajectory entry matching f:
// exact match first, else the most recent entry with Frame < f, else the
// earliest entry with Frame > f, else no change.
func (t *PlanarTracker) SyncToFrame(f int) {
	if len(t.Trajectory) == 0 {
		return
	}

	var exact, mostRecentBefore, earliestAfter *TrajectoryEntry
	for i := range t.Trajectory {
		e := &t.Trajectory[i]
		switch {
		case e.Frame == f:
			exact = e
		case e.Frame < f:
			if mostRecentBefore == nil || e.Frame > mostRecentBefore.Frame {
				mostRecentBefore = e
			}
		case e.Frame > f:
			if earliestAfter == nil || e.Frame < earliestAfter.Frame {
				earliestAfter = e
			}
		}
	}

	var chosen *TrajectoryEntry
	switch {
	case exact != nil:
		chosen = exact
	case mostRecentBefore != nil:
		chosen = mostRecentBefore
	case earliestAfter != nil:
		chosen = earliestAfter
	default:
		return
	}

	t.Center = chosen.Center
	for i, c := range chosen.Corners {
		t.Corners[i].X, t.Corners[i].Y = c.X, c.Y
	}
}

// Store owns every PlanarTracker for a TrackerContext, keyed by stable ID.
type Store struct {
	mu       sync.Mutex
	nextID   int
	trackers map[int]*PlanarTracker
	order    []int
}

// NewStore creates an empty planar-tracker store.
func NewStore() *Store {
	return &Store{trackers: make(map[int]*PlanarTracker)}
}

// Create builds a new tracker centered at (cx, cy) for a video of size
// (videoW, videoH) at the given frame, and adds it to the store.
func (s *Store) Create(cx, cy, videoW, videoH float64, frame int) *PlanarTracker {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.mu.Unlock()

	t := NewPlanarTracker(id, cx, cy, videoW, videoH, frame)
	s.trackers[id] = t
	s.order = append(s.order, id)
	return t
}

// Restore inserts a fully-formed PlanarTracker (typically built by
// RestorePlanarTracker when loading a saved project) and advances the ID
// counter past its ID so future Create calls never collide with it.
func (s *Store) Restore(t *PlanarTracker) {
	s.trackers[t.ID] = t
	s.order = append(s.order, t.ID)
	s.mu.Lock()
	if t.ID >= s.nextID {
		s.nextID = t.ID + 1
	}
	s.mu.Unlock()
}

// Get returns the tracker with the given ID, or (nil, false).
func (s *Store) Get(id int) (*PlanarTracker, bool) {
	t, ok := s.trackers[id]
	return t, ok
}

// Delete removes a tracker. Deleting a nonexistent ID is a no-op.
func (s *Store) Delete(id int) {
	if _, ok := s.trackers[id]; !ok {
		return
	}
	delete(s.trackers, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// GetAll returns every tracker in creation order.
func (s *Store) GetAll() []*PlanarTracker {
	out := make([]*PlanarTracker, 0, len(s.order))
	for _, id := range s.order {
		if t, ok := s.trackers[id]; ok {
			out = append(out, t)
		}
	}
	return out
}

// SyncToFrame syncs every tracker to frame f.
func (s *Store) SyncToFrame(f int) {
	for _, id := range s.order {
		if t, ok := s.trackers[id]; ok {
			t.SyncToFrame(f)
		}
	}
}
