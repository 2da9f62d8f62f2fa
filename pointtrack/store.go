// Package pointtrack maintains isolated feature points across frames: each
// TrackingPoint has a stable identity, a frame-indexed position history, and
// an append-only trajectory. Store is the arena that owns every point for
// a TrackerContext; points are never referenced directly across package
// boundaries, only by ID (see trackerctx for why).
package pointtrack

import (
	"sort"
	"sync"

	"github.com/nmichlo/texttrack/geometry"
)

// TrajectoryEntry is one append-only commit: a position observed at a frame.
type TrajectoryEntry struct {
	Frame    int
	Position geometry.Vector2
}

// TrackingPoint identifies a single tracked feature point.
//
// Invariant: if Active, there exists a position for the current frame
// either in FramePositions or mirrored into X/Y.
type TrackingPoint struct {
	ID int

	// X, Y mirror the last commit into FramePositions.
	X, Y float64

	Confidence float64
	Active     bool

	// SearchRadius and AdaptiveWindowSize are numeric hints passed to the
	// optical-flow primitive by the tracking driver.
	SearchRadius       float64
	AdaptiveWindowSize int

	// framePositions is the authoritative history, frame -> position.
	// Kept as a sorted-key map (via frames) so "most recent <= f" queries
	// are log-time rather than a full scan.
	framePositions map[int]geometry.Vector2
	frames         []int // sorted ascending, kept in sync with framePositions

	Trajectory []TrajectoryEntry
}

// NewTrackingPoint creates a point at the given frame and position with
// default flow hints (a 21px search window is plenty for typical 1080p
// source footage; the adaptive LK window is 15px, narrower than the 21px
// window the gocv-backed flow primitive falls back to when none is given).
func NewTrackingPoint(id int, frame int, pos geometry.Vector2) *TrackingPoint {
	p := &TrackingPoint{
		ID:                 id,
		X:                  pos.X,
		Y:                  pos.Y,
		Confidence:         1.0,
		Active:             true,
		SearchRadius:       21,
		AdaptiveWindowSize: 15,
		framePositions:     make(map[int]geometry.Vector2),
	}
	p.commitLocked(frame, pos)
	return p
}

// GetPositionAtFrame returns FramePositions[f] if present, else the current
// (X, Y) mirror as a fallback, so callers never see a missing frame as a
// tracking gap.
func (p *TrackingPoint) GetPositionAtFrame(f int) geometry.Vector2 {
	if v, ok := p.framePositions[f]; ok {
		return v
	}
	return geometry.Vector2{X: p.X, Y: p.Y}
}

// Commit writes FramePositions[f] = v, mirrors it into (X, Y), and appends
// (v, f) to the trajectory.
func (p *TrackingPoint) Commit(f int, v geometry.Vector2) {
	p.commitLocked(f, v)
}

func (p *TrackingPoint) commitLocked(f int, v geometry.Vector2) {
	if _, exists := p.framePositions[f]; !exists {
		i := sort.SearchInts(p.frames, f)
		p.frames = append(p.frames, 0)
		copy(p.frames[i+1:], p.frames[i:])
		p.frames[i] = f
	}
	p.framePositions[f] = v
	p.X, p.Y = v.X, v.Y
	p.Trajectory = append(p.Trajectory, TrajectoryEntry{Frame: f, Position: v})
}

// FrameCount returns the number of distinct frames with a committed position.
func (p *TrackingPoint) FrameCount() int {
	return len(p.frames)
}

// FramePosition is one (frame, position) pair, the shape a persisted
// project document uses for framePositions instead of a raw map.
type FramePosition struct {
	Frame    int
	Position geometry.Vector2
}

// FramePositionPairs returns every committed position as (frame, position)
// pairs in ascending frame order.
func (p *TrackingPoint) FramePositionPairs() []FramePosition {
	out := make([]FramePosition, len(p.frames))
	for i, f := range p.frames {
		out[i] = FramePosition{Frame: f, Position: p.framePositions[f]}
	}
	return out
}

// RestoreTrackingPoint rebuilds a TrackingPoint from persisted fields,
// restoring framePositions/frames from pairs directly rather than
// replaying them through Commit (which would also re-append trajectory
// entries the caller is already restoring verbatim).
func RestoreTrackingPoint(id int, x, y, confidence float64, active bool, searchRadius float64, adaptiveWindowSize int, pairs []FramePosition, trajectory []TrajectoryEntry) *TrackingPoint {
	p := &TrackingPoint{
		ID:                 id,
		X:                  x,
		Y:                  y,
		Confidence:         confidence,
		Active:             active,
		SearchRadius:       searchRadius,
		AdaptiveWindowSize: adaptiveWindowSize,
		framePositions:     make(map[int]geometry.Vector2, len(pairs)),
		Trajectory:         trajectory,
	}
	frames := make([]int, len(pairs))
	for i, pair := range pairs {
		p.framePositions[pair.Frame] = pair.Position
		frames[i] = pair.Frame
	}
	sort.Ints(frames)
	p.frames = frames
	return p
}

// Store owns every TrackingPoint for a TrackerContext, keyed by stable ID.
// All mutation happens from the single logical executor described by the
// concurrency model — Store itself does not attempt to be goroutine-safe
// beyond the single mutex guarding the ID counter, which may be read from
// diagnostics code running off the executor.
type Store struct {
	mu     sync.Mutex
	nextID int
	points map[int]*TrackingPoint
	order  []int // insertion order, for deterministic GetAll
}

// NewStore creates an empty point store.
func NewStore() *Store {
	return &Store{points: make(map[int]*TrackingPoint)}
}

// Create allocates a new TrackingPoint at the given frame/position and adds
// it to the store.
func (s *Store) Create(frame int, pos geometry.Vector2) *TrackingPoint {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.mu.Unlock()

	p := NewTrackingPoint(id, frame, pos)
	s.points[id] = p
	s.order = append(s.order, id)
	return p
}

// Restore inserts a fully-formed TrackingPoint (typically built by
// RestoreTrackingPoint when loading a saved project) and advances the ID
// counter past its ID so future Create calls never collide with it.
func (s *Store) Restore(p *TrackingPoint) {
	s.points[p.ID] = p
	s.order = append(s.order, p.ID)
	s.mu.Lock()
	if p.ID >= s.nextID {
		s.nextID = p.ID + 1
	}
	s.mu.Unlock()
}

// Get returns the point with the given ID, or (nil, false) if it doesn't
// exist — dangling IDs are a first-class, non-panicking case per the
// store's arena design.
func (s *Store) Get(id int) (*TrackingPoint, bool) {
	p, ok := s.points[id]
	return p, ok
}

// Delete removes a point from the store. Deleting a nonexistent ID is a
// no-op.
func (s *Store) Delete(id int) {
	if _, ok := s.points[id]; !ok {
		return
	}
	delete(s.points, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// GetAll returns every point in creation order.
func (s *Store) GetAll() []*TrackingPoint {
	out := make([]*TrackingPoint, 0, len(s.order))
	for _, id := range s.order {
		if p, ok := s.points[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// SyncToFrame sets (X, Y) on every point to GetPositionAtFrame(f), so
// readers observe a consistent snapshot for frame f regardless of which
// frame last committed.
func (s *Store) SyncToFrame(f int) {
	for _, id := range s.order {
		p, ok := s.points[id]
		if !ok {
			continue
		}
		v := p.GetPositionAtFrame(f)
		p.X, p.Y = v.X, v.Y
	}
}
