// Package trackerctx bundles the point, planar-tracker and text-element
// stores into one root-scoped value. Operations take a *TrackerContext
// explicitly rather than reaching for a package-level singleton, so tests
// can run multiple independent contexts in parallel and a process can
// host more than one project.
package trackerctx

import (
	"github.com/nmichlo/texttrack/planartrack"
	"github.com/nmichlo/texttrack/pointtrack"
	"github.com/nmichlo/texttrack/textmodel"
)

// TrackerContext owns every store for a single project: independent
// points, planar trackers, and the text elements anchored to them.
type TrackerContext struct {
	Points *pointtrack.Store
	Planar *planartrack.Store
	Texts  *textmodel.Store
}

// New returns a TrackerContext with fresh, empty stores.
func New() *TrackerContext {
	return &TrackerContext{
		Points: pointtrack.NewStore(),
		Planar: planartrack.NewStore(),
		Texts:  textmodel.NewStore(),
	}
}

// SyncToFrame restores every point and planar tracker to its recorded
// state at frame f, so a caller re-rendering after a scrub sees a
// consistent snapshot across both stores.
func (c *TrackerContext) SyncToFrame(f int) {
	c.Points.SyncToFrame(f)
	c.Planar.SyncToFrame(f)
}

// ResolveAnchor looks up the tracker or point a text.Anchor refers to. ok
// is false if the anchor targets a deleted or never-created ID — callers
// should treat this as AnchorMissing and skip rendering, not panic.
func (c *TrackerContext) ResolveAnchor(a textmodel.Anchor) (point *pointtrack.TrackingPoint, planar *planartrack.PlanarTracker, ok bool) {
	switch a.Kind {
	case textmodel.AnchorPoint:
		p, found := c.Points.Get(a.ID)
		return p, nil, found
	case textmodel.AnchorPlanar:
		t, found := c.Planar.Get(a.ID)
		return nil, t, found
	default:
		return nil, nil, false
	}
}
