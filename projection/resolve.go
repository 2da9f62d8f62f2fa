// Package projection resolves a text element's world position for a given
// frame, reduces it to a screen position through the camera projection,
// and rasterizes it with depth-based scaling, foreshortening and opacity.
// It reads C1 (geometry), C2 (pointtrack), C3 (planartrack) and C5
// (textmodel) but owns no state of its own.
package projection

import (
	"github.com/nmichlo/texttrack/geometry"
	"github.com/nmichlo/texttrack/planartrack"
	"github.com/nmichlo/texttrack/pointtrack"
	"github.com/nmichlo/texttrack/textmodel"
)

// ResolveAnchorPosition returns the anchor's 2D position at frame f and,
// for a planar anchor, its homography at f if one was recorded. ok is
// false if the anchor targets a missing tracker or point — callers should
// treat this as AnchorMissing and skip rendering rather than fail.
func ResolveAnchorPosition(points *pointtrack.Store, planar *planartrack.Store, a textmodel.Anchor, f int) (pos geometry.Vector2, homography *geometry.Mat3, ok bool) {
	switch a.Kind {
	case textmodel.AnchorPoint:
		p, found := points.Get(a.ID)
		if !found {
			return geometry.Vector2{}, nil, false
		}
		return p.GetPositionAtFrame(f), nil, true
	case textmodel.AnchorPlanar:
		t, found := planar.Get(a.ID)
		if !found {
			return geometry.Vector2{}, nil, false
		}
		if h, hasH := t.HomographyAtFrame(f); hasH {
			return t.Center, &h, true
		}
		return t.Center, nil, true
	default:
		return geometry.Vector2{}, nil, false
	}
}

// WorldPosition combines an anchor position with a text's positional
// offset: world X/Y is anchor-plus-offset, world Z is the offset's Z
// (anchors live in the image plane, z=0).
func WorldPosition(anchor geometry.Vector2, offset geometry.Vector3) geometry.Vector3 {
	return geometry.Vector3{X: anchor.X + offset.X, Y: anchor.Y + offset.Y, Z: offset.Z}
}

// ResolvedPosition is everything needed to project and render one text
// element on one frame.
type ResolvedPosition struct {
	World  geometry.Vector3
	Screen geometry.Vector2
	Inside bool
}

// Resolve runs the full per-text per-frame position pipeline: anchor
// lookup, world-position offset, homography application for a planar
// anchor, and perspective projection. Inside reports whether Screen falls
// within the (0,0)-(W,H) canvas; callers should skip rendering when false.
func Resolve(points *pointtrack.Store, planar *planartrack.Store, elem *textmodel.Text3DElement, f int, proj geometry.ProjectionParams) (ResolvedPosition, bool) {
	anchorPos, homography, ok := ResolveAnchorPosition(points, planar, elem.Anchor, f)
	if !ok {
		return ResolvedPosition{}, false
	}

	world := WorldPosition(anchorPos, elem.Transform.Position)
	if elem.Anchor.Kind == textmodel.AnchorPlanar && homography != nil {
		world = geometry.ApplyHomography2D(world, homography)
	}

	screen := geometry.ProjectToScreen(world, proj)
	inside := screen.X >= 0 && screen.X <= proj.Width && screen.Y >= 0 && screen.Y <= proj.Height

	return ResolvedPosition{World: world, Screen: screen, Inside: inside}, true
}
