// Package textmodel holds the text entities a user attaches to a tracked
// point or planar region, their transform/style, and the CRUD store that
// owns them. It depends only on geometry and color — resolving an anchor
// to a screen position is projection's job, not this package's.
package textmodel

// AnchorKind discriminates the two ways a Text3DElement can be glued to
// tracked geometry.
type AnchorKind int

const (
	// AnchorPoint ties a text to a pointtrack.TrackingPoint.
	AnchorPoint AnchorKind = iota
	// AnchorPlanar ties a text to a planartrack.PlanarTracker.
	AnchorPlanar
)

func (k AnchorKind) String() string {
	switch k {
	case AnchorPoint:
		return "Point"
	case AnchorPlanar:
		return "Planar"
	default:
		return "Unknown"
	}
}

// Anchor is a tagged union replacing the two-optional-field shape (an
// attachedToPointId and an attachedToTrackerId, of which exactly one is
// set) with a single non-optional field, so "both set" and "neither set"
// are not representable.
type Anchor struct {
	Kind AnchorKind
	ID   int
}

// PointAnchor builds an Anchor tied to a TrackingPoint ID.
func PointAnchor(id int) Anchor {
	return Anchor{Kind: AnchorPoint, ID: id}
}

// PlanarAnchor builds an Anchor tied to a PlanarTracker ID.
func PlanarAnchor(id int) Anchor {
	return Anchor{Kind: AnchorPlanar, ID: id}
}
