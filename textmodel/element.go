package textmodel

import (
	"github.com/nmichlo/texttrack/geometry"
)

// Text3DElement is a piece of text glued to an Anchor, carried at an offset
// transform from wherever that anchor resolves to on a given frame.
// Resolving the transform to a screen position is projection's job.
type Text3DElement struct {
	ID           int
	Name         string
	Content      string
	Visible      bool
	Selected     bool
	CreatedFrame int

	Anchor    Anchor
	Transform geometry.Transform3D
	Style     Style
}

// defaultTransform matches the construction defaults: no positional offset,
// no rotation, a 1.2x scale (Hershey glyphs render small at scale 1).
func defaultTransform() geometry.Transform3D {
	return geometry.Transform3D{
		Position: geometry.Vector3{},
		Rotation: geometry.Vector3{},
		Scale:    geometry.Vector2{X: 1.2, Y: 1.2},
	}
}

// VisibleAtFrame reports whether this element should render on frame f:
// visible on every frame from its creation frame onward while Visible is
// true.
func (e *Text3DElement) VisibleAtFrame(f int) bool {
	return e.Visible && f >= e.CreatedFrame
}
