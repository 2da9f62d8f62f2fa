package projection

import "github.com/nmichlo/texttrack/geometry"

// GlyphBounds is a text's unscaled glyph box measured at depth 0 (width
// and height in screen pixels before the element's scale is applied).
type GlyphBounds struct {
	Width, Height float64
}

// HitTest reports whether screenPoint falls within the axis-aligned box
// centered on screenPos, sized by bounds scaled by the element's Scale.
// Selection and hover styling built on this are cosmetic and never affect
// exported frames.
func HitTest(screenPoint, screenPos geometry.Vector2, bounds GlyphBounds, scale geometry.Vector2) bool {
	halfW := bounds.Width * scale.X / 2
	halfH := bounds.Height * scale.Y / 2

	minX, maxX := screenPos.X-halfW, screenPos.X+halfW
	minY, maxY := screenPos.Y-halfH, screenPos.Y+halfH

	return screenPoint.X >= minX && screenPoint.X <= maxX &&
		screenPoint.Y >= minY && screenPoint.Y <= maxY
}
