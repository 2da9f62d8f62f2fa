package projection

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"github.com/nmichlo/texttrack/drawing"
	"github.com/nmichlo/texttrack/geometry"
	"github.com/nmichlo/texttrack/planartrack"
	"github.com/nmichlo/texttrack/pointtrack"
	"github.com/nmichlo/texttrack/textmodel"
)

// strokeThickness is the fixed black outline width drawn under every
// glyph fill, for legibility over a busy source frame.
const strokeThickness = 2

// ptToHersheyScale converts a style point size to the font-scale factor
// gocv.PutTextWithParams expects; 38pt (the construction default) maps to
// roughly scale 1.2, matching this codebase's other text-size conventions.
const ptToHersheyScale = 1.2 / 38.0

// fontFace maps a textmodel.Style's weight/style onto one of gocv's
// built-in Hershey faces — gocv has no notion of arbitrary font files, so
// family selection beyond this is not possible.
func fontFace(s textmodel.Style) gocv.HersheyFont {
	face := gocv.FontHersheySimplex
	if s.Weight == textmodel.WeightBold {
		face = gocv.FontHersheyDuplex
	}
	if s.Style == textmodel.StyleItalic {
		face |= gocv.FontItalic
	}
	return face
}

// Renderer draws textmodel.Text3DElements atop a frame using gocv's
// Hershey-font text primitive: stroke the glyphs in black, then fill with
// the style color, blended at depth opacity.
type Renderer struct {
	Drawer *drawing.Drawer
	Proj   geometry.ProjectionParams
}

// NewRenderer returns a Renderer for the given output canvas size.
func NewRenderer(width, height float64) *Renderer {
	return &Renderer{
		Drawer: drawing.NewDrawer(),
		Proj:   geometry.DefaultProjectionParams(width, height),
	}
}

// fontScaleFor computes the gocv font-scale factor for an element at a
// given depth: style size, the element's own horizontal scale, the
// camera's depth-distance scale, and Y-rotation foreshortening combined
// into one isotropic factor. gocv's text primitive has no independent
// width/height scale, and X-rotation foreshortening is not applied: glyph
// height is not compressed by cos(rotation X).
func fontScaleFor(elem *textmodel.Text3DElement, worldZ float64) float64 {
	base := ptToHersheyScale * elem.Style.SizePt * elem.Transform.Scale.X
	k := DepthScale(worldZ)
	fx, _ := Foreshorten(1, 1, elem.Transform.Rotation.Y, elem.Transform.Rotation.X)
	scale := base * k * fx
	if scale <= 0 {
		return base
	}
	return scale
}

// MeasureGlyph reports a text's unscaled glyph box at depth 0, used for
// hit-testing.
func (r *Renderer) MeasureGlyph(elem *textmodel.Text3DElement) GlyphBounds {
	face := fontFace(elem.Style)
	size := gocv.GetTextSize(elem.Content, face, ptToHersheyScale*elem.Style.SizePt, strokeThickness)
	return GlyphBounds{Width: float64(size.X), Height: float64(size.Y)}
}

// Draw resolves elem's position at frame f and, if visible and within the
// canvas, rasterizes it onto frame with depth scaling, foreshortening and
// depth-opacity blending. It returns false (without modifying frame) when
// the element is not visible at f, its anchor is missing, or its resolved
// screen position falls outside the canvas.
func (r *Renderer) Draw(frame *gocv.Mat, points *pointtrack.Store, planar *planartrack.Store, elem *textmodel.Text3DElement, f int) bool {
	if !elem.VisibleAtFrame(f) {
		return false
	}

	resolved, ok := Resolve(points, planar, elem, f, r.Proj)
	if !ok || !resolved.Inside {
		return false
	}

	face := fontFace(elem.Style)
	fontScale := fontScaleFor(elem, resolved.World.Z)
	opacity := DepthOpacity(resolved.World.Z)
	pos := glyphOrigin(resolved.Screen, elem, fontScale, face)

	overlay := frame.Clone()
	defer overlay.Close()

	if rotZ := elem.Transform.Rotation.Z; rotZ != 0 {
		size := gocv.GetTextSize(elem.Content, face, fontScale, strokeThickness)
		drawRotatedGlyph(&overlay, elem, face, fontScale, pos, size, rotZ)
	} else {
		gocv.PutTextWithParams(&overlay, elem.Content, pos, face, fontScale,
			color.RGBA{A: 255}, strokeThickness, gocv.LineAA, false)
		gocv.PutTextWithParams(&overlay, elem.Content, pos, face, fontScale,
			elem.Style.Color.ToRGBA(), 1, gocv.LineAA, false)
	}

	blended := r.Drawer.AlphaBlend(&overlay, frame, opacity, -1, 0)
	defer blended.Close()
	blended.CopyTo(frame)

	return true
}

// drawRotatedGlyph applies the element's Z rotation: it draws
// the glyph into a small patch sized to safely contain it under rotation,
// rotates that patch about its own center by rotDegrees, then composites
// only the glyph's nonzero pixels onto overlay at pos. Keeping the glyph
// confined to its own patch means every other overlay pixel stays an
// exact copy of frame, so the caller's AlphaBlend only fades the rotated
// glyph itself, not a rotated copy of the whole scene.
func drawRotatedGlyph(overlay *gocv.Mat, elem *textmodel.Text3DElement, face gocv.HersheyFont, fontScale float64, pos image.Point, size image.Point, rotDegrees float64) {
	half := int(math.Ceil(math.Hypot(float64(size.X), float64(size.Y))/2)) + strokeThickness + 2
	dim := half * 2
	if dim <= 0 {
		return
	}

	center := image.Pt(pos.X+size.X/2, pos.Y-size.Y/2)
	originX, originY := center.X-half, center.Y-half

	patch := gocv.NewMatWithSize(dim, dim, overlay.Type())
	defer patch.Close()

	localPos := image.Pt(pos.X-originX, pos.Y-originY)
	gocv.PutTextWithParams(&patch, elem.Content, localPos, face, fontScale,
		color.RGBA{A: 255}, strokeThickness, gocv.LineAA, false)
	gocv.PutTextWithParams(&patch, elem.Content, localPos, face, fontScale,
		elem.Style.Color.ToRGBA(), 1, gocv.LineAA, false)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.CvtColor(patch, &mask, gocv.ColorBGRToGray)
	gocv.Threshold(mask, &mask, 0, 255, gocv.ThresholdBinary)

	rotMat := gocv.GetRotationMatrix2D(image.Pt(half, half), rotDegrees, 1.0)
	defer rotMat.Close()

	rotatedPatch := gocv.NewMat()
	defer rotatedPatch.Close()
	gocv.WarpAffine(patch, &rotatedPatch, rotMat, image.Pt(dim, dim))

	rotatedMask := gocv.NewMat()
	defer rotatedMask.Close()
	gocv.WarpAffine(mask, &rotatedMask, rotMat, image.Pt(dim, dim))

	dstRect := image.Rectangle{
		Min: image.Pt(originX, originY),
		Max: image.Pt(originX+dim, originY+dim),
	}
	clamped := dstRect.Intersect(image.Rect(0, 0, overlay.Cols(), overlay.Rows()))
	if clamped.Empty() {
		return
	}

	srcRect := image.Rectangle{
		Min: image.Pt(clamped.Min.X-originX, clamped.Min.Y-originY),
		Max: image.Pt(clamped.Max.X-originX, clamped.Max.Y-originY),
	}

	srcRegion := rotatedPatch.Region(srcRect)
	defer srcRegion.Close()
	maskRegion := rotatedMask.Region(srcRect)
	defer maskRegion.Close()
	dstRegion := overlay.Region(clamped)
	defer dstRegion.Close()

	srcRegion.CopyToWithMask(&dstRegion, maskRegion)
}

// glyphOrigin converts a centered screen position plus the element's
// horizontal/vertical alignment into the bottom-left text origin
// gocv.PutText expects.
func glyphOrigin(screen geometry.Vector2, elem *textmodel.Text3DElement, fontScale float64, face gocv.HersheyFont) image.Point {
	size := gocv.GetTextSize(elem.Content, face, fontScale, strokeThickness)

	x := screen.X
	switch elem.Style.Align {
	case textmodel.AlignCenter:
		x -= float64(size.X) / 2
	case textmodel.AlignRight:
		x -= float64(size.X)
	}

	y := screen.Y
	switch elem.Style.Baseline {
	case textmodel.BaselineMiddle:
		y += float64(size.Y) / 2
	case textmodel.BaselineTop:
		y += float64(size.Y)
	case textmodel.BaselineBottom:
		// y already at the baseline
	}

	return image.Pt(int(x), int(y))
}
