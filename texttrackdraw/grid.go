// Package texttrackdraw renders debug overlays — feature-grid points and
// tracked-quad outlines — for visualizing planar tracking while building or
// troubleshooting a project. Nothing here participates in the exported
// composited output; that's projection's job.
package texttrackdraw

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/nmichlo/texttrack/color"
	"github.com/nmichlo/texttrack/drawing"
	"github.com/nmichlo/texttrack/geometry"
	"github.com/nmichlo/texttrack/planartrack"
	"github.com/nmichlo/texttrack/pointtrack"
)

var sharedDrawer = drawing.NewDrawer()

// GridStyle controls the look of a feature-grid / quad-outline overlay.
type GridStyle struct {
	PointColor     color.Color
	LostPointColor color.Color
	QuadColor      color.Color
	ReferenceColor color.Color
	PointRadius    int
	LineThickness  int
}

// DefaultGridStyle is a cyan-points-on-pink-quad palette chosen to read
// clearly over arbitrary footage.
func DefaultGridStyle() GridStyle {
	return GridStyle{
		PointColor:     color.Cyan,
		LostPointColor: color.Red,
		QuadColor:      color.HotPink,
		ReferenceColor: color.Yellow,
		PointRadius:    3,
		LineThickness:  2,
	}
}

// DrawFeatureGrid overlays one tracker's feature points — live ones as
// crosses, lost ones as hollow circles at their last known position —
// and its current quadrilateral outline (already homography-warped to
// the current frame by the tracking driver) onto frame.
func DrawFeatureGrid(frame *gocv.Mat, points *pointtrack.Store, tracker *planartrack.PlanarTracker, style GridStyle) {
	for _, fp := range tracker.FeaturePoints {
		p, ok := points.Get(fp.PointID)
		if !ok {
			continue
		}
		center := image.Point{X: int(p.X), Y: int(p.Y)}
		if p.Active {
			sharedDrawer.Cross(frame, center, style.PointRadius, style.PointColor, style.LineThickness)
		} else {
			sharedDrawer.Circle(frame, center, style.PointRadius, style.LineThickness, style.LostPointColor)
		}
	}

	quad := [4]geometry.Vector2{
		tracker.Corners[0].Position(),
		tracker.Corners[1].Position(),
		tracker.Corners[2].Position(),
		tracker.Corners[3].Position(),
	}
	drawQuadOutline(frame, quad, style.QuadColor, style.LineThickness)
}

// DrawFeatureGrids overlays every tracker in planar onto frame.
func DrawFeatureGrids(frame *gocv.Mat, points *pointtrack.Store, planar *planartrack.Store, style GridStyle) {
	for _, t := range planar.GetAll() {
		DrawFeatureGrid(frame, points, t, style)
	}
}

// DrawReferenceQuad overlays the quadrilateral tracker held at its creation
// frame, letting a viewer compare tracked drift against the original
// placement. It is a no-op if the tracker has no recorded trajectory.
func DrawReferenceQuad(frame *gocv.Mat, tracker *planartrack.PlanarTracker, style GridStyle) {
	if len(tracker.Trajectory) == 0 {
		return
	}
	drawQuadOutline(frame, tracker.Trajectory[0].Corners, style.ReferenceColor, style.LineThickness)
}

func drawQuadOutline(frame *gocv.Mat, quad [4]geometry.Vector2, col color.Color, thickness int) {
	for i := 0; i < 4; i++ {
		a := image.Point{X: int(quad[i].X), Y: int(quad[i].Y)}
		b := image.Point{X: int(quad[(i+1)%4].X), Y: int(quad[(i+1)%4].Y)}
		sharedDrawer.Line(frame, a, b, col, thickness)
	}
}
