package drawing

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/nmichlo/texttrack/color"
)

// Drawer draws overlay primitives onto gocv frames in place. It holds no
// state of its own; a single shared instance serves every caller on the
// one logical executor the pipeline runs on.
type Drawer struct{}

// NewDrawer creates a new Drawer.
func NewDrawer() *Drawer {
	return &Drawer{}
}

// Circle draws a circle marker. A radius of 0 auto-scales to 0.5% of the
// frame's longest side; a thickness of 0 derives from the radius, and -1
// fills.
func (d *Drawer) Circle(frame *gocv.Mat, center image.Point, radius, thickness int, col color.Color) {
	if radius == 0 {
		radius = max(int(float64(max(frame.Rows(), frame.Cols()))*0.005), 1)
	}
	if thickness == 0 {
		thickness = max(radius-1, 1)
	}
	gocv.Circle(frame, center, radius, col.ToRGBA(), thickness)
}

// Line draws a straight segment from start to end.
func (d *Drawer) Line(frame *gocv.Mat, start, end image.Point, col color.Color, thickness int) {
	if thickness == 0 {
		thickness = 1
	}
	gocv.Line(frame, start, end, col.ToRGBA(), thickness)
}

// Cross draws a plus-shaped marker centered at center, radius pixels per
// arm.
func (d *Drawer) Cross(frame *gocv.Mat, center image.Point, radius int, col color.Color, thickness int) {
	d.Line(frame, image.Pt(center.X, center.Y-radius), image.Pt(center.X, center.Y+radius), col, thickness)
	d.Line(frame, image.Pt(center.X-radius, center.Y), image.Pt(center.X+radius, center.Y), col, thickness)
}

// AlphaBlend returns alpha*frame1 + beta*frame2 + gamma as a new Mat the
// caller owns. A negative beta defaults to 1-alpha, the common fade
// between an annotated overlay and its source frame.
func (d *Drawer) AlphaBlend(frame1, frame2 *gocv.Mat, alpha, beta, gamma float64) gocv.Mat {
	if beta < 0 {
		beta = 1.0 - alpha
	}
	result := gocv.NewMat()
	gocv.AddWeighted(*frame1, alpha, *frame2, beta, gamma, &result)
	return result
}
