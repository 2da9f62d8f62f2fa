/*
Package drawing provides the stateless drawing primitives overlay
renderers build on: circle and cross markers, line segments, and
alpha-blended compositing of two frames.

Higher-level rendering lives above this package: projection.Renderer
rasters text elements, and texttrackdraw overlays feature-grid/quad
debug views, both built on Drawer's primitives.

	d := drawing.NewDrawer()
	d.Cross(frame, image.Point{X: 100, Y: 100}, 4, color.Cyan, 2)
	blended := d.AlphaBlend(&overlay, &base, 0.8, -1, 0)
*/
package drawing
