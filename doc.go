/*
Package texttrack is the root of a video text-annotation engine: text
labels are glued to tracked regions or feature points of a scene so they
stay in place as the camera and subjects move. This file holds only the
module-level overview; every concrete type lives in a subpackage.

# Core Types

A planar tracker (package planartrack) maintains a quadrilateral region of
interest across frames via a grid of feature points and a per-frame
homography. A point tracker (package pointtrack) maintains isolated
feature points across frames. A text element (package textmodel) is
anchored to either tracker kind and projected to screen coordinates every
frame by package projection. Package trackingdriver runs the per-frame
update loop — optical flow, RANSAC homography, corner propagation, feature
regeneration — that keeps the point and planar stores coherent. Package
compositor drives the export pass: for every output frame it syncs the
trackers, asks projection to draw every visible text atop the resampled
source frame, and submits the result to an encoder sink.

# Basic Usage

	ctx := trackerctx.New()
	tracker := ctx.Planar.Create(640, 360, 1280, 720, 0)
	text := ctx.Texts.Create(textmodel.PlanarAnchor(tracker.ID), 0)
	text.Content = "hello"

	driver := trackingdriver.NewDriver()
	driver.UpdatePlanarTracker(prevGray, currGray, tracker, ctx.Points, f-1, f, nil)

	exporter := &compositor.Exporter{
		Source: source, Sink: sink,
		Points: ctx.Points, Planar: ctx.Planar, Texts: ctx.Texts,
		Renderer: projection.NewRenderer(1280, 720),
		OutWidth: 1280, OutHeight: 720, FPSOut: 30,
	}
	err := exporter.Run(context.Background())

# Geometry kernel

Package geometry provides the pure numeric functions every other package
builds on: 4x4 transform composition, pinhole perspective projection, 3x3
homography application, and point-in-convex-quad testing. Nothing in it
holds state.

# Scheduling model

Everything in pointtrack, planartrack, and textmodel is mutated from a
single logical executor — there is no cross-thread sharing of mutable
tracker state. compositor.Exporter suspends only at well-defined yield
points (seek, decode, encoder submit, and between frames) so cancellation
and progress reporting compose cleanly with the rest of the pipeline.

See cmd/texttrack for a CLI that replays a recorded operation sequence
over a source video and exports the annotated result.
*/
package texttrack
