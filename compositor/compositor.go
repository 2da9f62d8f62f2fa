// Package compositor drives the per-frame export loop: seek the source,
// sync planar trackers to the frame, draw every visible text atop the
// resampled source raster, and submit the composed frame to a sink. It is
// the only package that sequences C2/C3/C5/C6 into a whole export.
package compositor

import (
	"context"
	"image"

	"gocv.io/x/gocv"

	"github.com/nmichlo/texttrack/planartrack"
	"github.com/nmichlo/texttrack/pointtrack"
	"github.com/nmichlo/texttrack/projection"
	"github.com/nmichlo/texttrack/textmodel"
	"github.com/nmichlo/texttrack/trackerr"
)

// FrameSource abstracts wherever decoded frames come from: a real video
// file, a camera, or an image sequence. Seek moves to the frame nearest
// the given presentation timestamp; Read decodes the frame at the current
// position. ok is false (with no error) at end of stream.
type FrameSource interface {
	Seek(timestampSeconds float64) error
	Read() (frame gocv.Mat, ok bool, err error)
	Dimensions() (width, height int)
	DurationSeconds() float64
}

// EncoderParams configures a sink before any frame is submitted.
type EncoderParams struct {
	Codec            string
	Width, Height    int
	FPS              float64
	BitrateBPS       int
	KeyframeInterval int
}

// EncoderSink abstracts wherever composed frames go: a video file, a
// preview window, a frame-by-frame image dump. Configure is called once,
// before the first Submit, with the export's resolved encoder settings.
// Submit takes ownership of neither frame nor its backing memory —
// callers must not assume the sink retains the Mat past the call. Flush
// finalizes whatever Configure opened.
type EncoderSink interface {
	Configure(params EncoderParams) error
	Submit(frame gocv.Mat, presentationTimestamp float64) error
	Flush() error
}

// Stage names reported through ProgressCallback.
const (
	StageExporting = "exporting"
	StageFlushing  = "flushing"
)

// ProgressCallback is invoked after every composed frame (and once more on
// flush) so a caller can render a progress bar or cancel button. It must
// not block.
type ProgressCallback func(stage string, progressPct float64, currentFrame, totalFrames int, etaSeconds float64, message string)

// Exporter runs the cooperative per-frame export loop described by the
// single-threaded scheduling model: no mutable tracker state is held
// across a suspension point (seek, decode, encoder back-pressure, or the
// explicit yield between frames).
type Exporter struct {
	Source FrameSource
	Sink   EncoderSink

	Points *pointtrack.Store
	Planar *planartrack.Store
	Texts  *textmodel.Store

	Renderer  *projection.Renderer
	OutWidth  int
	OutHeight int
	FPSOut    float64

	// Codec, BitrateBPS, and KeyframeInterval are passed to Sink.Configure
	// before the first frame. Quality-preset hints are resolved by the
	// caller (e.g. a QualityPreset) rather than decided here.
	Codec            string
	BitrateBPS       int
	KeyframeInterval int

	OnProgress ProgressCallback

	// EstimateETA, if set, returns an ETA in seconds given elapsed frames
	// and total frames — callers inject this rather than the compositor
	// reading a wall clock directly, keeping the loop purely a function of
	// its inputs for testing.
	EstimateETA func(framesDone, totalFrames int) float64
}

// Run exports every frame from 0 to floor(duration*fpsOut)-1. It returns a
// fatal *trackerr.Error (SourceUnavailable, OutputWriteFailure, or
// Cancelled) on the first unrecoverable condition, partial output
// notwithstanding — Cancelled in particular must leave no ambiguity about
// whether the file is complete.
func (e *Exporter) Run(ctx context.Context) error {
	total := int(e.Source.DurationSeconds() * e.FPSOut)

	if err := e.Sink.Configure(EncoderParams{
		Codec:            e.Codec,
		Width:            e.OutWidth,
		Height:           e.OutHeight,
		FPS:              e.FPSOut,
		BitrateBPS:       e.BitrateBPS,
		KeyframeInterval: e.KeyframeInterval,
	}); err != nil {
		return trackerr.Wrap(trackerr.KindOutputWriteFailure, "compositor.Run", "sink configuration failed", err)
	}

	for k := 0; k < total; k++ {
		select {
		case <-ctx.Done():
			return trackerr.New(trackerr.KindCancelled, "compositor.Run", "export cancelled")
		default:
		}

		t := float64(k) / e.FPSOut
		if err := e.Source.Seek(t); err != nil {
			return trackerr.Wrap(trackerr.KindSourceUnavailable, "compositor.Run", "seek failed", err)
		}

		frame, ok, err := e.Source.Read()
		if err != nil {
			return trackerr.Wrap(trackerr.KindSourceUnavailable, "compositor.Run", "decode failed", err)
		}
		if !ok {
			frame.Close()
			break
		}

		composed := e.composeFrame(frame, k)
		frame.Close()

		if err := e.Sink.Submit(composed, t); err != nil {
			composed.Close()
			return trackerr.Wrap(trackerr.KindOutputWriteFailure, "compositor.Run", "sink rejected frame", err)
		}
		composed.Close()

		e.reportProgress(StageExporting, k+1, total)

		select {
		case <-ctx.Done():
			return trackerr.New(trackerr.KindCancelled, "compositor.Run", "export cancelled")
		default:
		}
	}

	if err := e.Sink.Flush(); err != nil {
		return trackerr.Wrap(trackerr.KindOutputWriteFailure, "compositor.Run", "flush failed", err)
	}
	e.reportProgress(StageFlushing, total, total)
	return nil
}

// composeFrame resamples the decoded raster to the output size, syncs
// planar trackers to frame k, and draws every visible text atop it.
func (e *Exporter) composeFrame(frame gocv.Mat, k int) gocv.Mat {
	resized := gocv.NewMat()
	gocv.Resize(frame, &resized, image.Pt(e.OutWidth, e.OutHeight), 0, 0, gocv.InterpolationLinear)

	e.Planar.SyncToFrame(k)

	for _, elem := range e.Texts.GetAll() {
		e.Renderer.Draw(&resized, e.Points, e.Planar, elem, k)
	}

	return resized
}

func (e *Exporter) reportProgress(stage string, current, total int) {
	if e.OnProgress == nil {
		return
	}
	pct := 0.0
	if total > 0 {
		pct = 100 * float64(current) / float64(total)
	}
	eta := 0.0
	if e.EstimateETA != nil {
		eta = e.EstimateETA(current, total)
	}
	e.OnProgress(stage, pct, current, total, eta, "")
}
