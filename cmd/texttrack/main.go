package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"gocv.io/x/gocv"

	"github.com/nmichlo/texttrack/compositor"
	"github.com/nmichlo/texttrack/gocvsink"
	"github.com/nmichlo/texttrack/gocvsource"
	"github.com/nmichlo/texttrack/internal/diag"
	"github.com/nmichlo/texttrack/internal/term"
	"github.com/nmichlo/texttrack/planartrack"
	"github.com/nmichlo/texttrack/pointtrack"
	"github.com/nmichlo/texttrack/project"
	"github.com/nmichlo/texttrack/projection"
	"github.com/nmichlo/texttrack/trackerctx"
	"github.com/nmichlo/texttrack/trackerr"
	"github.com/nmichlo/texttrack/trackingdriver"
)

// trackerDriver bundles trackingdriver.Driver with the feature-grid
// seeding logic a fresh planar tracker needs on creation (GenerateFeatureGrid
// is a pure planartrack helper; wiring it into live TrackingPoints belongs
// to whoever drives C4, same split as regeneration inside the package).
type trackerDriver struct {
	driver *trackingdriver.Driver
}

func newTrackerDriver(cfg Config) *trackerDriver {
	d := trackingdriver.NewDriver()
	d.OnLocalError = func(err *trackerr.Error) {
		diag.WarnOnce(err.Error())
	}
	if cfg.Smoothing {
		d.Smoother = pointtrack.NewSmoother(pointtrack.DefaultSmootherConfig())
	}
	return &trackerDriver{driver: d}
}

// seedFeatureGrid populates a newly created planar tracker's feature
// points: generate the uniform grid (gradient-snapped if src is
// non-nil), create a TrackingPoint per grid point, and wire them into
// tracker.FeaturePoints.
func (td *trackerDriver) seedFeatureGrid(ctx *trackerctx.TrackerContext, t *planartrack.PlanarTracker, src planartrack.GradientSource) {
	grid := planartrack.GenerateFeatureGrid(t, src)
	for _, g := range grid {
		p := ctx.Points.Create(t.Trajectory[0].Frame, g.Position)
		p.Confidence = g.Confidence
		t.FeaturePoints = append(t.FeaturePoints, planartrack.FeaturePoint{PointID: p.ID, Confidence: g.Confidence})
	}
}

func main() {
	configPath := flag.String("config", "", "path to a TOML project config")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "usage: texttrack -config project.toml")
		os.Exit(2)
	}

	if err := run(*configPath); err != nil {
		log.Fatalf("texttrack: %v", err)
	}
}

func run(configPath string) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}

	fixture, err := LoadOpFixture(cfg.OpsFile)
	if err != nil {
		return err
	}
	pending := opsByFrame(fixture)

	ctx := trackerctx.New()
	driver := newTrackerDriver(cfg)

	if err := trackFrames(ctx, driver, cfg, pending); err != nil {
		return err
	}

	if cfg.ProjectSavePath != "" {
		doc := project.FromContext(ctx, cfg.Source)
		if err := project.Save(cfg.ProjectSavePath, doc); err != nil {
			return err
		}
	}

	return exportAnnotated(ctx, cfg)
}

// openFrameSource opens either a real video file or a MOTChallenge-style
// image-sequence directory (identified by a seqinfo.ini inside it),
// letting the same config drive either kind of test fixture.
func openFrameSource(path string) (compositor.FrameSource, func() error, error) {
	if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		if _, iniErr := os.Stat(filepath.Join(path, "seqinfo.ini")); iniErr == nil {
			src, err := gocvsource.NewImageSequenceFrameSource(path)
			return src, func() error { return nil }, err
		}
	}
	src, err := gocvsource.NewVideoFrameSource(path)
	if err != nil {
		return nil, nil, err
	}
	return src, src.Close, nil
}

// trackFrames runs the C4 tracking pass: sequentially from frame 0,
// replaying queued user operations and advancing every active point and
// planar tracker by one frame of optical flow / homography estimation.
func trackFrames(ctx *trackerctx.TrackerContext, driver *trackerDriver, cfg Config, pending map[int][]Operation) error {
	source, closeSource, err := openFrameSource(cfg.Source)
	if err != nil {
		return trackerr.Wrap(trackerr.KindSourceUnavailable, "main.trackFrames", "failed to open source", err)
	}
	defer closeSource()

	videoW, videoH := source.Dimensions()
	total := int(source.DurationSeconds() * cfg.FPSOut)
	if total <= 0 {
		return trackerr.New(trackerr.KindSourceUnavailable, "main.trackFrames", "source reports zero duration")
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription(truncateLabel("tracking", 24)),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)

	var prevGray gocv.Mat
	havePrev := false

	for f := 0; f < total; f++ {
		t := float64(f) / cfg.FPSOut
		if err := source.Seek(t); err != nil {
			return trackerr.Wrap(trackerr.KindSourceUnavailable, "main.trackFrames", "seek failed", err)
		}
		frame, ok, err := source.Read()
		if err != nil {
			return trackerr.Wrap(trackerr.KindSourceUnavailable, "main.trackFrames", "decode failed", err)
		}
		if !ok {
			frame.Close()
			break
		}

		gray := gocv.NewMat()
		gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
		frame.Close()

		gradSrc := trackingdriver.NewSobelGradientSource(gray)

		for _, op := range pending[f] {
			applyOp(ctx, driver, op, float64(videoW), float64(videoH), gradSrc)
		}

		if havePrev {
			runDriverUpdate(driver, ctx, prevGray, gray, f-1, f, gradSrc)
			prevGray.Close()
		}

		prevGray = gray
		havePrev = true

		_ = gradSrc.Close()
		_ = bar.Add(1)
	}
	if havePrev {
		prevGray.Close()
	}
	return nil
}

// runDriverUpdate advances every active point and planar tracker from
// fPrev to fNew using the shared prev/curr grayscale pair, per the
// single-threaded cooperative scheduling model: no Mat is retained past
// this call.
func runDriverUpdate(td *trackerDriver, ctx *trackerctx.TrackerContext, prevGray, currGray gocv.Mat, fPrev, fNew int, gradSrc planartrack.GradientSource) {
	for _, p := range ctx.Points.GetAll() {
		if !p.Active {
			continue
		}
		// Points already owned by a planar tracker's feature grid are
		// advanced as part of that tracker's update below; only
		// independent points are driven directly here.
		if isFeaturePoint(ctx, p.ID) {
			continue
		}
		td.driver.UpdatePoint(prevGray, currGray, p, fPrev, fNew)
	}

	for _, t := range ctx.Planar.GetAll() {
		if !t.Active {
			continue
		}
		for _, fp := range t.FeaturePoints {
			if p, ok := ctx.Points.Get(fp.PointID); ok && p.Active {
				td.driver.UpdatePoint(prevGray, currGray, p, fPrev, fNew)
			}
		}
		td.driver.UpdatePlanarTracker(prevGray, currGray, t, ctx.Points, fPrev, fNew, gradSrc)
	}
}

func isFeaturePoint(ctx *trackerctx.TrackerContext, pointID int) bool {
	for _, t := range ctx.Planar.GetAll() {
		for _, fp := range t.FeaturePoints {
			if fp.PointID == pointID {
				return true
			}
		}
	}
	return false
}

// exportAnnotated runs the C7 compositor pass over a fresh source handle,
// drawing every visible text atop each resampled frame and submitting the
// result to a gocv-backed encoder sink.
func exportAnnotated(ctx *trackerctx.TrackerContext, cfg Config) error {
	source, closeSource, err := openFrameSource(cfg.Source)
	if err != nil {
		return trackerr.Wrap(trackerr.KindSourceUnavailable, "main.exportAnnotated", "failed to reopen source", err)
	}
	defer closeSource()

	total := int(source.DurationSeconds() * cfg.FPSOut)
	sink := gocvsink.NewVideoEncoderSink(cfg.Output, cfg.FPSOut, cfg.Codec, total, truncateLabel("exporting", 24))

	exporter := &compositor.Exporter{
		Source:           source,
		Sink:             sink,
		Points:           ctx.Points,
		Planar:           ctx.Planar,
		Texts:            ctx.Texts,
		Renderer:         projection.NewRenderer(float64(cfg.OutputWidth), float64(cfg.OutputHeight)),
		OutWidth:         cfg.OutputWidth,
		OutHeight:        cfg.OutputHeight,
		FPSOut:           cfg.FPSOut,
		Codec:            cfg.Codec,
		BitrateBPS:       cfg.Preset().Bitrate(),
		KeyframeInterval: cfg.Preset().KeyframeInterval(),
		OnProgress: func(stage string, pct float64, current, total int, eta float64, message string) {
			if stage == compositor.StageFlushing {
				fmt.Printf("flushing output to %s\n", cfg.Output)
			}
		},
	}

	if err := exporter.Run(context.Background()); err != nil {
		return err
	}

	fmt.Printf("wrote %s (%s preset, %d kbps target)\n", cfg.Output, cfg.Preset(), cfg.Preset().Bitrate()/1000)
	return nil
}

// truncateLabel fits a progress-bar label to roughly a third of the
// terminal width, so a long description never wraps the bar onto a
// second line in a narrow terminal.
func truncateLabel(label string, fallbackWidth int) string {
	cols, _ := term.GetSize(fallbackWidth*3, 24)
	maxLen := cols / 3
	if maxLen <= 0 || len(label) <= maxLen {
		return label
	}
	if maxLen <= 1 {
		return label[:1]
	}
	return label[:maxLen-1] + "…"
}
