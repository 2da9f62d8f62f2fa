package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nmichlo/texttrack/geometry"
	"github.com/nmichlo/texttrack/planartrack"
	"github.com/nmichlo/texttrack/textmodel"
	"github.com/nmichlo/texttrack/trackerctx"
)

// OpFixture is a recorded sequence of user actions — tracker/point/text
// creation, manual corner edits, scrub markers — replayed frame by frame.
// It stands in for interactions a UI shell would provide: a real host
// application would emit these from mouse clicks on a canvas, not from
// a JSON file.
type OpFixture struct {
	Operations []Operation `json:"operations"`
}

// Operation is one user action, timestamped to the frame it occurs on.
// Only the fields relevant to Kind are read; the rest are ignored.
type Operation struct {
	Frame int    `json:"frame"`
	Kind  string `json:"kind"`

	// createPlanar / createPoint
	ClickX float64 `json:"clickX"`
	ClickY float64 `json:"clickY"`

	// editCorner
	TrackerID   int     `json:"trackerId"`
	CornerIndex int     `json:"cornerIndex"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`

	// createText
	AnchorKind string  `json:"anchorKind"` // "point" | "planar"
	AnchorID   int     `json:"anchorId"`
	Content    string  `json:"content"`
	OffsetX    float64 `json:"offsetX"`
	OffsetY    float64 `json:"offsetY"`
	OffsetZ    float64 `json:"offsetZ"`
}

const (
	opCreatePlanar = "createPlanar"
	opCreatePoint  = "createPoint"
	opCreateText   = "createText"
	opEditCorner   = "editCorner"
	opScrub        = "scrub"
)

// LoadOpFixture reads an operation fixture from path.
func LoadOpFixture(path string) (OpFixture, error) {
	if path == "" {
		return OpFixture{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return OpFixture{}, fmt.Errorf("failed to read ops file %s: %w", path, err)
	}
	var fx OpFixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return OpFixture{}, fmt.Errorf("failed to parse ops file %s: %w", path, err)
	}
	return fx, nil
}

// opsByFrame groups operations by the frame they fire on, for cheap
// per-frame lookup during the tracking pass.
func opsByFrame(fx OpFixture) map[int][]Operation {
	out := make(map[int][]Operation)
	for _, op := range fx.Operations {
		out[op.Frame] = append(out[op.Frame], op)
	}
	return out
}

// applyOp replays one operation against ctx at op.Frame, seeding stores and
// applying manual edits. videoW/videoH size a freshly created planar
// tracker's initial square.
func applyOp(ctx *trackerctx.TrackerContext, driver *trackerDriver, op Operation, videoW, videoH float64, gradSrc planartrack.GradientSource) {
	switch op.Kind {
	case opCreatePlanar:
		t := ctx.Planar.Create(op.ClickX, op.ClickY, videoW, videoH, op.Frame)
		driver.seedFeatureGrid(ctx, t, gradSrc)

	case opCreatePoint:
		ctx.Points.Create(op.Frame, geometry.Vector2{X: op.ClickX, Y: op.ClickY})

	case opCreateText:
		var anchor textmodel.Anchor
		switch op.AnchorKind {
		case "point":
			anchor = textmodel.PointAnchor(op.AnchorID)
		case "planar":
			anchor = textmodel.PlanarAnchor(op.AnchorID)
		default:
			return
		}
		e := ctx.Texts.Create(anchor, op.Frame)
		e.Content = op.Content
		e.Transform.Position = geometry.Vector3{X: op.OffsetX, Y: op.OffsetY, Z: op.OffsetZ}

	case opEditCorner:
		if t, ok := ctx.Planar.Get(op.TrackerID); ok {
			driver.driver.ManualEditCorner(t, op.CornerIndex, op.X, op.Y)
		}

	case opScrub:
		ctx.SyncToFrame(op.Frame)
	}
}
