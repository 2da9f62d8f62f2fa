// Package project (de)serializes a TrackerContext and its source reference
// to a single JSON document, so a tracking/annotation session can be saved
// and reopened. Frame-indexed maps (framePositions; frameHomographies is
// deliberately excluded as a derived cache) serialize as (frame, value)
// pair sequences rather than raw JSON objects, since JSON object keys are
// strings and on-disk order must never carry semantic meaning either way.
package project

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nmichlo/texttrack/geometry"
	"github.com/nmichlo/texttrack/planartrack"
	"github.com/nmichlo/texttrack/pointtrack"
	"github.com/nmichlo/texttrack/textmodel"
	"github.com/nmichlo/texttrack/trackerctx"
)

// Document is the on-disk shape of a saved project.
type Document struct {
	Source   string       `json:"source"`
	Points   []PointDoc   `json:"points"`
	Trackers []TrackerDoc `json:"trackers"`
	Texts    []TextDoc    `json:"texts"`
}

// PointDoc is the persisted shape of a pointtrack.TrackingPoint.
type PointDoc struct {
	ID                 int                          `json:"id"`
	X                  float64                      `json:"x"`
	Y                  float64                      `json:"y"`
	Confidence         float64                      `json:"confidence"`
	Active             bool                         `json:"active"`
	SearchRadius       float64                      `json:"searchRadius"`
	AdaptiveWindowSize int                          `json:"adaptiveWindowSize"`
	FramePositions     []pointtrack.FramePosition   `json:"framePositions"`
	Trajectory         []pointtrack.TrajectoryEntry `json:"trajectory"`
}

// TrackerDoc is the persisted shape of a planartrack.PlanarTracker.
// frameHomographies is not part of this shape — it's a derived cache,
// rebuildable frame by frame from HomographyMatrix and the video itself,
// not authoritative state that needs saving.
type TrackerDoc struct {
	ID                       int                          `json:"id"`
	Corners                  [4]planartrack.PlanarCorner  `json:"corners"`
	Center                   geometry.Vector2             `json:"center"`
	FeaturePoints            []planartrack.FeaturePoint   `json:"featurePoints"`
	HomographyMatrix         *geometry.Mat3               `json:"homographyMatrix,omitempty"`
	Trajectory               []planartrack.TrajectoryEntry `json:"trajectory"`
	Confidence               float64                      `json:"confidence"`
	NeedsFeatureRegeneration bool                         `json:"needsFeatureRegeneration"`
	State                    planartrack.State            `json:"state"`
	ConsecutiveDegraded      int                          `json:"consecutiveDegraded"`
	Active                   bool                         `json:"active"`
}

// TextDoc is the persisted shape of a textmodel.Text3DElement.
type TextDoc struct {
	ID           int                    `json:"id"`
	Name         string                 `json:"name"`
	Content      string                 `json:"content"`
	Visible      bool                   `json:"visible"`
	CreatedFrame int                    `json:"createdFrame"`
	Anchor       textmodel.Anchor       `json:"anchor"`
	Transform    geometry.Transform3D   `json:"transform"`
	Style        textmodel.Style        `json:"style"`
}

// FromContext snapshots a TrackerContext and the path it was loaded from
// into a Document ready for JSON marshaling. Selected is not persisted —
// it's transient UI state, not part of the tracking/annotation record.
func FromContext(ctx *trackerctx.TrackerContext, source string) Document {
	doc := Document{Source: source}

	for _, p := range ctx.Points.GetAll() {
		doc.Points = append(doc.Points, PointDoc{
			ID:                 p.ID,
			X:                  p.X,
			Y:                  p.Y,
			Confidence:         p.Confidence,
			Active:             p.Active,
			SearchRadius:       p.SearchRadius,
			AdaptiveWindowSize: p.AdaptiveWindowSize,
			FramePositions:     p.FramePositionPairs(),
			Trajectory:         p.Trajectory,
		})
	}

	for _, t := range ctx.Planar.GetAll() {
		doc.Trackers = append(doc.Trackers, TrackerDoc{
			ID:                       t.ID,
			Corners:                  t.Corners,
			Center:                   t.Center,
			FeaturePoints:            t.FeaturePoints,
			HomographyMatrix:         t.HomographyMatrix,
			Trajectory:               t.Trajectory,
			Confidence:               t.Confidence,
			NeedsFeatureRegeneration: t.NeedsFeatureRegeneration,
			State:                    t.State,
			ConsecutiveDegraded:      t.ConsecutiveDegraded,
			Active:                   t.Active,
		})
	}

	for _, e := range ctx.Texts.GetAll() {
		doc.Texts = append(doc.Texts, TextDoc{
			ID:           e.ID,
			Name:         e.Name,
			Content:      e.Content,
			Visible:      e.Visible,
			CreatedFrame: e.CreatedFrame,
			Anchor:       e.Anchor,
			Transform:    e.Transform,
			Style:        e.Style,
		})
	}

	return doc
}

// ApplyTo restores every point, tracker, and text element in doc into ctx.
// ctx is expected to be freshly constructed (trackerctx.New()); restoring
// into a non-empty context can collide IDs with whatever it already held.
func (doc Document) ApplyTo(ctx *trackerctx.TrackerContext) {
	for _, pd := range doc.Points {
		p := pointtrack.RestoreTrackingPoint(pd.ID, pd.X, pd.Y, pd.Confidence, pd.Active, pd.SearchRadius, pd.AdaptiveWindowSize, pd.FramePositions, pd.Trajectory)
		ctx.Points.Restore(p)
	}

	for _, td := range doc.Trackers {
		t := planartrack.RestorePlanarTracker(td.ID, td.Corners, td.Center, td.FeaturePoints, td.HomographyMatrix, td.Trajectory, td.Confidence, td.NeedsFeatureRegeneration, td.State, td.ConsecutiveDegraded, td.Active)
		ctx.Planar.Restore(t)
	}

	for _, text := range doc.Texts {
		ctx.Texts.Restore(&textmodel.Text3DElement{
			ID:           text.ID,
			Name:         text.Name,
			Content:      text.Content,
			Visible:      text.Visible,
			Selected:     false,
			CreatedFrame: text.CreatedFrame,
			Anchor:       text.Anchor,
			Transform:    text.Transform,
			Style:        text.Style,
		})
	}
}

// Save marshals doc as indented JSON and writes it to path.
func Save(path string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal project document: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write project file %s: %w", path, err)
	}
	return nil
}

// Load reads and unmarshals a project document from path.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read project file %s: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to parse project file %s: %w", path, err)
	}
	return doc, nil
}
