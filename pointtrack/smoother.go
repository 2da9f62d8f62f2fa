package pointtrack

import (
	"github.com/nmichlo/texttrack/geometry"
	"github.com/nmichlo/texttrack/internal/kalman"
)

// SmootherConfig tunes the optional Kalman point smoother. Zero value
// yields usable (if conservative) defaults via NewSmoother.
type SmootherConfig struct {
	// RMult scales measurement noise: higher trusts the flow result less.
	RMult float64
	// QMult scales process noise on the velocity block.
	QMult float64
	// PMult scales initial covariance on the position block.
	PMult float64
}

// DefaultSmootherConfig returns constant-velocity smoothing defaults
// that damp single-frame flow jitter without lagging real motion.
func DefaultSmootherConfig() SmootherConfig {
	return SmootherConfig{RMult: 1.0, QMult: 0.01, PMult: 10.0}
}

// Smoother keeps one constant-velocity filter per TrackingPoint to damp
// optical-flow jitter before a position is committed. Disabled by
// default: Store.Create never builds one, and commit behavior without a
// Smoother is unaffected, preserving exact trajectory replay for
// callers that don't opt in.
type Smoother struct {
	cfg     SmootherConfig
	filters map[int]*kalman.Filter
}

// NewSmoother builds a Smoother using cfg (zero value is not meaningful;
// callers should start from DefaultSmootherConfig).
func NewSmoother(cfg SmootherConfig) *Smoother {
	return &Smoother{cfg: cfg, filters: make(map[int]*kalman.Filter)}
}

// Smooth predicts one step and folds measurement v into the filter for
// point id, returning the filtered position. Call before Store.Commit;
// the caller decides whether to commit the raw or smoothed value.
func (s *Smoother) Smooth(id int, v geometry.Vector2) geometry.Vector2 {
	kf, ok := s.filters[id]
	if !ok {
		kf = kalman.NewConstantVelocity2D(v.X, v.Y, s.cfg.RMult, s.cfg.QMult, s.cfg.PMult)
		s.filters[id] = kf
	}
	kf.Predict()
	kf.Update(v.X, v.Y)
	x, y := kf.Position()
	return geometry.Vector2{X: x, Y: y}
}

// Forget discards the filter state for a point, e.g. on deletion.
func (s *Smoother) Forget(id int) {
	delete(s.filters, id)
}
