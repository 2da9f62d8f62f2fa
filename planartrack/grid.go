package planartrack

import (
	"math"
	"sync"

	"github.com/nmichlo/texttrack/geometry"
)

// GradientSource samples gradient magnitude at an integer pixel, used by
// snapToGradient to pull a generated grid point onto a locally
// high-texture pixel. Implementations wrap a single frame's grayscale
// buffer; trackingdriver supplies the gocv-backed implementation so this
// package stays free of a vision-library dependency.
type GradientSource interface {
	// GradientMagnitudeAt returns the gradient magnitude at (x, y) and
	// whether the coordinate is in bounds.
	GradientMagnitudeAt(x, y int) (magnitude float64, ok bool)
}

// gridCacheKey caches a generated grid by the quad the uniform grid is
// interpolated over plus the grid size.
type gridCacheKey struct {
	n       int
	corners [4]geometry.Vector2
}

var (
	gridCacheMu  sync.Mutex
	gridCache    = make(map[gridCacheKey][]geometry.Vector2)
	gridCacheMax = 4 // small bound: a handful of active trackers at once
)

// uniformGrid bilinearly interpolates n interior points over the convex
// quad (plus the 4 corners, appended by the caller): for a
// ceil(sqrt(n))-sided grid, u = (col+0.5)/side, v = (row+0.5)/side, top
// edge between TL-TR, bottom edge between BL-BR. Results are cached
// since the same quad + n combination regenerates the same grid.
func uniformGrid(n int, corners [4]geometry.Vector2) []geometry.Vector2 {
	key := gridCacheKey{n: n, corners: corners}

	gridCacheMu.Lock()
	if cached, ok := gridCache[key]; ok {
		gridCacheMu.Unlock()
		out := make([]geometry.Vector2, len(cached))
		copy(out, cached)
		return out
	}
	gridCacheMu.Unlock()

	tl, tr, br, bl := corners[0], corners[1], corners[2], corners[3]

	side := int(math.Ceil(math.Sqrt(float64(n))))
	pts := make([]geometry.Vector2, 0, side*side)

	for row := 0; row < side; row++ {
		v := (float64(row) + 0.5) / float64(side)
		for col := 0; col < side; col++ {
			u := (float64(col) + 0.5) / float64(side)

			top := geometry.Vector2{X: tl.X + (tr.X-tl.X)*u, Y: tl.Y + (tr.Y-tl.Y)*u}
			bottom := geometry.Vector2{X: bl.X + (br.X-bl.X)*u, Y: bl.Y + (br.Y-bl.Y)*u}

			p := geometry.Vector2{X: top.X + (bottom.X-top.X)*v, Y: top.Y + (bottom.Y-top.Y)*v}
			pts = append(pts, p)

			if len(pts) >= n {
				break
			}
		}
		if len(pts) >= n {
			break
		}
	}

	gridCacheMu.Lock()
	if len(gridCache) >= gridCacheMax {
		gridCache = make(map[gridCacheKey][]geometry.Vector2)
	}
	cached := make([]geometry.Vector2, len(pts))
	copy(cached, pts)
	gridCache[key] = cached
	gridCacheMu.Unlock()

	return pts
}

// GridPoint is a grid point after an optional gradient snap, carrying the
// confidence the grid-generation law assigns: min(1, gradMag/50), or 1.0
// when no GradientSource is supplied.
type GridPoint struct {
	Position   geometry.Vector2
	Confidence float64
}

const snapRadius = 10
const snapStep = 2

// snapToGradient searches a radius-10 neighborhood (sampled every 2 px)
// around p for the pixel of highest gradient magnitude and returns it,
// along with confidence = min(1, gradMag/50). If src is nil, or no
// sample is in bounds, returns p unchanged with confidence 1.0.
func snapToGradient(p geometry.Vector2, src GradientSource) GridPoint {
	if src == nil {
		return GridPoint{Position: p, Confidence: 1.0}
	}

	best := p
	bestMag := -1.0
	found := false

	cx, cy := int(math.Round(p.X)), int(math.Round(p.Y))
	for dy := -snapRadius; dy <= snapRadius; dy += snapStep {
		for dx := -snapRadius; dx <= snapRadius; dx += snapStep {
			x, y := cx+dx, cy+dy
			mag, ok := src.GradientMagnitudeAt(x, y)
			if !ok {
				continue
			}
			found = true
			if mag > bestMag {
				bestMag = mag
				best = geometry.Vector2{X: float64(x), Y: float64(y)}
			}
		}
	}

	if !found {
		return GridPoint{Position: p, Confidence: 1.0}
	}
	conf := bestMag / 50
	if conf > 1 {
		conf = 1
	}
	return GridPoint{Position: best, Confidence: conf}
}

// GenerateFeatureGrid fills the tracker's current quad with NGrid-4
// interior points plus the 4 corners (NGrid points in all, not NGrid
// interior points), optionally snapped to local
// gradient maxima via src. It does not mutate the tracker or the
// pointtrack store — callers (trackingdriver) are responsible for
// creating TrackingPoints from the returned positions and wiring them
// into t.FeaturePoints.
func GenerateFeatureGrid(t *PlanarTracker, src GradientSource) []GridPoint {
	corners := t.corners2()
	interior := NGrid - 4
	if interior < 0 {
		interior = 0
	}

	grid := uniformGrid(interior, corners)

	out := make([]GridPoint, 0, len(grid)+4)
	for _, p := range grid {
		out = append(out, snapToGradient(p, src))
	}
	for _, c := range corners {
		out = append(out, snapToGradient(c, src))
	}
	return out
}

// ClearGridCache discards every cached uniform grid. Exposed for tests
// that need a clean slate between cases.
func ClearGridCache() {
	gridCacheMu.Lock()
	defer gridCacheMu.Unlock()
	gridCache = make(map[gridCacheKey][]geometry.Vector2)
}
