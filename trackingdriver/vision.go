package trackingdriver

import (
	"image"
	"math"

	"gocv.io/x/gocv"

	"github.com/nmichlo/texttrack/geometry"
)

// FlowParams configures the pyramidal Lucas-Kanade optical-flow primitive.
type FlowParams struct {
	WindowSize      int
	MaxLevel        int
	MaxIter         int
	Epsilon         float64
	MinEigThreshold float64
}

// DefaultFlowParams matches the per-point update call: maxLevel=3,
// maxIter=30, epsilon=0.01. WindowSize is per-point (TrackingPoint's
// AdaptiveWindowSize), so it is not defaulted here.
func DefaultFlowParams() FlowParams {
	return FlowParams{MaxLevel: 3, MaxIter: 30, Epsilon: 0.01, MinEigThreshold: 1e-4}
}

// HomographyParams configures the RANSAC homography primitive.
type HomographyParams struct {
	ReprojThreshold float64
	MaxIters        int
	Confidence      float64
}

// DefaultHomographyParams matches the corner-propagation step: reprojection
// threshold 3.0px, max iterations 2000, target confidence 0.995.
func DefaultHomographyParams() HomographyParams {
	return HomographyParams{ReprojThreshold: 3.0, MaxIters: 2000, Confidence: 0.995}
}

// VisionPrimitive is the two-operation external vision boundary:
// pyramidal LK optical flow and RANSAC homography estimation. The
// tracking driver depends only on this interface; GocvVisionPrimitive is
// the concrete gocv-backed implementation wired by default.
type VisionPrimitive interface {
	// PyramidalLK tracks prevPoints from prevGray into currGray. Returns,
	// per input point: the tracked position, whether tracking succeeded,
	// and a confidence in [0,1]. GocvVisionPrimitive derives that
	// confidence from the flow's per-point tracking error, not from an
	// eigenvalue score.
	PyramidalLK(prevGray, currGray gocv.Mat, prevPoints []geometry.Vector2, params FlowParams) (newPoints []geometry.Vector2, statuses []bool, confidences []float64)

	// FindHomography estimates a 3x3 homography mapping srcPts to dstPts
	// via RANSAC. ok is false if the vision library returned an empty
	// matrix (degenerate correspondence set).
	FindHomography(srcPts, dstPts []geometry.Vector2, params HomographyParams) (h geometry.Mat3, inlierMask []bool, ok bool)
}

// GocvVisionPrimitive implements VisionPrimitive on top of gocv, in the
// style of this codebase's sparse optical-flow and RANSAC homography
// estimation helpers elsewhere.
type GocvVisionPrimitive struct{}

// PyramidalLK runs gocv.CalcOpticalFlowPyrLK over the given points.
// Confidence is derived from the per-point tracking error gocv reports:
// lower error maps to higher confidence via 1/(1+error), clamped to
// [0,1] — commit requires a graded confidence, not just the binary
// status flag.
func (GocvVisionPrimitive) PyramidalLK(prevGray, currGray gocv.Mat, prevPoints []geometry.Vector2, params FlowParams) ([]geometry.Vector2, []bool, []float64) {
	n := len(prevPoints)
	if n == 0 {
		return nil, nil, nil
	}

	prevMat, err := pointsToMat(prevPoints)
	if err != nil {
		return nil, nil, nil
	}
	defer prevMat.Close()

	currMat := gocv.NewMat()
	defer currMat.Close()
	status := gocv.NewMat()
	defer status.Close()
	errMat := gocv.NewMat()
	defer errMat.Close()

	winSize := params.WindowSize
	if winSize <= 0 {
		winSize = 21
	}

	gocv.CalcOpticalFlowPyrLKWithParams(
		prevGray, currGray, prevMat, &currMat, &status, &errMat,
		image.Pt(winSize, winSize), params.MaxLevel,
		gocv.NewTermCriteria(gocv.Count+gocv.EPS, params.MaxIter, params.Epsilon),
		0, params.MinEigThreshold,
	)

	newPoints := make([]geometry.Vector2, n)
	statuses := make([]bool, n)
	confidences := make([]float64, n)

	for i := 0; i < n; i++ {
		v := currMat.GetVecfAt(i, 0)
		newPoints[i] = geometry.Vector2{X: float64(v[0]), Y: float64(v[1])}
		statuses[i] = status.GetUCharAt(i, 0) == 1

		e := errMat.GetFloatAt(i, 0)
		conf := 1.0 / (1.0 + float64(e))
		if conf < 0 {
			conf = 0
		} else if conf > 1 {
			conf = 1
		}
		confidences[i] = conf
	}

	return newPoints, statuses, confidences
}

// FindHomography runs gocv.FindHomography with RANSAC. It keeps no
// reference-frame accumulation: each call estimates one incremental
// per-tracker homography between two adjacent frames.
func (GocvVisionPrimitive) FindHomography(srcPts, dstPts []geometry.Vector2, params HomographyParams) (geometry.Mat3, []bool, bool) {
	if len(srcPts) < 4 || len(dstPts) < 4 || len(srcPts) != len(dstPts) {
		return geometry.Mat3{}, nil, false
	}

	srcMat, err := pointsToMat(srcPts)
	if err != nil {
		return geometry.Mat3{}, nil, false
	}
	defer srcMat.Close()
	dstMat, err := pointsToMat(dstPts)
	if err != nil {
		return geometry.Mat3{}, nil, false
	}
	defer dstMat.Close()

	mask := gocv.NewMat()
	defer mask.Close()

	h := gocv.FindHomography(srcMat, dstMat, gocv.HomographyMethodRANSAC, params.ReprojThreshold, &mask, params.MaxIters, params.Confidence)
	defer h.Close()

	if h.Empty() {
		return geometry.Mat3{}, nil, false
	}

	rows, cols := h.Rows(), h.Cols()
	if rows != 3 || cols != 3 {
		return geometry.Mat3{}, nil, false
	}

	var m geometry.Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i*3+j] = h.GetDoubleAt(i, j)
		}
	}

	inliers := make([]bool, mask.Rows())
	for i := 0; i < mask.Rows(); i++ {
		inliers[i] = mask.GetUCharAt(i, 0) != 0
	}

	return m, inliers, true
}

// SobelGradientSource implements planartrack.GradientSource over a single
// frame's grayscale buffer, backing the feature-grid gradient snap with
// gocv primitives rather than a hand-rolled gradient filter. The Sobel
// response is computed once up front over the whole frame and cached,
// since a regeneration pass samples dozens of candidate points against
// the same frame.
type SobelGradientSource struct {
	mag    gocv.Mat
	width  int
	height int
}

// NewSobelGradientSource runs a Sobel gradient magnitude pass over gray
// (a single-channel grayscale Mat) and returns a GradientSource reading
// from it. Callers must call Close when done with it.
func NewSobelGradientSource(gray gocv.Mat) SobelGradientSource {
	gx := gocv.NewMat()
	defer gx.Close()
	gy := gocv.NewMat()
	defer gy.Close()

	gocv.Sobel(gray, &gx, gocv.MatTypeCV32F, 1, 0, 3, 1, 0, gocv.BorderDefault)
	gocv.Sobel(gray, &gy, gocv.MatTypeCV32F, 0, 1, 3, 1, 0, gocv.BorderDefault)

	gx2 := gocv.NewMat()
	defer gx2.Close()
	gy2 := gocv.NewMat()
	defer gy2.Close()
	gocv.Multiply(gx, gx, &gx2)
	gocv.Multiply(gy, gy, &gy2)

	sum := gocv.NewMat()
	gocv.Add(gx2, gy2, &sum)

	mag := gocv.NewMat()
	gocv.Sqrt(sum, &mag)
	sum.Close()

	return SobelGradientSource{mag: mag, width: gray.Cols(), height: gray.Rows()}
}

// Close releases the cached gradient-magnitude Mat.
func (s SobelGradientSource) Close() error {
	return s.mag.Close()
}

// GradientMagnitudeAt implements planartrack.GradientSource.
func (s SobelGradientSource) GradientMagnitudeAt(x, y int) (float64, bool) {
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return 0, false
	}
	return float64(s.mag.GetFloatAt(y, x)), true
}

// pointsToMat converts a slice of Vector2 into the CV_32FC2 Mat shape
// gocv's flow/homography primitives expect.
func pointsToMat(pts []geometry.Vector2) (gocv.Mat, error) {
	data := make([]float32, len(pts)*2)
	for i, p := range pts {
		data[i*2] = float32(p.X)
		data[i*2+1] = float32(p.Y)
	}
	return gocv.NewMatFromBytes(len(pts), 1, gocv.MatTypeCV32FC2, float32BytesLE(data))
}

func float32BytesLE(data []float32) []byte {
	out := make([]byte, len(data)*4)
	for i, v := range data {
		bits := math.Float32bits(v)
		out[i*4] = byte(bits)
		out[i*4+1] = byte(bits >> 8)
		out[i*4+2] = byte(bits >> 16)
		out[i*4+3] = byte(bits >> 24)
	}
	return out
}
