package trackingdriver

import (
	"testing"

	"gocv.io/x/gocv"

	"github.com/nmichlo/texttrack/geometry"
)

func TestPointsToMat_RoundTrip(t *testing.T) {
	pts := []geometry.Vector2{{X: 1.5, Y: -2.5}, {X: 100, Y: 200}}
	m, err := pointsToMat(pts)
	if err != nil {
		t.Fatalf("pointsToMat error: %v", err)
	}
	defer m.Close()

	if m.Rows() != len(pts) {
		t.Fatalf("expected %d rows, got %d", len(pts), m.Rows())
	}
	for i, want := range pts {
		v := m.GetVecfAt(i, 0)
		if v[0] != float32(want.X) || v[1] != float32(want.Y) {
			t.Errorf("point %d mismatch: got (%v, %v) want %+v", i, v[0], v[1], want)
		}
	}
}

func TestFloat32BytesLE_LittleEndianLayout(t *testing.T) {
	data := []float32{1.0}
	b := float32BytesLE(data)
	if len(b) != 4 {
		t.Fatalf("expected 4 bytes, got %d", len(b))
	}
	// 1.0f32 = 0x3F800000, little-endian bytes: 00 00 80 3F
	if b[0] != 0x00 || b[1] != 0x00 || b[2] != 0x80 || b[3] != 0x3F {
		t.Errorf("unexpected byte layout: %x", b)
	}
}

func TestDefaultFlowParams(t *testing.T) {
	p := DefaultFlowParams()
	if p.MaxLevel != 3 || p.MaxIter != 30 || p.Epsilon != 0.01 {
		t.Errorf("unexpected default flow params: %+v", p)
	}
}

func TestDefaultHomographyParams(t *testing.T) {
	p := DefaultHomographyParams()
	if p.ReprojThreshold != 3.0 || p.MaxIters != 2000 || p.Confidence != 0.995 {
		t.Errorf("unexpected default homography params: %+v", p)
	}
}

func TestSobelGradientSource_EdgeHasHigherMagnitudeThanFlatRegion(t *testing.T) {
	gray := gocv.NewMatWithSize(40, 40, gocv.MatTypeCV8U)
	defer gray.Close()
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if x < 20 {
				gray.SetUCharAt(y, x, 0)
			} else {
				gray.SetUCharAt(y, x, 255)
			}
		}
	}

	src := NewSobelGradientSource(gray)
	defer src.Close()

	edgeMag, ok := src.GradientMagnitudeAt(20, 20)
	if !ok {
		t.Fatalf("expected in-bounds sample at the edge")
	}
	flatMag, ok := src.GradientMagnitudeAt(5, 20)
	if !ok {
		t.Fatalf("expected in-bounds sample in the flat region")
	}
	if edgeMag <= flatMag {
		t.Errorf("expected edge gradient magnitude (%v) to exceed flat-region magnitude (%v)", edgeMag, flatMag)
	}

	if _, ok := src.GradientMagnitudeAt(-1, 0); ok {
		t.Errorf("expected out-of-bounds sample to report ok=false")
	}
	if _, ok := src.GradientMagnitudeAt(0, 40); ok {
		t.Errorf("expected out-of-bounds sample to report ok=false")
	}
}
