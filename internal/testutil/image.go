package testutil

import "gocv.io/x/gocv"

// MatSimilarity reports the fraction of pixels whose channels all agree
// within tol between two Mats of the same shape. Shape mismatch counts
// as zero similarity. tol absorbs anti-aliasing differences; pass 0 for
// an exact comparison.
func MatSimilarity(a, b *gocv.Mat, tol int) float64 {
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() || a.Channels() != b.Channels() {
		return 0
	}
	ab, bb := a.ToBytes(), b.ToBytes()
	if len(ab) != len(bb) || len(ab) == 0 {
		return 0
	}

	ch := a.Channels()
	matching := 0
	for i := 0; i < len(ab); i += ch {
		agree := true
		for c := 0; c < ch; c++ {
			d := int(ab[i+c]) - int(bb[i+c])
			if d < -tol || d > tol {
				agree = false
				break
			}
		}
		if agree {
			matching++
		}
	}
	return float64(matching) / float64(len(ab)/ch)
}
