// Package kalman holds the small linear filter behind the optional
// point-trajectory smoother: a constant-velocity state observed through
// position-only measurements, with gonum doing the linear algebra.
package kalman

import (
	"gonum.org/v1/gonum/mat"
)

// Filter is a linear Kalman filter over the state (x, y, vx, vy) with
// 2D position measurements. The model matrices are fixed at
// construction; only X and P evolve.
type Filter struct {
	f *mat.Dense // state transition (4x4)
	h *mat.Dense // measurement (2x4)
	q *mat.Dense // process noise (4x4)
	r *mat.Dense // measurement noise (2x2)

	x *mat.Dense // state column vector (4x1)
	p *mat.Dense // state covariance (4x4)

	// scratch buffers reused across Predict/Update calls
	xPrior *mat.Dense
	pPrior *mat.Dense
}

// NewConstantVelocity2D seeds a filter at position (x, y) with zero
// initial velocity. rMult scales measurement noise (higher trusts
// incoming measurements less), qMult scales process noise on the
// velocity block, pMult scales initial position uncertainty.
func NewConstantVelocity2D(x, y, rMult, qMult, pMult float64) *Filter {
	f := &Filter{
		f: mat.NewDense(4, 4, []float64{
			1, 0, 1, 0,
			0, 1, 0, 1,
			0, 0, 1, 0,
			0, 0, 0, 1,
		}),
		h: mat.NewDense(2, 4, []float64{
			1, 0, 0, 0,
			0, 1, 0, 0,
		}),
		q: mat.NewDense(4, 4, []float64{
			1, 0, 0, 0,
			0, 1, 0, 0,
			0, 0, qMult, 0,
			0, 0, 0, qMult,
		}),
		r: mat.NewDense(2, 2, []float64{
			rMult, 0,
			0, rMult,
		}),
		x: mat.NewDense(4, 1, []float64{x, y, 0, 0}),
		p: mat.NewDense(4, 4, []float64{
			pMult, 0, 0, 0,
			0, pMult, 0, 0,
			0, 0, 1, 0,
			0, 0, 0, 1,
		}),
		xPrior: mat.NewDense(4, 1, nil),
		pPrior: mat.NewDense(4, 4, nil),
	}
	return f
}

// Predict advances the state one frame: x = F x, P = F P Fᵀ + Q.
func (k *Filter) Predict() {
	k.xPrior.Mul(k.f, k.x)
	k.x.Copy(k.xPrior)

	var fp mat.Dense
	fp.Mul(k.f, k.p)
	k.pPrior.Mul(&fp, k.f.T())
	k.p.Add(k.pPrior, k.q)
}

// Update folds the measured position (zx, zy) into the state. If the
// innovation covariance is singular the measurement is discarded and
// the prior kept, so a degenerate frame cannot poison the filter.
func (k *Filter) Update(zx, zy float64) {
	z := mat.NewDense(2, 1, []float64{zx, zy})

	// innovation y = z - H x
	var hx, y mat.Dense
	hx.Mul(k.h, k.x)
	y.Sub(z, &hx)

	// innovation covariance S = H P Hᵀ + R
	var hp, s mat.Dense
	hp.Mul(k.h, k.p)
	s.Mul(&hp, k.h.T())
	s.Add(&s, k.r)

	var sInv mat.Dense
	if err := sInv.Inverse(&s); err != nil {
		return
	}

	// gain K = P Hᵀ S⁻¹
	var pht, gain mat.Dense
	pht.Mul(k.p, k.h.T())
	gain.Mul(&pht, &sInv)

	// x = x + K y
	var ky mat.Dense
	ky.Mul(&gain, &y)
	k.x.Add(k.x, &ky)

	// P = (I - K H) P
	var kh, ikh, newP mat.Dense
	kh.Mul(&gain, k.h)
	ikh.Sub(identity4(), &kh)
	newP.Mul(&ikh, k.p)
	k.p.Copy(&newP)
}

// Position returns the current position estimate.
func (k *Filter) Position() (x, y float64) {
	return k.x.At(0, 0), k.x.At(1, 0)
}

// Velocity returns the current per-frame velocity estimate.
func (k *Filter) Velocity() (vx, vy float64) {
	return k.x.At(2, 0), k.x.At(3, 0)
}

func identity4() *mat.Dense {
	m := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		m.Set(i, i, 1)
	}
	return m
}
