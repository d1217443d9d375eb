// Package kalman implements the sequential Kalman filter of spec §4.4:
// a time update per retained/new Variable followed by sequential scalar
// measurement updates in Joseph form. Grounded on the teacher's
// UpdatePosPPP/UpdateTropPPP/UpdateStatePPP (ppp.go) for the
// time-update shape, and on original_source/src/ProceFrame's sequential
// (not batch) design, using gonum.org/v1/gonum/mat for the dense linear
// algebra instead of the teacher's hand-rolled Mat/Zeros/MatMul.
package kalman

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Filter holds the current state mean and covariance. The state vector
// order is caller-defined (spec §4.4 mandates the equation package's
// deterministic Variable ordering, not anything internal to Filter).
type Filter struct {
	X *mat.VecDense // state mean, length n
	P *mat.SymDense // state covariance, n x n
}

// New builds a filter of dimension n with zero mean and an identity
// covariance scaled by initialVariance (callers normally overwrite each
// diagonal individually via Seed before first use).
func New(n int, initialVariance float64) *Filter {
	p := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		p.SetSym(i, i, initialVariance)
	}
	return &Filter{X: mat.NewVecDense(n, nil), P: p}
}

// Dim returns the state dimension.
func (f *Filter) Dim() int { n, _ := f.P.Dims(); return n }

// Seed sets the mean and variance of one state component, used when a
// Variable is new this epoch (spec §4.4: "seed x=0 ... P[v,v] =
// initialVariance(v)", or a warm-started value per spec §8).
func (f *Filter) Seed(i int, mean, variance float64) {
	f.X.SetVec(i, mean)
	f.P.SetSym(i, i, variance)
}

// TimeUpdatePropagate applies x[i] <- phi*x[i] and inflates P's row/col
// i by process noise q*dt, for one retained Variable (spec §4.4's
// per-Variable time update: "propagate covariance columns/rows
// accordingly" is exact for a diagonal phi, which every stochastic
// model in this package uses — off-diagonal coupling between distinct
// Variables is not part of any model in spec §3).
func (f *Filter) TimeUpdatePropagate(i int, phi, q, dt float64) {
	x := f.X.AtVec(i)
	f.X.SetVec(i, phi*x)

	n := f.Dim()
	for j := 0; j < n; j++ {
		if j == i {
			continue
		}
		f.P.SetSym(i, j, f.P.At(i, j)*phi)
	}
	f.P.SetSym(i, i, f.P.At(i, i)*phi*phi+q*dt)
}

// ResetRow zeroes the mean and resets the variance of state component i
// to initialVariance, decoupling it from every other component; used
// on ambiguity cycle-slip reset (spec §4.4).
func (f *Filter) ResetRow(i int, initialVariance float64) {
	f.X.SetVec(i, 0)
	n := f.Dim()
	for j := 0; j < n; j++ {
		if j == i {
			continue
		}
		f.P.SetSym(i, j, 0)
	}
	f.P.SetSym(i, i, initialVariance)
}

// Row is a sparse design-matrix row: index/coefficient pairs, spec §9's
// sparse-row design note (most Equations touch O(10) of the n state
// components, not all of them).
type Row struct {
	Index []int
	Value []float64
}

func (r Row) dense(n int) *mat.VecDense {
	v := mat.NewVecDense(n, nil)
	for k, idx := range r.Index {
		v.SetVec(idx, r.Value[k])
	}
	return v
}

// MeasurementUpdate applies one scalar measurement y = h.x + noise(r)
// in Joseph form: K = P h^T / (h P h^T + r); x += K*(y - h.x);
// P = (I-Kh) P (I-Kh)^T + K r K^T. Returns the prefit residual and
// whether the update was applied (it is skipped, per spec §7's
// NumericalFailure policy, when the innovation variance is
// non-positive or NaN).
func (f *Filter) MeasurementUpdate(h Row, y, r float64) (residual float64, ok bool) {
	n := f.Dim()
	hVec := h.dense(n)

	var ph mat.VecDense
	ph.MulVec(f.P, hVec)

	hPh := mat.Dot(hVec, &ph)
	hx := mat.Dot(hVec, f.X)

	innovationVar := hPh + r
	if innovationVar <= 0 || math.IsNaN(innovationVar) {
		return 0, false
	}

	var k mat.VecDense
	k.ScaleVec(1.0/innovationVar, &ph)

	prefit := y - hx
	f.X.AddScaledVec(f.X, prefit, &k)

	// I - K h^T, built dense: n is the filter dimension (typically a
	// few dozen to a few hundred unknowns for PPP), small enough that a
	// dense n x n Joseph product is not a bottleneck compared to the
	// per-epoch sparse row construction above.
	imkh := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		imkh.Set(i, i, 1)
	}
	var khOuter mat.Dense
	khOuter.Outer(1, &k, hVec)
	imkh.Sub(imkh, &khOuter)

	var tmp mat.Dense
	tmp.Mul(imkh, denseSym(f.P))
	var newP mat.Dense
	newP.Mul(&tmp, imkh.T())

	var krk mat.Dense
	krk.Outer(r, &k, &k)
	newP.Add(&newP, &krk)

	symmetrize(f.P, &newP)

	return prefit, true
}

func denseSym(p *mat.SymDense) *mat.Dense {
	n := p.Symmetric()
	d := mat.NewDense(n, n, nil)
	d.Copy(p)
	return d
}

// symmetrize writes (src + src^T)/2 into dst's symmetric storage,
// enforcing spec §3/§8's "P remains symmetric after every update"
// invariant even after floating-point roundoff in the Joseph product.
func symmetrize(dst *mat.SymDense, src mat.Matrix) {
	n, _ := src.Dims()
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			dst.SetSym(i, j, (src.At(i, j)+src.At(j, i))/2.0)
		}
	}
}
