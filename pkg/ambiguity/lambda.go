// Package ambiguity implements the PPP-AR integer ambiguity resolution
// pipeline of spec §4.5: EWL/WL rounding and LAMBDA/MLAMBDA integer
// least-squares fixing, narrow-lane fixing, and the "constrain back"
// pseudo-observation step. The LAMBDA/MLAMBDA core (LD factorization,
// Gauss integer transform, permutation, reduction, mlambda search) is
// ported from the teacher's lamda.go (itself a Go translation of
// RTKLIB's lambda.c), kept column-major internally to match the
// original algorithm exactly, with gonum.org/v1/gonum/mat used at the
// package boundary so callers work with the same matrix type the
// Kalman filter and equation assembler use.
package ambiguity

import "math"

const loopMax = 10000

func sgn(x float64) float64 {
	if x <= 0.0 {
		return -1.0
	}
	return 1.0
}

func roundF(x float64) float64 {
	t := math.Trunc(x)
	if math.Abs(x-t) >= 0.5 {
		return t + math.Copysign(1, x)
	}
	return t
}

// ld performs the Q = L' * diag(D) * L factorization (column-major,
// n x n), ported from the teacher's LD.
func ld(n int, q []float64) (l, d []float64, ok bool) {
	l = make([]float64, n*n)
	d = make([]float64, n)
	a := make([]float64, n*n)
	copy(a, q)

	for i := n - 1; i >= 0; i-- {
		d[i] = a[i+i*n]
		if d[i] <= 0.0 {
			return l, d, false
		}
		av := math.Sqrt(d[i])
		for j := 0; j <= i; j++ {
			l[i+j*n] = a[i+j*n] / av
		}
		for j := 0; j <= i-1; j++ {
			for k := 0; k <= j; k++ {
				a[j+k*n] -= l[i+k*n] * l[i+j*n]
			}
		}
		for j := 0; j <= i; j++ {
			l[i+j*n] /= l[i+i*n]
		}
	}
	return l, d, true
}

func gauss(n int, l, z []float64, i, j int) {
	mu := int(roundF(l[i+j*n]))
	if mu == 0 {
		return
	}
	for k := i; k < n; k++ {
		l[k+n*j] -= float64(mu) * l[k+i*n]
	}
	for k := 0; k < n; k++ {
		z[k+n*j] -= float64(mu) * z[k+i*n]
	}
}

func perm(n int, l, d []float64, j int, del float64, z []float64) {
	eta := d[j] / del
	lam := d[j+1] * l[j+1+j*n] / del
	d[j] = eta * d[j+1]
	d[j+1] = del
	for k := 0; k <= j-1; k++ {
		a0 := l[j+k*n]
		a1 := l[j+1+k*n]
		l[j+k*n] = -l[j+1+j*n]*a0 + a1
		l[j+1+k*n] = eta*a0 + lam*a1
	}
	l[j+1+j*n] = lam
	for k := j + 2; k < n; k++ {
		l[k+j*n], l[k+(j+1)*n] = l[k+(j+1)*n], l[k+j*n]
	}
	for k := 0; k < n; k++ {
		z[k+j*n], z[k+(j+1)*n] = z[k+(j+1)*n], z[k+j*n]
	}
}

func reduction(n int, l, d, z []float64) {
	j := n - 2
	k := n - 2
	for j >= 0 {
		if j <= k {
			for i := j + 1; i < n; i++ {
				gauss(n, l, z, i, j)
			}
		}
		del := d[j] + l[j+1+j*n]*l[j+1+j*n]*d[j+1]
		if del+1e-6 < d[j+1] {
			perm(n, l, d, j, del, z)
			k = j
			j = n - 2
		} else {
			j--
		}
	}
}

// search runs the mlambda depth-first integer search, ported from the
// teacher's Search, returning the m best integer candidates (column-
// major, n x m) and their squared residuals.
func search(n, m int, l, d, zs []float64) (zn []float64, s []float64, ok bool) {
	zn = make([]float64, n*m)
	s = make([]float64, m)
	S := make([]float64, n*n)
	dist := make([]float64, n)
	zb := make([]float64, n)
	z := make([]float64, n)
	step := make([]float64, n)

	var newdist, maxdist, y float64 = 0.0, 1e99, 0.0
	var nn, imax int

	k := n - 1
	dist[k] = 0.0
	zb[k] = zs[k]
	z[k] = roundF(zb[k])
	y = zb[k] - z[k]
	step[k] = sgn(y)

	c := 0
	for ; c < loopMax; c++ {
		newdist = dist[k] + y*y/d[k]
		if newdist < maxdist {
			if k != 0 {
				k--
				dist[k] = newdist
				for i := 0; i <= k; i++ {
					S[k+i*n] = S[k+1+i*n] + (z[k+1]-zb[k+1])*l[k+1+i*n]
				}
				zb[k] = zs[k] + S[k+k*n]
				z[k] = roundF(zb[k])
				y = zb[k] - z[k]
				step[k] = sgn(y)
			} else {
				if nn < m {
					if nn == 0 || newdist > s[imax] {
						imax = nn
					}
					for i := 0; i < n; i++ {
						zn[i+nn*n] = z[i]
					}
					s[nn] = newdist
					nn++
				} else {
					if newdist < s[imax] {
						for i := 0; i < n; i++ {
							zn[i+imax*n] = z[i]
						}
						s[imax] = newdist
						imax = 0
						for i := 0; i < m; i++ {
							if s[imax] < s[i] {
								imax = i
							}
						}
					}
					maxdist = s[imax]
				}
				z[0] += step[0]
				y = zb[0] - z[0]
				step[0] = -step[0] - sgn(step[0])
			}
		} else {
			if k == n-1 {
				break
			}
			k++
			z[k] += step[k]
			y = zb[k] - z[k]
			step[k] = -step[k] - sgn(step[k])
		}
	}

	for i := 0; i < m-1; i++ {
		for j := i + 1; j < m; j++ {
			if s[i] < s[j] {
				continue
			}
			s[i], s[j] = s[j], s[i]
			for k := 0; k < n; k++ {
				zn[k+i*n], zn[k+j*n] = zn[k+j*n], zn[k+i*n]
			}
		}
	}

	return zn, s, c < loopMax
}

// matMulTN computes y = A' * x for an n x n A and n x 1 x (column-major).
func matMulTN(n int, a, x []float64) []float64 {
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := 0.0
		for k := 0; k < n; k++ {
			sum += a[k+i*n] * x[k]
		}
		y[i] = sum
	}
	return y
}

// solveTransposeLeftDivide solves Z' * F = E for F (n x m), i.e.
// F = (Z')^-1 * E, by Gaussian elimination on Z' augmented with E.
// Z is the unimodular lambda-reduction transform, always invertible.
func solveTransposeLeftDivide(n, m int, z, e []float64) ([]float64, bool) {
	// z is column-major: z[row+col*n]. Zt[i][j] = Z[j][i] = z[j+i*n].
	zt := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			zt[i*n+j] = z[j+i*n]
		}
	}
	aug := make([][]float64, n)
	for i := 0; i < n; i++ {
		aug[i] = make([]float64, n+m)
		copy(aug[i], zt[i*n:i*n+n])
		for col := 0; col < m; col++ {
			aug[i][n+col] = e[i+col*n]
		}
	}
	for col := 0; col < n; col++ {
		piv := col
		for r := col + 1; r < n; r++ {
			if math.Abs(aug[r][col]) > math.Abs(aug[piv][col]) {
				piv = r
			}
		}
		if math.Abs(aug[piv][col]) < 1e-12 {
			return nil, false
		}
		aug[col], aug[piv] = aug[piv], aug[col]
		pv := aug[col][col]
		for c := col; c < n+m; c++ {
			aug[col][c] /= pv
		}
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := aug[r][col]
			if factor == 0 {
				continue
			}
			for c := col; c < n+m; c++ {
				aug[r][c] -= factor * aug[col][c]
			}
		}
	}
	f := make([]float64, n*m)
	for i := 0; i < n; i++ {
		for col := 0; col < m; col++ {
			f[i+col*n] = aug[i][n+col]
		}
	}
	return f, true
}

// Lambda runs the full LAMBDA/MLAMBDA pipeline (LD factorization,
// reduction, mlambda search, back-transformation) on float ambiguities
// a (length n) with covariance q (n x n, column-major), returning the m
// best integer candidate vectors (column-major n x m) and their sums of
// squared residuals, ported from the teacher's Lambda.
func Lambda(n, m int, a, q []float64) (f []float64, s []float64, ok bool) {
	if n <= 0 || m <= 0 {
		return nil, nil, false
	}
	l, d, okLD := ld(n, q)
	if !okLD {
		return nil, nil, false
	}

	z := make([]float64, n*n)
	for i := 0; i < n; i++ {
		z[i+i*n] = 1.0
	}
	reduction(n, l, d, z)

	zf := matMulTN(n, z, a)
	zn, s, okSearch := search(n, m, l, d, zf)
	if !okSearch {
		return nil, nil, false
	}

	f, okSolve := solveTransposeLeftDivide(n, m, z, zn)
	if !okSolve {
		return nil, nil, false
	}
	return f, s, true
}
