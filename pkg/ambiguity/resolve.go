package ambiguity

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/xbfeng/gnssppp/pkg/gnssid"
)

// Defaults mirror spec §4.5's stated thresholds.
const (
	DefaultRoundThreshold    = 0.25
	DefaultSuccessRateMin    = 0.999
	DefaultRatioThreshold    = 3.0
	DefaultConstrainVariance = 1e-8
	// DefaultMinArcEpochs is spec §4.5 step 1's "continuous arc over
	// the last N epochs" reference-satellite eligibility window.
	DefaultMinArcEpochs = 10
)

// FixResult is the outcome of fixing one single-difference ambiguity
// or an ILS-fixed group, spec §4.5 steps 3-5.
type FixResult struct {
	Fixed    bool
	Value    float64 // integer value when Fixed
	Ratio    float64 // second-best-to-best ratio, ILS only; 0 for rounding fixes
}

// ReferenceCandidate is one system's per-satellite input to
// SelectReference: its elevation and how many consecutive epochs its
// ambiguity arc has held without a slip.
type ReferenceCandidate struct {
	Sat          gnssid.SatID
	ElevationRad float64
	ArcEpochs    int
}

// SelectReference implements spec §4.5 step 1: among candidates whose
// arc has survived at least minArcEpochs (0 uses DefaultMinArcEpochs),
// pick the one at highest elevation to single-difference every other
// satellite against. Returns ok=false when no candidate qualifies.
func SelectReference(candidates []ReferenceCandidate, minArcEpochs int) (gnssid.SatID, bool) {
	if minArcEpochs == 0 {
		minArcEpochs = DefaultMinArcEpochs
	}
	best := -1
	for i, c := range candidates {
		if c.ArcEpochs < minArcEpochs {
			continue
		}
		if best == -1 || c.ElevationRad > candidates[best].ElevationRad {
			best = i
		}
	}
	if best == -1 {
		return gnssid.SatID{}, false
	}
	return candidates[best].Sat, true
}

// successRate is the bootstrapping success-rate estimate of spec
// §4.5's rounding-fix gate, P(correct) = prod(2*Phi(0.5/sigma_i)-1)
// approximated here per-ambiguity via the classical formula using the
// error function.
func successRate(sigma float64) float64 {
	return 2*phiStd(0.5/sigma) - 1
}

func phiStd(x float64) float64 {
	return 0.5 * (1 + erf(x/sqrt2))
}

const sqrt2 = 1.4142135623730951

// erf is the Gauss error function (Abramowitz & Stegun 7.1.26
// approximation), used only for the bootstrapping success-rate gate;
// a full statistics library is not otherwise needed by this package.
func erf(x float64) float64 {
	sign := 1.0
	if x < 0 {
		sign = -1.0
		x = -x
	}
	const a1, a2, a3, a4, a5 = 0.254829592, -0.284496736, 1.421413741, -1.453152027, 1.061405429
	const p = 0.3275911
	t := 1.0 / (1.0 + p*x)
	y := 1.0 - (((((a5*t+a4)*t)+a3)*t+a2)*t+a1)*t*math.Exp(-x*x)
	return sign * y
}

// RoundingFix applies spec §4.5 step 3: round to nearest integer,
// accept when the distance to that integer is under threshold and the
// bootstrapped success rate clears successRateMin.
func RoundingFix(float_, sigma, threshold, successRateMin float64) FixResult {
	if threshold == 0 {
		threshold = DefaultRoundThreshold
	}
	if successRateMin == 0 {
		successRateMin = DefaultSuccessRateMin
	}
	nearest := roundF(float_)
	dist := float_ - nearest
	if dist < 0 {
		dist = -dist
	}
	if dist >= threshold {
		return FixResult{}
	}
	if successRate(sigma) < successRateMin {
		return FixResult{}
	}
	return FixResult{Fixed: true, Value: nearest}
}

// ILSFix applies spec §4.5 step 4: LAMBDA/MLAMBDA integer least
// squares on the covariance submatrix of the given float ambiguities,
// validated by the ratio test. a is the float ambiguity vector, q its
// covariance (n x n, dense or symmetric).
func ILSFix(a []float64, q *mat.SymDense, ratioThreshold float64) ([]FixResult, bool) {
	if ratioThreshold == 0 {
		ratioThreshold = DefaultRatioThreshold
	}
	n := len(a)
	qFlat := symToColumnMajor(q)
	f, s, ok := Lambda(n, 2, a, qFlat)
	if !ok || len(s) < 2 || s[0] <= 0 {
		return nil, false
	}
	ratio := s[1] / s[0]
	if ratio <= ratioThreshold {
		return nil, false
	}
	results := make([]FixResult, n)
	for i := 0; i < n; i++ {
		results[i] = FixResult{Fixed: true, Value: f[i], Ratio: ratio}
	}
	return results, true
}

func symToColumnMajor(q *mat.SymDense) []float64 {
	n := q.Symmetric()
	out := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out[i+j*n] = q.At(i, j)
		}
	}
	return out
}

// NarrowLaneFloat computes the narrow-lane float ambiguity once the
// wide-lane is fixed, spec §4.5 step 5:
// (ambiguityLC - fj/(fi+fj)*WL) * (fi+fj)/c.
func NarrowLaneFloat(ambiguityLC, wideLaneFixed, fi, fj, clight float64) float64 {
	return (ambiguityLC - fj/(fi+fj)*wideLaneFixed) * (fi + fj) / clight
}

// LCFromNarrowLane inverts NarrowLaneFloat, recovering the ionosphere-
// free-combination ambiguity implied by a fixed narrow-lane integer and
// a fixed wide-lane value -- spec §4.5 step 6's constrain-back input,
// once both the WL and NL single differences have been fixed.
func LCFromNarrowLane(narrowLaneFixed, wideLaneFixed, fi, fj, clight float64) float64 {
	return narrowLaneFixed*clight/(fi+fj) + fj/(fi+fj)*wideLaneFixed
}

// ConstrainBack builds the pseudo-observation row (spec §4.5 step 6)
// that enters an accepted integer ambiguity back into the filter:
// a unit-coefficient row against the ambiguity's state index, with a
// very small variance.
type ConstrainRow struct {
	Index    int
	Value    float64
	Variance float64
}

func ConstrainBack(stateIndex int, fixedValue float64, variance float64) ConstrainRow {
	if variance == 0 {
		variance = DefaultConstrainVariance
	}
	return ConstrainRow{Index: stateIndex, Value: fixedValue, Variance: variance}
}

// SDConstrainRow is spec §4.5 step 6's pseudo-observation for a fixed
// between-satellite single-difference ambiguity: no filter row holds
// the SD quantity directly (only the two undifferenced per-satellite
// ambiguities are tracked), so the row carries a +1/-1 coefficient pair
// against OtherIndex/RefIndex instead of ConstrainRow's single index.
type SDConstrainRow struct {
	RefIndex, OtherIndex int
	Value                float64
	Variance             float64
}

// ConstrainSDBack builds the row OtherIndex's state minus RefIndex's
// state enters the filter as, with the fixed SD value.
func ConstrainSDBack(refIndex, otherIndex int, fixedValue float64, variance float64) SDConstrainRow {
	if variance == 0 {
		variance = DefaultConstrainVariance
	}
	return SDConstrainRow{RefIndex: refIndex, OtherIndex: otherIndex, Value: fixedValue, Variance: variance}
}
