package combination

import "github.com/xbfeng/gnssppp/pkg/obs"

// Band is a per-system carrier with a frequency in Hz, used to build
// the closed-form combination coefficients of spec §4.2. L/P/D/S are
// the canonical 3-char observable TypeIDs for this band (spec §3).
type Band struct {
	Index     int
	Frequency float64
	Phase     obs.TypeID
	Code      obs.TypeID
}

// MelbourneWubbena builds the MW combination for bands i,j of sys,
// spec §4.2: lambda_w * (Li - Lj) - (fi*Pi + fj*Pj)/(fi+fj), with
// lambda_w = c / (fi - fj). Li/Lj (and every other canonical phase
// TypeID in this package) are in cycles, matching RINEX convention and
// the teacher's GfMeas/MWMeas, which also take raw cycle counts.
func MelbourneWubbena(sys string, i, j Band, clight float64) Combination {
	lambdaW := clight / (i.Frequency - j.Frequency)
	fiPlusFj := i.Frequency + j.Frequency
	return Combination{
		Header: obs.MW(sys, i.Index, j.Index),
		Terms: []Term{
			{Type: i.Phase, Coefficient: lambdaW},
			{Type: j.Phase, Coefficient: -lambdaW},
			{Type: i.Code, Coefficient: -i.Frequency / fiPlusFj},
			{Type: j.Code, Coefficient: -j.Frequency / fiPlusFj},
		},
	}
}

func (b Band) wavelength(clight float64) float64 { return clight / b.Frequency }

// GeometryFree builds the GF combination Li - Lj expressed in meters,
// spec §4.2: since Li/Lj are in cycles, each is first scaled by its
// own wavelength.
func GeometryFree(sys string, i, j Band, clight float64) Combination {
	return Combination{
		Header: obs.GF(sys, i.Index, j.Index),
		Terms: []Term{
			{Type: i.Phase, Coefficient: i.wavelength(clight)},
			{Type: j.Phase, Coefficient: -j.wavelength(clight)},
		},
	}
}

// IonoFreeCode builds the dual-frequency ionosphere-free code
// combination PCij = (fi^2*Pi - fj^2*Pj) / (fi^2 - fj^2), spec §4.2.
func IonoFreeCode(sys string, i, j Band) Combination {
	fi2, fj2 := i.Frequency*i.Frequency, j.Frequency*j.Frequency
	denom := fi2 - fj2
	return Combination{
		Header: obs.PC(sys, []int{i.Index, j.Index}),
		Terms: []Term{
			{Type: i.Code, Coefficient: fi2 / denom},
			{Type: j.Code, Coefficient: -fj2 / denom},
		},
	}
}

// IonoFreePhase builds the matching LCij combination. Li/Lj are in
// cycles, so each is converted to meters (via its wavelength) before
// the dual-frequency IF weighting is applied.
func IonoFreePhase(sys string, i, j Band, clight float64) Combination {
	fi2, fj2 := i.Frequency*i.Frequency, j.Frequency*j.Frequency
	denom := fi2 - fj2
	return Combination{
		Header: obs.LC(sys, []int{i.Index, j.Index}),
		Terms: []Term{
			{Type: i.Phase, Coefficient: fi2 / denom * i.wavelength(clight)},
			{Type: j.Phase, Coefficient: -fj2 / denom * j.wavelength(clight)},
		},
	}
}

// IonoFreeMultiCode builds the closed-form triple/quad/quintuple
// ionosphere-free code combination solving simultaneously for geometry
// plus inter-frequency biases (spec §4.2). The coefficients are the
// unique alpha_k satisfying sum(alpha_k) = 1 and sum(alpha_k / fk^(2j))
// = 0 for j = 1..n-1 — the standard multi-frequency IF generalization
// of the two-frequency PC formula, solved here in closed form as the
// Lagrange basis in x = 1/f^2 evaluated at x = 0 (for two bands this
// reduces to the PC coefficients; not a per-system published constant
// table — spec §4.2 allows either and this keeps the implementation
// system-agnostic).
func IonoFreeMultiCode(sys string, bands []Band) Combination {
	n := len(bands)
	// alpha_k = prod_{m != k} fk^2 / (fk^2 - fm^2), normalized so the
	// alphas sum to 1 (pure geometry term) — the Lagrange-interpolation
	// form of the multi-frequency IF weights.
	weights := make([]float64, n)
	sum := 0.0
	for k := 0; k < n; k++ {
		fk2 := bands[k].Frequency * bands[k].Frequency
		w := 1.0
		for m := 0; m < n; m++ {
			if m == k {
				continue
			}
			fm2 := bands[m].Frequency * bands[m].Frequency
			w *= fk2 / (fk2 - fm2)
		}
		weights[k] = w
		sum += w
	}
	freqIdx := make([]int, n)
	terms := make([]Term, n)
	for k := 0; k < n; k++ {
		freqIdx[k] = bands[k].Index
		terms[k] = Term{Type: bands[k].Code, Coefficient: weights[k] / sum}
	}
	return Combination{Header: obs.PC(sys, freqIdx), Terms: terms}
}

// PrefitResidual builds prefit{type} = observable - rho + satClock plus
// the extra terms, spec §4.2. extra lists any additional modeled
// corrections, each with its own coefficient (tropoSlant, relativity, gravDelay,
// satPCenter..., rcvCorr..., windUp..., satPCO...), each with
// Optional=true so a correction that wasn't computed for this
// satellite (e.g. no windUp for a code-only prefit) simply contributes
// zero rather than dropping the row.
func PrefitResidual(observable obs.TypeID, extra ...Term) Combination {
	terms := []Term{
		{Type: observable, Coefficient: 1},
		{Type: obs.Rho, Coefficient: -1},
		{Type: obs.SatClock, Coefficient: 1},
	}
	for i := range extra {
		extra[i].Optional = true
	}
	terms = append(terms, extra...)
	return Combination{Header: obs.Prefit(observable), Terms: terms}
}
