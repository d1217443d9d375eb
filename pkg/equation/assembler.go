package equation

import (
	"math"

	"github.com/xbfeng/gnssppp/pkg/gnssid"
	"github.com/xbfeng/gnssppp/pkg/obs"
)

// SignalPlan describes one enabled observable for the assembler: its
// prefit TypeID (the Equation's independent term), the corresponding
// ambiguity TypeID when the signal carries phase (its coefficient is
// always 1), and its frequency (used to scale the slant-iono partial
// relative to the reference signal), spec §4.3.
type SignalPlan struct {
	Prefit    obs.TypeID
	Signal    obs.TypeID // the observable type this prefit wraps; keys slantIono{signal}/ifb{signal}
	IsPhase   bool
	Ambiguity obs.TypeID
	Frequency float64
	HasIFB    bool // true for non-primary signals that carry an inter-frequency bias unknown
	IonoFree  bool // true for PC/LC-derived prefits: no slantIono/ifb unknowns
}

// AssembleOptions carries the per-epoch knobs spec §4.3 names:
// receiver-to-satellite unit vectors (already rotated to ENU), the
// satellite's system, wet/dry tropo mapping, and reference
// frequency for the iono scaling. Exponent/sigma defaults match spec
// §4.3's stated defaults.
type AssembleOptions struct {
	System         gnssid.System
	Source         gnssid.SourceID
	ENU            [3]float64 // unit line-of-sight rotated to (dN,dE,dU)
	ElevationRad   float64
	WetMap         float64
	ReferenceFreq  float64
	VarianceExp    float64 // default 2
	SigmaCode      float64 // default 0.3
	SigmaPhase     float64 // default 0.003
	CodeRatio      float64 // default 1
	PhaseRatio     float64 // default 1
	ArcOf          func(sat gnssid.SatID, group obs.TypeID) float64
	ArenaAmbiguity func(sat gnssid.SatID, signal obs.TypeID) int // model index for this signal's ambiguity
	ArenaTropo     int
	ArenaClock     int
}

// DefaultVarianceExp/SigmaCode/SigmaPhase mirror spec §4.3's stated
// defaults when an AssembleOptions leaves them at zero.
const (
	DefaultVarianceExp = 2.0
	DefaultSigmaCode   = 0.3
	DefaultSigmaPhase  = 0.003
)

// Assemble builds one Equation per satellite present in data with a
// valid value for plan.Prefit, following spec §4.3's unknown list:
// position partials (dN,dE,dU), one receiver clock (obs.RecClock,
// shared by every system; no per-system clock unknown is formed), wet troposphere
// (+ optional gradients omitted here as spec marks them optional),
// slant ionosphere (code +1 / phase -1, frequency-scaled) unless
// plan.IonoFree, inter-frequency bias for non-primary signals, and a
// phase ambiguity with coefficient 1 (absent on code-only prefits).
func Assemble(sat gnssid.SatID, data obs.TypeValueMap, plan SignalPlan, opt AssembleOptions) (*Equation, bool) {
	if !data.Has(plan.Prefit) {
		return nil, false
	}

	indTerm := Variable{Type: plan.Prefit, Sat: sat, TypeOrder: typeOrderForPrefit(plan)}
	eq := NewEquation(indTerm, opt.Source, sat, opt.System)
	eq.Header.ConstWeight = measurementVariance(opt, plan.IsPhase)

	// Position is one receiver-wide unknown shared by every satellite's
	// equation this epoch, not per-satellite -- unlike dN/dE/dU's
	// per-satellite ENU *coefficients* below, the Variable identity
	// carries no Sat so every satellite's row lands on the same three
	// filter rows.
	dN := Variable{Type: obs.DN, TypeOrder: TypeOrderPosition}
	dE := Variable{Type: obs.DE, TypeOrder: TypeOrderPosition}
	dU := Variable{Type: obs.DU, TypeOrder: TypeOrderPosition}
	eq.AddVariable(dN, FixedCoef(opt.ENU[0]))
	eq.AddVariable(dE, FixedCoef(opt.ENU[1]))
	eq.AddVariable(dU, FixedCoef(opt.ENU[2]))

	clockVar := Variable{Type: obs.RecClock, TypeOrder: TypeOrderClock, ModelIndex: opt.ArenaClock}
	eq.AddVariable(clockVar, FixedCoef(1.0))

	tropoVar := Variable{Type: obs.WetTropo, TypeOrder: TypeOrderTroposphere, ModelIndex: opt.ArenaTropo}
	eq.AddVariable(tropoVar, FixedCoef(opt.WetMap))

	if !plan.IonoFree {
		sign := 1.0
		if plan.IsPhase {
			sign = -1.0
		}
		scale := 1.0
		if opt.ReferenceFreq != 0 && plan.Frequency != 0 {
			scale = (opt.ReferenceFreq * opt.ReferenceFreq) / (plan.Frequency * plan.Frequency)
		}
		ionoVar := Variable{Type: obs.SlantIono(plan.Signal), Sat: sat, TypeOrder: TypeOrderIonosphere}
		eq.AddVariable(ionoVar, FixedCoef(sign*scale))

		if plan.HasIFB {
			ifbVar := Variable{Type: obs.IFB(plan.Signal), TypeOrder: TypeOrderIFB}
			eq.AddVariable(ifbVar, FixedCoef(1.0))
		}
	}

	if plan.IsPhase {
		arc := 0.0
		if opt.ArcOf != nil {
			arc = opt.ArcOf(sat, plan.Ambiguity)
		}
		modelIdx := 0
		if opt.ArenaAmbiguity != nil {
			modelIdx = opt.ArenaAmbiguity(sat, plan.Ambiguity)
		}
		ambVar := Variable{
			Type: plan.Ambiguity, Sat: sat, Arc: arc,
			IsSatIndexed: true, IsArcIndexed: true,
			TypeOrder: TypeOrderAmbiguity, ModelIndex: modelIdx,
		}
		eq.AddVariable(ambVar, FixedCoef(1.0))
	}

	return eq, true
}

func typeOrderForPrefit(plan SignalPlan) int {
	// Prefit residuals are the independent term, not an unknown; their
	// own TypeOrder is irrelevant to assembly ordering and only matters
	// if a prefit itself were ever an unknown (it is not), so the
	// constant below is purely a sentinel distinct from the unknown
	// orders 0..5.
	return -1
}

func measurementVariance(opt AssembleOptions, isPhase bool) float64 {
	exp := opt.VarianceExp
	if exp == 0 {
		exp = DefaultVarianceExp
	}
	sigma := opt.SigmaCode
	ratio := opt.CodeRatio
	if isPhase {
		sigma = opt.SigmaPhase
		ratio = opt.PhaseRatio
	}
	if sigma == 0 {
		if isPhase {
			sigma = DefaultSigmaPhase
		} else {
			sigma = DefaultSigmaCode
		}
	}
	if ratio == 0 {
		ratio = 1
	}
	weight := math.Pow(2.0*math.Sin(opt.ElevationRad), exp)
	variance := sigma * sigma * ratio * ratio / weight
	return 1.0 / variance
}
