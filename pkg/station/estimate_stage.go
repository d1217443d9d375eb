package station

import (
	"math"

	"github.com/xbfeng/gnssppp/pkg/ambiguity"
	"github.com/xbfeng/gnssppp/pkg/cycleslip"
	"github.com/xbfeng/gnssppp/pkg/equation"
	"github.com/xbfeng/gnssppp/pkg/gnssid"
	"github.com/xbfeng/gnssppp/pkg/obs"
)

// FixMode selects how EstimateStage treats currently tracked phase
// ambiguities at the end of an epoch, spec §6's ambFixMode vocabulary
// collapsed to two values (SDUCROUND/SDIFROUND map to FixRounding;
// SDUCILS/SDIFILS map to FixILS). Both values resolve every WL and NL
// single difference with ambiguity.RoundingFix; no LAMBDA search runs
// in this stage (see fix) -- the
// SDUC/SDIF distinction is which combination feeds the ambiguity
// (uncombined vs ionosphere-free), already baked into which
// equation.SignalPlan Plans supplies, not into this stage's fixing
// strategy.
type FixMode int

const (
	FixNone FixMode = iota
	FixRounding
	FixILS
)

// AmbiguityConfig carries the between-satellite single-difference
// fixing inputs spec §4.5 needs beyond the filter itself: the arc
// manager (reference-satellite eligibility), the MW detector (EWL/WL
// running means), and the UPD/bias store. A zero AmbiguityConfig
// (Arcs/MW/WLCombo all nil) degrades the fixing step to a no-op, the
// same "wiring is optional" convention every other stage's caller-
// supplied closures follow.
type AmbiguityConfig struct {
	Arcs *cycleslip.Manager
	MW   *cycleslip.MWDetector

	// WLCombo returns the Melbourne-Wubbena combination TypeID whose
	// running mean backs sat's wide-lane float for ambiguitySignal
	// (spec §4.5 step 2), plus the two carrier frequencies the
	// wide-lane/narrow-lane combination is built from.
	WLCombo func(sat gnssid.SatID, ambiguitySignal obs.TypeID) (combo obs.TypeID, fi, fj float64, ok bool)

	// Bias resolves EWL/WL/NL UPD corrections (spec §6's UPD/IRC
	// external interface, keyed via obs.UpdWL/obs.UpdNL); nil disables
	// UPD correction (floats are used uncorrected).
	Bias BiasStore

	// MinArcEpochs is spec §4.5 step 1's "continuous arc over the last
	// N epochs" reference-satellite eligibility window; 0 uses
	// ambiguity.DefaultMinArcEpochs.
	MinArcEpochs int

	// NarrowLaneSigma seeds the NL rounding-fix bootstrap, since the NL
	// float has no running-mean variance of its own (the WL uses the MW
	// running means' variances); 0 derives it from the filter variances
	// of the two ambiguity states, scaled to narrow-lane cycles.
	NarrowLaneSigma float64
}

// ambiguityContext is one satellite's phase-ambiguity Variable plus the
// per-epoch context (system, elevation, underlying signal) the fixing
// cascade needs but which isn't part of the Variable's own identity.
type ambiguityContext struct {
	Var          equation.Variable
	Sat          gnssid.SatID
	System       gnssid.System
	Signal       obs.TypeID
	ElevationRad float64
}

// EstimateStage assembles one Equation per enabled signal per
// satellite and folds each into the filter as a sequential Joseph-form
// measurement update, then runs the between-satellite single-
// difference ambiguity cascade of spec §4.5 over whatever phase
// ambiguities are currently tracked, grounded on the teacher's
// PPPResidual/FixAmbi loop (ppp.go): assemble each satellite's prefit
// rows in a fixed order, apply sequentially, then fix and constrain
// back.
type EstimateStage struct {
	Solver     *Solver
	Plans      func(sat gnssid.SatID) []equation.SignalPlan
	OptionsFor func(sat gnssid.SatID, data obs.TypeValueMap) equation.AssembleOptions
	Source     gnssid.SourceID
	FixMode    FixMode
	Amb        AmbiguityConfig

	// LastFixed records the outcome of the most recent fix attempt,
	// keyed by ambiguity Variable, for an output stage to report.
	LastFixed map[equation.Identity]ambiguity.FixResult
}

func (EstimateStage) Name() string { return "Estimate" }

func (e *EstimateStage) Process(epoch obs.Epoch, data obs.SatTypeValueMap) error {
	if e.Solver == nil || e.Plans == nil || e.OptionsFor == nil {
		return nil
	}
	e.LastFixed = make(map[equation.Identity]ambiguity.FixResult)

	var ambigCtxs []ambiguityContext
	for _, sat := range data.Satellites() {
		tvm := data[sat]
		for _, plan := range e.Plans(sat) {
			opt := e.OptionsFor(sat, tvm)
			opt.Source = e.Source
			eq, ok := equation.Assemble(sat, tvm, plan, opt)
			if !ok {
				continue
			}
			if err := e.applyEquation(eq, tvm); err != nil {
				continue
			}
			if plan.IsPhase {
				elev, _ := tvm.Value(obs.Elevation)
				ambigCtxs = append(ambigCtxs, ambiguityContext{
					Var:          ambiguityVariable(eq),
					Sat:          sat,
					System:       opt.System,
					Signal:       plan.Signal,
					ElevationRad: elev,
				})
			}
		}
	}

	if e.FixMode != FixNone && len(ambigCtxs) > 0 {
		e.fixAmbiguities(epoch, ambigCtxs)
	}
	return nil
}

// applyEquation resolves the independent term and every body
// coefficient, builds the sparse filter row, and applies one
// measurement update.
func (e *EstimateStage) applyEquation(eq *equation.Equation, data obs.TypeValueMap) error {
	y, err := data.Value(eq.Header.IndependentTerm.Type)
	if err != nil {
		return err
	}
	row, _, err := e.Solver.BuildRow(eq, func(_ equation.Variable, c equation.Coefficient) (float64, error) {
		return c.Resolve(data)
	})
	if err != nil {
		return err
	}
	weight := eq.Header.ConstWeight
	variance := 1.0
	if weight > 0 {
		variance = 1.0 / weight
	}
	e.Solver.Filter().MeasurementUpdate(row, y, variance)
	return nil
}

// ambiguityVariable finds the phase-ambiguity Variable within eq's
// body (the one at TypeOrderAmbiguity), used so the fix step can read
// the filter state by Variable identity without re-deriving it.
func ambiguityVariable(eq *equation.Equation) equation.Variable {
	for _, v := range eq.Body.Variables() {
		if v.TypeOrder == equation.TypeOrderAmbiguity {
			return v
		}
	}
	return equation.Variable{}
}

// fixAmbiguities groups this epoch's tracked ambiguities by system
// (spec §4.5: reference selection is per-system) and runs the
// single-difference cascade within each group.
func (e *EstimateStage) fixAmbiguities(epoch obs.Epoch, ctxs []ambiguityContext) {
	if e.Amb.Arcs == nil || e.Amb.MW == nil || e.Amb.WLCombo == nil {
		return
	}
	bySystem := make(map[gnssid.System][]ambiguityContext)
	for _, c := range ctxs {
		bySystem[c.System] = append(bySystem[c.System], c)
	}
	for _, group := range bySystem {
		e.fixSystem(epoch, group)
	}
}

// fixSystem implements spec §4.5 steps 1-6 for one system's in-view
// satellites: pick a reference, single-difference every other
// satellite against it, fix EWL/WL then NL, and constrain each
// accepted integer back into the filter.
func (e *EstimateStage) fixSystem(epoch obs.Epoch, group []ambiguityContext) {
	if len(group) < 2 {
		return // nothing to single-difference against
	}

	// ArcLength is keyed by (sat, ambiguity-group TypeID); the group key
	// is the Variable's own Ambiguity TypeID (obs.Ambiguity(signal)),
	// matching DetectCS's AmbiguityOf wiring into the same Manager.
	candidates := make([]ambiguity.ReferenceCandidate, len(group))
	for i, c := range group {
		candidates[i] = ambiguity.ReferenceCandidate{
			Sat:          c.Sat,
			ElevationRad: c.ElevationRad,
			ArcEpochs:    e.Amb.Arcs.ArcLength(c.Sat, obs.Ambiguity(c.Signal)),
		}
	}

	refSat, ok := ambiguity.SelectReference(candidates, e.Amb.MinArcEpochs)
	if !ok {
		return
	}
	var ref *ambiguityContext
	for i := range group {
		if group[i].Sat == refSat {
			ref = &group[i]
			break
		}
	}
	if ref == nil {
		return
	}

	for _, other := range group {
		if other.Sat == refSat {
			continue
		}
		e.fixPair(epoch, *ref, other)
	}
}

// fixPair runs spec §4.5 steps 2-6 for one (reference, other) pair:
// EWL/WL float from the MW running means (UPD-corrected), WL fix,
// narrow-lane float with WL held fixed (UPD-corrected), NL fix, and
// constrain-back of the recovered ionosphere-free-ambiguity SD value.
func (e *EstimateStage) fixPair(epoch obs.Epoch, ref, other ambiguityContext) {
	combo, fi, fj, ok := e.Amb.WLCombo(other.Sat, other.Signal)
	if !ok {
		return
	}
	wlOther, wlVarOther, ok1 := e.Amb.MW.Mean(other.Sat, combo)
	wlRef, wlVarRef, ok2 := e.Amb.MW.Mean(ref.Sat, combo)
	if !ok1 || !ok2 {
		return
	}
	wlSDFloat := wlOther - wlRef
	wlSDSigma := sqrtNonNeg(wlVarOther + wlVarRef)

	if updOther, ok := e.upd(obs.UpdWL(other.Sat), epoch); ok {
		if updRef, ok := e.upd(obs.UpdWL(ref.Sat), epoch); ok {
			wlSDFloat -= updOther - updRef
		}
	}

	wlRes := e.fix(wlSDFloat, wlSDSigma)
	e.LastFixed[other.Var.Identity()] = wlRes
	if !wlRes.Fixed {
		return
	}

	lcOther, varOther, okL1 := e.Solver.State(other.Var)
	lcRef, varRef, okL2 := e.Solver.State(ref.Var)
	if !okL1 || !okL2 {
		return
	}
	lcSD := lcOther - lcRef

	nlSDFloat := ambiguity.NarrowLaneFloat(lcSD, wlRes.Value, fi, fj, gnssid.CLight)
	if updOther, ok := e.upd(obs.UpdNL(other.Sat), epoch); ok {
		if updRef, ok := e.upd(obs.UpdNL(ref.Sat), epoch); ok {
			nlSDFloat -= updOther - updRef
		}
	}

	nlSigma := e.Amb.NarrowLaneSigma
	if nlSigma == 0 {
		nlSigma = sqrtNonNeg(varOther+varRef) * (fi + fj) / gnssid.CLight
	}
	nlRes := e.fix(nlSDFloat, nlSigma)
	e.LastFixed[other.Var.Identity()] = nlRes
	if !nlRes.Fixed {
		return
	}

	fixedLCSD := ambiguity.LCFromNarrowLane(nlRes.Value, wlRes.Value, fi, fj, gnssid.CLight)
	e.Solver.ConstrainSDAmbiguity(ref.Var, other.Var, fixedLCSD)
}

// fix resolves one single-difference float with ambiguity.RoundingFix
// for both FixRounding and FixILS: each WL or NL float here is a lone
// scalar, and a 1x1 ILS search degenerates to rounding. No joint ILS
// over several SD ambiguities is run anywhere in this stage, and
// ambiguity.ILSFix is not called.
func (e *EstimateStage) fix(float_, sigma float64) ambiguity.FixResult {
	return ambiguity.RoundingFix(float_, sigma, 0, 0)
}

func (e *EstimateStage) upd(signal obs.TypeID, epoch obs.Epoch) (float64, bool) {
	if e.Amb.Bias == nil {
		return 0, false
	}
	return e.Amb.Bias.UPD(signal, epoch)
}

func sqrtNonNeg(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}
