// Package equation implements the symbolic parameter/equation algebra
// of spec §3/§4.3/§4.4: Variable, Coefficient, Equation, VarCoeffMap,
// and the stochastic-model arena the Kalman filter (pkg/kalman) drives.
//
// Grounded on original_source/src/ProceFrame/{Variable,Equation}.{hpp,
// cpp} (GPSTk's ProcFrame data structures, which spec §3/§4.3 directly
// describe) and on the teacher's NX/IB-style parameter indexing in
// ppp.go, generalized from fixed array slots to the dynamic Variable
// vector spec §4.4 requires.
package equation

// StochasticModel is the polymorphic contract of spec §4.4: a model
// owned by an arena keyed by Variable identity (spec §9's "break
// cycles" redesign note), never by raw pointer from the Variable
// itself.
type StochasticModel interface {
	// Phi returns the state-transition scalar for a step of dt seconds.
	Phi(dt float64) float64
	// Q returns the process-noise variance to add for a step of dt
	// seconds.
	Q(dt float64) float64
	// Reset reports the (phi, q) pair to use the instant a cycle slip
	// or new arc forces a reinitialization; models that never reset
	// (e.g. Constant) return (1, 0).
	Reset() (phi, q float64)
}

// WhiteNoise models a parameter with no time correlation: phi=0 so the
// time update seeds x=0, q equal to the variance assigned at
// construction (receiver clocks, per spec §4.4 "clocks white noise with
// very large q").
type WhiteNoise struct{ Variance float64 }

func (w WhiteNoise) Phi(float64) float64   { return 0 }
func (w WhiteNoise) Q(float64) float64     { return w.Variance }
func (w WhiteNoise) Reset() (float64, float64) { return 0, w.Variance }

// RandomWalk models a parameter that persists with added process noise
// proportional to elapsed time (e.g. troposphere gradients).
type RandomWalk struct{ QPerSecond float64 }

func (r RandomWalk) Phi(float64) float64 { return 1 }
func (r RandomWalk) Q(dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	return r.QPerSecond * dt
}
func (r RandomWalk) Reset() (float64, float64) { return 1, 0 }

// TropoRandomWalk is RandomWalk specialized with the spec §4.4 default
// rate (~1e-8 m^2/s) and documented separately so the default is easy
// to find and override per-station.
type TropoRandomWalk struct{ QPerSecond float64 }

func NewTropoRandomWalk() TropoRandomWalk { return TropoRandomWalk{QPerSecond: 1e-8} }

func (t TropoRandomWalk) Phi(float64) float64 { return 1 }
func (t TropoRandomWalk) Q(dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	return t.QPerSecond * dt
}
func (t TropoRandomWalk) Reset() (float64, float64) { return 1, 0 }

// Constant models a parameter that never changes once estimated and
// never accrues process noise (e.g. a receiver hardware bias held for
// the whole arc).
type Constant struct{}

func (Constant) Phi(float64) float64       { return 1 }
func (Constant) Q(float64) float64         { return 0 }
func (Constant) Reset() (float64, float64) { return 1, 0 }

// PhaseAmbiguity models an integer ambiguity: constant between cycle
// slips, reset to zero mean with a fresh initial variance exactly when
// ShouldReinitialize reports true (driven by the satellite's CSFlag,
// spec §4.4 "On cycle-slip for an ambiguity Variable: reset its
// row/column of P to initialVariance and x=0").
type PhaseAmbiguity struct {
	InitialVariance float64
	csFlag          func() bool
}

// NewPhaseAmbiguity binds the model to a per-satellite CSFlag reader so
// the filter's time update can ask "did this arc just slip" without the
// model needing a back-pointer to the Variable (spec §9 cycle note).
func NewPhaseAmbiguity(initialVariance float64, csFlag func() bool) *PhaseAmbiguity {
	return &PhaseAmbiguity{InitialVariance: initialVariance, csFlag: csFlag}
}

func (p *PhaseAmbiguity) Phi(float64) float64 { return 1 }
func (p *PhaseAmbiguity) Q(float64) float64   { return 0 }
func (p *PhaseAmbiguity) Reset() (float64, float64) { return 0, p.InitialVariance }

// ShouldReinitialize reports whether the bound satellite's CSFlag is
// set for the current epoch.
func (p *PhaseAmbiguity) ShouldReinitialize() bool {
	if p.csFlag == nil {
		return false
	}
	return p.csFlag()
}
