// Package station drives one receiver's epoch loop end to end: pipeline
// dispatch (pkg/pipeline), equation assembly (pkg/equation), sequential
// Kalman updates (pkg/kalman), and ambiguity resolution (pkg/ambiguity),
// grounded on the teacher's Rtk struct (types.go) and its rtkpos.go
// epoch loop, generalized from fixed MAXSAT-indexed arrays to a dynamic
// Variable->row index the way spec §4.4 requires.
package station

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/xbfeng/gnssppp/pkg/ambiguity"
	"github.com/xbfeng/gnssppp/pkg/equation"
	"github.com/xbfeng/gnssppp/pkg/kalman"
)

// Solver owns the filter state and the mapping from Variable identity
// to filter row, playing the role the teacher's fixed Rtk.X/Rtk.P
// arrays play, but with rows allocated and freed dynamically as
// Variables appear and retire (spec §4.4/§4.6).
type Solver struct {
	filter *kalman.Filter
	arena  *equation.ModelArena

	rowOf map[equation.Identity]int
	free  []int
	cap   int
}

// NewSolver preallocates a filter with room for maxUnknowns rows, the
// way the teacher preallocates MAXSAT-sized arrays; unclaimed rows hold
// zero mean and zero variance, and rowFor seeds each row from its
// Variable's InitialVariance (or its model's Reset variance) when the
// row is first claimed.
func NewSolver(maxUnknowns int, arena *equation.ModelArena) *Solver {
	return &Solver{
		filter: kalman.New(maxUnknowns, 0),
		arena:  arena,
		rowOf:  make(map[equation.Identity]int),
		cap:    maxUnknowns,
	}
}

// Filter exposes the underlying filter (read-only use expected;
// mutation goes through Solver's methods).
func (s *Solver) Filter() *kalman.Filter { return s.filter }

// rowFor returns v's filter row, allocating a fresh one (seeded from
// v's stochastic model's Reset pair) the first time v is seen, and
// reusing a freed row from a retired Variable when possible.
func (s *Solver) rowFor(v equation.Variable) (int, bool, error) {
	id := v.Identity()
	if row, ok := s.rowOf[id]; ok {
		return row, false, nil
	}
	var row int
	if n := len(s.free); n > 0 {
		row = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		row = len(s.rowOf) + len(s.free)
		if row >= s.cap {
			return 0, false, errCapacityExceeded
		}
	}
	s.rowOf[id] = row
	model := s.arena.Get(v.ModelIndex)
	_, q := model.Reset()
	variance := v.InitialVariance
	if variance == 0 {
		variance = q
	}
	s.filter.Seed(row, 0, variance)
	return row, true, nil
}

var errCapacityExceeded = solverError("station: solver ran out of preallocated filter rows")

type solverError string

func (e solverError) Error() string { return string(e) }

// Retire frees v's row so a future Variable can reuse it, matching the
// teacher's practice of zeroing a satellite's array slot once its
// ambiguity arc ends (spec §4.6 "arc retirement").
func (s *Solver) Retire(v equation.Variable) {
	id := v.Identity()
	if row, ok := s.rowOf[id]; ok {
		delete(s.rowOf, id)
		s.free = append(s.free, row)
	}
}

// TimeUpdate propagates every currently tracked Variable by dt seconds,
// resetting rows whose models report a discontinuity (e.g. a phase
// ambiguity after a detected cycle slip), spec §4.4's time-update step.
func (s *Solver) TimeUpdate(vars []equation.Variable, dt float64) {
	for _, v := range vars {
		row, ok := s.rowOf[v.Identity()]
		if !ok {
			continue
		}
		model := s.arena.Get(v.ModelIndex)
		if pa, ok := model.(interface{ ShouldReinitialize() bool }); ok && pa.ShouldReinitialize() {
			_, q := model.Reset()
			s.filter.ResetRow(row, q)
			continue
		}
		phi := model.Phi(dt)
		q := model.Q(dt)
		// Q(dt) is already the variance for the whole step, so it is
		// passed with a unit time factor rather than multiplied by dt again.
		s.filter.TimeUpdatePropagate(row, phi, q, 1)
	}
}

// BuildRow converts an assembled Equation into a sparse kalman.Row,
// allocating filter rows for any Variable not already tracked. Returns
// the row alongside the list of Variables newly allocated this call (so
// a caller can, e.g., log new ambiguities).
func (s *Solver) BuildRow(eq *equation.Equation, resolve func(v equation.Variable, c equation.Coefficient) (float64, error)) (kalman.Row, []equation.Variable, error) {
	vars := eq.Body.Variables()
	row := kalman.Row{Index: make([]int, 0, len(vars)), Value: make([]float64, 0, len(vars))}
	var fresh []equation.Variable
	for _, v := range vars {
		idx, isNew, err := s.rowFor(v)
		if err != nil {
			return kalman.Row{}, nil, err
		}
		if isNew {
			fresh = append(fresh, v)
		}
		c, _ := eq.Body.Coefficient(v)
		value, err := resolve(v, c)
		if err != nil {
			return kalman.Row{}, nil, err
		}
		row.Index = append(row.Index, idx)
		row.Value = append(row.Value, value)
	}
	return row, fresh, nil
}

// State returns the current estimate and variance for v, or (0,0,false)
// if v has no allocated row.
func (s *Solver) State(v equation.Variable) (mean, variance float64, ok bool) {
	row, tracked := s.rowOf[v.Identity()]
	if !tracked {
		return 0, 0, false
	}
	return s.filter.X.AtVec(row), s.filter.P.At(row, row), true
}

// Dim returns the preallocated filter dimension.
func (s *Solver) Dim() int { return s.cap }

// TrackedVariables returns every Variable currently holding a filter
// row, sorted by the canonical (TypeOrder, Type, Source, Sat, Arc)
// order.
func (s *Solver) TrackedVariables(lookup func(equation.Identity) (equation.Variable, bool)) []equation.Variable {
	out := make([]equation.Variable, 0, len(s.rowOf))
	for id := range s.rowOf {
		if v, ok := lookup(id); ok {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// CovarianceBlock extracts the float mean vector and the dense
// sub-covariance for a set of Variables, the shape
// pkg/ambiguity.ILSFix expects for its (a, Q) arguments.
func (s *Solver) CovarianceBlock(vars []equation.Variable) (mean []float64, cov *mat.SymDense, ok bool) {
	rows := make([]int, len(vars))
	mean = make([]float64, len(vars))
	ok = true
	for i, v := range vars {
		row, tracked := s.rowOf[v.Identity()]
		if !tracked {
			ok = false
			continue
		}
		rows[i] = row
		mean[i] = s.filter.X.AtVec(row)
	}
	if !ok {
		return mean, nil, false
	}
	cov = mat.NewSymDense(len(vars), nil)
	for i := range vars {
		for j := i; j < len(vars); j++ {
			cov.SetSym(i, j, s.filter.P.At(rows[i], rows[j]))
		}
	}
	return mean, cov, true
}

// ConstrainAmbiguity folds a resolved integer ambiguity back into the
// filter as a tight pseudo-observation, spec §4.5's "constrain-back"
// step.
func (s *Solver) ConstrainAmbiguity(v equation.Variable, fixedValue float64) (float64, bool) {
	row, ok := s.rowOf[v.Identity()]
	if !ok {
		return 0, false
	}
	cr := ambiguity.ConstrainBack(row, fixedValue, ambiguity.DefaultConstrainVariance)
	hrow := kalman.Row{Index: []int{cr.Index}, Value: []float64{1.0}}
	residual, applied := s.filter.MeasurementUpdate(hrow, fixedValue, cr.Variance)
	if !applied {
		return 0, false
	}
	if math.IsNaN(residual) {
		return 0, false
	}
	return residual, true
}

// ConstrainSDAmbiguity folds a fixed between-satellite single-
// difference ambiguity back into the filter: a pseudo-observation of
// other's state minus ref's state, equal to the fixed SD value, spec
// §4.5 step 6 applied to undifferenced per-satellite ambiguity rows
// (no filter row holds the SD quantity directly).
func (s *Solver) ConstrainSDAmbiguity(ref, other equation.Variable, fixedValue float64) (float64, bool) {
	refRow, ok1 := s.rowOf[ref.Identity()]
	otherRow, ok2 := s.rowOf[other.Identity()]
	if !ok1 || !ok2 {
		return 0, false
	}
	cr := ambiguity.ConstrainSDBack(refRow, otherRow, fixedValue, ambiguity.DefaultConstrainVariance)
	hrow := kalman.Row{Index: []int{cr.RefIndex, cr.OtherIndex}, Value: []float64{-1.0, 1.0}}
	residual, applied := s.filter.MeasurementUpdate(hrow, fixedValue, cr.Variance)
	if !applied {
		return 0, false
	}
	if math.IsNaN(residual) {
		return 0, false
	}
	return residual, true
}
