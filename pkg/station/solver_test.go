package station

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xbfeng/gnssppp/pkg/equation"
	"github.com/xbfeng/gnssppp/pkg/gnssid"
	"github.com/xbfeng/gnssppp/pkg/obs"
)

func sat1() gnssid.SatID { return gnssid.SatID{System: gnssid.SysGPS, PRN: 1} }

func TestSolverAllocatesNewRowOnFirstSight(t *testing.T) {
	arena := equation.NewModelArena()
	idx := arena.Put(equation.Constant{})
	s := NewSolver(4, arena)

	v := equation.Variable{Type: obs.DN, Sat: sat1(), ModelIndex: idx, InitialVariance: 100}
	row, isNew, err := s.rowFor(v)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, 0, row)

	row2, isNew2, err := s.rowFor(v)
	require.NoError(t, err)
	assert.False(t, isNew2)
	assert.Equal(t, row, row2)
}

func TestSolverReusesRetiredRow(t *testing.T) {
	arena := equation.NewModelArena()
	idx := arena.Put(equation.Constant{})
	s := NewSolver(2, arena)

	v1 := equation.Variable{Type: obs.DN, Sat: sat1(), ModelIndex: idx, InitialVariance: 1}
	v2 := equation.Variable{Type: obs.DE, Sat: sat1(), ModelIndex: idx, InitialVariance: 1}
	row1, _, err := s.rowFor(v1)
	require.NoError(t, err)
	_, _, err = s.rowFor(v2)
	require.NoError(t, err)

	s.Retire(v1)
	v3 := equation.Variable{Type: obs.DU, Sat: sat1(), ModelIndex: idx, InitialVariance: 1}
	row3, isNew, err := s.rowFor(v3)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, row1, row3, "retired row should be reused")
}

func TestSolverReturnsErrorWhenCapacityExceeded(t *testing.T) {
	arena := equation.NewModelArena()
	idx := arena.Put(equation.Constant{})
	s := NewSolver(1, arena)

	v1 := equation.Variable{Type: obs.DN, Sat: sat1(), ModelIndex: idx}
	_, _, err := s.rowFor(v1)
	require.NoError(t, err)

	v2 := equation.Variable{Type: obs.DE, Sat: sat1(), ModelIndex: idx}
	_, _, err = s.rowFor(v2)
	require.Error(t, err)
}

func TestBuildRowResolvesCoefficientsAndReportsFreshVariables(t *testing.T) {
	arena := equation.NewModelArena()
	idx := arena.Put(equation.Constant{})
	s := NewSolver(4, arena)

	v := equation.Variable{Type: obs.DN, Sat: sat1(), ModelIndex: idx, InitialVariance: 10}
	eq := equation.NewEquation(equation.Variable{Type: obs.Prefit(obs.ShortObs('C', 1, 'G')), Sat: sat1()},
		gnssid.SourceID{}, sat1(), gnssid.SysGPS)
	eq.AddVariable(v, equation.FixedCoef(1.0))

	row, fresh, err := s.BuildRow(eq, func(_ equation.Variable, c equation.Coefficient) (float64, error) {
		return c.Resolve(obs.NewTypeValueMap())
	})
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, []int{0}, row.Index)
	assert.Equal(t, []float64{1.0}, row.Value)
}

func TestConstrainAmbiguityAppliesTightPseudoObservation(t *testing.T) {
	arena := equation.NewModelArena()
	idx := arena.Put(equation.Constant{})
	s := NewSolver(2, arena)

	v := equation.Variable{Type: obs.Ambiguity(obs.ShortObs('L', 1, 'G')), Sat: sat1(), ModelIndex: idx, InitialVariance: 100}
	_, _, err := s.rowFor(v)
	require.NoError(t, err)

	_, ok := s.ConstrainAmbiguity(v, 5.0)
	assert.True(t, ok)
	mean, variance, tracked := s.State(v)
	assert.True(t, tracked)
	assert.InDelta(t, 5.0, mean, 1e-3)
	assert.Less(t, variance, 100.0)
}
