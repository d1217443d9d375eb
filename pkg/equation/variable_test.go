package equation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xbfeng/gnssppp/pkg/equation"
	"github.com/xbfeng/gnssppp/pkg/gnssid"
	"github.com/xbfeng/gnssppp/pkg/obs"
)

func TestVariableOrderingGroupsByTypeOrderFirst(t *testing.T) {
	sat1, _ := gnssid.NewSatID(gnssid.SysGPS, 1)
	sat2, _ := gnssid.NewSatID(gnssid.SysGPS, 2)

	amb := equation.Variable{Type: obs.Ambiguity(obs.ShortObs('L', 1, 'G')), Sat: sat1, TypeOrder: equation.TypeOrderAmbiguity}
	pos := equation.Variable{Type: obs.DN, Sat: sat2, TypeOrder: equation.TypeOrderPosition}

	sorted := equation.SortVariables([]equation.Variable{amb, pos})
	assert.Equal(t, pos, sorted[0])
	assert.Equal(t, amb, sorted[1])
}

func TestVariableEqualityIgnoresIndices(t *testing.T) {
	sat, _ := gnssid.NewSatID(gnssid.SysGPS, 5)
	a := equation.Variable{Type: obs.DN, Sat: sat, NowIndex: 3, PreIndex: -1}
	b := equation.Variable{Type: obs.DN, Sat: sat, NowIndex: 9, PreIndex: 3}
	assert.True(t, a.Equal(b))
}

func TestModelArenaRoundTrips(t *testing.T) {
	arena := equation.NewModelArena()
	idx := arena.Put(equation.RandomWalk{QPerSecond: 1e-8})
	got := arena.Get(idx)
	_, ok := got.(equation.RandomWalk)
	assert.True(t, ok)
}

func TestEquationAddVariablePreservesInsertionOrder(t *testing.T) {
	sat, _ := gnssid.NewSatID(gnssid.SysGPS, 1)
	indTerm := equation.Variable{Type: obs.Prefit(obs.ShortObs('C', 1, 'G'))}
	eq := equation.NewEquation(indTerm, gnssid.SourceID{}, sat, gnssid.SysGPS)

	v1 := equation.Variable{Type: obs.DN, Sat: sat}
	v2 := equation.Variable{Type: obs.RecClock, Sat: sat}
	eq.AddVariable(v1, equation.FixedCoef(1))
	eq.AddVariable(v2, equation.FixedCoef(1))

	vars := eq.Body.Variables()
	assert.Equal(t, []equation.Variable{v1, v2}, vars)
}
