package station

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xbfeng/gnssppp/pkg/ambiguity"
	"github.com/xbfeng/gnssppp/pkg/cycleslip"
	"github.com/xbfeng/gnssppp/pkg/equation"
	"github.com/xbfeng/gnssppp/pkg/gnssid"
	"github.com/xbfeng/gnssppp/pkg/obs"
)

func codeOnlyPlan(clockIdx, tropoIdx int) equation.SignalPlan {
	return equation.SignalPlan{
		Prefit:   obs.Prefit(obs.ShortObs('C', 1, 'G')),
		Signal:   obs.ShortObs('C', 1, 'G'),
		IsPhase:  false,
		IonoFree: true,
	}
}

func baseOptions(clockIdx, tropoIdx int) equation.AssembleOptions {
	return equation.AssembleOptions{
		System:       gnssid.SysGPS,
		ENU:          [3]float64{0, 0, 0},
		ElevationRad: math.Pi / 4,
		WetMap:       0,
		ArenaClock:   clockIdx,
		ArenaTropo:   tropoIdx,
	}
}

func TestEstimateStageAppliesCodeMeasurementToClock(t *testing.T) {
	arena := equation.NewModelArena()
	clockIdx := arena.Put(equation.WhiteNoise{Variance: 1e6})
	tropoIdx := arena.Put(equation.NewTropoRandomWalk())
	s := NewSolver(8, arena)

	stage := &EstimateStage{
		Solver: s,
		Plans: func(sat gnssid.SatID) []equation.SignalPlan {
			return []equation.SignalPlan{codeOnlyPlan(clockIdx, tropoIdx)}
		},
		OptionsFor: func(sat gnssid.SatID, data obs.TypeValueMap) equation.AssembleOptions {
			return baseOptions(clockIdx, tropoIdx)
		},
	}

	data := obs.NewSatTypeValueMap()
	tvm := obs.NewTypeValueMap()
	tvm.Set(obs.Prefit(obs.ShortObs('C', 1, 'G')), 5.0)
	data[sat1()] = tvm

	require.NoError(t, stage.Process(obs.Epoch{}, data))

	clockVar := equation.Variable{Type: obs.RecClock, TypeOrder: equation.TypeOrderClock}
	mean, _, tracked := s.State(clockVar)
	require.True(t, tracked)
	assert.Greater(t, mean, 0.0, "clock estimate should move toward the positive prefit residual")
}

func sat2() gnssid.SatID { return gnssid.SatID{System: gnssid.SysGPS, PRN: 2} }

// TestEstimateStageFixesBetweenSatelliteSingleDifference drives
// fixAmbiguities directly (bypassing the equation-assembly half of
// Process, which is exercised separately) over a two-satellite scene:
// sat1 is the higher-elevation, long-arc reference; sat2's wide-lane
// and narrow-lane single differences against it are fixed and
// constrained back. This replaces a prior test that rounded a single
// satellite's undifferenced ambiguity directly -- not a valid PPP-AR
// fix, since an undifferenced raw-phase ambiguity carries receiver and
// satellite hardware bias that only cancels in a between-satellite
// difference.
func TestEstimateStageFixesBetweenSatelliteSingleDifference(t *testing.T) {
	arena := equation.NewModelArena()
	ambIdx := arena.Put(equation.Constant{})
	s := NewSolver(8, arena)

	signal := obs.ShortObs('L', 1, 'G')
	ambVar1 := equation.Variable{
		Type: obs.Ambiguity(signal), Sat: sat1(), Arc: 1,
		IsSatIndexed: true, IsArcIndexed: true,
		TypeOrder: equation.TypeOrderAmbiguity, ModelIndex: ambIdx,
	}
	ambVar2 := equation.Variable{
		Type: obs.Ambiguity(signal), Sat: sat2(), Arc: 1,
		IsSatIndexed: true, IsArcIndexed: true,
		TypeOrder: equation.TypeOrderAmbiguity, ModelIndex: ambIdx,
	}

	const wlFixed = 3.0
	const nlFixed = 7.0
	lcRef := 10.5
	lcSD := ambiguity.LCFromNarrowLane(nlFixed, wlFixed, gnssid.Freq1, gnssid.Freq2, gnssid.CLight)

	row1, _, err := s.rowFor(ambVar1)
	require.NoError(t, err)
	s.Filter().Seed(row1, lcRef, 1e-6)
	row2, _, err := s.rowFor(ambVar2)
	require.NoError(t, err)
	s.Filter().Seed(row2, lcRef+lcSD, 1e-6)

	combo := obs.MW("G", 1, 2)
	mw := cycleslip.NewMWDetector(
		func(gnssid.System, obs.TypeID) float64 { return 1 },
		func(gnssid.System, obs.TypeID) float64 { return 1e-6 },
	)
	mwData := obs.NewSatTypeValueMap()
	refTvm := obs.NewTypeValueMap()
	refTvm.Set(combo, 10.0)
	mwData[sat1()] = refTvm
	otherTvm := obs.NewTypeValueMap()
	otherTvm.Set(combo, 10.0+wlFixed)
	mwData[sat2()] = otherTvm
	mw.Detect(obs.Epoch{}, gnssid.SysGPS, []obs.TypeID{combo}, mwData)

	arcs := cycleslip.NewManager()
	group := obs.Ambiguity(signal)
	for i := 0; i < ambiguity.DefaultMinArcEpochs; i++ {
		arcs.Observe(obs.Epoch{}, sat1(), group, false)
		arcs.Observe(obs.Epoch{}, sat2(), group, false)
	}

	stage := &EstimateStage{
		Solver: s,
		Amb: AmbiguityConfig{
			Arcs: arcs,
			MW:   mw,
			WLCombo: func(sat gnssid.SatID, ambiguitySignal obs.TypeID) (obs.TypeID, float64, float64, bool) {
				return combo, gnssid.Freq1, gnssid.Freq2, true
			},
		},
		LastFixed: make(map[equation.Identity]ambiguity.FixResult),
	}

	ctxs := []ambiguityContext{
		{Var: ambVar1, Sat: sat1(), System: gnssid.SysGPS, Signal: signal, ElevationRad: 1.2},
		{Var: ambVar2, Sat: sat2(), System: gnssid.SysGPS, Signal: signal, ElevationRad: 0.3},
	}
	stage.fixAmbiguities(obs.Epoch{}, ctxs)

	result, ok := stage.LastFixed[ambVar2.Identity()]
	require.True(t, ok)
	assert.True(t, result.Fixed)
	assert.InDelta(t, nlFixed, result.Value, 1e-6)

	mean1, _, tracked1 := s.State(ambVar1)
	mean2, _, tracked2 := s.State(ambVar2)
	require.True(t, tracked1)
	require.True(t, tracked2)
	assert.InDelta(t, lcSD, mean2-mean1, 1e-3)
}

func TestEstimateStageNoopWithoutWiring(t *testing.T) {
	stage := &EstimateStage{}
	data := obs.NewSatTypeValueMap()
	data[sat1()] = obs.NewTypeValueMap()
	require.NoError(t, stage.Process(obs.Epoch{}, data))
}
