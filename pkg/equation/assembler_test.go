package equation_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xbfeng/gnssppp/pkg/equation"
	"github.com/xbfeng/gnssppp/pkg/gnssid"
	"github.com/xbfeng/gnssppp/pkg/obs"
)

func TestAssembleSkipsSatelliteMissingPrefit(t *testing.T) {
	sat, _ := gnssid.NewSatID(gnssid.SysGPS, 1)
	data := obs.NewTypeValueMap()
	plan := equation.SignalPlan{Prefit: obs.Prefit(obs.ShortObs('C', 1, 'G'))}

	_, ok := equation.Assemble(sat, data, plan, equation.AssembleOptions{})
	assert.False(t, ok)
}

func TestAssembleCodeEquationHasNoAmbiguityUnknown(t *testing.T) {
	sat, _ := gnssid.NewSatID(gnssid.SysGPS, 1)
	signal := obs.ShortObs('C', 1, 'G')
	prefit := obs.Prefit(signal)
	data := obs.NewTypeValueMap()
	data.Set(prefit, 0.123)

	plan := equation.SignalPlan{Prefit: prefit, Signal: signal, Frequency: gnssid.Freq1}
	opt := equation.AssembleOptions{ElevationRad: math.Pi / 4, ReferenceFreq: gnssid.Freq1}

	eq, ok := equation.Assemble(sat, data, plan, opt)
	assert.True(t, ok)

	for _, v := range eq.Body.Variables() {
		assert.NotEqual(t, equation.TypeOrderAmbiguity, v.TypeOrder)
	}
}

func TestAssemblePhaseEquationCarriesAmbiguityWithUnitCoefficient(t *testing.T) {
	sat, _ := gnssid.NewSatID(gnssid.SysGPS, 1)
	signal := obs.ShortObs('L', 1, 'G')
	prefit := obs.Prefit(signal)
	data := obs.NewTypeValueMap()
	data.Set(prefit, 0.456)

	plan := equation.SignalPlan{
		Prefit: prefit, Signal: signal, IsPhase: true,
		Ambiguity: obs.Ambiguity(signal), Frequency: gnssid.Freq1,
	}
	opt := equation.AssembleOptions{ElevationRad: math.Pi / 4, ReferenceFreq: gnssid.Freq1}

	eq, ok := equation.Assemble(sat, data, plan, opt)
	assert.True(t, ok)

	found := false
	for _, v := range eq.Body.Variables() {
		if v.TypeOrder == equation.TypeOrderAmbiguity {
			found = true
			c, ok := eq.Body.Coefficient(v)
			assert.True(t, ok)
			assert.Equal(t, 1.0, c.Value)
		}
	}
	assert.True(t, found)
}

func TestAssembleIonoFreePrefitOmitsIonosphereUnknown(t *testing.T) {
	sat, _ := gnssid.NewSatID(gnssid.SysGPS, 1)
	prefit := obs.Prefit(obs.PC("G", []int{1, 2}))
	data := obs.NewTypeValueMap()
	data.Set(prefit, 0.789)

	plan := equation.SignalPlan{Prefit: prefit, IonoFree: true}
	eq, ok := equation.Assemble(sat, data, plan, equation.AssembleOptions{ElevationRad: math.Pi / 3})
	assert.True(t, ok)

	for _, v := range eq.Body.Variables() {
		assert.NotEqual(t, equation.TypeOrderIonosphere, v.TypeOrder)
		assert.NotEqual(t, equation.TypeOrderIFB, v.TypeOrder)
	}
}

func TestAssemblePositionVariablesAreSharedAcrossSatellites(t *testing.T) {
	sat1, _ := gnssid.NewSatID(gnssid.SysGPS, 1)
	sat2, _ := gnssid.NewSatID(gnssid.SysGPS, 2)
	signal := obs.ShortObs('C', 1, 'G')
	prefit := obs.Prefit(signal)

	data := obs.NewTypeValueMap()
	data.Set(prefit, 1.0)
	plan := equation.SignalPlan{Prefit: prefit, Signal: signal, Frequency: gnssid.Freq1}
	opt := equation.AssembleOptions{ElevationRad: math.Pi / 4, ReferenceFreq: gnssid.Freq1}

	eq1, ok := equation.Assemble(sat1, data, plan, opt)
	assert.True(t, ok)
	eq2, ok := equation.Assemble(sat2, data, plan, opt)
	assert.True(t, ok)

	posOf := func(eq *equation.Equation) (dN, dE, dU equation.Variable) {
		for _, v := range eq.Body.Variables() {
			if v.TypeOrder != equation.TypeOrderPosition {
				continue
			}
			switch v.Type {
			case obs.DN:
				dN = v
			case obs.DE:
				dE = v
			case obs.DU:
				dU = v
			}
		}
		return
	}
	dN1, dE1, dU1 := posOf(eq1)
	dN2, dE2, dU2 := posOf(eq2)

	// Two different satellites must resolve to the identical position
	// unknowns -- a receiver has one position per epoch, not one per
	// satellite in view.
	assert.True(t, dN1.Equal(dN2))
	assert.True(t, dE1.Equal(dE2))
	assert.True(t, dU1.Equal(dU2))
}
