package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xbfeng/gnssppp/pkg/gnssid"
	"github.com/xbfeng/gnssppp/pkg/obs"
)

func TestCorrectIFCBAppliesBiasToL5Observables(t *testing.T) {
	data := obs.NewSatTypeValueMap()
	sat := gps(1)
	tvm := obs.NewTypeValueMap()
	tvm.Set(obs.RawObs('C', 5, 'X', 'G'), 100.0)
	tvm.Set(obs.RawObs('L', 5, 'X', 'G'), 50.0)
	data[sat] = tvm

	stage := CorrectIFCB{IFCBOf: func(gnssid.SatID) (float64, bool) { return 2.0, true }}
	require.NoError(t, stage.Process(obs.Epoch{}, data))

	v, _ := data[sat].Value(obs.RawObs('C', 5, 'X', 'G'))
	assert.InDelta(t, 98.0, v, 1e-9)
}

func TestCorrectIFCBDropsSatelliteWhenNoBiasAvailable(t *testing.T) {
	data := obs.NewSatTypeValueMap()
	sat := gps(1)
	tvm := obs.NewTypeValueMap()
	tvm.Set(obs.RawObs('C', 5, 'X', 'G'), 100.0)
	data[sat] = tvm

	stage := CorrectIFCB{IFCBOf: func(gnssid.SatID) (float64, bool) { return 0, false }}
	require.NoError(t, stage.Process(obs.Epoch{}, data))
	assert.NotContains(t, data, sat)
}

func TestCorrectIFCBSkipsSatelliteWithoutL5(t *testing.T) {
	data := obs.NewSatTypeValueMap()
	sat := gps(1)
	tvm := obs.NewTypeValueMap()
	tvm.Set(obs.RawObs('C', 1, 'C', 'G'), 100.0)
	data[sat] = tvm

	called := false
	stage := CorrectIFCB{IFCBOf: func(gnssid.SatID) (float64, bool) { called = true; return 0, false }}
	require.NoError(t, stage.Process(obs.Epoch{}, data))
	assert.False(t, called)
	assert.Contains(t, data, sat)
}

func TestCorrectIFCBIgnoresNonGPS(t *testing.T) {
	data := obs.NewSatTypeValueMap()
	sat := glo(1)
	tvm := obs.NewTypeValueMap()
	tvm.Set(obs.RawObs('C', 5, 'X', 'G'), 100.0)
	data[sat] = tvm

	stage := CorrectIFCB{IFCBOf: func(gnssid.SatID) (float64, bool) { return 0, false }}
	require.NoError(t, stage.Process(obs.Epoch{}, data))
	assert.Contains(t, data, sat)
}
