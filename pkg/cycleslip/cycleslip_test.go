package cycleslip_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xbfeng/gnssppp/pkg/cycleslip"
	"github.com/xbfeng/gnssppp/pkg/gnssid"
	"github.com/xbfeng/gnssppp/pkg/obs"
)

func wavelength(gnssid.System, obs.TypeID) float64 { return 0.86 }
func variance(gnssid.System, obs.TypeID) float64   { return 0.01 }

func TestMWDetectorFlagsLargeJumpButNotRepeatedObservation(t *testing.T) {
	det := cycleslip.NewMWDetector(wavelength, variance)
	sat, _ := gnssid.NewSatID(gnssid.SysGPS, 1)
	combo := obs.MW("G", 1, 2)

	data := obs.NewSatTypeValueMap()
	tvm := obs.NewTypeValueMap()
	tvm.Set(combo, 10.0)
	data.Insert(sat, tvm)

	e0 := obs.Epoch{Week: 2200, SOW: 0}
	flagged := det.Detect(e0, gnssid.SysGPS, []obs.TypeID{combo}, data)
	assert.Empty(t, flagged) // first observation never flags

	e1 := obs.Epoch{Week: 2200, SOW: 30}
	data[sat].Set(combo, 10.02) // small, within noise
	flagged = det.Detect(e1, gnssid.SysGPS, []obs.TypeID{combo}, data)
	assert.Empty(t, flagged)

	e2 := obs.Epoch{Week: 2200, SOW: 60}
	data[sat].Set(combo, 15.0) // large jump: multiple cycles
	flagged = det.Detect(e2, gnssid.SysGPS, []obs.TypeID{combo}, data)
	assert.True(t, flagged[sat])
}

func TestMWDetectorFlagsOnDataGap(t *testing.T) {
	det := cycleslip.NewMWDetector(wavelength, variance)
	sat, _ := gnssid.NewSatID(gnssid.SysGPS, 1)
	combo := obs.MW("G", 1, 2)

	data := obs.NewSatTypeValueMap()
	tvm := obs.NewTypeValueMap()
	tvm.Set(combo, 10.0)
	data.Insert(sat, tvm)

	det.Detect(obs.Epoch{Week: 2200, SOW: 0}, gnssid.SysGPS, []obs.TypeID{combo}, data)

	// 10-minute gap, well past the 61s default threshold.
	flagged := det.Detect(obs.Epoch{Week: 2200, SOW: 600}, gnssid.SysGPS, []obs.TypeID{combo}, data)
	assert.True(t, flagged[sat])
}

func TestArcManagerIncrementsOnlyOnSlip(t *testing.T) {
	mgr := cycleslip.NewManager()
	sat, _ := gnssid.NewSatID(gnssid.SysGPS, 1)
	group := obs.Ambiguity(obs.ShortObs('L', 1, 'G'))

	a1 := mgr.Observe(obs.Epoch{Week: 1, SOW: 0}, sat, group, false)
	assert.Equal(t, 1.0, a1)

	a2 := mgr.Observe(obs.Epoch{Week: 1, SOW: 30}, sat, group, false)
	assert.Equal(t, 1.0, a2)

	a3 := mgr.Observe(obs.Epoch{Week: 1, SOW: 60}, sat, group, true)
	assert.Equal(t, 2.0, a3)

	a4 := mgr.Observe(obs.Epoch{Week: 1, SOW: 90}, sat, group, false)
	assert.Equal(t, 2.0, a4)
}

func TestArcManagerRestartsAfterGap(t *testing.T) {
	mgr := cycleslip.NewManager()
	mgr.MaxGap = 100
	sat, _ := gnssid.NewSatID(gnssid.SysGPS, 1)
	group := obs.Ambiguity(obs.ShortObs('L', 1, 'G'))

	mgr.Observe(obs.Epoch{Week: 1, SOW: 0}, sat, group, true)
	mgr.Observe(obs.Epoch{Week: 1, SOW: 30}, sat, group, true)

	restarted := mgr.Observe(obs.Epoch{Week: 1, SOW: 500}, sat, group, false)
	assert.Equal(t, 1.0, restarted)
}

func TestMWDetectorMeanTracksRunningAverage(t *testing.T) {
	det := cycleslip.NewMWDetector(wavelength, variance)
	sat, _ := gnssid.NewSatID(gnssid.SysGPS, 1)
	combo := obs.MW("G", 1, 2)

	_, _, ok := det.Mean(sat, combo)
	assert.False(t, ok, "no observations yet")

	data := obs.NewSatTypeValueMap()
	tvm := obs.NewTypeValueMap()
	tvm.Set(combo, 10.0)
	data.Insert(sat, tvm)
	det.Detect(obs.Epoch{Week: 2200, SOW: 0}, gnssid.SysGPS, []obs.TypeID{combo}, data)

	mean, varc, ok := det.Mean(sat, combo)
	require.True(t, ok)
	assert.Equal(t, 10.0, mean)
	assert.Equal(t, 0.01, varc)

	data[sat].Set(combo, 10.02)
	det.Detect(obs.Epoch{Week: 2200, SOW: 30}, gnssid.SysGPS, []obs.TypeID{combo}, data)

	mean, _, ok = det.Mean(sat, combo)
	require.True(t, ok)
	assert.InDelta(t, 10.01, mean, 1e-9)
}

func TestArcManagerArcLengthCountsConsecutiveEpochs(t *testing.T) {
	mgr := cycleslip.NewManager()
	sat, _ := gnssid.NewSatID(gnssid.SysGPS, 1)
	group := obs.Ambiguity(obs.ShortObs('L', 1, 'G'))

	assert.Equal(t, 0, mgr.ArcLength(sat, group))

	mgr.Observe(obs.Epoch{Week: 1, SOW: 0}, sat, group, false)
	mgr.Observe(obs.Epoch{Week: 1, SOW: 30}, sat, group, false)
	assert.Equal(t, 2, mgr.ArcLength(sat, group))

	mgr.Observe(obs.Epoch{Week: 1, SOW: 60}, sat, group, true)
	assert.Equal(t, 1, mgr.ArcLength(sat, group), "a slip resets the arc length")
}

func TestCombineFlagsIsLogicalOr(t *testing.T) {
	sat1, _ := gnssid.NewSatID(gnssid.SysGPS, 1)
	sat2, _ := gnssid.NewSatID(gnssid.SysGPS, 2)

	mw := map[gnssid.SatID]bool{sat1: true}
	gf := map[gnssid.SatID]bool{sat2: true}

	combined := cycleslip.CombineFlags(mw, gf)
	assert.True(t, combined[sat1])
	assert.True(t, combined[sat2])
}
