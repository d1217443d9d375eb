package combination_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xbfeng/gnssppp/pkg/combination"
	"github.com/xbfeng/gnssppp/pkg/gnssid"
	"github.com/xbfeng/gnssppp/pkg/obs"
)

func gpsBands() (l1, l2 combination.Band) {
	l1 = combination.Band{Index: 1, Frequency: gnssid.Freq1, Phase: obs.ShortObs('L', 1, 'G'), Code: obs.ShortObs('C', 1, 'G')}
	l2 = combination.Band{Index: 2, Frequency: gnssid.Freq2, Phase: obs.ShortObs('L', 2, 'G'), Code: obs.ShortObs('C', 2, 'G')}
	return
}

func TestMelbourneWubbenaSkippedWhenInputMissing(t *testing.T) {
	l1, l2 := gpsBands()
	mw := combination.MelbourneWubbena("G", l1, l2, gnssid.CLight)

	data := obs.NewTypeValueMap()
	data.Set(l1.Phase, 1000)
	// l2.Phase missing entirely -> combination must be skipped, not
	// silently treated as zero (spec §4.2: "if any non-optional input
	// is absent, the combination is skipped").
	_, ok := mw.Apply(data)
	assert.False(t, ok)
}

func TestMelbourneWubbenaComputesExpectedValue(t *testing.T) {
	l1, l2 := gpsBands()
	mw := combination.MelbourneWubbena("G", l1, l2, gnssid.CLight)

	data := obs.NewTypeValueMap()
	data.Set(l1.Phase, 100000.0)
	data.Set(l2.Phase, 77948.0)
	data.Set(l1.Code, 20000000.0)
	data.Set(l2.Code, 20000005.0)

	value, ok := mw.Apply(data)
	assert.True(t, ok)

	lambdaW := gnssid.CLight / (gnssid.Freq1 - gnssid.Freq2)
	want := lambdaW*(100000.0-77948.0) - (gnssid.Freq1*20000000.0+gnssid.Freq2*20000005.0)/(gnssid.Freq1+gnssid.Freq2)
	assert.InDelta(t, want, value, 1e-6)
}

func TestIonoFreeCodeRoundTripsWithSingleFrequencyInput(t *testing.T) {
	l1, l2 := gpsBands()
	pc := combination.IonoFreeCode("G", l1, l2)

	data := obs.NewTypeValueMap()
	// When P1 == P2 (no ionosphere at all, degenerate case), PC must
	// reduce to that common value regardless of frequency weighting.
	data.Set(l1.Code, 21000000.0)
	data.Set(l2.Code, 21000000.0)

	value, ok := pc.Apply(data)
	assert.True(t, ok)
	assert.InDelta(t, 21000000.0, value, 1e-6)
}

func TestApplyAllSkipsSatellitesMissingRequiredInput(t *testing.T) {
	l1, l2 := gpsBands()
	gf := combination.GeometryFree("G", l1, l2, gnssid.CLight)

	sat1, _ := gnssid.NewSatID(gnssid.SysGPS, 1)
	sat2, _ := gnssid.NewSatID(gnssid.SysGPS, 2)

	data := obs.NewSatTypeValueMap()
	complete := obs.NewTypeValueMap()
	complete.Set(l1.Phase, 1000)
	complete.Set(l2.Phase, 900)
	data.Insert(sat1, complete)

	incomplete := obs.NewTypeValueMap()
	incomplete.Set(l1.Phase, 1000)
	data.Insert(sat2, incomplete)

	combination.ApplyAll(gf, data)

	assert.True(t, data[sat1].Has(gf.Header))
	assert.False(t, data[sat2].Has(gf.Header))
}
