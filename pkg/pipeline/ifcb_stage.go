package pipeline

import (
	"github.com/xbfeng/gnssppp/pkg/gnssid"
	"github.com/xbfeng/gnssppp/pkg/obs"
)

// CorrectIFCB applies the per-epoch GPS L5 inter-frequency clock-bias
// correction (spec §6's "IFCB" external input, gated by the ifcbCorr
// option) to every GPS satellite's band-5 code and phase observables,
// grounded on the teacher's CorrectPhaseBiases.cpp pattern of applying
// a per-satellite scalar correction sourced from an external product
// and dropping the satellite when no value is available for this
// epoch (spec §7 BiasNotFound).
type CorrectIFCB struct {
	IFCBOf func(sat gnssid.SatID) (float64, bool)
}

func (CorrectIFCB) Name() string { return "CorrectIFCB" }

var ifcbTargets = []obs.TypeID{
	obs.RawObs('C', 5, 'X', 'G'),
	obs.RawObs('C', 5, 'Q', 'G'),
	obs.RawObs('C', 5, 'I', 'G'),
	obs.RawObs('L', 5, 'X', 'G'),
	obs.RawObs('L', 5, 'Q', 'G'),
	obs.RawObs('L', 5, 'I', 'G'),
}

func (c CorrectIFCB) Process(_ obs.Epoch, data obs.SatTypeValueMap) error {
	if c.IFCBOf == nil {
		return nil
	}
	for _, sat := range data.Satellites() {
		if sat.System != gnssid.SysGPS {
			continue
		}
		tvm := data[sat]
		hasL5 := false
		for _, t := range ifcbTargets {
			if tvm.Has(t) {
				hasL5 = true
				break
			}
		}
		if !hasL5 {
			continue
		}
		bias, ok := c.IFCBOf(sat)
		if !ok {
			delete(data, sat)
			continue
		}
		for _, t := range ifcbTargets {
			if tvm.Has(t) {
				v, _ := tvm.Value(t)
				tvm.Set(t, v-bias)
			}
		}
	}
	return nil
}
