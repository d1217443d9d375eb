package pipeline

import (
	"github.com/xbfeng/gnssppp/pkg/gnssid"
	"github.com/xbfeng/gnssppp/pkg/obs"
)

// priorityCodes gives, per system and carrier band, the tracking-code
// characters in best-to-worst order, ported verbatim from
// ChooseOptimalObs.cpp's priorityCodes table (Prange et al. 2017).
var priorityCodes = map[gnssid.System]map[int]string{
	gnssid.SysGPS: {1: "WCSLXPYMN", 2: "WCDSLXPYMN", 5: "XQI"},
	gnssid.SysCMP: {1: "DPXAN", 2: "IXQ", 5: "DPX", 6: "IXQA", 8: "DPX", 7: "IXQDPZ"},
	gnssid.SysGLO: {1: "CP", 2: "PC", 3: "IQX", 4: "ABX", 6: "ABX"},
	gnssid.SysGal: {1: "XCABZ", 5: "XQI", 6: "XCABZ", 7: "XQI", 8: "XQI"},
	gnssid.SysSBS: {1: "C", 5: "IQX"},
	gnssid.SysQZS: {1: "XCSLZ", 2: "XLS", 5: "XQIDPZ", 6: "XSLEZ"},
	gnssid.SysIRN: {5: "ABCX", 9: "ABCX"},
}

// ChooseOptimalObs picks, per satellite and carrier band, the single
// best-available code/phase tracking code and drops every other
// tracking code on that band, ported from ChooseOptimalObs.cpp. Unlike
// the teacher (which has no multi-tracking-code ambiguity -- RTKLIB's
// RINEX reader already collapses to one code per band at read time)
// this stage is needed because spec §3's raw TypeID vocabulary keeps
// every tracking code distinct (e.g. C1C vs C1W both present for one
// GPS satellite).
type ChooseOptimalObs struct{}

func (ChooseOptimalObs) Name() string { return "ChooseOptimalObs" }

func (ChooseOptimalObs) Process(_ obs.Epoch, data obs.SatTypeValueMap) error {
	for _, sat := range data.Satellites() {
		bands := priorityCodes[sat.System]
		if bands == nil {
			continue
		}
		tvm := data[sat]
		keep := make(map[obs.TypeID]bool)
		for band, codes := range bands {
			for _, kind := range []byte{'C', 'L'} {
				for i := 0; i < len(codes); i++ {
					t := obs.RawObs(kind, band, codes[i], byte(sat.System.String()[0]))
					if tvm.Has(t) {
						keep[t] = true
						break
					}
				}
			}
		}
		for t := range tvm {
			if isBandedObservable(t) && !keep[t] {
				delete(tvm, t)
			}
		}
	}
	return nil
}

// isBandedObservable reports whether t is a raw {C|L}{band}{code}{sys}
// observable (as opposed to a derived quantity like rho or MW12G),
// which is the only class ChooseOptimalObs prunes.
func isBandedObservable(t obs.TypeID) bool {
	n := t.Name
	return len(n) == 4 && (n[0] == 'C' || n[0] == 'L') && n[1] >= '1' && n[1] <= '9'
}
