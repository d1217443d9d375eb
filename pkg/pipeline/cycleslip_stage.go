package pipeline

import (
	"github.com/xbfeng/gnssppp/pkg/cycleslip"
	"github.com/xbfeng/gnssppp/pkg/gnssid"
	"github.com/xbfeng/gnssppp/pkg/obs"
)

// DetectCS runs the MW and GF detectors, ORs their flags, writes
// obs.CSFlag into each flagged satellite's TypeValueMap, and advances
// the arc manager, ported from DetectCSMW.cpp/DetectCSGF.cpp and
// MarkArc.hpp (spec §4.1/§4.6). The arc manager increments the arc
// counter on every epoch whose CSFlag is 1, not only on a 0 -> 1
// transition.
type DetectCS struct {
	System      gnssid.System
	MWCombos    []obs.TypeID
	GFCombos    []obs.TypeID
	GFDetector  *cycleslip.GFDetector
	MWDetector  *cycleslip.MWDetector
	ArcManager  *cycleslip.Manager
	AmbiguityOf func(sat gnssid.SatID) obs.TypeID
	Elevation   func(sat gnssid.SatID) float64
}

func (DetectCS) Name() string { return "DetectCS" }

func (d DetectCS) Process(epoch obs.Epoch, data obs.SatTypeValueMap) error {
	mwFlags := map[gnssid.SatID]bool{}
	if d.MWDetector != nil {
		mwFlags = d.MWDetector.Detect(epoch, d.System, d.MWCombos, data)
	}
	gfFlags := map[gnssid.SatID]bool{}
	if d.GFDetector != nil {
		gfFlags = d.GFDetector.Detect(epoch, d.GFCombos, data, d.Elevation)
	}
	combined := cycleslip.CombineFlags(mwFlags, gfFlags)

	for _, sat := range data.Satellites() {
		flagged := combined[sat]
		tvm := data[sat]
		if flagged {
			tvm.Set(obs.CSFlag, 1)
		} else {
			tvm.Set(obs.CSFlag, 0)
		}
		if d.ArcManager != nil && d.AmbiguityOf != nil {
			d.ArcManager.Observe(epoch, sat, d.AmbiguityOf(sat), flagged)
		}
	}
	return nil
}
