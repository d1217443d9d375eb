package cycleslip

import (
	"math"

	"github.com/xbfeng/gnssppp/pkg/gnssid"
	"github.com/xbfeng/gnssppp/pkg/obs"
)

// GF threshold shape defaults, spec §4.1.
const (
	DefaultBGF             = 0.05 // m, for deltaT <= 1s
	DefaultBGFAt20s        = 0.15
	DefaultBGFAt60s        = 0.25
	DefaultBGFAbove100s    = 0.35
	DefaultElevMaskForScale = 15.0 * math.Pi / 180.0
	DefaultMaxElevScale     = 2.0
)

type gfState struct {
	formerEpoch obs.Epoch
	hasFormer   bool
	lastValue   float64
}

// GFDetector runs the geometry-free slip test, independently per
// satellite and per configured GF combination.
type GFDetector struct {
	state map[stateKey]*gfState
}

func NewGFDetector() *GFDetector {
	return &GFDetector{state: make(map[stateKey]*gfState)}
}

// threshold implements the piecewise-linear shape of spec §4.1 over
// deltaT, then scales upward for low elevation.
func threshold(deltaT, elevationRad float64) float64 {
	var t float64
	switch {
	case deltaT <= 1:
		t = DefaultBGF
	case deltaT <= 20:
		t = DefaultBGF + (DefaultBGFAt20s-DefaultBGF)*(deltaT-1)/(20-1)
	case deltaT <= 60:
		t = DefaultBGFAt20s + (DefaultBGFAt60s-DefaultBGFAt20s)*(deltaT-20)/(60-20)
	case deltaT <= 100:
		t = DefaultBGFAt60s + (DefaultBGFAbove100s-DefaultBGFAt60s)*(deltaT-60)/(100-60)
	default:
		t = DefaultBGFAbove100s
	}
	if elevationRad < DefaultElevMaskForScale {
		frac := 1 - elevationRad/DefaultElevMaskForScale
		scale := 1 + frac*(DefaultMaxElevScale-1)
		t *= scale
	}
	return t
}

// Detect runs one epoch's worth of GF slip tests and returns the set of
// flagged satellites. elevation supplies each satellite's elevation in
// radians (0 if unknown, which applies the full low-elevation scale,
// DefaultMaxElevScale times the base threshold — the widest gate).
func (d *GFDetector) Detect(epoch obs.Epoch, combos []obs.TypeID, data obs.SatTypeValueMap, elevation func(gnssid.SatID) float64) map[gnssid.SatID]bool {
	flagged := make(map[gnssid.SatID]bool)
	for _, sat := range data.Satellites() {
		tvm := data[sat]
		for _, combo := range combos {
			gf, ok := tvm[combo]
			if !ok {
				continue
			}
			if d.detectOne(epoch, sat, combo, gf, elevation(sat)) {
				flagged[sat] = true
			}
		}
	}
	return flagged
}

func (d *GFDetector) detectOne(epoch obs.Epoch, sat gnssid.SatID, combo obs.TypeID, gf, elevationRad float64) bool {
	k := stateKey{sat, combo}
	st, ok := d.state[k]
	if !ok {
		st = &gfState{}
		d.state[k] = st
	}
	if !st.hasFormer {
		st.hasFormer = true
		st.formerEpoch = epoch
		st.lastValue = gf
		return false
	}

	deltaT := epoch.Sub(st.formerEpoch)
	st.formerEpoch = epoch
	diff := math.Abs(gf - st.lastValue)
	st.lastValue = gf

	return diff > threshold(deltaT, elevationRad)
}

// Forget drops all state for sat.
func (d *GFDetector) Forget(sat gnssid.SatID) {
	for k := range d.state {
		if k.sat == sat {
			delete(d.state, k)
		}
	}
}
