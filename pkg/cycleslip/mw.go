// Package cycleslip implements the Melbourne-Wubbena and geometry-free
// cycle-slip detectors of spec §4.1, and the per-(satellite, ambiguity)
// arc counter of spec §4.6.
//
// Grounded on original_source/src/ProceFrame/DetectCSMW.cpp and
// DetectCSGF.cpp (the GPSTk-derived detectors spec §4.1 describes) and,
// for the running-mean/variance update shape, on the teacher's
// DetectSlp_mw/DetectSlp_gf in ppp.go.
package cycleslip

import (
	"math"

	"github.com/xbfeng/gnssppp/pkg/gnssid"
	"github.com/xbfeng/gnssppp/pkg/obs"
)

// MWDefaults holds the default thresholds of spec §4.1.
const (
	DefaultDeltaTMax  = 61.0 // seconds
	DefaultMinCycles  = 1.0  // cycles
	DefaultSigmaMul   = 4.0  // sigma multiplier
)

// mwState is the per-(satellite, combination) running filter of spec
// §4.1: formerEpoch, mean, variance, window size.
type mwState struct {
	formerEpoch obs.Epoch
	hasFormer   bool
	mean        float64
	variance    float64
	n           int
}

// MWDetector runs the Melbourne-Wubbena slip test on every configured
// wide-lane combination, independently per satellite.
type MWDetector struct {
	DeltaTMax float64 // seconds; 0 uses DefaultDeltaTMax
	MinCycles float64 // cycles; 0 uses DefaultMinCycles

	// Wavelength and InitialVariance are looked up per (system,
	// combination type) by the caller-supplied functions below, since
	// the wide-lane wavelength depends on the specific frequency pair
	// the combination TypeID encodes (spec §4.2).
	Wavelength      func(sys gnssid.System, combo obs.TypeID) float64
	InitialVariance func(sys gnssid.System, combo obs.TypeID) float64

	state map[stateKey]*mwState
}

type stateKey struct {
	sat   gnssid.SatID
	combo obs.TypeID
}

// NewMWDetector builds a detector with the given wavelength/variance
// lookups; thresholds default to the spec §4.1 values when zero.
func NewMWDetector(wavelength, initialVariance func(gnssid.System, obs.TypeID) float64) *MWDetector {
	return &MWDetector{
		DeltaTMax:       DefaultDeltaTMax,
		MinCycles:       DefaultMinCycles,
		Wavelength:      wavelength,
		InitialVariance: initialVariance,
		state:           make(map[stateKey]*mwState),
	}
}

// Detect runs one epoch's worth of MW slip tests and returns the set of
// satellites flagged for at least one combination.
func (d *MWDetector) Detect(epoch obs.Epoch, sys gnssid.System, combos []obs.TypeID, data obs.SatTypeValueMap) map[gnssid.SatID]bool {
	flagged := make(map[gnssid.SatID]bool)
	for _, sat := range data.Satellites() {
		tvm := data[sat]
		for _, combo := range combos {
			mw, ok := tvm[combo]
			if !ok {
				continue
			}
			if d.detectOne(epoch, sat, sys, combo, mw) {
				flagged[sat] = true
			}
		}
	}
	return flagged
}

func (d *MWDetector) detectOne(epoch obs.Epoch, sat gnssid.SatID, sys gnssid.System, combo obs.TypeID, mw float64) bool {
	k := stateKey{sat, combo}
	st, ok := d.state[k]
	if !ok {
		st = &mwState{}
		d.state[k] = st
	}

	deltaTMax := d.DeltaTMax
	if deltaTMax == 0 {
		deltaTMax = DefaultDeltaTMax
	}
	minCycles := d.MinCycles
	if minCycles == 0 {
		minCycles = DefaultMinCycles
	}
	lambda := d.Wavelength(sys, combo)
	initVar := d.InitialVariance(sys, combo)

	if !st.hasFormer {
		st.hasFormer = true
		st.formerEpoch = epoch
		st.mean = mw
		st.variance = initVar
		st.n = 1
		return false
	}

	deltaT := epoch.Sub(st.formerEpoch)
	st.formerEpoch = epoch

	bias := math.Abs(mw - st.mean)
	sigLimit := DefaultSigmaMul * math.Sqrt(st.variance)

	slip := deltaT > deltaTMax || (bias > minCycles*lambda && bias > sigLimit)

	if slip {
		st.mean = mw
		st.variance = initVar
		st.n = 1
		return true
	}

	st.n++
	prevMean := st.mean
	st.mean += (mw - st.mean) / float64(st.n)
	st.variance += ((mw-prevMean)*(mw-prevMean) - st.variance) / float64(st.n)
	return false
}

// Forget drops all state for sat, used when the arc manager expires it
// after a long data gap (spec §4.6).
func (d *MWDetector) Forget(sat gnssid.SatID) {
	for k := range d.state {
		if k.sat == sat {
			delete(d.state, k)
		}
	}
}

// Mean returns the current running MW mean and its variance for
// (sat, combo) -- the wide-lane float ambiguity estimate and its
// sigma spec §4.5 step 2 draws the EWL/WL float from -- and whether
// any epoch has been accumulated yet.
func (d *MWDetector) Mean(sat gnssid.SatID, combo obs.TypeID) (mean, variance float64, ok bool) {
	st, ok := d.state[stateKey{sat, combo}]
	if !ok {
		return 0, 0, false
	}
	return st.mean, st.variance, true
}
