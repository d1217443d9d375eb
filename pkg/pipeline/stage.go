// Package pipeline implements the closed-set Stage dispatch of spec §9:
// a strict, single-threaded-per-station sequence of per-epoch
// processing steps, each operating on one obs.Record and its
// obs.SatTypeValueMap, grounded on original_source/src/ProceFrame's
// KeepSystems/FilterCode/RequiredObs/EraseSat/DecimateData/MarkArc and
// the teacher's equivalent inline logic in ppp.go/rtkpos.go.
package pipeline

import (
	"github.com/xbfeng/gnssppp/internal/errs"
	"github.com/xbfeng/gnssppp/pkg/gnssid"
	"github.com/xbfeng/gnssppp/pkg/obs"
)

// Stage is one step of the epoch pipeline. Process may delete
// satellites from data (spec §7: recoverable errors are handled by
// targeted deletion, not by returning an error) or return a
// stage-level error that aborts the remainder of this epoch (spec
// §7's "stage-level errors propagate to the epoch loop").
type Stage interface {
	Name() string
	Process(epoch obs.Epoch, data obs.SatTypeValueMap) error
}

// Pipeline runs an ordered list of Stages over one epoch's data, spec
// §5's "strict sequence with no suspension points inside an epoch".
type Pipeline struct {
	Stages []Stage
}

// Run executes every stage in order. A stage-level error (not a
// per-satellite deletion, which stages handle internally) stops the
// pipeline and is returned to the epoch loop, spec §7.
func (p Pipeline) Run(epoch obs.Epoch, data obs.SatTypeValueMap) error {
	for _, s := range p.Stages {
		if len(data) == 0 {
			// spec §8 boundary: "empty satellite set -> pipeline
			// returns without modifying state".
			return nil
		}
		if err := s.Process(epoch, data); err != nil {
			return err
		}
	}
	return nil
}

// KeepSystems removes every satellite whose system is not in Allowed,
// ported from KeepSystems.cpp.
type KeepSystems struct {
	Allowed gnssid.System
}

func (KeepSystems) Name() string { return "KeepSystems" }

func (k KeepSystems) Process(_ obs.Epoch, data obs.SatTypeValueMap) error {
	for _, sat := range data.Satellites() {
		if k.Allowed&sat.System == 0 {
			delete(data, sat)
		}
	}
	return nil
}

// FilterCode removes satellites whose required code/phase TypeIDs are
// absent, ported from FilterCode.cpp.
type FilterCode struct {
	Required []obs.TypeID
}

func (FilterCode) Name() string { return "FilterCode" }

func (f FilterCode) Process(_ obs.Epoch, data obs.SatTypeValueMap) error {
	for _, sat := range data.Satellites() {
		tvm := data[sat]
		for _, t := range f.Required {
			if !tvm.Has(t) {
				delete(data, sat)
				break
			}
		}
	}
	return nil
}

// RequiredObs filters out satellites missing any per-system required
// observable, ported from RequiredObs.cpp's per-system required-type
// sets.
type RequiredObs struct {
	RequiredBySystem map[gnssid.System][]obs.TypeID
}

func (RequiredObs) Name() string { return "RequiredObs" }

func (r RequiredObs) Process(_ obs.Epoch, data obs.SatTypeValueMap) error {
	for _, sat := range data.Satellites() {
		required, ok := r.RequiredBySystem[sat.System]
		if !ok {
			continue
		}
		tvm := data[sat]
		for _, t := range required {
			if !tvm.Has(t) {
				delete(data, sat)
				break
			}
		}
	}
	return nil
}

// EraseSat removes explicitly excluded satellites (e.g. unhealthy
// BeiDou GEOs when bds2=0), ported from EraseSat.cpp.
type EraseSat struct {
	Excluded map[gnssid.SatID]bool
}

func (EraseSat) Name() string { return "EraseSat" }

func (e EraseSat) Process(_ obs.Epoch, data obs.SatTypeValueMap) error {
	for sat := range e.Excluded {
		delete(data, sat)
	}
	return nil
}

// DecimateData raises errs.EpochDecimatedErr when the current epoch
// falls outside [beginSOD,endSOD] or off the sampling grid, ported
// from DecimateData.cpp's tolerance-gated sampling check. Grounded on
// spec §7: "EpochDecimated ... recoverable locally; the pipeline skips
// the epoch silently" -- the caller (station runner) is expected to
// treat this error kind specially rather than abort.
type DecimateData struct {
	SampleInterval float64
	BeginSOD       float64
	EndSOD         float64
	Tolerance      float64
}

func (DecimateData) Name() string { return "DecimateData" }

func (d DecimateData) Process(epoch obs.Epoch, _ obs.SatTypeValueMap) error {
	tol := d.Tolerance
	if tol == 0 {
		tol = 1e-3
	}
	sod := modFloat(epoch.SOW, 86400)
	if d.EndSOD > 0 && (sod < d.BeginSOD-tol || sod > d.EndSOD+tol) {
		return errs.New(errs.EpochDecimatedErr, "epoch outside configured window")
	}
	if d.SampleInterval > 0 {
		mod := modFloat(epoch.SOW, d.SampleInterval)
		if mod > tol && d.SampleInterval-mod > tol {
			return errs.New(errs.EpochDecimatedErr, "epoch off sampling grid")
		}
	}
	return nil
}

func modFloat(a, b float64) float64 {
	q := float64(int64(a / b))
	return a - q*b
}

// InsufficientObservations raises errs.InsufficientObservationsErr
// when fewer than MinSatellites remain, spec §7.
type InsufficientObservations struct {
	MinSatellites int
}

func (InsufficientObservations) Name() string { return "InsufficientObservations" }

func (m InsufficientObservations) Process(_ obs.Epoch, data obs.SatTypeValueMap) error {
	if len(data) < m.MinSatellites {
		return errs.New(errs.InsufficientObservationsErr, "too few satellites survived filtering")
	}
	return nil
}
