package station

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/xbfeng/gnssppp/internal/errs"
	"github.com/xbfeng/gnssppp/internal/metrics"
	"github.com/xbfeng/gnssppp/pkg/cycleslip"
	"github.com/xbfeng/gnssppp/pkg/equation"
	"github.com/xbfeng/gnssppp/pkg/gnssid"
	"github.com/xbfeng/gnssppp/pkg/obs"
	"github.com/xbfeng/gnssppp/pkg/output"
	"github.com/xbfeng/gnssppp/pkg/pipeline"
)

// Station owns one receiver's Filter, arc map, stochastic-model arena,
// and a logrus.Entry, matching the teacher's per-receiver Rtk instance
// (types.go) generalized to a dynamic parameter set (spec §4.4/§4.6).
// It consumes obs.Record values in strictly increasing epoch order
// (spec §5) and drives the pipeline once per record.
type Station struct {
	Marker string
	RunID  uuid.UUID
	Log    *logrus.Entry

	Pipeline pipeline.Pipeline
	Arcs     *cycleslip.Manager
	Arena    *equation.ModelArena
	Solver   *Solver

	// Estimate, when non-nil, is the same *EstimateStage instance
	// installed in Pipeline.Stages -- kept here too so onSolved can
	// read the fix outcome of the epoch that just ran without
	// Pipeline exposing stage internals.
	Estimate *EstimateStage

	Pos   *output.PosWriter
	Trace *output.TraceWriter

	Metrics *metrics.Registry

	lastEpoch    obs.Epoch
	haveEpoch    bool
	epochCounter int
}

// NewStation wires up a Station's bookkeeping. log is expected to
// already carry any caller-level fields (e.g. a batch run ID); NewStation
// additionally stamps "station" and a fresh per-station "run_id",
// grounded on bramburn-gnssgo's per-connection logrus.Fields pattern.
func NewStation(marker string, p pipeline.Pipeline, arena *equation.ModelArena, solver *Solver, log *logrus.Entry) *Station {
	runID := uuid.New()
	return &Station{
		Marker:   marker,
		RunID:    runID,
		Log:      log.WithFields(logrus.Fields{"station": marker, "run_id": runID.String()}),
		Pipeline: p,
		Arcs:     cycleslip.NewManager(),
		Arena:    arena,
		Solver:   solver,
	}
}

// ProcessEpoch validates epoch ordering, runs the pipeline, and reports
// the outcome. A PerEpoch-severity error (EpochDecimated,
// InsufficientObservations) is swallowed into a blank output line and a
// metrics counter, matching spec §7's "epoch loop emits a no-fix marker
// and continues"; a PerStation error is returned for the caller to
// abort this station.
func (s *Station) ProcessEpoch(rec *obs.Record) error {
	if s.haveEpoch && !s.lastEpoch.Before(rec.Epoch) {
		s.Log.WithFields(logrus.Fields{"epoch": rec.Epoch.String()}).
			Warn("out-of-order or duplicate epoch rejected")
		s.recordDrop(errs.EpochDecimatedErr)
		return nil
	}
	s.lastEpoch = rec.Epoch
	s.haveEpoch = true
	s.epochCounter++

	data := rec.Data.Clone()
	err := s.Pipeline.Run(rec.Epoch, data)
	if err == nil {
		s.onSolved(rec, data)
		return nil
	}

	kind := errs.ConfigErr
	var e *errs.Error
	if castErr, ok := err.(*errs.Error); ok {
		e = castErr
		kind = e.Kind
	}
	switch kind {
	case errs.EpochDecimatedErr, errs.InsufficientObservationsErr:
		s.recordDrop(kind)
		if s.Pos != nil {
			_ = s.Pos.WriteBlank(rec.Epoch)
		}
		return nil
	default:
		s.Log.WithError(err).Error("station-level error, aborting")
		return err
	}
}

func (s *Station) recordDrop(kind errs.Kind) {
	if s.Metrics != nil {
		s.Metrics.ObserveDropped(kind.String())
	}
}

// recClockVar/tropoVar/dNVar/dEVar/dUVar are the zero-Sat, zero-Source
// Variables the equation assembler uses for the receiver clock, wet
// troposphere, and ENU position unknowns (pkg/equation/assembler.go);
// reconstructed here with matching identity fields so onSolved can read
// their state back out of the Solver without the estimate stage
// exposing internals.
var (
	recClockVar = equation.Variable{Type: obs.RecClock, TypeOrder: equation.TypeOrderClock}
	tropoVar    = equation.Variable{Type: obs.WetTropo, TypeOrder: equation.TypeOrderTroposphere}
	dNVar       = equation.Variable{Type: obs.DN, TypeOrder: equation.TypeOrderPosition}
	dEVar       = equation.Variable{Type: obs.DE, TypeOrder: equation.TypeOrderPosition}
	dUVar       = equation.Variable{Type: obs.DU, TypeOrder: equation.TypeOrderPosition}
)

// onSolved is called once a record survives the full pipeline. The
// equation-assembly/filter-update work itself happens inside
// EstimateStage, one of Pipeline.Stages; onSolved only reads the
// resulting state back out of Solver to report it (spec §6's .pos/
// .trace output), keeping Station ignorant of the estimation
// algorithm's internals.
func (s *Station) onSolved(rec *obs.Record, data obs.SatTypeValueMap) {
	n := len(data)
	clock, _, _ := s.Solver.State(recClockVar)
	tropo, _, _ := s.Solver.State(tropoVar)
	dN, _, _ := s.Solver.State(dNVar)
	dE, _, _ := s.Solver.State(dEVar)
	dU, _, _ := s.Solver.State(dUVar)

	fixedRatio := 0.0
	fixed := false
	if s.Estimate != nil && len(s.Estimate.LastFixed) > 0 {
		total, ok := 0, 0
		for _, r := range s.Estimate.LastFixed {
			total++
			if r.Fixed {
				ok++
			}
		}
		if total > 0 {
			fixedRatio = float64(ok) / float64(total)
			fixed = ok == total
		}
	}

	if s.Metrics != nil {
		s.Metrics.ObserveEpoch(n, fixedRatio, 0, 0)
	}
	if s.Pos != nil {
		recClock := make(map[gnssid.System]float64)
		for sat := range data {
			recClock[sat.System] = clock
		}
		_ = s.Pos.Write(output.Solution{
			Epoch:      rec.Epoch,
			Position:   [3]float64{dN, dE, dU},
			ENU:        true,
			RecClock:   recClock,
			WetTropo:   tropo,
			Satellites: n,
			Fixed:      fixed,
		})
	}
}
