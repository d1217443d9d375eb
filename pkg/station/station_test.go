package station

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xbfeng/gnssppp/internal/metrics"
	"github.com/xbfeng/gnssppp/pkg/equation"
	"github.com/xbfeng/gnssppp/pkg/gnssid"
	"github.com/xbfeng/gnssppp/pkg/obs"
	"github.com/xbfeng/gnssppp/pkg/output"
	"github.com/xbfeng/gnssppp/pkg/pipeline"
)

func newTestStation(p pipeline.Pipeline) (*Station, *bytes.Buffer) {
	log := logrus.NewEntry(logrus.New())
	arena := equation.NewModelArena()
	solver := NewSolver(8, arena)
	st := NewStation("TEST", p, arena, solver, log)
	st.Metrics = metrics.NewRegistry("TEST")
	var buf bytes.Buffer
	st.Pos = output.NewPosWriter(&buf, []gnssid.System{gnssid.SysGPS})
	return st, &buf
}

func TestProcessEpochRunsPipelineAndWritesSolution(t *testing.T) {
	p := pipeline.Pipeline{}
	st, buf := newTestStation(p)

	rec := &obs.Record{Epoch: obs.Epoch{Week: 2200, SOW: 0}, Data: obs.NewSatTypeValueMap()}
	rec.Data[gnssid.SatID{System: gnssid.SysGPS, PRN: 1}] = obs.NewTypeValueMap()

	require.NoError(t, st.ProcessEpoch(rec))
	assert.Contains(t, buf.String(), "2200")
}

func TestProcessEpochRejectsDuplicateEpoch(t *testing.T) {
	p := pipeline.Pipeline{}
	st, _ := newTestStation(p)

	rec := &obs.Record{Epoch: obs.Epoch{Week: 2200, SOW: 0}, Data: obs.NewSatTypeValueMap()}
	require.NoError(t, st.ProcessEpoch(rec))
	require.NoError(t, st.ProcessEpoch(rec)) // duplicate, swallowed not errored
	assert.Equal(t, 1, st.epochCounter)
}

func TestProcessEpochSwallowsInsufficientObservationsAsBlankLine(t *testing.T) {
	p := pipeline.Pipeline{Stages: []pipeline.Stage{
		pipeline.InsufficientObservations{MinSatellites: 4},
	}}
	st, buf := newTestStation(p)

	rec := &obs.Record{Epoch: obs.Epoch{Week: 2200, SOW: 0}, Data: obs.NewSatTypeValueMap()}
	rec.Data[gnssid.SatID{System: gnssid.SysGPS, PRN: 1}] = obs.NewTypeValueMap()

	err := st.ProcessEpoch(rec)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "no-fix")
}

type sliceSource struct {
	recs []*obs.Record
}

func (s *sliceSource) Records() <-chan *obs.Record {
	ch := make(chan *obs.Record)
	go func() {
		defer close(ch)
		for _, r := range s.recs {
			ch <- r
		}
	}()
	return ch
}

func TestPoolRunProcessesAllStationsConcurrently(t *testing.T) {
	p := pipeline.Pipeline{}
	st1, _ := newTestStation(p)
	st2, _ := newTestStation(p)

	rec := func(sow float64) *obs.Record {
		return &obs.Record{Epoch: obs.Epoch{Week: 2200, SOW: sow}, Data: obs.NewSatTypeValueMap()}
	}
	jobs := []Job{
		NewJob(st1, &sliceSource{recs: []*obs.Record{rec(0), rec(30)}}),
		NewJob(st2, &sliceSource{recs: []*obs.Record{rec(0), rec(30)}}),
	}

	pool := &Pool{}
	errs := pool.Run(context.Background(), jobs)
	for _, e := range errs {
		assert.NoError(t, e)
	}
	assert.Equal(t, 2, st1.epochCounter)
	assert.Equal(t, 2, st2.epochCounter)
}
