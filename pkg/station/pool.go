package station

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/xbfeng/gnssppp/pkg/obs"
)

// Source feeds one station's observation records in strictly
// increasing epoch order, terminating the channel when exhausted.
type Source interface {
	Records() <-chan *obs.Record
}

// Pool fans out N stations concurrently, one goroutine per station,
// sharing one immutable StoreBundle constructed before fan-out (spec
// §5: "stations parallel via shared immutable stores"), grounded on the
// teacher's own app/gnssgo_app tree pulling in golang.org/x/sync/
// errgroup for exactly this per-connection fan-out shape.
type Pool struct {
	Stores *StoreBundle
	Log    *logrus.Entry
}

// Job pairs one Station with the Source driving it.
type Job struct {
	St     *Station
	Feed   Source
}

// Run drives every job's Station to completion concurrently. Each
// goroutine returns nil to errgroup, so one station's failure does not
// cancel its siblings (spec §5/§7: station errors are scoped per
// station, not a hard-stop on the whole pool); instead each job's error
// is stored at its index in the returned slice, nil for a station that
// finished cleanly.
func (p *Pool) Run(ctx context.Context, jobs []Job) []error {
	errsOut := make([]error, len(jobs))
	g, _ := errgroup.WithContext(ctx)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			errsOut[i] = runStation(job)
			return nil
		})
	}
	_ = g.Wait()
	return errsOut
}

func runStation(job Job) error {
	for rec := range job.Feed.Records() {
		if err := job.St.ProcessEpoch(rec); err != nil {
			job.St.Log.WithError(err).Error("station aborted")
			return err
		}
	}
	return nil
}

// NewJob pairs a Station with its Source, exported so callers outside
// this package can build a job slice for Pool.Run.
func NewJob(st *Station, feed Source) Job { return Job{St: st, Feed: feed} }
