// Package metrics exposes the per-epoch telemetry the teacher's own
// app/gnssgo_app go.mod pulls prometheus/client_golang in for (pushing
// epoch stats to InfluxDB/Elastic sinks). Spec §6 treats metrics as an
// external, unspecified sink; this package gives any long-running PPP
// server the same counters/gauges without inventing a push protocol.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry bundles the gauges/counters one Station reports per epoch.
// A distinct Registry per station (each built with its own
// prometheus.NewRegistry via NewRegistry) avoids label collisions
// between concurrently running stations.
type Registry struct {
	reg *prometheus.Registry

	Epochs        prometheus.Counter
	Satellites    prometheus.Gauge
	FixedRatio    prometheus.Gauge
	PostfitRMS    prometheus.Gauge
	PDOP          prometheus.Gauge
	DroppedEpochs *prometheus.CounterVec
}

// NewRegistry builds a Registry with all metrics labeled by station.
func NewRegistry(station string) *Registry {
	reg := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"station": station}

	r := &Registry{
		reg: reg,
		Epochs: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "gnssppp_epochs_processed_total",
			Help:        "Number of epochs successfully processed.",
			ConstLabels: constLabels,
		}),
		Satellites: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "gnssppp_satellites_used",
			Help:        "Number of satellites used in the most recent epoch's solution.",
			ConstLabels: constLabels,
		}),
		FixedRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "gnssppp_ambiguity_fixed_ratio",
			Help:        "Fraction of ambiguities fixed in the most recent epoch.",
			ConstLabels: constLabels,
		}),
		PostfitRMS: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "gnssppp_postfit_rms_meters",
			Help:        "Postfit residual RMS of the most recent epoch, in meters.",
			ConstLabels: constLabels,
		}),
		PDOP: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "gnssppp_pdop",
			Help:        "Position dilution of precision of the most recent epoch.",
			ConstLabels: constLabels,
		}),
		DroppedEpochs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "gnssppp_epochs_dropped_total",
			Help:        "Number of epochs dropped, labeled by error kind.",
			ConstLabels: constLabels,
		}, []string{"kind"}),
	}

	reg.MustRegister(r.Epochs, r.Satellites, r.FixedRatio, r.PostfitRMS, r.PDOP, r.DroppedEpochs)
	return r
}

// Registerer exposes the underlying registry so a caller can serve it
// over /metrics without this package depending on net/http.
func (r *Registry) Registerer() *prometheus.Registry { return r.reg }

// ObserveEpoch records one successfully processed epoch's summary
// statistics.
func (r *Registry) ObserveEpoch(satellites int, fixedRatio, postfitRMS, pdop float64) {
	r.Epochs.Inc()
	r.Satellites.Set(float64(satellites))
	r.FixedRatio.Set(fixedRatio)
	r.PostfitRMS.Set(postfitRMS)
	r.PDOP.Set(pdop)
}

// ObserveDropped records an epoch that did not produce a solution,
// labeled by the errs.Kind string that caused the drop.
func (r *Registry) ObserveDropped(kind string) {
	r.DroppedEpochs.WithLabelValues(kind).Inc()
}
