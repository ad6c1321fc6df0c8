// Package metrics holds the Prometheus instruments for the simulation core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles all counters, gauges, and histograms the core records.
type Metrics struct {
	TickDuration prometheus.Histogram

	IntentsRouted  *prometheus.CounterVec
	IntentsDropped *prometheus.CounterVec

	ScoreCacheHits   prometheus.Counter
	ScoreCacheMisses prometheus.Counter

	ForceApplications prometheus.Counter
	MagnetsActive     prometheus.Gauge

	EventsEmitted *prometheus.CounterVec
}

// New registers the core metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "orbitdeck_tick_duration_seconds",
			Help:    "Time spent inside one simulation tick",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		IntentsRouted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "orbitdeck_intents_routed_total",
			Help: "Client intents applied, by action",
		}, []string{"action"}),
		IntentsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "orbitdeck_intents_dropped_total",
			Help: "Client intents dropped, by reason",
		}, []string{"reason"}),
		ScoreCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "orbitdeck_score_cache_hits_total",
			Help: "Relevance score cache hits",
		}),
		ScoreCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "orbitdeck_score_cache_misses_total",
			Help: "Relevance score cache misses and stale recomputes",
		}),
		ForceApplications: factory.NewCounter(prometheus.CounterOpts{
			Name: "orbitdeck_force_applications_total",
			Help: "Aggregate forces handed to the physics integrator",
		}),
		MagnetsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "orbitdeck_magnets_active",
			Help: "Number of active magnets",
		}),
		EventsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "orbitdeck_events_emitted_total",
			Help: "Outbound state-change notifications, by type",
		}, []string{"type"}),
	}
}

// NewUnregistered returns metrics backed by a private registry, for tests
// and for components constructed without a metrics pipeline.
func NewUnregistered() *Metrics {
	return New(prometheus.NewRegistry())
}
