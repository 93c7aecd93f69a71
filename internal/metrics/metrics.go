package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	PullsTotal        *prometheus.CounterVec
	EntriesPopulated  prometheus.Counter
	EntriesSkipped    prometheus.Counter
	LeasesReclaimed   prometheus.Counter
	LifecycleTotal    *prometheus.CounterVec
	PullLatency       prometheus.Histogram
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PullsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queue_pulls_total",
			Help: "Total dequeue attempts, labelled hit or miss.",
		}, []string{"result"}),

		EntriesPopulated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "queue_entries_populated_total",
			Help: "Total queue entries inserted by populate calls.",
		}),

		EntriesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "queue_entries_skipped_total",
			Help: "Total populate candidates dropped (suppressed, already queued, or phone-ineligible).",
		}),

		LeasesReclaimed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "queue_leases_reclaimed_total",
			Help: "Total expired leases returned to the backlog by the sweep.",
		}),

		LifecycleTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queue_lifecycle_transitions_total",
			Help: "Entry lifecycle transitions by outcome (in_progress, completed, removed, released).",
		}, []string{"transition"}),

		PullLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "queue_pull_seconds",
			Help:    "Latency of the atomic dequeue transaction.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.PullsTotal,
		m.EntriesPopulated,
		m.EntriesSkipped,
		m.LeasesReclaimed,
		m.LifecycleTotal,
		m.PullLatency,
	)

	return m
}
