// Package metrics exposes simulation counters through a Prometheus
// registry, so long batch runs can be watched from the standard tooling.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metrics for the simulator.
type Registry struct {
	// Trial metrics
	TrialsTotal   *prometheus.CounterVec
	TrialDuration *prometheus.HistogramVec
	OutcomesTotal *prometheus.CounterVec

	// Engine metrics
	AnnouncementsTotal *prometheus.CounterVec

	// Graph metrics
	GraphASes  prometheus.Gauge
	GraphRanks prometheus.Gauge

	// Orchestrator metrics
	WorkersActive prometheus.Gauge

	registry *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all metrics initialized.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initTrialMetrics()
	r.initEngineMetrics()
	r.initGraphMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

func (r *Registry) initTrialMetrics() {
	r.TrialsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bgpsim_trials_total",
			Help: "Total number of trials executed",
		},
		[]string{"attack", "status"},
	)

	r.TrialDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bgpsim_trial_duration_seconds",
			Help:    "Single trial duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
		[]string{"attack"},
	)

	r.OutcomesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bgpsim_outcome_ases_total",
			Help: "Total ASes classified per outcome across all trials",
		},
		[]string{"attack", "policy", "outcome"},
	)
}

func (r *Registry) initEngineMetrics() {
	r.AnnouncementsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bgpsim_announcements_total",
			Help: "Announcements handled by import, by verdict",
		},
		[]string{"verdict"},
	)
}

func (r *Registry) initGraphMetrics() {
	r.GraphASes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "bgpsim_graph_ases",
			Help: "Number of ASes in the loaded topology",
		},
	)

	r.GraphRanks = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "bgpsim_graph_ranks",
			Help: "Number of propagation rank levels in the loaded topology",
		},
	)

	r.WorkersActive = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "bgpsim_workers_active",
			Help: "Worker goroutines currently running trials",
		},
	)
}
