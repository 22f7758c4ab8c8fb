package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics for the lifecycle service.
type Registry struct {
	OutcomesLogged  *prometheus.CounterVec
	OutcomesDropped prometheus.Counter

	TrainingRuns  *prometheus.CounterVec
	Promotions    *prometheus.CounterVec
	DriftChecks   *prometheus.CounterVec
	BanditRewards *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewRegistry creates a registry with every lifecycle metric registered.
func NewRegistry() *Registry {
	r := &Registry{
		OutcomesLogged: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modellab_outcomes_logged_total",
				Help: "Total trade outcomes accepted into the log, by mode",
			},
			[]string{"mode"},
		),

		OutcomesDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "modellab_outcomes_dropped_total",
				Help: "Outcome writes rejected or failed",
			},
		),

		TrainingRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modellab_training_runs_total",
				Help: "Training attempts by mode and result status",
			},
			[]string{"mode", "status"},
		),

		Promotions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modellab_promotions_total",
				Help: "Promotion gate decisions by mode and verdict",
			},
			[]string{"mode", "verdict"},
		),

		DriftChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modellab_drift_checks_total",
				Help: "Drift detections by verdict",
			},
			[]string{"verdict"},
		),

		BanditRewards: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modellab_bandit_rewards_total",
				Help: "Bandit reward updates by strategy",
			},
			[]string{"strategy"},
		),

		registry: prometheus.NewRegistry(),
	}

	r.registry.MustRegister(
		r.OutcomesLogged,
		r.OutcomesDropped,
		r.TrainingRuns,
		r.Promotions,
		r.DriftChecks,
		r.BanditRewards,
	)

	return r
}

// Handler returns the /metrics HTTP handler for this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
