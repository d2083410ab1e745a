// Package mcmcmetrics exposes Prometheus instrumentation for the sampler:
// per-level evaluation counters, worker occupancy, chain length and tree
// shape, and accept rates.
package mcmcmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the sampler's Prometheus collectors.
type Metrics struct {
	EvaluationsTotal *prometheus.CounterVec
	WorkersActive    prometheus.Gauge
	WorkersTotal     prometheus.Gauge
	ChainLength      prometheus.Gauge
	TreeHeight       prometheus.Gauge
	TreeNodes        prometheus.Gauge
	AcceptRate       *prometheus.GaugeVec
	UnderflowsTotal  *prometheus.CounterVec
	EvaluatorErrors  *prometheus.CounterVec
}

// New registers and returns a fresh Metrics set.
func New() *Metrics {
	return &Metrics{
		EvaluationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mtmlda",
			Subsystem: "sampler",
			Name:      "evaluations_total",
			Help:      "Completed model evaluations, by level.",
		}, []string{"level"}),

		WorkersActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "mtmlda",
			Subsystem: "sampler",
			Name:      "workers_active",
			Help:      "Number of evaluator jobs currently in flight.",
		}),

		WorkersTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "mtmlda",
			Subsystem: "sampler",
			Name:      "workers_total",
			Help:      "Configured size of the worker pool.",
		}),

		ChainLength: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "mtmlda",
			Subsystem: "sampler",
			Name:      "chain_length",
			Help:      "Number of samples accepted into the chain so far.",
		}),

		TreeHeight: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "mtmlda",
			Subsystem: "sampler",
			Name:      "tree_height",
			Help:      "Current height of the proposal tree.",
		}),

		TreeNodes: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "mtmlda",
			Subsystem: "sampler",
			Name:      "tree_nodes",
			Help:      "Current number of nodes in the proposal tree.",
		}),

		AcceptRate: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "mtmlda",
			Subsystem: "sampler",
			Name:      "accept_rate",
			Help:      "Running Metropolis accept-rate estimate, by level.",
		}, []string{"level"}),

		UnderflowsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mtmlda",
			Subsystem: "sampler",
			Name:      "underflows_total",
			Help:      "Nodes pruned for a below-threshold logposterior, by level.",
		}, []string{"level"}),

		EvaluatorErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mtmlda",
			Subsystem: "sampler",
			Name:      "evaluator_errors_total",
			Help:      "Evaluator failures surfaced to the driver, by level.",
		}, []string{"level"}),
	}
}
