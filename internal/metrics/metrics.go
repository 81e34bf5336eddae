// Package metrics exposes Prometheus instrumentation for workflow sessions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values for OperationsTotal.
const (
	ResultOK    = "ok"
	ResultNoop  = "noop"
	ResultError = "error"
)

// Metrics groups the collectors recorded by a session. Each instance owns
// its own registry so tests and multiple apps never collide on the global
// default registerer.
type Metrics struct {
	registry *prometheus.Registry

	OperationsTotal   *prometheus.CounterVec
	TransitionsTotal  *prometheus.CounterVec
	RelaxationPasses  prometheus.Histogram
	PersistenceErrors *prometheus.CounterVec
	Nodes             *prometheus.GaugeVec
	Edges             *prometheus.GaugeVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepflow_operations_total",
				Help: "Total number of workflow operations by kind and result",
			},
			[]string{"operation", "result"},
		),
		TransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepflow_status_transitions_total",
				Help: "Total number of node status transitions",
			},
			[]string{"from", "to"},
		),
		RelaxationPasses: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stepflow_relaxation_passes",
				Help:    "Relaxation passes needed per completion toggle",
				Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
			},
		),
		PersistenceErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepflow_persistence_errors_total",
				Help: "Total number of failed load, save or delete calls",
			},
			[]string{"call"},
		),
		Nodes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stepflow_nodes",
				Help: "Current number of nodes per workflow",
			},
			[]string{"workflow"},
		),
		Edges: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stepflow_edges",
				Help: "Current number of edges per workflow",
			},
			[]string{"workflow"},
		),
	}

	m.registry.MustRegister(
		m.OperationsTotal,
		m.TransitionsTotal,
		m.RelaxationPasses,
		m.PersistenceErrors,
		m.Nodes,
		m.Edges,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveOperation counts one operation.
func (m *Metrics) ObserveOperation(operation, result string) {
	m.OperationsTotal.WithLabelValues(operation, result).Inc()
}

// ObserveTransition counts one status transition.
func (m *Metrics) ObserveTransition(from, to string) {
	m.TransitionsTotal.WithLabelValues(from, to).Inc()
}

// ObserveSize records the current graph size of a workflow.
func (m *Metrics) ObserveSize(workflow string, nodes, edges int) {
	m.Nodes.WithLabelValues(workflow).Set(float64(nodes))
	m.Edges.WithLabelValues(workflow).Set(float64(edges))
}
