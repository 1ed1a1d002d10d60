package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initValidationMetrics() {
	r.ValidationRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "archval_validation_runs_total",
			Help: "Total number of validation runs",
		},
		[]string{"strategy", "outcome"},
	)

	r.ValidationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "archval_validation_duration_seconds",
			Help:    "Validation run latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)

	r.ValidationViolations = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "archval_validation_violations",
			Help:    "Violations reported per validation run",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
		[]string{"strategy"},
	)
}

func (r *Registry) initCompilerMetrics() {
	r.CompilationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "archval_compilations_total",
			Help: "Total number of model-to-statement compilations",
		},
		[]string{"style"},
	)

	r.CompiledNodesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "archval_compiled_nodes_total",
			Help: "Total nodes rendered into creation statements",
		},
	)

	r.CompiledEdgesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "archval_compiled_relationships_total",
			Help: "Total relationships rendered into creation statements",
		},
	)
}

func (r *Registry) initStoreMetrics() {
	r.StoreOperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "archval_store_operations_total",
			Help: "Total number of graph store operations",
		},
		[]string{"operation", "status"},
	)

	r.StoreOperationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "archval_store_operation_duration_seconds",
			Help:    "Graph store operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
}
