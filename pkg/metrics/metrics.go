// Package metrics exposes Prometheus instrumentation for the validation
// service.
package metrics

import (
	"runtime"
	"time"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordValidation records one validation run. Outcome is "valid" or
// "invalid"; violations is the number of errors the run reported.
func (r *Registry) RecordValidation(strategy string, valid bool, violations int, duration time.Duration) {
	outcome := "valid"
	if !valid {
		outcome = "invalid"
	}
	r.ValidationRunsTotal.WithLabelValues(strategy, outcome).Inc()
	r.ValidationDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	r.ValidationViolations.WithLabelValues(strategy).Observe(float64(violations))
}

// RecordCompilation records one model compilation.
func (r *Registry) RecordCompilation(style string, nodes, relationships int) {
	r.CompilationsTotal.WithLabelValues(style).Inc()
	r.CompiledNodesTotal.Add(float64(nodes))
	r.CompiledEdgesTotal.Add(float64(relationships))
}

// RecordStoreOperation records a graph store operation
func (r *Registry) RecordStoreOperation(operation, status string, duration time.Duration) {
	r.StoreOperationsTotal.WithLabelValues(operation, status).Inc()
	r.StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateSystemMetrics refreshes the process-level gauges.
func (r *Registry) UpdateSystemMetrics(startTime time.Time) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	r.UptimeSeconds.Set(time.Since(startTime).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
	r.MemorySysBytes.Set(float64(m.Sys))
}
