// Package metrics holds the Prometheus instruments for one service instance
// and serves the pull-based text exposition feed.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/faultmesh/faultmesh/internal/fault"
	"github.com/faultmesh/faultmesh/internal/health"
)

// Metrics holds all Prometheus metrics for a service instance. Each instance
// gets its own registry so multiple services can run in one test process.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ErrorsTotal     *prometheus.CounterVec

	CPUUsagePercent prometheus.Gauge
	MemoryUsageMB   prometheus.Gauge
	LeakedMemoryMB  prometheus.Gauge
	ActiveFaults    prometheus.Gauge
}

// New creates and registers all metrics for the named service. The registry
// includes the process and Go collectors so the feed carries
// process_cpu_seconds_total and process_resident_memory_bytes.
func New(service string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	labels := prometheus.Labels{"service": service}
	m := &Metrics{
		registry: reg,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "path", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency in seconds",
			ConstLabels: labels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "path"}),
		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "errors_total",
			Help:        "Total errors",
			ConstLabels: labels,
		}, []string{"error_type"}),
		CPUUsagePercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "cpu_usage_percent",
			Help:        "Derived CPU usage percentage",
			ConstLabels: labels,
		}),
		MemoryUsageMB: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "memory_usage_mb",
			Help:        "Derived memory usage in MB",
			ConstLabels: labels,
		}),
		LeakedMemoryMB: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "leaked_memory_mb",
			Help:        "Cumulative intentionally leaked memory in MB",
			ConstLabels: labels,
		}),
		ActiveFaults: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "active_faults",
			Help:        "Number of currently active injected faults",
			ConstLabels: labels,
		}),
	}
	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.ErrorsTotal,
		m.CPUUsagePercent,
		m.MemoryUsageMB,
		m.LeakedMemoryMB,
		m.ActiveFaults,
	)
	return m
}

// Handler serves the text exposition feed for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry. Test hook.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// UpdateFromFaults refreshes the derived gauges from the current fault
// snapshot. Expired faults drop out because the snapshot already excludes
// them.
func (m *Metrics) UpdateFromFaults(reg *fault.Registry) {
	snap := reg.Snapshot()
	h := health.Evaluate(snap, health.RuntimeBaseline())

	m.CPUUsagePercent.Set(h.CPUPercent)
	m.MemoryUsageMB.Set(h.MemoryMB)
	m.LeakedMemoryMB.Set(float64(snap.LeakedMB))
	m.ActiveFaults.Set(float64(len(snap.Faults)))
}

// StartUpdater refreshes the derived gauges on a fixed interval until the
// context is cancelled. Wall-clock driven so the feed reflects fault expiry
// with no traffic arriving.
func (m *Metrics) StartUpdater(ctx context.Context, reg *fault.Registry, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.UpdateFromFaults(reg)
			}
		}
	}()
}
