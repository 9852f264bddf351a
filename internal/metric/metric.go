// Package metric holds the Prometheus instrumentation for the service.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains the service-level metrics.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ValuesIngested  prometheus.Counter

	registry *prometheus.Registry
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "senselog",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "senselog",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		ValuesIngested: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "senselog",
				Subsystem: "ingest",
				Name:      "values_total",
				Help:      "Total number of sensor values accepted",
			},
		),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(m.RequestsTotal, m.RequestDuration, m.ValuesIngested)
	return m
}

// Handler returns the HTTP handler serving the Prometheus text exposition.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
