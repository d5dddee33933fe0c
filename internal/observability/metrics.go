// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request outcomes used as the "outcome" label.
const (
	OutcomeOK               = "ok"
	OutcomeUnreachable      = "unreachable"
	OutcomeUnexpectedStatus = "unexpected_status"
	OutcomeInvalidResponse  = "invalid_response"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Client metrics
	CacheRequests        *prometheus.CounterVec
	CacheRequestDuration *prometheus.HistogramVec

	// Walker metrics
	WalkerRuns        *prometheus.CounterVec
	WalkerLastSuccess prometheus.Gauge

	// Storage metrics
	StorageWrites *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg creates unregistered collectors.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "semperland_cache"
	}

	factory := promauto.With(reg)

	return &Metrics{
		CacheRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Total number of cache requests by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		CacheRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Cache request latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),

		WalkerRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "walker",
			Name:      "runs_total",
			Help:      "Total number of walks by status",
		}, []string{"status"}),
		WalkerLastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "walker",
			Name:      "last_success_timestamp",
			Help:      "Unix timestamp of last successful walk",
		}),

		StorageWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "writes_total",
			Help:      "Total number of snapshot writes by store and status",
		}, []string{"store", "status"}),
	}
}

// RecordRequest records one cache request.
func (m *Metrics) RecordRequest(endpoint, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.CacheRequests.WithLabelValues(endpoint, outcome).Inc()
	m.CacheRequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// RecordWalkerRun records a finished walk.
func (m *Metrics) RecordWalkerRun(err error, finishedAt time.Time) {
	if m == nil {
		return
	}
	if err != nil {
		m.WalkerRuns.WithLabelValues("error").Inc()
		return
	}
	m.WalkerRuns.WithLabelValues("ok").Inc()
	m.WalkerLastSuccess.Set(float64(finishedAt.Unix()))
}

// RecordStorageWrite records a snapshot write.
func (m *Metrics) RecordStorageWrite(store string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.StorageWrites.WithLabelValues(store, status).Inc()
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
