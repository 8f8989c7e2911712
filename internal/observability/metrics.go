// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the dashboard.
type Metrics struct {
	// Run load metrics
	RunLoadsTotal   *prometheus.CounterVec
	RunLoadDuration prometheus.Histogram
	IntegrityErrors *prometheus.CounterVec

	// Store metrics
	StoreQueryDuration *prometheus.HistogramVec
	StoreQueryErrors   *prometheus.CounterVec

	// Transport metrics
	HTTPRequests      *prometheus.CounterVec
	WebsocketSessions prometheus.Gauge

	// Health metrics
	LastSuccessfulLoad prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "sim_dashboard"
	}

	return &Metrics{
		RunLoadsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "run_loads_total",
			Help:      "Total number of run loads by outcome",
		}, []string{"outcome"}),
		RunLoadDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "run_load_duration_seconds",
			Help:      "Duration of a full run load (store reads and transformation)",
			Buckets:   prometheus.DefBuckets,
		}),
		IntegrityErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "integrity_errors_total",
			Help:      "Total number of data integrity errors by offending field",
		}, []string{"field"}),

		StoreQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "query_duration_seconds",
			Help:      "Record store query duration by backend and operation",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"backend", "operation"}),
		StoreQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "query_errors_total",
			Help:      "Total number of record store query errors",
		}, []string{"backend", "operation"}),

		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		WebsocketSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "websocket_sessions",
			Help:      "Number of open websocket sessions",
		}),

		LastSuccessfulLoad: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_load_timestamp",
			Help:      "Unix timestamp of last successful run load",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordRunLoad records one run load with its outcome.
func RecordRunLoad(outcome string, durationSeconds float64) {
	DefaultMetrics.RunLoadsTotal.WithLabelValues(outcome).Inc()
	DefaultMetrics.RunLoadDuration.Observe(durationSeconds)
	if outcome == "ok" {
		DefaultMetrics.LastSuccessfulLoad.Set(float64(time.Now().Unix()))
	}
}

// RecordIntegrityError counts a data integrity failure on field.
func RecordIntegrityError(field string) {
	DefaultMetrics.IntegrityErrors.WithLabelValues(field).Inc()
}

// RecordStoreQuery records record store query metrics.
func RecordStoreQuery(backend, operation string, seconds float64, err error) {
	DefaultMetrics.StoreQueryDuration.WithLabelValues(backend, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.StoreQueryErrors.WithLabelValues(backend, operation).Inc()
	}
}

// RecordHTTPRequest counts one served request.
func RecordHTTPRequest(route, code string) {
	DefaultMetrics.HTTPRequests.WithLabelValues(route, code).Inc()
}

// WebsocketOpened increments the open websocket session gauge.
func WebsocketOpened() {
	DefaultMetrics.WebsocketSessions.Inc()
}

// WebsocketClosed decrements the open websocket session gauge.
func WebsocketClosed() {
	DefaultMetrics.WebsocketSessions.Dec()
}
