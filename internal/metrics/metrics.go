// Package metrics holds the Prometheus instruments for catalog syncs and the
// HTTP API.
package metrics

import (
	"strconv"
	"time"

	"github.com/andresuchdata/wenku/backend-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "wenku"

// Sync run outcomes.
const (
	RunSucceeded = "success"
	RunFailed    = "failed"
	RunRejected  = "rejected"
)

type Metrics struct {
	SyncRuns          *prometheus.CounterVec // wenku_sync_runs_total{status}
	SyncObjects       *prometheus.CounterVec // wenku_sync_objects_total{result}
	SyncDuration      prometheus.Histogram
	LastSyncTimestamp prometheus.Gauge

	HTTPRequests *prometheus.CounterVec // wenku_http_requests_total{method,route,status}
	HTTPDuration *prometheus.HistogramVec
}

// New registers all instruments with registry. Nil means the default registry.
func New(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		SyncRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Catalog sync runs by outcome",
		}, []string{"status"}),

		SyncObjects: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_objects_total",
			Help:      "Bucket objects handled by catalog syncs, by result",
		}, []string{"result"}),

		SyncDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Wall time of catalog sync runs",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),

		LastSyncTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sync_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful catalog sync",
		}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served",
		}, []string{"method", "route", "status"}),

		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// ObserveSync records one finished run. result may be partial when err is set.
func (m *Metrics) ObserveSync(result *domain.SyncRunResult, elapsed time.Duration, err error) {
	if m == nil {
		return
	}

	status := RunSucceeded
	if err != nil {
		status = RunFailed
	}
	m.SyncRuns.WithLabelValues(status).Inc()
	m.SyncDuration.Observe(elapsed.Seconds())

	if result != nil {
		m.SyncObjects.WithLabelValues("inserted").Add(float64(result.Inserted))
		m.SyncObjects.WithLabelValues("updated").Add(float64(result.Updated))
		m.SyncObjects.WithLabelValues("skipped").Add(float64(result.Skipped))
		m.SyncObjects.WithLabelValues("failed").Add(float64(len(result.Errors)))
	}
	if err == nil {
		m.LastSyncTimestamp.SetToCurrentTime()
	}
}

// RejectSync counts a trigger refused because another run was active.
func (m *Metrics) RejectSync() {
	if m == nil {
		return
	}
	m.SyncRuns.WithLabelValues(RunRejected).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
