// Package metrics holds the prometheus instruments of the scheduler.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the counters and histograms updated by the store refresher, the
// backend client and the HTTP layer.
type Metrics struct {
	SnapshotRefreshes       *prometheus.CounterVec   // outcome: success, failure
	SnapshotRefreshDuration prometheus.Histogram     // seconds per refresh attempt
	SnapshotAge             prometheus.Gauge         // unix time of the last successful refresh
	BackendRequests         *prometheus.CounterVec   // operation, status
	BackendRequestDuration  *prometheus.HistogramVec // operation
	HTTPRequests            *prometheus.CounterVec   // route, method, code
	HTTPRequestDuration     *prometheus.HistogramVec // route
	ReportGeneration        prometheus.Histogram     // seconds per workbook
}

// New registers the instruments with reg.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		SnapshotRefreshes: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "scheduler_snapshot_refreshes_total",
			Help: "Snapshot refresh attempts by outcome.",
		}, []string{"outcome"}),
		SnapshotRefreshDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "scheduler_snapshot_refresh_duration_seconds",
			Help:    "Duration of snapshot refreshes.",
			Buckets: prometheus.DefBuckets,
		}),
		SnapshotAge: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "scheduler_snapshot_loaded_timestamp_seconds",
			Help: "Unix time of the last successful snapshot refresh.",
		}),
		BackendRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "scheduler_backend_requests_total",
			Help: "Requests sent to the backend API.",
		}, []string{"operation", "status"}),
		BackendRequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scheduler_backend_request_duration_seconds",
			Help:    "Duration of backend API requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		HTTPRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "scheduler_http_requests_total",
			Help: "Requests served by the board API.",
		}, []string{"route", "method", "code"}),
		HTTPRequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scheduler_http_request_duration_seconds",
			Help:    "Duration of board API requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		ReportGeneration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name: "scheduler_report_generation_duration_seconds",
			Help: "Duration of weekly workbook generation.",
		}),
	}
}

// ObserveRefresh records one snapshot refresh.
func (m *Metrics) ObserveRefresh(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SnapshotRefreshes.WithLabelValues(outcome).Inc()
	m.SnapshotRefreshDuration.Observe(elapsed.Seconds())
	if outcome == "success" {
		m.SnapshotAge.SetToCurrentTime()
	}
}

// ObserveBackendRequest records one backend API call. status is the HTTP code or "error".
func (m *Metrics) ObserveBackendRequest(operation, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.BackendRequests.WithLabelValues(operation, status).Inc()
	m.BackendRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveReport records the time spent building a workbook.
func (m *Metrics) ObserveReport(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ReportGeneration.Observe(elapsed.Seconds())
}

// Middleware counts requests under a fixed route label chosen by route.
func (m *Metrics) Middleware(route func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)

			label := "other"
			if route != nil {
				label = route(r)
			}
			m.HTTPRequests.WithLabelValues(label, r.Method, strconv.Itoa(rec.status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
