package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/service-order-scheduler/internal/metrics"
)

func TestNew(_ *testing.T) {
	reg := prometheus.NewRegistry()

	_ = metrics.New(reg)
}

func TestObserveRefresh(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.ObserveRefresh("success", 20*time.Millisecond)
	m.ObserveRefresh("failure", time.Second)
	m.ObserveRefresh("failure", time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotRefreshes.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SnapshotRefreshes.WithLabelValues("failure")))
	assert.Greater(t, testutil.ToFloat64(m.SnapshotAge), 0.0)
}

func TestObserveBackendRequest(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.ObserveBackendRequest("list_employees", "200", 5*time.Millisecond)
	m.ObserveBackendRequest("list_employees", "error", 5*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackendRequests.WithLabelValues("list_employees", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackendRequests.WithLabelValues("list_employees", "error")))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *metrics.Metrics
	m.ObserveRefresh("success", time.Second)
	m.ObserveBackendRequest("login", "204", time.Second)
	m.ObserveReport(time.Second)

	handler := m.Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestMiddlewareCountsByRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	handler := m.Middleware(func(*http.Request) string { return "/board/week" })(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/board/week?department=3", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/board/week", http.MethodGet, "404")))

	families, err := reg.Gather()
	require.NoError(t, err)
	var found bool
	for _, family := range families {
		if family.GetName() == "scheduler_http_request_duration_seconds" {
			found = true
			assert.Equal(t, uint64(1), family.GetMetric()[0].GetHistogram().GetSampleCount())
		}
	}
	assert.True(t, found, "duration histogram should be registered")
}
