package observability

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequestIncrementsCounterAndHistogram(t *testing.T) {
	m := NewMetrics()
	m.ObserveRequest("2xx", 0.01)
	m.ObserveRequest("2xx", 0.02)
	m.ObserveRequest("5xx", 0.5)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("2xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("5xx")))
}

func TestSetCacheHitRatioComputesFraction(t *testing.T) {
	m := NewMetrics()
	m.SetCacheHitRatio(3, 4)
	assert.InDelta(t, 0.75, testutil.ToFloat64(m.CacheHitRatio), 0.0001)
}

func TestSetCacheHitRatioZeroTotalIsZero(t *testing.T) {
	m := NewMetrics()
	m.SetCacheHitRatio(0, 0)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.CacheHitRatio))
}

func TestSetWorkerUtilizationComputesFraction(t *testing.T) {
	m := NewMetrics()
	m.SetWorkerUtilization(3, 6)
	assert.InDelta(t, 0.5, testutil.ToFloat64(m.WorkerUtil), 0.0001)
}

func TestSetWorkerUtilizationZeroTargetIsZero(t *testing.T) {
	m := NewMetrics()
	m.SetWorkerUtilization(5, 0)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.WorkerUtil))
}

func TestSetQueueDepthTracksPerPriorityGauge(t *testing.T) {
	m := NewMetrics()
	m.SetQueueDepth("critical", 7)
	assert.Equal(t, float64(7), testutil.ToFloat64(m.TaskQueueDepth.WithLabelValues("critical")))
}

func TestHandlerServesExpositionFormat(t *testing.T) {
	m := NewMetrics()
	m.ObserveRequest("2xx", 0.01)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "catzilla_http_requests_total")
}
