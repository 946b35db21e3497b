package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors the runtime core updates as it
// serves requests, per spec.md §4.11. Each Catzilla app owns one Metrics,
// backed by its own registry rather than the global default so multiple
// apps in the same process never collide.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	CacheHitRatio       prometheus.Gauge
	StaticCacheHitRatio prometheus.Gauge

	TaskQueueDepth   *prometheus.GaugeVec
	WorkerUtil       prometheus.Gauge
}

// NewMetrics builds and registers the full collector set on a fresh
// registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catzilla",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests served, partitioned by status class.",
		}, []string{"status_class"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "catzilla",
			Name:      "http_request_duration_seconds",
			Help:      "Request latency in seconds, used to derive p50/p95/p99.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status_class"}),
		CacheHitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "catzilla",
			Name:      "cache_hit_ratio",
			Help:      "Rolling L1+L2 cache hit ratio.",
		}),
		StaticCacheHitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "catzilla",
			Name:      "static_cache_hit_ratio",
			Help:      "Rolling hit ratio of the hot-file cache backing the static server.",
		}),
		TaskQueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "catzilla",
			Name:      "task_queue_depth",
			Help:      "Pending background tasks, partitioned by priority level.",
		}, []string{"priority"}),
		WorkerUtil: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "catzilla",
			Name:      "worker_utilization",
			Help:      "Fraction of the current worker pool target that is actively running a task.",
		}),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.CacheHitRatio,
		m.StaticCacheHitRatio,
		m.TaskQueueDepth,
		m.WorkerUtil,
	)
	return m
}

// ObserveRequest records one served HTTP request's status class and
// latency.
func (m *Metrics) ObserveRequest(statusClass string, seconds float64) {
	m.RequestsTotal.WithLabelValues(statusClass).Inc()
	m.RequestDuration.WithLabelValues(statusClass).Observe(seconds)
}

// SetCacheHitRatio updates the L1+L2 cache gauge from a hits/total sample.
func (m *Metrics) SetCacheHitRatio(hits, total uint64) {
	m.CacheHitRatio.Set(ratio(hits, total))
}

// SetStaticCacheHitRatio updates the static hot-file cache gauge from a
// hits/total sample.
func (m *Metrics) SetStaticCacheHitRatio(hits, total uint64) {
	m.StaticCacheHitRatio.Set(ratio(hits, total))
}

// SetQueueDepth records the pending task count for one priority level.
func (m *Metrics) SetQueueDepth(priority string, depth int) {
	m.TaskQueueDepth.WithLabelValues(priority).Set(float64(depth))
}

// SetWorkerUtilization records running/target as a fraction in [0,1].
func (m *Metrics) SetWorkerUtilization(running, target int) {
	if target <= 0 {
		m.WorkerUtil.Set(0)
		return
	}
	m.WorkerUtil.Set(float64(running) / float64(target))
}

// Handler exposes the registry in the standard Prometheus exposition
// format, mountable at a configurable path (e.g. "/metrics").
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func ratio(hits, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
