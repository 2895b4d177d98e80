package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tokenviz/bubblegraph/pkg/errors"
	"github.com/tokenviz/bubblegraph/pkg/pipeline"
)

// metrics holds the Prometheus instruments for the service. Each Server
// owns its own registry so tests can spin up servers independently.
type metrics struct {
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	errorsByCode   *prometheus.CounterVec
	cacheHits      *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bubblegraph_requests_total",
			Help: "HTTP requests by path and status code.",
		}, []string{"path", "status"}),
		errorsByCode: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bubblegraph_errors_total",
			Help: "Failed requests by pipeline error code.",
		}, []string{"code"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bubblegraph_cache_hits_total",
			Help: "Cache hits and misses by pipeline stage.",
		}, []string{"stage", "hit"}),
		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bubblegraph_render_duration_seconds",
			Help:    "End-to-end pipeline duration by output format.",
			Buckets: prometheus.DefBuckets,
		}, []string{"format"}),
	}

	m.registry.MustRegister(
		m.requests,
		m.errorsByCode,
		m.cacheHits,
		m.renderDuration,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *metrics) observeRequest(path string, status int) {
	m.requests.WithLabelValues(path, strconv.Itoa(status)).Inc()
}

func (m *metrics) observeError(code errors.Code) {
	m.errorsByCode.WithLabelValues(string(code)).Inc()
}

func (m *metrics) observeRender(format string, d time.Duration) {
	m.renderDuration.WithLabelValues(format).Observe(d.Seconds())
}

func (m *metrics) observeCache(info pipeline.CacheInfo) {
	m.cacheHits.WithLabelValues("map", strconv.FormatBool(info.MapHit)).Inc()
	m.cacheHits.WithLabelValues("scene", strconv.FormatBool(info.SceneHit)).Inc()
	m.cacheHits.WithLabelValues("render", strconv.FormatBool(info.RenderHit)).Inc()
}
