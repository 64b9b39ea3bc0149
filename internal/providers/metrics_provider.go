package providers

import (
	"artifactd/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncUpstreamRequests(resource string, outcome string)
	IncStaleServes()
	IncFallbackServes()
	ObserveRefreshDuration(duration time.Duration)
	SetDatasetSize(platform string, count int)
}

type MetricsProvider struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	upstreamRequests *prometheus.CounterVec
	staleServes      prometheus.Counter
	fallbackServes   prometheus.Counter
	refreshDuration  prometheus.Histogram
	datasetSize      *prometheus.GaugeVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncUpstreamRequests(resource string, outcome string) {
	m.upstreamRequests.WithLabelValues(resource, outcome).Inc()
}

func (m *MetricsProvider) IncStaleServes() {
	m.staleServes.Inc()
}

func (m *MetricsProvider) IncFallbackServes() {
	m.fallbackServes.Inc()
}

func (m *MetricsProvider) ObserveRefreshDuration(duration time.Duration) {
	m.refreshDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) SetDatasetSize(platform string, count int) {
	m.datasetSize.WithLabelValues(platform).Set(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "artifactd_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "artifactd_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "artifactd_cache_hits_total",
			Help: "Total number of response cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "artifactd_cache_misses_total",
			Help: "Total number of response cache misses",
		}),

		upstreamRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "artifactd_upstream_requests_total",
			Help: "Upstream API requests by resource and outcome",
		}, []string{"resource", "outcome"}),

		staleServes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "artifactd_stale_serves_total",
			Help: "Requests answered from a stale dataset after an upstream failure",
		}),

		fallbackServes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "artifactd_fallback_serves_total",
			Help: "Requests answered from the hardcoded fallback dataset",
		}),

		refreshDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "artifactd_refresh_duration_seconds",
			Help:    "Duration of full dataset refresh cycles in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		datasetSize: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "artifactd_dataset_size",
			Help: "Number of classified artifact records per platform",
		}, []string{"platform"}),
	}

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                  {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration)  {}
func (n *noopMetrics) IncCacheHits()                                     {}
func (n *noopMetrics) IncCacheMisses()                                   {}
func (n *noopMetrics) IncUpstreamRequests(_ string, _ string)            {}
func (n *noopMetrics) IncStaleServes()                                   {}
func (n *noopMetrics) IncFallbackServes()                                {}
func (n *noopMetrics) ObserveRefreshDuration(_ time.Duration)            {}
func (n *noopMetrics) SetDatasetSize(_ string, _ int)                    {}
