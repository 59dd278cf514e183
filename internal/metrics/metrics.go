package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the Prometheus collectors for the storefront API.
type Metrics struct {
	Registry          *prometheus.Registry
	RequestsTotal     *prometheus.CounterVec
	UpstreamDuration  *prometheus.HistogramVec
	UpstreamErrors    *prometheus.CounterVec
	ExtractionMisses  *prometheus.CounterVec
	CacheLookupsTotal *prometheus.CounterVec
}

// New constructs and registers all collectors on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_requests_total",
			Help: "Handled API requests by endpoint and status code.",
		},
		[]string{"endpoint", "status"},
	)
	upstreamDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_upstream_duration_seconds",
			Help:    "Latency of calls to Raindrop and marketplace pages.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"upstream"},
	)
	upstreamErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_upstream_errors_total",
			Help: "Failed upstream calls by upstream and error kind.",
		},
		[]string{"upstream", "kind"},
	)
	misses := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_extraction_misses_total",
			Help: "Scrapes where a field could not be extracted.",
		},
		[]string{"field"},
	)
	cacheLookups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cache_lookups_total",
			Help: "Response cache lookups by result.",
		},
		[]string{"result"},
	)

	registry.MustRegister(requests, upstreamDuration, upstreamErrors, misses, cacheLookups)

	return &Metrics{
		Registry:          registry,
		RequestsTotal:     requests,
		UpstreamDuration:  upstreamDuration,
		UpstreamErrors:    upstreamErrors,
		ExtractionMisses:  misses,
		CacheLookupsTotal: cacheLookups,
	}
}

func (m *Metrics) IncRequest(endpoint, status string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(endpoint, status).Inc()
}

func (m *Metrics) ObserveUpstream(upstream string, d time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamDuration.WithLabelValues(upstream).Observe(d.Seconds())
}

func (m *Metrics) IncUpstreamError(upstream, kind string) {
	if m == nil {
		return
	}
	m.UpstreamErrors.WithLabelValues(upstream, kind).Inc()
}

func (m *Metrics) IncExtractionMiss(field string) {
	if m == nil {
		return
	}
	m.ExtractionMisses.WithLabelValues(field).Inc()
}

func (m *Metrics) IncCacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}
