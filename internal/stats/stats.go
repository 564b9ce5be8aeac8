// Package stats exposes Prometheus instrumentation for the engine.
//
// A nil *Metrics is valid everywhere and records nothing, so callers
// never branch on whether instrumentation is enabled.
package stats

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics bundles the engine's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal *prometheus.CounterVec
	pagesFetched  *prometheus.CounterVec
	worksResolved prometheus.Counter
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	walkDuration  prometheus.Histogram
	inFlight      prometheus.Gauge
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jourq_catalog_requests_total",
			Help: "Catalog HTTP requests by catalog and outcome.",
		}, []string{"catalog", "outcome"}),
		pagesFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jourq_pages_fetched_total",
			Help: "Paginated result pages fetched by catalog.",
		}, []string{"catalog"}),
		worksResolved: factory.NewCounter(prometheus.CounterOpts{
			Name: "jourq_works_resolved_total",
			Help: "Single-work lookups that returned a record.",
		}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "jourq_work_cache_hits_total",
			Help: "Resolved-work cache hits.",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "jourq_work_cache_misses_total",
			Help: "Resolved-work cache misses.",
		}),
		walkDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "jourq_citation_walk_seconds",
			Help:    "Duration of complete citing-works walks.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "jourq_enrichment_in_flight",
			Help: "Works currently being enriched by the worker pool.",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest counts one catalog HTTP request.
func (m *Metrics) RecordRequest(catalog, outcome string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(catalog, outcome).Inc()
}

// RecordPage counts one fetched result page.
func (m *Metrics) RecordPage(catalog string) {
	if m == nil {
		return
	}
	m.pagesFetched.WithLabelValues(catalog).Inc()
}

// RecordWorkResolved counts one successful single-work lookup.
func (m *Metrics) RecordWorkResolved() {
	if m == nil {
		return
	}
	m.worksResolved.Inc()
}

// RecordCacheHit counts one resolved-work cache hit.
func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

// RecordCacheMiss counts one resolved-work cache miss.
func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}

// ObserveWalk records the duration of one citing-works walk in seconds.
func (m *Metrics) ObserveWalk(seconds float64) {
	if m == nil {
		return
	}
	m.walkDuration.Observe(seconds)
}

// EnrichmentStarted marks one work entering the pool.
func (m *Metrics) EnrichmentStarted() {
	if m == nil {
		return
	}
	m.inFlight.Inc()
}

// EnrichmentDone marks one work leaving the pool.
func (m *Metrics) EnrichmentDone() {
	if m == nil {
		return
	}
	m.inFlight.Dec()
}
