// Package metrics defines the Prometheus metric collectors used across the
// service and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	SearchQueriesTotal   *prometheus.CounterVec
	SearchLatency        *prometheus.HistogramVec
	SearchResultsCount   prometheus.Histogram
	FacetSelections      *prometheus.CounterVec
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	CircuitBreakerState  *prometheus.GaugeVec
	CatalogShirts        prometheus.Gauge
	CatalogBuckets       *prometheus.GaugeVec
	CatalogBuildDuration prometheus.Histogram
	CatalogBuildsTotal   *prometheus.CounterVec
}

// New creates all metrics and registers them with the default registerer.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates all metrics and registers them with reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "facet_search_queries_total",
				Help: "Total facet searches by result type (hit, zero_result, not_found, invalid, not_ready, error).",
			},
			[]string{"result_type"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "facet_search_latency_seconds",
				Help:    "Facet search latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
			[]string{"cache_status"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "facet_search_results_count",
				Help:    "Number of shirts matched per search.",
				Buckets: []float64{0, 1, 10, 100, 1000, 10000, 100000},
			},
		),
		FacetSelections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "facet_selections_total",
				Help: "Explicitly requested facet values by facet and value.",
			},
			[]string{"facet", "value"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses.",
			},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
			},
			[]string{"name"},
		),
		CatalogShirts: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "catalog_shirts",
				Help: "Number of shirts in the indexed catalog.",
			},
		),
		CatalogBuckets: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "catalog_buckets",
				Help: "Number of size/color buckets by state (total, empty).",
			},
			[]string{"state"},
		),
		CatalogBuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "catalog_build_duration_seconds",
				Help:    "Time spent loading and grouping the catalog.",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
		),
		CatalogBuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_builds_total",
				Help: "Catalog build attempts by status.",
			},
			[]string{"status"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.FacetSelections,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.CircuitBreakerState,
		m.CatalogShirts,
		m.CatalogBuckets,
		m.CatalogBuildDuration,
		m.CatalogBuildsTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
