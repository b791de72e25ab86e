// Package metrics provides Prometheus metrics for the pick'em scoring engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Aggregation metrics - the core of the engine.
	leaderboardComputations prometheus.Counter
	computationDuration     prometheus.Histogram
	usersAggregated         prometheus.Gauge
	racesAggregated         prometheus.Gauge

	// Resolution metrics - picks resolved and picks skipped by reason.
	picksResolved prometheus.Counter
	picksSkipped  *prometheus.CounterVec

	// Cache metrics.
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	cacheEvictions prometheus.Counter

	// Store metrics.
	storeQueryLatency *prometheus.HistogramVec
	storeErrors       prometheus.Counter

	// HTTP metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics.
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "backmarker",
		subsystem:        "pickem",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.leaderboardComputations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_computations_total",
		Help:      "Total number of full season aggregation passes",
	})

	m.computationDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "computation_duration_milliseconds",
		Help:      "Histogram of season aggregation duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.usersAggregated = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "users_aggregated",
		Help:      "Number of users included in the most recent aggregation pass",
	})

	m.racesAggregated = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "races_aggregated",
		Help:      "Number of distinct races referenced by the most recent aggregation pass",
	})

	m.picksResolved = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "picks_resolved_total",
		Help:      "Total number of picks resolved to a score line",
	})

	m.picksSkipped = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "picks_skipped_total",
			Help:      "Total number of picks skipped during resolution, by reason",
		},
		[]string{"reason"},
	)

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_hits_total",
		Help:      "Total number of season snapshot cache hits",
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_misses_total",
		Help:      "Total number of season snapshot cache misses (including expiries)",
	})

	m.cacheEvictions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_evictions_total",
		Help:      "Total number of expired or malformed snapshots dropped from the cache",
	})

	m.storeQueryLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "store_query_latency_milliseconds",
			Help:      "Histogram of pick store query latency in milliseconds, by query",
			Buckets:   m.histogramBuckets,
		},
		[]string{"query"},
	)

	m.storeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_errors_total",
		Help:      "Total number of pick store failures surfaced to callers",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current heap allocation in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})
}

// Package-level helpers operating on the global manager.

// RecordLeaderboardComputation records one full aggregation pass.
func RecordLeaderboardComputation() {
	globalManager.leaderboardComputations.Inc()
}

// RecordComputationDuration records the duration of an aggregation pass.
func RecordComputationDuration(durationMs float64) {
	globalManager.computationDuration.Observe(durationMs)
}

// UpdateUsersAggregated records how many users the last pass covered.
func UpdateUsersAggregated(count int) {
	globalManager.usersAggregated.Set(float64(count))
}

// UpdateRacesAggregated records how many races the last pass referenced.
func UpdateRacesAggregated(count int) {
	globalManager.racesAggregated.Set(float64(count))
}

// RecordPickResolved records a pick resolved to a score line.
func RecordPickResolved() {
	globalManager.picksResolved.Inc()
}

// RecordPickSkipped records a pick skipped during resolution.
func RecordPickSkipped(reason string) {
	globalManager.picksSkipped.WithLabelValues(reason).Inc()
}

// RecordCacheHit records a snapshot cache hit.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss records a snapshot cache miss.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// RecordCacheEviction records a dropped snapshot.
func RecordCacheEviction() {
	globalManager.cacheEvictions.Inc()
}

// RecordStoreQueryLatency records the latency of a pick store query.
func RecordStoreQueryLatency(query string, latencyMs float64) {
	globalManager.storeQueryLatency.WithLabelValues(query).Observe(latencyMs)
}

// RecordStoreError records a pick store failure.
func RecordStoreError() {
	globalManager.storeErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records the duration of an HTTP request.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateSystemMemoryUsage records the current heap allocation.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount records the current goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom registry for serving /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
