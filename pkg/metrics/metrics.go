// Package metrics provides Prometheus metrics for the AGMMR rating service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the rating service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Rating pipeline metrics.
	matchesProcessed  prometheus.Counter
	matchesInvalid    prometheus.Counter
	matchesRejected   prometheus.Counter
	matchesDuplicate  prometheus.Counter
	placements        prometheus.Counter
	reprocessRuns     prometheus.Counter
	processDuration   prometheus.Histogram
	reprocessDuration prometheus.Histogram

	// State gauges.
	queueSize      prometheus.Gauge
	playersTracked prometheus.Gauge
	ratingsTracked prometheus.Gauge

	// HTTP metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets custom histogram buckets for duration metrics.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithRegistry sets a custom Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
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
		namespace:        "agmmr",
		subsystem:        "rating",
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
	factory := promauto.With(m.registry)

	m.matchesProcessed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_processed_total",
		Help:      "Total number of matches processed into rating updates.",
	})
	m.matchesInvalid = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_invalid_total",
		Help:      "Total number of matches suppressed by the validity gate.",
	})
	m.matchesRejected = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_rejected_total",
		Help:      "Total number of matches rejected for invalid team composition.",
	})
	m.matchesDuplicate = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_duplicate_total",
		Help:      "Total number of duplicate match submissions suppressed.",
	})
	m.placements = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "placements_total",
		Help:      "Total number of first-match placements computed.",
	})
	m.reprocessRuns = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reprocess_runs_total",
		Help:      "Total number of full-history reprocess runs.",
	})
	m.processDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "match_process_duration_ms",
		Help:      "Duration of single-match processing in milliseconds.",
		Buckets:   m.histogramBuckets,
	})
	m.reprocessDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reprocess_duration_ms",
		Help:      "Duration of full-history reprocess runs in milliseconds.",
		Buckets:   m.histogramBuckets,
	})

	m.queueSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current number of match submissions waiting in the queue.",
	})
	m.playersTracked = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "players_tracked",
		Help:      "Current number of players tracked by the repository.",
	})
	m.ratingsTracked = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ratings_tracked",
		Help:      "Current number of skill ratings held by the store.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests by endpoint, method, and status.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request duration in milliseconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers operating on the global manager.

// RecordMatchProcessed increments the processed-match counter.
func RecordMatchProcessed() { globalManager.matchesProcessed.Inc() }

// RecordMatchInvalid increments the gate-suppressed-match counter.
func RecordMatchInvalid() { globalManager.matchesInvalid.Inc() }

// RecordMatchRejected increments the rejected-match counter.
func RecordMatchRejected() { globalManager.matchesRejected.Inc() }

// RecordMatchDuplicate increments the duplicate-submission counter.
func RecordMatchDuplicate() { globalManager.matchesDuplicate.Inc() }

// RecordPlacement increments the placement counter.
func RecordPlacement() { globalManager.placements.Inc() }

// RecordReprocessRun increments the reprocess-run counter.
func RecordReprocessRun() { globalManager.reprocessRuns.Inc() }

// RecordProcessDuration records a single-match processing duration.
func RecordProcessDuration(ms float64) { globalManager.processDuration.Observe(ms) }

// RecordReprocessDuration records a full reprocess duration.
func RecordReprocessDuration(ms float64) { globalManager.reprocessDuration.Observe(ms) }

// UpdateQueueSize sets the current submission queue size.
func UpdateQueueSize(n int) { globalManager.queueSize.Set(float64(n)) }

// UpdatePlayersTracked sets the current tracked-player count.
func UpdatePlayersTracked(n int) { globalManager.playersTracked.Set(float64(n)) }

// UpdateRatingsTracked sets the current tracked-rating count.
func UpdateRatingsTracked(n int) { globalManager.ratingsTracked.Set(float64(n)) }

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration records an HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}
