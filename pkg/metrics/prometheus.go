// Package metrics exposes Prometheus instrumentation for the sport index.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector of the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	registry       prometheus.Registerer

	// Transport
	fetchAttempts *prometheus.CounterVec
	fetchRetries  *prometheus.CounterVec
	fetchFailures *prometheus.CounterVec
	fetchLatency  prometheus.Histogram

	// Walker
	walkerPages      prometheus.Counter
	walkerItems      prometheus.Counter
	walkerEarlyStops *prometheus.CounterVec

	// Normalization
	incidentsClassified  *prometheus.CounterVec
	incidentsUnknown     prometheus.Counter
	periodsNotApplicable prometheus.Counter

	// Facade
	degradations *prometheus.CounterVec

	// HTTP API
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var globalManager *Manager //nolint:gochecknoglobals // package-level recorders delegate here

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global recorders must be usable without setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a Manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "sportindex",
		subsystem:      "core",
		latencyBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.fetchAttempts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_attempts_total",
		Help:      "Upstream GET attempts by outcome",
	}, []string{"outcome"})

	m.fetchRetries = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_retries_total",
		Help:      "Retries scheduled after a retryable upstream response",
	}, []string{"reason"})

	m.fetchFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_failures_total",
		Help:      "Fetches that ended in a typed failure",
	}, []string{"kind"})

	m.fetchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_duration_seconds",
		Help:      "Wall-clock duration of a whole fetch including politeness and backoff waits",
		Buckets:   m.latencyBuckets,
	})

	m.walkerPages = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "walker_pages_total",
		Help:      "Pages requested by the paginated walker",
	})

	m.walkerItems = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "walker_items_total",
		Help:      "Items accepted by the paginated walker",
	})

	m.walkerEarlyStops = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "walker_stops_total",
		Help:      "Walks terminated by reason",
	}, []string{"reason"})

	m.incidentsClassified = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "incidents_classified_total",
		Help:      "Incidents classified by discriminator",
	}, []string{"type"})

	m.incidentsUnknown = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "incidents_unknown_total",
		Help:      "Incidents with an unrecognised discriminator",
	})

	m.periodsNotApplicable = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "periods_not_applicable_total",
		Help:      "Events without a declared period count",
	})

	m.degradations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "facade_degradations_total",
		Help:      "Upstream failures degraded to empty results by operation",
	}, []string{"operation", "kind"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP API requests by route, method and status",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP API request duration",
		Buckets:   m.latencyBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordFetchAttempt counts one upstream GET attempt.
func RecordFetchAttempt(outcome string) {
	globalManager.fetchAttempts.WithLabelValues(outcome).Inc()
}

// RecordFetchRetry counts a scheduled retry.
func RecordFetchRetry(reason string) {
	globalManager.fetchRetries.WithLabelValues(reason).Inc()
}

// RecordFetchFailure counts a fetch that ended in a typed failure.
func RecordFetchFailure(kind string) {
	globalManager.fetchFailures.WithLabelValues(kind).Inc()
}

// RecordFetchDuration observes a whole fetch duration in seconds.
func RecordFetchDuration(seconds float64) {
	globalManager.fetchLatency.Observe(seconds)
}

// RecordWalkerPage counts a requested page.
func RecordWalkerPage() {
	globalManager.walkerPages.Inc()
}

// RecordWalkerItems counts accepted items.
func RecordWalkerItems(n int) {
	globalManager.walkerItems.Add(float64(n))
}

// RecordWalkerStop counts a walk termination.
func RecordWalkerStop(reason string) {
	globalManager.walkerEarlyStops.WithLabelValues(reason).Inc()
}

// RecordIncidentClassified counts a classified incident.
func RecordIncidentClassified(incidentType string) {
	globalManager.incidentsClassified.WithLabelValues(incidentType).Inc()
}

// RecordIncidentUnknown counts an unrecognised incident.
func RecordIncidentUnknown() {
	globalManager.incidentsUnknown.Inc()
}

// RecordPeriodsNotApplicable counts an event without period structure.
func RecordPeriodsNotApplicable() {
	globalManager.periodsNotApplicable.Inc()
}

// RecordDegradation counts an upstream failure swallowed by the facade.
func RecordDegradation(operation, kind string) {
	globalManager.degradations.WithLabelValues(operation, kind).Inc()
}

// RecordHTTPRequest counts an API request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes an API request duration in seconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, seconds float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(seconds)
}

// Configure rebuilds the global recorders on a fresh registry with opts.
// Call it once at startup, before any recorder or GetRegistry is used.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	globalManager = NewManager(append(opts, WithPrometheusRegistry(registry))...)
	customRegistry = registry
}

// GetRegistry returns the registry the global recorders are attached to.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
