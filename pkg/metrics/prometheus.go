// Package metrics provides Prometheus metrics for the tally service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Tabulation
	tabulationRuns     *prometheus.CounterVec
	tabulationDuration *prometheus.HistogramVec
	tabulationWarnings *prometheus.CounterVec

	// Score intake
	scoresSubmitted prometheus.Counter
	scoresReplaced  prometheus.Counter
	scoresRejected  *prometheus.CounterVec

	// Store state
	contestantsTotal prometheus.Gauge
	scoresTotal      prometheus.Gauge
	storeLatency     *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors and runtime
	errorRateByComponent *prometheus.CounterVec
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tally",
		subsystem:        "tabulation",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one block per collector
	auto := promauto.With(m.registry)

	m.tabulationRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "runs_total",
		Help:        "Tabulation runs by kind (ranking, standings)",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.tabulationDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_duration_seconds",
		Help:        "Time spent fetching and tabulating a snapshot",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.tabulationWarnings = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "warnings_total",
		Help:        "Input problems repaired or ignored during tabulation",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.scoresSubmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "scores",
		Name:        "submitted_total",
		Help:        "Score sheets accepted",
		ConstLabels: m.constLabels,
	})

	m.scoresReplaced = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "scores",
		Name:        "replaced_total",
		Help:        "Accepted score sheets that replaced an earlier submission",
		ConstLabels: m.constLabels,
	})

	m.scoresRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "scores",
		Name:        "rejected_total",
		Help:        "Score sheets rejected by reason",
		ConstLabels: m.constLabels,
	}, []string{"reason"})

	m.contestantsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "store",
		Name:        "contestants",
		Help:        "Contestants in the store",
		ConstLabels: m.constLabels,
	})

	m.scoresTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "store",
		Name:        "scores",
		Help:        "Score entries in the store",
		ConstLabels: m.constLabels,
	})

	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "store",
		Name:        "operation_duration_seconds",
		Help:        "Store operation latency by backend and operation",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"backend", "operation"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "requests_total",
		Help:        "HTTP requests by route, method and status",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "request_duration_seconds",
		Help:        "HTTP request latency",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Name:        "errors_total",
		Help:        "Errors by component and type",
		ConstLabels: m.constLabels,
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "memory_bytes",
		Help:        "Heap bytes in use",
		ConstLabels: m.constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "goroutines",
		Help:        "Number of goroutines",
		ConstLabels: m.constLabels,
	})
}

// Tabulation

// RecordTabulation counts one run of kind and its duration in seconds.
func (m *Manager) RecordTabulation(kind string, seconds float64) {
	m.tabulationRuns.WithLabelValues(kind).Inc()
	m.tabulationDuration.WithLabelValues(kind).Observe(seconds)
}

// RecordTabulationWarning counts one warning of kind.
func (m *Manager) RecordTabulationWarning(kind string) {
	m.tabulationWarnings.WithLabelValues(kind).Inc()
}

// Score intake

// RecordScoreSubmitted counts an accepted sheet.
func (m *Manager) RecordScoreSubmitted(replaced bool) {
	m.scoresSubmitted.Inc()
	if replaced {
		m.scoresReplaced.Inc()
	}
}

// RecordScoreRejected counts a rejected sheet.
func (m *Manager) RecordScoreRejected(reason string) {
	m.scoresRejected.WithLabelValues(reason).Inc()
}

// Store

// UpdateStoreTotals sets the contestant and score gauges.
func (m *Manager) UpdateStoreTotals(contestants, scores int) {
	m.contestantsTotal.Set(float64(contestants))
	m.scoresTotal.Set(float64(scores))
}

// RecordStoreLatency observes one store operation.
func (m *Manager) RecordStoreLatency(backend, operation string, seconds float64) {
	m.storeLatency.WithLabelValues(backend, operation).Observe(seconds)
}

// HTTP

// RecordHTTPRequest counts a request and observes its duration in seconds.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, seconds float64) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(seconds)
}

// Errors and runtime

// RecordErrorByComponent counts an error.
func (m *Manager) RecordErrorByComponent(component, errorType string) {
	m.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystem sets the runtime gauges.
func (m *Manager) UpdateSystem(memoryBytes uint64, goroutines int) {
	m.systemMemoryUsage.Set(float64(memoryBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
}

// Package-level helpers backed by the global manager.

// RecordTabulation counts a tabulation run on the global manager.
func RecordTabulation(kind string, seconds float64) {
	globalManager.RecordTabulation(kind, seconds)
}

// RecordTabulationWarning counts a tabulation warning on the global manager.
func RecordTabulationWarning(kind string) {
	globalManager.RecordTabulationWarning(kind)
}

// RecordScoreSubmitted counts an accepted sheet on the global manager.
func RecordScoreSubmitted(replaced bool) {
	globalManager.RecordScoreSubmitted(replaced)
}

// RecordScoreRejected counts a rejected sheet on the global manager.
func RecordScoreRejected(reason string) {
	globalManager.RecordScoreRejected(reason)
}

// UpdateStoreTotals sets the store gauges on the global manager.
func UpdateStoreTotals(contestants, scores int) {
	globalManager.UpdateStoreTotals(contestants, scores)
}

// RecordStoreLatency observes a store operation on the global manager.
func RecordStoreLatency(backend, operation string, seconds float64) {
	globalManager.RecordStoreLatency(backend, operation, seconds)
}

// RecordHTTPRequest records an HTTP request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, seconds float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, seconds)
}

// RecordErrorByComponent counts an error on the global manager.
func RecordErrorByComponent(component, errorType string) {
	globalManager.RecordErrorByComponent(component, errorType)
}

// UpdateSystem sets the runtime gauges on the global manager.
func UpdateSystem(memoryBytes uint64, goroutines int) {
	globalManager.UpdateSystem(memoryBytes, goroutines)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
