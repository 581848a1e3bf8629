// Package metrics provides Prometheus metrics for the OrientBot service.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// latencyBuckets in milliseconds, sized for remote translation calls.
var latencyBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Business metrics
	evaluations      *prometheus.CounterVec
	evaluationAvg    prometheus.Histogram
	feedback         *prometheus.CounterVec
	feedbackFallback *prometheus.CounterVec

	// Collaborator metrics
	collaboratorCalls   *prometheus.CounterVec
	collaboratorLatency *prometheus.HistogramVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec
	httpRateLimited     prometheus.Counter

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// global pairs the active manager with the registry it registered on.
type global struct {
	manager  *Manager
	registry *prometheus.Registry
}

// current is swapped by Configure; recorders always read the latest pair.
var current atomic.Pointer[global] //nolint:gochecknoglobals // intentional global for singleton metrics manager

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	Configure()
}

// Configure replaces the global manager with one built from opts on a fresh
// custom registry, so that the default Go collectors stay out. Call it at
// startup before serving /metrics.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	opts = append(opts[:len(opts):len(opts)], WithPrometheusRegistry(registry))
	current.Store(&global{manager: NewManager(opts...), registry: registry})
}

func mgr() *Manager {
	return current.Load().manager
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "orientbot",
		subsystem:        "advisor",
		histogramBuckets: latencyBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.evaluations = auto.NewCounterVec(
		m.counterOpts("evaluations_total", "Score evaluations by track and verdict"),
		[]string{"track", "verdict"},
	)
	m.evaluationAvg = auto.NewHistogram(
		m.histogramOpts("evaluation_average", "Distribution of computed score averages", []float64{2, 4, 6, 8, 10, 12, 14, 16, 18, 20}),
	)
	m.feedback = auto.NewCounterVec(
		m.counterOpts("feedback_total", "Classified feedback by class"),
		[]string{"class", "translated"},
	)
	m.feedbackFallback = auto.NewCounterVec(
		m.counterOpts("feedback_fallback_total", "Feedback answered with the fallback message, by error kind"),
		[]string{"kind"},
	)

	m.collaboratorCalls = auto.NewCounterVec(
		m.counterOpts("collaborator_calls_total", "Calls to translation and sentiment collaborators by result"),
		[]string{"collaborator", "op", "result"},
	)
	m.collaboratorLatency = auto.NewHistogramVec(
		m.histogramOpts("collaborator_latency_milliseconds", "Collaborator call latency in milliseconds", m.histogramBuckets),
		[]string{"collaborator", "op"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpErrors = auto.NewCounterVec(
		m.counterOpts("http_errors_total", "HTTP error responses by endpoint and error type"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.httpRateLimited = auto.NewCounter(
		m.counterOpts("http_rate_limited_total", "Requests rejected by the rate limiter"),
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds", []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// RecordEvaluation counts one evaluation; avg is observed only when computed.
func RecordEvaluation(track, verdict string, avg float64, computed bool) {
	mgr().evaluations.WithLabelValues(track, verdict).Inc()
	if computed {
		mgr().evaluationAvg.Observe(avg)
	}
}

// RecordFeedback counts one classified piece of feedback.
func RecordFeedback(class string, translated bool) {
	t := "false"
	if translated {
		t = "true"
	}
	mgr().feedback.WithLabelValues(class, t).Inc()
}

// RecordFeedbackFallback counts a fallback answer caused by an error of kind.
func RecordFeedbackFallback(kind string) {
	mgr().feedbackFallback.WithLabelValues(kind).Inc()
}

// RecordCollaboratorCall counts a collaborator call and observes its latency.
func RecordCollaboratorCall(collaborator, op, result string, latencyMs float64) {
	mgr().collaboratorCalls.WithLabelValues(collaborator, op, result).Inc()
	mgr().collaboratorLatency.WithLabelValues(collaborator, op).Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	mgr().httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	mgr().httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordHTTPError records an error response.
func RecordHTTPError(endpoint, method, errorType string) {
	mgr().httpErrors.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordRateLimited counts a request rejected by the rate limiter.
func RecordRateLimited() {
	mgr().httpRateLimited.Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	mgr().systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	mgr().systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	mgr().systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return current.Load().registry
}
