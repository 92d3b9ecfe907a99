// Package metrics provides Prometheus metrics for the token planner service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Planner
	plansBuilt    *prometheus.CounterVec
	planLatency   prometheus.Histogram
	tokensPlanned prometheus.Histogram
	planErrors    prometheus.Counter
	setCoverRuns  *prometheus.CounterVec

	// Submissions
	progressSubmitted prometheus.Counter
	progressDuplicate prometheus.Counter
	storedUsers       prometheus.Gauge

	// Cache
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueue       prometheus.Counter
	queueDequeue       prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the Record*/Update* helpers

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals

func init() { //nolint:gochecknoinits
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "letokens",
		subsystem:        "planner",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

func (m *Manager) initializeMetrics() {
	m.plansBuilt = m.counterVec("plans_built_total", "Plans built, by trigger (request or worker)", "source")
	m.planLatency = m.histogram("plan_latency_milliseconds", "Time to build a plan report in milliseconds", m.histogramBuckets)
	m.tokensPlanned = m.histogram("tokens_planned", "Tokens in each built plan",
		[]float64{0, 5, 10, 25, 50, 100, 150, 200, 300})
	m.planErrors = m.counter("plan_errors_total", "Plans that failed to build")
	m.setCoverRuns = m.counterVec("set_cover_runs_total", "Minimum-token searches, by outcome", "outcome")

	m.progressSubmitted = m.counter("progress_submitted_total", "Accepted progress submissions")
	m.progressDuplicate = m.counter("progress_duplicate_total", "Progress submissions dropped as duplicates")
	m.storedUsers = m.gauge("stored_users", "Users with stored progress")

	m.cacheHits = m.counterVec("cache_hits_total", "Cache hits by cache name", "cache")
	m.cacheMisses = m.counterVec("cache_misses_total", "Cache misses by cache name", "cache")

	m.queueSize = m.gauge("queue_size", "Replan jobs waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum replan queue capacity")
	m.queueEnqueue = m.counter("queue_enqueue_total", "Replan jobs enqueued")
	m.queueDequeue = m.counter("queue_dequeue_total", "Replan jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Replan jobs rejected by a full or closed queue")

	m.workerCount = m.gauge("worker_count", "Configured replan workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Workers currently building a plan")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds",
		"Time a worker spends on one replan job", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Replan jobs that failed")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total", "HTTP errors by endpoint",
		"endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordPlanBuilt records one built plan, its latency and its size.
func RecordPlanBuilt(source string, latencyMs float64, tokens int) {
	globalManager.plansBuilt.WithLabelValues(source).Inc()
	globalManager.planLatency.Observe(latencyMs)
	globalManager.tokensPlanned.Observe(float64(tokens))
}

// RecordPlanError increments the plan error counter.
func RecordPlanError() {
	globalManager.planErrors.Inc()
}

// RecordSetCover records a minimum-token search; solved reports whether a cover existed.
func RecordSetCover(solved bool) {
	outcome := "unsolvable"
	if solved {
		outcome = "solved"
	}
	globalManager.setCoverRuns.WithLabelValues(outcome).Inc()
}

// RecordProgressSubmitted increments accepted submissions.
func RecordProgressSubmitted() {
	globalManager.progressSubmitted.Inc()
}

// RecordProgressDuplicate increments duplicate submissions.
func RecordProgressDuplicate() {
	globalManager.progressDuplicate.Inc()
}

// UpdateStoredUsers sets the number of users with stored progress.
func UpdateStoredUsers(count int) {
	globalManager.storedUsers.Set(float64(count))
}

// RecordCacheHit increments the hit counter of the named cache.
func RecordCacheHit(cache string) {
	globalManager.cacheHits.WithLabelValues(cache).Inc()
}

// RecordCacheMiss increments the miss counter of the named cache.
func RecordCacheMiss(cache string) {
	globalManager.cacheMisses.WithLabelValues(cache).Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueue.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeue.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint increments the HTTP error counter of an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
