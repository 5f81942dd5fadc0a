// Package metrics provides Prometheus metrics for the skillboard service.
package metrics

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval    = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

// Outcome label values shared by the upstream, sign-in and profile series.
const (
	OutcomeSuccess      = "success"
	OutcomeUnauthorized = "unauthorized"
	OutcomeError        = "error"
)

// Manager owns the collectors for one registry.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec

	// Platform calls
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec

	// Dashboard outcomes
	signIns              *prometheus.CounterVec
	profileBuilds        *prometheus.CounterVec
	profileBuildLatency  prometheus.Histogram
	transactionsByKind   *prometheus.CounterVec
	lastAuditRatio       prometheus.Gauge
	lastProfileBuildUnix prometheus.Gauge

	// Runtime
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the Record* helpers

// Custom registry to avoid default Go metrics. Configure swaps it together
// with globalManager.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide metrics registry

var globalMu sync.RWMutex //nolint:gochecknoglobals // guards customRegistry and globalManager

func init() { //nolint:gochecknoinits // global metrics setup
	m, err := NewManager(WithPrometheusRegistry(customRegistry))
	if err != nil {
		panic(err)
	}
	globalManager = m
}

// NewManager creates the collectors and registers them on the configured
// registry (prometheus.DefaultRegisterer unless overridden).
func NewManager(opts ...Option) (*Manager, error) {
	m := &Manager{
		namespace:        "skillboard",
		subsystem:        "dashboard",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.initializeMetrics(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) initializeMetrics() error {
	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")
	m.httpErrors = m.counterVec("http_errors_total",
		"HTTP responses with a 4xx or 5xx status", "endpoint", "method", "error_type")

	m.upstreamRequests = m.counterVec("upstream_requests_total",
		"Calls made to the learning platform by operation and outcome", "operation", "outcome")
	m.upstreamLatency = m.histogramVec("upstream_latency_milliseconds",
		"Learning platform call latency in milliseconds", "operation", "outcome")

	m.signIns = m.counterVec("signins_total", "Sign-in attempts by outcome", "outcome")
	m.profileBuilds = m.counterVec("profile_builds_total", "Profile builds by outcome", "outcome")
	m.profileBuildLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "profile_build_latency_milliseconds",
		Help:    "End to end profile build latency in milliseconds",
		Buckets: m.histogramBuckets,
	})
	m.transactionsByKind = m.counterVec("transactions_total",
		"Transactions classified while building profiles", "kind")
	m.lastAuditRatio = m.gauge("last_audit_ratio", "Audit ratio of the most recently built profile")
	m.lastProfileBuildUnix = m.gauge("last_profile_build_unix", "Unix time of the most recent profile build")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "system_gc_pause_time_milliseconds",
		Help:    "Average GC pause time in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})

	collectors := map[string]prometheus.Collector{
		"http_requests_total":                m.httpRequests,
		"http_request_duration_milliseconds": m.httpRequestDuration,
		"http_errors_total":                  m.httpErrors,
		"upstream_requests_total":            m.upstreamRequests,
		"upstream_latency_milliseconds":      m.upstreamLatency,
		"signins_total":                      m.signIns,
		"profile_builds_total":               m.profileBuilds,
		"profile_build_latency_milliseconds": m.profileBuildLatency,
		"transactions_total":                 m.transactionsByKind,
		"last_audit_ratio":                   m.lastAuditRatio,
		"last_profile_build_unix":            m.lastProfileBuildUnix,
		"system_memory_usage_bytes":          m.systemMemoryUsage,
		"system_goroutine_count":             m.systemGoroutineCount,
		"system_gc_pause_time_milliseconds":  m.systemGCPauseTime,
	}
	for name, c := range collectors {
		if err := m.registry.Register(c); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrRegister, name, err)
		}
	}
	return nil
}

// ObserveHTTP records one served request.
func (m *Manager) ObserveHTTP(endpoint, method, statusCode, errorType string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	if errorType != "" {
		m.httpErrors.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// ObserveUpstream records one call to the learning platform.
func (m *Manager) ObserveUpstream(operation, outcome string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.upstreamRequests.WithLabelValues(operation, outcome).Inc()
	m.upstreamLatency.WithLabelValues(operation, outcome).Observe(latencyMs)
}

// ObserveSignIn counts a sign-in attempt.
func (m *Manager) ObserveSignIn(outcome string) {
	if !m.enabled {
		return
	}
	m.signIns.WithLabelValues(outcome).Inc()
}

// ObserveProfileBuild counts a profile build and, on success, publishes
// its audit ratio.
func (m *Manager) ObserveProfileBuild(outcome string, latencyMs, auditRatio float64) {
	if !m.enabled {
		return
	}
	m.profileBuilds.WithLabelValues(outcome).Inc()
	m.profileBuildLatency.Observe(latencyMs)
	if outcome == OutcomeSuccess {
		m.lastAuditRatio.Set(auditRatio)
		m.lastProfileBuildUnix.Set(float64(time.Now().Unix()))
	}
}

// ObserveTransactions adds n classified transactions of kind.
func (m *Manager) ObserveTransactions(kind string, n int) {
	if !m.enabled || n <= 0 {
		return
	}
	m.transactionsByKind.WithLabelValues(kind).Add(float64(n))
}

// UpdateSystem samples runtime memory, goroutine and GC statistics.
func (m *Manager) UpdateSystem() {
	if !m.enabled {
		return
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.systemMemoryUsage.Set(float64(ms.Alloc))
	m.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
	if ms.NumGC > 0 {
		m.systemGCPauseTime.Observe(float64(ms.PauseTotalNs) / float64(ms.NumGC) / nanosecondsPerMillisecond)
	}
}

// RunSystemUpdater calls UpdateSystem every refresh interval until ctx ends.
func (m *Manager) RunSystemUpdater(ctx context.Context) {
	ticker := time.NewTicker(m.refreshInterval)
	defer ticker.Stop()
	m.UpdateSystem()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.UpdateSystem()
		}
	}
}

// Configure rebuilds the global manager with opts on a fresh registry.
// Handlers built from GetRegistry before the call keep serving the old one,
// so call it during startup.
func Configure(opts ...Option) error {
	registry := prometheus.NewRegistry()
	m, err := NewManager(append(append([]Option(nil), opts...), WithPrometheusRegistry(registry))...)
	if err != nil {
		return err
	}
	globalMu.Lock()
	customRegistry, globalManager = registry, m
	globalMu.Unlock()
	return nil
}

func global() *Manager {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalManager
}

// Global helpers write to the manager bound to GetRegistry().

// RecordHTTPRequest records an HTTP request; errorType is empty for successes.
func RecordHTTPRequest(endpoint, method, statusCode, errorType string, durationMs float64) {
	global().ObserveHTTP(endpoint, method, statusCode, errorType, durationMs)
}

// RecordUpstreamCall records a learning platform call.
func RecordUpstreamCall(operation, outcome string, latencyMs float64) {
	global().ObserveUpstream(operation, outcome, latencyMs)
}

// RecordSignIn counts a sign-in attempt.
func RecordSignIn(outcome string) {
	global().ObserveSignIn(outcome)
}

// RecordProfileBuild counts a profile build.
func RecordProfileBuild(outcome string, latencyMs, auditRatio float64) {
	global().ObserveProfileBuild(outcome, latencyMs, auditRatio)
}

// RecordTransactions adds classified transactions of kind.
func RecordTransactions(kind string, n int) {
	global().ObserveTransactions(kind, n)
}

// StartSystemUpdater runs the global manager's runtime sampler until ctx ends.
func StartSystemUpdater(ctx context.Context) {
	global().RunSystemUpdater(ctx)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return customRegistry
}
