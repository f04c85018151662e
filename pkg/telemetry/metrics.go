package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for the sheetflow engine.
type Metrics struct {
	config MetricsConfig

	// Session metrics
	sessionsStarted   *prometheus.CounterVec
	sessionsCompleted *prometheus.CounterVec
	sessionDuration   *prometheus.HistogramVec

	// Action metrics
	actionsDispatched *prometheus.CounterVec
	actionDuration    *prometheus.HistogramVec

	// Document metrics
	documentCalls    *prometheus.CounterVec
	documentDuration *prometheus.HistogramVec
	documentErrors   *prometheus.CounterVec

	// Entity metrics
	entitiesCreated *prometheus.CounterVec

	// Error metrics
	errorsByKind *prometheus.CounterVec

	// Policy metrics
	policyDenials *prometheus.CounterVec

	// System metrics
	activeSessions prometheus.Gauge
	queuedActions  prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// Return a no-op metrics instance
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		// Session metrics
		sessionsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_started_total",
				Help:      "Total number of execution sessions started",
			},
			[]string{"mode"},
		),
		sessionsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_completed_total",
				Help:      "Total number of execution sessions completed",
			},
			[]string{"status"},
		),
		sessionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "session_duration_seconds",
				Help:      "Duration of execution sessions in seconds",
				Buckets:   buckets,
			},
			[]string{"status"},
		),

		// Action metrics
		actionsDispatched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actions_dispatched_total",
				Help:      "Total number of actions dispatched by family and outcome",
			},
			[]string{"family", "outcome"},
		),
		actionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "action_duration_seconds",
				Help:      "Duration of individual action application in seconds",
				Buckets:   buckets,
			},
			[]string{"family", "kind"},
		),

		// Document metrics
		documentCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "document_calls_total",
				Help:      "Total number of document surface calls",
			},
			[]string{"surface", "operation"},
		),
		documentDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "document_call_duration_seconds",
				Help:      "Duration of document surface calls in seconds",
				Buckets:   buckets,
			},
			[]string{"surface", "operation"},
		),
		documentErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "document_errors_total",
				Help:      "Total number of document surface errors",
			},
			[]string{"surface", "operation"},
		),

		// Entity metrics
		entitiesCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entities_created_total",
				Help:      "Total number of workbook entities created",
			},
			[]string{"kind"},
		),

		// Error metrics
		errorsByKind: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_by_kind_total",
				Help:      "Total number of action errors by error kind",
			},
			[]string{"kind"},
		),

		// Policy metrics
		policyDenials: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "policy_denials_total",
				Help:      "Total number of actions denied by policy",
			},
			[]string{"policy"},
		),

		// System metrics
		activeSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_sessions",
				Help:      "Current number of active execution sessions",
			},
		),
		queuedActions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "queued_actions",
				Help:      "Current number of actions waiting for dispatch",
			},
		),
	}

	registry.MustRegister(
		m.sessionsStarted,
		m.sessionsCompleted,
		m.sessionDuration,
		m.actionsDispatched,
		m.actionDuration,
		m.documentCalls,
		m.documentDuration,
		m.documentErrors,
		m.entitiesCreated,
		m.errorsByKind,
		m.policyDenials,
		m.activeSessions,
		m.queuedActions,
	)

	return m, nil
}

// Session Metrics

// RecordSessionStarted increments the counter for started sessions.
// The mode label distinguishes live runs from dry runs.
func (m *Metrics) RecordSessionStarted(mode string) {
	if m.sessionsStarted == nil {
		return
	}
	m.sessionsStarted.WithLabelValues(mode).Inc()
	m.activeSessions.Inc()
}

// RecordSessionCompleted records a completed session with its status and duration.
func (m *Metrics) RecordSessionCompleted(status string, duration time.Duration) {
	if m.sessionsCompleted == nil {
		return
	}
	m.sessionsCompleted.WithLabelValues(status).Inc()
	m.sessionDuration.WithLabelValues(status).Observe(duration.Seconds())
	m.activeSessions.Dec()
}

// Action Metrics

// RecordActionDispatched records the outcome of a dispatched action.
func (m *Metrics) RecordActionDispatched(family, kind, outcome string, duration time.Duration) {
	if m.actionsDispatched == nil {
		return
	}
	m.actionsDispatched.WithLabelValues(family, outcome).Inc()
	m.actionDuration.WithLabelValues(family, kind).Observe(duration.Seconds())
}

// Document Metrics

// RecordDocumentCall records a document surface call with its duration.
func (m *Metrics) RecordDocumentCall(surface, operation string, duration time.Duration) {
	if m.documentCalls == nil {
		return
	}
	m.documentCalls.WithLabelValues(surface, operation).Inc()
	m.documentDuration.WithLabelValues(surface, operation).Observe(duration.Seconds())
}

// RecordDocumentError records a document surface error.
func (m *Metrics) RecordDocumentError(surface, operation string) {
	if m.documentErrors == nil {
		return
	}
	m.documentErrors.WithLabelValues(surface, operation).Inc()
}

// Entity Metrics

// RecordEntityCreated records the creation of a workbook entity.
func (m *Metrics) RecordEntityCreated(kind string) {
	if m.entitiesCreated == nil {
		return
	}
	m.entitiesCreated.WithLabelValues(kind).Inc()
}

// Error Metrics

// RecordError records an action error by its error kind.
func (m *Metrics) RecordError(errorKind string) {
	if m.errorsByKind == nil {
		return
	}
	m.errorsByKind.WithLabelValues(errorKind).Inc()
}

// Policy Metrics

// RecordPolicyDenial records an action denied by a named policy.
func (m *Metrics) RecordPolicyDenial(policy string) {
	if m.policyDenials == nil {
		return
	}
	m.policyDenials.WithLabelValues(policy).Inc()
}

// System Metrics

// SetQueuedActions sets the current number of actions waiting for dispatch.
func (m *Metrics) SetQueuedActions(count float64) {
	if m.queuedActions == nil {
		return
	}
	m.queuedActions.Set(count)
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration is a helper to time an operation and record it.
func (t *Timer) ObserveDuration(observer prometheus.Observer) {
	observer.Observe(t.Duration().Seconds())
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// StartMetricsServer starts an HTTP server to expose metrics.
func (m *Metrics) StartMetricsServer() error {
	if !m.config.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(m.config.Path, m.Handler())

	server := &http.Server{
		Addr:              m.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			// Log error but don't fail the application
			fmt.Printf("metrics server error: %v\n", err)
		}
	}()

	return nil
}
