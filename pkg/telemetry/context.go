package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry provides a unified telemetry interface combining logging, tracing, metrics, and events.
type Telemetry struct {
	Logger  *Logger
	Tracer  *Tracer
	Metrics *Metrics
	Events  *EventPublisher
	Config  *Config
}

// telemetryContextKey is the context key for telemetry instances.
type telemetryContextKey struct{}

// NewTelemetry creates a new telemetry instance from configuration.
func NewTelemetry(cfg *Config) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	tracer, err := NewTracer(cfg.Tracing, cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, err
	}

	metrics, err := NewMetrics(cfg.Metrics)
	if err != nil {
		return nil, err
	}

	events, err := NewEventPublisher(cfg.Events)
	if err != nil {
		return nil, err
	}

	return &Telemetry{
		Logger:  logger,
		Tracer:  tracer,
		Metrics: metrics,
		Events:  events,
		Config:  cfg,
	}, nil
}

// WithContext adds the telemetry instance to the context.
func (t *Telemetry) WithContext(ctx context.Context) context.Context {
	ctx = context.WithValue(ctx, telemetryContextKey{}, t)
	ctx = t.Logger.WithContext(ctx)
	return ctx
}

// FromTelemetryContext retrieves the telemetry instance from the context.
// If no telemetry is found, it returns nil.
func FromTelemetryContext(ctx context.Context) *Telemetry {
	if t, ok := ctx.Value(telemetryContextKey{}).(*Telemetry); ok {
		return t
	}
	return nil
}

// Shutdown gracefully shuts down all telemetry components.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	// Shutdown in reverse order of initialization
	if err := t.Events.Shutdown(ctx); err != nil {
		return err
	}

	if err := t.Tracer.Shutdown(ctx); err != nil {
		return err
	}

	// The metrics server keeps serving so scrapes succeed until process exit

	return nil
}

// Flush forces all pending telemetry data to be exported.
func (t *Telemetry) Flush(ctx context.Context) error {
	return t.Tracer.ForceFlush(ctx)
}

// StartMetricsServer starts the metrics HTTP server if metrics are enabled.
func (t *Telemetry) StartMetricsServer() error {
	return t.Metrics.StartMetricsServer()
}

// InstrumentedContext bundles a context, span, logger, and timer for one operation.
type InstrumentedContext struct {
	Ctx    context.Context
	Span   trace.Span
	Logger *Logger
	Timer  *Timer
}

// StartOperation begins an instrumented operation with logging, tracing, and timing.
func StartOperation(ctx context.Context, operation string, attrs ...attribute.KeyValue) *InstrumentedContext {
	tel := FromTelemetryContext(ctx)
	if tel == nil {
		return &InstrumentedContext{
			Ctx:    ctx,
			Logger: FromContext(ctx),
			Timer:  NewTimer(),
		}
	}

	spanCtx, span := tel.Tracer.StartSpan(ctx, operation, attrs...)

	logger := tel.Logger.WithField("operation", operation)
	if span.SpanContext().IsValid() {
		logger = logger.WithFields(map[string]interface{}{
			"trace_id": span.SpanContext().TraceID().String(),
			"span_id":  span.SpanContext().SpanID().String(),
		})
	}

	return &InstrumentedContext{
		Ctx:    spanCtx,
		Span:   span,
		Logger: logger,
		Timer:  NewTimer(),
	}
}

// End finishes the instrumented operation, recording success or failure.
func (ic *InstrumentedContext) End(err error) {
	if ic.Span != nil {
		if err != nil {
			RecordError(ic.Span, err)
		} else {
			RecordSuccess(ic.Span)
		}
		ic.Span.End()
	}
}

// WithSessionContext creates a context enriched with session-specific telemetry.
// The mode is "live" or "dry_run".
func WithSessionContext(ctx context.Context, sessionID, batchName, mode string, actionCount int) context.Context {
	tel := FromTelemetryContext(ctx)
	if tel == nil {
		return ctx
	}

	spanCtx, span := tel.Tracer.StartSessionSpan(ctx, sessionID)
	span.SetAttributes(
		AttrBatchName.String(batchName),
		attribute.String("session.mode", mode),
		attribute.Int("session.actions", actionCount),
	)

	logger := tel.Logger.WithSessionID(sessionID).WithBatch(batchName)
	spanCtx = logger.WithContext(spanCtx)

	tel.Metrics.RecordSessionStarted(mode)
	_ = tel.Events.PublishSessionStarted(sessionID, batchName, actionCount)

	spanCtx = context.WithValue(spanCtx, sessionSpanKey{}, span)
	spanCtx = context.WithValue(spanCtx, sessionTimerKey{}, NewTimer())

	return spanCtx
}

// sessionSpanKey is the context key for session spans.
type sessionSpanKey struct{}

// sessionTimerKey is the context key for session timers.
type sessionTimerKey struct{}

// EndSessionContext completes the session context, recording metrics and events.
func EndSessionContext(ctx context.Context, sessionID, status string, err error) {
	tel := FromTelemetryContext(ctx)
	if tel == nil {
		return
	}

	if span, ok := ctx.Value(sessionSpanKey{}).(trace.Span); ok {
		span.SetAttributes(AttrSessionStatus.String(status))
		if err != nil {
			RecordError(span, err)
		} else {
			RecordSuccess(span)
		}
		span.End()
	}

	var duration time.Duration
	if timer, ok := ctx.Value(sessionTimerKey{}).(*Timer); ok {
		duration = timer.Duration()
	}

	tel.Metrics.RecordSessionCompleted(status, duration)

	if err != nil {
		_ = tel.Events.PublishSessionFailed(sessionID, err.Error())
	} else {
		_ = tel.Events.PublishSessionCompleted(sessionID, status, duration)
	}
}

// WithActionContext creates a context enriched with action-specific telemetry.
func WithActionContext(ctx context.Context, sessionID, kind, family string, index int) context.Context {
	tel := FromTelemetryContext(ctx)
	if tel == nil {
		return ctx
	}

	spanCtx, span := tel.Tracer.StartActionSpan(ctx, kind, family, index)

	logger := tel.Logger.
		WithSessionID(sessionID).
		WithAction(kind, index)
	spanCtx = logger.WithContext(spanCtx)

	spanCtx = context.WithValue(spanCtx, actionSpanKey{}, span)
	spanCtx = context.WithValue(spanCtx, actionTimerKey{}, NewTimer())

	return spanCtx
}

// actionSpanKey is the context key for action spans.
type actionSpanKey struct{}

// actionTimerKey is the context key for action timers.
type actionTimerKey struct{}

// EndActionContext completes the action context, recording metrics and events.
func EndActionContext(ctx context.Context, sessionID, kind, family, sheet string, index int, outcome string, err error) {
	tel := FromTelemetryContext(ctx)
	if tel == nil {
		return
	}

	if span, ok := ctx.Value(actionSpanKey{}).(trace.Span); ok {
		span.SetAttributes(AttrOutcome.String(outcome))
		if err != nil {
			RecordError(span, err)
		} else {
			RecordSuccess(span)
		}
		span.End()
	}

	var duration time.Duration
	if timer, ok := ctx.Value(actionTimerKey{}).(*Timer); ok {
		duration = timer.Duration()
	}

	tel.Metrics.RecordActionDispatched(family, kind, outcome, duration)

	switch outcome {
	case "applied":
		_ = tel.Events.PublishActionApplied(sessionID, kind, sheet, index, duration)
	case "failed":
		reason := ""
		if err != nil {
			reason = err.Error()
		}
		_ = tel.Events.PublishActionFailed(sessionID, kind, index, reason)
	case "skipped":
		reason := ""
		if err != nil {
			reason = err.Error()
		}
		_ = tel.Events.PublishActionSkipped(sessionID, kind, index, reason)
	}
}

// RecordDocumentOperation records a document surface call with metrics and tracing.
func RecordDocumentOperation(ctx context.Context, surface, operation string, fn func() error) error {
	tel := FromTelemetryContext(ctx)

	var span trace.Span
	if tel != nil {
		_, span = tel.Tracer.StartDocumentSpan(ctx, surface, operation)
		defer span.End()
	}

	timer := NewTimer()
	err := fn()

	if tel != nil {
		duration := timer.Duration()
		tel.Metrics.RecordDocumentCall(surface, operation, duration)
		if err != nil {
			tel.Metrics.RecordDocumentError(surface, operation)
			RecordError(span, err)
		} else {
			RecordSuccess(span)
		}
	}

	return err
}
