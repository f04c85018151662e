package telemetry_test

import (
	"context"
	"fmt"
	"time"

	"github.com/sheetflow/sheetflow/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// Example_basicSetup demonstrates basic telemetry setup.
func Example_basicSetup() {
	// Create configuration
	cfg := telemetry.DefaultConfig()
	cfg.ServiceName = "sheetflow"
	cfg.ServiceVersion = "1.0.0"

	// Initialize telemetry
	tel, err := telemetry.NewTelemetry(cfg)
	if err != nil {
		panic(err)
	}
	defer tel.Shutdown(context.Background())

	// Start metrics server (non-blocking)
	if err := tel.StartMetricsServer(); err != nil {
		panic(err)
	}

	// Add telemetry to context
	ctx := tel.WithContext(context.Background())

	// Use telemetry
	logger := telemetry.FromContext(ctx)
	logger.Info("Application started")

	// Output can vary, so we don't specify output for this example
}

// Example_structuredLogging demonstrates structured logging features.
func Example_structuredLogging() {
	cfg := telemetry.DevelopmentConfig()
	cfg.Logging.Output = "stdout"

	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	// Component-specific logger
	logger := tel.Logger.NewComponentLogger("engine")

	// Add context fields
	logger = logger.WithSessionID("sess-123").WithSheet("Sales")

	// Log at different levels
	logger.Debug("Collecting batch actions")
	logger.Info("Batch validated")
	logger.Warn("Sheet protection limits formatting actions")

	// Log with error
	err := fmt.Errorf("table not found")
	logger.WithError(err).Error("Action rejected")

	// Output varies, no output specified
}

// Example_distributedTracing demonstrates distributed tracing usage.
func Example_distributedTracing() {
	cfg := telemetry.DevelopmentConfig()
	cfg.Tracing.Exporter = "stdout"

	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	ctx := tel.WithContext(context.Background())

	// Start a session span
	ctx, span := tel.Tracer.StartSessionSpan(ctx, "sess-789")
	defer span.End()

	span.SetAttributes(
		telemetry.AttrBatchName.String("quarterly-report"),
		attribute.Int("session.actions", 12),
	)

	span.AddEvent("validation.complete")

	// Nested action span
	_, actionSpan := tel.Tracer.StartActionSpan(ctx, "add_table", "tables", 0)
	defer actionSpan.End()

	actionSpan.SetAttributes(
		telemetry.AttrSheetName.String("Sales"),
	)

	// Simulate work
	time.Sleep(10 * time.Millisecond)

	telemetry.RecordSuccess(actionSpan)

	// Output varies, no output specified
}

// Example_metricsCollection demonstrates metrics collection.
func Example_metricsCollection() {
	cfg := telemetry.DefaultConfig()
	cfg.Metrics.Enabled = true

	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	// Record session metrics
	tel.Metrics.RecordSessionStarted("live")

	// Simulate session execution
	start := time.Now()
	time.Sleep(50 * time.Millisecond)
	duration := time.Since(start)

	tel.Metrics.RecordSessionCompleted("completed", duration)

	// Record action metrics
	tel.Metrics.RecordActionDispatched(
		"range",
		"sort_range",
		"applied",
		25*time.Millisecond,
	)

	// Record document metrics
	tel.Metrics.RecordDocumentCall("RangeOps", "Sort", 15*time.Millisecond)

	// Record error metrics
	tel.Metrics.RecordError("EntityNotFound")

	// Record entity creation
	tel.Metrics.RecordEntityCreated("table")

	fmt.Println("Metrics recorded successfully")
	// Output: Metrics recorded successfully
}

// Example_eventPublishing demonstrates event publishing and subscription.
func Example_eventPublishing() {
	cfg := telemetry.DefaultConfig()
	cfg.Events.Enabled = true
	cfg.Events.EnableAsync = false // Synchronous for example

	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	// Subscribe to events
	tel.Events.Subscribe(func(event telemetry.Event) {
		fmt.Printf("Event: %s - %s\n", event.Type, event.Message)
	}, nil) // No filter, receive all events

	// Publish events
	tel.Events.PublishSessionStarted("sess-123", "monthly-close", 8)
	tel.Events.PublishActionApplied("sess-123", "add_table", "Sales", 0, 25*time.Millisecond)
	tel.Events.PublishEntityCreated("sess-123", "table", "Orders", "Sales")

	// Output varies due to async nature, no output specified
}

// Example_sessionInstrumentation demonstrates instrumenting a complete session.
func Example_sessionInstrumentation() {
	cfg := telemetry.DevelopmentConfig()
	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	ctx := tel.WithContext(context.Background())

	// Start session context
	sessionID := "sess-123"
	ctx = telemetry.WithSessionContext(ctx, sessionID, "monthly-close", "live", 3)

	// Execute session (simulated)
	dispatchActions(ctx, sessionID)

	// End session context
	telemetry.EndSessionContext(ctx, sessionID, "completed", nil)

	fmt.Println("Session instrumentation complete")
	// Output: Session instrumentation complete
}

func dispatchActions(ctx context.Context, sessionID string) {
	kind := "sort_range"
	family := "range"

	ctx = telemetry.WithActionContext(ctx, sessionID, kind, family, 0)

	// Get logger from context
	logger := telemetry.FromContext(ctx)
	logger.Info("Dispatching action")

	// Simulate work
	time.Sleep(10 * time.Millisecond)

	// End action context
	telemetry.EndActionContext(ctx, sessionID, kind, family, "Sales", 0, "applied", nil)
}

// Example_documentInstrumentation demonstrates instrumenting document calls.
func Example_documentInstrumentation() {
	cfg := telemetry.DevelopmentConfig()
	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	ctx := tel.WithContext(context.Background())

	// Record document operation
	err := telemetry.RecordDocumentOperation(ctx, "TableOps", "AddTable", func() error {
		// Simulate document work
		time.Sleep(15 * time.Millisecond)
		return nil
	})

	if err == nil {
		fmt.Println("Document operation completed successfully")
	}

	// Output: Document operation completed successfully
}

// Example_instrumentedOperation demonstrates using the InstrumentedContext helper.
func Example_instrumentedOperation() {
	cfg := telemetry.DevelopmentConfig()
	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	ctx := tel.WithContext(context.Background())

	// Start instrumented operation
	ic := telemetry.StartOperation(ctx, "load_batch",
		attribute.String("batch.path", "/etc/sheetflow/batch.cue"),
	)
	defer ic.End(nil)

	// Use the instrumented context
	ic.Logger.Info("Loading batch")

	// Simulate loading
	time.Sleep(5 * time.Millisecond)

	ic.Logger.Debug("Batch loading complete")

	fmt.Println("Operation instrumentation complete")
	// Output: Operation instrumentation complete
}

// Example_eventFiltering demonstrates event filtering.
func Example_eventFiltering() {
	cfg := telemetry.DefaultConfig()
	cfg.Events.Enabled = true
	cfg.Events.EnableAsync = false

	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	// Subscribe with level filter (only warnings and errors)
	tel.Events.Subscribe(func(event telemetry.Event) {
		fmt.Printf("Important event: %s\n", event.Type)
	}, telemetry.FilterByLevel(telemetry.EventLevelWarning))

	// Subscribe with type filter (only policy events)
	tel.Events.Subscribe(func(event telemetry.Event) {
		fmt.Printf("Policy event: %s\n", event.Message)
	}, telemetry.FilterByType(telemetry.EventTypePolicyViolation))

	// Publish various events
	tel.Events.PublishSessionStarted("sess-123", "batch", 1)                          // Info - filtered by level filter
	tel.Events.PublishActionRejected("sess-123", "add_comment", 0, "PolicyDenied", "comments disabled") // Warning - passes level filter
	tel.Events.PublishSessionFailed("sess-123", "document rejected")                  // Error - passes level filter

	// Output varies, no output specified
}

// Example_productionConfiguration demonstrates production-ready configuration.
func Example_productionConfiguration() {
	cfg := telemetry.ProductionConfig()

	// Customize for your environment
	cfg.ServiceName = "sheetflow"
	cfg.ServiceVersion = "1.2.3"
	cfg.Environment = "production"

	// Configure OTLP exporter
	cfg.Tracing.Exporter = "otlp"
	cfg.Tracing.Endpoint = "otel-collector.monitoring.svc.cluster.local:4317"
	cfg.Tracing.SamplingRate = 0.1 // 10% sampling
	cfg.Tracing.Insecure = false   // Use TLS in production

	// Configure metrics
	cfg.Metrics.ListenAddress = ":9464"
	cfg.Metrics.Namespace = "sheetflow"

	// Configure events
	cfg.Events.BufferSize = 10000
	cfg.Events.FlushInterval = 5 * time.Second

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	fmt.Println("Production configuration validated")
	// Output: Production configuration validated
}

// Example_errorRecording demonstrates error recording with proper classification.
func Example_errorRecording() {
	cfg := telemetry.DevelopmentConfig()
	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	ctx := tel.WithContext(context.Background())

	// Start a span
	ctx, span := tel.Tracer.Start(ctx, "dispatch_batch")
	defer span.End()

	// Simulate an error
	err := fmt.Errorf("sheet is protected")

	if err != nil {
		// Record error on span
		telemetry.RecordError(span, err)

		// Record error metric with classification
		tel.Metrics.RecordError("SheetProtected")

		// Log error
		logger := telemetry.FromContext(ctx)
		logger.WithError(err).Error("Action rejected")
	}

	fmt.Println("Error recording complete")
	// Output: Error recording complete
}

// Example_multipleComponents demonstrates telemetry in a multi-component system.
func Example_multipleComponents() {
	cfg := telemetry.DevelopmentConfig()
	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	// Component-specific loggers
	engineLogger := tel.Logger.NewComponentLogger("engine")
	loaderLogger := tel.Logger.NewComponentLogger("loader")
	policyLogger := tel.Logger.NewComponentLogger("policy")

	engineLogger.Info("Engine initialized")
	loaderLogger.Info("Parsing batch sources")
	policyLogger.Info("Loading policy bundle")

	fmt.Println("Multi-component logging complete")
	// Output: Multi-component logging complete
}
