// Package telemetry provides observability instrumentation for sheetflow.
//
// The telemetry package integrates structured logging (zerolog), distributed tracing
// (OpenTelemetry), metrics (Prometheus), and event publishing into a unified system
// for monitoring batch execution against workbook documents.
//
// # Architecture
//
// The telemetry system is built on four pillars:
//
//  1. Structured Logging - Context-aware logging with zerolog
//  2. Distributed Tracing - OpenTelemetry traces with OTLP and stdout exporters
//  3. Metrics Collection - Prometheus metrics for sessions, actions, and document calls
//  4. Event Publishing - Async event system for audit and notifications
//
// # Usage
//
// Initialize telemetry at application startup:
//
//	cfg := telemetry.DefaultConfig()
//	cfg.ServiceName = "sheetflow"
//	cfg.ServiceVersion = "1.0.0"
//
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
//	// Start metrics server
//	if err := tel.StartMetricsServer(); err != nil {
//	    log.Fatal(err)
//	}
//
// Add telemetry to context:
//
//	ctx = tel.WithContext(ctx)
//
// # Structured Logging
//
// The logger provides component-specific logging with automatic context propagation:
//
//	logger := tel.Logger.NewComponentLogger("engine")
//	logger = logger.WithSessionID("sess-123").WithSheet("Sales")
//	logger.Info("Dispatching batch")
//	logger.WithError(err).Error("Batch aborted")
//
// Log levels: trace, debug, info, warn, error, fatal
//
// # Distributed Tracing
//
// Tracing provides visibility into session and per-action timing:
//
//	ctx, span := tel.Tracer.StartSessionSpan(ctx, sessionID)
//	defer span.End()
//
//	ctx, actionSpan := tel.Tracer.StartActionSpan(ctx, "sort_range", "range", 0)
//	defer actionSpan.End()
//
// # Metrics
//
// Prometheus metrics cover session throughput, action outcomes by family,
// document surface latency, error kinds, and policy denials. Metrics are
// served over HTTP at the configured listen address.
//
// # Events
//
// The event publisher delivers session and action lifecycle events to
// subscribers, with optional filtering:
//
//	tel.Events.Subscribe(func(e telemetry.Event) {
//	    fmt.Println(e.Type, e.Message)
//	}, telemetry.FilterByLevel(telemetry.EventLevelWarning))
//
// Session-scoped helpers tie the pillars together:
//
//	ctx = telemetry.WithSessionContext(ctx, sessionID, batch.Name, "live", len(batch.Actions))
//	defer telemetry.EndSessionContext(ctx, sessionID, status, err)
package telemetry
