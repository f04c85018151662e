package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sheetflow/sheetflow/pkg/config"
	"github.com/sheetflow/sheetflow/pkg/engine"
	"github.com/sheetflow/sheetflow/pkg/policy"
	"github.com/sheetflow/sheetflow/pkg/stores"
	"github.com/sheetflow/sheetflow/pkg/telemetry"
)

// outcomeRounding trims report durations for console output.
const outcomeRounding = time.Millisecond

// loadSettings builds the effective settings from the --config flag,
// the settings file and the environment. --verbose lowers the global
// log level regardless of what the settings say.
func loadSettings() (*config.Settings, error) {
	settings, err := config.LoadSettings(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	return settings, nil
}

// setupTelemetry builds the exporters configured in settings and
// attaches them to the context. A nil telemetry return means no
// exporter is enabled and the session runs uninstrumented.
func setupTelemetry(ctx context.Context, settings *config.Settings) (context.Context, *telemetry.Telemetry, func(), error) {
	ts := settings.Telemetry
	if !ts.TracingEnabled && !ts.MetricsEnabled {
		return ctx, nil, func() {}, nil
	}

	cfg := telemetry.DefaultConfig()
	cfg.Logging.Level = settings.LogLevel
	cfg.Logging.Format = settings.LogFormat
	cfg.Tracing.Enabled = ts.TracingEnabled
	cfg.Tracing.Endpoint = ts.TracingEndpoint
	cfg.Metrics.Enabled = ts.MetricsEnabled
	cfg.Metrics.ListenAddress = ts.MetricsAddr

	tel, err := telemetry.NewTelemetry(cfg)
	if err != nil {
		return ctx, nil, nil, err
	}
	if ts.MetricsEnabled {
		if err := tel.StartMetricsServer(); err != nil {
			log.Warn().Err(err).Msg("Failed to start metrics listener")
		}
	}

	shutdown := func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(sctx); err != nil {
			log.Warn().Err(err).Msg("Telemetry shutdown incomplete")
		}
	}
	return tel.WithContext(ctx), tel, shutdown, nil
}

// openHistory opens and migrates the run-history database.
func openHistory(ctx context.Context, settings *config.Settings) (*stores.SQLiteStore, error) {
	store, err := stores.NewSQLiteStore(stores.Config{Path: settings.HistoryPath})
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// buildPolicyGate compiles the built-in policies plus any configured
// policy paths into an admission gate. Returns nil when the gate is
// disabled.
func buildPolicyGate(ctx context.Context, settings *config.Settings, extraPaths []string, dryRun bool) (engine.PolicyGate, error) {
	if !settings.PolicyEnabled && len(extraPaths) == 0 {
		return nil, nil
	}

	gate, err := policy.NewEngine(log.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build policy gate: %w", err)
	}
	paths := append([]string{}, settings.PolicyPaths...)
	paths = append(paths, extraPaths...)
	if len(paths) > 0 {
		if err := gate.LoadPolicies(ctx, paths); err != nil {
			return nil, fmt.Errorf("failed to load policies: %w", err)
		}
	}
	gate.SetDryRun(dryRun)
	return gate, nil
}

// printReport writes the execution report to stdout, as JSON when the
// --json flag is set and as a human-readable summary otherwise.
func printReport(report *engine.ExecutionReport) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Printf("Session %s: %s\n", report.SessionID, report.Status)
	fmt.Printf("  %d actions: %d applied, %d rejected, %d skipped, %d failed (%s)\n",
		report.Summary.Total, report.Summary.Applied, report.Summary.Rejected,
		report.Summary.Skipped, report.Summary.Failed, report.Duration.Round(outcomeRounding))

	for _, o := range report.Outcomes {
		marker := " "
		switch o.Status {
		case engine.OutcomeRejected, engine.OutcomeFailed:
			marker = "!"
		case engine.OutcomeSkipped:
			marker = "-"
		}
		line := fmt.Sprintf("  %s [%d] %s %s", marker, o.Index, o.Kind, o.Status)
		if o.Target != "" {
			line += fmt.Sprintf(" target=%s", o.Target)
		}
		if o.Err != nil {
			line += fmt.Sprintf(" (%s: %s)", o.Err.Kind, o.Err.Message)
		} else if o.Detail != nil && o.Detail.Message != "" {
			line += fmt.Sprintf(" (%s)", o.Detail.Message)
		}
		fmt.Println(line)
		for _, w := range o.Warnings {
			fmt.Printf("      warning: %s\n", w)
		}
	}
	return nil
}
