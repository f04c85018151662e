package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Settings is the application configuration. Defaults are overlaid by
// an optional YAML file, which in turn is overlaid by SHEETFLOW_*
// environment variables.
type Settings struct {
	// LogLevel sets the minimum log level.
	LogLevel string `yaml:"log_level" env:"SHEETFLOW_LOG_LEVEL" validate:"oneof=trace debug info warn error"`

	// LogFormat selects console or json log output.
	LogFormat string `yaml:"log_format" env:"SHEETFLOW_LOG_FORMAT" validate:"oneof=console json"`

	// WorkbookPath is the default workbook state file for the CLI.
	WorkbookPath string `yaml:"workbook_path" env:"SHEETFLOW_WORKBOOK"`

	// HistoryPath is the SQLite run-history database path.
	HistoryPath string `yaml:"history_path" env:"SHEETFLOW_HISTORY"`

	// PolicyPaths lists extra policy files or directories to load.
	PolicyPaths []string `yaml:"policy_paths" env:"SHEETFLOW_POLICY_PATHS" envSeparator:","`

	// PolicyEnabled turns the policy gate on.
	PolicyEnabled bool `yaml:"policy_enabled" env:"SHEETFLOW_POLICY_ENABLED"`

	// CompletionPolicy is the default completion policy for batches
	// that do not set one.
	CompletionPolicy string `yaml:"completion_policy" env:"SHEETFLOW_COMPLETION_POLICY" validate:"oneof=continue_on_failure abort_on_first_failure"`

	// Telemetry configures tracing and metrics.
	Telemetry TelemetrySettings `yaml:"telemetry"`
}

// TelemetrySettings configures the optional telemetry exporters.
type TelemetrySettings struct {
	// TracingEnabled turns OTLP trace export on.
	TracingEnabled bool `yaml:"tracing_enabled" env:"SHEETFLOW_TRACING_ENABLED"`

	// TracingEndpoint is the OTLP gRPC collector endpoint.
	TracingEndpoint string `yaml:"tracing_endpoint" env:"SHEETFLOW_TRACING_ENDPOINT"`

	// MetricsEnabled turns the Prometheus metrics listener on.
	MetricsEnabled bool `yaml:"metrics_enabled" env:"SHEETFLOW_METRICS_ENABLED"`

	// MetricsAddr is the metrics listen address.
	MetricsAddr string `yaml:"metrics_addr" env:"SHEETFLOW_METRICS_ADDR"`
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		LogLevel:         "info",
		LogFormat:        "console",
		WorkbookPath:     "workbook.yaml",
		HistoryPath:      "sheetflow.db",
		CompletionPolicy: "continue_on_failure",
		Telemetry: TelemetrySettings{
			TracingEndpoint: "localhost:4317",
			MetricsAddr:     ":9464",
		},
	}
}

// LoadSettings builds the settings from the optional file at path
// (ignored when empty or missing) and the environment.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &s); err != nil {
				return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// Missing settings file falls back to defaults.
		default:
			return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
		}
	}

	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := validator.New().Struct(&s); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return &s, nil
}
