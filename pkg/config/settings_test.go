package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings("")
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}

	if s.LogLevel != "info" {
		t.Errorf("expected default log level 'info', got %s", s.LogLevel)
	}
	if s.LogFormat != "console" {
		t.Errorf("expected default log format 'console', got %s", s.LogFormat)
	}
	if s.HistoryPath != "sheetflow.db" {
		t.Errorf("expected default history path 'sheetflow.db', got %s", s.HistoryPath)
	}
	if s.CompletionPolicy != "continue_on_failure" {
		t.Errorf("unexpected default completion policy: %s", s.CompletionPolicy)
	}
}

func TestLoadSettings_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := `
log_level: debug
workbook_path: /tmp/wb.yaml
policy_enabled: true
policy_paths:
  - /etc/sheetflow/policies
telemetry:
  metrics_enabled: true
  metrics_addr: ":9999"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write settings file: %v", err)
	}

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}

	if s.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got %s", s.LogLevel)
	}
	if s.WorkbookPath != "/tmp/wb.yaml" {
		t.Errorf("unexpected workbook path: %s", s.WorkbookPath)
	}
	if !s.PolicyEnabled || len(s.PolicyPaths) != 1 {
		t.Errorf("policy settings not decoded: %+v", s)
	}
	if !s.Telemetry.MetricsEnabled || s.Telemetry.MetricsAddr != ":9999" {
		t.Errorf("telemetry settings not decoded: %+v", s.Telemetry)
	}
	// Untouched keys keep their defaults
	if s.HistoryPath != "sheetflow.db" {
		t.Errorf("default history path lost: %s", s.HistoryPath)
	}
}

func TestLoadSettings_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("log_level: debug\n"), 0644); err != nil {
		t.Fatalf("failed to write settings file: %v", err)
	}

	t.Setenv("SHEETFLOW_LOG_LEVEL", "error")
	t.Setenv("SHEETFLOW_POLICY_PATHS", "/a,/b")

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}

	if s.LogLevel != "error" {
		t.Errorf("environment did not override file: %s", s.LogLevel)
	}
	if len(s.PolicyPaths) != 2 || s.PolicyPaths[1] != "/b" {
		t.Errorf("policy paths not split: %v", s.PolicyPaths)
	}
}

func TestLoadSettings_InvalidLevel(t *testing.T) {
	t.Setenv("SHEETFLOW_LOG_LEVEL", "loud")

	if _, err := LoadSettings(""); err == nil {
		t.Error("expected error for invalid log level")
	}
}

func TestLoadSettings_MissingFileIgnored(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadSettings failed for missing file: %v", err)
	}
	if s.LogLevel != "info" {
		t.Errorf("defaults not applied: %s", s.LogLevel)
	}
}
