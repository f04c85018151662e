package policy

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/sheetflow/sheetflow/pkg/engine"
	"github.com/sheetflow/sheetflow/pkg/schema"
)

func testAction(t *testing.T, kind string, params map[string]any) *engine.ValidatedAction {
	t.Helper()
	reg := schema.NewRegistry()
	sc, ok := reg.Lookup(kind)
	if !ok {
		t.Fatalf("unknown action kind %q", kind)
	}
	return &engine.ValidatedAction{
		Descriptor: engine.ActionDescriptor{
			Kind:       kind,
			Sheet:      "Sheet1",
			Parameters: params,
		},
		Schema: sc,
		Ready:  true,
	}
}

// TestNewInputCarriesDependencyHint tests that the single-name
// depends_on hint reaches the Rego input unchanged.
func TestNewInputCarriesDependencyHint(t *testing.T) {
	act := testAction(t, "create_slicer", map[string]any{"field": "Region"})
	act.Descriptor.DependsOn = "Orders"

	in := NewInput(act, false)
	if in.Action.DependsOn != "Orders" {
		t.Errorf("depends_on = %q, want Orders", in.Action.DependsOn)
	}
}

func TestNewEngine(t *testing.T) {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	eng, err := NewEngine(logger)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	if eng == nil {
		t.Fatal("Engine is nil")
	}

	// Check that built-in policies are loaded
	policies := eng.ListPolicies()
	if len(policies) == 0 {
		t.Fatal("No built-in policies loaded")
	}

	expectedPolicies := []string{
		"unsafe-hyperlinks",
		"destructive-actions",
		"protection-changes",
		"bulk-row-changes",
	}

	for _, expected := range expectedPolicies {
		found := false
		for _, p := range policies {
			if p.Name == expected {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected built-in policy not found: %s", expected)
		}
	}
}

func TestAllow_UnsafeHyperlinks(t *testing.T) {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	eng, err := NewEngine(logger)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	tests := []struct {
		name        string
		url         string
		expectAllow bool
	}{
		{"https url", "https://example.com/report", true},
		{"mailto url", "mailto:team@example.com", true},
		{"javascript url", "javascript:alert(1)", false},
		{"file url", "file:///etc/passwd", false},
		{"uppercase scheme", "JAVASCRIPT:alert(1)", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			act := testAction(t, "add_hyperlink", map[string]any{"url": tt.url})
			act.Descriptor.Target = "A1"

			allowed, reason, err := eng.Allow(context.Background(), act)
			if err != nil {
				t.Fatalf("Allow failed: %v", err)
			}
			if allowed != tt.expectAllow {
				t.Errorf("allowed = %v, want %v (reason: %s)", allowed, tt.expectAllow, reason)
			}
			if !allowed && reason == "" {
				t.Error("denied action has no reason")
			}
		})
	}
}

func TestAllow_DestructiveActionsDisabledByDefault(t *testing.T) {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	eng, err := NewEngine(logger)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	act := testAction(t, "delete_sheet", nil)
	act.Descriptor.Target = "Scratch"

	allowed, _, err := eng.Allow(context.Background(), act)
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if !allowed {
		t.Error("delete_sheet denied while destructive-actions is disabled")
	}

	if err := eng.EnablePolicy("destructive-actions"); err != nil {
		t.Fatalf("EnablePolicy failed: %v", err)
	}

	allowed, reason, err := eng.Allow(context.Background(), act)
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if allowed {
		t.Error("delete_sheet allowed while destructive-actions is enabled")
	}
	if reason == "" {
		t.Error("denied action has no reason")
	}
}

func TestAllow_DestructiveActionsDryRunPassesThrough(t *testing.T) {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	eng, err := NewEngine(logger)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	if err := eng.EnablePolicy("destructive-actions"); err != nil {
		t.Fatalf("EnablePolicy failed: %v", err)
	}
	eng.SetDryRun(true)

	act := testAction(t, "delete_table", nil)
	act.Descriptor.Target = "Sales"

	allowed, _, err := eng.Allow(context.Background(), act)
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if !allowed {
		t.Error("dry-run delete_table denied")
	}
}

func TestEvaluate_WarningsDoNotDeny(t *testing.T) {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	eng, err := NewEngine(logger)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	act := testAction(t, "unprotect_sheet", map[string]any{"password": "secret"})
	act.Descriptor.Target = "Sheet1"

	decision, err := eng.Evaluate(context.Background(), act)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !decision.Allowed {
		t.Errorf("warning-only evaluation denied: %v", decision.Violations)
	}
	if len(decision.Warnings) == 0 {
		t.Error("expected a protection-changes warning")
	}
}

func TestEvaluate_BulkRowChanges(t *testing.T) {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	eng, err := NewEngine(logger)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	small := testAction(t, "delete_rows", map[string]any{"start_row": 2, "count": 10})
	decision, err := eng.Evaluate(context.Background(), small)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(decision.Warnings) != 0 {
		t.Errorf("small delete produced warnings: %v", decision.Warnings)
	}

	big := testAction(t, "delete_rows", map[string]any{"start_row": 2, "count": 500})
	decision, err = eng.Evaluate(context.Background(), big)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !decision.Allowed {
		t.Error("bulk delete_rows denied, warnings must not block")
	}
	if len(decision.Warnings) == 0 {
		t.Error("expected a bulk-row-changes warning")
	}
}

func TestLoadCustomPolicy(t *testing.T) {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	eng, err := NewEngine(logger)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	custom := Policy{
		Name:     "no-comments",
		Severity: SeverityError,
		Enabled:  true,
		Rego: `package custom.policies.comments

import rego.v1

deny contains violation if {
	input.action.kind == "add_comment"
	violation := {
		"message": "Comments are not allowed in this workbook",
		"severity": "error",
	}
}`,
	}

	if err := eng.compileAndStorePolicy(context.Background(), &custom); err != nil {
		t.Fatalf("Failed to compile custom policy: %v", err)
	}

	act := testAction(t, "add_comment", map[string]any{"text": "hello"})
	act.Descriptor.Target = "B2"

	allowed, reason, err := eng.Allow(context.Background(), act)
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if allowed {
		t.Error("add_comment allowed despite no-comments policy")
	}
	if reason != "Comments are not allowed in this workbook" {
		t.Errorf("unexpected reason: %q", reason)
	}
}

func TestEnableUnknownPolicy(t *testing.T) {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	eng, err := NewEngine(logger)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	if err := eng.EnablePolicy("does-not-exist"); err == nil {
		t.Error("expected error enabling unknown policy")
	}
	if err := eng.DisablePolicy("does-not-exist"); err == nil {
		t.Error("expected error disabling unknown policy")
	}
}

func TestReloadPolicies(t *testing.T) {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	eng, err := NewEngine(logger)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	custom := Policy{
		Name:     "transient",
		Severity: SeverityError,
		Enabled:  true,
		Rego:     "package custom.transient\n\nimport rego.v1\n",
	}
	if err := eng.compileAndStorePolicy(context.Background(), &custom); err != nil {
		t.Fatalf("Failed to compile custom policy: %v", err)
	}

	if err := eng.ReloadPolicies(context.Background()); err != nil {
		t.Fatalf("ReloadPolicies failed: %v", err)
	}
	if _, err := eng.GetPolicy("transient"); err == nil {
		t.Error("transient policy survived reload")
	}
	if _, err := eng.GetPolicy("unsafe-hyperlinks"); err != nil {
		t.Error("built-in policy missing after reload")
	}
}
