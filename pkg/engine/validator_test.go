package engine_test

import (
	"context"
	"strings"
	"testing"

	"github.com/sheetflow/sheetflow/pkg/engine"
)

// TestParameterBounds tests the numeric, length, list and enum limits
// the schema registry declares, end to end through validation.
func TestParameterBounds(t *testing.T) {
	manyProps := make([]string, 11)
	for i := range manyProps {
		manyProps[i] = "price"
	}

	tests := []struct {
		name  string
		desc  engine.ActionDescriptor
		field string
	}{
		{
			name: "zoom above maximum",
			desc: engine.ActionDescriptor{Kind: "set_sheet_zoom", Target: "Sales",
				Parameters: map[string]any{"zoom": 500}},
			field: "zoom",
		},
		{
			name: "zoom below minimum",
			desc: engine.ActionDescriptor{Kind: "set_sheet_zoom", Target: "Sales",
				Parameters: map[string]any{"zoom": 5}},
			field: "zoom",
		},
		{
			name: "sheet name too long",
			desc: engine.ActionDescriptor{Kind: "add_sheet",
				Parameters: map[string]any{"name": strings.Repeat("x", 32)}},
			field: "name",
		},
		{
			name: "entity name too long",
			desc: engine.ActionDescriptor{Kind: "create_named_range", Sheet: "Sales",
				Target:     "A1:A5",
				Parameters: map[string]any{"name": strings.Repeat("n", 256)}},
			field: "name",
		},
		{
			name: "too many data type properties",
			desc: engine.ActionDescriptor{Kind: "convert_to_stock", Sheet: "Sales",
				Target:     "A1:A5",
				Parameters: map[string]any{"properties": manyProps}},
			field: "properties",
		},
		{
			name: "non contiguous range parameter",
			desc: engine.ActionDescriptor{Kind: "create_sparklines", Sheet: "Sales",
				Target:     "D1",
				Parameters: map[string]any{"source": "A1:A3,C1:C3"}},
			field: "source",
		},
		{
			name: "malformed color",
			desc: engine.ActionDescriptor{Kind: "set_sheet_tab_color", Target: "Sales",
				Parameters: map[string]any{"color": "blue"}},
			field: "color",
		},
		{
			name: "enum value outside set",
			desc: engine.ActionDescriptor{Kind: "create_chart", Sheet: "Sales",
				Target:     "A1:B5",
				Parameters: map[string]any{"chart_type": "donut"}},
			field: "chart_type",
		},
		{
			name: "required parameter missing",
			desc: engine.ActionDescriptor{Kind: "create_chart", Sheet: "Sales",
				Target: "A1:B5"},
			field: "chart_type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := testSession(t).Execute(context.Background(),
				[]engine.ActionDescriptor{tt.desc}, salesWorkbook(), engine.Options{})
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			out := report.Outcomes[0]
			if out.Status != engine.OutcomeRejected {
				t.Fatalf("status = %s, want rejected", out.Status)
			}
			if out.Err.Kind != engine.ErrInvalidParameter {
				t.Errorf("error kind = %s, want %s", out.Err.Kind, engine.ErrInvalidParameter)
			}
			if out.Err.Field != tt.field {
				t.Errorf("field = %q, want %q", out.Err.Field, tt.field)
			}
		})
	}
}

// TestParameterBoundsAccepted tests that values on the boundary pass.
func TestParameterBoundsAccepted(t *testing.T) {
	report, err := testSession(t).Execute(context.Background(), []engine.ActionDescriptor{
		{Kind: "set_sheet_zoom", Target: "Sales", Parameters: map[string]any{"zoom": 400}},
		{Kind: "add_sheet", Parameters: map[string]any{"name": strings.Repeat("s", 31)}},
	}, salesWorkbook(), engine.Options{})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	for _, out := range report.Outcomes {
		if out.Status != engine.OutcomeApplied {
			t.Errorf("%s = %s (%v), want applied", out.Kind, out.Status, out.Err)
		}
	}
}

// TestMultiAreaTargetRejected tests target contiguity enforcement for
// kinds that demand a single rectangle.
func TestMultiAreaTargetRejected(t *testing.T) {
	report, err := testSession(t).Execute(context.Background(), []engine.ActionDescriptor{
		{Kind: "convert_to_stock", Sheet: "Sales", Target: "A1:A2,C1:C2"},
	}, salesWorkbook(), engine.Options{})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	out := report.Outcomes[0]
	if out.Status != engine.OutcomeRejected || out.Err.Kind != engine.ErrInvalidParameter {
		t.Fatalf("outcome = %s (%v), want rejected invalid_parameter", out.Status, out.Err)
	}
	if !strings.Contains(out.Err.Message, "contiguous") {
		t.Errorf("message = %q, want contiguity complaint", out.Err.Message)
	}
}
