package config

import (
	"context"
	"testing"
	"time"
)

func TestStarlarkEvaluator_Evaluate(t *testing.T) {
	evaluator := NewStarlarkEvaluator(5 * time.Second)
	ctx := context.Background()

	tests := []struct {
		name      string
		script    string
		input     map[string]interface{}
		checkFunc func(*testing.T, *StarlarkResult)
		wantErr   bool
	}{
		{
			name: "simple arithmetic",
			script: `
result = 2 + 2
`,
			input: nil,
			checkFunc: func(t *testing.T, sr *StarlarkResult) {
				if sr.Output["result"] != int64(4) {
					t.Errorf("expected result=4, got %v", sr.Output["result"])
				}
			},
		},
		{
			name: "use input variables",
			script: `
doubled = count * 2
`,
			input: map[string]interface{}{
				"count": 5,
			},
			checkFunc: func(t *testing.T, sr *StarlarkResult) {
				if sr.Output["doubled"] != int64(10) {
					t.Errorf("expected doubled=10, got %v", sr.Output["doubled"])
				}
			},
		},
		{
			name: "generate list with function",
			script: `
def sheet_names(n):
    names = []
    for i in range(n):
        names.append("Region" + str(i + 1))
    return names

sheets = sheet_names(3)
`,
			input: nil,
			checkFunc: func(t *testing.T, sr *StarlarkResult) {
				sheets, ok := sr.Output["sheets"].([]interface{})
				if !ok {
					t.Fatalf("expected sheets to be a list, got %T", sr.Output["sheets"])
				}
				if len(sheets) != 3 {
					t.Errorf("expected 3 sheets, got %d", len(sheets))
				}
				if sheets[0] != "Region1" || sheets[2] != "Region3" {
					t.Errorf("unexpected sheet names: %v", sheets)
				}
			},
		},
		{
			name: "underscore globals are internal",
			script: `
_hidden = "internal"
visible = "public"
`,
			input: nil,
			checkFunc: func(t *testing.T, sr *StarlarkResult) {
				if _, ok := sr.Output["_hidden"]; ok {
					t.Error("underscore global leaked into output")
				}
				if sr.Output["visible"] != "public" {
					t.Errorf("expected visible='public', got %v", sr.Output["visible"])
				}
			},
		},
		{
			name: "enumerate builtin",
			script: `
pairs = enumerate(["a", "b", "c"])
first_index = pairs[0][0]
`,
			input: nil,
			checkFunc: func(t *testing.T, sr *StarlarkResult) {
				if sr.Output["first_index"] != int64(0) {
					t.Errorf("expected first_index=0, got %v", sr.Output["first_index"])
				}
			},
		},
		{
			name: "syntax error",
			script: `
broken = (
`,
			input:   nil,
			wantErr: true,
		},
		{
			name: "runtime error",
			script: `
value = undefined_symbol
`,
			input:   nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := evaluator.Evaluate(ctx, tt.script, tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Evaluate failed: %v", err)
			}
			if tt.checkFunc != nil {
				tt.checkFunc(t, result)
			}
		})
	}
}

func TestStarlarkEvaluator_GenerateBatch(t *testing.T) {
	evaluator := NewStarlarkEvaluator(5 * time.Second)
	ctx := context.Background()

	script := `
name = "monthly-sheets"

_months = ["Jan", "Feb", "Mar"]

actions = [
    {
        "kind": "add_sheet",
        "parameters": {"name": m},
    }
    for m in _months
]

options = {"completion_policy": "abort_on_first_failure"}
`

	batch, err := evaluator.GenerateBatch(ctx, script, nil)
	if err != nil {
		t.Fatalf("GenerateBatch failed: %v", err)
	}

	if batch.Name != "monthly-sheets" {
		t.Errorf("expected batch name 'monthly-sheets', got %s", batch.Name)
	}
	if len(batch.Actions) != 3 {
		t.Fatalf("expected 3 actions, got %d", len(batch.Actions))
	}
	if batch.Actions[0].Kind != "add_sheet" {
		t.Errorf("expected kind 'add_sheet', got %s", batch.Actions[0].Kind)
	}
	if got := batch.Actions[1].Parameters["name"]; got != "Feb" {
		t.Errorf("expected second sheet 'Feb', got %v", got)
	}
	if batch.Options.CompletionPolicy != "abort_on_first_failure" {
		t.Errorf("unexpected completion policy: %s", batch.Options.CompletionPolicy)
	}
}

func TestStarlarkEvaluator_GenerateBatch_WithInput(t *testing.T) {
	evaluator := NewStarlarkEvaluator(5 * time.Second)
	ctx := context.Background()

	script := `
actions = [
    {"kind": "set_zoom", "sheet": s, "parameters": {"zoom": 120}}
    for s in sheets
]
`

	batch, err := evaluator.GenerateBatch(ctx, script, map[string]interface{}{
		"sheets": []interface{}{"North", "South"},
	})
	if err != nil {
		t.Fatalf("GenerateBatch failed: %v", err)
	}

	if len(batch.Actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(batch.Actions))
	}
	if batch.Actions[1].Sheet != "South" {
		t.Errorf("expected sheet 'South', got %s", batch.Actions[1].Sheet)
	}
}

func TestStarlarkEvaluator_GenerateBatch_NoActions(t *testing.T) {
	evaluator := NewStarlarkEvaluator(5 * time.Second)

	if _, err := evaluator.GenerateBatch(context.Background(), `x = 1`, nil); err == nil {
		t.Error("expected error for script without actions")
	}

	if _, err := evaluator.GenerateBatch(context.Background(), `actions = []`, nil); err == nil {
		t.Error("expected error for empty actions list")
	}
}

func TestStarlarkEvaluator_Timeout(t *testing.T) {
	evaluator := NewStarlarkEvaluator(50 * time.Millisecond)
	ctx := context.Background()

	script := `
total = 0
for i in range(5000):
    for j in range(5000):
        total += j
`

	_, err := evaluator.Evaluate(ctx, script, nil)
	if err == nil {
		t.Error("expected timeout error")
	}
}

func TestToStarlarkValue_Unsupported(t *testing.T) {
	if _, err := toStarlarkValue(struct{}{}); err == nil {
		t.Error("expected error for unsupported type")
	}
}
