package config

import (
	"context"
	"testing"
)

func TestSchemaRegistry_BuiltInSchemas(t *testing.T) {
	sr := NewSchemaRegistry()

	for _, name := range []string{"action", "batch", "options"} {
		if _, ok := sr.GetSchema(name); !ok {
			t.Errorf("built-in schema %s not registered", name)
		}
	}

	names := sr.ListSchemas()
	if len(names) < 3 {
		t.Errorf("expected at least 3 schemas, got %d", len(names))
	}
}

func TestSchemaRegistry_RegisterSchema(t *testing.T) {
	sr := NewSchemaRegistry()

	err := sr.RegisterSchema("custom", `{kind: string}`)
	if err != nil {
		t.Fatalf("RegisterSchema failed: %v", err)
	}

	if _, ok := sr.GetSchema("custom"); !ok {
		t.Error("custom schema not found after registration")
	}
}

func TestSchemaRegistry_RegisterSchema_Invalid(t *testing.T) {
	sr := NewSchemaRegistry()

	if err := sr.RegisterSchema("broken", `kind: string &`); err == nil {
		t.Error("expected error for invalid schema")
	}
}

func TestSchemaRegistry_ValidateAction(t *testing.T) {
	sr := NewSchemaRegistry()
	ctx := context.Background()

	tests := []struct {
		name    string
		action  ActionConfig
		wantErr bool
	}{
		{
			name: "valid action",
			action: ActionConfig{
				Kind:   "create_table",
				Sheet:  "Sheet1",
				Target: "A1:C5",
				Parameters: map[string]interface{}{
					"name": "Sales",
				},
			},
			wantErr: false,
		},
		{
			name: "kind with uppercase",
			action: ActionConfig{
				Kind: "CreateTable",
			},
			wantErr: true,
		},
		{
			name:    "missing kind",
			action:  ActionConfig{Sheet: "Sheet1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sr.ValidateAction(ctx, tt.action)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAction error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSchemaRegistry_ValidateBatch(t *testing.T) {
	sr := NewSchemaRegistry()
	ctx := context.Background()

	valid := Batch{
		Name: "nightly",
		Actions: []ActionConfig{
			{Kind: "refresh_data_types", Sheet: "Data", Target: "A1:A50"},
		},
	}
	if err := sr.ValidateBatch(ctx, valid); err != nil {
		t.Errorf("valid batch rejected: %v", err)
	}

	invalidName := Batch{
		Name: "bad name with spaces",
		Actions: []ActionConfig{
			{Kind: "add_sheet"},
		},
	}
	if err := sr.ValidateBatch(ctx, invalidName); err == nil {
		t.Error("batch with invalid name accepted")
	}
}

func TestSchemaRegistry_ValidateOptions(t *testing.T) {
	sr := NewSchemaRegistry()
	ctx := context.Background()

	if err := sr.ValidateOptions(ctx, BatchOptions{CompletionPolicy: "abort_on_first_failure"}); err != nil {
		t.Errorf("valid options rejected: %v", err)
	}

	if err := sr.ValidateOptions(ctx, BatchOptions{CompletionPolicy: "halt"}); err == nil {
		t.Error("invalid completion policy accepted")
	}
}

func TestSchemaRegistry_ValidateAgainstSchema_Unknown(t *testing.T) {
	sr := NewSchemaRegistry()

	err := sr.ValidateAgainstSchema(context.Background(), "nope", map[string]interface{}{})
	if err == nil {
		t.Error("expected error for unknown schema")
	}
}
