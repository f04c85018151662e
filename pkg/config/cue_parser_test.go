package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestCUEParser_ParseInline(t *testing.T) {
	parser := NewCUEParser()
	ctx := context.Background()

	tests := []struct {
		name      string
		content   string
		errCount  int
		checkFunc func(*testing.T, *ParsedBatch)
	}{
		{
			name: "valid simple batch",
			content: `
batch: {
	name: "quarterly-report"
	actions: [
		{
			kind: "add_sheet"
			parameters: {name: "Q3"}
		},
		{
			kind:   "create_table"
			sheet:  "Q3"
			target: "A1:D10"
			parameters: {name: "Sales", has_headers: true}
		},
	]
}
`,
			checkFunc: func(t *testing.T, pb *ParsedBatch) {
				if pb.Batch.Name != "quarterly-report" {
					t.Errorf("expected batch name 'quarterly-report', got %s", pb.Batch.Name)
				}
				if len(pb.Batch.Actions) != 2 {
					t.Fatalf("expected 2 actions, got %d", len(pb.Batch.Actions))
				}
				if pb.Batch.Actions[1].Kind != "create_table" {
					t.Errorf("expected kind 'create_table', got %s", pb.Batch.Actions[1].Kind)
				}
				if pb.Batch.Actions[1].Target != "A1:D10" {
					t.Errorf("expected target 'A1:D10', got %s", pb.Batch.Actions[1].Target)
				}
			},
		},
		{
			name: "batch at root without wrapper",
			content: `
name: "plain"
actions: [
	{kind: "freeze_panes", target: "B2"},
]
`,
			checkFunc: func(t *testing.T, pb *ParsedBatch) {
				if pb.Batch.Name != "plain" {
					t.Errorf("expected batch name 'plain', got %s", pb.Batch.Name)
				}
				if len(pb.Batch.Actions) != 1 {
					t.Errorf("expected 1 action, got %d", len(pb.Batch.Actions))
				}
			},
		},
		{
			name: "options decoded",
			content: `
batch: {
	actions: [{kind: "add_sheet", parameters: {name: "Data"}}]
	options: {
		completion_policy: "abort_on_first_failure"
		dry_run:           true
	}
}
`,
			checkFunc: func(t *testing.T, pb *ParsedBatch) {
				if pb.Batch.Options.CompletionPolicy != "abort_on_first_failure" {
					t.Errorf("unexpected completion policy: %s", pb.Batch.Options.CompletionPolicy)
				}
				if !pb.Batch.Options.DryRun {
					t.Error("expected dry_run true")
				}
			},
		},
		{
			name: "invalid CUE syntax",
			content: `
batch: {
	name: "broken
}
`,
			errCount: 1,
		},
		{
			name: "missing actions",
			content: `
batch: {
	name: "empty"
}
`,
			errCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := parser.ParseInline(ctx, tt.content)
			if err != nil {
				t.Fatalf("ParseInline returned error: %v", err)
			}

			if tt.errCount > 0 {
				if len(parsed.Errors) == 0 {
					t.Fatal("expected validation errors, got none")
				}
				return
			}

			if len(parsed.Errors) > 0 {
				t.Fatalf("unexpected errors: %v", parsed.Errors)
			}
			if tt.checkFunc != nil {
				tt.checkFunc(t, parsed)
			}
		})
	}
}

func TestCUEParser_ParseFile(t *testing.T) {
	parser := NewCUEParser()
	ctx := context.Background()

	tmpDir := t.TempDir()
	batchFile := filepath.Join(tmpDir, "batch.cue")

	content := `
batch: {
	name: "from-file"
	actions: [
		{kind: "set_zoom", sheet: "Sheet1", parameters: {zoom: 150}},
	]
}
`
	if err := os.WriteFile(batchFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write batch file: %v", err)
	}

	parsed, err := parser.Parse(ctx, []string{batchFile})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(parsed.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", parsed.Errors)
	}
	if parsed.Batch.Name != "from-file" {
		t.Errorf("expected batch name 'from-file', got %s", parsed.Batch.Name)
	}
	if len(parsed.SourceFiles) != 1 || parsed.SourceFiles[0] != batchFile {
		t.Errorf("unexpected source files: %v", parsed.SourceFiles)
	}
}

func TestCUEParser_Evaluate(t *testing.T) {
	parser := NewCUEParser()
	ctx := context.Background()

	tmpDir := t.TempDir()
	batchFile := filepath.Join(tmpDir, "batch.cue")

	content := `
batch: {
	actions: [
		{kind: "add_sheet", parameters: {name: "Summary"}},
		{kind: "protect_sheet", sheet: "Summary", parameters: {password: "s"}},
	]
}
`
	if err := os.WriteFile(batchFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write batch file: %v", err)
	}

	descriptors, err := parser.Evaluate(ctx, []string{batchFile})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if len(descriptors) != 2 {
		t.Fatalf("expected 2 descriptors, got %d", len(descriptors))
	}
	if descriptors[0].Kind != "add_sheet" {
		t.Errorf("expected first kind 'add_sheet', got %s", descriptors[0].Kind)
	}
	if descriptors[1].Sheet != "Summary" {
		t.Errorf("expected sheet 'Summary', got %s", descriptors[1].Sheet)
	}
}

func TestCUEParser_Evaluate_Invalid(t *testing.T) {
	parser := NewCUEParser()
	ctx := context.Background()

	tmpDir := t.TempDir()
	batchFile := filepath.Join(tmpDir, "bad.cue")

	if err := os.WriteFile(batchFile, []byte("batch: { name: 42 }"), 0644); err != nil {
		t.Fatalf("failed to write batch file: %v", err)
	}

	if _, err := parser.Evaluate(ctx, []string{batchFile}); err == nil {
		t.Error("expected error for invalid batch")
	}
}

func TestCUEParser_Parse_NoSources(t *testing.T) {
	parser := NewCUEParser()

	if _, err := parser.Parse(context.Background(), nil); err == nil {
		t.Error("expected error for empty sources")
	}
}

func TestCUEParser_ExtractValue(t *testing.T) {
	parser := NewCUEParser()

	val := parser.ctx.CompileString(`batch: {name: "x", actions: [{kind: "add_sheet"}]}`)

	got, err := parser.ExtractValue(val, "batch.name")
	if err != nil {
		t.Fatalf("ExtractValue failed: %v", err)
	}
	if got != "x" {
		t.Errorf("expected 'x', got %v", got)
	}

	if _, err := parser.ExtractValue(val, "batch.missing"); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestCUEParser_LoadFromDirectory(t *testing.T) {
	parser := NewCUEParser()

	tmpDir := t.TempDir()
	for _, name := range []string{"a.cue", "b.cue"} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte("x: 1"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("ignore"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	files, err := parser.LoadFromDirectory(tmpDir)
	if err != nil {
		t.Fatalf("LoadFromDirectory failed: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("expected 2 CUE files, got %d", len(files))
	}
}
