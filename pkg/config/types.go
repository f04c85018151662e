package config

import (
	"time"

	"github.com/sheetflow/sheetflow/pkg/engine"
)

// ActionConfig is one action descriptor as it appears in a batch
// file, before it is handed to the engine.
type ActionConfig struct {
	// Kind is the action kind identifier.
	Kind string `json:"kind" yaml:"kind" validate:"required"`

	// Sheet is the worksheet the action addresses. Empty means the
	// workbook's active sheet.
	Sheet string `json:"sheet,omitempty" yaml:"sheet,omitempty"`

	// Target is the action's target reference.
	Target string `json:"target,omitempty" yaml:"target,omitempty"`

	// Parameters are the named parameter values.
	Parameters map[string]interface{} `json:"parameters,omitempty" yaml:"parameters,omitempty"`

	// DependsOn optionally names an entity another action in the
	// batch creates. Name-based inference stays authoritative.
	DependsOn string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
}

// Descriptor converts the config form to the engine's descriptor.
func (a ActionConfig) Descriptor() engine.ActionDescriptor {
	return engine.ActionDescriptor{
		Kind:       a.Kind,
		Sheet:      a.Sheet,
		Target:     a.Target,
		Parameters: a.Parameters,
		DependsOn:  a.DependsOn,
	}
}

// BatchOptions are the execution options a batch file may carry.
type BatchOptions struct {
	// CompletionPolicy controls how the session reacts to a failed
	// action.
	CompletionPolicy string `json:"completion_policy,omitempty" yaml:"completion_policy,omitempty" validate:"omitempty,oneof=continue_on_failure abort_on_first_failure"`

	// DryRun validates and orders the batch without dispatching.
	DryRun bool `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
}

// Completion maps the option string to the engine's policy, with
// continue-on-failure as the default.
func (o BatchOptions) Completion() engine.CompletionPolicy {
	if o.CompletionPolicy == string(engine.AbortOnFirstFailure) {
		return engine.AbortOnFirstFailure
	}
	return engine.ContinueOnFailure
}

// Batch is a named collection of action descriptors loaded from a
// batch file.
type Batch struct {
	// Name identifies the batch in logs and the run history.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Description provides a human-readable description.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Options are the execution options for the batch.
	Options BatchOptions `json:"options,omitempty" yaml:"options,omitempty"`

	// Actions are the descriptors in input order.
	Actions []ActionConfig `json:"actions" yaml:"actions" validate:"required,min=1,dive"`
}

// Descriptors returns the batch's actions in engine form, preserving
// input order.
func (b *Batch) Descriptors() []engine.ActionDescriptor {
	out := make([]engine.ActionDescriptor, len(b.Actions))
	for i, a := range b.Actions {
		out[i] = a.Descriptor()
	}
	return out
}

// ParsedBatch is the result of parsing a batch source, including any
// validation errors found along the way.
type ParsedBatch struct {
	// Batch is the parsed batch. Meaningful only when Errors is empty.
	Batch Batch `json:"batch"`

	// SourceFiles are the files that were parsed.
	SourceFiles []string `json:"source_files"`

	// ParsedAt is when the batch was parsed.
	ParsedAt time.Time `json:"parsed_at"`

	// Errors lists any validation errors.
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a validation error with location
// information.
type ValidationError struct {
	// File is the source file path.
	File string `json:"file,omitempty"`

	// Line is the line number (1-indexed).
	Line int `json:"line,omitempty"`

	// Column is the column number (1-indexed).
	Column int `json:"column,omitempty"`

	// Path is the path to the error (e.g., "actions[3].kind").
	Path string `json:"path,omitempty"`

	// Message is the error message.
	Message string `json:"message"`

	// Severity is the error severity (error, warning, info).
	Severity string `json:"severity" validate:"required,oneof=error warning info"`
}

// StarlarkContext provides context for Starlark execution.
type StarlarkContext struct {
	// Input is the input data passed to Starlark.
	Input map[string]interface{} `json:"input,omitempty"`

	// Timeout is the execution timeout.
	Timeout time.Duration `json:"timeout"`
}

// StarlarkResult represents the result of Starlark execution.
type StarlarkResult struct {
	// Output is the output data from Starlark.
	Output map[string]interface{} `json:"output,omitempty"`

	// ExecutionTime is how long the script took to execute.
	ExecutionTime time.Duration `json:"execution_time"`

	// Error is any error that occurred.
	Error string `json:"error,omitempty"`
}
