package config

import (
	"context"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// SchemaRegistry manages CUE schemas for validation.
type SchemaRegistry struct {
	ctx     *cue.Context
	schemas map[string]cue.Value
	mu      sync.RWMutex
}

// NewSchemaRegistry creates a new schema registry with built-in schemas.
func NewSchemaRegistry() *SchemaRegistry {
	ctx := cuecontext.New()
	sr := &SchemaRegistry{
		ctx:     ctx,
		schemas: make(map[string]cue.Value),
	}

	sr.registerBuiltInSchemas()

	return sr
}

// registerBuiltInSchemas registers all built-in schemas.
func (sr *SchemaRegistry) registerBuiltInSchemas() {
	sr.RegisterSchema("action", builtinActionSchema)
	sr.RegisterSchema("batch", builtinBatchSchema)
	sr.RegisterSchema("options", builtinOptionsSchema)
}

// RegisterSchema registers a CUE schema with the given name.
func (sr *SchemaRegistry) RegisterSchema(name, schema string) error {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	val := sr.ctx.CompileString(schema)
	if err := val.Err(); err != nil {
		return fmt.Errorf("failed to compile schema %s: %w", name, err)
	}

	sr.schemas[name] = val
	return nil
}

// GetSchema retrieves a schema by name.
func (sr *SchemaRegistry) GetSchema(name string) (cue.Value, bool) {
	sr.mu.RLock()
	defer sr.mu.RUnlock()

	val, ok := sr.schemas[name]
	return val, ok
}

// ValidateAgainstSchema validates data against a named schema.
func (sr *SchemaRegistry) ValidateAgainstSchema(ctx context.Context, schemaName string, data interface{}) error {
	schema, ok := sr.GetSchema(schemaName)
	if !ok {
		return fmt.Errorf("schema %s not found", schemaName)
	}

	dataVal := sr.ctx.Encode(data)
	if err := dataVal.Err(); err != nil {
		return fmt.Errorf("failed to encode data: %w", err)
	}

	// Unify with schema (validates)
	unified := schema.Unify(dataVal)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return nil
}

// ListSchemas returns all registered schema names.
func (sr *SchemaRegistry) ListSchemas() []string {
	sr.mu.RLock()
	defer sr.mu.RUnlock()

	names := make([]string, 0, len(sr.schemas))
	for name := range sr.schemas {
		names = append(names, name)
	}
	return names
}

// Built-in schema definitions

const builtinActionSchema = `
// Action schema for one batch action descriptor
{
	// Kind is the action kind identifier
	kind: string & =~"^[a-z][a-z0-9_]*$"

	// Sheet is the worksheet the action addresses
	sheet?: string

	// Target is the action's target reference
	target?: string

	// Parameters are the named parameter values
	parameters?: {...}

	// DependsOn optionally names an entity a sibling action creates
	depends_on?: string
}
`

const builtinBatchSchema = `
// Batch schema for a batch file
{
	// Name identifies the batch
	name?: string & =~"^[a-zA-Z0-9_-]+$"

	// Description provides a human-readable description
	description?: string

	// Options are the execution options
	options?: {
		completion_policy?: "continue_on_failure" | "abort_on_first_failure"
		dry_run?: bool
	}

	// Actions are the descriptors in input order
	actions: [...{
		kind: string & =~"^[a-z][a-z0-9_]*$"
		sheet?: string
		target?: string
		parameters?: {...}
		depends_on?: string
	}]
}
`

const builtinOptionsSchema = `
// Options schema for batch execution options
{
	completion_policy?: "continue_on_failure" | "abort_on_first_failure"
	dry_run?: bool
}
`

// ValidateAction validates one action descriptor against the action
// schema.
func (sr *SchemaRegistry) ValidateAction(ctx context.Context, action ActionConfig) error {
	return sr.ValidateAgainstSchema(ctx, "action", action)
}

// ValidateBatch validates a whole batch against the batch schema.
func (sr *SchemaRegistry) ValidateBatch(ctx context.Context, batch Batch) error {
	return sr.ValidateAgainstSchema(ctx, "batch", batch)
}

// ValidateOptions validates batch options against the options schema.
func (sr *SchemaRegistry) ValidateOptions(ctx context.Context, opts BatchOptions) error {
	return sr.ValidateAgainstSchema(ctx, "options", opts)
}
