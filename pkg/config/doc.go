// Package config provides batch loading, CUE parsing and Starlark
// evaluation for action batches.
//
// # Overview
//
// The config package turns batch files into the action descriptors a
// session executes. Batches can be written declaratively in YAML,
// JSON or CUE, or generated procedurally with a Starlark script.
//
// # Features
//
//   - Batch loading with format selection by file extension
//   - CUE parsing from files, directories, and inline content
//   - Built-in CUE schemas for batches, actions, and options
//   - Starlark script execution with timeout enforcement
//   - Struct-tag validation of loaded batches
//   - Error reporting with file locations and line numbers
//   - Application settings from YAML files and the environment
//
// # Components
//
// Loader: Loads batch files of any supported format and validates
// them before they reach the engine.
//
// CUEParser: Parses CUE batch definitions and validates them against
// the built-in schemas.
//
// SchemaRegistry: Manages CUE schemas. Provides built-in schemas for
// batches and supports custom schema registration.
//
// StarlarkEvaluator: Safe Starlark script execution with timeout
// enforcement and sandboxing. A script defines an "actions" global
// that becomes the batch.
//
// # Usage Example
//
//	loader := config.NewLoader(logger)
//
//	batch, err := loader.LoadBatch(ctx, "monthly-report.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := session.Execute(ctx, batch.Descriptors(), doc, engine.Options{
//	    Completion: batch.Options.Completion(),
//	    DryRun:     batch.Options.DryRun,
//	})
//
// # Starlark Batches
//
// A .star batch computes its actions at load time:
//
//	_months = ["Jan", "Feb", "Mar"]
//
//	actions = [
//	    {
//	        "kind": "add_sheet",
//	        "parameters": {"name": m},
//	    }
//	    for m in _months
//	]
//
// Globals starting with an underscore stay internal; "name",
// "description" and "options" are picked up when defined.
package config
