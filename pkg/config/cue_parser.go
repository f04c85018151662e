package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"github.com/go-playground/validator/v10"

	"github.com/sheetflow/sheetflow/pkg/engine"
)

// CUEParser parses and validates CUE batch files.
type CUEParser struct {
	ctx               *cue.Context
	schemaRegistry    *SchemaRegistry
	starlarkEvaluator *StarlarkEvaluator
	validator         *validator.Validate
}

// NewCUEParser creates a new CUE parser.
func NewCUEParser() *CUEParser {
	return &CUEParser{
		ctx:               cuecontext.New(),
		schemaRegistry:    NewSchemaRegistry(),
		starlarkEvaluator: NewStarlarkEvaluator(30 * time.Second),
		validator:         validator.New(),
	}
}

// Evaluate parses CUE batch sources and returns the action
// descriptors ready for a session.
func (cp *CUEParser) Evaluate(ctx context.Context, sources []string) ([]engine.ActionDescriptor, error) {
	parsed, err := cp.Parse(ctx, sources)
	if err != nil {
		return nil, err
	}

	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("validation errors: %v", parsed.Errors)
	}

	return parsed.Batch.Descriptors(), nil
}

// EvaluateStarlark executes a Starlark script for procedural batch
// generation.
func (cp *CUEParser) EvaluateStarlark(ctx context.Context, script string, input map[string]interface{}) (map[string]interface{}, error) {
	result, err := cp.starlarkEvaluator.Evaluate(ctx, script, input)
	if err != nil {
		return nil, err
	}

	if result.Error != "" {
		return nil, fmt.Errorf("starlark error: %s", result.Error)
	}

	return result.Output, nil
}

// Parse parses a batch from the given CUE sources.
func (cp *CUEParser) Parse(ctx context.Context, sources []string) (*ParsedBatch, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources provided")
	}

	var cueValue cue.Value
	var sourceFiles []string
	var parseErrors []ValidationError

	for _, source := range sources {
		info, err := os.Stat(source)
		if err != nil {
			return nil, fmt.Errorf("failed to stat source %s: %w", source, err)
		}

		if info.IsDir() {
			val, files, errs := cp.loadDirectory(source)
			if len(errs) > 0 {
				parseErrors = append(parseErrors, errs...)
			}
			if val.Exists() {
				if cueValue.Exists() {
					cueValue = cueValue.Unify(val)
				} else {
					cueValue = val
				}
			}
			sourceFiles = append(sourceFiles, files...)
		} else {
			val, errs := cp.loadFile(source)
			if len(errs) > 0 {
				parseErrors = append(parseErrors, errs...)
			}
			if val.Exists() {
				if cueValue.Exists() {
					cueValue = cueValue.Unify(val)
				} else {
					cueValue = val
				}
			}
			sourceFiles = append(sourceFiles, source)
		}
	}

	if len(parseErrors) > 0 {
		return &ParsedBatch{
			SourceFiles: sourceFiles,
			ParsedAt:    time.Now(),
			Errors:      parseErrors,
		}, nil
	}

	if err := cueValue.Err(); err != nil {
		parseErrors = append(parseErrors, cp.convertCUEErrors(err)...)
		return &ParsedBatch{
			SourceFiles: sourceFiles,
			ParsedAt:    time.Now(),
			Errors:      parseErrors,
		}, nil
	}

	return cp.extractBatch(cueValue, sourceFiles)
}

// loadDirectory loads a directory as a CUE package.
func (cp *CUEParser) loadDirectory(dir string) (cue.Value, []string, []ValidationError) {
	buildInstances := load.Instances([]string{dir}, nil)
	if len(buildInstances) == 0 {
		return cue.Value{}, nil, []ValidationError{{
			File:     dir,
			Message:  "no CUE files found",
			Severity: "error",
		}}
	}

	inst := buildInstances[0]
	if inst.Err != nil {
		return cue.Value{}, nil, cp.convertCUEErrors(inst.Err)
	}

	val := cp.ctx.BuildInstance(inst)
	if err := val.Err(); err != nil {
		return cue.Value{}, nil, cp.convertCUEErrors(err)
	}

	var files []string
	for _, file := range inst.Files {
		if file.Filename != "" {
			files = append(files, file.Filename)
		}
	}

	return val, files, nil
}

// loadFile loads a single CUE file.
func (cp *CUEParser) loadFile(path string) (cue.Value, []ValidationError) {
	content, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, []ValidationError{{
			File:     path,
			Message:  fmt.Sprintf("failed to read file: %v", err),
			Severity: "error",
		}}
	}

	val := cp.ctx.CompileString(string(content), cue.Filename(path))
	if err := val.Err(); err != nil {
		return cue.Value{}, cp.convertCUEErrors(err)
	}

	return val, nil
}

// extractBatch extracts the batch from a CUE value. The batch may sit
// under a top-level "batch" field or at the root.
func (cp *CUEParser) extractBatch(val cue.Value, sourceFiles []string) (*ParsedBatch, error) {
	parsed := &ParsedBatch{
		SourceFiles: sourceFiles,
		ParsedAt:    time.Now(),
	}

	root := val
	if batchVal := val.LookupPath(cue.ParsePath("batch")); batchVal.Exists() {
		root = batchVal
	}

	var batch Batch
	if err := root.Decode(&batch); err != nil {
		parsed.Errors = append(parsed.Errors, ValidationError{
			Path:     "batch",
			Message:  fmt.Sprintf("failed to decode batch: %v", err),
			Severity: "error",
		})
		return parsed, nil
	}

	if err := cp.validator.Struct(&batch); err != nil {
		parsed.Errors = append(parsed.Errors, ValidationError{
			Path:     "batch",
			Message:  err.Error(),
			Severity: "error",
		})
		return parsed, nil
	}

	for i, action := range batch.Actions {
		if err := cp.validator.Struct(action); err != nil {
			parsed.Errors = append(parsed.Errors, ValidationError{
				Path:     fmt.Sprintf("actions[%d]", i),
				Message:  err.Error(),
				Severity: "error",
			})
		}
	}

	parsed.Batch = batch
	return parsed, nil
}

// convertCUEErrors converts CUE errors to ValidationError slice.
func (cp *CUEParser) convertCUEErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	errs := errors.Errors(err)
	for _, e := range errs {
		pos := errors.Positions(e)
		var file string
		var line, column int

		if len(pos) > 0 {
			file = pos[0].Filename()
			line = pos[0].Line()
			column = pos[0].Column()
		}

		validationErrors = append(validationErrors, ValidationError{
			File:     file,
			Line:     line,
			Column:   column,
			Message:  errors.Details(e, nil),
			Severity: "error",
		})
	}

	return validationErrors
}

// ParseInline parses an inline CUE batch definition.
func (cp *CUEParser) ParseInline(ctx context.Context, content string) (*ParsedBatch, error) {
	val := cp.ctx.CompileString(content)
	if err := val.Err(); err != nil {
		return &ParsedBatch{
			SourceFiles: []string{"inline"},
			ParsedAt:    time.Now(),
			Errors:      cp.convertCUEErrors(err),
		}, nil
	}

	return cp.extractBatch(val, []string{"inline"})
}

// ValidateWithSchema validates data against a named schema.
func (cp *CUEParser) ValidateWithSchema(ctx context.Context, data interface{}, schemaName string) error {
	return cp.schemaRegistry.ValidateAgainstSchema(ctx, schemaName, data)
}

// GetSchemaRegistry returns the schema registry.
func (cp *CUEParser) GetSchemaRegistry() *SchemaRegistry {
	return cp.schemaRegistry
}

// ExtractValue extracts a specific path from a CUE value.
func (cp *CUEParser) ExtractValue(val cue.Value, path string) (interface{}, error) {
	v := val.LookupPath(cue.ParsePath(path))
	if !v.Exists() {
		return nil, fmt.Errorf("path %s not found", path)
	}

	var result interface{}
	if err := v.Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode value at %s: %w", path, err)
	}

	return result, nil
}

// MergeValues merges two CUE values.
func (cp *CUEParser) MergeValues(val1, val2 cue.Value) (cue.Value, error) {
	merged := val1.Unify(val2)
	if err := merged.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("failed to merge values: %w", err)
	}
	return merged, nil
}

// ExportJSON exports a CUE value to JSON.
func (cp *CUEParser) ExportJSON(val cue.Value) ([]byte, error) {
	var data interface{}
	if err := val.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode value: %w", err)
	}

	return json.MarshalIndent(data, "", "  ")
}

// LoadFromDirectory lists all CUE files under a directory.
func (cp *CUEParser) LoadFromDirectory(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && strings.HasSuffix(path, ".cue") {
			files = append(files, path)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	return files, nil
}
