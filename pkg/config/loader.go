package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Loader loads batches from files. The format is chosen by file
// extension: .yaml/.yml, .json, .cue, or .star for Starlark scripts
// that generate the batch procedurally.
type Loader struct {
	cue       *CUEParser
	starlark  *StarlarkEvaluator
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewLoader creates a batch loader.
func NewLoader(logger zerolog.Logger) *Loader {
	return &Loader{
		cue:       NewCUEParser(),
		starlark:  NewStarlarkEvaluator(30 * time.Second),
		validator: validator.New(),
		logger:    logger.With().Str("component", "batch-loader").Logger(),
	}
}

// LoadBatch loads and validates one batch file.
func (l *Loader) LoadBatch(ctx context.Context, path string) (*Batch, error) {
	var batch *Batch
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		batch, err = l.loadYAML(path)
	case ".json":
		batch, err = l.loadJSON(path)
	case ".cue":
		batch, err = l.loadCUE(ctx, path)
	case ".star":
		batch, err = l.loadStarlark(ctx, path)
	default:
		return nil, fmt.Errorf("unsupported batch format: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	if batch.Name == "" {
		batch.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	if err := l.validator.Struct(batch); err != nil {
		return nil, fmt.Errorf("batch %s failed validation: %w", path, err)
	}

	l.logger.Debug().
		Str("path", path).
		Str("batch", batch.Name).
		Int("actions", len(batch.Actions)).
		Msg("Batch loaded")

	return batch, nil
}

func (l *Loader) loadYAML(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch: %w", err)
	}

	var batch Batch
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to parse YAML batch: %w", err)
	}
	return &batch, nil
}

func (l *Loader) loadJSON(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch: %w", err)
	}

	var batch Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to parse JSON batch: %w", err)
	}
	return &batch, nil
}

func (l *Loader) loadCUE(ctx context.Context, path string) (*Batch, error) {
	parsed, err := l.cue.Parse(ctx, []string{path})
	if err != nil {
		return nil, err
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("batch %s has validation errors: %v", path, parsed.Errors)
	}
	batch := parsed.Batch
	return &batch, nil
}

func (l *Loader) loadStarlark(ctx context.Context, path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch script: %w", err)
	}

	return l.starlark.GenerateBatch(ctx, string(data), nil)
}
