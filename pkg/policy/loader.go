package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Loader reads policy definitions from disk. Two formats are understood:
// a raw .rego module becomes a warning-severity policy named after the
// file, and a .json document carries a full Policy record.
type Loader struct {
	logger zerolog.Logger
}

// NewLoader creates a policy loader.
func NewLoader(logger zerolog.Logger) *Loader {
	return &Loader{
		logger: logger.With().Str("component", "policy-loader").Logger(),
	}
}

// LoadFromPaths gathers policies from each path in order. A directory is
// walked recursively for .rego and .json files, and a file inside it
// that fails to parse is logged and skipped. An explicitly listed file
// must parse, and a missing path is always an error.
func (l *Loader) LoadFromPaths(ctx context.Context, paths []string) ([]Policy, error) {
	var all []Policy

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load from path %s: %w", path, err)
		}

		if info.IsDir() {
			found, err := l.readDirectory(ctx, path)
			if err != nil {
				return nil, fmt.Errorf("failed to load from path %s: %w", path, err)
			}
			all = append(all, found...)
			continue
		}

		p, err := l.readFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load from path %s: %w", path, err)
		}
		all = append(all, *p)
	}

	l.logger.Info().
		Int("total", len(all)).
		Int("sources", len(paths)).
		Msg("Policies loaded from paths")

	return all, nil
}

// readDirectory walks dir and collects every policy file under it.
func (l *Loader) readDirectory(ctx context.Context, dir string) ([]Policy, error) {
	var found []Policy

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !isPolicyFile(path) {
			return nil
		}

		p, err := l.readFile(path)
		if err != nil {
			l.logger.Warn().Err(err).Str("path", path).Msg("Failed to load policy file")
			return nil
		}

		found = append(found, *p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	return found, nil
}

func isPolicyFile(path string) bool {
	return strings.HasSuffix(path, ".rego") || strings.HasSuffix(path, ".json")
}

// readFile parses a single policy file by extension.
func (l *Loader) readFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var p *Policy
	switch {
	case strings.HasSuffix(path, ".rego"):
		p = policyFromRego(path, data)
	case strings.HasSuffix(path, ".json"):
		p, err = policyFromJSON(data)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}

	l.logger.Debug().
		Str("path", path).
		Str("policy", p.Name).
		Msg("Policy loaded from file")

	return p, nil
}

// policyFromRego wraps a bare Rego module in a Policy. The policy takes
// its name from the filename and its description from the module's
// leading comment block.
func policyFromRego(path string, data []byte) *Policy {
	now := time.Now()
	return &Policy{
		Name:        strings.TrimSuffix(filepath.Base(path), ".rego"),
		Description: docComment(string(data)),
		Rego:        string(data),
		Severity:    SeverityWarning,
		Enabled:     true,
		Tags:        []string{},
		Metadata: map[string]interface{}{
			"source": path,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// policyFromJSON decodes a full Policy record, filling in the severity
// and timestamps when the document omits them.
func policyFromJSON(data []byte) (*Policy, error) {
	var p Policy
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse JSON policy: %w", err)
	}

	if p.Severity == "" {
		p.Severity = SeverityWarning
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}

	return &p, nil
}

// docComment joins the # comment lines preceding the first statement of
// a Rego module into a one-line description.
func docComment(module string) string {
	var b strings.Builder

	for _, line := range strings.Split(module, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			if trimmed != "" && b.Len() > 0 {
				break
			}
			continue
		}

		text := strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
		if text == "" || strings.HasPrefix(text, "package") {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(text)
	}

	return b.String()
}
