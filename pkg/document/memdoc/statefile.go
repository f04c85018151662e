package memdoc

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadState reads a workbook state file. A missing file yields an
// empty state so a fresh workbook path just works.
func LoadState(path string) (*State, error) {
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return &State{}, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read workbook %s: %w", path, err)
	}

	st := &State{}
	if err := yaml.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("failed to parse workbook %s: %w", path, err)
	}
	return st, nil
}

// SaveState writes the workbook state back to path. The write goes
// through a temp file in the same directory so a crash never leaves a
// half-written workbook behind.
func SaveState(path string, st *State) error {
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode workbook: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".workbook-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp workbook: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close workbook: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace workbook %s: %w", path, err)
	}
	return nil
}
