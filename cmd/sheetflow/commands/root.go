package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
	jsonOutput bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sheetflow",
		Short: "SheetFlow - Spreadsheet Action Execution Engine",
		Long: `SheetFlow applies batches of structured action descriptors to a
spreadsheet workbook and reports a per-action outcome for each one.

Features:
  - 87 action kinds across 15 operation families
  - Batch files in YAML, JSON, CUE or Starlark
  - Dependency-aware ordering with creation-before-reference
  - Rego policy gate for admission control
  - Dry-run validation without touching the workbook
  - SQLite run history with per-action outcomes`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "settings file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	// Add subcommands
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newApplyCommand())
	rootCmd.AddCommand(newSchemasCommand())
	rootCmd.AddCommand(newPolicyCommand())
	rootCmd.AddCommand(newHistoryCommand())
	rootCmd.AddCommand(newWatchCommand())

	return rootCmd
}
