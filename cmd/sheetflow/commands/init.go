package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sheetflow/sheetflow/pkg/config"
	"github.com/sheetflow/sheetflow/pkg/document/memdoc"
)

const sampleBatch = `name: example
description: Create a table, style it and name a range
options:
  completion_policy: continue_on_failure
actions:
  - kind: create_table
    sheet: Sheet1
    target: A1:C10
    parameters:
      name: Orders
      has_headers: true
  - kind: apply_table_style
    target: Orders
    parameters:
      style: TableStyleMedium2
  - kind: create_named_range
    sheet: Sheet1
    target: A1:A10
    parameters:
      name: OrderIDs
`

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a sheetflow workspace",
		Long: `Create a starter workspace: a settings file, an empty workbook
state file and an example batch.`,
		Example: `  # Initialize the current directory
  sheetflow init

  # Initialize a new directory
  sheetflow init reports/`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}

			settings := config.DefaultSettings()
			settingsData, err := yaml.Marshal(settings)
			if err != nil {
				return err
			}

			files := map[string][]byte{
				"sheetflow.yaml": settingsData,
				"example.yaml":   []byte(sampleBatch),
			}
			for name, data := range files {
				path := filepath.Join(dir, name)
				if _, err := os.Stat(path); err == nil && !force {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return err
				}
				log.Info().Str("path", path).Msg("Created")
			}

			workbookPath := filepath.Join(dir, settings.WorkbookPath)
			if _, err := os.Stat(workbookPath); os.IsNotExist(err) || force {
				wb := memdoc.New(nil)
				if err := memdoc.SaveState(workbookPath, wb.State()); err != nil {
					return err
				}
				log.Info().Str("path", workbookPath).Msg("Created")
			}

			fmt.Println("Workspace initialized. Try:")
			fmt.Printf("  sheetflow validate %s\n", filepath.Join(dir, "example.yaml"))
			fmt.Printf("  sheetflow apply %s\n", filepath.Join(dir, "example.yaml"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")

	return cmd
}
