package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sheetflow/sheetflow/pkg/config"
	"github.com/sheetflow/sheetflow/pkg/document/memdoc"
	"github.com/sheetflow/sheetflow/pkg/engine"
	"github.com/sheetflow/sheetflow/pkg/mutators"
	"github.com/sheetflow/sheetflow/pkg/schema"
)

func newValidateCommand() *cobra.Command {
	var (
		workbookPath string
		policyPaths  []string
	)

	cmd := &cobra.Command{
		Use:   "validate <batch-file>",
		Short: "Validate a batch without applying it",
		Long: `Validate a batch of action descriptors against a workbook.

The batch runs through validation, ordering and the policy gate in a
dry run. Nothing is dispatched and the workbook file is not touched.
The exit code is non-zero when any action would be rejected.`,
		Example: `  # Validate a batch against the default workbook
  sheetflow validate quarterly-report.yaml

  # Validate against a specific workbook state
  sheetflow validate quarterly-report.yaml --workbook books/q3.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			batchPath := args[0]

			settings, err := loadSettings()
			if err != nil {
				return err
			}
			if workbookPath == "" {
				workbookPath = settings.WorkbookPath
			}

			batch, err := config.NewLoader(log.Logger).LoadBatch(ctx, batchPath)
			if err != nil {
				return err
			}

			state, err := memdoc.LoadState(workbookPath)
			if err != nil {
				return err
			}

			gate, err := buildPolicyGate(ctx, settings, policyPaths, true)
			if err != nil {
				return err
			}

			session := engine.NewSession(schema.NewRegistry(), mutators.NewSet(log.Logger), log.Logger)
			report, err := session.Execute(ctx, batch.Descriptors(), memdoc.New(state), engine.Options{
				DryRun:    true,
				Policy:    gate,
				BatchName: batch.Name,
			})
			if err != nil {
				return err
			}

			if err := printReport(report); err != nil {
				return err
			}

			if n := report.Summary.Rejected + report.Summary.Failed; n > 0 {
				return fmt.Errorf("batch %s is invalid: %d of %d actions rejected",
					batch.Name, n, report.Summary.Total)
			}
			fmt.Printf("Batch %s is valid: %d actions ready\n", batch.Name, report.Summary.Total)
			return nil
		},
	}

	cmd.Flags().StringVarP(&workbookPath, "workbook", "w", "", "workbook state file (defaults to settings)")
	cmd.Flags().StringSliceVar(&policyPaths, "policy-path", nil, "extra policy files or directories")

	return cmd
}
