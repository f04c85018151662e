package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sheetflow/sheetflow/pkg/config"
	"github.com/sheetflow/sheetflow/pkg/document/memdoc"
	"github.com/sheetflow/sheetflow/pkg/engine"
	"github.com/sheetflow/sheetflow/pkg/mutators"
	"github.com/sheetflow/sheetflow/pkg/schema"
	"github.com/sheetflow/sheetflow/pkg/stores"
)

func newApplyCommand() *cobra.Command {
	var (
		workbookPath string
		dryRun       bool
		abortOnFail  bool
		policyPaths  []string
		noHistory    bool
	)

	cmd := &cobra.Command{
		Use:   "apply <batch-file>",
		Short: "Apply a batch of actions to a workbook",
		Long: `Apply a batch of action descriptors to a workbook state file.

The batch runs through the full pipeline: every action is validated
against its schema, the batch is ordered so creations precede
references, each action is gate-checked and dispatched, and a
per-action outcome is reported. The workbook file is rewritten only
after the session completes; dry runs never touch it.`,
		Example: `  # Apply a batch to the default workbook
  sheetflow apply quarterly-report.yaml

  # Apply against a specific workbook file
  sheetflow apply quarterly-report.yaml --workbook books/q3.yaml

  # Validate and order without dispatching anything
  sheetflow apply quarterly-report.yaml --dry-run

  # Stop at the first failed action
  sheetflow apply quarterly-report.yaml --abort-on-failure

  # Gate the batch with extra Rego policies
  sheetflow apply quarterly-report.yaml --policy-path policies/`,
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

			ctx, tel, shutdownTelemetry, err := setupTelemetry(ctx, settings)
			if err != nil {
				return err
			}
			defer shutdownTelemetry()

			batch, err := config.NewLoader(log.Logger).LoadBatch(ctx, batchPath)
			if err != nil {
				return err
			}

			state, err := memdoc.LoadState(workbookPath)
			if err != nil {
				return err
			}
			wb := memdoc.New(state)

			dry := dryRun || batch.Options.DryRun
			completion := batch.Options.Completion()
			if abortOnFail || (batch.Options.CompletionPolicy == "" &&
				settings.CompletionPolicy == string(engine.AbortOnFirstFailure)) {
				completion = engine.AbortOnFirstFailure
			}

			gate, err := buildPolicyGate(ctx, settings, policyPaths, dry)
			if err != nil {
				return err
			}

			var store *stores.SQLiteStore
			if !noHistory {
				store, err = openHistory(ctx, settings)
				if err != nil {
					log.Warn().Err(err).Msg("Run history unavailable")
				} else {
					defer store.Close()
					if tel != nil {
						tel.Events.Subscribe(stores.EventSink(store, log.Logger), nil)
					}
				}
			}

			log.Info().
				Str("batch", batch.Name).
				Str("workbook", workbookPath).
				Int("actions", len(batch.Actions)).
				Bool("dry_run", dry).
				Msg("Applying batch")

			descriptors := batch.Descriptors()
			session := engine.NewSession(schema.NewRegistry(), mutators.NewSet(log.Logger), log.Logger)
			report, err := session.Execute(ctx, descriptors, wb, engine.Options{
				Completion: completion,
				DryRun:     dry,
				Policy:     gate,
				BatchName:  batch.Name,
			})
			if err != nil {
				return err
			}

			if err := printReport(report); err != nil {
				return err
			}

			if !dry {
				if err := memdoc.SaveState(workbookPath, wb.State()); err != nil {
					return err
				}
			}

			if store != nil {
				if err := recordSession(ctx, store, report, descriptors, stores.RecordMeta{
					BatchName:  batch.Name,
					SourcePath: batchPath,
					Mode:       sessionMode(dry),
					Workbook:   workbookPath,
				}, wb.State()); err != nil {
					log.Warn().Err(err).Msg("Failed to record run history")
				}
			}

			if !dry && report.Status == engine.ReportFailed {
				return fmt.Errorf("batch %s failed: %d of %d actions did not apply",
					batch.Name, report.Summary.Rejected+report.Summary.Failed, report.Summary.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&workbookPath, "workbook", "w", "", "workbook state file (defaults to settings)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate and order without dispatching")
	cmd.Flags().BoolVar(&abortOnFail, "abort-on-failure", false, "stop at the first failed action")
	cmd.Flags().StringSliceVar(&policyPaths, "policy-path", nil, "extra policy files or directories")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "skip the run-history database")

	return cmd
}

func sessionMode(dry bool) string {
	if dry {
		return "dry_run"
	}
	return "live"
}

func recordSession(ctx context.Context, store *stores.SQLiteStore, report *engine.ExecutionReport, descriptors []engine.ActionDescriptor, meta stores.RecordMeta, state any) error {
	recorder := stores.NewRecorder(store, log.Logger)
	if err := recorder.RecordReport(ctx, report, descriptors, meta); err != nil {
		return err
	}
	if meta.Mode == "live" {
		if err := recorder.RecordSnapshot(ctx, report.SessionID, meta.Workbook, state); err != nil {
			return err
		}
	}
	return nil
}
