package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sheetflow/sheetflow/pkg/config"
	"github.com/sheetflow/sheetflow/pkg/document/memdoc"
	"github.com/sheetflow/sheetflow/pkg/engine"
	"github.com/sheetflow/sheetflow/pkg/mutators"
	"github.com/sheetflow/sheetflow/pkg/schema"
)

// watchDebounce coalesces the event bursts editors produce on save.
const watchDebounce = 300 * time.Millisecond

func newWatchCommand() *cobra.Command {
	var (
		workbookPath string
		policyPaths  []string
	)

	cmd := &cobra.Command{
		Use:   "watch <batch-file>",
		Short: "Re-validate a batch whenever it changes",
		Long: `Watch a batch file and re-validate it on every save.

Each change runs the batch through validation, ordering and the
policy gate as a dry run against the workbook. Nothing is dispatched.
Useful while authoring a batch: keep the watcher in one terminal and
see rejections as you edit.`,
		Example: `  # Watch a batch while editing it
  sheetflow watch quarterly-report.yaml

  # Watch against a specific workbook state
  sheetflow watch quarterly-report.yaml --workbook books/q3.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			batchPath, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			settings, err := loadSettings()
			if err != nil {
				return err
			}
			if workbookPath == "" {
				workbookPath = settings.WorkbookPath
			}

			ctx, _, shutdownTelemetry, err := setupTelemetry(ctx, settings)
			if err != nil {
				return err
			}
			defer shutdownTelemetry()

			check := func() {
				batch, err := config.NewLoader(log.Logger).LoadBatch(ctx, batchPath)
				if err != nil {
					fmt.Printf("-- %s\n", time.Now().Format(time.TimeOnly))
					fmt.Printf("parse error: %v\n", err)
					return
				}

				state, err := memdoc.LoadState(workbookPath)
				if err != nil {
					fmt.Printf("workbook error: %v\n", err)
					return
				}

				gate, err := buildPolicyGate(ctx, settings, policyPaths, true)
				if err != nil {
					fmt.Printf("policy error: %v\n", err)
					return
				}

				session := engine.NewSession(schema.NewRegistry(), mutators.NewSet(log.Logger), log.Logger)
				report, err := session.Execute(ctx, batch.Descriptors(), memdoc.New(state), engine.Options{
					DryRun:    true,
					Policy:    gate,
					BatchName: batch.Name,
				})
				if err != nil {
					fmt.Printf("session error: %v\n", err)
					return
				}

				fmt.Printf("-- %s\n", time.Now().Format(time.TimeOnly))
				if err := printReport(report); err != nil {
					log.Error().Err(err).Msg("Failed to print report")
				}
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("failed to create watcher: %w", err)
			}
			defer watcher.Close()

			// Watch the directory, not the file: editors that rename a
			// temp file over the target drop the file's own watch.
			if err := watcher.Add(filepath.Dir(batchPath)); err != nil {
				return fmt.Errorf("failed to watch %s: %w", batchPath, err)
			}

			log.Info().Str("batch", batchPath).Msg("Watching for changes")
			check()

			var debounce *time.Timer
			fired := make(chan struct{}, 1)
			for {
				select {
				case <-ctx.Done():
					return nil
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if event.Name != batchPath {
						continue
					}
					if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
						continue
					}
					if debounce != nil {
						debounce.Stop()
					}
					debounce = time.AfterFunc(watchDebounce, func() {
						select {
						case fired <- struct{}{}:
						default:
						}
					})
				case <-fired:
					check()
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					log.Error().Err(err).Msg("Watcher error")
				}
			}
		},
	}

	cmd.Flags().StringVarP(&workbookPath, "workbook", "w", "", "workbook state file (defaults to settings)")
	cmd.Flags().StringSliceVar(&policyPaths, "policy-path", nil, "extra policy files or directories")

	return cmd
}
