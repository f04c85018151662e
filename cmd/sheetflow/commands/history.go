package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sheetflow/sheetflow/pkg/stores"
)

func newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the run history",
		Long: `Inspect past sessions recorded in the run-history database.

Every applied batch leaves a session row, one outcome row per action
and an event trail. Live sessions also record a workbook snapshot.`,
	}

	cmd.AddCommand(newHistoryListCommand())
	cmd.AddCommand(newHistoryShowCommand())
	cmd.AddCommand(newHistoryEntitiesCommand())

	return cmd
}

func newHistoryListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded sessions",
		Example: `  # List the most recent sessions
  sheetflow history list

  # List more of them as JSON
  sheetflow history list --limit 50 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			settings, err := loadSettings()
			if err != nil {
				return err
			}
			store, err := openHistory(ctx, settings)
			if err != nil {
				return err
			}
			defer store.Close()

			sessions, err := store.ListSessions(ctx, limit, 0)
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(sessions)
			}

			if len(sessions) == 0 {
				fmt.Println("No sessions recorded")
				return nil
			}
			for _, s := range sessions {
				fmt.Printf("%s  %-9s  %-8s  %s  %d/%d applied\n",
					s.StartedAt.Format(time.RFC3339), s.Status, s.Mode,
					s.BatchName, s.Applied, s.TotalActions)
				fmt.Printf("  id: %s\n", s.ID)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum sessions to list")

	return cmd
}

func newHistoryShowCommand() *cobra.Command {
	var withEvents bool

	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show one session's outcomes",
		Example: `  # Show a session with its per-action outcomes
  sheetflow history show 1b4e28ba-2fa1-11d2-883f-0016d3cca427

  # Include the event trail
  sheetflow history show 1b4e28ba-2fa1-11d2-883f-0016d3cca427 --events`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sessionID := args[0]

			settings, err := loadSettings()
			if err != nil {
				return err
			}
			store, err := openHistory(ctx, settings)
			if err != nil {
				return err
			}
			defer store.Close()

			session, err := store.GetSession(ctx, sessionID)
			if err != nil {
				return err
			}
			outcomes, err := store.ListOutcomesBySession(ctx, sessionID)
			if err != nil {
				return err
			}

			if jsonOutput {
				view := struct {
					Session  *stores.Session   `json:"session"`
					Outcomes []*stores.Outcome `json:"outcomes"`
				}{session, outcomes}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}

			fmt.Printf("Session %s\n", session.ID)
			fmt.Printf("  batch:    %s\n", session.BatchName)
			fmt.Printf("  mode:     %s\n", session.Mode)
			fmt.Printf("  status:   %s\n", session.Status)
			fmt.Printf("  source:   %s\n", session.SourcePath)
			fmt.Printf("  started:  %s\n", session.StartedAt.Format(time.RFC3339))
			if session.Error != nil {
				fmt.Printf("  error:    %s\n", *session.Error)
			}
			fmt.Printf("  %d actions: %d applied, %d rejected, %d skipped, %d failed\n",
				session.TotalActions, session.Applied, session.Rejected,
				session.Skipped, session.Failed)

			for _, o := range outcomes {
				line := fmt.Sprintf("  [%d] %s %s", o.ActionIndex, o.Kind, o.Status)
				if o.Sheet != "" {
					line += " sheet=" + o.Sheet
				}
				if o.ErrorKind != nil {
					line += fmt.Sprintf(" (%s", *o.ErrorKind)
					if o.ErrorMessage != nil {
						line += ": " + *o.ErrorMessage
					}
					line += ")"
				}
				fmt.Println(line)
			}

			if withEvents {
				events, err := store.GetEvents(ctx, &sessionID, nil, 100, 0)
				if err != nil {
					return err
				}
				for _, e := range events {
					fmt.Printf("  %s [%s] %s\n",
						e.Timestamp.Format(time.RFC3339), e.Level, e.Message)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withEvents, "events", false, "include the event trail")

	return cmd
}

func newHistoryEntitiesCommand() *cobra.Command {
	var (
		workbook string
		kind     string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "entities",
		Short: "List catalogued workbook entities",
		Example: `  # List every entity the engine has created
  sheetflow history entities

  # List the charts in one workbook
  sheetflow history entities --workbook books/q3.yaml --kind chart`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			settings, err := loadSettings()
			if err != nil {
				return err
			}
			store, err := openHistory(ctx, settings)
			if err != nil {
				return err
			}
			defer store.Close()

			var wbFilter, kindFilter *string
			if workbook != "" {
				wbFilter = &workbook
			}
			if kind != "" {
				kindFilter = &kind
			}

			entities, err := store.ListEntities(ctx, wbFilter, kindFilter, limit, 0)
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(entities)
			}

			if len(entities) == 0 {
				fmt.Println("No entities catalogued")
				return nil
			}
			for _, e := range entities {
				fmt.Printf("%-10s %-24s sheet=%-16s workbook=%s\n",
					e.Kind, e.Name, e.Sheet, e.Workbook)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&workbook, "workbook", "w", "", "filter by workbook path")
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "filter by entity kind")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum entities to list")

	return cmd
}
