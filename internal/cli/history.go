package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/boss6825/pharmintel/internal/display"
	"github.com/boss6825/pharmintel/internal/history"
	"github.com/boss6825/pharmintel/internal/timeline"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
)

const queryColumnWidth = 50

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "List recorded runs, or show one run's timeline",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			if len(args) == 1 {
				run, err := loadRun(cmd, env.store, args)
				if err != nil {
					return err
				}
				return showRun(cmd, run)
			}

			runs, err := env.store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
				return nil
			}

			now := time.Now()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tAGENTS\tDURATION\tWHEN\tQUERY")
			for _, r := range runs {
				fmt.Fprintf(w, "%d\t%s\t%d/%d\t%s\t%s\t%s\n",
					r.ID,
					r.Status,
					r.Succeeded, r.Total,
					timeline.FormatElapsed(r.Duration),
					history.FormatAge(r.CreatedAt, now),
					ansi.Truncate(r.Query, queryColumnWidth, "..."),
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	return cmd
}

func showRun(cmd *cobra.Command, run *history.Run) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run #%d (%s)\n", run.ID, run.Status)
	fmt.Fprintf(out, "Query: %s\n", run.Query)
	fmt.Fprintf(out, "Recorded: %s\n\n", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))

	for i, e := range run.Entries {
		u := timeline.Update{Index: i, Status: e.Status, Message: e.Message, Timestamp: e.Timestamp, Entries: run.Entries}
		fmt.Fprintln(out, display.FormatUpdate(u))
	}
	return nil
}
