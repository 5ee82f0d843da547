package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/boss6825/pharmintel/internal/demo"
	"github.com/boss6825/pharmintel/internal/display"
	"github.com/boss6825/pharmintel/internal/insight"
	"github.com/boss6825/pharmintel/internal/timeline"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
)

var errRunCancelled = errors.New("run cancelled")

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <query>",
		Short: "Run a query headlessly and print the agent timeline",
		Long: `Run a query without the interactive interface. Every agent event is printed
as it happens, followed by a summary of each insight card. The run is recorded
in history so its report can be exported later.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, opts, strings.Join(args, " "))
		},
	}
}

func runQuery(cmd *cobra.Command, opts *rootOptions, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return errors.New("query must not be empty")
	}

	env, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	pipeline, err := env.pipeline()
	if err != nil {
		return err
	}
	repo, err := env.repository()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Query: %s\n\n", query)

	summary, entries, err := playTimeline(ctx, env, pipeline, out)
	if err != nil {
		return err
	}

	cards, err := insight.FetchAll(ctx, repo, demo.TopicsFor(pipeline.Agents, repo))
	if err != nil {
		env.logger.Error("insight lookup failed", "run_id", summary.RunID, "error", err)
		return fmt.Errorf("failed to load insights: %w", err)
	}
	fmt.Fprintln(out)
	printCards(out, cards)

	id, err := env.store.Record(ctx, query, summary, entries)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved as run #%d. Export the report with: pharmintel report %d\n", id, id)
	return nil
}

// playTimeline drives one run to completion, printing each event. It returns
// the summary and the final snapshot, or errRunCancelled on interrupt.
func playTimeline(ctx context.Context, env *appEnv, p *demo.Pipeline, out io.Writer) (timeline.Summary, []timeline.Entry, error) {
	seq := timeline.New().
		WithPolicy(p.Policy).
		WithLogger(env.logger)

	disp := display.New(out, isTerminal(out))
	disp.Start(len(p.Names))
	defer disp.Stop()

	complete := make(chan timeline.Summary, 1)
	run, err := seq.Start(ctx, p.Names, p.Schedule, disp.Update, func(s timeline.Summary) {
		complete <- s
	})
	if err != nil {
		return timeline.Summary{}, nil, err
	}

	select {
	case <-run.Done():
	case <-ctx.Done():
		seq.Cancel()
		<-run.Done()
	}

	select {
	case summary := <-complete:
		disp.Finish(summary)
		return summary, run.Snapshot(), nil
	default:
		disp.Cancelled()
		return timeline.Summary{}, nil, errRunCancelled
	}
}

func printCards(out io.Writer, cards []insight.Card) {
	for _, c := range cards {
		fmt.Fprintf(out, "■ %s\n", c.Topic.Title)
		if c.Payload.Summary != "" {
			fmt.Fprintf(out, "  %s\n", c.Payload.Summary)
		}
		for _, in := range c.Payload.Insights {
			fmt.Fprintf(out, "  • %s\n", in)
		}
		fmt.Fprintln(out)
	}
}

// isTerminal reports whether w is an interactive terminal, which enables the
// live status line.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}
