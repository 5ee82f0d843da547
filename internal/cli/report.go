package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/boss6825/pharmintel/internal/demo"
	"github.com/boss6825/pharmintel/internal/history"
	"github.com/boss6825/pharmintel/internal/insight"
	"github.com/boss6825/pharmintel/internal/report"
	"github.com/spf13/cobra"
)

func newReportCmd(opts *rootOptions) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "report [id]",
		Short: "Export the intelligence report for a recorded run",
		Long: `Export the intelligence report for a run from history. Without an id the
most recent run is used. --out may name a file, a directory, or "-" for stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			if format == "" {
				format = env.cfg.ExportFormat
			}
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			run, err := loadRun(cmd, env.store, args)
			if err != nil {
				return err
			}

			repo, err := env.repository()
			if err != nil {
				return err
			}
			cards, err := insight.FetchAll(cmd.Context(), repo, demo.TopicsFor(demo.Roster(), repo))
			if err != nil {
				return fmt.Errorf("failed to load insights: %w", err)
			}

			doc := report.Build(strconv.FormatInt(run.ID, 10), run.Query, cards, run.Entries, time.Now())
			exp, err := report.ExporterFor(f)
			if err != nil {
				return err
			}

			if out == "-" {
				return exp.Export(cmd.Context(), doc, cmd.OutOrStdout())
			}

			path := resolveOutPath(out, report.FileName(doc.ID, f))
			if err := report.WriteFile(cmd.Context(), exp, doc, path); err != nil {
				env.logger.Error("report export failed", "report_id", doc.ID, "error", err)
				return fmt.Errorf("%s: %w", report.FailedMessage, err)
			}
			env.logger.Info("report exported", "report_id", doc.ID, "path", path)
			fmt.Fprintf(cmd.OutOrStdout(), "Saved to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Export format: pdf, md, json (default from config)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file or directory (default: current directory)")
	return cmd
}

// loadRun returns the run named by args, or the latest run.
func loadRun(cmd *cobra.Command, store *history.Store, args []string) (*history.Run, error) {
	if len(args) == 0 {
		run, err := store.Latest(cmd.Context())
		if errors.Is(err, history.ErrNotFound) {
			return nil, &PrerequisiteError{
				Check:   "Run history",
				Message: "No runs recorded yet",
				Help:    `Run a query first: pharmintel run "<query>"`,
			}
		}
		return run, err
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid run id %q", args[0])
	}
	return store.Get(cmd.Context(), id)
}

// resolveOutPath picks the export path: the default name in the current
// directory, the default name inside an existing directory, or out itself.
func resolveOutPath(out, defaultName string) string {
	if out == "" {
		return defaultName
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return filepath.Join(out, defaultName)
	}
	return out
}
