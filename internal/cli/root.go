// Package cli wires the pharmintel commands: the interactive TUI by default,
// plus headless runs, history and report export.
package cli

import (
	"github.com/boss6825/pharmintel/internal/report"
	"github.com/boss6825/pharmintel/internal/tui"
	"github.com/boss6825/pharmintel/internal/version"
	"github.com/spf13/cobra"
)

// rootOptions are the persistent flags shared by every command. Empty values
// keep the configured setting.
type rootOptions struct {
	preset   string
	scenario string
	policy   string
	script   string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "pharmintel",
		Short: "Agentic pharmaceutical intelligence in your terminal",
		Long: `Pharmintel routes one research question to a team of mock agents (market,
patents, trials, trade, internal docs, literature), shows their progress live
and turns the findings into an exportable intelligence report.

Run without arguments to start the interactive interface.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.preset, "preset", "", "Playback pacing: quick, normal, slow")
	flags.StringVar(&opts.scenario, "scenario", "", "Agent scenario: success, flaky, fail")
	flags.StringVar(&opts.policy, "failure-policy", "", "On agent failure: continue, abort")
	flags.StringVar(&opts.script, "script", "", "Lua script describing a custom timeline")

	rootCmd.AddCommand(
		newRunCmd(opts),
		newTopicsCmd(opts),
		newInsightCmd(opts),
		newCatalogCmd(opts),
		newReportCmd(opts),
		newHistoryCmd(opts),
		newScenariosCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func runTUI(opts *rootOptions) error {
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
	format, err := report.ParseFormat(env.cfg.ExportFormat)
	if err != nil {
		return err
	}

	env.logger.Info("starting tui", "preset", env.cfg.Preset, "scenario", env.cfg.Scenario, "policy", string(pipeline.Policy))
	return tui.Run(tui.Options{
		Pipeline:     pipeline,
		Repo:         repo,
		Store:        env.store,
		Logger:       env.logger,
		ExportDir:    ".",
		ExportFormat: format,
	})
}
