package cli

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/boss6825/pharmintel/internal/demo"
	"github.com/spf13/cobra"
)

var scenarioDescriptions = []struct {
	name        demo.Scenario
	description string
}{
	{demo.ScenarioSuccess, "Every agent completes"},
	{demo.ScenarioFlaky, "Patent Landscape Agent fails, the rest continue"},
	{demo.ScenarioFail, "Clinical Trials Agent fails and the run aborts"},
}

func newScenariosCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List built-in scenarios and Lua timeline scripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SCENARIO\tDESCRIPTION")
			for _, s := range scenarioDescriptions {
				fmt.Fprintf(w, "%s\t%s\n", s.name, s.description)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			scripts, err := demo.FindScripts(env.cfg.ScenarioDir)
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			if len(scripts) == 0 {
				fmt.Fprintf(out, "No scripts in %s\n", env.cfg.ScenarioDir)
				return nil
			}

			w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SCRIPT\tSTATUS")
			for _, path := range scripts {
				status := "ok"
				if _, err := demo.LoadScript(path, demo.Names(demo.Roster())); err != nil {
					status = "invalid: " + err.Error()
				}
				rel, err := filepath.Rel(env.cfg.ScenarioDir, path)
				if err != nil {
					rel = path
				}
				fmt.Fprintf(w, "%s\t%s\n", rel, status)
			}
			return w.Flush()
		},
	}
}
