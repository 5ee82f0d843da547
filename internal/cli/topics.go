package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/boss6825/pharmintel/internal/insight"
	"github.com/spf13/cobra"
)

func newTopicsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List insight topics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			repo, err := env.repository()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tTITLE")
			for _, t := range repo.Topics() {
				fmt.Fprintf(w, "%s\t%s\n", t.Key, t.Title)
			}
			return w.Flush()
		},
	}
}

func newInsightCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "insight <topic>",
		Short: "Show the insight card for one topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer env.Close()

			repo, err := env.repository()
			if err != nil {
				return err
			}

			key := strings.ToLower(strings.TrimSpace(args[0]))
			payload, err := repo.Lookup(cmd.Context(), key)
			if errors.Is(err, insight.ErrUnknownTopic) {
				return fmt.Errorf("%w %q (valid: %s)", insight.ErrUnknownTopic, key, topicKeys(repo))
			}
			if err != nil {
				return err
			}

			title := key
			for _, t := range repo.Topics() {
				if t.Key == key {
					title = t.Title
				}
			}
			return printPayload(cmd.OutOrStdout(), title, payload)
		},
	}
}

func newCatalogCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog <path>",
		Short: "Write the built-in insight catalog as YAML",
		Long: `Write the built-in insight catalog to a YAML file. Edit it and point the
"catalog" setting (or PHARMINTEL_CATALOG) at it to serve custom insights.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := insight.WriteCatalog(cmd.Context(), insight.Default(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote catalog to %s\n", args[0])
			return nil
		},
	}
}

func topicKeys(repo insight.Repository) string {
	var keys []string
	for _, t := range repo.Topics() {
		keys = append(keys, t.Key)
	}
	return strings.Join(keys, ", ")
}

func printPayload(out io.Writer, title string, p insight.Payload) error {
	fmt.Fprintf(out, "%s\n%s\n\n", title, strings.Repeat("=", len(title)))
	if p.Summary != "" {
		fmt.Fprintf(out, "%s\n\n", p.Summary)
	}

	if p.Table != nil && len(p.Table.Headers) > 0 {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, strings.ToUpper(strings.Join(p.Table.Headers, "\t")))
		for _, row := range p.Table.Rows {
			fmt.Fprintln(w, strings.Join(row, "\t"))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}

	for _, in := range p.Insights {
		fmt.Fprintf(out, "• %s\n", in)
	}
	if len(p.Insights) > 0 {
		fmt.Fprintln(out)
	}

	for _, ref := range p.References {
		if ref.URL != "" {
			fmt.Fprintf(out, "↗ %s <%s>\n", ref.Title, ref.URL)
		} else {
			fmt.Fprintf(out, "↗ %s\n", ref.Title)
		}
	}
	return nil
}
