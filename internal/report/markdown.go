package report

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

type MarkdownExporter struct{}

func (MarkdownExporter) Export(ctx context.Context, r *Report, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b := bufio.NewWriter(w)
	fmt.Fprintf(b, "# %s\n\n", r.Title)
	fmt.Fprintf(b, "**%s** | %s | Generated %s\n\n", r.Heading(), r.Molecule, r.GeneratedDate())
	fmt.Fprintf(b, "> Original Query: %s\n\n", r.Query)

	b.WriteString("## Executive Summary\n\n")
	for _, p := range r.Summary {
		fmt.Fprintf(b, "%s\n\n", p)
	}
	fmt.Fprintf(b, "> **KEY RECOMMENDATION**\n> %s\n\n", r.Recommendation)

	for _, s := range r.Sections {
		fmt.Fprintf(b, "## %s\n\n", s.Title)
		if s.Summary != "" {
			fmt.Fprintf(b, "%s\n\n", s.Summary)
		}
		for _, m := range s.Metrics {
			fmt.Fprintf(b, "- **%s** %s\n", m.Value, m.Label)
		}
		if len(s.Metrics) > 0 {
			b.WriteString("\n")
		}
		if s.Table != nil && len(s.Table.Headers) > 0 {
			writeTable(b, s.Table.Headers, s.Table.Rows)
		}
		for _, in := range s.Insights {
			fmt.Fprintf(b, "- %s\n", in)
		}
		if len(s.Insights) > 0 {
			b.WriteString("\n")
		}
		for _, ref := range s.References {
			if ref.URL != "" {
				fmt.Fprintf(b, "- [%s](%s)\n", ref.Title, ref.URL)
			} else {
				fmt.Fprintf(b, "- %s\n", ref.Title)
			}
		}
		if len(s.References) > 0 {
			b.WriteString("\n")
		}
	}

	b.WriteString("## Strategic Recommendations\n\n")
	for i, s := range r.Strategies {
		fmt.Fprintf(b, "### %d. %s\n\n%s\n\n", i+1, s.Title, s.Body)
	}

	if len(r.Timeline) > 0 {
		b.WriteString("## Agent Activity\n\n")
		writeTable(b, []string{"Time", "Agent", "Status", "Message"}, timelineRows(r))
	}

	b.WriteString("---\n\n")
	for _, f := range r.Footer {
		fmt.Fprintf(b, "_%s_\n\n", f)
	}

	return b.Flush()
}

func timelineRows(r *Report) [][]string {
	rows := make([][]string, len(r.Timeline))
	for i, e := range r.Timeline {
		rows[i] = []string{orDash(e.Timestamp), e.Name, string(e.Status), e.Message}
	}
	return rows
}

func writeTable(b *bufio.Writer, headers []string, rows [][]string) {
	b.WriteString("| " + strings.Join(escapeCells(headers), " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(headers)) + "\n")
	for _, row := range rows {
		cells := make([]string, len(headers))
		copy(cells, row)
		b.WriteString("| " + strings.Join(escapeCells(cells), " | ") + " |\n")
	}
	b.WriteString("\n")
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return out
}
