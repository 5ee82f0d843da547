package views

import (
	"fmt"
	"strings"

	"github.com/boss6825/pharmintel/internal/insight"
	"github.com/boss6825/pharmintel/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// RenderCard renders one insight card at the given outer width.
func RenderCard(card insight.Card, width int) string {
	inner := max(width-4, 10)
	var lines []string

	lines = append(lines, styles.SectionStyle.Render(card.Topic.Title))
	if card.Payload.Summary != "" {
		lines = append(lines, lipgloss.NewStyle().Width(inner).Render(card.Payload.Summary))
	}

	if t := card.Payload.Table; t != nil && len(t.Headers) > 0 {
		lines = append(lines, "")
		lines = append(lines, renderTable(t, inner))
	}

	if len(card.Payload.Insights) > 0 {
		lines = append(lines, "")
		for _, in := range card.Payload.Insights {
			lines = append(lines, lipgloss.NewStyle().Width(inner).Render("• "+in))
		}
	}

	if len(card.Payload.References) > 0 {
		lines = append(lines, "")
		for _, ref := range card.Payload.References {
			label := ref.Title
			if ref.URL != "" {
				label = fmt.Sprintf("%s <%s>", ref.Title, ref.URL)
			}
			lines = append(lines, styles.SubtleStyle.Copy().Width(inner).Render("↗ "+label))
		}
	}

	return styles.CardStyle.Copy().Width(width - 2).Render(strings.Join(lines, "\n"))
}

func renderTable(t *insight.Table, width int) string {
	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		// Short rows are padded so every row has a cell per header.
		row := make([]string, len(t.Headers))
		copy(row, r)
		rows[i] = row
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.SubtleStyle).
		Headers(t.Headers...).
		Rows(rows...).
		Width(width).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.SectionStyle.Copy().Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}
