package views

import (
	"strings"

	"github.com/boss6825/pharmintel/internal/display"
	"github.com/boss6825/pharmintel/internal/insight"
	"github.com/boss6825/pharmintel/internal/tui/components"
	"github.com/boss6825/pharmintel/internal/tui/msgs"
	"github.com/boss6825/pharmintel/internal/tui/styles"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ResultsModel shows the insight cards of a completed run.
type ResultsModel struct {
	result   msgs.ResultsReadyMsg
	viewport components.ScrollViewport
	width    int
	height   int
}

// NewResultsModel creates the results view for a finished run.
func NewResultsModel(result msgs.ResultsReadyMsg) ResultsModel {
	m := ResultsModel{
		result:   result,
		viewport: components.NewScrollViewport(80, 20),
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m ResultsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ResultsModel) Update(msg tea.Msg) (ResultsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "r", "enter":
			return m, func() tea.Msg { return msgs.GoToReportMsg{} }
		case "n", "esc":
			return m, func() tea.Msg { return msgs.GoToHomeMsg{} }
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// SetSize updates the model dimensions.
func (m *ResultsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	// title(2) + summary(2) + status bar(1)
	m.viewport.SetSize(width, max(height-5, 3))
	m.refresh()
}

func (m *ResultsModel) refresh() {
	m.viewport.SetContent(m.renderCards(m.viewport.ContentWidth()))
}

// renderCards stacks the cards, two per row when the screen is wide enough.
func (m ResultsModel) renderCards(width int) string {
	if len(m.result.Cards) == 0 {
		return styles.SubtleStyle.Render("No insights available for this run.")
	}

	perRow := 1
	if width >= 120 {
		perRow = 2
	}
	cardWidth := width / perRow

	var rows []string
	for i := 0; i < len(m.result.Cards); i += perRow {
		var row []string
		for _, c := range m.result.Cards[i:min(i+perRow, len(m.result.Cards))] {
			row = append(row, RenderCard(c, cardWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return strings.Join(rows, "\n")
}

// View implements tea.Model.
func (m ResultsModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder

	title := styles.TitleStyle.Render("Analysis Results")
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, title))
	b.WriteString("\n")

	summary := display.FormatSummary(m.result.Summary)
	if m.result.Err != nil {
		b.WriteString(styles.ErrorStyle.Render(summary + " · some insights could not be loaded"))
	} else {
		b.WriteString(styles.SuccessStyle.Render(summary))
	}
	b.WriteString("\n\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	b.WriteString(fillTo(b.String(), m.height))
	statusItems := []string{"R Generate Full Report", "N New Query", "↑↓ Scroll", "Q Quit"}
	bar := components.NewStatusBar()
	if m.result.ReportID != "" {
		bar = bar.WithRight("Report #" + m.result.ReportID)
	}
	b.WriteString(bar.Render(m.width, statusItems))

	return b.String()
}

// Cards returns the cards shown.
func (m ResultsModel) Cards() []insight.Card {
	return m.result.Cards
}

// Result returns the run result this view was built from.
func (m ResultsModel) Result() msgs.ResultsReadyMsg {
	return m.result
}
