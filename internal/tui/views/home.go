package views

import (
	"strings"

	"github.com/boss6825/pharmintel/internal/tui/components"
	"github.com/boss6825/pharmintel/internal/tui/msgs"
	"github.com/boss6825/pharmintel/internal/tui/styles"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// ExampleQueries are offered on the home screen; Tab cycles through them.
var ExampleQueries = []string{
	"Find molecules for respiratory diseases with low competition and high patient burden in India",
	"Analyze patent landscape for Metformin repurposing in oncology",
	"Show clinical trials for GLP-1 agonists in cardiovascular indications",
	"Cross-compare trade vs trials for GLP-1 across APAC",
}

const emptyQueryError = "Enter a query first"

// HomeModel is the query screen: a prompt, example queries and an idle agent
// panel.
type HomeModel struct {
	input    textarea.Model
	agents   []string
	example  int // index of the next example Tab inserts
	width    int
	height   int
	errorMsg string
	notice   string
}

// NewHomeModel creates the query screen for the given agent roster.
func NewHomeModel(agents []string) HomeModel {
	ta := textarea.New()
	ta.Placeholder = "Ask about market trends, patent landscapes, clinical trials, trade flows, or internal signals..."
	ta.SetHeight(4)
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 500
	ta.FocusedStyle.Base = lipgloss.NewStyle()
	ta.BlurredStyle.Base = lipgloss.NewStyle()
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()
	ta.Focus()

	return HomeModel{
		input:  ta,
		agents: agents,
	}
}

// Init implements tea.Model.
func (m HomeModel) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m HomeModel) Update(msg tea.Msg) (HomeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			query := strings.TrimSpace(m.input.Value())
			if query == "" {
				m.errorMsg = emptyQueryError
				return m, nil
			}
			m.errorMsg = ""
			m.notice = ""
			return m, func() tea.Msg { return msgs.SubmitQueryMsg{Query: query} }
		case "tab":
			m.input.SetValue(ExampleQueries[m.example])
			m.input.CursorEnd()
			m.example = (m.example + 1) % len(ExampleQueries)
			m.errorMsg = ""
			return m, nil
		case "ctrl+l":
			m.input.Reset()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m HomeModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder

	title := styles.TitleStyle.Render("Pharmaceutical Intelligence at Scale")
	tagline := styles.SubtleStyle.Render("AI-powered insights across market, IP, trials, and literature.")
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, title))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, tagline))
	b.WriteString("\n\n")

	leftWidth, rightWidth := splitWidths(m.width)
	left := m.renderPrompt(leftWidth)
	right := m.renderAgentPanel(rightWidth)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	b.WriteString("\n")

	if m.errorMsg != "" {
		b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, styles.ErrorStyle.Render(m.errorMsg)))
		b.WriteString("\n")
	} else if m.notice != "" {
		b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, styles.SubtleStyle.Render(m.notice)))
		b.WriteString("\n")
	}

	b.WriteString(fillTo(b.String(), m.height))
	statusItems := []string{"Enter Run query", "Tab Example", "Ctrl+L Clear", "Esc Quit"}
	b.WriteString(components.NewStatusBar().Render(m.width, statusItems))

	return b.String()
}

func (m HomeModel) renderPrompt(width int) string {
	var lines []string
	lines = append(lines, styles.SectionStyle.Render("ORCHESTRATE YOUR AGENTS"))
	lines = append(lines, styles.SubtleStyle.Render("Ask one complex question. It is routed to Market, IP, Trials, Trade and Internal agents."))
	lines = append(lines, "")

	input := styles.BoxStyle.Copy().Padding(0, 1).Width(width - 2).Render(m.input.View())
	lines = append(lines, input)
	lines = append(lines, "")

	lines = append(lines, styles.SubtleStyle.Render("TRY"))
	for i, q := range ExampleQueries {
		line := "  " + ansi.Truncate(q, width-4, "...")
		if i == m.example {
			line = styles.SelectedStyle.Render(line)
		} else {
			line = styles.SubtleStyle.Render(line)
		}
		lines = append(lines, line)
	}

	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func (m HomeModel) renderAgentPanel(width int) string {
	lines := []string{styles.SectionStyle.Render("Agent Activity"), ""}
	lines = append(lines, styles.SubtleStyle.Render("Waiting for query..."))
	lines = append(lines, "")
	for _, name := range m.agents {
		lines = append(lines, styles.SubtleStyle.Render("○ "+ansi.Truncate(name, width-8, "...")))
	}
	return styles.BoxStyle.Copy().Padding(0, 1).Width(width - 2).Render(strings.Join(lines, "\n"))
}

// SetSize updates the model dimensions.
func (m *HomeModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	leftWidth, _ := splitWidths(width)
	m.input.SetWidth(max(leftWidth-6, 10))
}

// Reset clears the prompt for a new query, keeping an optional notice.
func (m *HomeModel) Reset(notice string) {
	m.input.Reset()
	m.input.Focus()
	m.errorMsg = ""
	m.notice = notice
}

// Value returns the current prompt text.
func (m HomeModel) Value() string {
	return m.input.Value()
}

// SetValue replaces the prompt text.
func (m *HomeModel) SetValue(s string) {
	m.input.SetValue(s)
}

// Error returns the current validation message.
func (m HomeModel) Error() string {
	return m.errorMsg
}

// Notice returns the informational line shown under the prompt.
func (m HomeModel) Notice() string {
	return m.notice
}
