package views

import (
	"bytes"
	"context"
	"strings"

	"github.com/boss6825/pharmintel/internal/report"
	"github.com/boss6825/pharmintel/internal/tui/components"
	"github.com/boss6825/pharmintel/internal/tui/msgs"
	"github.com/boss6825/pharmintel/internal/tui/styles"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ReportModel previews the full report and triggers exports.
type ReportModel struct {
	report    *report.Report
	format    report.Format // format for the default export key
	viewport  components.ScrollViewport
	exporting bool
	alert     string
	notice    string
	width     int
	height    int
}

// NewReportModel creates the preview for r. format is what "e" exports.
func NewReportModel(r *report.Report, format report.Format) ReportModel {
	if format == "" {
		format = report.FormatPDF
	}
	m := ReportModel{
		report:   r,
		format:   format,
		viewport: components.NewScrollViewport(80, 20),
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m ReportModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ReportModel) Update(msg tea.Msg) (ReportModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case msgs.ExportDoneMsg:
		m.SetExportResult(msg)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "e", "d":
			return m.export(m.format)
		case "m":
			return m.export(report.FormatMarkdown)
		case "j":
			return m.export(report.FormatJSON)
		case "b", "esc":
			return m, func() tea.Msg { return msgs.GoToResultsMsg{} }
		case "n":
			return m, func() tea.Msg { return msgs.GoToHomeMsg{} }
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m ReportModel) export(f report.Format) (ReportModel, tea.Cmd) {
	if m.exporting {
		return m, nil
	}
	m.exporting = true
	m.alert = ""
	m.notice = ""
	return m, func() tea.Msg { return msgs.ExportReportMsg{Format: f} }
}

// SetExportResult records the outcome of an export. Failures show a fixed
// alert; the cause is logged by the caller.
func (m *ReportModel) SetExportResult(msg msgs.ExportDoneMsg) {
	m.exporting = false
	if msg.Err != nil {
		m.alert = report.FailedMessage
		m.notice = ""
		return
	}
	m.alert = ""
	m.notice = "Saved to " + msg.Path
}

// SetSize updates the model dimensions.
func (m *ReportModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	// title(2) + message line(2) + status bar(1)
	m.viewport.SetSize(width, max(height-5, 3))
	m.refresh()
}

func (m *ReportModel) refresh() {
	if m.report == nil {
		return
	}
	var buf bytes.Buffer
	if err := (report.MarkdownExporter{}).Export(context.Background(), m.report, &buf); err != nil {
		m.viewport.SetContent(styles.ErrorStyle.Render(err.Error()))
		return
	}
	m.viewport.SetContent(buf.String())
}

// View implements tea.Model.
func (m ReportModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder

	title := styles.TitleStyle.Render(m.report.Heading())
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, title))
	b.WriteString("\n")

	switch {
	case m.exporting:
		b.WriteString(styles.SubtleStyle.Render("Generating report..."))
	case m.alert != "":
		b.WriteString(styles.AlertStyle.Render(m.alert))
	case m.notice != "":
		b.WriteString(styles.SuccessStyle.Render(m.notice))
	default:
		b.WriteString(styles.SubtleStyle.Render("Generated " + m.report.GeneratedDate()))
	}
	b.WriteString("\n\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	b.WriteString(fillTo(b.String(), m.height))
	statusItems := []string{
		"E Download " + strings.ToUpper(string(m.format)),
		"M Markdown",
		"J JSON",
		"B Back",
		"N New Query",
		"Q Quit",
	}
	b.WriteString(components.NewStatusBar().Render(m.width, statusItems))

	return b.String()
}

// Report returns the previewed report.
func (m ReportModel) Report() *report.Report {
	return m.report
}

// Alert returns the failure alert, if any.
func (m ReportModel) Alert() string {
	return m.alert
}

// Notice returns the last success message, if any.
func (m ReportModel) Notice() string {
	return m.notice
}

// Exporting reports whether an export is in flight.
func (m ReportModel) Exporting() bool {
	return m.exporting
}
