// Package tui implements the interactive terminal interface: the query
// screen, the live agent timeline, the insight cards and the report preview.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/boss6825/pharmintel/internal/demo"
	"github.com/boss6825/pharmintel/internal/history"
	"github.com/boss6825/pharmintel/internal/insight"
	"github.com/boss6825/pharmintel/internal/logging"
	"github.com/boss6825/pharmintel/internal/report"
	"github.com/boss6825/pharmintel/internal/timeline"
	"github.com/boss6825/pharmintel/internal/tui/msgs"
	"github.com/boss6825/pharmintel/internal/tui/styles"
	"github.com/boss6825/pharmintel/internal/tui/views"
	"github.com/boss6825/pharmintel/internal/util"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Minimum terminal dimensions for the split layouts.
const (
	MinTerminalWidth  = 60
	MinTerminalHeight = 15
)

// View represents the different screens in the TUI.
type View int

const (
	ViewHome View = iota
	ViewProcessing
	ViewResults
	ViewReport
)

// Options configures TUI startup behavior.
type Options struct {
	Pipeline     *demo.Pipeline
	Repo         insight.Repository
	Store        *history.Store // optional; without it report ids are random
	Logger       *slog.Logger
	ExportDir    string
	ExportFormat report.Format
}

// Model is the main Bubble Tea model that orchestrates all views.
type Model struct {
	currentView View
	width       int
	height      int

	home       views.HomeModel
	processing views.ProcessingModel
	results    views.ResultsModel
	report     views.ReportModel

	opts   Options
	seq    *timeline.Sequencer
	result *msgs.ResultsReadyMsg
	doc    *report.Report
	now    func() time.Time
}

// Run starts the TUI application.
func Run(opts Options) error {
	m, err := initialModel(opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err = p.Run()
	m.seq.Cancel()
	return err
}

func initialModel(opts Options) (Model, error) {
	if opts.Pipeline == nil {
		p, err := demo.NewPipeline(demo.Config{})
		if err != nil {
			return Model{}, err
		}
		opts.Pipeline = p
	}
	if opts.Repo == nil {
		opts.Repo = insight.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}
	if opts.ExportFormat == "" {
		opts.ExportFormat = report.FormatPDF
	}

	seq := timeline.New().
		WithPolicy(opts.Pipeline.Policy).
		WithLogger(opts.Logger)

	return Model{
		currentView: ViewHome,
		home:        views.NewHomeModel(opts.Pipeline.Names),
		opts:        opts,
		seq:         seq,
		now:         time.Now,
	}, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.home.Init()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.home.SetSize(msg.Width, msg.Height)
		m.processing.SetSize(msg.Width, msg.Height)
		m.results.SetSize(msg.Width, msg.Height)
		m.report.SetSize(msg.Width, msg.Height)
		return m, nil

	case msgs.SubmitQueryMsg:
		return m.startRun(msg.Query)

	case msgs.CancelRunMsg:
		m.seq.Cancel()
		m.opts.Logger.Info("run cancelled by user", "run_id", m.processing.RunID())
		return m.goHome("Run cancelled")

	case msgs.GoToHomeMsg:
		m.seq.Cancel()
		return m.goHome(msg.Notice)

	case msgs.RunUpdateMsg:
		if m.currentView != ViewProcessing {
			return m, nil
		}
		var cmd tea.Cmd
		m.processing, cmd = m.processing.Update(msg)
		return m, cmd

	case msgs.RunCompleteMsg:
		if m.currentView != ViewProcessing || msg.Summary.RunID != m.processing.RunID() {
			return m, nil
		}
		var cmd tea.Cmd
		m.processing, cmd = m.processing.Update(msg)
		return m, tea.Batch(cmd, m.collectResults(msg.Summary))

	case msgs.ResultsReadyMsg:
		if m.currentView != ViewProcessing || msg.RunID != m.processing.RunID() {
			return m, nil
		}
		if msg.Err != nil {
			m.opts.Logger.Error("insight lookup failed", "run_id", msg.RunID, "error", msg.Err)
		}
		m.result = &msg
		m.doc = nil
		m.results = views.NewResultsModel(msg)
		m.results.SetSize(m.width, m.height)
		m.currentView = ViewResults
		return m, nil

	case msgs.GoToResultsMsg:
		if m.result == nil {
			return m, nil
		}
		m.currentView = ViewResults
		return m, nil

	case msgs.GoToReportMsg:
		if m.result == nil {
			return m, nil
		}
		if m.doc == nil {
			m.doc = report.Build(m.result.ReportID, m.result.Query, m.result.Cards, m.result.Entries, m.now())
		}
		m.report = views.NewReportModel(m.doc, m.opts.ExportFormat)
		m.report.SetSize(m.width, m.height)
		m.currentView = ViewReport
		return m, nil

	case msgs.ExportReportMsg:
		if m.doc == nil {
			return m, nil
		}
		return m, m.exportReport(m.doc, msg.Format)

	case msgs.ExportDoneMsg:
		if m.doc == nil {
			return m, nil
		}
		if msg.Err != nil {
			m.opts.Logger.Error("report export failed", "report_id", m.doc.ID, "error", msg.Err)
		} else {
			m.opts.Logger.Info("report exported", "report_id", m.doc.ID, "path", msg.Path)
		}
		m.report.SetExportResult(msg)
		return m, nil
	}

	return m.updateCurrentView(msg)
}

func (m Model) updateCurrentView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentView {
	case ViewHome:
		m.home, cmd = m.home.Update(msg)
	case ViewProcessing:
		m.processing, cmd = m.processing.Update(msg)
	case ViewResults:
		m.results, cmd = m.results.Update(msg)
	case ViewReport:
		m.report, cmd = m.report.Update(msg)
	}
	return m, cmd
}

// startRun replaces any in-flight run with a new one for query.
func (m Model) startRun(query string) (tea.Model, tea.Cmd) {
	p := m.opts.Pipeline
	topics := demo.TopicsFor(p.Agents, m.opts.Repo)

	m.processing = views.NewProcessingModel(query, p.Agents, topics)
	m.processing.SetSize(m.width, m.height)
	cmd, err := m.processing.Start(context.Background(), m.seq, p.Schedule)
	if err != nil {
		m.opts.Logger.Error("failed to start run", "error", err)
		return m.goHome("Could not start run: " + err.Error())
	}

	m.opts.Logger.Info("query submitted", "run_id", m.processing.RunID(), "query", query)
	m.result = nil
	m.doc = nil
	m.currentView = ViewProcessing
	return m, cmd
}

func (m Model) goHome(notice string) (tea.Model, tea.Cmd) {
	m.home.Reset(notice)
	m.home.SetSize(m.width, m.height)
	m.result = nil
	m.doc = nil
	m.currentView = ViewHome
	return m, m.home.Init()
}

// collectResults fetches the insight cards for a finished run and records it
// in history. The history id doubles as the report id.
func (m Model) collectResults(summary timeline.Summary) tea.Cmd {
	repo, store, logger := m.opts.Repo, m.opts.Store, m.opts.Logger
	topics := demo.TopicsFor(m.opts.Pipeline.Agents, repo)
	query := m.processing.Query()
	entries := m.processing.Entries()

	return func() tea.Msg {
		ctx := context.Background()
		cards, err := insight.FetchAll(ctx, repo, topics)

		var reportID string
		if store != nil {
			id, rerr := store.Record(ctx, query, summary, entries)
			if rerr != nil {
				logger.Error("failed to record run", "run_id", summary.RunID, "error", rerr)
			} else {
				reportID = strconv.FormatInt(id, 10)
			}
		}
		if reportID == "" {
			reportID = fallbackReportID(summary.RunID, logger)
		}

		return msgs.ResultsReadyMsg{
			RunID:    summary.RunID,
			ReportID: reportID,
			Query:    query,
			Summary:  summary,
			Entries:  entries,
			Cards:    cards,
			Err:      err,
		}
	}
}

// generateShortID is swapped out by tests.
var generateShortID = util.GenerateShortID

// fallbackReportID names a report that has no history id. The run ID is used
// when no random id can be generated.
func fallbackReportID(runID string, logger *slog.Logger) string {
	id, err := generateShortID()
	if err != nil || id == "" {
		logger.Error("failed to generate report id", "run_id", runID, "error", err)
		return runID
	}
	return id
}

func (m Model) exportReport(doc *report.Report, f report.Format) tea.Cmd {
	path := filepath.Join(m.opts.ExportDir, report.FileName(doc.ID, f))
	return func() tea.Msg {
		exp, err := report.ExporterFor(f)
		if err != nil {
			return msgs.ExportDoneMsg{Err: err}
		}
		if err := report.WriteFile(context.Background(), exp, doc, path); err != nil {
			return msgs.ExportDoneMsg{Err: err}
		}
		return msgs.ExportDoneMsg{Path: path}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width > 0 && m.height > 0 && (m.width < MinTerminalWidth || m.height < MinTerminalHeight) {
		return m.renderTerminalTooSmall()
	}

	switch m.currentView {
	case ViewProcessing:
		return m.processing.View()
	case ViewResults:
		return m.results.View()
	case ViewReport:
		return m.report.View()
	default:
		return m.home.View()
	}
}

func (m Model) renderTerminalTooSmall() string {
	lines := []string{
		styles.ErrorStyle.Render("Terminal too small"),
		"",
		styles.SubtleStyle.Render(fmt.Sprintf("Minimum: %dx%d", MinTerminalWidth, MinTerminalHeight)),
		styles.SubtleStyle.Render(fmt.Sprintf("Current: %dx%d", m.width, m.height)),
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, strings.Join(lines, "\n"))
}

// CurrentView returns the active screen.
func (m Model) CurrentView() View {
	return m.currentView
}
