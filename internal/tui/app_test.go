package tui

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/boss6825/pharmintel/internal/demo"
	"github.com/boss6825/pharmintel/internal/history"
	"github.com/boss6825/pharmintel/internal/insight"
	"github.com/boss6825/pharmintel/internal/logging"
	"github.com/boss6825/pharmintel/internal/report"
	"github.com/boss6825/pharmintel/internal/timeline"
	"github.com/boss6825/pharmintel/internal/tui/msgs"
	tea "github.com/charmbracelet/bubbletea"
)

func testPipeline() *demo.Pipeline {
	agents := demo.Roster()
	return &demo.Pipeline{
		Agents:   agents,
		Names:    demo.Names(agents),
		Schedule: timeline.EvenSchedule(len(agents), time.Millisecond),
		Policy:   timeline.PolicyContinue,
	}
}

func newTestModel(t *testing.T, exportDir string) Model {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	m, err := initialModel(Options{
		Pipeline:  testPipeline(),
		Repo:      insight.Default(),
		Store:     store,
		ExportDir: exportDir,
	})
	if err != nil {
		t.Fatalf("initialModel: %v", err)
	}
	t.Cleanup(m.seq.Cancel)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model)
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

// find runs cmd, flattening batches, and returns the first message of type T.
func find[T tea.Msg](cmd tea.Cmd) (T, bool) {
	var zero T
	if cmd == nil {
		return zero, false
	}
	switch msg := cmd().(type) {
	case T:
		return msg, true
	case tea.BatchMsg:
		for _, c := range msg {
			if found, ok := find[T](c); ok {
				return found, true
			}
		}
	}
	return zero, false
}

// runToResults submits query and drives the run until the results screen.
func runToResults(t *testing.T, m Model, query string) Model {
	t.Helper()
	m, _ = update(m, msgs.SubmitQueryMsg{Query: query})
	if m.CurrentView() != ViewProcessing {
		t.Fatalf("expected processing view, got %d", m.CurrentView())
	}

	for i := 0; i < 32; i++ {
		msg := m.processing.Listen()()
		if msg == nil {
			t.Fatal("listener stopped before the run completed")
		}
		var cmd tea.Cmd
		m, cmd = update(m, msg)
		if _, ok := msg.(msgs.RunCompleteMsg); ok {
			ready, ok := find[msgs.ResultsReadyMsg](cmd)
			if !ok {
				t.Fatal("expected results to be collected after completion")
			}
			m, _ = update(m, ready)
			if m.CurrentView() != ViewResults {
				t.Fatalf("expected results view, got %d", m.CurrentView())
			}
			return m
		}
	}
	t.Fatal("run did not complete")
	return m
}

func TestModel_View_TerminalTooSmall(t *testing.T) {
	tests := []struct {
		name        string
		width       int
		height      int
		expectSmall bool
	}{
		{"exactly minimum size", MinTerminalWidth, MinTerminalHeight, false},
		{"width too small", MinTerminalWidth - 1, MinTerminalHeight, true},
		{"height too small", MinTerminalWidth, MinTerminalHeight - 1, true},
		{"both dimensions too small", MinTerminalWidth - 10, MinTerminalHeight - 5, true},
		{"larger than minimum", 100, 50, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, t.TempDir())
			m, _ = update(m, tea.WindowSizeMsg{Width: tt.width, Height: tt.height})

			view := m.View()
			if tt.expectSmall {
				for _, want := range []string{"Terminal too small", "Minimum:", "Current:"} {
					if !strings.Contains(view, want) {
						t.Errorf("expected view to contain %q", want)
					}
				}
			} else if strings.Contains(view, "Terminal too small") {
				t.Error("did not expect view to contain 'Terminal too small'")
			}
		})
	}
}

func TestModel_renderTerminalTooSmall_ShowsDimensions(t *testing.T) {
	m := newTestModel(t, t.TempDir())
	m.width = 50
	m.height = 10

	view := m.renderTerminalTooSmall()
	if !strings.Contains(view, "60x15") {
		t.Error("expected minimum dimensions 60x15 to be shown")
	}
	if !strings.Contains(view, "50x10") {
		t.Error("expected current dimensions 50x10 to be shown")
	}
}

func TestModel_QueryToReport(t *testing.T) {
	m := runToResults(t, newTestModel(t, t.TempDir()), "GLP-1 in APAC")

	if m.result.ReportID != "1" {
		t.Errorf("expected history id 1 as report id, got %q", m.result.ReportID)
	}
	if len(m.result.Cards) != 6 {
		t.Errorf("expected 6 cards, got %d", len(m.result.Cards))
	}
	if m.result.Summary.Succeeded != 8 {
		t.Errorf("expected 8 succeeded, got %d", m.result.Summary.Succeeded)
	}

	run, err := m.opts.Store.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("history Get: %v", err)
	}
	if run.Query != "GLP-1 in APAC" || run.Status != history.StatusCompleted {
		t.Errorf("unexpected history record: %+v", run)
	}

	m, _ = update(m, msgs.GoToReportMsg{})
	if m.CurrentView() != ViewReport {
		t.Fatalf("expected report view, got %d", m.CurrentView())
	}
	if m.doc.Query != "GLP-1 in APAC" {
		t.Errorf("expected report query, got %q", m.doc.Query)
	}

	m, _ = update(m, msgs.GoToResultsMsg{})
	if m.CurrentView() != ViewResults {
		t.Errorf("expected results view, got %d", m.CurrentView())
	}
}

func TestModel_Export(t *testing.T) {
	dir := t.TempDir()
	m := runToResults(t, newTestModel(t, dir), "query")
	m, _ = update(m, msgs.GoToReportMsg{})

	_, cmd := update(m, msgs.ExportReportMsg{Format: report.FormatMarkdown})
	done, ok := find[msgs.ExportDoneMsg](cmd)
	if !ok {
		t.Fatal("expected export result")
	}
	if done.Err != nil {
		t.Fatalf("export failed: %v", done.Err)
	}
	want := filepath.Join(dir, "Intelligence_Report_1.md")
	if done.Path != want {
		t.Errorf("expected path %s, got %s", want, done.Path)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("expected exported file: %v", err)
	}

	m, _ = update(m, done)
	if m.report.Notice() != "Saved to "+want {
		t.Errorf("unexpected notice %q", m.report.Notice())
	}
}

func TestModel_ExportFailureShowsAlert(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	m := runToResults(t, newTestModel(t, missing), "query")
	m, _ = update(m, msgs.GoToReportMsg{})

	_, cmd := update(m, msgs.ExportReportMsg{Format: report.FormatPDF})
	done, ok := find[msgs.ExportDoneMsg](cmd)
	if !ok || done.Err == nil {
		t.Fatalf("expected export error, got %+v", done)
	}

	m, _ = update(m, done)
	if m.CurrentView() != ViewReport {
		t.Errorf("expected to stay on report view, got %d", m.CurrentView())
	}
	if m.report.Alert() != report.FailedMessage {
		t.Errorf("expected alert %q, got %q", report.FailedMessage, m.report.Alert())
	}
}

func TestModel_StaleEventsIgnored(t *testing.T) {
	m := newTestModel(t, t.TempDir())
	m.opts.Pipeline.Schedule = timeline.EvenSchedule(8, time.Hour)

	m, _ = update(m, msgs.SubmitQueryMsg{Query: "first"})
	first := m.processing.RunID()
	m, _ = update(m, msgs.SubmitQueryMsg{Query: "second"})
	if m.processing.RunID() == first {
		t.Fatal("expected a new run id")
	}

	entries := make([]timeline.Entry, 8)
	for i := range entries {
		entries[i] = timeline.Entry{Name: "x", Status: timeline.StatusCompleted}
	}
	m, _ = update(m, msgs.RunUpdateMsg{Update: timeline.Update{RunID: first, Entries: entries}})
	for _, e := range m.processing.Entries() {
		if e.Name == "x" {
			t.Fatal("stale update was applied")
		}
	}

	m, cmd := update(m, msgs.RunCompleteMsg{Summary: timeline.Summary{RunID: first}})
	if cmd != nil {
		t.Error("expected stale completion to be ignored")
	}
	m, _ = update(m, msgs.ResultsReadyMsg{RunID: first})
	if m.CurrentView() != ViewProcessing {
		t.Errorf("stale results must not leave processing, got %d", m.CurrentView())
	}
}

func TestModel_CancelReturnsHome(t *testing.T) {
	m := newTestModel(t, t.TempDir())
	m.opts.Pipeline.Schedule = timeline.EvenSchedule(8, time.Hour)

	m, _ = update(m, msgs.SubmitQueryMsg{Query: "query"})
	if m.seq.Current() == nil {
		t.Fatal("expected a live run")
	}

	m, _ = update(m, msgs.CancelRunMsg{})
	if m.CurrentView() != ViewHome {
		t.Errorf("expected home view, got %d", m.CurrentView())
	}
	if m.seq.Current() != nil {
		t.Error("expected run to be cancelled")
	}
	if m.home.Notice() != "Run cancelled" {
		t.Errorf("expected cancel notice, got %q", m.home.Notice())
	}
}

func TestModel_NewQueryFromResults(t *testing.T) {
	m := runToResults(t, newTestModel(t, t.TempDir()), "query")

	m, _ = update(m, msgs.GoToHomeMsg{})
	if m.CurrentView() != ViewHome {
		t.Errorf("expected home view, got %d", m.CurrentView())
	}
	if m.result != nil {
		t.Error("expected results cleared")
	}

	// Report navigation without results is a no-op.
	m, _ = update(m, msgs.GoToReportMsg{})
	if m.CurrentView() != ViewHome {
		t.Errorf("expected to stay home, got %d", m.CurrentView())
	}
}

func TestFallbackReportID(t *testing.T) {
	tests := []struct {
		name    string
		gen     func() (string, error)
		want    string
		wantLog bool
	}{
		{"random id", func() (string, error) { return "aB3xY9", nil }, "aB3xY9", false},
		{"generator fails", func() (string, error) { return "", errors.New("entropy exhausted") }, "run-42", true},
		{"empty id", func() (string, error) { return "", nil }, "run-42", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := generateShortID
			generateShortID = tt.gen
			t.Cleanup(func() { generateShortID = orig })

			var buf bytes.Buffer
			got := fallbackReportID("run-42", logging.New(&buf, slog.LevelInfo))
			if got != tt.want {
				t.Errorf("fallbackReportID = %q, want %q", got, tt.want)
			}
			if logged := strings.Contains(buf.String(), "failed to generate report id"); logged != tt.wantLog {
				t.Errorf("logged = %v, want %v (log: %q)", logged, tt.wantLog, buf.String())
			}
			if name := report.FileName(got, report.FormatPDF); name == "Intelligence_Report_.pdf" {
				t.Errorf("report file name has no id: %q", name)
			}
		})
	}
}
