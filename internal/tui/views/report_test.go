package views

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/boss6825/pharmintel/internal/report"
	"github.com/boss6825/pharmintel/internal/tui/msgs"
	tea "github.com/charmbracelet/bubbletea"
)

func newTestReport(t *testing.T) ReportModel {
	t.Helper()
	r := testResult(t)
	doc := report.Build(r.ReportID, r.Query, r.Cards, r.Entries, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	m := NewReportModel(doc, "")
	m.SetSize(100, 30)
	return m
}

func TestReportModel_View(t *testing.T) {
	m := newTestReport(t)

	view := stripANSI(m.View())
	for _, want := range []string{
		"INTELLIGENCE REPORT #12",
		"Generated March 10, 2025",
		"E Download PDF",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestReportModel_ExportKeys(t *testing.T) {
	tests := []struct {
		key  rune
		want report.Format
	}{
		{'e', report.FormatPDF},
		{'m', report.FormatMarkdown},
		{'j', report.FormatJSON},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			m := newTestReport(t)
			newM, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{tt.key}})
			if cmd == nil {
				t.Fatal("expected export command")
			}
			msg, ok := cmd().(msgs.ExportReportMsg)
			if !ok {
				t.Fatalf("expected msgs.ExportReportMsg, got %T", cmd())
			}
			if msg.Format != tt.want {
				t.Errorf("expected format %s, got %s", tt.want, msg.Format)
			}
			if !newM.Exporting() {
				t.Error("expected exporting state")
			}

			// A second request while one is in flight is ignored.
			if _, cmd := newM.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{tt.key}}); cmd != nil {
				t.Error("expected no command while exporting")
			}
		})
	}
}

func TestReportModel_ExportFailureShowsAlert(t *testing.T) {
	m := newTestReport(t)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	m, _ = m.Update(msgs.ExportDoneMsg{Err: errors.New("disk full")})

	if m.Alert() != report.FailedMessage {
		t.Errorf("expected alert %q, got %q", report.FailedMessage, m.Alert())
	}
	if m.Exporting() {
		t.Error("expected exporting cleared")
	}

	view := stripANSI(m.View())
	if !strings.Contains(view, report.FailedMessage) {
		t.Error("expected alert in view")
	}
	if strings.Contains(view, "disk full") {
		t.Error("error detail must not be shown")
	}
}

func TestReportModel_ExportSuccessShowsPath(t *testing.T) {
	m := newTestReport(t)
	m, _ = m.Update(msgs.ExportDoneMsg{Path: "/tmp/Intelligence_Report_12.pdf"})

	if m.Alert() != "" {
		t.Errorf("expected no alert, got %q", m.Alert())
	}
	if !strings.Contains(stripANSI(m.View()), "Saved to /tmp/Intelligence_Report_12.pdf") {
		t.Error("expected saved path in view")
	}
}

func TestReportModel_Navigation(t *testing.T) {
	m := newTestReport(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := cmd().(msgs.GoToResultsMsg); !ok {
		t.Errorf("expected msgs.GoToResultsMsg, got %T", cmd())
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	if _, ok := cmd().(msgs.GoToHomeMsg); !ok {
		t.Errorf("expected msgs.GoToHomeMsg, got %T", cmd())
	}
}
