package views

import (
	"regexp"
	"strings"
	"testing"

	"github.com/boss6825/pharmintel/internal/demo"
	"github.com/boss6825/pharmintel/internal/tui/msgs"
	tea "github.com/charmbracelet/bubbletea"
)

func newTestHome() HomeModel {
	return NewHomeModel(demo.Names(demo.Roster()))
}

func typeText(m HomeModel, s string) HomeModel {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func TestHomeModel_Init(t *testing.T) {
	m := newTestHome()
	if m.Init() == nil {
		t.Error("expected Init() to start the cursor blink")
	}
}

func TestHomeModel_Update_WindowSizeMsg(t *testing.T) {
	m := newTestHome()
	newM, cmd := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	if cmd != nil {
		t.Error("expected no command from WindowSizeMsg")
	}
	if newM.width != 80 || newM.height != 24 {
		t.Errorf("expected 80x24, got %dx%d", newM.width, newM.height)
	}
}

func TestHomeModel_Submit(t *testing.T) {
	m := typeText(newTestHome(), "  GLP-1 trials in APAC  ")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected command from Enter")
	}

	msg, ok := cmd().(msgs.SubmitQueryMsg)
	if !ok {
		t.Fatalf("expected msgs.SubmitQueryMsg, got %T", cmd())
	}
	if msg.Query != "GLP-1 trials in APAC" {
		t.Errorf("expected trimmed query, got %q", msg.Query)
	}
}

func TestHomeModel_SubmitEmpty(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := typeText(newTestHome(), tt.input)

			newM, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
			if cmd != nil {
				t.Errorf("expected no command, got %T", cmd())
			}
			if newM.Error() != emptyQueryError {
				t.Errorf("expected error %q, got %q", emptyQueryError, newM.Error())
			}
		})
	}
}

func TestHomeModel_TabCyclesExamples(t *testing.T) {
	m := newTestHome()

	for i := 0; i < len(ExampleQueries)+1; i++ {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
		want := ExampleQueries[i%len(ExampleQueries)]
		if m.Value() != want {
			t.Fatalf("tab %d: expected %q, got %q", i+1, want, m.Value())
		}
	}
}

func TestHomeModel_TabClearsError(t *testing.T) {
	m := newTestHome()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.Error() == "" {
		t.Fatal("expected error after empty submit")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.Error() != "" {
		t.Errorf("expected error cleared, got %q", m.Error())
	}
}

func TestHomeModel_Reset(t *testing.T) {
	m := typeText(newTestHome(), "old query")
	m.Reset("Run cancelled")

	if m.Value() != "" {
		t.Errorf("expected empty prompt, got %q", m.Value())
	}
	if m.Notice() != "Run cancelled" {
		t.Errorf("expected notice, got %q", m.Notice())
	}
}

func TestHomeModel_Quit(t *testing.T) {
	for _, key := range []tea.KeyMsg{{Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		_, cmd := newTestHome().Update(key)
		if cmd == nil {
			t.Fatalf("expected command from %s", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected tea.QuitMsg, got %T", key, cmd())
		}
	}
}

func TestHomeModel_View_NoSize(t *testing.T) {
	m := newTestHome()
	if m.View() != "" {
		t.Error("expected empty view when width/height are 0")
	}
}

func TestHomeModel_View(t *testing.T) {
	m := newTestHome()
	m.SetSize(120, 40)

	view := stripANSI(m.View())
	for _, want := range []string{
		"Pharmaceutical Intelligence at Scale",
		"Agent Activity",
		"Waiting for query...",
		demo.AgentMaster,
		demo.AgentReport,
		"Enter Run query",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestHomeModel_View_ShowsError(t *testing.T) {
	m := newTestHome()
	m.SetSize(120, 40)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if !strings.Contains(stripANSI(m.View()), emptyQueryError) {
		t.Error("expected validation error in view")
	}
}

func stripANSI(s string) string {
	ansi := regexp.MustCompile(`\x1b\[[0-9;]*m`)
	return ansi.ReplaceAllString(s, "")
}
