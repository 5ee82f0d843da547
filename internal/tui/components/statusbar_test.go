package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestStatusBar_Render_Items(t *testing.T) {
	sb := NewStatusBar()
	items := []string{"r Report", "n New query", "q Quit"}
	result := sb.Render(60, items)

	if !strings.Contains(result, "r Report • n New query • q Quit") {
		t.Errorf("expected items joined with separator, got: %q", result)
	}
	if lipgloss.Width(result) != 60 {
		t.Errorf("expected width 60, got %d", lipgloss.Width(result))
	}
}

func TestStatusBar_Render_Empty(t *testing.T) {
	result := NewStatusBar().Render(20, nil)
	if strings.TrimSpace(result) != "" {
		t.Errorf("expected blank bar, got %q", result)
	}
}

func TestStatusBar_Render_RightLabel(t *testing.T) {
	sb := NewStatusBar().WithRight("run 1a2b")
	result := sb.Render(40, []string{"Esc Cancel"})

	if !strings.HasPrefix(result, "Esc Cancel") {
		t.Errorf("expected left items first, got %q", result)
	}
	if !strings.Contains(result, "run 1a2b") {
		t.Errorf("expected right label, got %q", result)
	}

	narrow := sb.Render(12, []string{"Esc Cancel"})
	if strings.Contains(narrow, "run 1a2b") {
		t.Errorf("right label should be dropped when it does not fit, got %q", narrow)
	}
}
