package components

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestProgress_View(t *testing.T) {
	tests := []struct {
		name     string
		progress Progress
		expected string
	}{
		{"zero percent", NewProgress(0, 8, 8), "□□□□□□□□ 0/8 0%"},
		{"half", NewProgress(4, 8, 8), "■■■■□□□□ 4/8 50%"},
		{"complete", NewProgress(8, 8, 8), "■■■■■■■■ 8/8 100%"},
		{"uneven width", NewProgress(1, 3, 6), "■■□□□□ 1/3 33%"},
		{"clamps above total", NewProgress(12, 8, 4), "■■■■ 8/8 100%"},
		{"clamps negative", NewProgress(-2, 8, 4), "□□□□ 0/8 0%"},
		{"zero total", NewProgress(5, 0, 8), ""},
		{"zero width", NewProgress(5, 10, 0), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ansi.Strip(tt.progress.View())
			if result != tt.expected {
				t.Errorf("View() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestProgress_View_Failed(t *testing.T) {
	p := NewProgress(3, 8, 8)
	p.Failed = true
	if got := ansi.Strip(p.View()); got != "■■■□□□□□ 3/8 37%" {
		t.Errorf("View() = %q", got)
	}
}
