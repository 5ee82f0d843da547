package components

import (
	"fmt"
	"strings"

	"github.com/boss6825/pharmintel/internal/tui/styles"
)

const (
	filledChar = "■"
	emptyChar  = "□"
)

// Progress renders an agent progress bar like: ■■■■□□□□ 4/8 50%
type Progress struct {
	Current int
	Total   int
	Width   int // character width of the bar portion
	Failed  bool
}

// NewProgress creates a new Progress instance.
func NewProgress(current, total, width int) Progress {
	return Progress{
		Current: current,
		Total:   total,
		Width:   width,
	}
}

// View returns the rendered progress bar string.
func (p Progress) View() string {
	if p.Total <= 0 || p.Width <= 0 {
		return ""
	}

	current := min(max(p.Current, 0), p.Total)
	percent := (current * 100) / p.Total
	filled := (current * p.Width) / p.Total

	bar := strings.Repeat(filledChar, filled)
	if p.Failed {
		bar = styles.ErrorStyle.Render(bar)
	} else if filled > 0 {
		bar = styles.SuccessStyle.Render(bar)
	}
	bar += styles.SubtleStyle.Render(strings.Repeat(emptyChar, p.Width-filled))

	return fmt.Sprintf("%s %d/%d %d%%", bar, current, p.Total, percent)
}
