// Package msgs defines shared message types for TUI view transitions.
package msgs

import (
	"github.com/boss6825/pharmintel/internal/insight"
	"github.com/boss6825/pharmintel/internal/report"
	"github.com/boss6825/pharmintel/internal/timeline"
)

// View transition messages

// GoToHomeMsg signals a return to the query screen. Any in-flight run is
// cancelled first.
type GoToHomeMsg struct {
	Notice string // optional line shown on the home screen
}

// GoToResultsMsg signals a return from the report preview to the cards.
type GoToResultsMsg struct{}

// GoToReportMsg signals that the user wants to preview the report.
type GoToReportMsg struct{}

// Run lifecycle messages

// SubmitQueryMsg starts a new run for Query.
type SubmitQueryMsg struct {
	Query string
}

// CancelRunMsg asks the app to cancel the live run.
type CancelRunMsg struct{}

// RunUpdateMsg carries one timeline event.
type RunUpdateMsg struct {
	Update timeline.Update
}

// RunCompleteMsg carries the final summary of a run.
type RunCompleteMsg struct {
	Summary timeline.Summary
}

// ResultsReadyMsg is sent once a completed run has its insight cards and a
// history id.
type ResultsReadyMsg struct {
	RunID    string
	ReportID string
	Query    string
	Summary  timeline.Summary
	Entries  []timeline.Entry
	Cards    []insight.Card
	Err      error // insight lookup failure; cards may be partial
}

// Export messages

// ExportReportMsg asks the app to write the report in Format.
type ExportReportMsg struct {
	Format report.Format
}

// ExportDoneMsg reports the outcome of an export.
type ExportDoneMsg struct {
	Path string
	Err  error
}
