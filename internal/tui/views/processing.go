package views

import (
	"context"
	"strings"
	"time"

	"github.com/boss6825/pharmintel/internal/demo"
	"github.com/boss6825/pharmintel/internal/display"
	"github.com/boss6825/pharmintel/internal/insight"
	"github.com/boss6825/pharmintel/internal/timeline"
	"github.com/boss6825/pharmintel/internal/tui/components"
	"github.com/boss6825/pharmintel/internal/tui/msgs"
	"github.com/boss6825/pharmintel/internal/tui/styles"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// processingState represents the current state of the processing view.
type processingState int

const (
	stateWaiting processingState = iota // run not started yet
	stateRunning
	stateFinished // summary received, insights loading
)

// CardState is the loading state of one insight card placeholder.
type CardState int

const (
	CardLoading CardState = iota
	CardReady
	CardUnavailable
)

func (s CardState) String() string {
	switch s {
	case CardReady:
		return "Ready"
	case CardUnavailable:
		return "Unavailable"
	default:
		return "Loading..."
	}
}

// tickMsg is used for elapsed time updates.
type tickMsg time.Time

// ProcessingModel shows a live run: the agent timeline, one placeholder per
// insight card and the activity log.
type ProcessingModel struct {
	state   processingState
	query   string
	agents  []demo.Agent
	titles  map[string]string // topic key -> card title
	entries []timeline.Entry
	summary timeline.Summary

	runID     string
	events    chan tea.Msg
	done      <-chan struct{}
	startTime time.Time

	spinner spinner.Model
	log     components.ActivityLog

	width  int
	height int
}

// NewProcessingModel creates the view for one query. topics supplies the card
// titles shown while agents work.
func NewProcessingModel(query string, agents []demo.Agent, topics []insight.Topic) ProcessingModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SelectedStyle

	titles := make(map[string]string, len(topics))
	for _, t := range topics {
		titles[t.Key] = t.Title
	}

	entries := make([]timeline.Entry, len(agents))
	for i, a := range agents {
		entries[i] = timeline.Entry{Name: a.Name, Status: timeline.StatusIdle, Message: timeline.MessageWaiting}
	}

	return ProcessingModel{
		state:   stateWaiting,
		query:   query,
		agents:  agents,
		titles:  titles,
		entries: entries,
		spinner: s,
		log:     components.NewActivityLog(80, 10, 0), // resized on SetSize
	}
}

// Start begins a run on seq. Timeline callbacks never block: each run gets a
// channel large enough for every event it can emit.
func (m *ProcessingModel) Start(ctx context.Context, seq *timeline.Sequencer, sched timeline.Schedule) (tea.Cmd, error) {
	events := make(chan tea.Msg, len(m.agents)+2)
	send := func(msg tea.Msg) {
		select {
		case events <- msg:
		default:
		}
	}

	run, err := seq.Start(ctx, demo.Names(m.agents), sched,
		func(u timeline.Update) { send(msgs.RunUpdateMsg{Update: u}) },
		func(s timeline.Summary) { send(msgs.RunCompleteMsg{Summary: s}) },
	)
	if err != nil {
		return nil, err
	}

	m.state = stateRunning
	m.runID = run.ID()
	m.events = events
	m.done = run.Done()
	m.startTime = time.Now()
	m.log.Add(components.LogNote, "Query: "+m.query)

	return tea.Batch(m.spinner.Tick, tickCmd(), m.Listen()), nil
}

// Listen waits for the next run event. Once the run is done any buffered
// events are still delivered, so the completion message is never lost.
func (m ProcessingModel) Listen() tea.Cmd {
	events, done := m.events, m.done
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case msg := <-events:
			return msg
		case <-done:
			select {
			case msg := <-events:
				return msg
			default:
				return nil
			}
		}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m ProcessingModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ProcessingModel) Update(msg tea.Msg) (ProcessingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if m.state == stateRunning || m.state == stateFinished {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tickMsg:
		if m.state == stateRunning {
			return m, tickCmd()
		}
		return m, nil

	case msgs.RunUpdateMsg:
		if !m.ApplyUpdate(msg.Update) {
			return m, nil
		}
		return m, m.Listen()

	case msgs.RunCompleteMsg:
		if msg.Summary.RunID != m.runID || m.state != stateRunning {
			return m, nil
		}
		m.state = stateFinished
		m.summary = msg.Summary
		kind := components.LogDone
		if msg.Summary.Failed > 0 || msg.Summary.Aborted {
			kind = components.LogFailed
		}
		m.log.Add(kind, display.FormatSummary(msg.Summary))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "n":
			return m, func() tea.Msg { return msgs.CancelRunMsg{} }
		case "ctrl+c":
			return m, tea.Quit
		case "up", "k", "pgup", "ctrl+u", "down", "j", "pgdown", "ctrl+d", "home", "g", "end", "G":
			var cmd tea.Cmd
			m.log, cmd = m.log.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

// ApplyUpdate applies a timeline event. Events from any other run are
// ignored and reported as false.
func (m *ProcessingModel) ApplyUpdate(u timeline.Update) bool {
	if u.RunID != m.runID || m.state != stateRunning {
		return false
	}
	if len(u.Entries) == len(m.entries) {
		m.entries = u.Entries
	}
	m.log.Add(logKind(u.Status), display.FormatUpdate(u))
	return true
}

// CardStates returns the placeholder state of every topic-bearing agent, in
// roster order.
func (m ProcessingModel) CardStates() []CardState {
	var states []CardState
	for i, a := range m.agents {
		if a.Topic == "" {
			continue
		}
		states = append(states, cardState(m.entries[i].Status))
	}
	return states
}

func cardState(s timeline.Status) CardState {
	switch s {
	case timeline.StatusCompleted:
		return CardReady
	case timeline.StatusError:
		return CardUnavailable
	default:
		return CardLoading
	}
}

// SetSize updates the model dimensions.
func (m *ProcessingModel) SetSize(width, height int) {
	m.width = width
	m.height = height

	mainWidth, _ := splitWidths(width)
	logHeight := height - 6 - m.cardRows()*4 - 6
	if logHeight < 3 {
		logHeight = 3
	}
	m.log.SetSize(max(mainWidth-4, 10), logHeight)
}

func (m ProcessingModel) cardRows() int {
	n := len(m.CardStates())
	return (n + 2) / 3
}

// View implements tea.Model.
func (m ProcessingModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder

	title := styles.TitleStyle.Render("Pharmaceutical Intelligence at Scale")
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, title))
	b.WriteString("\n")

	mainWidth, sideWidth := splitWidths(m.width)
	left := m.renderMain(mainWidth)
	right := m.renderTimeline(sideWidth)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	b.WriteString("\n")

	b.WriteString(fillTo(b.String(), m.height))

	var statusItems []string
	switch m.state {
	case stateFinished:
		statusItems = []string{"Loading insights...", "Esc New query", "Ctrl+C Quit"}
	default:
		statusItems = []string{"↑↓ Scroll log", "Esc Cancel", "Ctrl+C Quit"}
	}
	bar := components.NewStatusBar()
	if m.state == stateRunning {
		bar = bar.WithRight("⏱ " + timeline.FormatElapsed(time.Since(m.startTime)))
	}
	b.WriteString(bar.Render(m.width, statusItems))

	return b.String()
}

func (m ProcessingModel) renderMain(width int) string {
	var lines []string

	lines = append(lines, styles.SubtleStyle.Render("CURRENT QUERY"))
	lines = append(lines, styles.CalloutStyle.Copy().Width(width-4).Render(m.query))
	lines = append(lines, "")

	done := timeline.CountStatus(m.entries, timeline.StatusCompleted) + timeline.CountStatus(m.entries, timeline.StatusError)
	p := components.NewProgress(done, len(m.entries), max(width-24, 10))
	p.Failed = timeline.CountStatus(m.entries, timeline.StatusError) > 0
	header := m.spinner.View() + " Processing Analysis"
	if m.state == stateFinished {
		header = styles.SuccessStyle.Render("✓") + " " + display.FormatSummary(m.summary)
	}
	lines = append(lines, styles.SectionStyle.Render(header))
	lines = append(lines, p.View())
	lines = append(lines, "")

	lines = append(lines, m.renderCards(width))
	lines = append(lines, "")

	lines = append(lines, styles.SectionStyle.Render("Activity"))
	lines = append(lines, m.log.View())

	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

// renderCards lays out the insight placeholders three to a row.
func (m ProcessingModel) renderCards(width int) string {
	cardWidth := max((width-2)/3-2, 12)

	var cards []string
	for i, a := range m.agents {
		if a.Topic == "" {
			continue
		}
		title := m.titles[a.Topic]
		if title == "" {
			title = a.Topic
		}
		state := cardState(m.entries[i].Status)
		label := styles.SubtleStyle.Render(state.String())
		switch state {
		case CardReady:
			label = styles.SuccessStyle.Render(state.String())
		case CardUnavailable:
			label = styles.ErrorStyle.Render(state.String())
		}
		body := styles.SectionStyle.Render(ansi.Truncate(title, cardWidth-2, "...")) + "\n" + label
		cards = append(cards, styles.CardStyle.Copy().Width(cardWidth).Render(body))
	}

	var rows []string
	for i := 0; i < len(cards); i += 3 {
		end := min(i+3, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}
	return strings.Join(rows, "\n")
}

// renderTimeline renders the agent activity sidebar.
func (m ProcessingModel) renderTimeline(width int) string {
	inner := width - 4
	lines := []string{styles.SectionStyle.Render("Agent Activity"), ""}

	for _, e := range m.entries {
		glyph := display.Glyph(e.Status)
		name := ansi.Truncate(e.Name, inner-2, "...")
		var head string
		switch e.Status {
		case timeline.StatusRunning:
			head = styles.RunningStyle.Render(glyph + " " + name)
		case timeline.StatusCompleted:
			head = styles.SuccessStyle.Render(glyph) + " " + name
		case timeline.StatusError:
			head = styles.ErrorStyle.Render(glyph + " " + name)
		default:
			head = styles.SubtleStyle.Render(glyph + " " + name)
		}
		lines = append(lines, head)

		detail := e.Message
		if e.Timestamp != "" {
			detail = e.Timestamp + "  " + detail
		}
		lines = append(lines, styles.SubtleStyle.Render("  "+ansi.Truncate(detail, inner-2, "...")))
	}

	return styles.BoxStyle.Copy().Padding(0, 1).Width(width - 2).Render(strings.Join(lines, "\n"))
}

// RunID returns the id of the run this view follows.
func (m ProcessingModel) RunID() string {
	return m.runID
}

// Query returns the submitted query.
func (m ProcessingModel) Query() string {
	return m.query
}

// Entries returns the latest timeline snapshot.
func (m ProcessingModel) Entries() []timeline.Entry {
	return m.entries
}

// Finished reports whether the run has delivered its summary.
func (m ProcessingModel) Finished() bool {
	return m.state == stateFinished
}

// Summary returns the run summary once finished.
func (m ProcessingModel) Summary() timeline.Summary {
	return m.summary
}

// ActivityLines returns the number of events in the activity log.
func (m ProcessingModel) ActivityLines() int {
	return m.log.Len()
}

func logKind(s timeline.Status) components.LogKind {
	switch s {
	case timeline.StatusRunning:
		return components.LogRunning
	case timeline.StatusCompleted:
		return components.LogDone
	case timeline.StatusError:
		return components.LogFailed
	default:
		return components.LogInfo
	}
}
