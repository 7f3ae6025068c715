// Package ui provides a terminal UI for watching a rotation run.
// Uses Bubbletea to display the task roster, work timers and the
// switch log as the orchestrator emits events.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mxtrix/Happy-Little-Taverley/internal/orchestrator"
)

// Panel represents which panel is currently focused.
type Panel int

const (
	PanelStatus Panel = iota
	PanelTasks
	PanelEvents
)

// Model holds the TUI state. The rotation runs on its own goroutine;
// the model never touches it directly and renders only the task
// snapshots carried on events.
type Model struct {
	width       int
	height      int
	activePanel Panel
	quitting    bool

	rows   []orchestrator.TaskState
	rowsAt time.Time

	currentTask string
	lastEvent   string
	switches    int
	startedAt   time.Time
	working     bool
	stopped     bool

	taskScroll int
	events     []string
	logScroll  int

	styles *Styles
}

// Styles holds the lipgloss styles for the UI.
type Styles struct {
	ActiveBorder   lipgloss.Style
	InactiveBorder lipgloss.Style

	Title     lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Muted     lipgloss.Style
	StatusOK  lipgloss.Style
	StatusBad lipgloss.Style
	Current   lipgloss.Style

	HelpKey  lipgloss.Style
	HelpText lipgloss.Style
}

func newStyles() *Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#666", Dark: "#888"}
	highlight := lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	green := lipgloss.AdaptiveColor{Light: "#22863a", Dark: "#3fb950"}
	red := lipgloss.AdaptiveColor{Light: "#cb2431", Dark: "#f85149"}

	return &Styles{
		ActiveBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(highlight),
		InactiveBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle),

		Title:     lipgloss.NewStyle().Bold(true).Foreground(highlight).MarginBottom(1),
		Label:     lipgloss.NewStyle().Foreground(subtle),
		Value:     lipgloss.NewStyle().Bold(true),
		Muted:     lipgloss.NewStyle().Foreground(subtle),
		StatusOK:  lipgloss.NewStyle().Foreground(green).Bold(true),
		StatusBad: lipgloss.NewStyle().Foreground(red).Bold(true),
		Current:   lipgloss.NewStyle().Background(highlight).Foreground(lipgloss.Color("#fff")).Bold(true),

		HelpKey:  lipgloss.NewStyle().Foreground(highlight).Bold(true),
		HelpText: lipgloss.NewStyle().Foreground(subtle),
	}
}

// EventMsg wraps an orchestrator event for the bubbletea loop.
// Producers forward events with Program.Send.
type EventMsg orchestrator.Event

// tickMsg refreshes the work timers once a second.
type tickMsg time.Time

// New creates a watch model seeded with an initial roster snapshot.
// Take the snapshot before the rotation goroutine starts; afterwards
// the model only sees the snapshots events carry.
func New(initial []orchestrator.TaskState) *Model {
	return &Model{
		width:     80,
		height:    24,
		rows:      initial,
		rowsAt:    time.Now(),
		startedAt: time.Now(),
		styles:    newStyles(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), tea.EnterAltScreen)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tickCmd()

	case EventMsg:
		return m.handleEvent(orchestrator.Event(msg)), nil
	}

	return m, nil
}

// handleEvent folds an orchestrator event into the display state.
func (m Model) handleEvent(e orchestrator.Event) Model {
	if len(e.Tasks) > 0 {
		m.rows = e.Tasks
		m.rowsAt = e.Time
	}

	switch e.Type {
	case orchestrator.EventWorkStart:
		m.currentTask = e.Task
		m.working = true
		m.lastEvent = fmt.Sprintf("working %s", e.Task)
	case orchestrator.EventWorkEnd:
		m.working = false
		m.lastEvent = fmt.Sprintf("worked %s for %s", e.Task, formatDuration(e.Worked))
	case orchestrator.EventTravelStart:
		m.lastEvent = fmt.Sprintf("traveling to %s", e.Task)
	case orchestrator.EventTravelEnd:
		if e.OK {
			m.lastEvent = fmt.Sprintf("arrived at %s", e.Task)
		} else {
			m.lastEvent = fmt.Sprintf("travel to %s failed", e.Task)
		}
	case orchestrator.EventSwitch:
		if e.OK {
			m.switches++
			m.currentTask = e.ToTask
			m.lastEvent = fmt.Sprintf("switched %s -> %s", e.Task, e.ToTask)
		} else {
			m.lastEvent = fmt.Sprintf("switch %s -> %s refused", e.Task, e.ToTask)
		}
	case orchestrator.EventStopped:
		m.stopped = true
		m.working = false
		m.lastEvent = "rotation stopped"
		if e.Message != "" {
			m.lastEvent = "rotation stopped: " + e.Message
		}
	}

	line := fmt.Sprintf("%s  %s", e.Time.Format("15:04:05"), m.lastEvent)
	m.events = append(m.events, line)
	if len(m.events) > 200 {
		m.events = m.events[len(m.events)-200:]
	}
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "tab", "right", "l":
		m.activePanel = (m.activePanel + 1) % 3
		return m, nil

	case "shift+tab", "left", "h":
		m.activePanel = (m.activePanel + 2) % 3
		return m, nil

	case "up", "k":
		return m.scrollBy(-1), nil

	case "down", "j":
		return m.scrollBy(1), nil
	}

	return m, nil
}

func (m Model) scrollBy(delta int) Model {
	switch m.activePanel {
	case PanelTasks:
		m.taskScroll = clamp(m.taskScroll+delta, 0, max(0, len(m.rows)-1))
	case PanelEvents:
		m.logScroll = clamp(m.logScroll+delta, 0, max(0, len(m.events)-1))
	}
	return m
}

// workedFor is the displayed work timer for a row. The current task's
// timer runs between snapshots while work is in progress.
func (m Model) workedFor(row orchestrator.TaskState) time.Duration {
	if row.Current && m.working && !m.stopped {
		return row.Worked + time.Since(m.rowsAt)
	}
	return row.Worked
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	topHeight := m.height / 2
	bottomHeight := m.height - topHeight - 3
	leftWidth := m.width / 2
	rightWidth := m.width - leftWidth

	statusBorder := m.getBorder(PanelStatus).Width(leftWidth - 2).Height(topHeight - 2)
	taskBorder := m.getBorder(PanelTasks).Width(rightWidth - 2).Height(topHeight - 2)
	eventBorder := m.getBorder(PanelEvents).Width(m.width - 2).Height(bottomHeight - 2)

	topRow := lipgloss.JoinHorizontal(
		lipgloss.Top,
		statusBorder.Render(m.renderStatusPanel()),
		taskBorder.Render(m.renderTaskPanel(topHeight-4)),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		topRow,
		eventBorder.Render(m.renderEventPanel(bottomHeight-4)),
		m.renderHelpBar(),
	)
}

func (m Model) getBorder(panel Panel) lipgloss.Style {
	if m.activePanel == panel {
		return m.styles.ActiveBorder
	}
	return m.styles.InactiveBorder
}

func (m Model) renderStatusPanel() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Taverley Rotation"))
	b.WriteString("\n\n")

	b.WriteString(m.styles.Label.Render("State: "))
	if m.stopped {
		b.WriteString(m.styles.StatusBad.Render("Stopped"))
	} else {
		b.WriteString(m.styles.StatusOK.Render("Running"))
	}
	b.WriteString("\n\n")

	b.WriteString(m.styles.Label.Render("Task: "))
	if m.currentTask != "" {
		b.WriteString(m.styles.Value.Render(m.currentTask))
	} else {
		b.WriteString(m.styles.Muted.Render("None"))
	}
	b.WriteString("\n\n")

	b.WriteString(m.styles.Label.Render("Switches: "))
	b.WriteString(m.styles.Value.Render(fmt.Sprintf("%d", m.switches)))
	b.WriteString("\n\n")

	b.WriteString(m.styles.Label.Render("Uptime: "))
	b.WriteString(m.styles.Value.Render(formatDuration(time.Since(m.startedAt))))
	b.WriteString("\n\n")

	b.WriteString(m.styles.Label.Render("Last: "))
	if m.lastEvent != "" {
		b.WriteString(m.styles.Muted.Render(m.lastEvent))
	} else {
		b.WriteString(m.styles.Muted.Render("-"))
	}

	return b.String()
}

func (m Model) renderTaskPanel(height int) string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Tasks"))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(m.styles.Muted.Render("No tasks configured"))
		return b.String()
	}

	start := clamp(m.taskScroll, 0, max(0, len(m.rows)-1))
	for i := start; i < len(m.rows) && i-start < max(height, 1); i++ {
		row := m.rows[i]

		marker := "  "
		if row.Current {
			marker = "> "
		}
		flag := "on "
		if !row.Active {
			flag = "off"
		}
		line := fmt.Sprintf("%s%-24s %-12s %s %8s", marker, row.Name, row.Skill, flag, formatDuration(m.workedFor(row)))

		if row.Current {
			b.WriteString(m.styles.Current.Render(line))
		} else if !row.Active {
			b.WriteString(m.styles.Muted.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderEventPanel(height int) string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Events"))
	b.WriteString("\n\n")

	if len(m.events) == 0 {
		b.WriteString(m.styles.Muted.Render("Waiting for events..."))
		return b.String()
	}

	visible := max(height, 1)
	start := max(0, len(m.events)-visible-m.logScroll)
	end := min(len(m.events), start+visible)
	for _, line := range m.events[start:end] {
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderHelpBar() string {
	parts := []string{
		m.styles.HelpKey.Render("tab") + m.styles.HelpText.Render(" panel"),
		m.styles.HelpKey.Render("j/k") + m.styles.HelpText.Render(" scroll"),
		m.styles.HelpKey.Render("q") + m.styles.HelpText.Render(" quit"),
	}
	return " " + strings.Join(parts, "  ")
}

// formatDuration renders a duration compactly: 90s -> 1m30s, 2h5m.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
