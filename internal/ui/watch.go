package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Status is the lint state of one watched document.
type Status uint8

const (
	StatusQueued Status = iota
	StatusLinting
	StatusClean
	StatusWarnings
	StatusErrors
)

// Event updates the watch view after a pass over one document.
type Event struct {
	File     string
	Status   Status
	Errors   int
	Warnings int
}

type watchModel struct {
	title   string
	events  <-chan Event
	spinner spinner.Model
	items   []fileItem
	index   map[string]int
	passes  int
	width   int
	done    bool
}

type fileItem struct {
	path     string
	status   Status
	errors   int
	warnings int
}

type eventMsg Event
type doneMsg struct{}

// NewWatchModel returns a Bubble Tea model that renders live lint results for
// the watched documents. The model quits when the event channel is closed.
func NewWatchModel(title string, files []string, events <-chan Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	items := make([]fileItem, 0, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		items = append(items, fileItem{path: file, status: StatusQueued})
		index[file] = i
	}
	return &watchModel{
		title:   title,
		events:  events,
		spinner: sp,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		m.applyEvent(Event(msg))
		return m, m.listenForEvent()
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *watchModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := fmt.Sprintf("%s (%d passes)", m.title, m.passes)
	if m.done {
		header = fmt.Sprintf("stopped: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 14
	nameWidth := m.width - statusWidth - 4
	if nameWidth < 20 {
		nameWidth = 20
	}

	for _, item := range m.items {
		name := truncate(item.path, nameWidth)
		label := statusLabel(item)
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%14s", label))
		b.WriteString(fmt.Sprintf("  %s %s\n", statusStyled, name))
	}

	if !m.done {
		b.WriteString("\n  press q to stop\n")
	}
	return b.String()
}

func (m *watchModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *watchModel) applyEvent(ev Event) {
	idx, ok := m.index[ev.File]
	if !ok {
		// файл появился после старта
		m.items = append(m.items, fileItem{path: ev.File})
		idx = len(m.items) - 1
		m.index[ev.File] = idx
	}
	item := &m.items[idx]
	item.status = ev.Status
	item.errors = ev.Errors
	item.warnings = ev.Warnings
	if ev.Status == StatusClean || ev.Status == StatusWarnings || ev.Status == StatusErrors {
		m.passes++
	}
}

func statusLabel(item fileItem) string {
	switch item.status {
	case StatusQueued:
		return "queued"
	case StatusLinting:
		return "linting"
	case StatusClean:
		return "clean"
	case StatusWarnings:
		return fmt.Sprintf("%d warning(s)", item.warnings)
	case StatusErrors:
		return fmt.Sprintf("%d error(s)", item.errors)
	default:
		return ""
	}
}

func styleStatus(status Status) lipgloss.Style {
	switch status {
	case StatusClean:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case StatusErrors:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case StatusWarnings:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	case StatusLinting:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
