package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tegflow/tegflow/internal/engine"
)

const eventLogSize = 8

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	eventStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type playKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Execute key.Binding
	Check   key.Binding
	Quit    key.Binding
}

func defaultPlayKeys() playKeyMap {
	return playKeyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous action")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next action")),
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous result")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next result")),
		Execute: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "execute action")),
		Check:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "check constraints")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k playKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Execute, k.Check, k.Quit}
}

func (k playKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Execute, k.Check, k.Quit},
	}
}

// playModel is the Bubbletea state for the interactive simulator. Every
// engine call happens synchronously inside Update; the recorder collects
// the events the call emitted so the log pane can show them.
type playModel struct {
	eng      *engine.Engine
	recorder *engine.Recorder

	actions   []string
	selected  int
	labels    []string
	labelIdx  int
	eventLog  []string
	status    string
	keys      playKeyMap
	help      help.Model
	width     int
	err       error
	quitting  bool
}

func newPlayModel(eng *engine.Engine, recorder *engine.Recorder) playModel {
	m := playModel{
		eng:      eng,
		recorder: recorder,
		keys:     defaultPlayKeys(),
		help:     help.New(),
	}
	m.refreshActions()
	return m
}

// Init implements tea.Model.
func (m playModel) Init() tea.Cmd {
	return nil
}

// Update handles key presses and window sizing.
func (m playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.selected > 0 {
				m.selected--
				m.refreshLabels()
			}
			return m, nil
		case key.Matches(msg, m.keys.Down):
			if m.selected < len(m.actions)-1 {
				m.selected++
				m.refreshLabels()
			}
			return m, nil
		case key.Matches(msg, m.keys.Left):
			if len(m.labels) > 0 {
				m.labelIdx = (m.labelIdx + len(m.labels) - 1) % len(m.labels)
			}
			return m, nil
		case key.Matches(msg, m.keys.Right):
			if len(m.labels) > 0 {
				m.labelIdx = (m.labelIdx + 1) % len(m.labels)
			}
			return m, nil
		case key.Matches(msg, m.keys.Check):
			return m.checkConstraints(), nil
		case key.Matches(msg, m.keys.Execute):
			return m.executeSelected(), nil
		}
	}
	return m, nil
}

// View renders the simulator.
func (m playModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n\n", titleStyle.Render("phase:"), m.eng.CurrentPhase())

	if len(m.actions) == 0 {
		b.WriteString(eventStyle.Render("no actions available — this phase is a practical terminal") + "\n")
	}
	for i, kind := range m.actions {
		cursor := "  "
		line := kind
		if i == m.selected {
			cursor = cursorStyle.Render("> ")
			line = selectedStyle.Render(kind)
			if len(m.labels) > 0 {
				line += eventStyle.Render(fmt.Sprintf("  (result: %s)", m.labels[m.labelIdx]))
			}
		}
		fmt.Fprintf(&b, "%s%s\n", cursor, line)
	}

	if m.status != "" {
		fmt.Fprintf(&b, "\n%s\n", statusStyle.Render(m.status))
	}

	if len(m.eventLog) > 0 {
		b.WriteString("\n" + titleStyle.Render("events") + "\n")
		for _, line := range m.eventLog {
			b.WriteString(eventStyle.Render(line) + "\n")
		}
	}

	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func (m playModel) checkConstraints() playModel {
	if len(m.actions) == 0 {
		return m
	}
	kind := m.actions[m.selected]

	ok, err := m.eng.CheckConstraints(kind)
	m.drainEvents()
	if err != nil {
		m.status = err.Error()
		return m
	}
	m.status = fmt.Sprintf("constraints for %q: %v", kind, ok)
	return m
}

func (m playModel) executeSelected() playModel {
	if len(m.actions) == 0 || len(m.labels) == 0 {
		return m
	}
	kind := m.actions[m.selected]
	label := m.labels[m.labelIdx]

	if err := m.eng.ExecuteAction(kind, label); err != nil {
		m.drainEvents()
		m.status = err.Error()
		return m
	}

	m.drainEvents()
	m.status = ""
	m.refreshActions()
	return m
}

func (m *playModel) refreshActions() {
	m.actions = m.eng.AvailableActions()
	if m.selected >= len(m.actions) {
		m.selected = 0
	}
	m.refreshLabels()
}

func (m *playModel) refreshLabels() {
	m.labels = nil
	m.labelIdx = 0
	if len(m.actions) == 0 {
		return
	}
	// Resolve the selected action's result labels through the engine's
	// rule set view: available actions and current phase are enough.
	kind := m.actions[m.selected]
	m.labels = m.eng.ResultLabels(kind)
	sort.Strings(m.labels)
}

func (m *playModel) drainEvents() {
	for _, ev := range m.recorder.Events {
		m.eventLog = append(m.eventLog, renderEvent(ev))
	}
	if len(m.eventLog) > eventLogSize {
		m.eventLog = m.eventLog[len(m.eventLog)-eventLogSize:]
	}
	m.recorder.Reset()
}

func renderEvent(ev engine.Event) string {
	switch ev := ev.(type) {
	case engine.PhaseChanged:
		return fmt.Sprintf("phase changed: %s -> %s", ev.From, ev.To)
	case engine.ActionExecuted:
		return fmt.Sprintf("action executed: %s/%s (%s)", ev.Phase, ev.Action, ev.Result)
	case engine.ConstraintChecked:
		return fmt.Sprintf("constraints checked: %s/%s success=%v", ev.Phase, ev.Action, ev.Success)
	}
	return fmt.Sprintf("%T", ev)
}
