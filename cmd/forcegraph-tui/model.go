package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-forcegraph/pkg/pubsub"
	"github.com/dd0wney/cluso-forcegraph/pkg/visualization"
)

const (
	frameInterval = time.Second / 30
	panStep       = 40.0
	zoomFactor    = 1.25
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			PaddingLeft(1)

	canvasStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA")).
			PaddingLeft(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			PaddingLeft(1)
)

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	Fit        key.Binding
	Reset      key.Binding
	Next       key.Binding
	Prev       key.Binding
	Focus      key.Binding
	ClearFocus key.Binding
	Activate   key.Binding
	Pin        key.Binding
	Help       key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "pan up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "pan down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "pan left"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "pan right"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-", "_"),
		key.WithHelp("-", "zoom out"),
	),
	Fit: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "fit"),
	),
	Reset: key.NewBinding(
		key.WithKeys("0"),
		key.WithHelp("0", "reset camera"),
	),
	Next: key.NewBinding(
		key.WithKeys("tab", "n"),
		key.WithHelp("tab", "next node"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab", "N"),
		key.WithHelp("shift+tab", "prev node"),
	),
	Focus: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "focus"),
	),
	ClearFocus: key.NewBinding(
		key.WithKeys("esc", "c"),
		key.WithHelp("esc", "clear focus"),
	),
	Activate: key.NewBinding(
		key.WithKeys(" ", "a"),
		key.WithHelp("space", "activate"),
	),
	Pin: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "pin/unpin"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Focus, k.ClearFocus, k.Fit, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.ZoomIn, k.ZoomOut, k.Fit, k.Reset},
		{k.Next, k.Prev, k.Focus, k.ClearFocus},
		{k.Activate, k.Pin, k.Help, k.Quit},
	}
}

type model struct {
	session *visualization.Session
	events  *pubsub.Subscription
	help    help.Model
	keys    keyMap

	width    int
	height   int
	selected int
	lastTick time.Time

	message    string
	messageErr bool
}

type tickMsg time.Time

type eventMsg pubsub.Event

func tickCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForEvent blocks on the next bus event. It yields nil once the
// subscription closes.
func waitForEvent(sub *pubsub.Subscription) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-sub.Channel()
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

func initialModel(session *visualization.Session, events *pubsub.Subscription) model {
	return model{
		session: session,
		events:  events,
		help:    help.New(),
		keys:    keys,
	}
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd()}
	if m.events != nil {
		cmds = append(cmds, waitForEvent(m.events))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tickMsg:
		now := time.Time(msg)
		dt := frameInterval
		if !m.lastTick.IsZero() {
			dt = now.Sub(m.lastTick)
		}
		m.lastTick = now
		m.session.Tick(dt)
		return m, tickCmd()

	case eventMsg:
		m.message = describeEvent(pubsub.Event(msg))
		m.messageErr = false
		return m, waitForEvent(m.events)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	vp := m.session.Viewport()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		m.session.Pan(0, panStep)
	case key.Matches(msg, m.keys.Down):
		m.session.Pan(0, -panStep)
	case key.Matches(msg, m.keys.Left):
		m.session.Pan(panStep, 0)
	case key.Matches(msg, m.keys.Right):
		m.session.Pan(-panStep, 0)
	case key.Matches(msg, m.keys.ZoomIn):
		m.session.ZoomAtCursor(vp.Center(), zoomFactor)
	case key.Matches(msg, m.keys.ZoomOut):
		m.session.ZoomAtCursor(vp.Center(), 1/zoomFactor)
	case key.Matches(msg, m.keys.Fit):
		if !m.session.FitToView(true) {
			m.setMessage("nothing to fit", nil)
		}
	case key.Matches(msg, m.keys.Reset):
		m.session.ResetCamera()
	case key.Matches(msg, m.keys.Next):
		m.cycle(1)
	case key.Matches(msg, m.keys.Prev):
		m.cycle(-1)
	case key.Matches(msg, m.keys.Focus):
		if id := m.selectedID(); id != "" {
			m.setMessage("focusing "+id, m.session.SetFocusNode(id))
		}
	case key.Matches(msg, m.keys.ClearFocus):
		m.setMessage("focus cleared", m.session.ClearFocus())
	case key.Matches(msg, m.keys.Activate):
		if id := m.selectedID(); id != "" {
			if err := m.session.ActivateNode(id); err != nil {
				m.setMessage("", err)
			}
		}
	case key.Matches(msg, m.keys.Pin):
		m.togglePin()
	}
	return m, nil
}

func (m *model) setMessage(text string, err error) {
	if err != nil {
		m.message = err.Error()
		m.messageErr = true
		return
	}
	m.message = text
	m.messageErr = false
}

func (m *model) cycle(delta int) {
	n := m.session.NodeCount()
	if n == 0 {
		return
	}
	m.selected = ((m.selected+delta)%n + n) % n
}

func (m model) selectedID() string {
	nodes := m.session.State().Nodes
	if len(nodes) == 0 {
		return ""
	}
	return nodes[m.selected%len(nodes)].ID
}

func (m *model) togglePin() {
	id := m.selectedID()
	node, ok := m.session.Node(id)
	if !ok {
		return
	}
	if node.Pinned {
		m.setMessage("unpinned "+id, m.session.UnpinNode(id))
		return
	}
	m.setMessage("pinned "+id, m.session.PinNode(id, node.Position))
}

func describeEvent(ev pubsub.Event) string {
	switch p := ev.Payload.(type) {
	case visualization.NodeActivated:
		return "activated node " + p.NodeID
	case visualization.EdgeActivated:
		return "activated edge " + p.EdgeID
	case visualization.LayoutConverged:
		if p.Converged {
			return fmt.Sprintf("layout settled after %d iterations", p.Iterations)
		}
		return fmt.Sprintf("layout stopped at %d iterations (energy %.3f)", p.Iterations, p.KineticEnergy)
	}
	return ev.Topic
}

// canvasSize is the drawable area inside the border, leaving room for the
// title, status and help lines
func (m model) canvasSize() (int, int) {
	return max(m.width-2, 0), max(m.height-5, 0)
}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder
	st := m.session.State()
	s.WriteString(titleStyle.Render(fmt.Sprintf("forcegraph  %d nodes  %s  iter %d  energy %.3f",
		len(st.Nodes), st.Phase, st.Iteration, st.KineticEnergy)))
	s.WriteString("\n")

	w, h := m.canvasSize()
	s.WriteString(canvasStyle.Render(drawLayout(m.session, w, h, m.selectedID()).Render()))
	s.WriteString("\n")

	status := fmt.Sprintf("selected: %s  zoom: %.2fx", m.selectedID(), m.session.Camera().Scale)
	if focus := m.session.FocusNodeID(); focus != "" {
		status += "  focus: " + focus
	}
	if m.message != "" {
		if m.messageErr {
			status += "  " + errorStyle.Render(m.message)
		} else {
			status += "  " + m.message
		}
	}
	s.WriteString(statusStyle.Render(status))
	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return s.String()
}
