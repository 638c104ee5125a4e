// model.go - Bubble Tea model
//
// The model is the control thread: key events go to the controller, and handle events
// are pulled from the registry one at a time and dispatched from Update.

package app

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/natb1/tabmux/internal/terminal"
	"github.com/natb1/tabmux/internal/ui"
	"go.uber.org/zap"
)

// sessionEventMsg carries one handle event into Update
type sessionEventMsg struct {
	event terminal.Event
}

// registryClosedMsg reports that no more events will arrive
type registryClosedMsg struct{}

// Model renders the tab bar, the active terminal and the status bar
type Model struct {
	controller *Controller
	registry   *terminal.Registry
	help       *ui.HelpComponent
	pane       *ui.TerminalPane
	log        *zap.Logger

	width  int
	height int
}

// NewModel creates the model for a bootstrapped controller. width and height are the
// host window size until the first tea.WindowSizeMsg.
func NewModel(controller *Controller, registry *terminal.Registry, keys ui.KeyMap, width, height int, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	cols, rows := ui.TerminalArea(width, height)

	m := &Model{
		controller: controller,
		registry:   registry,
		help:       ui.NewHelpComponent(keys),
		pane:       ui.NewTerminalPane(cols, rows),
		log:        logger.Named("model"),
		width:      width,
		height:     height,
	}
	m.help.SetWidth(width / 2)
	m.refresh()
	return m
}

// Init starts draining handle events
func (m *Model) Init() tea.Cmd {
	return waitForEvent(m.registry)
}

// Update handles messages for the multiplexer
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		cols, rows := ui.TerminalArea(msg.Width, msg.Height)
		m.pane.SetSize(cols, rows)
		m.help.SetWidth(msg.Width / 2)
		m.controller.Resize(cols, rows)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		action := m.controller.HandleKey(msg)
		if action == ActionQuit {
			return m, tea.Quit
		}
		if action != ActionForward && action != ActionNone {
			m.log.Debug("command", zap.Stringer("action", action), zap.String("active", m.controller.ActiveID()))
			m.refresh()
		}
		return m, nil

	case sessionEventMsg:
		m.registry.Dispatch(msg.event)
		if msg.event.Source() == m.controller.ActiveID() {
			m.refresh()
		}
		return m, waitForEvent(m.registry)

	case registryClosedMsg:
		return m, tea.Quit
	}

	return m, nil
}

// View renders the whole screen
func (m *Model) View() string {
	tabs := m.controller.Tabs()
	views := make([]ui.TabView, len(tabs))
	for i, tab := range tabs {
		views[i] = ui.TabView{
			ID:       tab.ID,
			Name:     tab.Name,
			Active:   tab.Active,
			Activity: tab.Activity,
			Exited:   tab.Exited,
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		ui.RenderTabBar(views, m.width),
		m.pane.View(),
		ui.RenderStatusBar(m.controller.Status(), m.help.View(), m.width),
	)
}

// refresh redraws the pane from the active session
func (m *Model) refresh() {
	if notice := m.controller.Notice(); notice != "" {
		m.pane.SetNotice(notice)
		return
	}
	if active := m.controller.Active(); active != nil {
		m.pane.SetOutput(active.Output())
		return
	}
	m.pane.SetOutput(nil)
}

// waitForEvent receives the next handle event
func waitForEvent(registry *terminal.Registry) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-registry.Events():
			return sessionEventMsg{event: ev}
		case <-registry.Done():
			return registryClosedMsg{}
		}
	}
}
