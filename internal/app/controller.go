// controller.go - Input router and tab controller
//
// ## Metadata
//
// TUI controller owning the active session and every multiplexer command.
//
// ### Purpose
//
// Classify each key event as a multiplexer command or as input for the active shell,
// and apply commands to the session registry. The controller is the only place that
// changes which session is active.
//
// ### Instructions
//
// #### Command Precedence
//
// ##### Key Classification
//
// Quit, new tab, close tab, next tab and previous tab are checked in that order. Any
// other key is translated to terminal bytes and written to the active session; keys
// without a terminal meaning are dropped.
//
// ##### Close Policy
//
// Closing the active tab selects the last remaining tab in creation order. Closing
// the last tab quits.
//
// #### Sizing
//
// Only the active session follows the host window size. A session is resized again
// whenever it becomes active, so background tabs catch up when they are selected.
//
// #### Threading
//
// Like the registry, the controller belongs to the control thread.

package app

import (
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/natb1/tabmux/internal/terminal"
	"github.com/natb1/tabmux/internal/ui"
	"go.uber.org/zap"
)

// Action is the outcome of classifying one key event
type Action int

const (
	ActionNone Action = iota
	ActionForward
	ActionNewTab
	ActionCloseTab
	ActionNextTab
	ActionPrevTab
	ActionQuit
)

var actionNames = map[Action]string{
	ActionNone:     "none",
	ActionForward:  "forward",
	ActionNewTab:   "new-tab",
	ActionCloseTab: "close-tab",
	ActionNextTab:  "next-tab",
	ActionPrevTab:  "prev-tab",
	ActionQuit:     "quit",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Direction selects the neighbor for SwitchTab
type Direction int

const (
	Previous Direction = -1
	Next     Direction = 1
)

// Tab is the read model of one session for the presentation layer
type Tab struct {
	ID       string
	Name     string
	Active   bool
	Activity bool
	Exited   bool
	Output   []byte
}

// ControllerOptions configures a Controller
type ControllerOptions struct {
	Registry *terminal.Registry
	Keys     ui.KeyMap
	Logger   *zap.Logger

	// Initial pty size, used until the first Resize
	Cols int
	Rows int

	// Shell and Dir apply to every tab this controller creates
	Shell string
	Dir   string
}

// Controller routes input and owns the active session id
type Controller struct {
	registry *terminal.Registry
	keys     ui.KeyMap
	log      *zap.Logger
	shell    string
	dir      string

	activeID string
	cols     int
	rows     int
	activity map[string]bool
	notice   string

	quitting    bool
	quitOnce    sync.Once
	done        chan struct{}
	unsubscribe func()
}

// NewController creates a controller for opts.Registry
func NewController(opts ControllerOptions) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cols, rows := opts.Cols, opts.Rows
	if cols <= 0 {
		cols = terminal.DefaultCols
	}
	if rows <= 0 {
		rows = terminal.DefaultRows
	}

	c := &Controller{
		registry: opts.Registry,
		keys:     opts.Keys,
		log:      logger.Named("controller"),
		shell:    opts.Shell,
		dir:      opts.Dir,
		cols:     cols,
		rows:     rows,
		activity: make(map[string]bool),
		done:     make(chan struct{}),
	}
	c.unsubscribe = c.registry.Bus().OnData(c.trackActivity)
	return c
}

// Bootstrap creates the first session. Its failure is fatal to the program.
func (c *Controller) Bootstrap() error {
	if _, err := c.NewTab(""); err != nil {
		return fmt.Errorf("failed to start initial session: %w", err)
	}
	return nil
}

// HandleKey classifies one key event and applies it
func (c *Controller) HandleKey(msg tea.KeyMsg) Action {
	if c.quitting {
		return ActionNone
	}

	switch {
	case key.Matches(msg, c.keys.Quit):
		c.Quit()
		return ActionQuit
	case key.Matches(msg, c.keys.NewTab):
		// Failures are kept as the notice
		_, _ = c.NewTab("")
		return ActionNewTab
	case key.Matches(msg, c.keys.CloseTab):
		c.CloseTab(c.activeID)
		if c.quitting {
			return ActionQuit
		}
		return ActionCloseTab
	case key.Matches(msg, c.keys.NextTab):
		c.SwitchTab(Next)
		return ActionNextTab
	case key.Matches(msg, c.keys.PrevTab):
		c.SwitchTab(Previous)
		return ActionPrevTab
	}

	data := ui.KeyToBytes(msg)
	if data == nil || c.activeID == "" {
		return ActionNone
	}
	c.registry.Write(c.activeID, data)
	return ActionForward
}

// NewTab creates a session and makes it active. An empty name becomes "Shell <n>",
// n being the number of open tabs plus one. A spawn failure leaves the active tab
// unchanged and is kept as the notice.
func (c *Controller) NewTab(name string) (*terminal.Session, error) {
	if c.quitting {
		return nil, terminal.ErrRegistryClosed
	}
	if name == "" {
		name = fmt.Sprintf("Shell %d", c.registry.Len()+1)
	}

	session, err := c.registry.Create(terminal.CreateOptions{
		Name:  name,
		Cols:  c.cols,
		Rows:  c.rows,
		Shell: c.shell,
		Dir:   c.dir,
	})
	if err != nil {
		c.notice = err.Error()
		c.log.Warn("new tab failed", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	c.activate(session.ID)
	c.log.Debug("tab opened", zap.String("session", session.ID), zap.String("name", name))
	return session, nil
}

// CloseTab destroys a session. Closing the last one quits; closing the active one
// selects the last remaining tab. Unknown ids are ignored.
func (c *Controller) CloseTab(id string) {
	if c.quitting {
		return
	}
	if _, err := c.registry.Get(id); err != nil {
		return
	}

	c.registry.Destroy(id)
	delete(c.activity, id)
	c.notice = ""

	remaining := c.registry.List()
	if len(remaining) == 0 {
		c.log.Info("last tab closed")
		c.Quit()
		return
	}
	if id == c.activeID {
		c.activate(remaining[len(remaining)-1].ID)
	}
}

// SwitchTab activates the neighbor of the active tab in creation order, wrapping around
func (c *Controller) SwitchTab(dir Direction) {
	if c.quitting {
		return
	}

	sessions := c.registry.List()
	n := len(sessions)
	if n <= 1 {
		return
	}

	idx := slices.IndexFunc(sessions, func(s *terminal.Session) bool { return s.ID == c.activeID })
	if idx < 0 {
		idx = 0
	}
	next := ((idx+int(dir))%n + n) % n
	c.notice = ""
	c.activate(sessions[next].ID)
}

// Resize records the host pane size and applies it to the active session
func (c *Controller) Resize(cols, rows int) {
	if cols <= 0 || rows <= 0 {
		return
	}
	c.cols, c.rows = cols, rows
	if c.activeID != "" && !c.quitting {
		c.registry.Resize(c.activeID, cols, rows)
	}
}

// Quit destroys every session and closes Done. Only the first call has an effect.
func (c *Controller) Quit() {
	c.quitOnce.Do(func() {
		c.quitting = true
		c.activeID = ""
		c.unsubscribe()
		c.registry.Close()
		close(c.done)
		c.log.Info("multiplexer shut down")
	})
}

// Done is closed once the controller quit
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// ActiveID returns the active session id, empty when there is none
func (c *Controller) ActiveID() string {
	return c.activeID
}

// Active returns the active session, or nil
func (c *Controller) Active() *terminal.Session {
	if c.activeID == "" {
		return nil
	}
	session, err := c.registry.Get(c.activeID)
	if err != nil {
		return nil
	}
	return session
}

// Notice returns the last spawn error still on display
func (c *Controller) Notice() string {
	return c.notice
}

// Size returns the pty size new and activated sessions receive
func (c *Controller) Size() (cols, rows int) {
	return c.cols, c.rows
}

// Tabs returns every session in creation order
func (c *Controller) Tabs() []Tab {
	sessions := c.registry.List()
	tabs := make([]Tab, 0, len(sessions))
	for _, s := range sessions {
		tabs = append(tabs, Tab{
			ID:       s.ID,
			Name:     s.Name,
			Active:   s.ID == c.activeID,
			Activity: c.activity[s.ID],
			Exited:   s.Exited(),
			Output:   s.Output(),
		})
	}
	return tabs
}

// Status describes the active session for the status bar
func (c *Controller) Status() ui.StatusInfo {
	sessions := c.registry.List()
	info := ui.StatusInfo{Total: len(sessions), Cols: c.cols, Rows: c.rows}
	for i, s := range sessions {
		if s.ID == c.activeID {
			info.Name = s.Name
			info.Index = i + 1
		}
	}
	return info
}

func (c *Controller) activate(id string) {
	c.activeID = id
	delete(c.activity, id)
	c.registry.Resize(id, c.cols, c.rows)
}

func (c *Controller) trackActivity(ev terminal.DataEvent) {
	if ev.SessionID != c.activeID {
		c.activity[ev.SessionID] = true
	}
}
