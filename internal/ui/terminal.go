// terminal.go - Terminal pane with Bubble Tea viewport
//
// ## Metadata
//
// TUI terminal pane rendering the active session's retained output.
//
// ### Purpose
//
// Show the bottom of the active session's buffer in the space between the tab bar and
// the status bar. When the last tab command failed to start a shell, show that error
// in place of terminal output instead.
//
// ### Instructions
//
// #### Rendering
//
// The pane is redrawn from the session buffer on every change rather than fed chunks,
// so switching tabs shows the other session's history immediately.

package ui

import (
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// chromeRows is the number of rows used by the tab bar and status bar
const chromeRows = 2

// TerminalArea returns the pane size, and so the pty size, for a host window of w x h
func TerminalArea(width, height int) (cols, rows int) {
	return max(width, 1), max(height-chromeRows, 1)
}

// TerminalPane renders session output in a viewport
type TerminalPane struct {
	viewport viewport.Model
	notice   string
}

// NewTerminalPane creates a pane of the given size
func NewTerminalPane(width, height int) *TerminalPane {
	vp := viewport.New(width, height)
	vp.Style = lipgloss.NewStyle() // No border or padding
	return &TerminalPane{viewport: vp}
}

// SetSize resizes the pane
func (p *TerminalPane) SetSize(width, height int) {
	p.viewport.Width = width
	p.viewport.Height = height
}

// Size returns the pane dimensions
func (p *TerminalPane) Size() (width, height int) {
	return p.viewport.Width, p.viewport.Height
}

// SetOutput replaces the content with the tail of a session buffer
func (p *TerminalPane) SetOutput(raw []byte) {
	p.notice = ""
	p.viewport.SetContent(lastLines(DisplayText(raw), p.viewport.Height))
	p.viewport.GotoBottom()
}

// SetNotice shows msg instead of terminal output; an empty msg clears it
func (p *TerminalPane) SetNotice(msg string) {
	p.notice = msg
}

// View renders the pane
func (p *TerminalPane) View() string {
	if p.notice != "" {
		return lipgloss.NewStyle().
			Width(p.viewport.Width).
			Height(p.viewport.Height).
			Render(noticeStyle.Render(p.notice))
	}
	return p.viewport.View()
}
