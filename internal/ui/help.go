// help.go - Bubble Tea help line

package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

// HelpComponent renders the key binding hints shown in the status bar
type HelpComponent struct {
	help help.Model
	keys KeyMap
}

// NewHelpComponent creates a help line for keys
func NewHelpComponent(keys KeyMap) *HelpComponent {
	h := help.New()
	h.ShowAll = false

	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	h.Styles.ShortDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	h.Styles.ShortSeparator = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).SetString(" • ")

	return &HelpComponent{help: h, keys: keys}
}

// SetWidth truncates the help line to width cells
func (h *HelpComponent) SetWidth(width int) {
	h.help.Width = width
}

// View renders the short help
func (h *HelpComponent) View() string {
	return h.help.View(h.keys)
}
