// styles.go - Shared lipgloss styles

package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	tabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("250"))

	activeTabStyle = tabStyle.
			Bold(true).
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("62"))

	exitedTabStyle = tabStyle.
			Foreground(lipgloss.Color("243")).
			Strikethrough(true)

	tabBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("238")).
			Padding(0, 1)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Bold(true).
			Padding(1, 2)
)

// SetColorProfile selects the color depth used for every style.
// An Ascii profile renders the UI without colors.
func SetColorProfile(profile termenv.Profile) {
	lipgloss.SetColorProfile(profile)
}
