// statusbar.go - Status bar rendering

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// StatusInfo describes the active session for the status bar
type StatusInfo struct {
	Name  string
	Index int // 1-based
	Total int
	Cols  int
	Rows  int
}

// StatusText returns "name | Session i/N | cols×rows"
func StatusText(info StatusInfo) string {
	if info.Total == 0 {
		return "no sessions"
	}
	return fmt.Sprintf("%s | Session %d/%d | %d×%d", info.Name, info.Index, info.Total, info.Cols, info.Rows)
}

// RenderStatusBar renders the status text on the left and hints on the right
func RenderStatusBar(info StatusInfo, hints string, width int) string {
	left := StatusText(info)
	if width <= 0 {
		return left + "  " + hints
	}

	gap := width - statusStyle.GetHorizontalPadding() - lipgloss.Width(left) - lipgloss.Width(hints)
	if gap < 1 {
		// Not enough room for hints
		return statusStyle.Width(width).MaxWidth(width).Render(left)
	}

	line := left + strings.Repeat(" ", gap) + hints
	return statusStyle.Width(width).MaxWidth(width).Render(line)
}
