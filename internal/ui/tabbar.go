// tabbar.go - Tab bar rendering

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// activityMarker flags a background tab that printed output since it was last viewed
const activityMarker = "*"

// TabView is what the tab bar needs to know about one session
type TabView struct {
	ID       string
	Name     string
	Active   bool
	Activity bool
	Exited   bool
}

// RenderTabBar renders tabs as "index:name" entries, 1-based, highlighting the active one.
// Entries that do not fit in width are cut off on the right.
func RenderTabBar(tabs []TabView, width int) string {
	entries := make([]string, 0, len(tabs))
	for i, tab := range tabs {
		label := fmt.Sprintf("%d:%s", i+1, tab.Name)
		if tab.Activity && !tab.Active {
			label += activityMarker
		}

		style := tabStyle
		switch {
		case tab.Active:
			style = activeTabStyle
		case tab.Exited:
			style = exitedTabStyle
		}
		entries = append(entries, style.Render(label))
	}

	bar := strings.Join(entries, "")
	if width <= 0 {
		return bar
	}
	bar = lipgloss.NewStyle().MaxWidth(width).Render(bar)
	return tabBarStyle.Width(width).Render(bar)
}
