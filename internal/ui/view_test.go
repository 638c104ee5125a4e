package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func init() {
	SetColorProfile(termenv.Ascii)
}

func TestRenderTabBar(t *testing.T) {
	tabs := []TabView{
		{ID: "tab-1", Name: "Shell 1"},
		{ID: "tab-2", Name: "Shell 2", Active: true},
		{ID: "tab-4", Name: "Shell 3", Activity: true},
	}

	bar := RenderTabBar(tabs, 80)

	assert.Contains(t, bar, "1:Shell 1")
	assert.Contains(t, bar, "2:Shell 2")
	assert.Contains(t, bar, "3:Shell 3"+activityMarker)
	assert.NotContains(t, bar, "2:Shell 2"+activityMarker)
	assert.Equal(t, 80, lipgloss.Width(bar))
}

func TestRenderTabBarActiveHasNoActivityMarker(t *testing.T) {
	bar := RenderTabBar([]TabView{{Name: "Shell 1", Active: true, Activity: true}}, 0)
	assert.Equal(t, "1:Shell 1", strings.TrimSpace(bar))
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "Shell 2 | Session 2/3 | 80×20",
		StatusText(StatusInfo{Name: "Shell 2", Index: 2, Total: 3, Cols: 80, Rows: 20}))
	assert.Equal(t, "no sessions", StatusText(StatusInfo{}))
}

func TestRenderStatusBar(t *testing.T) {
	info := StatusInfo{Name: "Shell 1", Index: 1, Total: 1, Cols: 80, Rows: 22}

	bar := RenderStatusBar(info, "^q quit", 80)
	assert.Contains(t, bar, "Shell 1 | Session 1/1 | 80×22")
	assert.Contains(t, bar, "^q quit")
	assert.Equal(t, 80, lipgloss.Width(bar))

	narrow := RenderStatusBar(info, "^q quit", 32)
	assert.NotContains(t, narrow, "quit")
}

func TestTerminalArea(t *testing.T) {
	cols, rows := TerminalArea(120, 40)
	assert.Equal(t, 120, cols)
	assert.Equal(t, 38, rows)

	cols, rows = TerminalArea(0, 1)
	assert.Equal(t, 1, cols)
	assert.Equal(t, 1, rows)
}

func TestTerminalPaneShowsTail(t *testing.T) {
	pane := NewTerminalPane(20, 2)
	pane.SetOutput([]byte("one\r\ntwo\r\nthree\r\n$ "))

	view := pane.View()
	assert.Contains(t, view, "three")
	assert.Contains(t, view, "$")
	assert.NotContains(t, view, "one")
}

func TestTerminalPaneNotice(t *testing.T) {
	pane := NewTerminalPane(60, 5)
	pane.SetOutput([]byte("previous output"))
	pane.SetNotice("failed to start shell /nope")

	view := pane.View()
	assert.Contains(t, view, "failed to start shell /nope")
	assert.NotContains(t, view, "previous output")

	pane.SetOutput([]byte("fresh"))
	assert.Contains(t, pane.View(), "fresh")
}
