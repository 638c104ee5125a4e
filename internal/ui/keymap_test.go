package ui

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/natb1/tabmux/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap(t *testing.T) {
	keys := DefaultKeyMap()

	tests := []struct {
		name    string
		msg     tea.KeyMsg
		binding key.Binding
	}{
		{name: "quit", msg: tea.KeyMsg{Type: tea.KeyCtrlQ}, binding: keys.Quit},
		{name: "new tab", msg: tea.KeyMsg{Type: tea.KeyCtrlT}, binding: keys.NewTab},
		{name: "close tab", msg: tea.KeyMsg{Type: tea.KeyCtrlW}, binding: keys.CloseTab},
		{name: "next tab", msg: tea.KeyMsg{Type: tea.KeyCtrlRight}, binding: keys.NextTab},
		{name: "prev tab", msg: tea.KeyMsg{Type: tea.KeyCtrlLeft}, binding: keys.PrevTab},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, key.Matches(tt.msg, tt.binding))
		})
	}

	assert.False(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlC}, keys.Quit), "ctrl+c belongs to the shell")
}

func TestKeyMapFromConfig(t *testing.T) {
	cfg := config.DefaultKeys()
	cfg.Quit = []string{"ctrl+x"}
	cfg.NextTab = []string{"ctrl+right", "alt+right"}
	cfg.CloseTab = nil

	keys := NewKeyMap(cfg)

	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlX}, keys.Quit))
	assert.False(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlQ}, keys.Quit))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyRight, Alt: true}, keys.NextTab))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlRight}, keys.NextTab))
	assert.False(t, keys.CloseTab.Enabled())
	assert.Equal(t, "^x", keys.Quit.Help().Key)
	assert.Equal(t, "^→", keys.NextTab.Help().Key)
}

func TestShortHelpListsCommands(t *testing.T) {
	keys := DefaultKeyMap()
	assert.Len(t, keys.ShortHelp(), 5)

	h := NewHelpComponent(keys)
	view := h.View()
	for _, desc := range []string{"new tab", "close tab", "prev", "next", "quit"} {
		assert.Contains(t, view, desc)
	}
}
