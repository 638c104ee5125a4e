// keymap.go - Multiplexer key bindings using bubbles
//
// ## Metadata
//
// TUI keymap for the tab multiplexer, built with charmbracelet/bubbles key bindings.
//
// ### Purpose
//
// Keep every multiplexer command binding in one place so that the controller classifies
// keys and the help line describes them from the same definitions. Any key not bound
// here belongs to the active shell.
//
// ### Instructions
//
// #### Keymap Organization
//
// ##### Configured Bindings
//
// Bindings are built from config.KeyConfig, so a YAML file can rebind any command.
// Key names are the strings Bubble Tea reports, such as "ctrl+t" or "ctrl+right".

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/natb1/tabmux/internal/config"
)

// KeyMap defines the multiplexer command bindings
type KeyMap struct {
	Quit     key.Binding
	NewTab   key.Binding
	CloseTab key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding
}

// NewKeyMap creates the keymap from configured key names
func NewKeyMap(cfg config.KeyConfig) KeyMap {
	return KeyMap{
		Quit:     binding(cfg.Quit, "quit"),
		NewTab:   binding(cfg.NewTab, "new tab"),
		CloseTab: binding(cfg.CloseTab, "close tab"),
		NextTab:  binding(cfg.NextTab, "next"),
		PrevTab:  binding(cfg.PrevTab, "prev"),
	}
}

// DefaultKeyMap returns the built-in bindings
func DefaultKeyMap() KeyMap {
	return NewKeyMap(config.DefaultKeys())
}

// ShortHelp returns keybindings to show in the mini help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NewTab, k.CloseTab, k.PrevTab, k.NextTab, k.Quit}
}

// FullHelp returns keybindings to show in the full help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NewTab, k.CloseTab},
		{k.PrevTab, k.NextTab},
		{k.Quit},
	}
}

func binding(keys []string, desc string) key.Binding {
	if len(keys) == 0 {
		return key.NewBinding(key.WithDisabled())
	}
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(helpKey(keys[0]), desc),
	)
}

// helpKey abbreviates a key name the way the help line shows it
func helpKey(name string) string {
	switch name {
	case "ctrl+right":
		return "^→"
	case "ctrl+left":
		return "^←"
	}
	if rest, ok := strings.CutPrefix(name, "ctrl+"); ok {
		return "^" + rest
	}
	return name
}
