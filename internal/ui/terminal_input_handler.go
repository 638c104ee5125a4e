// terminal_input_handler.go - Key events to terminal input bytes

package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// keySequences maps special keys to the bytes an xterm-256color terminal sends
var keySequences = map[tea.KeyType]string{
	tea.KeySpace:      " ",
	tea.KeyUp:         "\x1b[A",
	tea.KeyDown:       "\x1b[B",
	tea.KeyRight:      "\x1b[C",
	tea.KeyLeft:       "\x1b[D",
	tea.KeyHome:       "\x1b[H",
	tea.KeyEnd:        "\x1b[F",
	tea.KeyPgUp:       "\x1b[5~",
	tea.KeyPgDown:     "\x1b[6~",
	tea.KeyInsert:     "\x1b[2~",
	tea.KeyDelete:     "\x1b[3~",
	tea.KeyShiftTab:   "\x1b[Z",
	tea.KeyCtrlUp:     "\x1b[1;5A",
	tea.KeyCtrlDown:   "\x1b[1;5B",
	tea.KeyCtrlRight:  "\x1b[1;5C",
	tea.KeyCtrlLeft:   "\x1b[1;5D",
	tea.KeyCtrlHome:   "\x1b[1;5H",
	tea.KeyCtrlEnd:    "\x1b[1;5F",
	tea.KeyShiftUp:    "\x1b[1;2A",
	tea.KeyShiftDown:  "\x1b[1;2B",
	tea.KeyShiftRight: "\x1b[1;2C",
	tea.KeyShiftLeft:  "\x1b[1;2D",
	tea.KeyCtrlPgUp:   "\x1b[5;5~",
	tea.KeyCtrlPgDown: "\x1b[6;5~",
	tea.KeyF1:         "\x1bOP",
	tea.KeyF2:         "\x1bOQ",
	tea.KeyF3:         "\x1bOR",
	tea.KeyF4:         "\x1bOS",
	tea.KeyF5:         "\x1b[15~",
	tea.KeyF6:         "\x1b[17~",
	tea.KeyF7:         "\x1b[18~",
	tea.KeyF8:         "\x1b[19~",
	tea.KeyF9:         "\x1b[20~",
	tea.KeyF10:        "\x1b[21~",
	tea.KeyF11:        "\x1b[23~",
	tea.KeyF12:        "\x1b[24~",
}

// KeyToBytes translates a key event into the bytes to write to a shell.
// It returns nil for keys with no terminal meaning.
func KeyToBytes(msg tea.KeyMsg) []byte {
	var input []byte

	switch {
	case msg.Type == tea.KeyRunes:
		if len(msg.Runes) == 0 {
			return nil
		}
		input = []byte(string(msg.Runes))
	case msg.Type >= tea.KeyNull && msg.Type <= tea.KeyCtrlUnderscore, msg.Type == tea.KeyBackspace:
		// Control keys carry their byte value: enter is \r, tab is \t, backspace is DEL
		input = []byte{byte(msg.Type)}
	default:
		seq, ok := keySequences[msg.Type]
		if !ok {
			return nil
		}
		input = []byte(seq)
	}

	if msg.Alt {
		return append([]byte{0x1b}, input...)
	}
	return input
}
