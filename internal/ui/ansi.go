// ansi.go - Preparing raw pty output for the terminal pane
//
// ## Metadata
//
// TUI output sanitization for the terminal pane.
//
// ### Purpose
//
// Session buffers hold the bytes the shell wrote, untouched. The pane is not a terminal
// emulator, so before rendering it keeps text, newlines and color/formatting sequences,
// and drops cursor movement, screen clearing and other control sequences that would
// break the surrounding layout.
//
// ### Instructions
//
// #### Line Handling
//
// \r\n becomes \n. A lone \r returns to the start of the line, so text after it replaces
// the line, which is how shells redraw prompts and progress bars. Backspace removes the
// previous character of the current line.

package ui

import (
	"strings"
	"unicode/utf8"
)

// maxSequenceLength bounds how far a CSI sequence is scanned for its final byte
const maxSequenceLength = 32

// span locates a kept escape sequence inside the current line
type span struct {
	start, end int
}

// DisplayText converts raw pty output into text the pane can render. A truncated buffer
// may start inside a multibyte rune; that fragment is skipped.
func DisplayText(raw []byte) string {
	var out strings.Builder
	var line []byte
	var seqs []span

	flush := func() {
		out.Write(line)
		line = line[:0]
		seqs = seqs[:0]
	}

	for skipped := 0; skipped < utf8.UTFMax-1 && len(raw) > 0 && !utf8.RuneStart(raw[0]); skipped++ {
		raw = raw[1:]
	}

	for i := 0; i < len(raw); {
		b := raw[i]
		switch {
		case b == 0x1b:
			seq, n := escapeSequence(raw[i:])
			if len(seq) > 0 {
				seqs = append(seqs, span{start: len(line), end: len(line) + len(seq)})
				line = append(line, seq...)
			}
			i += n
		case b == '\r':
			if i+1 < len(raw) && raw[i+1] == '\n' {
				flush()
				out.WriteByte('\n')
				i += 2
				continue
			}
			line = line[:0]
			seqs = seqs[:0]
			i++
		case b == '\n':
			flush()
			out.WriteByte('\n')
			i++
		case b == '\b':
			line, seqs = dropLastRune(line, seqs)
			i++
		case b == '\t' || b >= 0x20 && b != 0x7f:
			line = append(line, b)
			i++
		default:
			// Other control characters (bell, shift in/out, ...)
			i++
		}
	}
	flush()

	return out.String()
}

// escapeSequence returns the part of the sequence at the start of data worth keeping
// (only SGR color/formatting) and its length.
func escapeSequence(data []byte) (keep []byte, n int) {
	if len(data) < 2 {
		return nil, len(data)
	}

	switch data[1] {
	case '[':
		// CSI: parameters then a final byte in 0x40..0x7e
		for i := 2; i < len(data) && i < maxSequenceLength; i++ {
			if data[i] >= 0x40 && data[i] <= 0x7e {
				if data[i] == 'm' {
					return data[:i+1], i + 1
				}
				return nil, i + 1
			}
		}
		return nil, min(len(data), maxSequenceLength)
	case ']':
		// OSC (window titles, hyperlinks): ends with BEL or ESC \
		for i := 2; i < len(data); i++ {
			if data[i] == 0x07 {
				return nil, i + 1
			}
			if data[i] == 0x1b && i+1 < len(data) && data[i+1] == '\\' {
				return nil, i + 2
			}
		}
		return nil, len(data)
	case '(', ')', '#':
		// Character set selection takes one more byte
		return nil, min(len(data), 3)
	default:
		return nil, 2
	}
}

// dropLastRune removes the last visible rune of line, keeping any escape sequences
// that follow it
func dropLastRune(line []byte, seqs []span) ([]byte, []span) {
	end := len(line)
	i := len(seqs) - 1
	for ; i >= 0 && seqs[i].end == end; i-- {
		end = seqs[i].start
	}
	if end == 0 {
		return line, seqs
	}

	_, size := utf8.DecodeLastRune(line[:end])
	line = append(line[:end-size], line[end:]...)
	for j := i + 1; j < len(seqs); j++ {
		seqs[j].start -= size
		seqs[j].end -= size
	}
	return line, seqs
}

// lastLines returns at most n trailing lines of s
func lastLines(s string, n int) string {
	if n <= 0 {
		return ""
	}
	s = strings.TrimSuffix(s, "\n")
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
