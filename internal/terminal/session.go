// session.go - Terminal session state
//
// A Session is one shell process, its pty handle and its retained output. Sessions are
// created and mutated only by the Registry on the control thread; everything else reads.

package terminal

import "time"

// Default terminal and buffer sizes
const (
	DefaultCols          = 80
	DefaultRows          = 24
	DefaultBufferCeiling = 50_000
	DefaultBufferFloor   = 40_000
)

// Session represents a terminal session
type Session struct {
	ID        string
	Name      string
	Shell     string
	Dir       string
	Cols      int
	Rows      int
	StartedAt time.Time

	handle Handle
	buffer *OutputBuffer

	exited   bool
	exitCode int
	signal   int
}

// SessionInfo is a point-in-time view of a session
type SessionInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Shell     string    `json:"shell"`
	Dir       string    `json:"dir,omitempty"`
	Pid       int       `json:"pid"`
	Cols      int       `json:"cols"`
	Rows      int       `json:"rows"`
	StartedAt time.Time `json:"started_at"`
	Exited    bool      `json:"exited"`
	ExitCode  int       `json:"exit_code,omitempty"`
	Signal    int       `json:"signal,omitempty"`
	Buffered  int       `json:"buffered"`
}

// Output returns a copy of the retained output
func (s *Session) Output() []byte {
	return s.buffer.Bytes()
}

// OutputString returns the retained output as text
func (s *Session) OutputString() string {
	return s.buffer.String()
}

// Exited reports whether the process has ended
func (s *Session) Exited() bool {
	return s.exited
}

// ExitStatus returns the exit code and signal; both are zero while running
func (s *Session) ExitStatus() (code, signal int) {
	return s.exitCode, s.signal
}

// Pid returns the shell's process id
func (s *Session) Pid() int {
	if s.handle == nil {
		return 0
	}
	return s.handle.Pid()
}

// Info returns a snapshot of the session
func (s *Session) Info() SessionInfo {
	return SessionInfo{
		ID:        s.ID,
		Name:      s.Name,
		Shell:     s.Shell,
		Dir:       s.Dir,
		Pid:       s.Pid(),
		Cols:      s.Cols,
		Rows:      s.Rows,
		StartedAt: s.StartedAt,
		Exited:    s.exited,
		ExitCode:  s.exitCode,
		Signal:    s.signal,
		Buffered:  s.buffer.Len(),
	}
}

func (s *Session) markExited(ev ExitEvent) {
	s.exited = true
	s.exitCode = ev.Code
	s.signal = ev.Signal
}
