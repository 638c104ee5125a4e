// events.go - Notifications emitted by pseudo-terminal handles

package terminal

import "fmt"

// Event is a notification from one session's handle
type Event interface {
	// Source returns the id of the session that produced the event
	Source() string
}

// DataEvent carries one chunk of output read from the pty
type DataEvent struct {
	SessionID string
	Data      []byte
}

// ExitEvent reports that the child process ended. Signal is zero unless the
// process was terminated by a signal, in which case Code is -1.
type ExitEvent struct {
	SessionID string
	Code      int
	Signal    int
}

// ErrorEvent reports a failed write or resize on a handle that is still registered
type ErrorEvent struct {
	SessionID string
	Op        string
	Err       error
}

func (e DataEvent) Source() string  { return e.SessionID }
func (e ExitEvent) Source() string  { return e.SessionID }
func (e ErrorEvent) Source() string { return e.SessionID }

// Notice renders the line appended to a session buffer when its process ends
func (e ExitEvent) Notice() string {
	if e.Signal != 0 {
		return fmt.Sprintf("\r\n[process exited with signal %d]\r\n", e.Signal)
	}
	return fmt.Sprintf("\r\n[process exited with code %d]\r\n", e.Code)
}

func (e ErrorEvent) Error() string {
	return fmt.Sprintf("%s %s: %v", e.SessionID, e.Op, e.Err)
}
