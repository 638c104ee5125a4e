// errors.go - Terminal error values

package terminal

import (
	"errors"
	"fmt"
)

// Sentinel errors for the terminal package.
var (
	// ErrUnknownSession is returned when an id is not (or no longer) registered.
	ErrUnknownSession = errors.New("session not found")

	// ErrRegistryClosed is returned when sessions are created after Close.
	ErrRegistryClosed = errors.New("session registry is closed")
)

// SpawnError reports a shell that could not be started. The session it was meant for
// is never registered.
type SpawnError struct {
	Shell string
	Err   error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start shell %s: %v", e.Shell, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}
