// interface.go - Pseudo-terminal handle contract
//
// The registry only talks to processes through Handle and Spawner, so tests can drive it
// with an in-memory spawner instead of real pseudo-terminals.

package terminal

// Handle is one child process bound to a pseudo-terminal.
//
// Write and Resize are fire-and-forget: they queue work for the handle's own goroutine
// and return immediately. Failures arrive later as ErrorEvent.
type Handle interface {
	// Write queues bytes for the process's input. It is a no-op once the process exited.
	Write(data []byte)
	// Resize queues a window size change.
	Resize(cols, rows int)
	// Kill signals termination. It is idempotent; completion is observed via ExitEvent.
	Kill()
	// Pid returns the child's process id, or 0 if unknown.
	Pid() int
}

// Sink receives every event a handle produces, from the handle's own goroutines
type Sink func(Event)

// SpawnOptions describes the process to start behind a new pseudo-terminal
type SpawnOptions struct {
	Shell string
	Args  []string
	Cols  int
	Rows  int
	Dir   string
	// Env entries (KEY=value) are layered over the parent environment
	Env []string
}

// Spawner starts processes. A failed spawn returns a *SpawnError and starts nothing.
type Spawner interface {
	Spawn(id string, opts SpawnOptions, sink Sink) (Handle, error)
}
