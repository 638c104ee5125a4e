// registry.go - Session registry
//
// ## Metadata
//
// Ownership of every terminal session of one multiplexer.
//
// ### Purpose
//
// Map session ids to their handle, name and bounded output buffer, assign ids that are
// never reused, and serialize every handle event onto the control thread before it
// touches shared state.
//
// ### Instructions
//
// #### Threading
//
// The registry is owned by a single control thread. Handle goroutines only send events
// into the channel returned by Events; the control thread receives them and passes each
// to Dispatch, which updates the buffer and publishes on the bus. No other method may be
// called concurrently.
//
// #### Unknown ids
//
// Sessions can disappear while UI actions for them are still queued. Write, Resize and
// Destroy ignore unknown ids, and Dispatch drops events whose session is gone.

package terminal

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/natb1/tabmux/internal/metrics"
	"go.uber.org/zap"
)

const defaultEventQueue = 256

// Options configures a Registry
type Options struct {
	// Spawner starts processes; defaults to a PTYSpawner
	Spawner Spawner
	// Shell is the configured shell, normally taken from SHELL
	Shell string
	// Dir is the default working directory of new sessions
	Dir string
	// Env entries are added to every session's environment
	Env []string

	BufferCeiling int
	BufferFloor   int

	// EventQueue is the capacity of the inbound event channel
	EventQueue int

	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// CreateOptions describes one new session. Zero values fall back to registry defaults.
type CreateOptions struct {
	Name  string
	Cols  int
	Rows  int
	Shell string
	Args  []string
	Dir   string
	Env   []string
}

// Registry owns all sessions
type Registry struct {
	spawner Spawner
	opts    Options
	log     *zap.Logger
	metrics *metrics.Metrics

	sessions map[string]*Session
	order    []string
	seq      int

	bus    *Bus
	events chan Event
	ctx    context.Context
	cancel context.CancelFunc
}

// NewRegistry creates an empty registry
func NewRegistry(opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Spawner == nil {
		opts.Spawner = NewPTYSpawner(opts.Logger.Named("pty"))
	}
	if opts.BufferCeiling <= 0 {
		opts.BufferCeiling = DefaultBufferCeiling
	}
	if opts.BufferFloor <= 0 {
		opts.BufferFloor = DefaultBufferFloor
	}
	if opts.EventQueue <= 0 {
		opts.EventQueue = defaultEventQueue
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		spawner:  opts.Spawner,
		opts:     opts,
		log:      opts.Logger.Named("registry"),
		metrics:  opts.Metrics,
		sessions: make(map[string]*Session),
		bus:      NewBus(),
		events:   make(chan Event, opts.EventQueue),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Create spawns a shell and registers it under the next id.
// A spawn failure returns a *SpawnError and registers nothing; its sequence number is
// still consumed.
func (r *Registry) Create(opts CreateOptions) (*Session, error) {
	if r.ctx.Err() != nil {
		return nil, ErrRegistryClosed
	}

	r.seq++
	id := fmt.Sprintf("tab-%d", r.seq)

	name := opts.Name
	if name == "" {
		name = fmt.Sprintf("Tab %d", r.seq)
	}
	cols, rows := opts.Cols, opts.Rows
	if cols <= 0 {
		cols = DefaultCols
	}
	if rows <= 0 {
		rows = DefaultRows
	}
	dir := opts.Dir
	if dir == "" {
		dir = r.opts.Dir
	}
	shell := ResolveShell(opts.Shell, r.opts.Shell)

	handle, err := r.spawner.Spawn(id, SpawnOptions{
		Shell: shell,
		Args:  opts.Args,
		Cols:  cols,
		Rows:  rows,
		Dir:   dir,
		Env:   append(slices.Clone(r.opts.Env), opts.Env...),
	}, r.sink)
	if err != nil {
		r.metrics.SpawnFailed()
		r.log.Error("failed to spawn session", zap.String("session", id), zap.String("shell", shell), zap.Error(err))

		var spawnErr *SpawnError
		if !errors.As(err, &spawnErr) {
			spawnErr = &SpawnError{Shell: shell, Err: err}
		}
		return nil, spawnErr
	}

	session := &Session{
		ID:        id,
		Name:      name,
		Shell:     shell,
		Dir:       dir,
		Cols:      cols,
		Rows:      rows,
		StartedAt: time.Now(),
		handle:    handle,
		buffer:    NewOutputBuffer(r.opts.BufferCeiling, r.opts.BufferFloor),
	}
	r.sessions[id] = session
	r.order = append(r.order, id)

	r.metrics.SessionCreated()
	r.log.Info("session created",
		zap.String("session", id),
		zap.String("name", name),
		zap.String("shell", shell),
		zap.Int("pid", handle.Pid()))

	return session, nil
}

// Get returns the session with the given id
func (r *Registry) Get(id string) (*Session, error) {
	session, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	return session, nil
}

// Output returns a copy of a session's retained output
func (r *Registry) Output(id string) ([]byte, error) {
	session, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return session.Output(), nil
}

// List returns the live sessions in creation order
func (r *Registry) List() []*Session {
	sessions := make([]*Session, 0, len(r.order))
	for _, id := range r.order {
		sessions = append(sessions, r.sessions[id])
	}
	return sessions
}

// Snapshot returns the info of every live session in creation order
func (r *Registry) Snapshot() []SessionInfo {
	infos := make([]SessionInfo, 0, len(r.order))
	for _, id := range r.order {
		infos = append(infos, r.sessions[id].Info())
	}
	return infos
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	return len(r.order)
}

// Destroy kills the session's process and removes it. Unknown ids are ignored.
func (r *Registry) Destroy(id string) {
	session, ok := r.sessions[id]
	if !ok {
		return
	}

	delete(r.sessions, id)
	r.order = slices.DeleteFunc(r.order, func(existing string) bool { return existing == id })
	session.handle.Kill()

	r.metrics.SessionDestroyed()
	r.log.Info("session destroyed", zap.String("session", id))
}

// DestroyAll destroys every session
func (r *Registry) DestroyAll() {
	for _, id := range slices.Clone(r.order) {
		r.Destroy(id)
	}
}

// Write queues input for a session. Unknown ids are ignored.
func (r *Registry) Write(id string, data []byte) {
	session, ok := r.sessions[id]
	if !ok || len(data) == 0 {
		return
	}
	session.handle.Write(data)
}

// Resize changes a session's window size. Unknown ids and empty sizes are ignored.
func (r *Registry) Resize(id string, cols, rows int) {
	session, ok := r.sessions[id]
	if !ok || cols <= 0 || rows <= 0 {
		return
	}
	if session.Cols == cols && session.Rows == rows {
		return
	}
	session.Cols, session.Rows = cols, rows
	session.handle.Resize(cols, rows)
}

// Events returns the channel the control thread drains and passes to Dispatch
func (r *Registry) Events() <-chan Event {
	return r.events
}

// Done is closed once the registry is closed
func (r *Registry) Done() <-chan struct{} {
	return r.ctx.Done()
}

// Bus returns the bus Dispatch publishes on
func (r *Registry) Bus() *Bus {
	return r.bus
}

// Dispatch applies one handle event to shared state and publishes it.
// Events of sessions that are no longer registered are dropped.
func (r *Registry) Dispatch(ev Event) {
	session, ok := r.sessions[ev.Source()]
	if !ok {
		r.metrics.EventDropped()
		return
	}

	switch e := ev.(type) {
	case DataEvent:
		evicted := session.buffer.Append(e.Data)
		r.metrics.Output(len(e.Data), evicted)
	case ExitEvent:
		session.markExited(e)
		session.buffer.Append([]byte(e.Notice()))
		r.metrics.ProcessExited(e.Code, e.Signal)
		r.log.Info("session process exited",
			zap.String("session", e.SessionID),
			zap.Int("code", e.Code),
			zap.Int("signal", e.Signal))
	case ErrorEvent:
		r.metrics.HandleError(e.Op)
		r.log.Warn("session handle error",
			zap.String("session", e.SessionID),
			zap.String("op", e.Op),
			zap.Error(e.Err))
	}

	r.bus.Publish(ev)
}

// Close destroys every session and releases producers blocked on the event channel.
// Create fails with ErrRegistryClosed afterwards.
func (r *Registry) Close() {
	if r.ctx.Err() != nil {
		return
	}
	r.DestroyAll()
	r.cancel()
	r.log.Info("registry closed")
}

// sink is handed to every handle; it runs on handle goroutines
func (r *Registry) sink(ev Event) {
	select {
	case r.events <- ev:
	case <-r.ctx.Done():
	}
}
