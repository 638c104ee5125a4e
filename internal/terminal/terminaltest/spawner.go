// Package terminaltest provides an in-memory Spawner for tests.
//
// Fake handles record every write, resize and kill, and let tests emit output and exit
// events as if they came from a real process.
package terminaltest

import (
	"errors"
	"sync"

	"github.com/natb1/tabmux/internal/terminal"
)

// Spawner is a terminal.Spawner that creates Handles
type Spawner struct {
	mu      sync.Mutex
	handles map[string]*Handle
	order   []string
	spawned []terminal.SpawnOptions
	nextPid int

	// Fail, when set, makes Spawn return a *terminal.SpawnError wrapping it
	Fail error
}

// NewSpawner creates an empty fake spawner
func NewSpawner() *Spawner {
	return &Spawner{handles: make(map[string]*Handle), nextPid: 1000}
}

// Spawn implements terminal.Spawner
func (s *Spawner) Spawn(id string, opts terminal.SpawnOptions, sink terminal.Sink) (terminal.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Fail != nil {
		return nil, &terminal.SpawnError{Shell: opts.Shell, Err: s.Fail}
	}

	s.nextPid++
	h := &Handle{id: id, pid: s.nextPid, opts: opts, sink: sink}
	s.handles[id] = h
	s.order = append(s.order, id)
	s.spawned = append(s.spawned, opts)
	return h, nil
}

// Handle returns the handle spawned for id
func (s *Spawner) Handle(id string) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handles[id]
}

// Spawned returns the options of every successful spawn, in order
func (s *Spawner) Spawned() []terminal.SpawnOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]terminal.SpawnOptions(nil), s.spawned...)
}

// Size is a recorded resize
type Size struct {
	Cols int
	Rows int
}

// Handle is a fake terminal.Handle
type Handle struct {
	id   string
	pid  int
	opts terminal.SpawnOptions
	sink terminal.Sink

	mu      sync.Mutex
	written []byte
	resizes []Size
	kills   int
	exited  bool

	// WriteErr, when set, is reported as an ErrorEvent on every write
	WriteErr error
}

var errExited = errors.New("process exited")

func (h *Handle) Write(data []byte) {
	h.mu.Lock()
	if h.exited {
		h.mu.Unlock()
		return
	}
	h.written = append(h.written, data...)
	err := h.WriteErr
	h.mu.Unlock()

	if err != nil {
		h.sink(terminal.ErrorEvent{SessionID: h.id, Op: "write", Err: err})
	}
}

func (h *Handle) Resize(cols, rows int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resizes = append(h.resizes, Size{Cols: cols, Rows: rows})
}

func (h *Handle) Kill() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.kills++
}

func (h *Handle) Pid() int {
	return h.pid
}

// Options returns the options the handle was spawned with
func (h *Handle) Options() terminal.SpawnOptions {
	return h.opts
}

// Written returns every byte written so far
func (h *Handle) Written() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return string(h.written)
}

// Resizes returns every recorded resize
func (h *Handle) Resizes() []Size {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Size(nil), h.resizes...)
}

// Kills returns how many times Kill was called
func (h *Handle) Kills() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.kills
}

// Emit sends output as if the process printed it
func (h *Handle) Emit(data string) {
	h.sink(terminal.DataEvent{SessionID: h.id, Data: []byte(data)})
}

// Exit marks the process exited and sends its exit event
func (h *Handle) Exit(code, signal int) {
	h.mu.Lock()
	h.exited = true
	h.mu.Unlock()
	h.sink(terminal.ExitEvent{SessionID: h.id, Code: code, Signal: signal})
}

// Fail sends a handle error event
func (h *Handle) Fail(op string, err error) {
	if err == nil {
		err = errExited
	}
	h.sink(terminal.ErrorEvent{SessionID: h.id, Op: op, Err: err})
}
