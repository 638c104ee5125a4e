// pty.go - Shell processes behind OS pseudo-terminals
//
// Each handle owns three goroutines: a reader forwarding output chunks, a writer draining
// queued input and resize requests, and a waiter that reports the exit status. Only the
// waiter closes the pty, and it does so after the reader drained or a short grace period
// passed, so output buffered at exit precedes the exit event.

package terminal

import (
	"math"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/natb1/tabmux/internal/terminal/security"
	"go.uber.org/zap"
)

const (
	// TermName is exported to every child as TERM
	TermName = "xterm-256color"

	readChunkSize       = 4096
	defaultDrainTimeout = 250 * time.Millisecond
)

// PTYSpawner starts shells with github.com/creack/pty
type PTYSpawner struct {
	// DrainTimeout bounds how long the exit event waits for buffered output.
	DrainTimeout time.Duration
	Logger       *zap.Logger
}

// NewPTYSpawner returns a spawner with the default drain timeout
func NewPTYSpawner(logger *zap.Logger) *PTYSpawner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PTYSpawner{DrainTimeout: defaultDrainTimeout, Logger: logger}
}

// Spawn validates the shell, starts it on a new pty sized cols x rows and begins streaming
// its events into sink.
func (s *PTYSpawner) Spawn(id string, opts SpawnOptions, sink Sink) (Handle, error) {
	shell, err := security.ValidateShell(opts.Shell)
	if err != nil {
		return nil, &SpawnError{Shell: opts.Shell, Err: err}
	}

	cmd := exec.Command(shell, opts.Args...)
	cmd.Dir = opts.Dir
	cmd.Env = buildEnvironment(opts.Env)

	ptmx, err := pty.StartWithSize(cmd, winsize(opts.Cols, opts.Rows))
	if err != nil {
		return nil, &SpawnError{Shell: shell, Err: err}
	}

	drain := s.DrainTimeout
	if drain <= 0 {
		drain = defaultDrainTimeout
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &ptyHandle{
		id:           id,
		cmd:          cmd,
		ptmx:         ptmx,
		sink:         sink,
		log:          logger.With(zap.String("session", id), zap.Int("pid", cmd.Process.Pid)),
		drainTimeout: drain,
		wake:         make(chan struct{}, 1),
		done:         make(chan struct{}),
		readDone:     make(chan struct{}),
	}

	go h.readLoop()
	go h.writeLoop()
	go h.wait()

	return h, nil
}

// ptyHandle implements Handle for one pty/process pair
type ptyHandle struct {
	id           string
	cmd          *exec.Cmd
	ptmx         *os.File
	sink         Sink
	log          *zap.Logger
	drainTimeout time.Duration

	mu     sync.Mutex
	queue  []ioOp
	exited bool

	wake     chan struct{}
	done     chan struct{}
	readDone chan struct{}
	killOnce sync.Once
}

func (h *ptyHandle) Write(data []byte) {
	if len(data) == 0 {
		return
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	h.enqueue(ioOp{data: buf})
}

func (h *ptyHandle) Resize(cols, rows int) {
	if cols <= 0 || rows <= 0 {
		return
	}
	h.enqueue(ioOp{resize: true, cols: cols, rows: rows})
}

func (h *ptyHandle) Kill() {
	h.killOnce.Do(func() {
		if h.cmd.Process == nil {
			return
		}
		// Already-exited processes report os.ErrProcessDone, which is fine
		if err := h.cmd.Process.Kill(); err != nil {
			h.log.Debug("kill", zap.Error(err))
		}
	})
}

func (h *ptyHandle) Pid() int {
	if h.cmd.Process == nil {
		return 0
	}
	return h.cmd.Process.Pid
}

// wait reaps the child, lets the reader drain, then reports the exit
func (h *ptyHandle) wait() {
	err := h.cmd.Wait()
	code, signal := exitStatus(h.cmd.ProcessState)
	if err != nil && h.cmd.ProcessState == nil {
		h.log.Warn("wait failed", zap.Error(err))
	}

	timer := time.NewTimer(h.drainTimeout)
	select {
	case <-h.readDone:
	case <-timer.C:
		// A background job may still hold the pty open
		h.log.Debug("output still open after exit")
	}
	timer.Stop()

	h.mu.Lock()
	h.exited = true
	h.queue = nil
	h.mu.Unlock()
	close(h.done)

	if err := h.ptmx.Close(); err != nil {
		h.log.Debug("close pty", zap.Error(err))
	}

	h.log.Info("process exited", zap.Int("code", code), zap.Int("signal", signal))
	h.sink(ExitEvent{SessionID: h.id, Code: code, Signal: signal})
}

func (h *ptyHandle) isExited() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exited
}

// exitStatus extracts the exit code, or the terminating signal with code -1
func exitStatus(state *os.ProcessState) (code, signal int) {
	if state == nil {
		return -1, 0
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return -1, int(ws.Signal())
	}
	return state.ExitCode(), 0
}

// buildEnvironment layers TERM and the overrides over the parent environment
func buildEnvironment(overrides []string) []string {
	env := os.Environ()
	env = append(env, "TERM="+TermName)
	// exec.Cmd keeps the last value of duplicated keys
	return append(env, overrides...)
}

// winsize converts a size to the kernel's 16-bit fields, clamping out-of-range values
func winsize(cols, rows int) *pty.Winsize {
	return &pty.Winsize{
		Cols: clampUint16(cols),
		Rows: clampUint16(rows),
	}
}

func clampUint16(n int) uint16 {
	return uint16(min(max(n, 0), math.MaxUint16))
}
