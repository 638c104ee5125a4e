// io.go - Pseudo-terminal read and write loops

package terminal

import (
	"bytes"
	"errors"
	"io"
	"os"
	"unicode/utf8"

	"github.com/creack/pty"
	"go.uber.org/zap"
)

// ioOp is one queued write or resize request
type ioOp struct {
	data   []byte
	resize bool
	cols   int
	rows   int
}

// readLoop forwards output until the pty closes. Incomplete UTF-8 sequences at the end
// of a chunk are carried into the next one.
func (h *ptyHandle) readLoop() {
	defer close(h.readDone)

	buffer := make([]byte, readChunkSize)
	var incomplete []byte

	for {
		n, err := h.ptmx.Read(buffer)
		if n > 0 {
			data := make([]byte, 0, len(incomplete)+n)
			data = append(data, incomplete...)
			data = append(data, buffer[:n]...)

			var rest []byte
			data, rest = splitIncompleteUTF8(data)
			incomplete = bytes.Clone(rest)

			if len(data) > 0 {
				h.sink(DataEvent{SessionID: h.id, Data: data})
			}
		}

		if err != nil {
			if len(incomplete) > 0 {
				h.sink(DataEvent{SessionID: h.id, Data: incomplete})
			}
			// Linux reports EIO once the child side is gone
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				h.log.Debug("read loop ended", zap.Error(err))
			}
			return
		}
	}
}

// writeLoop applies queued requests in order until the process exits
func (h *ptyHandle) writeLoop() {
	for {
		select {
		case <-h.done:
			return
		case <-h.wake:
		}

		for {
			op, ok := h.dequeue()
			if !ok {
				break
			}
			h.apply(op)
		}
	}
}

func (h *ptyHandle) enqueue(op ioOp) {
	h.mu.Lock()
	if h.exited {
		h.mu.Unlock()
		return
	}
	h.queue = append(h.queue, op)
	h.mu.Unlock()

	select {
	case h.wake <- struct{}{}:
	default:
	}
}

func (h *ptyHandle) dequeue() (ioOp, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.exited || len(h.queue) == 0 {
		return ioOp{}, false
	}
	op := h.queue[0]
	h.queue[0] = ioOp{}
	h.queue = h.queue[1:]
	return op, true
}

func (h *ptyHandle) apply(op ioOp) {
	var err error
	name := "write"
	if op.resize {
		name = "resize"
		err = pty.Setsize(h.ptmx, winsize(op.cols, op.rows))
	} else {
		_, err = h.ptmx.Write(op.data)
	}

	// Errors racing the exit are expected and not worth reporting
	if err != nil && !h.isExited() {
		h.log.Warn("pty "+name+" failed", zap.Error(err))
		h.sink(ErrorEvent{SessionID: h.id, Op: name, Err: err})
	}
}

// splitIncompleteUTF8 splits off a trailing rune whose bytes have not all arrived yet
func splitIncompleteUTF8(data []byte) (complete, rest []byte) {
	for i := len(data) - 1; i >= 0 && i >= len(data)-(utf8.UTFMax-1); i-- {
		b := data[i]
		if b < utf8.RuneSelf {
			break
		}
		if utf8.RuneStart(b) {
			if !utf8.FullRune(data[i:]) {
				return data[:i], data[i:]
			}
			break
		}
	}
	return data, nil
}
