// buffer.go - Bounded per-session output retention
//
// The buffer grows by whole chunks. When an append pushes it past the ceiling, only the
// trailing floor-sized window is kept, in a single truncation. Bytes are kept as they
// arrived; the cut may split a multibyte rune, which rendering tolerates.

package terminal

// OutputBuffer holds the most recent output of one session.
// It is owned by the control thread and not safe for concurrent use.
type OutputBuffer struct {
	data    []byte
	ceiling int
	floor   int
}

// NewOutputBuffer creates a buffer. A floor above the ceiling is clamped to the ceiling.
func NewOutputBuffer(ceiling, floor int) *OutputBuffer {
	if ceiling <= 0 {
		ceiling = DefaultBufferCeiling
	}
	if floor <= 0 || floor > ceiling {
		floor = min(DefaultBufferFloor, ceiling)
	}
	return &OutputBuffer{ceiling: ceiling, floor: floor}
}

// Append adds chunk and reports whether older content was evicted
func (b *OutputBuffer) Append(chunk []byte) (evicted bool) {
	b.data = append(b.data, chunk...)
	if len(b.data) <= b.ceiling {
		return false
	}

	start := len(b.data) - b.floor

	// Copy into fresh storage so the evicted prefix can be collected
	kept := make([]byte, len(b.data)-start, b.ceiling)
	copy(kept, b.data[start:])
	b.data = kept
	return true
}

// Bytes returns a copy of the retained output
func (b *OutputBuffer) Bytes() []byte {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// String returns the retained output as text
func (b *OutputBuffer) String() string {
	return string(b.data)
}

// Len returns the number of retained bytes
func (b *OutputBuffer) Len() int {
	return len(b.data)
}

// Ceiling returns the size that triggers truncation
func (b *OutputBuffer) Ceiling() int {
	return b.ceiling
}

// Floor returns the size truncation keeps
func (b *OutputBuffer) Floor() int {
	return b.floor
}
