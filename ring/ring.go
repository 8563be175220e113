// ring.go
//
// Fixed-capacity byte ring buffer backing one direction of one connection.
// Socket transfers move bytes directly between the descriptor and the
// single contiguous run at the head or tail cursor, so the common path
// copies each byte exactly once. Read access is exposed as a zero-copy
// contiguous view plus an explicit Consume, the contract the incremental
// parser is built against. The structure owns no threading concerns: a
// buffer is touched only by the worker that owns its connection.

package ring

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Ordinary-condition sentinels. Buffer-full and buffer-empty are normal
// flow control, never faults; callers branch on these and back off.
var (
	ErrFull  = errors.New("ring: buffer full")
	ErrEmpty = errors.New("ring: buffer empty")
)

// Buffer is a fixed-capacity byte FIFO with contiguous-run access.
//
// Invariants: 0 ≤ head,tail < cap; full ⇒ head == tail with cap bytes
// readable; otherwise readable == (tail-head) mod cap. Readable plus
// writable always equals capacity.
type Buffer struct {
	buf  []byte
	head int // read cursor
	tail int // write cursor
	full bool
}

// New allocates a buffer of the given capacity; it panics on a
// non-positive capacity so the cursor arithmetic stays valid.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		panic("ring: capacity must be > 0")
	}
	return &Buffer{buf: make([]byte, capacity)}
}

// Capacity returns the fixed byte capacity.
func (b *Buffer) Capacity() int { return len(b.buf) }

// DataSize returns the number of readable bytes.
//
//go:inline
func (b *Buffer) DataSize() int {
	if b.full {
		return len(b.buf)
	}
	if b.tail >= b.head {
		return b.tail - b.head
	}
	return len(b.buf) - b.head + b.tail
}

// AvailableSpace returns the number of writable bytes.
//
//go:inline
func (b *Buffer) AvailableSpace() int { return len(b.buf) - b.DataSize() }

// Empty reports whether no bytes are readable.
//
//go:inline
func (b *Buffer) Empty() bool { return !b.full && b.head == b.tail }

// Wrapped reports whether the readable region straddles the physical end
// of storage, i.e. a single contiguous view cannot cover it. Callers that
// stall on a wrapped message call Realign.
//
//go:inline
func (b *Buffer) Wrapped() bool { return b.DataSize() > len(b.buf)-b.head }

// WriteFromSocket transfers bytes from fd into the contiguous writable run
// at tail, bounded by available space and the physical end of storage.
//
// Returns (n, nil) with n > 0 on success, (0, nil) when the peer closed,
// (0, unix.EAGAIN) when the socket has no data, (0, ErrFull) when the
// buffer has no space, and (0, errno) on a fatal transfer error. Never
// blocks beyond the underlying non-blocking read.
func (b *Buffer) WriteFromSocket(fd int) (int, error) {
	space := b.AvailableSpace()
	if space == 0 {
		return 0, ErrFull
	}
	run := len(b.buf) - b.tail
	if run > space {
		run = space
	}
	n, err := unix.Read(fd, b.buf[b.tail:b.tail+run])
	if n > 0 {
		b.tail = (b.tail + n) % len(b.buf)
		b.full = b.tail == b.head
		return n, nil
	}
	if err != nil {
		return 0, err
	}
	return 0, nil // zero-length read: peer closed
}

// ReadToSocket transfers the contiguous readable run at head to fd and
// consumes exactly the transferred amount.
//
// Returns (n, nil) with n > 0 on success, (0, ErrEmpty) when nothing is
// buffered, (0, unix.EAGAIN) when the socket cannot take more, and
// (0, errno) on a fatal transfer error. Never blocks.
func (b *Buffer) ReadToSocket(fd int) (int, error) {
	size := b.DataSize()
	if size == 0 {
		return 0, ErrEmpty
	}
	run := len(b.buf) - b.head
	if run > size {
		run = size
	}
	n, err := unix.Write(fd, b.buf[b.head:b.head+run])
	if n > 0 {
		b.advance(n)
		return n, nil
	}
	return 0, err
}

// WriteFromBytes copies as much of data as fits into the contiguous
// writable run and returns the copied count. A short count means the run
// (or the buffer) is exhausted; callers needing all-or-nothing semantics
// must check the return value or use WriteAll.
func (b *Buffer) WriteFromBytes(data []byte) int {
	space := b.AvailableSpace()
	if space == 0 {
		return 0
	}
	run := len(b.buf) - b.tail
	if run > space {
		run = space
	}
	n := copy(b.buf[b.tail:b.tail+run], data)
	b.tail = (b.tail + n) % len(b.buf)
	b.full = b.tail == b.head
	return n
}

// WriteFromByte appends one byte, returning 1 on success and 0 when full.
func (b *Buffer) WriteFromByte(data byte) int {
	if b.full {
		return 0
	}
	b.buf[b.tail] = data
	b.tail = (b.tail + 1) % len(b.buf)
	b.full = b.tail == b.head
	return 1
}

// WriteAll copies data in full, continuing across the wrap point, or
// copies nothing and returns false when total space is insufficient.
func (b *Buffer) WriteAll(data []byte) bool {
	if b.AvailableSpace() < len(data) {
		return false
	}
	for len(data) > 0 {
		data = data[b.WriteFromBytes(data):]
	}
	return true
}

// ReadView returns the contiguous readable run starting at head, or nil
// when the buffer is empty. The view is read-only and does NOT cover all
// buffered bytes while the readable region wraps; it stays valid until
// the next mutation of the buffer.
//
//go:inline
func (b *Buffer) ReadView() []byte {
	size := b.DataSize()
	if size == 0 {
		return nil
	}
	run := len(b.buf) - b.head
	if run > size {
		run = size
	}
	return b.buf[b.head : b.head+run]
}

// Consume advances the read cursor by n, clamped to the readable size.
// Over-consuming is a caller error that is clamped, not a fault.
func (b *Buffer) Consume(n int) {
	if size := b.DataSize(); n > size {
		n = size
	}
	b.advance(n)
}

// advance moves head forward by n (n ≤ DataSize) and resets the cursors
// to offset zero whenever the buffer drains, which keeps fresh data
// contiguous and realign rare.
func (b *Buffer) advance(n int) {
	b.head = (b.head + n) % len(b.buf)
	b.full = b.full && n == 0
	if !b.full && b.head == b.tail {
		b.head, b.tail = 0, 0
	}
}

// Realign moves the readable region to offset zero so that one contiguous
// view covers every buffered byte. Needed when a message straddles the
// physical wrap point: the parser reports need-more-data even though the
// bytes are present, and the worker resolves the stall by realigning.
// In-place via reversal rotation; O(capacity), cold path only.
func (b *Buffer) Realign() {
	if b.head == 0 {
		return
	}
	size := b.DataSize()
	if size == 0 {
		b.head, b.tail = 0, 0
		return
	}
	if !b.Wrapped() {
		copy(b.buf, b.buf[b.head:b.head+size])
	} else {
		// Left-rotate the whole store by head: [garbage|live-tail ... live-head]
		// becomes [live ... garbage] with the live region leading.
		reverse(b.buf[:b.head])
		reverse(b.buf[b.head:])
		reverse(b.buf)
	}
	b.head = 0
	b.tail = size % len(b.buf) // size == capacity keeps tail == head with full set
}

func reverse(p []byte) {
	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}
}
