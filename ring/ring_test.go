package ring

import (
	"bytes"
	"testing"

	"golang.org/x/sys/unix"
)

// TestNewPanicsOnBadCapacity verifies that the constructor rejects
// capacities ≤ 0. We wrap the call in a closure so we can recover() and
// inspect the panic without terminating the whole test run.
func TestNewPanicsOnBadCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("New(%d) should panic", capacity)
				}
			}()
			_ = New(capacity)
		}()
	}
}

// TestCapacityInvariant checks dataSize + availableSpace == capacity at
// every observation point of a mixed write/consume sequence.
func TestCapacityInvariant(t *testing.T) {
	b := New(16)
	check := func(step string) {
		if got := b.DataSize() + b.AvailableSpace(); got != b.Capacity() {
			t.Fatalf("%s: dataSize+availableSpace = %d, want %d", step, got, b.Capacity())
		}
		if b.DataSize() > b.Capacity() {
			t.Fatalf("%s: dataSize %d exceeds capacity", step, b.DataSize())
		}
	}
	check("fresh")
	b.WriteFromBytes([]byte("abcdefgh"))
	check("after write 8")
	b.Consume(3)
	check("after consume 3")
	b.WriteFromBytes([]byte("0123456789"))
	check("after wrap write")
	b.Consume(b.DataSize())
	check("after drain")
}

// TestNoDataLossNonWrapping writes n < capacity bytes, reads one view,
// consumes it, and expects exactly the written bytes in order.
func TestNoDataLossNonWrapping(t *testing.T) {
	b := New(64)
	payload := []byte("the quick brown fox")
	if n := b.WriteFromBytes(payload); n != len(payload) {
		t.Fatalf("wrote %d, want %d", n, len(payload))
	}
	view := b.ReadView()
	if !bytes.Equal(view, payload) {
		t.Fatalf("view = %q, want %q", view, payload)
	}
	b.Consume(len(view))
	if !b.Empty() {
		t.Fatal("buffer should be empty after full consume")
	}
}

// TestFullEmptyBoundary exercises the freshly-constructed, filled, and
// over-filled states.
func TestFullEmptyBoundary(t *testing.T) {
	b := New(8)
	if b.DataSize() != 0 {
		t.Fatalf("fresh buffer dataSize = %d", b.DataSize())
	}
	if n := b.WriteFromBytes(bytes.Repeat([]byte{'x'}, 8)); n != 8 {
		t.Fatalf("fill wrote %d, want 8", n)
	}
	if b.AvailableSpace() != 0 {
		t.Fatalf("full buffer availableSpace = %d", b.AvailableSpace())
	}
	if n := b.WriteFromBytes([]byte("y")); n != 0 {
		t.Fatalf("write into full buffer reported %d bytes", n)
	}
	if n := b.WriteFromByte('y'); n != 0 {
		t.Fatal("WriteFromByte into full buffer should report 0")
	}
}

// TestWriteFromBytesTruncates confirms the contiguous-run prefix contract:
// an oversized input is truncated, never partially wrapped.
func TestWriteFromBytesTruncates(t *testing.T) {
	b := New(8)
	if n := b.WriteFromBytes(bytes.Repeat([]byte{'a'}, 12)); n != 8 {
		t.Fatalf("wrote %d, want 8", n)
	}
}

// TestConsumeClamps verifies over-consumption is clamped to the readable
// size rather than corrupting the cursors.
func TestConsumeClamps(t *testing.T) {
	b := New(8)
	b.WriteFromBytes([]byte("abc"))
	b.Consume(100)
	if !b.Empty() {
		t.Fatal("buffer should be empty after clamped consume")
	}
	if b.DataSize()+b.AvailableSpace() != b.Capacity() {
		t.Fatal("capacity invariant broken after clamped consume")
	}
}

// TestViewDoesNotCoverWrappedData documents the contiguous-run limitation
// the parser contract is built on: a wrapped readable region is exposed
// only up to the physical end of storage.
func TestViewDoesNotCoverWrappedData(t *testing.T) {
	b := New(8)
	b.WriteFromBytes([]byte("abcdef"))
	b.Consume(4)                // head=4
	b.WriteAll([]byte("ghij")) // wraps: ef at 4..5, gh at 6..7, ij at 0..1
	if !b.Wrapped() {
		t.Fatal("buffer should report wrapped")
	}
	view := b.ReadView()
	if want := []byte("efgh"); !bytes.Equal(view, want) {
		t.Fatalf("view = %q, want %q", view, want)
	}
	if b.DataSize() != 6 {
		t.Fatalf("dataSize = %d, want 6", b.DataSize())
	}
}

// TestRealignUnwraps checks that Realign makes the whole readable region
// visible as one view, preserving byte order, in both the wrapped and the
// merely-offset cases.
func TestRealignUnwraps(t *testing.T) {
	// Wrapped case.
	b := New(8)
	b.WriteFromBytes([]byte("abcdef"))
	b.Consume(4)
	b.WriteAll([]byte("ghij"))
	b.Realign()
	if b.Wrapped() {
		t.Fatal("buffer still wrapped after realign")
	}
	if view := b.ReadView(); !bytes.Equal(view, []byte("efghij")) {
		t.Fatalf("view after realign = %q, want %q", view, "efghij")
	}

	// Offset (non-wrapped) case.
	b = New(8)
	b.WriteFromBytes([]byte("abcdef"))
	b.Consume(2)
	b.Realign()
	if view := b.ReadView(); !bytes.Equal(view, []byte("cdef")) {
		t.Fatalf("view after offset realign = %q, want %q", view, "cdef")
	}
	if b.AvailableSpace() != 4 {
		t.Fatalf("availableSpace after realign = %d, want 4", b.AvailableSpace())
	}
}

// TestRealignFull realigns a completely full wrapped buffer and expects
// every byte preserved with the full flag intact.
func TestRealignFull(t *testing.T) {
	b := New(4)
	b.WriteFromBytes([]byte("abcd"))
	b.Consume(2)
	b.WriteFromBytes([]byte("ef")) // full again, head=2
	if b.AvailableSpace() != 0 {
		t.Fatalf("availableSpace = %d, want 0", b.AvailableSpace())
	}
	b.Realign()
	if view := b.ReadView(); !bytes.Equal(view, []byte("cdef")) {
		t.Fatalf("view = %q, want %q", view, "cdef")
	}
	if b.AvailableSpace() != 0 {
		t.Fatal("full flag lost during realign")
	}
}

// TestWriteAll verifies the all-or-nothing contract, including a write
// that must continue across the wrap point.
func TestWriteAll(t *testing.T) {
	b := New(8)
	b.WriteFromBytes([]byte("abcdef"))
	b.Consume(4)
	// Space is 6 but only 2 contiguous at the tail.
	if !b.WriteAll([]byte("ghijk")) {
		t.Fatal("WriteAll should succeed, space is sufficient")
	}
	if b.WriteAll([]byte("xy")) {
		t.Fatal("WriteAll should refuse, only 1 byte free")
	}
	b.Realign()
	if view := b.ReadView(); !bytes.Equal(view, []byte("efghijk")) {
		t.Fatalf("view = %q, want %q", view, "efghijk")
	}
}

// TestSocketTransfer round-trips bytes through a non-blocking socketpair
// using the direct transfer operations, covering the EAGAIN and
// peer-closed returns.
func TestSocketTransfer(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	unix.SetNonblock(fds[0], true)
	unix.SetNonblock(fds[1], true)

	in := New(64)
	if _, err := in.WriteFromSocket(fds[0]); err != unix.EAGAIN {
		t.Fatalf("read from idle socket: err = %v, want EAGAIN", err)
	}

	payload := []byte("8=FIX.4.2")
	if _, err := unix.Write(fds[1], payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	n, err := in.WriteFromSocket(fds[0])
	if err != nil || n != len(payload) {
		t.Fatalf("WriteFromSocket = (%d, %v), want (%d, nil)", n, err, len(payload))
	}
	if !bytes.Equal(in.ReadView(), payload) {
		t.Fatalf("buffered %q, want %q", in.ReadView(), payload)
	}

	out := New(64)
	out.WriteFromBytes([]byte("pong"))
	n, err = out.ReadToSocket(fds[0])
	if err != nil || n != 4 {
		t.Fatalf("ReadToSocket = (%d, %v), want (4, nil)", n, err)
	}
	var echo [8]byte
	if n, _ := unix.Read(fds[1], echo[:]); n != 4 || !bytes.Equal(echo[:4], []byte("pong")) {
		t.Fatalf("socket received %q", echo[:n])
	}
	if _, err := out.ReadToSocket(fds[0]); err != ErrEmpty {
		t.Fatalf("drained buffer: err = %v, want ErrEmpty", err)
	}

	// Peer close is a zero-length read, not an error.
	unix.Close(fds[1])
	in.Consume(in.DataSize())
	n, err = in.WriteFromSocket(fds[0])
	if n != 0 || err != nil {
		t.Fatalf("closed peer: got (%d, %v), want (0, nil)", n, err)
	}
	unix.Close(fds[0])
}

// TestFullBufferSocketRead confirms a full buffer reports ErrFull before
// touching the descriptor.
func TestFullBufferSocketRead(t *testing.T) {
	b := New(4)
	b.WriteFromBytes([]byte("abcd"))
	if _, err := b.WriteFromSocket(-1); err != ErrFull {
		t.Fatalf("err = %v, want ErrFull", err)
	}
}
