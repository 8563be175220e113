//go:build linux

// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: worker.go — Per-thread edge-triggered connection event loop
//
// Purpose:
//   - Owns one epoll set, one handoff pipe read end, and a private
//     fd→conn map. Accepts handed-off descriptors, drives the parser,
//     drains writes.
//
// Notes:
//   - Edge-triggered registration throughout: every readiness edge is
//     drained to EAGAIN before returning to the wait.
//   - Connection teardown is always local: any fatal condition removes
//     exactly that connection, never the worker or the process.
//   - The wait timeout is bounded so the stop flag is honored promptly.
// ─────────────────────────────────────────────────────────────────────────────

package server

import (
	"golang.org/x/sys/unix"

	"main/constants"
	"main/control"
	"main/debug"
	"main/fix"
	"main/ring"
	"main/utils"
)

// SessionFunc observes each established session on the worker thread.
// The byte slices are only valid for the duration of the call.
type SessionFunc func(sender, target, seq []byte)

// worker runs one pool slot: a locked event loop plus the state it owns.
type worker struct {
	id        int
	epfd      int
	pipeR     int // handoff read end, owned by the worker
	pipeW     int // handoff write end, used by the acceptor
	bufCap    int
	conns     map[int32]*conn
	onSession SessionFunc
}

func newWorker(id, bufCap int, onSession SessionFunc) (*worker, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		unix.Close(epfd)
		return nil, err
	}
	w := &worker{
		id:        id,
		epfd:      epfd,
		pipeR:     p[0],
		pipeW:     p[1],
		bufCap:    bufCap,
		conns:     make(map[int32]*conn),
		onSession: onSession,
	}
	ev := unix.EpollEvent{Events: unix.EPOLLIN | unix.EPOLLET, Fd: int32(w.pipeR)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, w.pipeR, &ev); err != nil {
		w.closeOwned()
		return nil, err
	}
	return w, nil
}

// run is the worker event loop. Exits when the stop flag is observed,
// closing every remaining owned connection.
func (w *worker) run() {
	defer control.ShutdownWG.Done()

	var events [constants.MaxEpollEvents]unix.EpollEvent
	for !control.Stopped() {
		n, err := unix.EpollWait(w.epfd, events[:], constants.WorkerWaitMs)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			debug.DropError("worker wait", err)
			break
		}
		for i := 0; i < n; i++ {
			ev := &events[i]
			if int(ev.Fd) == w.pipeR {
				w.drainHandoff()
				continue
			}
			c := w.conns[ev.Fd]
			if c == nil {
				continue // closed earlier in this batch
			}
			if ev.Events&(unix.EPOLLHUP|unix.EPOLLERR) != 0 {
				w.closeConn(c)
				continue
			}
			if ev.Events&unix.EPOLLIN != 0 {
				if !w.readable(c) {
					continue // connection gone
				}
			}
			if ev.Events&unix.EPOLLOUT != 0 {
				w.writable(c)
			}
		}
	}

	for _, c := range w.conns {
		w.closeConn(c)
	}
	w.discardHandoff()
	w.closeOwned()
	debug.DropMessage("WORKER", "worker "+utils.Itoa(w.id)+" stopped")
}

// drainHandoff empties the handoff pipe in fixed-size records, creating
// and registering a connection for each received descriptor.
func (w *worker) drainHandoff() {
	var rec [constants.HandoffRecordSize]byte
	for {
		n, err := unix.Read(w.pipeR, rec[:])
		if n == constants.HandoffRecordSize {
			fd := int(decodeHandoff(rec))
			c := newConn(fd, w.bufCap)
			ev := unix.EpollEvent{Events: unix.EPOLLIN | unix.EPOLLET, Fd: int32(fd)}
			if err := unix.EpollCtl(w.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
				debug.DropError("register conn", err)
				unix.Close(fd)
				continue
			}
			w.conns[int32(fd)] = c
			continue
		}
		if n > 0 {
			// Records are pipe-atomic; a fragment means the handoff
			// protocol itself is broken.
			debug.DropMessage("WORKER", "truncated handoff record dropped")
			continue
		}
		if err == unix.EINTR {
			continue
		}
		return // EAGAIN or EOF: pipe drained
	}
}

// discardHandoff closes every descriptor still queued in the handoff
// pipe. The acceptor's wait is longer than a worker's, so a connection
// can be handed off after the worker observed the stop flag; it must be
// closed here rather than left in the abandoned pipe.
func (w *worker) discardHandoff() {
	var rec [constants.HandoffRecordSize]byte
	for {
		n, err := unix.Read(w.pipeR, rec[:])
		if n == constants.HandoffRecordSize {
			unix.Close(int(decodeHandoff(rec)))
			continue
		}
		if err == unix.EINTR {
			continue
		}
		return
	}
}

// readable drains the socket into the inbound ring and the ring through
// the parser, per readiness edge: fill, parse completed messages, repeat
// until the socket reports no more data. Returns false when the
// connection was torn down.
func (w *worker) readable(c *conn) bool {
	if c.pending {
		return true // input deferred until the queued reply is flushed
	}
	// Messages may already be buffered from before a back-pressure stall;
	// the socket alone will not produce another edge for them.
	if !w.drainMessages(c) {
		return false
	}
	if c.pending {
		w.updateWriteInterest(c)
		return true
	}
	for {
		n, err := c.in.WriteFromSocket(c.fd)
		switch {
		case n > 0:
			if !w.drainMessages(c) {
				return false
			}
			if c.pending {
				w.updateWriteInterest(c)
				return true
			}

		case err == ring.ErrFull:
			// No room to read: complete messages (or a realign) must
			// free space, otherwise a single message exceeds capacity.
			if !w.drainMessages(c) {
				return false
			}
			if c.pending {
				w.updateWriteInterest(c)
				return true
			}
			if c.in.AvailableSpace() == 0 {
				debug.DropMessage("CONN", "message exceeds buffer capacity, closing")
				w.closeConn(c)
				return false
			}

		case err == unix.EAGAIN:
			w.updateWriteInterest(c)
			return true

		case n == 0 && err == nil:
			w.closeConn(c) // peer closed
			return false

		default:
			debug.DropError("socket read", err)
			w.closeConn(c)
			return false
		}
	}
}

// drainMessages runs the parser until it stops yielding complete
// messages. A wrapped-view stall is resolved by realigning the ring and
// retrying; malformed input closes the connection. Returns false when
// the connection was torn down.
func (w *worker) drainMessages(c *conn) bool {
	for {
		switch fix.Parse(c.in, c.msg) {
		case fix.Finished:
			if !w.dispatch(c) {
				return false
			}
			if c.pending {
				return true
			}

		case fix.Continue:
			if c.in.Wrapped() {
				// Enough bytes may be buffered but split by the wrap
				// point; make them contiguous and retry.
				c.in.Realign()
				continue
			}
			return true

		case fix.Malformed:
			debug.DropMessage("CONN", "malformed message, closing")
			w.closeConn(c)
			return false
		}
	}
}

// dispatch handles one completed message. Session establishment renders
// the reply into the connection scratch and queues it on the outbound
// ring; insufficient space flips the connection into the pending
// back-pressure state instead of dropping the reply. Returns false when
// the connection was torn down.
func (w *worker) dispatch(c *conn) bool {
	if c.msg.IsLogon() {
		c.scratch = fix.AppendLogonReply(c.scratch[:0], c.msg)
		if w.onSession != nil {
			w.onSession(c.msg.SenderCompID(), c.msg.TargetCompID(), c.msg.SeqNumber())
		}
		if len(c.scratch) > c.out.Capacity() {
			debug.DropMessage("CONN", "reply exceeds buffer capacity, closing")
			w.closeConn(c)
			return false
		}
		if !c.out.WriteAll(c.scratch) {
			c.pending = true // retried from writable once the ring drains
		}
	}
	c.msg.Reset()
	return true
}

// writable drains the outbound ring to the socket until empty or the
// socket signals no more capacity. A drained ring first retries a
// pending reply, then resumes the read path for input buffered while
// the connection was back-pressured.
func (w *worker) writable(c *conn) {
	for c.out.DataSize() > 0 {
		n, err := c.out.ReadToSocket(c.fd)
		if n > 0 {
			continue
		}
		if err == unix.EAGAIN {
			w.updateWriteInterest(c)
			return
		}
		debug.DropError("socket write", err)
		w.closeConn(c)
		return
	}
	if c.pending && c.out.WriteAll(c.scratch) {
		c.pending = false
		if !w.readable(c) {
			return // connection torn down while resuming
		}
	}
	w.updateWriteInterest(c)
}

// updateWriteInterest arms write readiness while outbound bytes (or a
// pending reply) exist and disarms it otherwise. EPOLL_CTL_MOD re-arms
// the edge, so an already-writable socket delivers a fresh event.
func (w *worker) updateWriteInterest(c *conn) {
	ev := unix.EpollEvent{Events: unix.EPOLLIN | unix.EPOLLET, Fd: int32(c.fd)}
	if c.out.DataSize() > 0 || c.pending {
		ev.Events |= unix.EPOLLOUT
	}
	if err := unix.EpollCtl(w.epfd, unix.EPOLL_CTL_MOD, c.fd, &ev); err != nil {
		debug.DropError("epoll mod", err)
	}
}

// closeConn releases one connection: deregisters, closes, forgets.
func (w *worker) closeConn(c *conn) {
	unix.EpollCtl(w.epfd, unix.EPOLL_CTL_DEL, c.fd, nil)
	unix.Close(c.fd)
	delete(w.conns, int32(c.fd))
}

// closeOwned releases the worker's own descriptors.
func (w *worker) closeOwned() {
	unix.Close(w.epfd)
	unix.Close(w.pipeR)
	unix.Close(w.pipeW)
}

// decodeHandoff unpacks a 32-bit little-endian descriptor record.
//
//go:inline
func decodeHandoff(rec [constants.HandoffRecordSize]byte) int32 {
	return int32(rec[0]) | int32(rec[1])<<8 | int32(rec[2])<<16 | int32(rec[3])<<24
}

// encodeHandoff packs fd as a 32-bit little-endian descriptor record.
//
//go:inline
func encodeHandoff(fd int) [constants.HandoffRecordSize]byte {
	return [constants.HandoffRecordSize]byte{
		byte(fd), byte(fd >> 8), byte(fd >> 16), byte(fd >> 24),
	}
}
