//go:build linux

// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: server.go — Listening socket, acceptor loop, round-robin handoff
//
// Purpose:
//   - Owns the non-blocking listening socket and its own epoll set.
//   - Distributes accepted descriptors across the worker pool through
//     fixed-size pipe records, round robin.
//
// Notes:
//   - Setup failures (socket, bind, epoll) are startup-time errors surfaced
//     to the caller; nothing on the accept path terminates the process.
//   - The accept wait is bounded so the stop flag is observed within one
//     timeout period.
// ─────────────────────────────────────────────────────────────────────────────

package server

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"main/config"
	"main/constants"
	"main/control"
	"main/debug"
	"main/utils"
)

// Server is the acceptor plus its worker pool.
type Server struct {
	listenFd int
	epfd     int
	port     int
	rr       uint32 // round-robin counter, incremented only by the acceptor
	workers  []*worker
}

// New binds the listening socket, creates the worker pool (pool size =
// available hardware parallelism when the config leaves it unset, minimum
// 1), and starts every worker loop. onSession may be nil.
func New(cfg config.Config, onSession SessionFunc) (*Server, error) {
	pool := cfg.Workers
	if pool <= 0 {
		pool = runtime.NumCPU()
	}
	if pool < 1 {
		pool = 1
	}
	if cfg.BufferCapacity <= 0 {
		cfg.BufferCapacity = constants.BufferCapacity
	}

	listenFd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	unix.SetsockoptInt(listenFd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	if err := unix.Bind(listenFd, &unix.SockaddrInet4{Port: cfg.Port}); err != nil {
		unix.Close(listenFd)
		return nil, err
	}
	if err := unix.Listen(listenFd, unix.SOMAXCONN); err != nil {
		unix.Close(listenFd)
		return nil, err
	}

	// Resolve the bound port: a zero config port asks the kernel to pick,
	// which the tests rely on.
	port := cfg.Port
	if sa, err := unix.Getsockname(listenFd); err == nil {
		if in4, ok := sa.(*unix.SockaddrInet4); ok {
			port = in4.Port
		}
	}

	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		unix.Close(listenFd)
		return nil, err
	}
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(listenFd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, listenFd, &ev); err != nil {
		unix.Close(epfd)
		unix.Close(listenFd)
		return nil, err
	}

	s := &Server{listenFd: listenFd, epfd: epfd, port: port}
	for i := 0; i < pool; i++ {
		w, err := newWorker(i, cfg.BufferCapacity, onSession)
		if err != nil {
			for _, prev := range s.workers {
				prev.closeOwned()
			}
			unix.Close(epfd)
			unix.Close(listenFd)
			return nil, err
		}
		s.workers = append(s.workers, w)
	}
	for _, w := range s.workers {
		control.ShutdownWG.Add(1)
		go w.run()
	}
	debug.DropMessage("SERVER", "pool of "+utils.Itoa(pool)+" workers on port "+utils.Itoa(port))
	return s, nil
}

// Port returns the bound listening port.
func (s *Server) Port() int { return s.port }

// Workers returns the pool size.
func (s *Server) Workers() int { return len(s.workers) }

// Serve runs the acceptor loop in the calling goroutine until shutdown is
// observed, then releases the acceptor-owned descriptors. Worker loops
// drain independently; wait on control.ShutdownWG for full teardown.
func (s *Server) Serve() {
	control.ShutdownWG.Add(1)
	defer control.ShutdownWG.Done()

	var events [1]unix.EpollEvent
	for !control.Stopped() {
		n, err := unix.EpollWait(s.epfd, events[:], constants.AcceptWaitMs)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			debug.DropError("accept wait", err)
			break
		}
		if n == 0 {
			continue // timeout: re-check the stop flag
		}
		s.acceptReady()
	}

	unix.Close(s.epfd)
	unix.Close(s.listenFd)
	debug.DropMessage("SERVER", "acceptor stopped")
}

// acceptReady accepts every currently pending connection, marks each
// non-blocking, and hands it to the next worker.
func (s *Server) acceptReady() {
	for {
		fd, _, err := unix.Accept4(s.listenFd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				return
			}
			debug.DropError("accept", err)
			return
		}
		s.handoff(fd)
	}
}

// handoff transfers ownership of fd to a worker via one fixed-size pipe
// record. A short or failed write leaves no ambiguous state: the
// descriptor is closed rather than leaked.
func (s *Server) handoff(fd int) {
	w := s.workers[s.nextWorkerIndex()]
	rec := encodeHandoff(fd)
	n, err := unix.Write(w.pipeW, rec[:])
	if n != constants.HandoffRecordSize {
		debug.DropError("handoff", err)
		unix.Close(fd)
	}
}

// nextWorkerIndex advances the round-robin counter: exactly K/pool
// connections per worker for every K accepted.
//
//go:inline
func (s *Server) nextWorkerIndex() int {
	return int((atomic.AddUint32(&s.rr, 1) - 1) % uint32(len(s.workers)))
}
