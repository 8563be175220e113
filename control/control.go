// control.go — Global shutdown coordination for the gateway threads
// ============================================================================
// SYSTEM CONTROL ORCHESTRATION
// ============================================================================
//
// Control package provides the one piece of cross-thread shared state the
// gateway allows itself outside the acceptor's round-robin counter: a
// process-wide stop flag plus the WaitGroup that tracks every event loop.
//
// Threading model:
//   • The lifecycle owner (signal handler or test) calls Shutdown() once.
//   • The acceptor and every worker poll Stopped() each loop iteration.
//   • Readiness waits are bounded, so the flag is honored within one
//     timeout period even on completely idle descriptor sets.
//   • ShutdownWG is Add()ed before each loop goroutine starts and Done()d
//     as its last action, so Wait() returns only after every owned
//     descriptor has been closed.

package control

import (
	"sync"
	"sync/atomic"
)

var (
	// stop flips 0→1 exactly once per process lifetime.
	stop uint32

	// ShutdownWG counts live event loops (acceptor + workers).
	ShutdownWG sync.WaitGroup
)

// Shutdown initiates graceful termination. Safe to call from any goroutine
// and idempotent; loops observe it within one bounded readiness wait.
//
//go:inline
func Shutdown() {
	atomic.StoreUint32(&stop, 1)
}

// Stopped reports whether shutdown has been requested. Polled at the top
// of every event-loop iteration.
//
//go:inline
func Stopped() bool {
	return atomic.LoadUint32(&stop) == 1
}
