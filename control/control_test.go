package control

import (
	"sync"
	"testing"
)

// TestShutdownVisibility checks the flag transition is observed by a
// polling goroutine and that Shutdown is idempotent.
func TestShutdownVisibility(t *testing.T) {
	if Stopped() {
		t.Fatal("Stopped before Shutdown")
	}

	var wg sync.WaitGroup
	wg.Add(4)
	for i := 0; i < 4; i++ {
		go func() {
			defer wg.Done()
			for !Stopped() {
			}
		}()
	}

	Shutdown()
	Shutdown() // idempotent
	wg.Wait()

	if !Stopped() {
		t.Fatal("Stopped = false after Shutdown")
	}
}
