//go:build linux

// ════════════════════════════════════════════════════════════════════════════════════════════════
// Session Gateway - Main Entry Point
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Multi-Threaded FIX-Style Session Gateway
// Component: Main Entry Point & System Orchestration
//
// Description:
//   Process orchestration with phased startup and clean separation of concerns.
//   Configuration → Journal → Acceptor/Worker Pool → Signal-Driven Shutdown
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"main/config"
	"main/control"
	"main/debug"
	"main/journal"
	"main/server"
	"main/utils"
)

const configPath = "gateway.json"

func main() {
	// PHASE 0: Configuration. The JSON file is optional; a CLI port
	// argument overrides it, invalid input falls back to the default.
	cfg := config.Load(configPath)
	if len(os.Args) > 1 {
		cfg.Port = config.ParsePort(os.Args[1])
	}

	// PHASE 1: Session journal (optional, fully off the hot path).
	var j *journal.Journal
	var onSession server.SessionFunc
	if cfg.JournalPath != "" {
		var err error
		j, err = journal.Open(cfg.JournalPath)
		if err != nil {
			debug.DropError("journal open", err)
			os.Exit(1)
		}
		onSession = func(sender, target, seq []byte) {
			// Copies happen here, once per established session.
			j.Record(journal.Session{
				Sender: string(sender),
				Target: string(target),
				Seq:    string(seq),
				At:     time.Now(),
			})
		}
	}

	// PHASE 2: Acceptor and worker pool.
	srv, err := server.New(cfg, onSession)
	if err != nil {
		debug.DropError("startup", err)
		os.Exit(1)
	}
	debug.DropMessage("READY", "listening on port "+utils.Itoa(srv.Port()))

	setupSignalHandling()

	// PHASE 3: Serve until shutdown, then wait for every event loop to
	// release its descriptors.
	srv.Serve()
	control.ShutdownWG.Wait()

	if j != nil {
		if err := j.Close(); err != nil {
			debug.DropError("journal close", err)
		}
	}
	debug.DropMessage("SHUTDOWN", "all loops stopped")
}

// setupSignalHandling wires SIGINT/SIGTERM to the global stop flag. Every
// loop observes the flag within one bounded readiness wait.
func setupSignalHandling() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		debug.DropMessage("SIGNAL", "interrupt received, shutting down")
		control.Shutdown()
	}()
}
