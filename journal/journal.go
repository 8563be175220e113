// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: journal.go — Asynchronous SQLite session journal
//
// Purpose:
//   - Records each established session (sender, target, sequence, time)
//     into SQLite without touching the worker hot path.
//
// Notes:
//   - Workers enqueue through a buffered channel; a single background
//     goroutine owns the database handle and performs every insert.
//   - A full queue drops the record with a warning rather than blocking
//     an event loop; the journal is an audit aid, not a delivery log.
//   - Message payloads are never persisted, only the session event.
// ─────────────────────────────────────────────────────────────────────────────

package journal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"main/debug"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	established INTEGER NOT NULL,
	sender      TEXT    NOT NULL,
	target      TEXT    NOT NULL,
	seq         TEXT    NOT NULL
)`

const queueDepth = 256

// Session is one session-establishment event.
type Session struct {
	Sender string
	Target string
	Seq    string
	At     time.Time
}

// Journal persists session events off the hot path.
type Journal struct {
	db    *sql.DB
	queue chan Session
	done  chan struct{}
}

// Open creates (or opens) the journal database at path, bootstraps the
// schema, and starts the writer goroutine.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	j := &Journal{
		db:    db,
		queue: make(chan Session, queueDepth),
		done:  make(chan struct{}),
	}
	go j.writer()
	return j, nil
}

// Record enqueues one session event. Never blocks: a full queue drops the
// event with a warning.
func (j *Journal) Record(s Session) {
	select {
	case j.queue <- s:
	default:
		debug.DropMessage("JOURNAL", "queue full, session record dropped")
	}
}

// Sessions returns the number of journaled sessions.
func (j *Journal) Sessions() (int, error) {
	var n int
	err := j.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&n)
	return n, err
}

// Close drains the queue, stops the writer, and closes the database.
func (j *Journal) Close() error {
	close(j.queue)
	<-j.done
	return j.db.Close()
}

// writer is the single goroutine owning inserts.
func (j *Journal) writer() {
	defer close(j.done)
	for s := range j.queue {
		_, err := j.db.Exec(
			`INSERT INTO sessions (established, sender, target, seq) VALUES (?, ?, ?, ?)`,
			s.At.UnixNano(), s.Sender, s.Target, s.Seq,
		)
		if err != nil {
			debug.DropError("journal insert", err)
		}
	}
}
