//go:build linux

package server

import (
	"main/constants"
	"main/fix"
	"main/ring"
)

// conn aggregates the per-connection state: one inbound ring, one
// outbound ring, and one in-progress message. A conn is owned exclusively
// by the worker holding its descriptor; no other thread ever touches it.
type conn struct {
	fd  int
	in  *ring.Buffer
	out *ring.Buffer
	msg *fix.Message

	// scratch holds the rendered reply while it is queued (or waiting to
	// be queued) into the outbound ring.
	scratch []byte

	// pending marks a rendered reply that did not fit into the outbound
	// ring. The connection stops consuming input until the write path
	// drains enough space; data is never dropped.
	pending bool
}

func newConn(fd, capacity int) *conn {
	return &conn{
		fd:      fd,
		in:      ring.New(capacity),
		out:     ring.New(capacity),
		msg:     fix.NewMessage(),
		scratch: make([]byte, 0, constants.ReplyScratchCap),
	}
}
