// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: constants.go — Gateway-wide tunables & wire-protocol tags
//
// Purpose:
//   - Defines the tag numbers and framing bytes of the session protocol.
//   - Defines buffer sizing, epoll batching, and wait-timeout tunables.
//
// Notes:
//   - Buffer and event-batch sizes mirror the per-connection sizing the
//     worker loop was measured against (1 MiB rings, 1024-event batches).
//   - Wait timeouts bound every readiness call so the shutdown flag is
//     observed within one timeout period.
//
// ⚠️ No runtime logic here — all values must be compile-time resolvable
// ─────────────────────────────────────────────────────────────────────────────

package constants

// ───────────────────────────── Wire Protocol ───────────────────────────────

const (
	// SOH is the field delimiter byte terminating every tag=value pair.
	SOH byte = 0x01

	// TagSep separates the tag digits from the value bytes within a field.
	TagSep byte = '='

	// Recognized tag numbers. Every other tag is preserved verbatim in the
	// side-field list and echoed back in original order.
	TagBeginString  = 8  // protocol version string, e.g. "FIX.4.2"
	TagBodyLength   = 9  // body length, decimal text
	TagCheckSum     = 10 // 3-digit decimal checksum, terminal field
	TagClOrdID      = 11 // client order id
	TagSeqNumber    = 34 // message sequence number
	TagMsgType      = 35 // message type, "A" = session establishment
	TagSenderCompID = 49 // sender id
	TagTargetCompID = 56 // target id

	// MaxTag bounds the digits-to-integer accumulation during tag scanning.
	// Anything larger is malformed input, not a real tag.
	MaxTag = 1 << 20

	// MsgTypeLogon is the session-establishment message type value.
	MsgTypeLogon = "A"
)

// ─────────────────────────── Connection Sizing ──────────────────────────────

const (
	// BufferCapacity is the per-direction ring capacity of one connection:
	// 1 MiB holds thousands of session-layer messages and keeps realign
	// (the wrapped-view fallback) a rare event.
	BufferCapacity = 1 << 20

	// MessageArenaCap seeds the per-message owned-field arena. Session
	// messages are small; 1 KiB avoids growth for every realistic logon.
	MessageArenaCap = 1024

	// SideFieldHint seeds the unrecognized-field list of one message.
	SideFieldHint = 16

	// ReplyScratchCap seeds the per-connection reply render buffer.
	ReplyScratchCap = 4096
)

// ───────────────────────────── Event Loops ─────────────────────────────────

const (
	// MaxEpollEvents is the per-wait event batch size of a worker.
	MaxEpollEvents = 1024

	// WorkerWaitMs bounds a worker's epoll wait so the stop flag is seen
	// promptly even on an idle descriptor set.
	WorkerWaitMs = 250

	// AcceptWaitMs bounds the acceptor's epoll wait for the same reason.
	AcceptWaitMs = 1000

	// HandoffRecordSize is the fixed size of one acceptor→worker handoff
	// record: a single descriptor as a 32-bit little-endian value. Records
	// this small are written atomically by the pipe, so a short transfer on
	// either end indicates a broken handoff, never a torn write.
	HandoffRecordSize = 4
)

// ──────────────────────────────── Process ──────────────────────────────────

const (
	// DefaultPort is used when the CLI port argument is absent or invalid.
	DefaultPort = 8080
)
