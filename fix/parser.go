// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: parser.go — Incremental tag=value state machine
//
// Purpose:
//   - Reconstructs structured messages from arbitrarily fragmented reads,
//     one field at a time, directly off the ring buffer's read view.
//   - Owns the running mod-256 checksum accumulation.
//
// Notes:
//   - Consumption is committed per complete field, never speculatively:
//     a need-more-data return leaves the buffer positioned exactly at the
//     start of the unfinished field, so the caller can read more bytes and
//     retry from the same position.
//   - Operates on the contiguous view only. A message straddling the
//     physical wrap point stalls with Continue; the worker resolves that
//     by realigning the buffer and retrying.
//
// ⚠️ Hot path — byte scanning only, no allocation beyond arena retention.
// ─────────────────────────────────────────────────────────────────────────────

package fix

import (
	"main/constants"
	"main/ring"
	"main/utils"
)

// Status is the per-invocation parser result.
type Status uint8

const (
	// Continue: more bytes are needed before another field completes.
	Continue Status = iota
	// Finished: exactly one full message was validated; the caller
	// dispatches it and resets the Message before parsing further.
	Finished
	// Malformed: non-digit tag byte, unparsable checksum text, or a
	// checksum mismatch. The message cannot be recovered.
	Malformed
)

// Parse advances the state machine over the buffer's current read view,
// consuming complete fields until the view is exhausted, the message
// finishes, or the input proves malformed. Safe to call repeatedly as
// bytes trickle in; partial-field progress is never committed.
func Parse(b *ring.Buffer, m *Message) Status {
	for {
		view := b.ReadView()
		if len(view) == 0 {
			return Continue
		}

		// Tag: one or more decimal digits up to the separator.
		tag := 0
		i := 0
		for ; i < len(view); i++ {
			c := view[i]
			if c == constants.TagSep {
				break
			}
			if c < '0' || c > '9' {
				return Malformed
			}
			tag = tag*10 + int(c-'0')
			if tag > constants.MaxTag {
				return Malformed
			}
		}
		if i == len(view) {
			return Continue // separator not yet buffered
		}
		if i == 0 {
			return Malformed // empty tag
		}

		// Value: everything up to the field delimiter.
		j := i + 1
		for ; j < len(view); j++ {
			if view[j] == constants.SOH {
				break
			}
		}
		if j == len(view) {
			return Continue // delimiter not yet buffered
		}
		value := view[i+1 : j]
		fieldLen := j + 1

		if tag == constants.TagCheckSum {
			// The checksum field participates in nothing: its own bytes
			// are excluded from the sum it validates.
			m.checkSum = m.retain(value)
			m.finished = true
		} else {
			for _, c := range view[:fieldLen] {
				m.sum += uint32(c)
			}
			m.route(tag, value)
		}
		b.Consume(fieldLen)

		if m.finished {
			want, ok := utils.ParseDecimal(m.CheckSum())
			if !ok {
				return Malformed
			}
			if want != uint64(m.sum%256) {
				return Malformed
			}
			return Finished
		}
	}
}
