// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: message.go — In-progress message record with owned field storage
//
// Purpose:
//   - Holds the structured fields of one partially or fully parsed message.
//   - One instance per connection, reset and reused between messages.
//
// Notes:
//   - Field bytes are copied into a per-message arena the moment a field is
//     recognized, so nothing aliases ring-buffer memory across a
//     need-more-data boundary. The ring is free to overwrite or realign
//     consumed bytes at any time.
//   - Fields are recorded as (offset,length) spans into the arena, which
//     keeps them valid across arena growth.
// ─────────────────────────────────────────────────────────────────────────────

package fix

import "main/constants"

// span locates one field value inside the message arena.
type span struct {
	off int
	n   int
}

// Field is one unrecognized tag=value pair, preserved in insertion order.
type Field struct {
	Tag int
	val span
}

// Message is the mutable in-progress parse state of one connection.
// Reset after each completed or permanently failed parse; never shared
// across connections.
type Message struct {
	beginString  span // tag 8
	bodyLength   span // tag 9
	checkSum     span // tag 10
	clOrdID      span // tag 11
	seqNumber    span // tag 34
	msgType      span // tag 35
	senderCompID span // tag 49
	targetCompID span // tag 56

	other []Field // all unrecognized tags, insertion order

	finished bool   // set when the checksum field has been scanned
	sum      uint32 // running byte sum, checksum field excluded

	store []byte // arena holding every retained field value
}

// NewMessage returns an empty message with its arena pre-sized for
// session-layer traffic.
func NewMessage() *Message {
	return &Message{
		other: make([]Field, 0, constants.SideFieldHint),
		store: make([]byte, 0, constants.MessageArenaCap),
	}
}

// retain copies v into the arena and returns its span.
//
//go:inline
func (m *Message) retain(v []byte) span {
	off := len(m.store)
	m.store = append(m.store, v...)
	return span{off: off, n: len(v)}
}

//go:inline
func (m *Message) get(s span) []byte { return m.store[s.off : s.off+s.n] }

// route stores one recognized or side field. Called exactly once per
// scanned field; the checksum tag is handled by the parser itself.
func (m *Message) route(tag int, value []byte) {
	s := m.retain(value)
	switch tag {
	case constants.TagBeginString:
		m.beginString = s
	case constants.TagBodyLength:
		m.bodyLength = s
	case constants.TagClOrdID:
		m.clOrdID = s
	case constants.TagSeqNumber:
		m.seqNumber = s
	case constants.TagMsgType:
		m.msgType = s
	case constants.TagSenderCompID:
		m.senderCompID = s
	case constants.TagTargetCompID:
		m.targetCompID = s
	default:
		m.other = append(m.other, Field{Tag: tag, val: s})
	}
}

// Reset clears the message for reuse on the same connection. The arena
// and side-field backing arrays are kept.
func (m *Message) Reset() {
	*m = Message{other: m.other[:0], store: m.store[:0]}
}

// Finished reports whether the terminal checksum field has been scanned.
func (m *Message) Finished() bool { return m.finished }

// IsLogon reports whether the message type is session establishment.
func (m *Message) IsLogon() bool {
	t := m.get(m.msgType)
	return len(t) == len(constants.MsgTypeLogon) && string(t) == constants.MsgTypeLogon
}

// Field accessors. Returned slices point into the message arena and stay
// valid until the next Reset; an absent field yields an empty slice.

func (m *Message) BeginString() []byte  { return m.get(m.beginString) }
func (m *Message) BodyLength() []byte   { return m.get(m.bodyLength) }
func (m *Message) CheckSum() []byte     { return m.get(m.checkSum) }
func (m *Message) ClOrdID() []byte      { return m.get(m.clOrdID) }
func (m *Message) SeqNumber() []byte    { return m.get(m.seqNumber) }
func (m *Message) MsgType() []byte      { return m.get(m.msgType) }
func (m *Message) SenderCompID() []byte { return m.get(m.senderCompID) }
func (m *Message) TargetCompID() []byte { return m.get(m.targetCompID) }

// SideFields returns the unrecognized fields in insertion order; resolve
// each value through SideFieldValue.
func (m *Message) SideFields() []Field { return m.other }

// SideFieldValue returns the value bytes of f within m.
func (m *Message) SideFieldValue(f Field) []byte { return m.get(f.val) }
