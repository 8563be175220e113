package fix

import (
	"main/constants"
	"main/utils"
)

// EncodeField appends one tag=value field, delimiter included.
func EncodeField(dst []byte, tag int, value []byte) []byte {
	dst = utils.AppendUint(dst, uint64(tag))
	dst = append(dst, constants.TagSep)
	dst = append(dst, value...)
	dst = append(dst, constants.SOH)
	return dst
}

// EncodeTrailer appends the terminal checksum field computed over every
// byte already in dst. dst must therefore hold exactly one message.
func EncodeTrailer(dst []byte) []byte {
	var sum uint32
	for _, c := range dst {
		sum += uint32(c)
	}
	dst = utils.AppendUint(dst, constants.TagCheckSum)
	dst = append(dst, constants.TagSep)
	dst = utils.AppendChecksum(dst, sum%256)
	dst = append(dst, constants.SOH)
	return dst
}

// AppendLogonReply renders the session-establishment reply for m into dst:
// the received field set with sender and target swapped, in the fixed
// order version, body length, message type, sequence number, sender,
// target, side fields in original order, then a recomputed checksum.
func AppendLogonReply(dst []byte, m *Message) []byte {
	start := len(dst)
	dst = EncodeField(dst, constants.TagBeginString, m.BeginString())
	dst = EncodeField(dst, constants.TagBodyLength, m.BodyLength())
	dst = EncodeField(dst, constants.TagMsgType, m.MsgType())
	dst = EncodeField(dst, constants.TagSeqNumber, m.SeqNumber())
	dst = EncodeField(dst, constants.TagSenderCompID, m.TargetCompID()) // swapped
	dst = EncodeField(dst, constants.TagTargetCompID, m.SenderCompID()) // swapped
	for _, f := range m.other {
		dst = EncodeField(dst, f.Tag, m.get(f.val))
	}
	var sum uint32
	for _, c := range dst[start:] {
		sum += uint32(c)
	}
	dst = utils.AppendUint(dst, constants.TagCheckSum)
	dst = append(dst, constants.TagSep)
	dst = utils.AppendChecksum(dst, sum%256)
	dst = append(dst, constants.SOH)
	return dst
}
