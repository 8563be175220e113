// client.go
//
// Minimal single-connection client for manual testing and the integration
// suite. Deliberately simple: blocking dial with deadlines, whole-message
// reads by scanning for the terminal checksum field. None of the server's
// buffering or readiness machinery lives here.

package client

import (
	"bytes"
	"net"
	"time"

	"main/constants"
	"main/fix"
	"main/utils"
)

// Client wraps one TCP connection to the gateway.
type Client struct {
	conn net.Conn
	buf  []byte // unread bytes carried across ReadMessage calls
}

// Dial connects to addr within timeout.
func Dial(addr string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

// Close tears the connection down.
func (c *Client) Close() error { return c.conn.Close() }

// Send writes p in full within timeout.
func (c *Client) Send(p []byte, timeout time.Duration) error {
	c.conn.SetWriteDeadline(time.Now().Add(timeout))
	_, err := c.conn.Write(p)
	return err
}

// ReadMessage reads until one complete message (terminated by the
// checksum field) is buffered and returns its bytes. Trailing bytes of a
// following message are retained for the next call.
func (c *Client) ReadMessage(timeout time.Duration) ([]byte, error) {
	c.conn.SetReadDeadline(time.Now().Add(timeout))
	var chunk [4096]byte
	for {
		if end := messageEnd(c.buf); end > 0 {
			msg := append([]byte(nil), c.buf[:end]...)
			c.buf = c.buf[end:]
			return msg, nil
		}
		n, err := c.conn.Read(chunk[:])
		if n > 0 {
			c.buf = append(c.buf, chunk[:n]...)
			continue
		}
		if err != nil {
			return nil, err
		}
	}
}

// EncodeLogon builds a complete session-establishment message.
func EncodeLogon(sender, target string, seq int) []byte {
	body := fix.EncodeField(nil, constants.TagMsgType, []byte(constants.MsgTypeLogon))
	body = fix.EncodeField(body, constants.TagSeqNumber, utils.AppendUint(nil, uint64(seq)))
	body = fix.EncodeField(body, constants.TagSenderCompID, []byte(sender))
	body = fix.EncodeField(body, constants.TagTargetCompID, []byte(target))

	msg := fix.EncodeField(nil, constants.TagBeginString, []byte("FIX.4.2"))
	msg = fix.EncodeField(msg, constants.TagBodyLength, utils.AppendUint(nil, uint64(len(body))))
	msg = append(msg, body...)
	return fix.EncodeTrailer(msg)
}

// messageEnd returns the index just past the first complete message in b,
// or 0 if none is buffered yet. A message is complete at the delimiter
// ending a checksum field.
func messageEnd(b []byte) int {
	marker := []byte{constants.SOH, '1', '0', constants.TagSep}
	i := 0
	if bytes.HasPrefix(b, marker[1:]) {
		i = 0 // message starts with the checksum field (degenerate but terminal)
	} else {
		i = bytes.Index(b, marker)
		if i < 0 {
			return 0
		}
		i++ // step past the SOH that precedes "10="
	}
	end := bytes.IndexByte(b[i:], constants.SOH)
	if end < 0 {
		return 0
	}
	return i + end + 1
}
