// Package slip implements SLIP (RFC 1055) framing for message-oriented
// communication over a byte-stream transport such as TCP.
//
// TCP is reliable but has no message boundaries. SLIP byte-stuffing adds
// them: each message is terminated by an END byte, and END or ESC bytes
// inside the payload are replaced by two-byte escape sequences so they are
// never mistaken for a delimiter. Because the framing runs on top of TCP
// rather than a raw serial line, none of the RFC 1055 restrictions on
// packet size or error detection apply here.
//
// The package provides the codec itself (Encode, Decode, Decoder), packet
// oriented Reader/Writer wrappers for arbitrary streams, and a TCP
// connection layer (Conn, Server, Dial) that speaks SLIP by default.
package slip

import "errors"

// SLIP protocol constants (RFC 1055). END delimits frames; END or ESC
// bytes inside a message are transmitted as ESC+EscEnd and ESC+EscEsc.
const (
	End    = 0xC0
	Esc    = 0xDB
	EscEnd = 0xDC
	EscEsc = 0xDD
)

// Errors returned by the codec.
var (
	// ErrMessageTooLarge is returned by Decoder.Feed when an unterminated
	// message grows past the configured maximum. The stream position inside
	// the oversized frame is unknown, so the connection should be closed.
	ErrMessageTooLarge = errors.New("message too large")
	// ErrIncompleteMessage is returned when the stream ends in the middle
	// of a frame or between an ESC byte and its follower.
	ErrIncompleteMessage = errors.New("incomplete message at end of stream")
)

// Encode converts a message into its framed wire form: END and ESC bytes
// in p are escaped and a single END terminator is appended. An empty
// message encodes to a lone END byte. Encode never fails and is safe for
// concurrent use.
func Encode(p []byte) []byte {
	// Worst case doubles every byte, common case adds only the terminator.
	out := make([]byte, 0, len(p)+1)
	for _, b := range p {
		switch b {
		case End:
			out = append(out, Esc, EscEnd)
		case Esc:
			out = append(out, Esc, EscEsc)
		default:
			out = append(out, b)
		}
	}
	return append(out, End)
}

// Decode is a one-shot convenience around Decoder for callers that already
// hold a complete frame. It returns the payload of the first frame in p.
// If no END terminates the data it returns ErrIncompleteMessage; a frame
// with no payload bytes yields (nil, nil).
func Decode(p []byte) ([]byte, error) {
	var d Decoder
	msgs, err := d.Feed(p)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, d.Close()
	}
	return msgs[0], nil
}
