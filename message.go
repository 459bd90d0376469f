package slip

import "io"

// Message is the interface for messages transmitted over the connection.
// SLIP treats the body as opaque; implementations only provide the length
// and the raw bytes.
type Message interface {
	// Length returns the length of the message body.
	Length() int
	// Body returns the raw message data.
	Body() []byte
}

// Codec is the interface for message encoding and decoding.
//
// The Decode method reads from an io.Reader, which allows the codec to
// handle TCP stream reassembly by buffering as many bytes as it needs for
// a complete message. NewCodec returns the SLIP implementation;
// applications with their own framing may substitute one via
// CustomCodecOption.
type Codec interface {
	// Decode reads and decodes the next complete message from the reader.
	Decode(r io.Reader) (Message, error)
	// Encode encodes a Message into raw bytes for transmission.
	Encode(Message) ([]byte, error)
}

// Packet is a plain Message carrying an opaque byte payload.
type Packet struct {
	body []byte
}

// NewPacket wraps body in a Packet. The slice is not copied.
func NewPacket(body []byte) Packet {
	return Packet{body: body}
}

// Length returns the length of the packet body.
func (p Packet) Length() int {
	return len(p.body)
}

// Body returns the raw packet data.
func (p Packet) Body() []byte {
	return p.body
}
