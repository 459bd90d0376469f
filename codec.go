package slip

import "io"

// readChunkSize is how much raw data a codec pulls from the transport per
// read when it has no complete message pending.
const readChunkSize = 4096

// codec implements Codec using SLIP framing. It is stateful: raw bytes
// read from the transport are fed through a Decoder, and messages that
// arrive packed together in one read are queued and handed out one per
// Decode call.
type codec struct {
	dec     *Decoder
	pending [][]byte
	scratch []byte
	failed  error
}

// NewCodec creates a SLIP Codec. The options configure the underlying
// Decoder, e.g. MaxMessageSizeOption.
//
// The returned codec buffers stream state between Decode calls, so one
// instance must be created per connection and must always be given the
// same reader. Encode is stateless; Decode is not safe for concurrent use.
func NewCodec(opts ...DecoderOption) Codec {
	return &codec{
		dec:     NewDecoder(opts...),
		scratch: make([]byte, readChunkSize),
	}
}

// Decode returns the next complete message, reading from r only when no
// previously decoded message is pending. At end of stream it returns
// io.EOF if the stream stopped on a frame boundary, or
// ErrIncompleteMessage if a frame was cut short.
func (c *codec) Decode(r io.Reader) (Message, error) {
	for {
		if len(c.pending) > 0 {
			msg := c.pending[0]
			c.pending = c.pending[1:]
			return NewPacket(msg), nil
		}
		if c.failed != nil {
			return nil, c.failed
		}

		n, err := r.Read(c.scratch)
		if n > 0 {
			msgs, ferr := c.dec.Feed(c.scratch[:n])
			c.pending = append(c.pending, msgs...)
			if ferr != nil {
				// Deliver messages completed before the failure first.
				c.failed = ferr
				continue
			}
		}
		if err != nil {
			if err == io.EOF {
				// A clean EOF on a frame boundary stays io.EOF; EOF inside
				// a frame or escape sequence means truncation. Either way
				// the stream is finished.
				if cerr := c.dec.Close(); cerr != nil {
					err = cerr
				}
				c.failed = err
			}
			// Transient read errors (deadline timeouts) are not recorded;
			// the caller may retry. Messages the final read completed are
			// handed out before the error surfaces.
			if len(c.pending) == 0 {
				return nil, err
			}
		}
	}
}

// Encode frames the message body for the wire.
func (c *codec) Encode(m Message) ([]byte, error) {
	return Encode(m.Body()), nil
}
