package slip

import (
	"io"

	"github.com/pkg/errors"
)

// Reader wraps an io.Reader and turns its byte stream into SLIP-decoded
// packets. It owns the stream state, so a Reader must not share its
// underlying reader with other consumers.
type Reader struct {
	r io.Reader
	c Codec
}

// NewReader creates a Reader decoding SLIP packets from r. The options
// configure the underlying Decoder.
func NewReader(r io.Reader, opts ...DecoderOption) *Reader {
	return &Reader{r: r, c: NewCodec(opts...)}
}

// ReadPacket returns the next decoded packet. It returns io.EOF when the
// stream ends on a frame boundary, and ErrIncompleteMessage when the
// stream ends mid-frame.
func (r *Reader) ReadPacket() ([]byte, error) {
	msg, err := r.c.Decode(r.r)
	if err != nil {
		if err == io.EOF {
			return nil, err
		}
		return nil, errors.Wrap(err, "read packet")
	}
	return msg.Body(), nil
}

// ReadAll drains the stream and returns every remaining packet. A clean
// end of stream is not an error; truncation and read failures are.
func (r *Reader) ReadAll() ([][]byte, error) {
	var pkts [][]byte
	for {
		pkt, err := r.ReadPacket()
		if err != nil {
			if err == io.EOF {
				return pkts, nil
			}
			return pkts, err
		}
		pkts = append(pkts, pkt)
	}
}
