package slip

import (
	"io"

	"github.com/pkg/errors"
)

// Writer wraps an io.Writer and writes SLIP-framed packets to it.
// It carries no state between packets and is safe for concurrent use as
// long as the underlying writer is.
type Writer struct {
	w io.Writer
}

// NewWriter creates a Writer framing packets onto w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WritePacket frames p and writes it to the underlying writer in a single
// Write call.
func (w *Writer) WritePacket(p []byte) error {
	_, err := w.w.Write(Encode(p))
	return errors.Wrap(err, "write packet")
}

// WriteAll writes one frame per packet, stopping at the first failure.
func (w *Writer) WriteAll(pkts [][]byte) error {
	for _, p := range pkts {
		if err := w.WritePacket(p); err != nil {
			return err
		}
	}
	return nil
}
