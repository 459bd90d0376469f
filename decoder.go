package slip

// Decoder reassembles SLIP frames from a byte stream that arrives in
// arbitrary chunks. It keeps the unterminated tail of the stream and the
// escape state between Feed calls, so a chunk boundary may fall anywhere,
// including between an ESC byte and its follower.
//
// Decoding is lenient: empty frames (back-to-back END bytes, or a leading
// END used by some peers to flush line noise) are dropped unless
// EmitEmptyOption is set, and an ESC followed by anything other than
// EscEnd or EscEsc yields that byte literally. The only hard failure is
// the size guard.
//
// The zero value is a Decoder with no size limit. A Decoder is not safe
// for concurrent use; one goroutine per stream must own it.
type Decoder struct {
	acc       []byte
	escaped   bool
	err       error
	maxSize   int
	emitEmpty bool
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// MaxMessageSizeOption returns a DecoderOption that bounds the size of a
// single decoded message. A peer that never sends END would otherwise grow
// the internal buffer without limit; when the bound is exceeded, Feed
// returns ErrMessageTooLarge and the decoder refuses further input until
// Reset. A size of zero or less means no limit.
func MaxMessageSizeOption(size int) DecoderOption {
	return func(d *Decoder) {
		d.maxSize = size
	}
}

// EmitEmptyOption returns a DecoderOption that makes the decoder surface
// empty frames as zero-length messages instead of dropping them. Use this
// with peers whose protocol assigns meaning to empty messages; note that
// it also turns a leading END resync byte into an empty message.
func EmitEmptyOption() DecoderOption {
	return func(d *Decoder) {
		d.emitEmpty = true
	}
}

// NewDecoder creates a Decoder with the given options.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := new(Decoder)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Feed appends chunk to the decoder's state and returns every message
// completed by it, in wire arrival order. The slice is empty when chunk
// ends mid-frame; the partial frame stays buffered for the next call.
//
// If the size guard trips, Feed returns the messages completed before the
// violation together with ErrMessageTooLarge, and every later call returns
// the same error until Reset.
func (d *Decoder) Feed(chunk []byte) ([][]byte, error) {
	if d.err != nil {
		return nil, d.err
	}

	var msgs [][]byte
	for _, b := range chunk {
		if d.escaped {
			switch b {
			case EscEnd:
				d.acc = append(d.acc, End)
			case EscEsc:
				d.acc = append(d.acc, Esc)
			default:
				// Undefined escape sequence; RFC 1055 leaves this open.
				// Take the byte literally rather than poisoning the frame.
				d.acc = append(d.acc, b)
			}
			d.escaped = false
		} else {
			switch b {
			case End:
				if len(d.acc) > 0 || d.emitEmpty {
					msg := make([]byte, len(d.acc))
					copy(msg, d.acc)
					msgs = append(msgs, msg)
				}
				d.acc = d.acc[:0]
				continue
			case Esc:
				d.escaped = true
				continue
			default:
				d.acc = append(d.acc, b)
			}
		}

		if d.maxSize > 0 && len(d.acc) > d.maxSize {
			d.err = ErrMessageTooLarge
			return msgs, d.err
		}
	}

	return msgs, nil
}

// Close checks end-of-stream state. It returns ErrIncompleteMessage when
// the stream stopped mid-frame or mid-escape, which on an open connection
// would simply mean "more bytes pending" but at EOF means the final frame
// was truncated. A decoder that tripped the size guard reports that error
// instead. Close does not modify state; the decoder remains usable.
func (d *Decoder) Close() error {
	if d.err != nil {
		return d.err
	}
	if d.escaped || len(d.acc) > 0 {
		return ErrIncompleteMessage
	}
	return nil
}

// Reset discards any buffered partial frame, the escape state, and a
// sticky size-guard error, returning the decoder to its initial state.
// Use it on logical resynchronization of the stream.
func (d *Decoder) Reset() {
	d.acc = d.acc[:0]
	d.escaped = false
	d.err = nil
}

// Buffered reports how many decoded payload bytes of an unterminated
// frame are currently held.
func (d *Decoder) Buffered() int {
	return len(d.acc)
}
