package slip

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"
)

func TestCodec_Decode_PackedFrames(t *testing.T) {
	m1 := []byte("first")
	m2 := []byte{0x00, End, Esc, 0xFF}
	stream := bytes.NewReader(append(Encode(m1), Encode(m2)...))

	c := NewCodec()

	for i, want := range [][]byte{m1, m2} {
		msg, err := c.Decode(stream)
		if err != nil {
			t.Fatalf("Decode %d failed: %v", i, err)
		}
		if !bytes.Equal(msg.Body(), want) {
			t.Errorf("message %d = %x, want %x", i, msg.Body(), want)
		}
	}

	if _, err := c.Decode(stream); err != io.EOF {
		t.Errorf("expected io.EOF after last frame, got %v", err)
	}
}

// The codec must reassemble messages no matter how the transport
// fragments them; one byte per read is the worst case.
func TestCodec_Decode_Fragmented(t *testing.T) {
	message := []byte{0x41, End, Esc, 0x42}
	stream := iotest.OneByteReader(bytes.NewReader(Encode(message)))

	c := NewCodec()
	msg, err := c.Decode(stream)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(msg.Body(), message) {
		t.Errorf("message = %x, want %x", msg.Body(), message)
	}
}

func TestCodec_Decode_TruncatedStream(t *testing.T) {
	stream := bytes.NewReader([]byte{'a', 'b', 'c'}) // no terminator

	c := NewCodec()
	_, err := c.Decode(stream)
	if !errors.Is(err, ErrIncompleteMessage) {
		t.Errorf("expected ErrIncompleteMessage, got %v", err)
	}
}

func TestCodec_Decode_Oversized(t *testing.T) {
	stream := bytes.NewReader(bytes.Repeat([]byte{'x'}, 64))

	c := NewCodec(MaxMessageSizeOption(16))
	_, err := c.Decode(stream)
	if !errors.Is(err, ErrMessageTooLarge) {
		t.Errorf("expected ErrMessageTooLarge, got %v", err)
	}
}

// A read that returns both the final frames and EOF must not swallow the
// frames; the EOF surfaces on the following call.
func TestCodec_Decode_DataWithEOF(t *testing.T) {
	message := []byte("tail")
	stream := iotest.DataErrReader(bytes.NewReader(Encode(message)))

	c := NewCodec()
	msg, err := c.Decode(stream)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(msg.Body(), message) {
		t.Errorf("message = %x, want %x", msg.Body(), message)
	}

	if _, err := c.Decode(stream); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestCodec_Encode(t *testing.T) {
	c := NewCodec()

	wire, err := c.Encode(NewPacket([]byte{0x41, End, Esc, 0x42}))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	expected := []byte{0x41, Esc, EscEnd, Esc, EscEsc, 0x42, End}
	if !bytes.Equal(wire, expected) {
		t.Errorf("Encode() = %x, want %x", wire, expected)
	}
}

func TestPacket(t *testing.T) {
	p := NewPacket([]byte("payload"))

	if p.Length() != 7 {
		t.Errorf("Length() = %d, want 7", p.Length())
	}
	if !bytes.Equal(p.Body(), []byte("payload")) {
		t.Errorf("Body() = %q, want %q", p.Body(), "payload")
	}
}
