package slip

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
)

func TestWriter_WritePacket(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	if err := w.WritePacket([]byte{0x41, End, Esc, 0x42}); err != nil {
		t.Fatalf("WritePacket failed: %v", err)
	}

	expected := []byte{0x41, Esc, EscEnd, Esc, EscEsc, 0x42, End}
	if !bytes.Equal(buf.Bytes(), expected) {
		t.Errorf("wrote %x, want %x", buf.Bytes(), expected)
	}
}

func TestWriter_WritePacket_Error(t *testing.T) {
	w := NewWriter(failWriter{})

	err := w.WritePacket([]byte("data"))
	if err == nil {
		t.Fatal("expected error from failing writer")
	}
	if errors.Cause(err).Error() != "sink closed" {
		t.Errorf("unexpected cause: %v", err)
	}
}

// Packets written back to back must come out of a Reader unchanged and in
// order.
func TestWriter_ReaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	wants := [][]byte{
		[]byte("hello"),
		{},
		{End, Esc, EscEnd, EscEsc},
		bytes.Repeat([]byte{End}, 32),
	}

	if err := NewWriter(&buf).WriteAll(wants); err != nil {
		t.Fatalf("WriteAll failed: %v", err)
	}

	pkts, err := NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	// The empty packet is dropped on decode by policy.
	expected := [][]byte{wants[0], wants[2], wants[3]}
	if len(pkts) != len(expected) {
		t.Fatalf("round trip returned %d packets, want %d", len(pkts), len(expected))
	}
	for i := range expected {
		if !bytes.Equal(pkts[i], expected[i]) {
			t.Errorf("packet %d = %x, want %x", i, pkts[i], expected[i])
		}
	}
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) {
	return 0, errors.New("sink closed")
}
