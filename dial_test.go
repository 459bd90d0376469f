package slip

import (
	"net"
	"testing"
	"time"
)

func TestDial(t *testing.T) {
	listener, err := net.ListenTCP("tcp", &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	if err != nil {
		t.Fatalf("failed to create listener: %v", err)
	}
	defer listener.Close()

	accepted := make(chan *net.TCPConn, 1)
	go func() {
		conn, err := listener.AcceptTCP()
		if err != nil {
			return
		}
		accepted <- conn
	}()

	conn, err := Dial(listener.Addr().String(),
		OnMessageOption(func(msg Message) error { return nil }),
	)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	select {
	case serverSide := <-accepted:
		serverSide.Close()
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for accept")
	}
}

func TestDial_MissingOnMessage(t *testing.T) {
	listener, err := net.ListenTCP("tcp", &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	if err != nil {
		t.Fatalf("failed to create listener: %v", err)
	}
	defer listener.Close()

	go func() {
		conn, err := listener.AcceptTCP()
		if err == nil {
			conn.Close()
		}
	}()

	_, err = Dial(listener.Addr().String())
	if err != ErrInvalidOnMessage {
		t.Errorf("expected ErrInvalidOnMessage, got %v", err)
	}
}

func TestDial_ConnectionRefused(t *testing.T) {
	// Bind a port, then close it so nothing is listening there.
	listener, err := net.ListenTCP("tcp", &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	if err != nil {
		t.Fatalf("failed to create listener: %v", err)
	}
	addr := listener.Addr().String()
	listener.Close()

	_, err = Dial(addr,
		OnMessageOption(func(msg Message) error { return nil }),
	)
	if err == nil {
		t.Error("expected error dialing closed port")
	}
}
