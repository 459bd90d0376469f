package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/Zereker/slip"
)

// Server echoes every SLIP-framed message back to its sender. No codec is
// configured: connections speak SLIP by default, so a client can be as
// simple as `slip.Dial` on the other end, or any third-party program that
// frames its messages per RFC 1055.
type Server struct {
	connID int64

	sync.RWMutex
	connections map[int64]*slip.Conn
}

func newHandler(connID int64) *Server {
	return &Server{connID: connID, connections: make(map[int64]*slip.Conn)}
}

func (s *Server) Handle(conn *net.TCPConn) {
	connID := atomic.AddInt64(&s.connID, 1)

	errorOption := slip.OnErrorOption(func(err error) slip.ErrorAction {
		slog.Error("connection error", "error", err)
		return slip.Disconnect
	})

	// Echo
	onMessageOption := slip.OnMessageOption(func(m slip.Message) error {
		conn := s.getConn(connID)
		return conn.Write(slip.NewPacket(m.Body()))
	})

	newConn, err := slip.NewConn(conn, errorOption, onMessageOption)
	if err != nil {
		panic(err)
	}

	s.addConn(connID, newConn)

	if err = newConn.Run(context.Background()); err != nil {
		s.deleteConn(connID)
	}
}

func (s *Server) addConn(connID int64, conn *slip.Conn) {
	s.Lock()
	defer s.Unlock()

	slog.Info("add new conn", "connID", connID, "addr", conn.Addr())
	s.connections[connID] = conn
}

func (s *Server) deleteConn(connID int64) {
	s.Lock()
	defer s.Unlock()

	delete(s.connections, connID)
}

func (s *Server) getConn(connID int64) *slip.Conn {
	s.RLock()
	defer s.RUnlock()

	if conn, ok := s.connections[connID]; ok {
		return conn
	}

	return nil
}

func main() {
	addr, err := net.ResolveTCPAddr("tcp", "127.0.0.1:12345")
	if err != nil {
		panic(err)
	}

	server, err := slip.New(addr)
	if err != nil {
		slog.Error("failed to create server", "error", err)
		return
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		slog.Info("shutting down server...")
		cancel()
	}()

	slog.Info("server start", "addr", addr.String())
	if err := server.Serve(ctx, newHandler(time.Now().Unix())); err != nil {
		slog.Error("server error", "error", err)
	}
}
