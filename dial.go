package slip

import (
	"net"

	"github.com/pkg/errors"
)

// Dial connects to a SLIP peer at addr ("host:port") and wraps the
// connection with the given options. The caller drives the returned Conn
// with Run, exactly as on the server side.
func Dial(addr string, opt ...Option) (*Conn, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", addr)
	}

	raw, err := net.DialTCP("tcp", nil, tcpAddr)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", addr)
	}
	_ = raw.SetNoDelay(true)

	conn, err := NewConn(raw, opt...)
	if err != nil {
		raw.Close()
		return nil, err
	}

	return conn, nil
}
