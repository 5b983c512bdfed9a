package port

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// drainWindow bounds the wait for stale bytes while resetting input.
const drainWindow = time.Millisecond

// DialTimeout bounds connecting to a network bridge.
var DialTimeout = 5 * time.Second

// NetPort adapts a net.Conn to Port using read deadlines.
type NetPort struct {
	Conn net.Conn

	readTimeout time.Duration
}

// NewNetPort wraps a net.Conn.
func NewNetPort(conn net.Conn) *NetPort {
	return &NetPort{Conn: conn, readTimeout: -1}
}

// OpenTCP connects to a raw TCP serial bridge (e.g. ser2net).
func OpenTCP(addr string) (Port, error) {
	conn, err := net.DialTimeout("tcp", addr, DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	return NewNetPort(conn), nil
}

// Read implements io.Reader.
func (p *NetPort) Read(b []byte) (int, error) {
	var deadline time.Time
	if p.readTimeout >= 0 {
		deadline = time.Now().Add(p.readTimeout)
	}
	if err := p.Conn.SetReadDeadline(deadline); err != nil {
		return 0, err
	}
	n, err := p.Conn.Read(b)
	if err != nil && isTimeout(err) {
		return n, nil
	}
	return n, err
}

// Write implements io.Writer.
func (p *NetPort) Write(b []byte) (int, error) {
	return p.Conn.Write(b)
}

// Close implements io.Closer.
func (p *NetPort) Close() error {
	return p.Conn.Close()
}

// ResetInputBuffer implements Port.
func (p *NetPort) ResetInputBuffer() error {
	buf := make([]byte, 256)
	for {
		if err := p.Conn.SetReadDeadline(time.Now().Add(drainWindow)); err != nil {
			return err
		}
		n, err := p.Conn.Read(buf)
		if err != nil {
			if isTimeout(err) {
				return nil
			}
			return err
		}
		if n == 0 {
			return nil
		}
	}
}

// ResetOutputBuffer implements Port. Writes are never buffered locally.
func (p *NetPort) ResetOutputBuffer() error {
	return nil
}

// SetReadTimeout implements Port. A negative timeout blocks.
func (p *NetPort) SetReadTimeout(t time.Duration) error {
	p.readTimeout = t
	return nil
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
