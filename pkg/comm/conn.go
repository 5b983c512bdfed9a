package comm

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/coldplate.go/pkg/port"
)

// DefaultReadTimeout bounds each read while collecting a reply.
const DefaultReadTimeout = 10 * time.Millisecond

// Conn executes commands over a port, one at a time.
type Conn struct {
	Port        port.Port
	Settle      Settle
	ReadTimeout time.Duration

	lock sync.Mutex
}

// NewConn creates a Conn with default settle delays.
func NewConn(p port.Port) *Conn {
	return &Conn{
		Port:        p,
		Settle:      DefaultSettle(),
		ReadTimeout: DefaultReadTimeout,
	}
}

// Do sends a command, flushing stale bytes first, and waits for the
// settle delay of its class.
func (c *Conn) Do(ctx context.Context, cmd Command) (Response, error) {
	return c.Transact(ctx, []byte(cmd.String()), c.Settle.For(cmd.Class), true)
}

// Transact writes frame with the terminator appended, sleeps for settle
// and returns all bytes available afterwards. An empty reply is not an error.
func (c *Conn) Transact(ctx context.Context, frame []byte, settle time.Duration, flush bool) (Response, error) {
	if len(frame) == 0 || bytes.IndexByte(frame, Terminator) >= 0 {
		return nil, ErrTerminator
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	if c.Port == nil {
		return nil, ErrNoPort
	}
	if flush {
		if err := c.Port.ResetInputBuffer(); err != nil {
			return nil, fmt.Errorf("reset input buffer: %w", err)
		}
		if err := c.Port.ResetOutputBuffer(); err != nil {
			return nil, fmt.Errorf("reset output buffer: %w", err)
		}
	}

	glog.V(2).Infof("TX %q", frame)
	out := make([]byte, len(frame)+1)
	copy(out, frame)
	out[len(frame)] = Terminator
	if _, err := c.Port.Write(out); err != nil {
		return nil, fmt.Errorf("write %q: %w", frame, err)
	}

	if err := sleep(ctx, settle); err != nil {
		return nil, err
	}

	resp, err := c.readAvailable()
	if err != nil {
		return nil, fmt.Errorf("read reply of %q: %w", frame, err)
	}
	glog.V(2).Infof("RX %q", []byte(resp))
	return resp, nil
}

// Close closes the port.
func (c *Conn) Close() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.Port == nil {
		return nil
	}
	err := c.Port.Close()
	c.Port = nil
	return err
}

func (c *Conn) readAvailable() (Response, error) {
	if err := c.Port.SetReadTimeout(c.ReadTimeout); err != nil {
		return nil, err
	}
	var resp Response
	buf := make([]byte, 256)
	for {
		n, err := c.Port.Read(buf)
		resp = append(resp, buf[:n]...)
		if err != nil {
			return resp, err
		}
		if n == 0 {
			return resp, nil
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
