package port

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/websocket"
)

// WebsocketPort is a Port over a websocket serial bridge.
//
// A read deadline expiring inside a frame header corrupts the frame
// stream of x/net/websocket, so frames are read without deadlines by a
// background reader and read timeouts apply to its buffer instead.
type WebsocketPort struct {
	Conn *websocket.Conn

	lock        sync.Mutex
	buf         []byte
	err         error
	arrived     chan struct{}
	readTimeout time.Duration
}

// OpenWebsocket connects to a websocket serial bridge.
// Bytes are carried in binary frames in both directions.
func OpenWebsocket(wsURL string) (Port, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, err
	}
	origin := "http://" + u.Host + "/"
	if u.Scheme == "wss" {
		origin = "https://" + u.Host + "/"
	}
	conn, err := websocket.Dial(wsURL, "", origin)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", wsURL, err)
	}
	conn.PayloadType = websocket.BinaryFrame
	return NewWebsocketPort(conn), nil
}

// NewWebsocketPort wraps a websocket connection and starts reading it.
func NewWebsocketPort(conn *websocket.Conn) *WebsocketPort {
	p := &WebsocketPort{
		Conn:        conn,
		arrived:     make(chan struct{}, 1),
		readTimeout: -1,
	}
	go p.receive()
	return p
}

func (p *WebsocketPort) receive() {
	data := make([]byte, 1024)
	for {
		n, err := p.Conn.Read(data)
		p.lock.Lock()
		p.buf = append(p.buf, data[:n]...)
		if err != nil {
			p.err = err
		}
		p.lock.Unlock()
		select {
		case p.arrived <- struct{}{}:
		default:
		}
		if err != nil {
			return
		}
	}
}

// take copies buffered bytes, or returns the reader's error once drained.
func (p *WebsocketPort) take(b []byte) (int, bool, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if len(p.buf) > 0 {
		n := copy(b, p.buf)
		p.buf = p.buf[n:]
		return n, true, nil
	}
	if p.err != nil {
		return 0, true, p.err
	}
	return 0, false, nil
}

// Read implements io.Reader. A Read timing out returns 0, nil.
func (p *WebsocketPort) Read(b []byte) (int, error) {
	var timeout <-chan time.Time
	if p.readTimeout >= 0 {
		timer := time.NewTimer(p.readTimeout)
		defer timer.Stop()
		timeout = timer.C
	}
	for {
		if n, done, err := p.take(b); done {
			return n, err
		}
		select {
		case <-p.arrived:
		case <-timeout:
			n, _, err := p.take(b)
			return n, err
		}
	}
}

// Write implements io.Writer.
func (p *WebsocketPort) Write(b []byte) (int, error) {
	return p.Conn.Write(b)
}

// Close implements io.Closer.
func (p *WebsocketPort) Close() error {
	return p.Conn.Close()
}

// ResetInputBuffer discards bytes arriving within the drain window.
func (p *WebsocketPort) ResetInputBuffer() error {
	time.Sleep(drainWindow)
	p.lock.Lock()
	defer p.lock.Unlock()
	p.buf = nil
	return nil
}

// ResetOutputBuffer implements Port. Writes are never buffered locally.
func (p *WebsocketPort) ResetOutputBuffer() error {
	return nil
}

// SetReadTimeout implements Port. A negative timeout blocks.
func (p *WebsocketPort) SetReadTimeout(t time.Duration) error {
	p.readTimeout = t
	return nil
}
