// Package port opens the byte channels a ColdPlate is reachable through.
package port

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/coldplate.go/pkg/sim"
)

// Port is the subset of go.bug.st/serial.Port used by the driver.
type Port interface {
	io.ReadWriteCloser
	// ResetInputBuffer discards bytes received but not read.
	ResetInputBuffer() error
	// ResetOutputBuffer discards bytes written but not transmitted.
	ResetOutputBuffer() error
	// SetReadTimeout bounds a single Read. A Read timing out returns 0, nil.
	SetReadTimeout(t time.Duration) error
}

// Open opens a port from a URL or a bare device name.
//
//   /dev/ttyUSB0, COM6, serial:///dev/ttyUSB0  local serial port
//   tcp://host:port                           raw TCP serial bridge
//   ws://host/path, wss://host/path           websocket serial bridge
//   sim://                                    built-in simulator
func Open(portURL string) (Port, error) {
	if portURL == "" {
		return nil, fmt.Errorf("port not specified")
	}
	if !strings.Contains(portURL, "://") {
		return OpenSerial(portURL)
	}
	u, err := url.Parse(portURL)
	if err != nil {
		return nil, fmt.Errorf("invalid port URL: %v", err)
	}
	glog.V(1).Infof("open port %s", portURL)
	switch u.Scheme {
	case "serial":
		return OpenSerial(u.Host + u.Path)
	case "tcp":
		return OpenTCP(u.Host)
	case "ws", "wss":
		return OpenWebsocket(portURL)
	case "sim":
		return sim.New(), nil
	default:
		return nil, fmt.Errorf("unknown port URL scheme: %q", u.Scheme)
	}
}
