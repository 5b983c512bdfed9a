package sim

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrClosed indicates the simulated port is closed.
var ErrClosed = errors.New("port closed")

// Hardware range of the setpoint.
const (
	HardMin = -20.0
	HardMax = 99.9
)

// ColdPlate is a simulated device.
type ColdPlate struct {
	Version     string
	Description string
	Serial      string
	BootInfo    string
	Errors      string

	Target     float64
	Actual     float64
	LimiterMin float64
	LimiterMax float64
	Control    bool
	LED        bool
	Resets     int

	// Step is how far Actual moves toward Target on each gta while
	// temperature control is on.
	Step float64
	// Drift is how far Actual moves toward Ambient on each gta while
	// temperature control is off.
	Drift   float64
	Ambient float64

	lock    sync.Mutex
	rx      []byte
	tx      []byte
	script  map[string][]string
	history []string
	closed  bool
}

// New creates a ColdPlate at ambient temperature.
func New() *ColdPlate {
	return &ColdPlate{
		Version:     "1.3.2",
		Description: "ColdPlate",
		Serial:      "CP-000001",
		BootInfo:    "QInstruments ColdPlate",
		Target:      25,
		Actual:      22,
		LimiterMin:  HardMin,
		LimiterMax:  HardMax,
		LED:         true,
		Step:        0.5,
		Ambient:     22,
	}
}

// Script queues replies returned instead of the simulated ones.
// The key is either a full command (e.g. "stt350") or an opcode ("gta").
func (c *ColdPlate) Script(cmd string, replies ...string) *ColdPlate {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.script == nil {
		c.script = make(map[string][]string)
	}
	c.script[cmd] = append(c.script[cmd], replies...)
	return c
}

// History returns the commands received so far.
func (c *ColdPlate) History() []string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]string(nil), c.history...)
}

// Count returns how many times an opcode was received.
func (c *ColdPlate) Count(opcode string) int {
	var n int
	for _, cmd := range c.History() {
		if op, _ := SplitCommand(cmd); op == opcode {
			n++
		}
	}
	return n
}

// Read implements io.Reader. It never blocks.
func (c *ColdPlate) Read(p []byte) (int, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.closed {
		return 0, ErrClosed
	}
	n := copy(p, c.tx)
	c.tx = c.tx[n:]
	return n, nil
}

// Write implements io.Writer.
func (c *ColdPlate) Write(p []byte) (int, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.closed {
		return 0, ErrClosed
	}
	for _, b := range p {
		if b != '\r' {
			c.rx = append(c.rx, b)
			continue
		}
		cmd := string(c.rx)
		c.rx = c.rx[:0]
		c.history = append(c.history, cmd)
		if reply := c.handle(cmd); reply != "" {
			c.tx = append(c.tx, reply+"\r\n"...)
		}
	}
	return len(p), nil
}

// Close implements io.Closer.
func (c *ColdPlate) Close() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.closed = true
	return nil
}

// ResetInputBuffer discards pending replies.
func (c *ColdPlate) ResetInputBuffer() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.tx = nil
	return nil
}

// ResetOutputBuffer discards a partially written command.
func (c *ColdPlate) ResetOutputBuffer() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.rx = c.rx[:0]
	return nil
}

// SetReadTimeout is a no-op since Read never blocks.
func (c *ColdPlate) SetReadTimeout(time.Duration) error {
	return nil
}

// SplitCommand separates the opcode from its numeric argument.
func SplitCommand(cmd string) (opcode, arg string) {
	if i := strings.IndexAny(cmd, "-0123456789"); i > 0 {
		return cmd[:i], cmd[i:]
	}
	return cmd, ""
}

func (c *ColdPlate) scripted(keys ...string) (string, bool) {
	for _, key := range keys {
		if replies := c.script[key]; len(replies) > 0 {
			c.script[key] = replies[1:]
			return replies[0], true
		}
	}
	return "", false
}

func (c *ColdPlate) handle(cmd string) string {
	op, arg := SplitCommand(cmd)
	if reply, ok := c.scripted(cmd, op); ok {
		// scripted state changes still apply.
		c.exec(op, arg)
		return reply
	}
	return c.exec(op, arg)
}

func (c *ColdPlate) exec(op, arg string) string {
	switch op {
	case "getVersion":
		return c.Version
	case "getDescription":
		return c.Description
	case "v":
		return c.Description + " " + c.Version
	case "info":
		return c.BootInfo
	case "getSerial":
		return c.Serial
	case "gel":
		return c.Errors
	case "reset":
		c.reboot()
		return "ok"
	case "enableCLED":
		c.LED = true
		c.reboot()
		return "ok"
	case "disableCLED":
		c.LED = false
		c.reboot()
		return "ok"
	case "getCLED":
		if c.LED {
			return "1"
		}
		return "2"
	case "fld":
		return "ok"
	case "ton":
		c.Control = true
		return "ok"
	case "toff":
		c.Control = false
		return "ok"
	case "gts":
		if c.Control {
			return "1"
		}
		return "0"
	case "gtsas":
		if c.Control {
			return "on"
		}
		return "off"
	case "gtt":
		return formatTemp(c.Target)
	case "gta":
		c.advance()
		return formatTemp(c.Actual)
	case "gtmin":
		return formatTemp(HardMin)
	case "gtmax":
		return formatTemp(HardMax)
	case "gtlmin":
		return formatTemp(c.LimiterMin)
	case "gtlmax":
		return formatTemp(c.LimiterMax)
	case "stt", "stlmin", "stlmax":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return "E: invalid value"
		}
		v := clamp(float64(n)/10, HardMin, HardMax)
		switch op {
		case "stt":
			c.Target = clamp(v, c.LimiterMin, c.LimiterMax)
		case "stlmin":
			c.LimiterMin = v
		case "stlmax":
			c.LimiterMax = v
		}
		return "ok"
	default:
		return "E: unknown command"
	}
}

func (c *ColdPlate) reboot() {
	c.Resets++
	c.Control = false
}

func (c *ColdPlate) advance() {
	if c.Control {
		c.Actual = approach(c.Actual, c.Target, c.Step)
	} else if c.Drift > 0 {
		c.Actual = approach(c.Actual, c.Ambient, c.Drift)
	}
}

func approach(from, to, step float64) float64 {
	if math.Abs(to-from) <= step {
		return to
	}
	if to > from {
		return from + step
	}
	return from - step
}

func clamp(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}

func formatTemp(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
