package comm

import (
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// Terminator is appended to every outgoing command.
const Terminator byte = '\r'

// Range of the tenths-of-degree payload accepted by the firmware.
const (
	MinTenths = -200
	MaxTenths = 999
)

// SettleClass selects how long to wait for a reply.
type SettleClass int

// Settle classes.
const (
	SettleDefault SettleClass = iota
	// SettleFlash is used by the LED flash command.
	SettleFlash
	// SettleReset is used by commands rebooting the device.
	SettleReset
)

// Settle defines the settle delay of each class.
type Settle struct {
	Default time.Duration `yaml:"default"`
	Flash   time.Duration `yaml:"flash"`
	Reset   time.Duration `yaml:"reset"`
}

// DefaultSettle returns the delays the firmware needs.
func DefaultSettle() Settle {
	return Settle{
		Default: 200 * time.Millisecond,
		Flash:   2 * time.Second,
		Reset:   5 * time.Second,
	}
}

// For gets the delay of a class.
func (s Settle) For(class SettleClass) time.Duration {
	switch class {
	case SettleFlash:
		return s.Flash
	case SettleReset:
		return s.Reset
	default:
		return s.Default
	}
}

// Command is an opcode with an optional payload.
type Command struct {
	Opcode  string
	Payload string
	Class   SettleClass
}

// Cmd creates a Command without payload.
func Cmd(opcode string) Command {
	return Command{Opcode: opcode}
}

// CmdTenths creates a Command whose payload is a temperature in tenths of °C.
func CmdTenths(opcode string, value float64) Command {
	return Command{Opcode: opcode, Payload: EncodeTenths(value)}
}

// WithClass returns a copy using a different settle class.
func (c Command) WithClass(class SettleClass) Command {
	c.Class = class
	return c
}

// String returns the command as sent, without terminator.
func (c Command) String() string {
	return c.Opcode + c.Payload
}

// Valid checks the command can be framed.
func (c Command) Valid() bool {
	s := c.String()
	return s != "" && !strings.ContainsRune(s, rune(Terminator))
}

// Bytes returns the framed command.
func (c Command) Bytes() []byte {
	s := c.String()
	b := make([]byte, len(s)+1)
	copy(b, s)
	b[len(s)] = Terminator
	return b
}

// WriteTo writes the framed command.
func (c Command) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(c.Bytes())
	return int64(n), err
}

// Tenths converts °C into the nearest integer count of tenths.
func Tenths(value float64) int {
	return int(math.Round(value * 10))
}

// EncodeTenths encodes °C as the wire payload.
func EncodeTenths(value float64) string {
	return strconv.Itoa(Tenths(value))
}

// DecodeTenths converts tenths back into °C.
func DecodeTenths(n int) float64 {
	return float64(n) / 10
}

// ParseTenths parses a wire payload into °C.
func ParseTenths(s string) (float64, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return DecodeTenths(n), nil
}

// InRange indicates the value is representable on the wire.
func InRange(value float64) bool {
	n := Tenths(value)
	return n >= MinTenths && n <= MaxTenths
}
