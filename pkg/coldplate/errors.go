package coldplate

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange indicates a temperature outside the permitted band.
	ErrOutOfRange = errors.New("temperature out of range")
	// ErrUnknownState indicates a state value the protocol doesn't define.
	ErrUnknownState = errors.New("unknown state")
)

// RangeError reports a temperature outside [Min, Max].
type RangeError struct {
	Value float64
	Min   float64
	Max   float64
}

// Error implements error.
func (e *RangeError) Error() string {
	return fmt.Sprintf("%.1f °C is not within the temperature bounds [%.1f, %.1f]", e.Value, e.Min, e.Max)
}

// Is makes errors.Is(err, ErrOutOfRange) hold.
func (e *RangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// ParseError reports a reply that can't be interpreted.
type ParseError struct {
	Command string
	Reply   string
	Err     error
}

// Error implements error.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: bad reply %q: %v", e.Command, e.Reply, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
