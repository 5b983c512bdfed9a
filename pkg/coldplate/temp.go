package coldplate

import (
	"context"
	"fmt"

	"github.com/robotalks/coldplate.go/pkg/comm"
)

// ControlState tells whether heating/cooling is active.
type ControlState int

// Control states as reported by gts.
const (
	ControlDisabled ControlState = 0
	ControlEnabled  ControlState = 1
)

// Enabled returns true if temperature control is on.
func (s ControlState) Enabled() bool {
	return s == ControlEnabled
}

// String implements fmt.Stringer.
func (s ControlState) String() string {
	switch s {
	case ControlDisabled:
		return "Temperature control is disabled"
	case ControlEnabled:
		return "Temperature control is enabled"
	default:
		return fmt.Sprintf("temperature control state %d", int(s))
	}
}

// TempOn activates temperature control and starts heating/cooling.
func (d *Device) TempOn(ctx context.Context) (string, error) {
	return d.do(ctx, comm.Cmd("ton"))
}

// TempOff switches temperature control off.
func (d *Device) TempOff(ctx context.Context) (string, error) {
	return d.do(ctx, comm.Cmd("toff"))
}

// TempState returns the temperature control state.
func (d *Device) TempState(ctx context.Context) (ControlState, error) {
	val, err := d.queryInt(ctx, "gts")
	if err != nil {
		return 0, err
	}
	state := ControlState(val)
	if state != ControlDisabled && state != ControlEnabled {
		return 0, &ParseError{Command: "gts", Reply: fmt.Sprint(val), Err: ErrUnknownState}
	}
	return state, nil
}

// TempStateString returns the temperature control state as "on" or "off".
func (d *Device) TempStateString(ctx context.Context) (string, error) {
	return d.do(ctx, comm.Cmd("gtsas"))
}

// TempTarget returns the setpoint.
func (d *Device) TempTarget(ctx context.Context) (float64, error) {
	return d.queryFloat(ctx, "gtt")
}

// TempActual returns the current temperature.
func (d *Device) TempActual(ctx context.Context) (float64, error) {
	return d.queryFloat(ctx, "gta")
}

// TempMin returns the lowest possible setpoint. Informational only.
func (d *Device) TempMin(ctx context.Context) (float64, error) {
	return d.queryFloat(ctx, "gtmin")
}

// TempMax returns the highest possible setpoint. Informational only.
func (d *Device) TempMax(ctx context.Context) (float64, error) {
	return d.queryFloat(ctx, "gtmax")
}

// TempLimiterMin returns the configured lower bound of the setpoint.
func (d *Device) TempLimiterMin(ctx context.Context) (float64, error) {
	return d.queryFloat(ctx, "gtlmin")
}

// TempLimiterMax returns the configured upper bound of the setpoint.
func (d *Device) TempLimiterMax(ctx context.Context) (float64, error) {
	return d.queryFloat(ctx, "gtlmax")
}

// SetTempTarget sets the setpoint and verifies it by reading it back.
// The device clamps to the limiter band silently, so a mismatch emits a
// warning and returns ok == false. Values are compared exactly: a value
// with more than one decimal never matches.
func (d *Device) SetTempTarget(ctx context.Context, value float64) (reply string, ok bool, err error) {
	if err := checkWireRange(value); err != nil {
		return "", false, err
	}
	if reply, err = d.do(ctx, comm.CmdTenths("stt", value)); err != nil {
		return "", false, err
	}
	check, err := d.TempTarget(ctx)
	if err != nil {
		return "", false, err
	}
	if check != value {
		d.warn("target temperature of %.1f °C was not set, device reports %.1f °C", value, check)
		return "", false, nil
	}
	return reply, true, nil
}

// SetTempLimiterMin sets the lower setpoint bound. It is rejected without
// writing if it exceeds the upper bound.
func (d *Device) SetTempLimiterMin(ctx context.Context, value float64) (reply string, ok bool, err error) {
	if err := checkWireRange(value); err != nil {
		return "", false, err
	}
	max, err := d.TempLimiterMax(ctx)
	if err != nil {
		return "", false, err
	}
	if value > max {
		d.warn("minimum temperature limit of %.1f °C must be less than the maximum temperature limit of %.1f °C", value, max)
		return "", false, nil
	}
	return d.setVerified(ctx, "stlmin", "gtlmin", value, "minimum temperature limit")
}

// SetTempLimiterMax sets the upper setpoint bound. It is rejected without
// writing if it is below the lower bound.
func (d *Device) SetTempLimiterMax(ctx context.Context, value float64) (reply string, ok bool, err error) {
	if err := checkWireRange(value); err != nil {
		return "", false, err
	}
	min, err := d.TempLimiterMin(ctx)
	if err != nil {
		return "", false, err
	}
	if value < min {
		d.warn("maximum temperature limit of %.1f °C must be greater than the minimum temperature limit of %.1f °C", value, min)
		return "", false, nil
	}
	return d.setVerified(ctx, "stlmax", "gtlmax", value, "maximum temperature limit")
}

func (d *Device) setVerified(ctx context.Context, set, get string, value float64, what string) (string, bool, error) {
	reply, err := d.do(ctx, comm.CmdTenths(set, value))
	if err != nil {
		return "", false, err
	}
	check, err := d.queryFloat(ctx, get)
	if err != nil {
		return "", false, err
	}
	if check != value {
		d.warn("%s of %.1f °C was not set, device reports %.1f °C", what, value, check)
		return "", false, nil
	}
	return reply, true, nil
}

func checkWireRange(value float64) error {
	if !comm.InRange(value) {
		return &RangeError{
			Value: value,
			Min:   comm.DecodeTenths(comm.MinTenths),
			Max:   comm.DecodeTenths(comm.MaxTenths),
		}
	}
	return nil
}
