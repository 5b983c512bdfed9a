package temp

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/coldplate.go/pkg/cli/sh"
	"github.com/robotalks/coldplate.go/pkg/coldplate"
)

// Limits lists the temperature bounds.
type Limits struct {
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	LimiterMin float64 `json:"limiter_min"`
	LimiterMax float64 `json:"limiter_max"`
}

// String implements fmt.Stringer.
func (l Limits) String() string {
	return fmt.Sprintf("device [%.1f, %.1f] °C, limiter [%.1f, %.1f] °C", l.Min, l.Max, l.LimiterMin, l.LimiterMax)
}

// QueryLimits reads all bounds.
func QueryLimits(ctx context.Context, dev *coldplate.Device) (l Limits, err error) {
	if l.Min, err = dev.TempMin(ctx); err != nil {
		return
	}
	if l.Max, err = dev.TempMax(ctx); err != nil {
		return
	}
	if l.LimiterMin, err = dev.TempLimiterMin(ctx); err != nil {
		return
	}
	l.LimiterMax, err = dev.TempLimiterMax(ctx)
	return
}

// Status is the current temperature status.
type Status struct {
	Control coldplate.ControlState `json:"control"`
	Target  float64                `json:"target"`
	Actual  float64                `json:"actual"`
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return fmt.Sprintf("%s, target %.1f °C, actual %.1f °C", s.Control, s.Target, s.Actual)
}

// QueryStatus reads control state, target and actual temperature.
func QueryStatus(ctx context.Context, dev *coldplate.Device) (s Status, err error) {
	if s.Control, err = dev.TempState(ctx); err != nil {
		return
	}
	if s.Target, err = dev.TempTarget(ctx); err != nil {
		return
	}
	s.Actual, err = dev.TempActual(ctx)
	return
}

type setFunc func(context.Context, float64) (string, bool, error)

func set(name string, fn func(*coldplate.Device) setFunc) func(*ishell.Context) {
	return sh.DeviceFunc(func(ctx context.Context, c *ishell.Context, dev *coldplate.Device) (interface{}, error) {
		val, err := sh.FloatArg(c, 0, name)
		if err != nil {
			return nil, err
		}
		reply, ok, err := fn(dev)(ctx, val)
		if err != nil {
			return nil, err
		}
		return sh.Outcome{Reply: reply, OK: ok}, nil
	})
}

func float(fn func(*coldplate.Device) func(context.Context) (float64, error)) func(*ishell.Context) {
	return sh.DeviceFunc(func(ctx context.Context, c *ishell.Context, dev *coldplate.Device) (interface{}, error) {
		return fn(dev)(ctx)
	})
}

var (
	// StatusCmd shows the temperature status.
	StatusCmd = ishell.Cmd{
		Name:    "temp",
		Aliases: []string{"t"},
		Help:    "temperature control state, target and actual",
		Func: sh.DeviceFunc(func(ctx context.Context, c *ishell.Context, dev *coldplate.Device) (interface{}, error) {
			return QueryStatus(ctx, dev)
		}),
	}

	// OnCmd enables temperature control.
	OnCmd = ishell.Cmd{
		Name: "temp.on",
		Help: "start heating/cooling",
		Func: sh.DeviceFunc(func(ctx context.Context, c *ishell.Context, dev *coldplate.Device) (interface{}, error) {
			return dev.TempOn(ctx)
		}),
	}

	// OffCmd disables temperature control.
	OffCmd = ishell.Cmd{
		Name: "temp.off",
		Help: "stop heating/cooling",
		Func: sh.DeviceFunc(func(ctx context.Context, c *ishell.Context, dev *coldplate.Device) (interface{}, error) {
			return dev.TempOff(ctx)
		}),
	}

	// TargetCmd shows the setpoint.
	TargetCmd = ishell.Cmd{
		Name: "temp.target",
		Help: "setpoint",
		Func: float(func(d *coldplate.Device) func(context.Context) (float64, error) { return d.TempTarget }),
	}

	// ActualCmd shows the current temperature.
	ActualCmd = ishell.Cmd{
		Name: "temp.actual",
		Help: "current temperature",
		Func: float(func(d *coldplate.Device) func(context.Context) (float64, error) { return d.TempActual }),
	}

	// LimitsCmd shows temperature bounds.
	LimitsCmd = ishell.Cmd{
		Name: "temp.limits",
		Help: "device range and limiter band",
		Func: sh.DeviceFunc(func(ctx context.Context, c *ishell.Context, dev *coldplate.Device) (interface{}, error) {
			return QueryLimits(ctx, dev)
		}),
	}

	// SetCmd sets the setpoint.
	SetCmd = ishell.Cmd{
		Name: "temp.set",
		Help: "TEMP(°C)",
		Func: set("TEMP", func(d *coldplate.Device) setFunc { return d.SetTempTarget }),
	}

	// LimiterMinCmd sets the lower bound of the limiter band.
	LimiterMinCmd = ishell.Cmd{
		Name: "temp.lmin",
		Help: "TEMP(°C)",
		Func: set("TEMP", func(d *coldplate.Device) setFunc { return d.SetTempLimiterMin }),
	}

	// LimiterMaxCmd sets the upper bound of the limiter band.
	LimiterMaxCmd = ishell.Cmd{
		Name: "temp.lmax",
		Help: "TEMP(°C)",
		Func: set("TEMP", func(d *coldplate.Device) setFunc { return d.SetTempLimiterMax }),
	}

	// ChangeCmd converges to a temperature.
	ChangeCmd = ishell.Cmd{
		Name:    "temp.change",
		Aliases: []string{"tc"},
		Help:    "TEMP(°C) [DELTA(°C)]",
		Func: sh.DeviceFunc(func(ctx context.Context, c *ishell.Context, dev *coldplate.Device) (interface{}, error) {
			val, err := sh.FloatArg(c, 0, "TEMP")
			if err != nil {
				return nil, err
			}
			delta, err := sh.Delta(c, 1)
			if err != nil {
				return nil, err
			}
			return dev.ChangeTemp(ctx, val, delta)
		}),
	}

	// HoldCmd holds a temperature.
	HoldCmd = ishell.Cmd{
		Name:    "temp.hold",
		Aliases: []string{"th"},
		Help:    "TEMP(°C) RUNTIME(e.g. 120s) [DELTA(°C)]",
		Func: sh.DeviceFunc(func(ctx context.Context, c *ishell.Context, dev *coldplate.Device) (interface{}, error) {
			val, err := sh.FloatArg(c, 0, "TEMP")
			if err != nil {
				return nil, err
			}
			if len(c.Args) < 2 {
				return nil, fmt.Errorf("RUNTIME required")
			}
			runtime, err := ParseRuntime(c.Args[1])
			if err != nil {
				return nil, err
			}
			delta, err := sh.Delta(c, 2)
			if err != nil {
				return nil, err
			}
			return dev.HoldTemp(ctx, val, runtime, delta)
		}),
	}
)

// ParseRuntime accepts a duration or a plain number of seconds.
func ParseRuntime(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		secs, perr := strconv.ParseFloat(s, 64)
		if perr != nil {
			return 0, fmt.Errorf("invalid RUNTIME: %q", s)
		}
		d = time.Duration(secs * float64(time.Second))
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid RUNTIME: %q", s)
	}
	return d, nil
}

func init() {
	sh.AddCmds(
		&StatusCmd,
		&OnCmd,
		&OffCmd,
		&TargetCmd,
		&ActualCmd,
		&LimitsCmd,
		&SetCmd,
		&LimiterMinCmd,
		&LimiterMaxCmd,
		&ChangeCmd,
		&HoldCmd,
	)
}
