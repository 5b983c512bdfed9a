// Package selftest exercises a device interactively, step by step.
package selftest

import (
	"context"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/coldplate.go/pkg/cli/sh"
	"github.com/robotalks/coldplate.go/pkg/coldplate"
)

// Printer receives the progress.
type Printer interface {
	Printf(format string, args ...interface{})
}

// Options parameterizes the temperature steps.
type Options struct {
	ChangeTo     float64
	HoldAt       float64
	HoldFor      time.Duration
	ControlPause time.Duration
	Delta        float64
}

// DefaultOptions returns the options of a full self-test.
func DefaultOptions() Options {
	return Options{
		ChangeTo:     30,
		HoldAt:       35,
		HoldFor:      2 * time.Minute,
		ControlPause: 2 * time.Second,
		Delta:        coldplate.DefaultDelta,
	}
}

// Test runs the self-test.
type Test struct {
	Device  *coldplate.Device
	Out     Printer
	Ask     func(prompt string) bool
	Options Options
}

// Run runs both sections, each after confirmation.
func (t *Test) Run(ctx context.Context) error {
	if t.Ask("run initialization tests?") {
		if err := t.initialization(ctx); err != nil {
			return err
		}
	}
	if t.Ask("test temperature control?") {
		return t.temperature(ctx)
	}
	return nil
}

func (t *Test) show(ctx context.Context, label string, query func(context.Context) (string, error)) error {
	val, err := query(ctx)
	if err != nil {
		return err
	}
	t.Out.Printf("%s: %s\n", label, val)
	return nil
}

func (t *Test) initialization(ctx context.Context) error {
	dev := t.Device
	for _, q := range []struct {
		label string
		query func(context.Context) (string, error)
	}{
		{"Firmware Version", dev.Version},
		{"Description", dev.Description},
		{"Version", dev.VersionInfo},
		{"Info", dev.Info},
		{"Serial Number", dev.Serial},
	} {
		if err := t.show(ctx, q.label, q.query); err != nil {
			return err
		}
	}

	t.Out.Printf("Reset the device...\n")
	if _, _, err := dev.ResetDevice(ctx, true); err != nil {
		return err
	}
	if err := t.show(ctx, "Error List", dev.ErrorList); err != nil {
		return err
	}

	led, err := dev.CLED(ctx)
	if err != nil {
		return err
	}
	t.Out.Printf("%s\n", led)
	if led == coldplate.LEDEnabled {
		t.Out.Printf("\t- Turning LED off permanently...\n")
		if _, _, err := dev.DisableCLED(ctx, true); err != nil {
			return err
		}
		t.Out.Printf("\t- Turning LED back on permanently...\n")
		if _, _, err := dev.EnableCLED(ctx, true); err != nil {
			return err
		}
	} else {
		t.Out.Printf("\t- Turning LED on permanently...\n")
		if _, _, err := dev.EnableCLED(ctx, true); err != nil {
			return err
		}
	}

	if led, err = dev.CLED(ctx); err != nil {
		return err
	}
	if led != coldplate.LEDEnabled {
		if !t.Ask("cannot test LED flashing with LED disabled, enable LED (takes about 5 seconds)?") {
			t.Out.Printf("LED flashing will not be tested since the LED is still disabled\n")
			return nil
		}
		if _, _, err := dev.EnableCLED(ctx, false); err != nil {
			return err
		}
	}
	t.Out.Printf("Flashing the LEDs five times\n")
	_, err = dev.FlashLED(ctx)
	return err
}

func (t *Test) temperature(ctx context.Context) error {
	dev, opts := t.Device, t.Options
	t.Out.Printf("Running detection of temperature control state\n")
	state, err := dev.TempState(ctx)
	if err != nil {
		return err
	}
	if err := t.show(ctx, "\tTemperature Control", dev.TempStateString); err != nil {
		return err
	}
	if state.Enabled() {
		t.Out.Printf("\tTurning off temperature control for %v\n", opts.ControlPause)
		if _, err := dev.TempOff(ctx); err != nil {
			return err
		}
		if err := t.show(ctx, "\tTemperature Control", dev.TempStateString); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(opts.ControlPause):
		}
	}
	t.Out.Printf("\tTurning on temperature control\n")
	if _, err := dev.TempOn(ctx); err != nil {
		return err
	}
	if err := t.show(ctx, "\tTemperature Control", dev.TempStateString); err != nil {
		return err
	}

	actual, err := dev.TempActual(ctx)
	if err != nil {
		return err
	}
	t.Out.Printf("Current Temperature: %.1f °C\n", actual)

	t.Out.Printf("Running test on changing the temperature to %.1f °C\n", opts.ChangeTo)
	res, err := dev.ChangeTemp(ctx, opts.ChangeTo, opts.Delta)
	if err != nil {
		return err
	}
	t.Out.Printf("Change %s after %d readings\n", res.Status, res.Polls)

	t.Out.Printf("Running test on holding the temperature to %.1f °C for %v\n", opts.HoldAt, opts.HoldFor)
	hold, err := dev.HoldTemp(ctx, opts.HoldAt, opts.HoldFor, opts.Delta)
	if err != nil {
		return err
	}
	t.Out.Printf("Hold %s after %v, re-converged %d times, %d timed out\n",
		hold.Status, hold.Elapsed.Round(time.Second), hold.Reconverged, hold.TimedOut)
	return nil
}

// SelfTestCmd runs the self-test.
var SelfTestCmd = ishell.Cmd{
	Name: "selftest",
	Help: "interactive test of all device functions",
	Func: sh.DeviceFunc(func(ctx context.Context, c *ishell.Context, dev *coldplate.Device) (interface{}, error) {
		s := sh.ShellFrom(c)
		opts := DefaultOptions()
		opts.Delta = s.Config.Delta
		test := &Test{Device: dev, Out: c, Ask: s.Confirm, Options: opts}
		return nil, test.Run(ctx)
	}),
}

func init() {
	sh.AddCmds(&SelfTestCmd)
}
