package device

import (
	"context"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/coldplate.go/pkg/cli/sh"
	"github.com/robotalks/coldplate.go/pkg/coldplate"
)

func query(fn func(*coldplate.Device) func(context.Context) (string, error)) func(*ishell.Context) {
	return sh.DeviceFunc(func(ctx context.Context, c *ishell.Context, dev *coldplate.Device) (interface{}, error) {
		return fn(dev)(ctx)
	})
}

type rebootFunc func(context.Context, bool) (string, bool, error)

func reboot(fn func(*coldplate.Device) rebootFunc) func(*ishell.Context) {
	return sh.DeviceFunc(rebootAction(fn))
}

// rebootAction always asks for confirmation.
func rebootAction(fn func(*coldplate.Device) rebootFunc) sh.Action {
	return func(ctx context.Context, c *ishell.Context, dev *coldplate.Device) (interface{}, error) {
		reply, ok, err := fn(dev)(ctx, true)
		if err != nil {
			return nil, err
		}
		return sh.Outcome{Reply: reply, OK: ok}, nil
	}
}

var (
	// VersionCmd shows the firmware version.
	VersionCmd = ishell.Cmd{
		Name: "version",
		Help: "firmware version",
		Func: query(func(d *coldplate.Device) func(context.Context) (string, error) { return d.Version }),
	}

	// DescribeCmd shows the model information.
	DescribeCmd = ishell.Cmd{
		Name: "describe",
		Help: "model information",
		Func: query(func(d *coldplate.Device) func(context.Context) (string, error) { return d.Description }),
	}

	// VersionInfoCmd shows model and version.
	VersionInfoCmd = ishell.Cmd{
		Name: "v",
		Help: "model and firmware version",
		Func: query(func(d *coldplate.Device) func(context.Context) (string, error) { return d.VersionInfo }),
	}

	// InfoCmd shows the boot screen.
	InfoCmd = ishell.Cmd{
		Name: "info",
		Help: "boot screen without self-test",
		Func: query(func(d *coldplate.Device) func(context.Context) (string, error) { return d.Info }),
	}

	// SerialCmd shows the serial number.
	SerialCmd = ishell.Cmd{
		Name: "serial",
		Help: "serial number",
		Func: query(func(d *coldplate.Device) func(context.Context) (string, error) { return d.Serial }),
	}

	// ErrorsCmd shows the error list.
	ErrorsCmd = ishell.Cmd{
		Name: "errors",
		Help: "errors and warnings raised during processing",
		Func: query(func(d *coldplate.Device) func(context.Context) (string, error) { return d.ErrorList }),
	}

	// ResetCmd restarts the controller.
	ResetCmd = ishell.Cmd{
		Name: "reset",
		Help: "restart the controller (about 5s)",
		Func: reboot(func(d *coldplate.Device) rebootFunc { return d.ResetDevice }),
	}

	// LEDCmd shows the LED state.
	LEDCmd = ishell.Cmd{
		Name: "led",
		Help: "LED state",
		Func: sh.DeviceFunc(func(ctx context.Context, c *ishell.Context, dev *coldplate.Device) (interface{}, error) {
			return dev.CLED(ctx)
		}),
	}

	// LEDOnCmd permanently enables the LED.
	LEDOnCmd = ishell.Cmd{
		Name: "led.on",
		Help: "permanently enable the LED, resets the device",
		Func: reboot(func(d *coldplate.Device) rebootFunc { return d.EnableCLED }),
	}

	// LEDOffCmd permanently disables the LED.
	LEDOffCmd = ishell.Cmd{
		Name: "led.off",
		Help: "permanently disable the LED, resets the device",
		Func: reboot(func(d *coldplate.Device) rebootFunc { return d.DisableCLED }),
	}

	// LEDFlashCmd flashes the LED.
	LEDFlashCmd = ishell.Cmd{
		Name:    "led.flash",
		Aliases: []string{"fld"},
		Help:    "flash the LED five times",
		Func:    query(func(d *coldplate.Device) func(context.Context) (string, error) { return d.FlashLED }),
	}
)

func init() {
	sh.AddCmds(
		&VersionCmd,
		&DescribeCmd,
		&VersionInfoCmd,
		&InfoCmd,
		&SerialCmd,
		&ErrorsCmd,
		&ResetCmd,
		&LEDCmd,
		&LEDOnCmd,
		&LEDOffCmd,
		&LEDFlashCmd,
	)
}
