package coldplate

import (
	"context"
	"fmt"

	"github.com/robotalks/coldplate.go/pkg/comm"
)

// LEDState is the persisted LED setting.
type LEDState int

// LED states as reported by getCLED.
const (
	LEDEnabled  LEDState = 1
	LEDDisabled LEDState = 2
)

// String implements fmt.Stringer.
func (s LEDState) String() string {
	switch s {
	case LEDEnabled:
		return "LED is enabled"
	case LEDDisabled:
		return "LED is disabled"
	default:
		return fmt.Sprintf("LED state %d", int(s))
	}
}

// Prompts asked before rebooting the device.
const (
	ResetPrompt       = "restarting the controller takes about 5 seconds, continue?"
	EnableCLEDPrompt  = "permanently activating the LED lights resets the device, which takes about 5 seconds, continue?"
	DisableCLEDPrompt = "permanently deactivating the LED lights resets the device, which takes about 5 seconds, continue?"
)

// ResetDevice restarts the controller, which takes about 5 seconds.
// With confirm set, the Confirmer is asked first; when declined nothing is
// sent and ok is false.
func (d *Device) ResetDevice(ctx context.Context, confirm bool) (reply string, ok bool, err error) {
	return d.rebootWith(ctx, comm.Cmd("reset"), confirm, ResetPrompt, "device NOT reset")
}

// EnableCLED permanently activates the LED lights. The device resets.
func (d *Device) EnableCLED(ctx context.Context, confirm bool) (reply string, ok bool, err error) {
	return d.rebootWith(ctx, comm.Cmd("enableCLED"), confirm, EnableCLEDPrompt, "LEDs NOT permanently enabled, device NOT reset")
}

// DisableCLED permanently deactivates the LED lights. The device resets.
func (d *Device) DisableCLED(ctx context.Context, confirm bool) (reply string, ok bool, err error) {
	return d.rebootWith(ctx, comm.Cmd("disableCLED"), confirm, DisableCLEDPrompt, "LEDs NOT permanently disabled, device NOT reset")
}

func (d *Device) rebootWith(ctx context.Context, cmd comm.Command, confirm bool, prompt, declined string) (string, bool, error) {
	if confirm && !d.confirmed(prompt) {
		d.warn("%s: %s", cmd.Opcode, declined)
		return "", false, nil
	}
	reply, err := d.do(ctx, cmd.WithClass(comm.SettleReset))
	if err != nil {
		return "", false, err
	}
	return reply, true, nil
}

// CLED returns the LED state.
func (d *Device) CLED(ctx context.Context) (LEDState, error) {
	val, err := d.queryInt(ctx, "getCLED")
	if err != nil {
		return 0, err
	}
	state := LEDState(val)
	if state != LEDEnabled && state != LEDDisabled {
		return 0, &ParseError{Command: "getCLED", Reply: fmt.Sprint(val), Err: ErrUnknownState}
	}
	return state, nil
}

// CLEDString returns the LED state as text.
func (d *Device) CLEDString(ctx context.Context) (string, error) {
	state, err := d.CLED(ctx)
	if err != nil {
		return "", err
	}
	return state.String(), nil
}

// FlashLED flashes the LED five times.
func (d *Device) FlashLED(ctx context.Context) (string, error) {
	return d.do(ctx, comm.Cmd("fld").WithClass(comm.SettleFlash))
}
