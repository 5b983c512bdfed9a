package selftest

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/coldplate.go/pkg/coldplate"
	"github.com/robotalks/coldplate.go/pkg/comm"
	"github.com/robotalks/coldplate.go/pkg/sim"
)

type buffer struct {
	bytes.Buffer
}

func (b *buffer) Printf(format string, args ...interface{}) {
	fmt.Fprintf(&b.Buffer, format, args...)
}

func newTest(answers map[string]bool) (*Test, *sim.ColdPlate, *buffer) {
	plate := sim.New()
	plate.Step = 2
	dev := coldplate.New(&comm.Conn{Port: plate})
	dev.Reporter = nil
	dev.Confirmer = coldplate.AlwaysConfirm
	dev.Timing = coldplate.Timing{
		Poll:            time.Millisecond,
		ConvergeTimeout: time.Second,
		HoldTick:        time.Millisecond,
		ReportEvery:     10,
	}
	out := &buffer{}
	return &Test{
		Device: dev,
		Out:    out,
		Ask:    func(prompt string) bool { return answers[prompt] },
		Options: Options{
			ChangeTo: 30,
			HoldAt:   35,
			HoldFor:  20 * time.Millisecond,
			Delta:    1,
		},
	}, plate, out
}

func TestSkipAll(t *testing.T) {
	test, plate, out := newTest(nil)
	require.NoError(t, test.Run(context.Background()))
	require.Empty(t, plate.History())
	require.Zero(t, out.Len())
}

func TestInitialization(t *testing.T) {
	test, plate, out := newTest(map[string]bool{"run initialization tests?": true})
	require.NoError(t, test.Run(context.Background()))
	require.Equal(t, []string{
		"getVersion", "getDescription", "v", "info", "getSerial",
		"reset", "gel", "getCLED", "disableCLED", "enableCLED", "getCLED", "fld",
	}, plate.History())
	require.Equal(t, 3, plate.Resets)
	require.True(t, plate.LED)
	require.Contains(t, out.String(), "Serial Number: CP-000001")
	require.Contains(t, out.String(), "LED is enabled")
}

func TestInitializationLEDStaysOff(t *testing.T) {
	test, plate, out := newTest(map[string]bool{"run initialization tests?": true})
	plate.LED = false
	test.Device.Confirmer = coldplate.ConfirmFunc(func(prompt string) bool {
		return prompt == coldplate.ResetPrompt
	})
	require.NoError(t, test.Run(context.Background()))
	require.Zero(t, plate.Count("fld"))
	require.Contains(t, out.String(), "LED flashing will not be tested")
}

func TestTemperature(t *testing.T) {
	test, plate, out := newTest(map[string]bool{"test temperature control?": true})
	plate.Control = true
	test.Options.ControlPause = time.Millisecond
	require.NoError(t, test.Run(context.Background()))
	require.Equal(t, 3, plate.Count("toff"))
	require.Equal(t, 35.0, plate.Target)
	require.Contains(t, out.String(), "Temperature Control: off")
	require.Contains(t, out.String(), "Change reached")
	require.Contains(t, out.String(), "Running test on holding the temperature to 35.0 °C")
	require.Contains(t, out.String(), "Hold reached")
}

func TestTemperatureHoldTimedOut(t *testing.T) {
	test, plate, out := newTest(map[string]bool{"test temperature control?": true})
	plate.Step = 0
	test.Device.Timing.ConvergeTimeout = 10 * time.Millisecond
	require.NoError(t, test.Run(context.Background()))
	require.Contains(t, out.String(), "Change timed-out")
	require.Contains(t, out.String(), "Hold timed-out")
}
