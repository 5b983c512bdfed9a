package coldplate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/coldplate.go/pkg/comm"
	fx "github.com/robotalks/coldplate.go/pkg/framework"
	"github.com/robotalks/coldplate.go/pkg/sim"
)

type recorder struct {
	lock   sync.Mutex
	events []Event
}

func (r *recorder) Report(ev Event) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) Kinds(kind EventKind) []Event {
	r.lock.Lock()
	defer r.lock.Unlock()
	var evs []Event
	for _, ev := range r.events {
		if ev.Kind == kind {
			evs = append(evs, ev)
		}
	}
	return evs
}

func newTestDevice() (*Device, *sim.ColdPlate, *recorder) {
	plate := sim.New()
	rec := &recorder{}
	dev := New(&comm.Conn{Port: plate, ReadTimeout: time.Millisecond})
	dev.Timing = Timing{
		Poll:            time.Millisecond,
		ConvergeTimeout: 500 * time.Millisecond,
		HoldTick:        time.Millisecond,
		ReportEvery:     2,
	}
	dev.Reporter = rec
	return dev, plate, rec
}

func TestInfoQueries(t *testing.T) {
	dev, plate, _ := newTestDevice()
	plate.Errors = "E1: sensor"
	ctx := context.Background()

	for _, c := range []struct {
		query  func(context.Context) (string, error)
		expect string
	}{
		{dev.Version, "1.3.2"},
		{dev.Description, "ColdPlate"},
		{dev.VersionInfo, "ColdPlate 1.3.2"},
		{dev.Info, "QInstruments ColdPlate"},
		{dev.Serial, "CP-000001"},
		{dev.ErrorList, "E1: sensor"},
	} {
		reply, err := c.query(ctx)
		require.NoError(t, err)
		require.Equal(t, c.expect, reply)
	}
	require.Equal(t, []string{"getVersion", "getDescription", "v", "info", "getSerial", "gel"}, plate.History())
}

func TestCLEDString(t *testing.T) {
	dev, plate, _ := newTestDevice()
	plate.Script("getCLED", "2", "1", "7")
	ctx := context.Background()

	s, err := dev.CLEDString(ctx)
	require.NoError(t, err)
	require.Equal(t, "LED is disabled", s)

	s, err = dev.CLEDString(ctx)
	require.NoError(t, err)
	require.Equal(t, "LED is enabled", s)

	_, err = dev.CLEDString(ctx)
	require.True(t, errors.Is(err, ErrUnknownState))
}

func TestResetDevice(t *testing.T) {
	dev, plate, rec := newTestDevice()
	ctx := context.Background()

	// no Confirmer declines.
	reply, ok, err := dev.ResetDevice(ctx, true)
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, reply)
	require.Empty(t, plate.History())
	require.Len(t, rec.Kinds(EventWarning), 1)

	var prompts []string
	dev.Confirmer = ConfirmFunc(func(prompt string) bool {
		prompts = append(prompts, prompt)
		return false
	})
	_, ok, err = dev.ResetDevice(ctx, true)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, []string{ResetPrompt}, prompts)
	require.Zero(t, plate.Resets)

	dev.Confirmer = AlwaysConfirm
	reply, ok, err = dev.ResetDevice(ctx, true)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "ok", reply)
	require.Equal(t, 1, plate.Resets)

	dev.Confirmer = NeverConfirm
	_, ok, err = dev.ResetDevice(ctx, false)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, plate.Resets)
}

func TestToggleCLED(t *testing.T) {
	dev, plate, _ := newTestDevice()
	dev.Confirmer = AlwaysConfirm
	ctx := context.Background()

	_, ok, err := dev.DisableCLED(ctx, true)
	require.NoError(t, err)
	require.True(t, ok)
	state, err := dev.CLED(ctx)
	require.NoError(t, err)
	require.Equal(t, LEDDisabled, state)

	_, ok, err = dev.EnableCLED(ctx, true)
	require.NoError(t, err)
	require.True(t, ok)
	state, err = dev.CLED(ctx)
	require.NoError(t, err)
	require.Equal(t, LEDEnabled, state)
	require.Equal(t, 2, plate.Resets)

	dev.Confirmer = NeverConfirm
	_, ok, err = dev.DisableCLED(ctx, true)
	require.NoError(t, err)
	require.False(t, ok)
	require.True(t, plate.LED)
}

func TestFlashLED(t *testing.T) {
	dev, plate, _ := newTestDevice()
	reply, err := dev.FlashLED(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ok", reply)
	require.Equal(t, []string{"fld"}, plate.History())
}

func TestParseErrors(t *testing.T) {
	dev, plate, _ := newTestDevice()
	plate.Script("gtt", "garbage")
	_, err := dev.TempTarget(context.Background())
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, "gtt", perr.Command)
	require.Equal(t, "garbage", perr.Reply)
}

func TestClosedDevice(t *testing.T) {
	dev, _, _ := newTestDevice()
	require.NoError(t, dev.Close())
	_, err := dev.Version(context.Background())
	require.True(t, errors.Is(err, comm.ErrNoPort))
}

type closingReporter struct {
	recorder
	err error
}

func (r *closingReporter) Close() error {
	return r.err
}

func TestCloseAggregates(t *testing.T) {
	dev, _, _ := newTestDevice()
	dev.Reporter = &closingReporter{err: errors.New("broker gone")}
	err := dev.Close()
	require.Error(t, err)
	require.Contains(t, err.Error(), "broker gone")
	var agg *fx.AggregatedError
	require.True(t, errors.As(err, &agg))
	require.Len(t, agg.Errors, 1)

	dev.Reporter = &closingReporter{}
	require.NoError(t, dev.Close())
}

func TestReporters(t *testing.T) {
	var a, b recorder
	var fn []Event
	r := Reporters{&a, nil, &b, ReportFunc(func(ev Event) { fn = append(fn, ev) })}
	r.Report(Event{Kind: EventWarning, Message: "x"})
	require.Len(t, a.events, 1)
	require.Len(t, b.events, 1)
	require.Len(t, fn, 1)
	require.Equal(t, "x", fn[0].String())
	require.Equal(t, "warning", EventWarning.String())
}
