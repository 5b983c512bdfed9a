package coldplate

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/robotalks/coldplate.go/pkg/comm"
	fx "github.com/robotalks/coldplate.go/pkg/framework"
	"github.com/robotalks/coldplate.go/pkg/port"
)

// Transactor executes a single command and returns its reply.
// Implementations must not run commands concurrently.
type Transactor interface {
	Do(context.Context, comm.Command) (comm.Response, error)
	Close() error
}

// Timing defines the cadence of the temperature loops.
type Timing struct {
	// Poll is the interval between reads while converging.
	Poll time.Duration `yaml:"poll"`
	// ConvergeTimeout is the ceiling of a convergence.
	ConvergeTimeout time.Duration `yaml:"converge_timeout"`
	// HoldTick is the interval between setpoint re-assertions while holding.
	HoldTick time.Duration `yaml:"hold_tick"`
	// ReportEvery emits a holding event every that many ticks, 0 disables it.
	ReportEvery int `yaml:"report_every"`
}

// DefaultTiming returns the timing used with a real device.
func DefaultTiming() Timing {
	return Timing{
		Poll:            100 * time.Millisecond,
		ConvergeTimeout: 5 * time.Minute,
		HoldTick:        time.Second,
		ReportEvery:     10,
	}
}

// DefaultDelta is the default tolerance band in °C.
const DefaultDelta = 1.0

// Device is a ColdPlate controller. It owns its connection.
type Device struct {
	Conn      Transactor
	Timing    Timing
	Confirmer Confirmer
	Reporter  Reporter
}

// New creates a Device over an established connection.
func New(conn Transactor) *Device {
	return &Device{
		Conn:     conn,
		Timing:   DefaultTiming(),
		Reporter: LogReporter{},
	}
}

// Open opens the port and creates a Device.
func Open(portURL string) (*Device, error) {
	p, err := port.Open(portURL)
	if err != nil {
		return nil, err
	}
	return New(comm.NewConn(p)), nil
}

// Close closes the connection, and the Reporter if it is an io.Closer.
func (d *Device) Close() error {
	var errs fx.AggregatedError
	errs.Add(d.Conn.Close())
	if closer, ok := d.Reporter.(io.Closer); ok {
		errs.Add(closer.Close())
	}
	return errs.Aggregate()
}

func (d *Device) do(ctx context.Context, cmd comm.Command) (string, error) {
	resp, err := d.Conn.Do(ctx, cmd)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (d *Device) queryFloat(ctx context.Context, opcode string) (float64, error) {
	reply, err := d.do(ctx, comm.Cmd(opcode))
	if err != nil {
		return 0, err
	}
	val, err := strconv.ParseFloat(reply, 64)
	if err != nil {
		return 0, &ParseError{Command: opcode, Reply: reply, Err: err}
	}
	return val, nil
}

func (d *Device) queryInt(ctx context.Context, opcode string) (int, error) {
	reply, err := d.do(ctx, comm.Cmd(opcode))
	if err != nil {
		return 0, err
	}
	val, err := strconv.Atoi(reply)
	if err != nil {
		return 0, &ParseError{Command: opcode, Reply: reply, Err: err}
	}
	return val, nil
}

func (d *Device) report(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	if d.Reporter != nil {
		d.Reporter.Report(ev)
	}
}

func (d *Device) warn(format string, args ...interface{}) {
	d.report(Event{Kind: EventWarning, Message: fmt.Sprintf(format, args...)})
}

func (d *Device) confirmed(prompt string) bool {
	if d.Confirmer == nil {
		return false
	}
	return d.Confirmer.Confirm(prompt)
}

func sleep(ctx context.Context, dur time.Duration) error {
	if dur <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(dur)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
