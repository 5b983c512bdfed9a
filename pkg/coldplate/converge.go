package coldplate

import (
	"context"
	"fmt"
	"time"
)

// Status is the outcome of a convergence.
type Status int

// Convergence outcomes.
const (
	StatusReached Status = iota + 1
	StatusTimedOut
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusReached:
		return "reached"
	case StatusTimedOut:
		return "timed-out"
	default:
		return "unknown"
	}
}

// Converge summarizes a ChangeTemp call.
type Converge struct {
	Status      Status
	Temperature float64
	Polls       int
	Elapsed     time.Duration
}

// Reached indicates the temperature entered the tolerance band.
func (c Converge) Reached() bool {
	return c.Status == StatusReached
}

// Hold summarizes a HoldTemp call. Status is StatusTimedOut if the
// initial convergence or any re-convergence timed out.
type Hold struct {
	Status      Status
	Ticks       int
	Reconverged int
	TimedOut    int
	Temperature float64
	Elapsed     time.Duration
}

// Reached indicates every convergence reached the tolerance band.
func (h Hold) Reached() bool {
	return h.Status == StatusReached
}

// String implements fmt.Stringer.
func (h Hold) String() string {
	return fmt.Sprintf("%s: held %v at %.1f °C, %d ticks, re-converged %d times, %d timed out",
		h.Status, h.Elapsed.Round(time.Millisecond), h.Temperature, h.Ticks, h.Reconverged, h.TimedOut)
}

func (h *Hold) add(c Converge) {
	if c.Status == StatusTimedOut {
		h.TimedOut++
		h.Status = StatusTimedOut
	}
}

// ChangeTemp drives the plate to value ± delta °C.
//
// The value must lie within the limiter band, otherwise a *RangeError is
// returned before any command changing the setpoint is sent. Control is
// switched on if needed, the setpoint written, and the actual temperature
// polled until it enters the band, at which point control is switched off.
// If Timing.ConvergeTimeout elapses first the result is StatusTimedOut.
func (d *Device) ChangeTemp(ctx context.Context, value, delta float64) (Converge, error) {
	if err := d.checkLimiter(ctx, value); err != nil {
		return Converge{}, err
	}
	if err := d.ensureControl(ctx); err != nil {
		return Converge{}, err
	}
	if _, _, err := d.SetTempTarget(ctx, value); err != nil {
		return Converge{}, err
	}
	return d.converge(ctx, value, delta)
}

func (d *Device) converge(ctx context.Context, value, delta float64) (res Converge, err error) {
	start := time.Now()
	for time.Since(start) < d.Timing.ConvergeTimeout {
		actual, err := d.TempActual(ctx)
		if err != nil {
			return res, err
		}
		res.Polls++
		res.Temperature = actual
		if actual <= value+delta && actual >= value-delta {
			d.report(Event{Kind: EventReached, Temperature: actual, Target: value})
			if _, err := d.TempOff(ctx); err != nil {
				return res, err
			}
			res.Status, res.Elapsed = StatusReached, time.Since(start)
			return res, nil
		}
		d.report(Event{Kind: EventReading, Temperature: actual, Target: value})
		if err := sleep(ctx, d.Timing.Poll); err != nil {
			return res, err
		}
	}
	res.Status, res.Elapsed = StatusTimedOut, time.Since(start)
	d.report(Event{
		Kind:        EventTimedOut,
		Temperature: res.Temperature,
		Target:      value,
		Message:     fmt.Sprintf("%.1f °C not reached within %v, last reading %.1f °C", value, d.Timing.ConvergeTimeout, res.Temperature),
	})
	return res, nil
}

// HoldTemp converges to value and holds it for runtime.
//
// Every Timing.HoldTick the setpoint is written again, as the device may
// have been reset meanwhile, and the plate re-converges when it falls
// below value - delta. A timed-out convergence doesn't abort the hold but
// is reflected in the returned Status. The loop is bounded by wall-clock time, so the
// last tick may overrun runtime slightly.
func (d *Device) HoldTemp(ctx context.Context, value float64, runtime time.Duration, delta float64) (res Hold, err error) {
	var conv Converge
	if conv, err = d.ChangeTemp(ctx, value, delta); err != nil {
		return
	}
	res.Status, res.Temperature = StatusReached, conv.Temperature
	res.add(conv)

	start := time.Now()
	for tick := 1; time.Since(start) < runtime; tick++ {
		if _, _, err = d.SetTempTarget(ctx, value); err != nil {
			return
		}
		var actual float64
		if actual, err = d.TempActual(ctx); err != nil {
			return
		}
		res.Ticks, res.Temperature = tick, actual
		if actual < value-delta {
			res.Reconverged++
			if conv, err = d.ChangeTemp(ctx, value, delta); err != nil {
				return
			}
			res.add(conv)
		}
		if every := d.Timing.ReportEvery; every > 0 && tick%every == 0 {
			remaining := runtime - time.Since(start)
			if remaining < 0 {
				remaining = 0
			}
			d.report(Event{Kind: EventHolding, Temperature: actual, Target: value, Remaining: remaining})
		}
		if err = sleep(ctx, d.Timing.HoldTick); err != nil {
			return
		}
	}
	res.Elapsed = time.Since(start)
	return
}

func (d *Device) checkLimiter(ctx context.Context, value float64) error {
	min, err := d.TempLimiterMin(ctx)
	if err != nil {
		return err
	}
	max, err := d.TempLimiterMax(ctx)
	if err != nil {
		return err
	}
	if value < min || value > max {
		return &RangeError{Value: value, Min: min, Max: max}
	}
	return nil
}

func (d *Device) ensureControl(ctx context.Context) error {
	state, err := d.TempState(ctx)
	if err != nil {
		return err
	}
	if !state.Enabled() {
		_, err = d.TempOn(ctx)
	}
	return err
}
