package coldplate

import (
	"fmt"
	"time"

	"github.com/golang/glog"
)

// EventKind classifies an Event.
type EventKind int

// Event kinds.
const (
	EventWarning EventKind = iota + 1
	EventReading
	EventReached
	EventTimedOut
	EventHolding
)

// String implements fmt.Stringer.
func (k EventKind) String() string {
	switch k {
	case EventWarning:
		return "warning"
	case EventReading:
		return "reading"
	case EventReached:
		return "reached"
	case EventTimedOut:
		return "timed-out"
	case EventHolding:
		return "holding"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is a status record emitted by a Device.
type Event struct {
	Kind        EventKind
	Time        time.Time
	Temperature float64
	Target      float64
	Remaining   time.Duration
	Message     string
}

// String formats the event for humans.
func (e Event) String() string {
	switch e.Kind {
	case EventReading:
		return fmt.Sprintf("current temperature: %.1f °C (target %.1f °C)", e.Temperature, e.Target)
	case EventReached:
		return fmt.Sprintf("temperature reached: %.1f °C", e.Temperature)
	case EventHolding:
		return fmt.Sprintf("holding %.1f °C at %.1f °C, %v left", e.Target, e.Temperature, e.Remaining.Round(time.Second))
	default:
		return e.Message
	}
}

// Reporter receives events.
type Reporter interface {
	Report(Event)
}

// ReportFunc is func form of Reporter.
type ReportFunc func(Event)

// Report implements Reporter.
func (f ReportFunc) Report(ev Event) {
	f(ev)
}

// Reporters fans events out to multiple reporters.
type Reporters []Reporter

// Report implements Reporter.
func (r Reporters) Report(ev Event) {
	for _, reporter := range r {
		if reporter != nil {
			reporter.Report(ev)
		}
	}
}

// LogReporter writes events to glog.
type LogReporter struct{}

// Report implements Reporter.
func (LogReporter) Report(ev Event) {
	switch ev.Kind {
	case EventWarning, EventTimedOut:
		glog.Warning(ev.String())
	case EventReading:
		glog.V(1).Info(ev.String())
	default:
		glog.Info(ev.String())
	}
}
