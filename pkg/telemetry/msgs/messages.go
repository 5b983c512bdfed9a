// Package msgs defines the telemetry messages published by a controller.
// The wire schema is event.proto.
package msgs

import (
	"time"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/coldplate.go/pkg/coldplate"
)

// Event_Kind mirrors coldplate.EventKind on the wire.
type Event_Kind int32

// Event kinds.
const (
	Event_UNKNOWN   Event_Kind = 0
	Event_WARNING   Event_Kind = 1
	Event_READING   Event_Kind = 2
	Event_REACHED   Event_Kind = 3
	Event_TIMED_OUT Event_Kind = 4
	Event_HOLDING   Event_Kind = 5
)

var eventKindName = map[int32]string{
	0: "UNKNOWN",
	1: "WARNING",
	2: "READING",
	3: "REACHED",
	4: "TIMED_OUT",
	5: "HOLDING",
}

var eventKindValue = map[string]int32{
	"UNKNOWN":   0,
	"WARNING":   1,
	"READING":   2,
	"REACHED":   3,
	"TIMED_OUT": 4,
	"HOLDING":   5,
}

func (k Event_Kind) String() string {
	return proto.EnumName(eventKindName, int32(k))
}

// Event is a controller event.
type Event struct {
	Kind         Event_Kind `protobuf:"varint,1,opt,name=kind,proto3,enum=coldplate.telemetry.v1.Event_Kind" json:"kind,omitempty"`
	TimeUnixNano int64      `protobuf:"varint,2,opt,name=time_unix_nano,json=timeUnixNano,proto3" json:"time_unix_nano,omitempty"`
	Temperature  float64    `protobuf:"fixed64,3,opt,name=temperature,proto3" json:"temperature,omitempty"`
	Target       float64    `protobuf:"fixed64,4,opt,name=target,proto3" json:"target,omitempty"`
	RemainingMs  int64      `protobuf:"varint,5,opt,name=remaining_ms,json=remainingMs,proto3" json:"remaining_ms,omitempty"`
	Message      string     `protobuf:"bytes,6,opt,name=message,proto3" json:"message,omitempty"`
}

func (m *Event) Reset()         { *m = Event{} }
func (m *Event) String() string { return proto.CompactTextString(m) }
func (*Event) ProtoMessage()    {}

// Meta describes the publishing device. It is retained by the broker.
type Meta struct {
	Description string `protobuf:"bytes,1,opt,name=description,proto3" json:"description,omitempty"`
	Version     string `protobuf:"bytes,2,opt,name=version,proto3" json:"version,omitempty"`
	Serial      string `protobuf:"bytes,3,opt,name=serial,proto3" json:"serial,omitempty"`
	Port        string `protobuf:"bytes,4,opt,name=port,proto3" json:"port,omitempty"`
}

func (m *Meta) Reset()         { *m = Meta{} }
func (m *Meta) String() string { return proto.CompactTextString(m) }
func (*Meta) ProtoMessage()    {}

func init() {
	proto.RegisterEnum("coldplate.telemetry.v1.Event_Kind", eventKindName, eventKindValue)
	proto.RegisterType((*Event)(nil), "coldplate.telemetry.v1.Event")
	proto.RegisterType((*Meta)(nil), "coldplate.telemetry.v1.Meta")
}

// FromEvent converts a controller event.
func FromEvent(ev coldplate.Event) *Event {
	msg := &Event{
		Kind:        Event_Kind(ev.Kind),
		Temperature: ev.Temperature,
		Target:      ev.Target,
		RemainingMs: int64(ev.Remaining / time.Millisecond),
		Message:     ev.Message,
	}
	if !ev.Time.IsZero() {
		msg.TimeUnixNano = ev.Time.UnixNano()
	}
	if msg.Message == "" {
		msg.Message = ev.String()
	}
	return msg
}

// ToEvent converts back to a controller event.
func (m *Event) ToEvent() coldplate.Event {
	ev := coldplate.Event{
		Kind:        coldplate.EventKind(m.Kind),
		Temperature: m.Temperature,
		Target:      m.Target,
		Remaining:   time.Duration(m.RemainingMs) * time.Millisecond,
		Message:     m.Message,
	}
	if m.TimeUnixNano != 0 {
		ev.Time = time.Unix(0, m.TimeUnixNano)
	}
	return ev
}

// EncodeEvent serializes a controller event.
func EncodeEvent(ev coldplate.Event) ([]byte, error) {
	return proto.Marshal(FromEvent(ev))
}

// DecodeEvent parses a serialized event.
func DecodeEvent(payload []byte) (*Event, error) {
	var msg Event
	if err := proto.Unmarshal(payload, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DecodeMeta parses serialized metadata. An empty payload yields nil,
// meaning the device went offline.
func DecodeMeta(payload []byte) (*Meta, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	var msg Meta
	if err := proto.Unmarshal(payload, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
