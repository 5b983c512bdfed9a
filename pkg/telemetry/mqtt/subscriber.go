package mqtt

import (
	"strings"

	"github.com/golang/glog"

	"github.com/robotalks/coldplate.go/pkg/telemetry/msgs"
)

// DeviceRef identifies a publishing device.
type DeviceRef struct {
	Type string
	ID   string
}

// Name returns type/id.
func (r DeviceRef) Name() string {
	return r.Type + "/" + r.ID
}

// EventHandler receives decoded events.
type EventHandler func(DeviceRef, *msgs.Event)

// MetaHandler receives device metadata. A nil meta means the device is gone.
type MetaHandler func(DeviceRef, *msgs.Meta)

// SplitDeviceTopic parses type/id/suffix.
func SplitDeviceTopic(topic string) (ref DeviceRef, suffix string, ok bool) {
	items := strings.Split(topic, "/")
	if len(items) != 3 {
		return ref, "", false
	}
	return DeviceRef{Type: items[0], ID: items[1]}, items[2], true
}

// SubscribeEvents subscribes events of all devices.
func SubscribeEvents(q *Queue, handler EventHandler) *Subscription {
	return q.Sub(DeviceTopic("+", "+", EventsTopic), EventDecoder(handler))
}

// SubscribeMeta subscribes metadata of all devices.
func SubscribeMeta(q *Queue, handler MetaHandler) *Subscription {
	return q.Sub(DeviceTopic("+", "+", MetaTopic), MetaDecoder(handler))
}

// EventDecoder adapts an EventHandler to a Handler.
func EventDecoder(handler EventHandler) Handler {
	return func(topic string, payload []byte) {
		ref, _, ok := SplitDeviceTopic(topic)
		if !ok {
			return
		}
		ev, err := msgs.DecodeEvent(payload)
		if err != nil {
			glog.Warningf("%s: bad event: %v", topic, err)
			return
		}
		handler(ref, ev)
	}
}

// MetaDecoder adapts a MetaHandler to a Handler.
func MetaDecoder(handler MetaHandler) Handler {
	return func(topic string, payload []byte) {
		ref, _, ok := SplitDeviceTopic(topic)
		if !ok {
			return
		}
		meta, err := msgs.DecodeMeta(payload)
		if err != nil {
			glog.Warningf("%s: bad meta: %v", topic, err)
			return
		}
		handler(ref, meta)
	}
}
