package mqtt

import (
	"context"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/coldplate.go/pkg/coldplate"
	"github.com/robotalks/coldplate.go/pkg/telemetry/msgs"
)

// Topic suffixes.
const (
	EventsTopic = "events"
	MetaTopic   = "meta"
)

// DefaultPublishTimeout bounds the wait for a publish acknowledgement.
const DefaultPublishTimeout = time.Second

// DeviceTopic builds the topic of a device relative to the prefix.
func DeviceTopic(deviceType, id, suffix string) string {
	return deviceType + "/" + id + "/" + suffix
}

// Sender publishes a payload to a topic relative to the prefix.
type Sender interface {
	PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token
}

// Publisher implements coldplate.Reporter by publishing events.
type Publisher struct {
	Sender  Sender
	Type    string
	ID      string
	Timeout time.Duration

	meta  *msgs.Meta
	queue *Queue
}

// NewPublisher creates a Publisher on a new MQTT connection. The broker
// clears the retained metadata if the connection drops.
func NewPublisher(brokerURL, deviceType, id string) (*Publisher, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+DeviceTopic(deviceType, id, MetaTopic), nil, 1, true)
	p := &Publisher{Type: deviceType, ID: id, Timeout: DefaultPublishTimeout}
	p.queue = NewQueue(opts, topicPrefix)
	p.queue.OnConnect = func(*Queue) { p.publishMeta() }
	p.Sender = p.queue
	return p, nil
}

// Connect connects to the broker.
func (p *Publisher) Connect(ctx context.Context) error {
	if p.queue == nil {
		return nil
	}
	token := p.queue.Connect()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-waitToken(token):
		if err := token.Error(); err != nil {
			return fmt.Errorf("connect MQTT broker: %w", err)
		}
		return nil
	}
}

// SetMeta publishes retained device metadata.
func (p *Publisher) SetMeta(meta *msgs.Meta) {
	p.meta = meta
	p.publishMeta()
}

// Report implements coldplate.Reporter.
func (p *Publisher) Report(ev coldplate.Event) {
	payload, err := msgs.EncodeEvent(ev)
	if err != nil {
		glog.Errorf("encode event: %v", err)
		return
	}
	if err := p.publish(EventsTopic, payload, false); err != nil {
		glog.Warningf("publish event: %v", err)
	}
}

// Close clears the retained metadata and disconnects.
func (p *Publisher) Close() error {
	err := p.publish(MetaTopic, nil, true)
	if p.queue != nil {
		p.queue.Close()
	}
	return err
}

func (p *Publisher) publishMeta() {
	if p.meta == nil {
		return
	}
	payload, err := proto.Marshal(p.meta)
	if err != nil {
		glog.Errorf("encode meta: %v", err)
		return
	}
	if err := p.publish(MetaTopic, payload, true); err != nil {
		glog.Warningf("publish meta: %v", err)
	}
}

func (p *Publisher) publish(suffix string, payload []byte, retain bool) error {
	var qos byte
	if retain {
		qos = 1
	}
	token := p.Sender.PubWith(DeviceTopic(p.Type, p.ID, suffix), payload, qos, retain)
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("publish %s: timeout", suffix)
	}
	return token.Error()
}

func waitToken(token paho.Token) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		token.Wait()
		close(ch)
	}()
	return ch
}
