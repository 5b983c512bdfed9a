package msgs

import (
	"testing"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/coldplate.go/pkg/coldplate"
)

func TestEventKindsAligned(t *testing.T) {
	for _, c := range []struct {
		kind coldplate.EventKind
		wire Event_Kind
	}{
		{coldplate.EventWarning, Event_WARNING},
		{coldplate.EventReading, Event_READING},
		{coldplate.EventReached, Event_REACHED},
		{coldplate.EventTimedOut, Event_TIMED_OUT},
		{coldplate.EventHolding, Event_HOLDING},
	} {
		t.Run(c.kind.String(), func(t *testing.T) {
			require.Equal(t, c.wire, FromEvent(coldplate.Event{Kind: c.kind}).Kind)
		})
	}
}

func TestEncodeDecodeEvent(t *testing.T) {
	now := time.Unix(1700000000, 123000000)
	ev := coldplate.Event{
		Kind:        coldplate.EventHolding,
		Time:        now,
		Temperature: 34.8,
		Target:      35,
		Remaining:   90 * time.Second,
	}
	payload, err := EncodeEvent(ev)
	require.NoError(t, err)

	msg, err := DecodeEvent(payload)
	require.NoError(t, err)
	require.Equal(t, Event_HOLDING, msg.Kind)
	require.Equal(t, ev.String(), msg.Message)

	back := msg.ToEvent()
	require.True(t, now.Equal(back.Time))
	require.Equal(t, ev.Temperature, back.Temperature)
	require.Equal(t, ev.Target, back.Target)
	require.Equal(t, ev.Remaining, back.Remaining)
}

func TestDecodeMeta(t *testing.T) {
	meta, err := DecodeMeta(nil)
	require.NoError(t, err)
	require.Nil(t, meta)

	payload, err := proto.Marshal(&Meta{Description: "ColdPlate", Serial: "CP-1"})
	require.NoError(t, err)
	meta, err = DecodeMeta(payload)
	require.NoError(t, err)
	require.Equal(t, "CP-1", meta.Serial)

	_, err = DecodeEvent([]byte{0xff, 0xff})
	require.Error(t, err)
}
