package sh

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/coldplate.go/pkg/coldplate"
	"github.com/robotalks/coldplate.go/pkg/comm"
	"github.com/robotalks/coldplate.go/pkg/env"
)

func TestIsYes(t *testing.T) {
	for answer, yes := range map[string]bool{
		"y":     true,
		"Y\n":   true,
		" yes ": true,
		"n":     false,
		"":      false,
		"yep":   false,
	} {
		require.Equal(t, yes, IsYes(answer), "%q", answer)
	}
}

func TestConfirmWithoutTerminal(t *testing.T) {
	s := &Shell{}
	require.False(t, s.Confirm("continue?"))
	s.AssumeYes = true
	require.True(t, s.Confirm("continue?"))
}

type closeRecorder struct {
	closed int
}

func (r *closeRecorder) Do(context.Context, comm.Command) (comm.Response, error) {
	return nil, errors.New("not expected")
}

func (r *closeRecorder) Close() error {
	r.closed++
	return nil
}

func TestOpenClosesCurrentFirst(t *testing.T) {
	conf := env.NewConfig()
	conf.Settle = comm.Settle{}
	conf.MQTTURL = ""
	s := &Shell{Config: conf}

	current := &closeRecorder{}
	s.Device, s.PortURL = coldplate.New(current), "/dev/ttyUSB0"
	require.Error(t, s.Open("bogus://x"))
	require.Equal(t, 1, current.closed)
	require.Nil(t, s.Device)
	require.Empty(t, s.PortURL)

	require.NoError(t, s.Open("sim://"))
	require.NotNil(t, s.Device)
	require.Equal(t, "sim://", s.PortURL)
	ver, err := s.Device.Version(context.Background())
	require.NoError(t, err)
	require.Equal(t, "1.3.2", ver)

	require.NoError(t, s.Shutdown())
	require.Nil(t, s.Device)
}

func TestOutcome(t *testing.T) {
	require.Equal(t, "NOT done", Outcome{Reply: "ok"}.String())
	require.Equal(t, "OK", Outcome{OK: true}.String())
	require.Equal(t, "ok", Outcome{Reply: "ok", OK: true}.String())
}
