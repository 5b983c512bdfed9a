package sim

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func transact(t *testing.T, c *ColdPlate, cmd string) string {
	_, err := io.WriteString(c, cmd+"\r")
	require.NoError(t, err)
	buf := make([]byte, 64)
	n, err := c.Read(buf)
	require.NoError(t, err)
	return string(buf[:n])
}

func TestSplitCommand(t *testing.T) {
	testCases := []struct {
		cmd, op, arg string
	}{
		{"gtt", "gtt", ""},
		{"stt350", "stt", "350"},
		{"stt-55", "stt", "-55"},
		{"stlmax999", "stlmax", "999"},
		{"v", "v", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.cmd, func(t *testing.T) {
			op, arg := SplitCommand(tc.cmd)
			require.Equal(t, tc.op, op)
			require.Equal(t, tc.arg, arg)
		})
	}
}

func TestSetpointClampedToLimiter(t *testing.T) {
	c := New()
	c.LimiterMax = 40
	require.Equal(t, "ok\r\n", transact(t, c, "stt455"))
	require.Equal(t, "40.0\r\n", transact(t, c, "gtt"))
	require.Equal(t, "ok\r\n", transact(t, c, "stt-350"))
	require.Equal(t, "-20.0\r\n", transact(t, c, "gtt"))
}

func TestActualApproachesTarget(t *testing.T) {
	c := New()
	c.Actual, c.Target, c.Step = 20, 21, 0.5
	require.Equal(t, "20.0\r\n", transact(t, c, "gta"))
	transact(t, c, "ton")
	require.Equal(t, "20.5\r\n", transact(t, c, "gta"))
	require.Equal(t, "21.0\r\n", transact(t, c, "gta"))
	require.Equal(t, "21.0\r\n", transact(t, c, "gta"))
}

func TestScriptedReplies(t *testing.T) {
	c := New().Script("gta", "32.0", "31.0")
	require.Equal(t, "32.0\r\n", transact(t, c, "gta"))
	require.Equal(t, "31.0\r\n", transact(t, c, "gta"))
	require.Equal(t, "22.0\r\n", transact(t, c, "gta"))
	require.Equal(t, 3, c.Count("gta"))
}

func TestLEDToggleReboots(t *testing.T) {
	c := New()
	c.Control = true
	require.Equal(t, "1\r\n", transact(t, c, "getCLED"))
	transact(t, c, "disableCLED")
	require.Equal(t, "2\r\n", transact(t, c, "getCLED"))
	require.Equal(t, 1, c.Resets)
	require.False(t, c.Control)
}

func TestClosed(t *testing.T) {
	c := New()
	require.NoError(t, c.Close())
	_, err := c.Write([]byte("gtt\r"))
	require.Equal(t, ErrClosed, err)
}
