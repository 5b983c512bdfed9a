package port

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

func readUntil(t *testing.T, p Port, want string) string {
	var got []byte
	buf := make([]byte, 16)
	deadline := time.Now().Add(2 * time.Second)
	for len(got) < len(want) && time.Now().Before(deadline) {
		n, err := p.Read(buf)
		require.NoError(t, err)
		got = append(got, buf[:n]...)
	}
	return string(got)
}

func TestWebsocketPort(t *testing.T) {
	srv := httptest.NewServer(websocket.Handler(func(ws *websocket.Conn) {
		ws.PayloadType = websocket.BinaryFrame
		buf := make([]byte, 64)
		for {
			n, err := ws.Read(buf)
			if err != nil {
				return
			}
			cmd := string(buf[:n])
			if cmd == "gta\r" {
				// reply split across frames with a pause longer than the read timeout.
				ws.Write([]byte("12."))
				time.Sleep(50 * time.Millisecond)
				ws.Write([]byte("5\r\n"))
				continue
			}
			ws.Write([]byte("re:" + cmd + "\n"))
		}
	}))
	defer srv.Close()

	p, err := Open("ws" + strings.TrimPrefix(srv.URL, "http"))
	require.NoError(t, err)
	defer p.Close()
	require.IsType(t, &WebsocketPort{}, p)

	require.NoError(t, p.SetReadTimeout(500*time.Millisecond))
	_, err = p.Write([]byte("gtt\r"))
	require.NoError(t, err)
	require.Equal(t, "re:gtt\r\n", readUntil(t, p, "re:gtt\r\n"))

	// timed out reads leave the stream intact.
	require.NoError(t, p.SetReadTimeout(10*time.Millisecond))
	_, err = p.Write([]byte("gta\r"))
	require.NoError(t, err)
	var got []byte
	buf := make([]byte, 16)
	timeouts := 0
	for len(got) < len("12.5\r\n") && timeouts < 100 {
		n, err := p.Read(buf)
		require.NoError(t, err)
		if n == 0 {
			timeouts++
		}
		got = append(got, buf[:n]...)
	}
	require.NotZero(t, timeouts)
	require.Equal(t, "12.5\r\n", string(got))

	_, err = p.Write([]byte("gtt\r"))
	require.NoError(t, err)
	require.Equal(t, "re:gtt\r\n", readUntil(t, p, "re:gtt\r\n"))

	// pending bytes are discarded.
	_, err = p.Write([]byte("x\r"))
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, p.ResetInputBuffer())
	n, err := p.Read(buf)
	require.NoError(t, err)
	require.Zero(t, n)
}
