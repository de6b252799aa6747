package stream

import (
	"encoding/json"
	"math"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oscbank/oscbank-go/pkg/oscbank"
)

const testReadWait = 2 * time.Second

// dialTestServer serves the monitor routes from an httptest listener and
// connects one WebSocket client to them.
func dialTestServer(t *testing.T, config Config) (*Server, *websocket.Conn) {
	t.Helper()
	s := New(config)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + s.config.Path
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return s, conn
}

func readHello(t *testing.T, conn *websocket.Conn) helloPayload {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(testReadWait))
	msgType, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, msgType)

	var env struct {
		Type    string       `json:"type"`
		Payload helloPayload `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &env))
	require.Equal(t, "server/hello", env.Type)
	return env.Payload
}

func readBinaryFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(testReadWait))
	msgType, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, msgType)

	frame, err := DecodeFrame(data)
	require.NoError(t, err)
	return frame
}

func TestServerHelloAnnouncesBank(t *testing.T) {
	s, conn := dialTestServer(t, Config{Name: "bench rig", Oscillators: 48})

	hello := readHello(t, conn)
	assert.Equal(t, "bench rig", hello.Name)
	assert.Equal(t, uint32(48), hello.Oscillators)
	assert.NotEmpty(t, hello.ServerID)
	assert.Equal(t, 1, s.ClientCount())
}

func TestServerBroadcastDeliversFloat32Frames(t *testing.T) {
	s, conn := dialTestServer(t, Config{Name: "test", Oscillators: 4})
	readHello(t, conn)

	u := oscbank.Uniforms{Time: 0.5, Freq: 1, OscillatorCount: 4}
	samples := make([]float32, u.OscillatorCount)
	for i := range samples {
		samples[i] = oscbank.SampleAt(uint32(i), u)
	}
	s.Broadcast(u, samples)

	frame := readBinaryFrame(t, conn)
	assert.Equal(t, FrameFloat32, frame.Type)
	assert.Equal(t, u, frame.Uniforms)
	for i := range samples {
		require.Equal(t, math.Float32bits(samples[i]), math.Float32bits(frame.Samples[i]), "index %d", i)
	}
}

func TestServerForwardsControlsToHost(t *testing.T) {
	s, conn := dialTestServer(t, Config{Name: "test", Oscillators: 4})
	readHello(t, conn)

	msg := `{"action":"freq","args":{"value":3.5}}`
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))

	select {
	case ctrl := <-s.Controls():
		assert.Equal(t, ActionFreq, ctrl.Action)
		assert.Equal(t, FreqArgs{Value: 3.5}, ctrl.Args)
	case <-time.After(testReadWait):
		t.Fatal("control never reached the host queue")
	}
}

func TestServerHalfToggleSwitchesFrameFormat(t *testing.T) {
	s, conn := dialTestServer(t, Config{Name: "test", Oscillators: 8})
	readHello(t, conn)

	// The reader handles messages in order, so once the freq command shows
	// up on the host queue the fp16 toggle before it has been applied.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"fp16","args":{"enabled":true}}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"freq","args":{"value":1}}`)))
	select {
	case <-s.Controls():
	case <-time.After(testReadWait):
		t.Fatal("control never reached the host queue")
	}

	u := oscbank.Uniforms{Time: 1.25, Freq: 1, OscillatorCount: 8}
	samples := make([]float32, u.OscillatorCount)
	for i := range samples {
		samples[i] = oscbank.SampleAt(uint32(i), u)
	}
	s.Broadcast(u, samples)

	frame := readBinaryFrame(t, conn)
	assert.Equal(t, FrameFloat16, frame.Type)
	for i := range samples {
		require.InDelta(t, float64(samples[i]), float64(frame.Samples[i]), 2.5e-4, "index %d", i)
	}
}

func TestServerBroadcastWithoutClients(t *testing.T) {
	s := New(Config{Name: "idle", Oscillators: 2})
	u := oscbank.Uniforms{Time: 0, Freq: 1, OscillatorCount: 2}
	s.Broadcast(u, []float32{0.5, 0.5})
	assert.Equal(t, 0, s.ClientCount())
}
