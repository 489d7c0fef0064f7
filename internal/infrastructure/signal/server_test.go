package signal

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"telecare/pkg/config"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.DefaultConfig()
	server := NewServer(cfg, zap.NewNop().Sugar(), testMetrics, nil)
	ts := httptest.NewServer(http.HandlerFunc(server.HandleWebSocket))
	t.Cleanup(ts.Close)
	return server, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendJSON(t *testing.T, conn *websocket.Conn, v interface{}) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(v))
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func join(t *testing.T, conn *websocket.Conn, roomID, userID string) {
	t.Helper()
	sendJSON(t, conn, map[string]string{"type": "join", "roomId": roomID, "userId": userID})
}

func TestTwoPartyCallSetup(t *testing.T) {
	_, ts := newTestServer(t)

	x := dial(t, ts)
	join(t, x, "r1", "X")

	status := readFrame(t, x)
	assert.Equal(t, "room-status", status["type"])
	assert.Equal(t, []interface{}{"X"}, status["users"])

	y := dial(t, ts)
	join(t, y, "r1", "Y")

	assert.Equal(t, "user-joined", readFrame(t, x)["type"])
	status = readFrame(t, x)
	assert.Equal(t, "room-status", status["type"])
	assert.Equal(t, []interface{}{"X", "Y"}, status["users"])
	assert.Equal(t, "room-ready", readFrame(t, x)["type"])

	assert.Equal(t, "room-status", readFrame(t, y)["type"])
	assert.Equal(t, "room-ready", readFrame(t, y)["type"])
}

func TestThirdJoinerRejected(t *testing.T) {
	_, ts := newTestServer(t)

	x := dial(t, ts)
	join(t, x, "r1", "X")
	readFrame(t, x) // room-status
	y := dial(t, ts)
	join(t, y, "r1", "Y")
	readFrame(t, y) // room-status

	z := dial(t, ts)
	join(t, z, "r1", "Z")

	errFrame := readFrame(t, z)
	assert.Equal(t, "error", errFrame["type"])
	assert.Equal(t, "Room is full", errFrame["message"])

	// The rejected connection is still usable
	sendJSON(t, z, map[string]string{"type": "keepalive"})
	assert.Equal(t, "keepalive-ack", readFrame(t, z)["type"])
}

func TestOfferForwarding(t *testing.T) {
	_, ts := newTestServer(t)

	x := dial(t, ts)
	join(t, x, "r1", "X")
	readFrame(t, x) // room-status

	y := dial(t, ts)
	join(t, y, "r1", "Y")
	readFrame(t, x) // user-joined
	readFrame(t, x) // room-status
	readFrame(t, x) // room-ready
	readFrame(t, y) // room-status
	readFrame(t, y) // room-ready

	sendJSON(t, x, map[string]interface{}{
		"type":         "offer",
		"roomId":       "r1",
		"userId":       "someone-else", // must be overridden
		"targetUserId": "Y",
		"sdp":          "v=0 fake sdp",
	})

	got := readFrame(t, y)
	assert.Equal(t, "offer", got["type"])
	assert.Equal(t, "X", got["userId"])
	assert.Equal(t, "v=0 fake sdp", got["sdp"])
}

func TestProtocolErrors(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{ not json")))
	errFrame := readFrame(t, conn)
	assert.Equal(t, "error", errFrame["type"])
	assert.Equal(t, "Invalid JSON format", errFrame["message"])

	sendJSON(t, conn, map[string]string{"type": "frobnicate"})
	errFrame = readFrame(t, conn)
	assert.Equal(t, "error", errFrame["type"])
	assert.Equal(t, "Invalid message type", errFrame["message"])

	// Malformed input never closes the connection
	sendJSON(t, conn, map[string]string{"type": "keepalive"})
	assert.Equal(t, "keepalive-ack", readFrame(t, conn)["type"])
}

func TestForwardBeforeJoin(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)

	sendJSON(t, conn, map[string]string{"type": "offer", "roomId": "r1", "targetUserId": "Y"})
	errFrame := readFrame(t, conn)
	assert.Equal(t, "error", errFrame["type"])
	assert.Equal(t, "Not in a room", errFrame["message"])
}

func TestSecondJoinRejected(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)

	join(t, conn, "r1", "X")
	readFrame(t, conn) // room-status

	join(t, conn, "r2", "X")
	errFrame := readFrame(t, conn)
	assert.Equal(t, "error", errFrame["type"])
	assert.Equal(t, "Already in a room", errFrame["message"])
}

func TestJoinRequiresIdentifiers(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)

	sendJSON(t, conn, map[string]string{"type": "join", "roomId": "r1"})
	errFrame := readFrame(t, conn)
	assert.Equal(t, "error", errFrame["type"])
}

func TestDisconnectCleansUpRoom(t *testing.T) {
	server, ts := newTestServer(t)

	x := dial(t, ts)
	join(t, x, "r1", "X")
	readFrame(t, x)

	y := dial(t, ts)
	join(t, y, "r1", "Y")
	readFrame(t, x) // user-joined
	readFrame(t, x) // room-status
	readFrame(t, x) // room-ready

	y.Close()

	notice := readFrame(t, x)
	assert.Equal(t, "user-disconnected", notice["type"])
	assert.Equal(t, "Y", notice["userId"])

	x.Close()
	assert.Eventually(t, func() bool {
		return server.Registry().Count() == 0
	}, 2*time.Second, 10*time.Millisecond, "room should be deleted once empty")
}

func TestDisconnectBeforeJoin(t *testing.T) {
	server, ts := newTestServer(t)

	conn := dial(t, ts)
	conn.Close()

	assert.Eventually(t, func() bool {
		return server.Registry().Count() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestReconnectSupersedesConnection(t *testing.T) {
	_, ts := newTestServer(t)

	old := dial(t, ts)
	join(t, old, "r1", "X")
	readFrame(t, old) // room-status

	replacement := dial(t, ts)
	join(t, replacement, "r1", "X")

	status := readFrame(t, replacement)
	assert.Equal(t, "room-status", status["type"])
	assert.Equal(t, []interface{}{"X"}, status["users"])

	// The superseded connection is closed by the server
	old.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := old.ReadMessage()
	assert.Error(t, err)

	// The seat survives the old handle's death: a peer can still join
	y := dial(t, ts)
	join(t, y, "r1", "Y")
	assert.Equal(t, "room-status", readFrame(t, y)["type"])
	assert.Equal(t, "room-ready", readFrame(t, y)["type"])
}

func TestForwardWithoutPeerIsSilent(t *testing.T) {
	_, ts := newTestServer(t)

	x := dial(t, ts)
	join(t, x, "r1", "X")
	readFrame(t, x)

	y := dial(t, ts)
	join(t, y, "r1", "Y")
	readFrame(t, y) // room-status
	readFrame(t, y) // room-ready

	x.Close()
	notice := readFrame(t, y)
	assert.Equal(t, "user-disconnected", notice["type"])
	assert.Equal(t, "X", notice["userId"])

	// Forwarding with no peer left is a silent no-op, not an error
	sendJSON(t, y, map[string]interface{}{"type": "candidate", "candidate": "c"})
	sendJSON(t, y, map[string]string{"type": "keepalive"})
	assert.Equal(t, "keepalive-ack", readFrame(t, y)["type"])
}

func TestHealthEndpoint(t *testing.T) {
	cfg := config.DefaultConfig()
	server := NewServer(cfg, zap.NewNop().Sugar(), testMetrics, nil)

	ts := httptest.NewServer(http.HandlerFunc(server.handleHealth))
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}
