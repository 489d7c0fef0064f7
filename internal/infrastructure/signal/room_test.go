package signal

import (
	"encoding/json"
	"testing"
	"time"

	"telecare/internal/core/domain"
	"telecare/internal/infrastructure/monitoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// One collector per test binary; promauto panics on duplicate registration.
var testMetrics = monitoring.NewPrometheusCollector()

func newTestClient(id string) *Client {
	return newClient(id, nil, zap.NewNop().Sugar(), clientOptions{
		writeTimeout: time.Second,
		pingInterval: time.Minute,
		pongTimeout:  2 * time.Minute,
		maxFrameSize: 64 * 1024,
		queueSize:    16,
	})
}

func newTestRoom(id string) *Room {
	return newRoom(domain.RoomID(id), zap.NewNop().Sugar(), testMetrics)
}

// takeFrame pops the next queued outbound frame for a client.
func takeFrame(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case data := <-c.send:
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &m))
		return m
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
		return nil
	}
}

func assertNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Fatalf("unexpected frame: %s", data)
	default:
	}
}

func TestRoomAddNotificationOrder(t *testing.T) {
	room := newTestRoom("r1")
	x := newTestClient("cx")
	y := newTestClient("cy")

	require.NoError(t, room.Add(x, "X"))

	status := takeFrame(t, x)
	assert.Equal(t, "room-status", status["type"])
	assert.Equal(t, []interface{}{"X"}, status["users"])
	assertNoFrame(t, x)

	require.NoError(t, room.Add(y, "Y"))

	joined := takeFrame(t, x)
	assert.Equal(t, "user-joined", joined["type"])
	assert.Equal(t, "Y", joined["userId"])

	status = takeFrame(t, x)
	assert.Equal(t, "room-status", status["type"])
	assert.Equal(t, []interface{}{"X", "Y"}, status["users"])

	ready := takeFrame(t, x)
	assert.Equal(t, "room-ready", ready["type"])
	assert.Equal(t, []interface{}{"X", "Y"}, ready["users"])
	assertNoFrame(t, x)

	assert.Equal(t, "room-status", takeFrame(t, y)["type"])
	assert.Equal(t, "room-ready", takeFrame(t, y)["type"])
	assertNoFrame(t, y)
}

func TestRoomCapacity(t *testing.T) {
	room := newTestRoom("r1")
	x := newTestClient("cx")
	y := newTestClient("cy")
	z := newTestClient("cz")

	require.NoError(t, room.Add(x, "X"))
	require.NoError(t, room.Add(y, "Y"))

	err := room.Add(z, "Z")
	assert.ErrorIs(t, err, domain.ErrRoomFull)
	assert.Equal(t, []string{"X", "Y"}, room.Users())
	assertNoFrame(t, z)

	// Existing pair sees nothing from the rejected join
	drainFrames(x)
	drainFrames(y)
	assertNoFrame(t, x)
	assertNoFrame(t, y)
}

func drainFrames(c *Client) {
	for {
		select {
		case <-c.send:
		default:
			return
		}
	}
}

func TestForwardTargetedOverridesSender(t *testing.T) {
	room := newTestRoom("r1")
	x := newTestClient("cx")
	y := newTestClient("cy")
	require.NoError(t, room.Add(x, "X"))
	require.NoError(t, room.Add(y, "Y"))
	drainFrames(x)
	drainFrames(y)

	// Sender claims to be Y; the relay must stamp the true identity
	env, err := ParseEnvelope([]byte(`{"type":"offer","roomId":"r1","userId":"Y","targetUserId":"Y","sdp":"v=0...","custom":{"a":1}}`))
	require.NoError(t, err)

	room.Forward("X", env)

	got := takeFrame(t, y)
	assert.Equal(t, "offer", got["type"])
	assert.Equal(t, "X", got["userId"])
	assert.Equal(t, "v=0...", got["sdp"])
	assert.Equal(t, map[string]interface{}{"a": float64(1)}, got["custom"])
	assertNoFrame(t, x)
}

func TestForwardBroadcastSkipsSender(t *testing.T) {
	room := newTestRoom("r1")
	x := newTestClient("cx")
	y := newTestClient("cy")
	require.NoError(t, room.Add(x, "X"))
	require.NoError(t, room.Add(y, "Y"))
	drainFrames(x)
	drainFrames(y)

	env, err := ParseEnvelope([]byte(`{"type":"candidate","candidate":"cand"}`))
	require.NoError(t, err)

	room.Forward("X", env)

	got := takeFrame(t, y)
	assert.Equal(t, "candidate", got["type"])
	assert.Equal(t, "X", got["userId"])
	assertNoFrame(t, x)
}

func TestForwardUnknownTargetDropped(t *testing.T) {
	room := newTestRoom("r1")
	x := newTestClient("cx")
	y := newTestClient("cy")
	require.NoError(t, room.Add(x, "X"))
	require.NoError(t, room.Add(y, "Y"))
	drainFrames(x)
	drainFrames(y)

	env, err := ParseEnvelope([]byte(`{"type":"offer","targetUserId":"gone"}`))
	require.NoError(t, err)

	room.Forward("X", env)
	assertNoFrame(t, x)
	assertNoFrame(t, y)
}

func TestRemoveIdempotent(t *testing.T) {
	room := newTestRoom("r1")
	x := newTestClient("cx")
	y := newTestClient("cy")
	require.NoError(t, room.Add(x, "X"))
	require.NoError(t, room.Add(y, "Y"))
	drainFrames(x)
	drainFrames(y)

	removed, empty := room.Remove("Y", nil)
	assert.True(t, removed)
	assert.False(t, empty)

	notice := takeFrame(t, x)
	assert.Equal(t, "user-disconnected", notice["type"])
	assert.Equal(t, "Y", notice["userId"])

	removed, empty = room.Remove("Y", nil)
	assert.False(t, removed)
	assert.False(t, empty)
	assertNoFrame(t, x)

	removed, empty = room.Remove("X", nil)
	assert.True(t, removed)
	assert.True(t, empty)
}

func TestRemoveRespectsHolder(t *testing.T) {
	room := newTestRoom("r1")
	current := newTestClient("c-new")
	stale := newTestClient("c-old")
	require.NoError(t, room.Add(current, "X"))

	removed, _ := room.Remove("X", stale)
	assert.False(t, removed)
	assert.Equal(t, []string{"X"}, room.Users())

	removed, empty := room.Remove("X", current)
	assert.True(t, removed)
	assert.True(t, empty)
}

func TestReconnectReplacesHandle(t *testing.T) {
	room := newTestRoom("r1")
	x1 := newTestClient("cx1")
	require.NoError(t, room.Add(x1, "X"))
	takeFrame(t, x1) // room-status

	x2 := newTestClient("cx2")
	require.NoError(t, room.Add(x2, "X"))

	// The seat now belongs to the replacement; membership is unchanged
	handle, ok := room.memberHandle("X")
	require.True(t, ok)
	assert.Same(t, x2, handle)
	assert.Equal(t, 1, room.Len())
	_, ok = room.memberHandle("Y")
	assert.False(t, ok)

	// The superseded handle is closed, and only the replacement is re-synced
	assert.False(t, x1.Send([]byte("{}")))
	status := takeFrame(t, x2)
	assert.Equal(t, "room-status", status["type"])
	assert.Equal(t, []interface{}{"X"}, status["users"])
	assertNoFrame(t, x2)
	assertNoFrame(t, x1)
}

func TestReadySignalNotRepeated(t *testing.T) {
	room := newTestRoom("r1")
	x := newTestClient("cx")
	y := newTestClient("cy")
	y2 := newTestClient("cy2")

	require.NoError(t, room.Add(x, "X"))
	require.NoError(t, room.Add(y, "Y"))
	drainFrames(x)
	drainFrames(y)

	// Y leaves and rejoins; the room passes 1->2 again, so ready fires again
	_, _ = room.Remove("Y", nil)
	drainFrames(x)
	require.NoError(t, room.Add(y2, "Y"))

	assert.Equal(t, "user-joined", takeFrame(t, x)["type"])
	assert.Equal(t, "room-status", takeFrame(t, x)["type"])
	assert.Equal(t, "room-ready", takeFrame(t, x)["type"])
	assertNoFrame(t, x)
}

func TestRegistryDeleteIfEmpty(t *testing.T) {
	reg := NewRegistry(zap.NewNop().Sugar(), testMetrics)

	room, created := reg.GetOrCreate("r1")
	assert.True(t, created)
	assert.Equal(t, 1, reg.Count())

	_, again := reg.GetOrCreate("r1")
	assert.False(t, again)

	// Occupied rooms stay put
	x := newTestClient("cx")
	require.NoError(t, room.Add(x, "X"))
	assert.False(t, reg.DeleteIfEmpty("r1"))
	assert.Equal(t, 1, reg.Count())

	_, _ = room.Remove("X", nil)
	assert.True(t, reg.DeleteIfEmpty("r1"))
	assert.Equal(t, 0, reg.Count())

	// A stale pointer to the deleted room is tombstoned
	err := room.Add(newTestClient("cy"), "Y")
	assert.ErrorIs(t, err, domain.ErrRoomClosed)

	// And a fresh GetOrCreate yields a usable replacement
	fresh, created := reg.GetOrCreate("r1")
	assert.True(t, created)
	require.NoError(t, fresh.Add(newTestClient("cz"), "Z"))
	assert.Equal(t, []string{"Z"}, fresh.Users())
}

func TestRegistryGetMiss(t *testing.T) {
	reg := NewRegistry(zap.NewNop().Sugar(), testMetrics)
	_, ok := reg.Get("missing")
	assert.False(t, ok)
	assert.False(t, reg.DeleteIfEmpty("missing"))
}
