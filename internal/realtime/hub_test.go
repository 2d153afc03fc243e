package realtime_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenmind/support-service/internal/config"
	"github.com/havenmind/support-service/internal/domain/errors"
	"github.com/havenmind/support-service/internal/realtime"
)

func newTestHub(t *testing.T) *realtime.Hub {
	t.Helper()

	hub := realtime.NewHub(config.RealtimeConfig{SendBufferSize: 8})
	go hub.Run()
	return hub
}

func newTestClient(hub *realtime.Hub, id, userID string) *realtime.Client {
	// No websocket connection: these tests drive the hub directly and
	// read from the client's send channel.
	return realtime.NewClient(id, userID, hub, nil, config.RealtimeConfig{SendBufferSize: 8})
}

func receive(t *testing.T, client *realtime.Client) []byte {
	t.Helper()

	select {
	case payload := <-client.Send:
		return payload
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for payload")
		return nil
	}
}

func assertNothingReceived(t *testing.T, client *realtime.Client) {
	t.Helper()

	select {
	case payload := <-client.Send:
		t.Fatalf("unexpected payload: %s", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastToRoom_DeliversToMembers(t *testing.T) {
	hub := newTestHub(t)

	alice := newTestClient(hub, "c1", "alice")
	bob := newTestClient(hub, "c2", "bob")
	hub.Register(alice)
	hub.Register(bob)
	hub.JoinRoom(alice, "alice_bob")
	hub.JoinRoom(bob, "alice_bob")

	event := realtime.ChatMessageEvent{
		Type:    realtime.EventChatMessage,
		RoomID:  "alice_bob",
		Sender:  "alice",
		Content: "hello",
	}
	require.NoError(t, hub.BroadcastToRoom("alice_bob", event, ""))

	for _, client := range []*realtime.Client{alice, bob} {
		var got realtime.ChatMessageEvent
		require.NoError(t, json.Unmarshal(receive(t, client), &got))
		assert.Equal(t, "hello", got.Content)
		assert.Equal(t, "alice_bob", got.RoomID)
	}
}

func TestBroadcastToRoom_ExcludesSender(t *testing.T) {
	hub := newTestHub(t)

	alice := newTestClient(hub, "c1", "alice")
	bob := newTestClient(hub, "c2", "bob")
	hub.Register(alice)
	hub.Register(bob)
	hub.JoinRoom(alice, "alice_bob")
	hub.JoinRoom(bob, "alice_bob")

	require.NoError(t, hub.BroadcastToRoom("alice_bob", map[string]string{"type": "ping"}, "c1"))

	receive(t, bob)
	assertNothingReceived(t, alice)
}

func TestBroadcastToRoom_UnencodablePayload(t *testing.T) {
	hub := newTestHub(t)

	err := hub.BroadcastToRoom("alice_bob", make(chan int), "")
	require.Error(t, err)

	domainErr, ok := errors.GetDomainError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeTransport, domainErr.Code)
}

func TestBroadcastToRoom_IgnoresNonMembers(t *testing.T) {
	hub := newTestHub(t)

	alice := newTestClient(hub, "c1", "alice")
	outsider := newTestClient(hub, "c2", "mallory")
	hub.Register(alice)
	hub.Register(outsider)
	hub.JoinRoom(alice, "alice_bob")

	require.NoError(t, hub.BroadcastToRoom("alice_bob", map[string]string{"type": "ping"}, ""))

	receive(t, alice)
	assertNothingReceived(t, outsider)
}

func TestLeaveRoom_StopsDelivery(t *testing.T) {
	hub := newTestHub(t)

	alice := newTestClient(hub, "c1", "alice")
	hub.Register(alice)
	hub.JoinRoom(alice, "alice_bob")
	require.Equal(t, 1, hub.RoomClientCount("alice_bob"))

	hub.LeaveRoom(alice, "alice_bob")
	assert.Zero(t, hub.RoomClientCount("alice_bob"))

	require.NoError(t, hub.BroadcastToRoom("alice_bob", map[string]string{"type": "ping"}, ""))
	assertNothingReceived(t, alice)
}

func TestUnregister_RemovesFromAllRooms(t *testing.T) {
	hub := newTestHub(t)

	alice := newTestClient(hub, "c1", "alice")
	hub.Register(alice)
	hub.JoinRoom(alice, "alice_bob")
	hub.JoinRoom(alice, "alice_carol")

	hub.Unregister(alice)

	// Send channel is closed once the unregister is processed.
	select {
	case _, open := <-alice.Send:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for send channel close")
	}

	assert.Zero(t, hub.RoomClientCount("alice_bob"))
	assert.Zero(t, hub.RoomClientCount("alice_carol"))
}

func TestRoomClientCount_UnknownRoom(t *testing.T) {
	hub := newTestHub(t)

	assert.Zero(t, hub.RoomClientCount("nowhere"))
}
