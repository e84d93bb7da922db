package ws

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devmatch-service/internal/models"
)

func testClient(userID string) *Client {
	return newClient(nil, ConnInfo{ConnID: uuid.NewString(), UserID: userID})
}

func drain(c *Client) []models.SocketEvent {
	var events []models.SocketEvent
	for {
		select {
		case raw := <-c.send:
			var ev models.SocketEvent
			_ = json.Unmarshal(raw, &ev)
			events = append(events, ev)
		default:
			return events
		}
	}
}

func TestHubRegisterReplacesSameUser(t *testing.T) {
	hub := NewHub()
	first := testClient("u1")
	second := testClient("u1")

	assert.Nil(t, hub.Register(first))
	assert.Same(t, first, hub.Register(second))
	assert.True(t, hub.IsOnline("u1"))

	assert.False(t, hub.Unregister(first), "stale client must not mark user offline")
	assert.True(t, hub.IsOnline("u1"))
	assert.True(t, hub.Unregister(second))
	assert.False(t, hub.IsOnline("u1"))
	assert.Equal(t, 0, hub.OnlineCount())
}

func TestHubJoinLeaveCleansEmptyRooms(t *testing.T) {
	hub := NewHub()
	c := testClient("u1")

	hub.Join("chat-1", c)
	require.Len(t, hub.rooms, 1)

	hub.Leave("chat-1", c)
	assert.Len(t, hub.rooms, 0)

	hub.Join("chat-1", c)
	hub.Join("u1", c)
	hub.Register(c)
	hub.Unregister(c)
	assert.Len(t, hub.rooms, 0)
}

func TestHubEmitToRoomSkipsSender(t *testing.T) {
	hub := NewHub()
	a, b, outsider := testClient("a"), testClient("b"), testClient("x")
	hub.Join("chat-1", a)
	hub.Join("chat-1", b)
	hub.Join("chat-2", outsider)

	hub.EmitToRoom("chat-1", "a", "user_typing", models.TypingNotice{UserID: "a", ChatID: "chat-1"})

	assert.Empty(t, drain(a))
	assert.Empty(t, drain(outsider))
	events := drain(b)
	require.Len(t, events, 1)
	assert.Equal(t, "user_typing", events[0].Event)
}

func TestHubEmitToUserUsesPrivateRoom(t *testing.T) {
	hub := NewHub()
	a, b := testClient("a"), testClient("b")
	hub.Join("a", a)
	hub.Join("b", b)

	hub.EmitToUser("b", "match_created", models.MatchNotice{ChatID: "c1", MatchID: "a"})

	assert.Empty(t, drain(a))
	require.Len(t, drain(b), 1)
}

func TestHubBroadcastSkipsOrigin(t *testing.T) {
	hub := NewHub()
	a, b := testClient("a"), testClient("b")
	hub.Register(a)
	hub.Register(b)

	hub.Broadcast("a", EventUserOnline, models.PresenceNotice{UserID: "a"})

	assert.Empty(t, drain(a))
	events := drain(b)
	require.Len(t, events, 1)
	assert.Equal(t, EventUserOnline, events[0].Event)
}

func TestHubDropsClientWithFullQueue(t *testing.T) {
	hub := NewHub()
	slow := testClient("slow")
	hub.Join("chat-1", slow)

	for i := 0; i < sendQueueSize+1; i++ {
		hub.EmitToRoom("chat-1", "", "receive_message", map[string]int{"i": i})
	}

	select {
	case <-slow.done:
	default:
		t.Fatal("expected slow client to be closed")
	}
	assert.Equal(t, "send queue full", slow.reason())
	assert.False(t, slow.enqueue([]byte("late")))
}
