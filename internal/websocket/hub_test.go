package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestHubDeliversOnlyToChannelSubscribers(t *testing.T) {
	hub := runHub(t)
	a := NewClient(nil)
	b := NewClient(nil)

	hub.Register(a, "channel:poll:1")
	hub.Register(b, "channel:poll:2")
	require.Eventually(t, func() bool { return hub.GetClientCount() == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), "channel:poll:1", []byte("hello")))

	select {
	case msg := <-a.Send:
		assert.Equal(t, "hello", string(msg))
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive the message")
	}
	assert.Empty(t, b.Send)
	assert.Equal(t, 1, hub.GetChannelSubscriberCount("channel:poll:1"))
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := runHub(t)
	c := NewClient(nil)

	hub.Register(c, "channel:poll:1")
	require.Eventually(t, func() bool { return hub.GetClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Unregister(c)
	require.Eventually(t, func() bool { return hub.GetClientCount() == 0 }, time.Second, 5*time.Millisecond)

	_, open := <-c.Send
	assert.False(t, open)
	assert.Zero(t, hub.GetChannelSubscriberCount("channel:poll:1"))

	// a second unregister is ignored
	hub.Unregister(c)
	hub.Broadcast("channel:poll:1", []byte("nobody listens"))
}

func TestSendMessageDropsWhenBufferFull(t *testing.T) {
	c := NewClient(nil)
	for i := 0; i < cap(c.Send)+10; i++ {
		c.SendMessage([]byte("x"))
	}
	assert.Len(t, c.Send, cap(c.Send))
}

func TestHubAppliesUnregisterAfterRegister(t *testing.T) {
	hub := NewHub()
	clients := make([]*Client, 200)
	for i := range clients {
		clients[i] = NewClient(nil)
		hub.Register(clients[i], "channel:poll:1")
		hub.Unregister(clients[i])
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	for _, c := range clients {
		select {
		case _, open := <-c.Send:
			assert.False(t, open)
		case <-time.After(time.Second):
			t.Fatal("client was never removed")
		}
	}
	assert.Zero(t, hub.GetClientCount())
	assert.Zero(t, hub.GetChannelSubscriberCount("channel:poll:1"))
}
