package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(uid string) *Client {
	return &Client{UserID: uid, Send: make(chan []byte, sendBuffer)}
}

func TestManagerPushReachesEveryConnection(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager(nil)
	m.Start(ctx)

	first, second := newTestClient("u1"), newTestClient("u1")
	m.Register <- first
	m.Register <- second
	require.Eventually(t, func() bool { return m.IsOnline("u1") }, time.Second, 10*time.Millisecond)

	require.NoError(t, m.Push("u1", EventNotification, map[string]string{"title": "New order"}))

	for _, c := range []*Client{first, second} {
		select {
		case raw := <-c.Send:
			var msg WSMessage
			require.NoError(t, json.Unmarshal(raw, &msg))
			assert.Equal(t, EventNotification, msg.Type)
		case <-time.After(time.Second):
			t.Fatal("message not delivered")
		}
	}
}

func TestManagerUnregister(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager(nil)
	m.Start(ctx)

	c := newTestClient("u1")
	m.Register <- c
	m.Unregister <- c
	require.Eventually(t, func() bool { return !m.IsOnline("u1") }, time.Second, 10*time.Millisecond)

	_, open := <-c.Send
	assert.False(t, open)

	// pushing to an offline user is a no-op
	assert.NoError(t, m.Push("u1", EventNotification, nil))
}

func TestHandleClientMessage(t *testing.T) {
	m := NewManager(nil)
	c := newTestClient("u1")

	m.HandleClientMessage(c, []byte(`{"type":"ping"}`))
	var msg WSMessage
	require.NoError(t, json.Unmarshal(<-c.Send, &msg))
	assert.Equal(t, MessageTypePong, msg.Type)

	m.HandleClientMessage(c, []byte(`not json`))
	require.NoError(t, json.Unmarshal(<-c.Send, &msg))
	assert.Equal(t, EventError, msg.Type)

	m.HandleClientMessage(c, []byte(`{"type":"dance"}`))
	require.NoError(t, json.Unmarshal(<-c.Send, &msg))
	assert.Equal(t, EventError, msg.Type)
}
