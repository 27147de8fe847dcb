package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		Hub:       hub,
		SessionID: sessionID,
		Send:      make(chan []byte, 8),
	}
}

func waitForMessage(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast")
		return nil
	}
}

func assertNoMessage(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.Send:
		t.Fatalf("unexpected message: %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func waitForConnections(t *testing.T, hub *Hub, sessionID string, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for {
		hub.mu.RLock()
		count := len(hub.clients[sessionID])
		hub.mu.RUnlock()
		if count == n {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("session %s has %d connections, want %d", sessionID, count, n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestHub_BroadcastReachesOnlyOwningSession(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	a := newTestClient(hub, "session-a")
	b := newTestClient(hub, "session-b")
	hub.Register(a)
	hub.Register(b)
	waitForConnections(t, hub, "session-a", 1)
	waitForConnections(t, hub, "session-b", 1)

	require.NoError(t, hub.BroadcastCartUpdate("session-a", map[string]interface{}{
		"type": "cart:updated",
	}))

	msg := waitForMessage(t, a)
	assert.Contains(t, string(msg), "cart:updated")
	assertNoMessage(t, b)
}

func TestHub_BroadcastReachesAllSessionConnections(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	tab1 := newTestClient(hub, "session-a")
	tab2 := newTestClient(hub, "session-a")
	hub.Register(tab1)
	hub.Register(tab2)
	waitForConnections(t, hub, "session-a", 2)

	require.NoError(t, hub.BroadcastCartUpdate("session-a", map[string]interface{}{
		"type": "cart:updated",
	}))

	waitForMessage(t, tab1)
	waitForMessage(t, tab2)
}

func TestHub_DoubleUnregisterLeavesSiblingConnected(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	tab1 := newTestClient(hub, "session-a")
	tab2 := newTestClient(hub, "session-a")
	marker := newTestClient(hub, "session-a")
	hub.Register(tab1)
	hub.Register(tab2)
	hub.Register(marker)
	waitForConnections(t, hub, "session-a", 3)

	// The drop-on-full-buffer path and a ReadPump exit can both unregister
	// the same client. The unregister channel is FIFO, so once the marker is
	// gone both tab1 unregisters have been handled.
	hub.Unregister(tab1)
	hub.Unregister(tab1)
	hub.Unregister(marker)
	waitForConnections(t, hub, "session-a", 1)

	_, open := <-tab1.Send
	assert.False(t, open, "send channel should be closed after unregister")

	require.NoError(t, hub.BroadcastCartUpdate("session-a", map[string]interface{}{
		"type": "cart:updated",
	}))
	msg := waitForMessage(t, tab2)
	assert.Contains(t, string(msg), "cart:updated")
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := newTestClient(hub, "session-a")
	hub.Register(c)
	waitForConnections(t, hub, "session-a", 1)

	hub.Unregister(c)

	deadline := time.Now().Add(time.Second)
	for hub.IsSessionConnected("session-a") {
		if time.Now().After(deadline) {
			t.Fatal("session never unregistered")
		}
		time.Sleep(time.Millisecond)
	}

	_, open := <-c.Send
	assert.False(t, open, "send channel should be closed after unregister")
}
