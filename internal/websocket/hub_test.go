package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func registered(h *Hub, sessionID string) func() bool {
	return func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return len(h.clients[sessionID]) > 0
	}
}

func TestHubSendDeliversToRegisteredClient(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	client := &Client{Hub: hub, SessionID: "sess-1", Send: make(chan []byte, 4)}
	hub.register <- client
	require.Eventually(t, registered(hub, "sess-1"), time.Second, 5*time.Millisecond)

	hub.Send("sess-1", StatusMessage{Kind: StatusTurn, Text: "hello"})

	select {
	case data := <-client.Send:
		require.Contains(t, string(data), StatusTurn)
		require.Contains(t, string(data), "sess-1")
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}
}

// A consumer that stops draining its Send buffer gets dropped; the hub must
// keep running and the channel must be closed exactly once.
func TestHubDropsStalledClientWithoutCrashing(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	stalled := &Client{Hub: hub, SessionID: "sess-1", Send: make(chan []byte, 1)}
	hub.register <- stalled
	require.Eventually(t, registered(hub, "sess-1"), time.Second, 5*time.Millisecond)

	// Fill the buffer so the next delivery overflows.
	stalled.Send <- []byte("queued")

	hub.Send("sess-1", StatusMessage{Kind: StatusTurn, Text: "overflow"})

	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients["sess-1"]) == 0
	}, time.Second, 5*time.Millisecond)

	// Drain the queued frame; the next read sees the closed channel.
	<-stalled.Send
	_, open := <-stalled.Send
	require.False(t, open)

	// The hub goroutine survived and still serves other clients.
	healthy := &Client{Hub: hub, SessionID: "sess-2", Send: make(chan []byte, 4)}
	hub.register <- healthy
	require.Eventually(t, registered(hub, "sess-2"), time.Second, 5*time.Millisecond)

	hub.Send("sess-2", StatusMessage{Kind: StatusGuidance, Text: "still here"})

	select {
	case data := <-healthy.Send:
		require.Contains(t, string(data), StatusGuidance)
	case <-time.After(time.Second):
		t.Fatal("hub stopped delivering after dropping a stalled client")
	}
}
