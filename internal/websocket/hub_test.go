package websocket

import (
	"encoding/json"
	"testing"
	"time"
)

func newTestClient(h *Hub) *Client {
	return &Client{
		hub:      h,
		send:     make(chan []byte, 16),
		isActive: true,
	}
}

func register(t *testing.T, h *Hub, c *Client) {
	t.Helper()
	select {
	case h.register <- c:
	case <-time.After(time.Second):
		t.Fatal("register blocked")
	}
}

func unregister(t *testing.T, h *Hub, c *Client) {
	t.Helper()
	select {
	case h.unregister <- c:
	case <-time.After(time.Second):
		t.Fatal("unregister blocked")
	}
}

func receive(t *testing.T, c *Client, timeout time.Duration) ([]byte, bool) {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg, true
	case <-time.After(timeout):
		return nil, false
	}
}

func TestBroadcastReachesClient(t *testing.T) {
	h := NewHub()
	go h.Run()

	c := newTestClient(h)
	register(t, h, c)

	h.Broadcast("progress", map[string]int{"percent": 42})

	raw, ok := receive(t, c, time.Second)
	if !ok {
		t.Fatal("client received nothing")
	}

	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("unmarshal broadcast: %v", err)
	}
	if msg.Type != "progress" {
		t.Errorf("expected type progress, got %s", msg.Type)
	}
	if msg.Timestamp == 0 {
		t.Error("timestamp should be set")
	}
}

// A reconnect replaces the old client first; the old readPump exits and
// unregisters afterwards. That late unregister must not deactivate the
// replacement client.
func TestStaleUnregisterKeepsReplacementAlive(t *testing.T) {
	h := NewHub()
	go h.Run()

	old := newTestClient(h)
	register(t, h, old)

	replacement := newTestClient(h)
	register(t, h, replacement)

	unregister(t, h, old)

	h.Broadcast("report", map[string]string{"case_id": "CASE-1"})

	if _, ok := receive(t, replacement, time.Second); !ok {
		t.Fatal("replacement client should keep receiving after the old client unregisters")
	}
}

func TestUnregisterCurrentClientStopsDelivery(t *testing.T) {
	h := NewHub()
	go h.Run()

	c := newTestClient(h)
	register(t, h, c)
	unregister(t, h, c)

	h.Broadcast("report", map[string]string{"case_id": "CASE-2"})

	if _, ok := receive(t, c, 100*time.Millisecond); ok {
		t.Error("disconnected client should not receive broadcasts")
	}
}
