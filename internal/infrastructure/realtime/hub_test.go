package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server, origin string) *ws.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	conn, _, err := ws.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.ClientCount() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_BroadcastReachesClients(t *testing.T) {
	hub := NewHub(nil, nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	a := dial(t, srv, "")
	b := dial(t, srv, "")
	waitForClients(t, hub, 2)

	hub.Publish(context.Background(), Event{Type: "dispatch", ID: "17", Action: ActionUpdated})

	for _, c := range []*ws.Conn{a, b} {
		require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
		var evt Event
		require.NoError(t, c.ReadJSON(&evt))
		assert.Equal(t, Event{Type: "dispatch", ID: "17", Action: "updated"}, evt)
	}
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub := NewHub(nil, nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	c := dial(t, srv, "")
	waitForClients(t, hub, 1)

	require.NoError(t, c.Close())
	waitForClients(t, hub, 0)

	// broadcasting with no clients is harmless
	hub.Broadcast(Event{Type: "order", ID: "1", Action: ActionDeleted})
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(nil, nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	dial(t, srv, "")
	waitForClients(t, hub, 1)

	hub.Close()
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_RejectsForeignOrigin(t *testing.T) {
	hub := NewHub(nil, []string{"https://portal.example.com"})
	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err := ws.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	dial(t, srv, "https://portal.example.com")
	waitForClients(t, hub, 1)
}

func TestOriginChecker(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://portal.local/ws", nil)

	check := originChecker(nil)
	assert.True(t, check(req), "no origin header")

	req.Header.Set("Origin", "http://portal.local")
	assert.True(t, check(req), "same host")

	req.Header.Set("Origin", "http://other.local")
	assert.False(t, check(req))

	assert.True(t, originChecker([]string{"*"})(req))
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	p.Publish(context.Background(), Event{Type: "x"})
}
