package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/VivekRai-gif/matchly/internal/config"
)

func startHub(t *testing.T, cfg *HubConfig) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(cfg, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, srv
}

func dial(t *testing.T, hub *Hub, srv *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	before := hub.GetStats().TotalConnections
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool {
		return hub.GetStats().TotalConnections > before
	}, time.Second, 5*time.Millisecond)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got map[string]interface{}
	require.NoError(t, conn.ReadJSON(&got))
	return got
}

func TestBroadcastRedaction(t *testing.T) {
	hub, srv := startHub(t, &HubConfig{BroadcastRedactions: true})
	conn := dial(t, hub, srv, nil)

	hub.PublishRedaction(RedactionEvent{
		RequestID:      "req-1",
		Operation:      "mask_pii",
		Domain:         "pii",
		Categories:     []string{"email"},
		TotalInstances: 2,
	})

	got := readEvent(t, conn)
	assert.Equal(t, "redaction", got["type"])
	assert.Equal(t, "req-1", got["request_id"])
	data := got["data"].(map[string]interface{})
	assert.Equal(t, []interface{}{"email"}, data["categories"])
	assert.Equal(t, float64(2), data["total_instances"])
}

func TestDisabledEventsAreNotBroadcast(t *testing.T) {
	hub, srv := startHub(t, &HubConfig{BroadcastSystem: true})
	conn := dial(t, hub, srv, nil)

	hub.PublishRedaction(RedactionEvent{Categories: []string{"ssn"}})
	hub.PublishRequest(RequestLogEvent{Path: "/api/health"})
	hub.PublishSystemStatus(SystemStatusEvent{Status: "healthy"})

	got := readEvent(t, conn)
	assert.Equal(t, "system_status", got["type"])
}

func TestSubscriptionFilter(t *testing.T) {
	hub, srv := startHub(t, &HubConfig{BroadcastRedactions: true, BroadcastSystem: true})
	conn := dial(t, hub, srv, nil)

	require.NoError(t, conn.WriteJSON(ClientMessage{
		Type: "subscribe",
		Data: SubscriptionRequest{
			Events: []EventType{EventTypeRedaction},
			Filter: &EventFilter{Categories: []string{"ssn"}},
		},
	}))
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "ping"}))
	assert.Equal(t, "pong", readEvent(t, conn)["type"])

	hub.PublishSystemStatus(SystemStatusEvent{Status: "healthy"})
	hub.PublishRedaction(RedactionEvent{RequestID: "a", Categories: []string{"email"}})
	hub.PublishRedaction(RedactionEvent{RequestID: "b", Categories: []string{"email", "ssn"}})

	got := readEvent(t, conn)
	assert.Equal(t, "b", got["request_id"])
}

func TestConnectionEventsGoToOthers(t *testing.T) {
	hub, srv := startHub(t, &HubConfig{BroadcastConnections: true})
	first := dial(t, hub, srv, nil)
	dial(t, hub, srv, nil)

	got := readEvent(t, first)
	assert.Equal(t, "connection", got["type"])
	assert.Equal(t, "connected", got["data"].(map[string]interface{})["action"])
}

func TestBasicAuth(t *testing.T) {
	hub, srv := startHub(t, &HubConfig{Username: "admin", Password: "s3cret"})
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.SetBasicAuth("admin", "wrong")
	_, resp, err = websocket.DefaultDialer.Dial(url, req.Header)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req.SetBasicAuth("admin", "s3cret")
	dial(t, hub, srv, req.Header)
	assert.Equal(t, int64(1), hub.GetStats().ActiveConnections)
}

func TestDisconnectUnregisters(t *testing.T) {
	hub, srv := startHub(t, &HubConfig{})
	conn := dial(t, hub, srv, nil)
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		return hub.GetStats().ActiveConnections == 0
	}, time.Second, 5*time.Millisecond)
}

func TestCheckOrigin(t *testing.T) {
	hub := NewHub(&HubConfig{AllowedOrigins: []string{"https://app.example.com"}}, zap.NewNop())

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, hub.checkOrigin(r))

	r.Header.Set("Origin", "https://app.example.com")
	assert.True(t, hub.checkOrigin(r))

	r.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, hub.checkOrigin(r))
}

func TestNewHubConfig(t *testing.T) {
	cfg := config.GetDefaults().WebSocket
	cfg.Username = "u"

	hc := NewHubConfig(cfg)
	assert.True(t, hc.BroadcastRedactions)
	assert.False(t, hc.BroadcastRequests)
	assert.Equal(t, "u", hc.Username)
	assert.Equal(t, cfg.PingInterval, hc.PingInterval)
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	assert.Equal(t, "10.0.0.1", getClientIP(r))
}
