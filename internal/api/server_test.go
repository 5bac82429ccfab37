package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/rampart/internal/dispatch"
	"grimm.is/rampart/internal/events"
	"grimm.is/rampart/internal/logging"
	"grimm.is/rampart/internal/metrics"
	"grimm.is/rampart/internal/model"
	"grimm.is/rampart/internal/provider"
	"grimm.is/rampart/internal/provider/fixtures"
	"grimm.is/rampart/internal/provider/stub"
	"grimm.is/rampart/internal/ratelimit"
	"grimm.is/rampart/internal/store"
)

type harness struct {
	server  *Server
	ts      *httptest.Server
	store   *store.Store
	faults  *provider.Faults
	metrics *metrics.Registry
	hub     *events.Hub
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	hub := events.NewHub()
	reg := metrics.NewIsolated()
	st := store.New(store.Options{Hub: hub, Metrics: reg})
	go func() { _ = st.Run(ctx) }()

	faults := provider.NewFaults(0)
	set := faults.Wrap(stub.New(fixtures.MustDefault()))
	d := dispatch.New(st, set, dispatch.Options{Metrics: reg})

	s, err := NewServer(ServerOptions{
		Dispatcher:  d,
		Hub:         hub,
		Logger:      logging.Discard(),
		Metrics:     reg,
		MetricsPath: "/metrics",
	})
	require.NoError(t, err)
	go s.wsManager.Run(ctx)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		cancel()
		<-st.Done()
	})
	return &harness{server: s, ts: ts, store: st, faults: faults, metrics: reg, hub: hub}
}

func (h *harness) do(t *testing.T, method, path string, body any, headers ...string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = strings.NewReader(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			r = bytes.NewReader(data)
		}
	}
	req, err := http.NewRequest(method, h.ts.URL+path, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func newRule() model.FirewallRule {
	return model.FirewallRule{
		Action:          model.ActionAllow,
		Protocol:        model.ProtocolUDP,
		Source:          "192.168.1.0/24",
		Destination:     model.Any,
		SourcePort:      model.Any,
		DestinationPort: "53",
		Description:     "Allow DNS",
		Enabled:         true,
	}
}

func TestState(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(t, "GET", "/api/state", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	got := decode[StateResponse](t, body)
	assert.Zero(t, got.Version)
	assert.Empty(t, got.State.Firewall.Items)
	assert.NotNil(t, got.State.Firewall.Items, "empty collections encode as []")
	assert.Contains(t, string(body), `"isAuthenticated":false`)
}

func TestFirewallLifecycle(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(t, "POST", "/api/firewall/fetch", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Len(t, decode[[]model.FirewallRule](t, body), 2)

	resp, body = h.do(t, "POST", "/api/firewall", newRule())
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	created := decode[model.FirewallRule](t, body)
	assert.NotEmpty(t, created.ID)

	updated := created
	updated.Description = "Allow DNS to resolvers"
	resp, body = h.do(t, "PUT", "/api/firewall/"+created.ID, updated)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = h.do(t, "PATCH", "/api/firewall/"+created.ID+"/toggle", map[string]bool{"enabled": false})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, provider.Toggle{ID: created.ID, Enabled: false}, decode[provider.Toggle](t, body))

	resp, body = h.do(t, "DELETE", "/api/firewall/1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, DeleteResponse{ID: "1"}, decode[DeleteResponse](t, body))

	resp, body = h.do(t, "GET", "/api/firewall", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fw := decode[store.Collection[model.FirewallRule]](t, body)
	require.Len(t, fw.Items, 2)
	assert.Equal(t, "2", fw.Items[0].ID)
	assert.Equal(t, "Allow DNS to resolvers", fw.Items[1].Description)
	assert.False(t, fw.Items[1].Enabled)
	assert.False(t, fw.Loading)
}

func TestBadRequests(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   string
	}{
		{"malformed json", "POST", "/api/firewall", `{"action":`, "invalid request body"},
		{"empty body", "POST", "/api/vpn", "", "request body is empty"},
		{"unknown enum", "POST", "/api/firewall", `{"action":"drop"}`, "action"},
		{"unknown field", "POST", "/api/users", `{"nickname":"x"}`, "nickname"},
		{"invalid record", "POST", "/api/network", model.NetworkInterface{Name: "LAN2"}, "invalid record"},
		{"toggle without flag", "PATCH", "/api/users/1/toggle", `{}`, "enabled is required"},
		{"login without user", "POST", "/api/auth/login", LoginRequest{}, "username is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := h.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, string(body), tt.want)
		})
	}

	assert.Zero(t, h.store.Version(), "rejected requests never reach the store")
}

func TestRejection(t *testing.T) {
	h := newHarness(t)
	h.faults.Fail(model.KindVPN, provider.OpDelete, "")
	h.faults.Fail(model.KindUsers, provider.OpFetch, "directory offline")

	resp, body := h.do(t, "DELETE", "/api/vpn/1", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "Failed to delete VPN tunnel", decode[ErrorResponse](t, body).Error)

	resp, body = h.do(t, "DELETE", "/api/vpn/1", nil, "Accept-Language", "tr-TR,tr;q=0.9")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "VPN tüneli silinemedi", decode[ErrorResponse](t, body).Error)

	resp, body = h.do(t, "POST", "/api/users/fetch", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "directory offline", decode[ErrorResponse](t, body).Error)

	_, body = h.do(t, "GET", "/api/users", nil)
	assert.Equal(t, "directory offline", decode[store.Collection[model.UserAccount]](t, body).Error)

	resp, _ = h.do(t, "POST", "/api/users/clear-error", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_, body = h.do(t, "GET", "/api/users", nil)
	assert.Empty(t, decode[store.Collection[model.UserAccount]](t, body).Error)
}

func TestSystem(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(t, "POST", "/api/system/info/fetch", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	resp, body = h.do(t, "POST", "/api/system/updates/fetch", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = h.do(t, "POST", "/api/system/updates/1/install", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	_, body = h.do(t, "GET", "/api/system", nil)
	sys := decode[store.SystemState](t, body)
	require.NotNil(t, sys.Info)
	assert.Equal(t, "2.7.1", sys.Info.Version)

	resp, _ = h.do(t, "POST", "/api/system/reboot", nil)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(t, "POST", "/api/auth/login", LoginRequest{Username: "admin", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid username or password", decode[ErrorResponse](t, body).Error)

	resp, body = h.do(t, "POST", "/api/auth/login", LoginRequest{Username: "admin", Password: "admin"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "admin", decode[model.Principal](t, body).Username)

	_, body = h.do(t, "GET", "/api/session", nil)
	sess := decode[store.SessionState](t, body)
	assert.True(t, sess.Authenticated)

	resp, _ = h.do(t, "POST", "/api/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_, body = h.do(t, "GET", "/api/session", nil)
	assert.False(t, decode[store.SessionState](t, body).Authenticated)
}

func TestLogin_RateLimited(t *testing.T) {
	h := newHarness(t)
	h.server.loginLimiter = ratelimit.NewLimiter(2, time.Minute, nil)
	bad := LoginRequest{Username: "admin", Password: "nope"}

	for range 2 {
		resp, _ := h.do(t, "POST", "/api/auth/login", bad, "X-Forwarded-For", "203.0.113.7")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	resp, body := h.do(t, "POST", "/api/auth/login", bad, "X-Forwarded-For", "203.0.113.7")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	assert.Equal(t, "too many login attempts", decode[ErrorResponse](t, body).Error)

	resp, _ = h.do(t, "POST", "/api/auth/login", LoginRequest{Username: "admin", Password: "admin"}, "X-Forwarded-For", "203.0.113.8")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "other clients are unaffected")
}

func TestNotFound(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/api/routes", "/api/firewall/1/move"} {
		resp, body := h.do(t, "GET", path, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		assert.Contains(t, decode[ErrorResponse](t, body).Error, "no route")
	}
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(t, "GET", "/api/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	health := decode[HealthResponse](t, body)
	assert.Equal(t, "ok", health.Status)
	assert.True(t, health.StoreRunning)

	h.do(t, "POST", "/api/firewall/fetch", nil)

	// The access log records a request after its response is written.
	var text string
	require.Eventually(t, func() bool {
		_, body := h.do(t, "GET", "/metrics", nil)
		text = string(body)
		return strings.Contains(text, `rampart_api_requests_total{method="POST",path="POST /api/firewall/fetch",status="2xx"} 1`)
	}, 2*time.Second, 20*time.Millisecond)
	assert.Contains(t, text, `rampart_operations_total{collection="firewall",op="fetch",outcome="fulfilled"} 1`)
	assert.Contains(t, text, `rampart_collection_items{collection="firewall"} 2`)
}

func TestWebsocketFeed(t *testing.T) {
	h := newHarness(t)

	url := "ws" + strings.TrimPrefix(h.ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() WSMessage {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var msg WSMessage
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	assert.Equal(t, TopicSnapshot, read().Topic)
	require.Eventually(t, func() bool { return h.server.wsManager.Clients() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"action": "subscribe",
		"topics": []string{string(events.EventOperationRejected)},
	}))
	ack := read()
	require.Equal(t, TopicSubscription, ack.Topic)
	assert.Equal(t, map[string]any{"all": false, "topics": []any{string(events.EventOperationRejected)}}, ack.Data)

	h.faults.Fail(model.KindFirewall, provider.OpCreate, "")
	h.do(t, "POST", "/api/firewall", newRule())

	msg := read()
	assert.Equal(t, string(events.EventOperationRejected), msg.Topic)
	data, ok := msg.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "firewall", data["collection"])
	assert.Equal(t, "create", data["op"])
	assert.Equal(t, "Failed to add firewall rule", data["message"])
}

func TestWebsocketFeed_NoGapAfterSnapshot(t *testing.T) {
	h := newHarness(t)
	url := "ws" + strings.TrimPrefix(h.ts.URL, "http") + "/api/ws"
	ctx := context.Background()

	for i := range 20 {
		applied := make(chan error, 1)
		go func() {
			applied <- h.store.Dispatch(ctx, store.Created[model.FirewallRule]{
				Record: model.FirewallRule{ID: fmt.Sprintf("race-%d", i), Action: model.ActionAllow, Protocol: model.ProtocolAny},
			})
		}()
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		require.NoError(t, <-applied)
		target := h.store.Version()

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var first struct {
			Topic string        `json:"topic"`
			Data  StateResponse `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&first))
		require.Equal(t, TopicSnapshot, first.Topic)

		seen := first.Data.Version
		for seen < target {
			var msg WSMessage
			require.NoError(t, conn.ReadJSON(&msg), "version %d never reached the client", target)
			if msg.Topic != string(events.EventStateChanged) {
				continue
			}
			data := msg.Data.(map[string]any)
			seen = max(seen, uint64(data["version"].(float64)))
		}
		conn.Close()
	}
}

func TestWSManager_RefusesAfterStop(t *testing.T) {
	h := newHarness(t)
	m := NewWSManager(h.hub, h.store, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	live := &wsClient{send: make(chan []byte, 4), topics: map[string]bool{}}
	require.True(t, m.attach(live))
	assert.Len(t, live.send, 1, "snapshot queued on attach")

	cancel()
	<-done
	_, open := <-live.send
	assert.True(t, open, "queued snapshot is still readable")
	_, open = <-live.send
	assert.False(t, open, "send closed on stop")

	late := &wsClient{send: make(chan []byte, 4), topics: map[string]bool{}}
	assert.False(t, m.attach(late))
	assert.Zero(t, m.Clients())
}

func TestWSClient_Topics(t *testing.T) {
	c := &wsClient{topics: map[string]bool{}}
	changed := string(events.EventStateChanged)
	rejected := string(events.EventOperationRejected)

	assert.True(t, c.wants(changed), "unfiltered client receives everything")

	ack := c.apply(wsRequest{Action: "unsubscribe", Topics: []string{changed}})
	assert.Equal(t, wsAck{All: true, Topics: []string{}}, ack)
	assert.True(t, c.wants(changed))

	ack = c.apply(wsRequest{Action: "subscribe", Topics: []string{rejected, changed}})
	assert.Equal(t, wsAck{Topics: []string{rejected, changed}}, ack)

	c.apply(wsRequest{Action: "unsubscribe", Topics: []string{changed, rejected}})
	assert.False(t, c.wants(changed), "emptied filter receives nothing")
	assert.False(t, c.wants(rejected))
	assert.False(t, c.wants(TopicSnapshot))
}

func TestSameOrigin(t *testing.T) {
	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://example.com", true},
		{"https://example.com", true},
		{"http://localhost:5173", true},
		{"http://127.0.0.1:3000", true},
		{"http://evil.test", false},
		{"ftp://example.com", false},
		{"::not a url", false},
	}
	for _, tc := range tests {
		req := httptest.NewRequest("GET", "http://example.com/api/ws", nil)
		if tc.origin != "" {
			req.Header.Set("Origin", tc.origin)
		}
		assert.Equal(t, tc.want, sameOrigin(req), "origin %q", tc.origin)
	}
}

func TestNewServer_RequiresDispatcher(t *testing.T) {
	_, err := NewServer(ServerOptions{})
	assert.Error(t, err)
}
