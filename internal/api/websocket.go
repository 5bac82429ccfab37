package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"grimm.is/rampart/internal/clock"
	"grimm.is/rampart/internal/events"
	"grimm.is/rampart/internal/logging"
	"grimm.is/rampart/internal/store"
)

const (
	wsSendBuffer   = 64
	wsWriteWait    = 10 * time.Second
	wsPongWait     = 60 * time.Second
	wsPingPeriod   = wsPongWait * 9 / 10
	wsMaxFrameSize = 4 << 10
)

// Feed topics that do not come from the event hub.
const (
	TopicSnapshot     = "snapshot"     // full state, sent once on connect
	TopicSubscription = "subscription" // ack with the client's topic set
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     sameOrigin,
}

// sameOrigin accepts requests without an Origin, loopback origins and
// origins whose host matches the request host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	if ip := net.ParseIP(u.Hostname()); (ip != nil && ip.IsLoopback()) || u.Hostname() == "localhost" {
		return true
	}
	return u.Host == r.Host
}

// WSMessage is one frame of the feed. Topics are hub event types such as
// "state.changed", plus TopicSnapshot and TopicSubscription.
type WSMessage struct {
	Topic string `json:"topic"`
	Time  int64  `json:"time"`
	Data  any    `json:"data"`
}

type wsRequest struct {
	Action string   `json:"action"` // "subscribe" or "unsubscribe"
	Topics []string `json:"topics"`
}

// wsClient is one connection. It receives every topic until its first
// subscribe; from then on only the topics in its set, possibly none.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte

	mu       sync.RWMutex
	filtered bool
	topics   map[string]bool
}

func (c *wsClient) wants(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.filtered || c.topics[topic]
}

// wsAck answers a subscription request.
type wsAck struct {
	All    bool     `json:"all"`
	Topics []string `json:"topics"`
}

// apply updates the topic set. Unsubscribing before any subscribe leaves
// the client on every topic.
func (c *wsClient) apply(req wsRequest) wsAck {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch req.Action {
	case "subscribe":
		c.filtered = true
		for _, t := range req.Topics {
			c.topics[t] = true
		}
	case "unsubscribe":
		for _, t := range req.Topics {
			delete(c.topics, t)
		}
	}
	topics := make([]string, 0, len(c.topics))
	for t := range c.topics {
		topics = append(topics, t)
	}
	slices.Sort(topics)
	return wsAck{All: !c.filtered, Topics: topics}
}

// offer queues msg without blocking; a slow client misses it.
func (c *wsClient) offer(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// WSManager relays hub events to websocket clients.
type WSManager struct {
	hub    *events.Hub
	store  *store.Store
	logger *logging.Logger

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
	stopped bool
}

func NewWSManager(hub *events.Hub, st *store.Store, logger *logging.Logger) *WSManager {
	return &WSManager{
		hub:     hub,
		store:   st,
		logger:  logger,
		clients: make(map[*wsClient]struct{}),
	}
}

// Run relays events until ctx ends, then disconnects every client.
func (m *WSManager) Run(ctx context.Context) {
	sub := m.hub.Subscribe(events.DefaultBuffer)
	defer sub.Close()

	for {
		select {
		case e := <-sub.C:
			m.Publish(string(e.Type), e.Timestamp, e.Data)
		case <-ctx.Done():
			m.mu.Lock()
			m.stopped = true
			for c := range m.clients {
				m.detach(c)
			}
			m.mu.Unlock()
			return
		}
	}
}

// Publish sends data to every client interested in topic.
func (m *WSManager) Publish(topic string, at time.Time, data any) {
	frame, err := encodeFrame(topic, at, data)
	if err != nil {
		m.logger.Warn("websocket frame not encodable", "topic", topic, "error", err)
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for c := range m.clients {
		if c.wants(topic) && !c.offer(frame) {
			m.logger.Debug("websocket client lagging", "topic", topic)
		}
	}
}

// Clients returns the number of connected clients.
func (m *WSManager) Clients() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// attach registers c and queues the snapshot as its first frame. Both
// happen under the write lock, so Publish cannot slip an event in front of
// the snapshot, and every action applied after the snapshot reaches c as
// an event. Events at or below the snapshot version may still follow and
// are redundant. attach fails once Run has stopped.
func (m *WSManager) attach(c *wsClient) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return false
	}
	m.clients[c] = struct{}{}

	state, version := m.store.View()
	frame, err := encodeFrame(TopicSnapshot, clock.Now(), StateResponse{Version: version, State: state})
	if err != nil {
		m.logger.Warn("websocket snapshot not encodable", "error", err)
		return true
	}
	c.offer(frame)
	return true
}

func (m *WSManager) release(c *wsClient) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[c]; ok {
		m.detach(c)
	}
}

// detach requires m.mu held. Closing send ends the write loop.
func (m *WSManager) detach(c *wsClient) {
	delete(m.clients, c)
	close(c.send)
}

func encodeFrame(topic string, at time.Time, data any) ([]byte, error) {
	return json.Marshal(WSMessage{Topic: topic, Time: at.Unix(), Data: data})
}

// readLoop applies subscription requests and keeps the read deadline
// fresh on every pong.
func (m *WSManager) readLoop(c *wsClient) {
	defer m.release(c)

	c.conn.SetReadLimit(wsMaxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var req wsRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			continue
		}
		ack := c.apply(req)
		if frame, err := encodeFrame(TopicSubscription, clock.Now(), ack); err == nil {
			m.mu.RLock()
			if _, ok := m.clients[c]; ok {
				c.offer(frame)
			}
			m.mu.RUnlock()
		}
	}
}

// writeLoop drains send and pings the peer until send is closed.
func (c *wsClient) writeLoop() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleWS upgrades the connection, sends the current snapshot and then
// streams hub events. Clients can skip state.changed events whose version
// is not above the snapshot's.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.wsManager == nil {
		WriteError(w, http.StatusServiceUnavailable, "websockets not enabled")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &wsClient{
		conn:   conn,
		send:   make(chan []byte, wsSendBuffer),
		topics: make(map[string]bool),
	}
	if !s.wsManager.attach(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(wsWriteWait))
		conn.Close()
		return
	}
	go c.writeLoop()
	go s.wsManager.readLoop(c)
}
