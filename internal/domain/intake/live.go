package intake

import (
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 64 * 1024
)

// connection is one websocket client following a session
type connection struct {
	sessionID string
	conn      *websocket.Conn
	send      chan []byte
}

// Hub fans session views out to the websocket clients following them.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*connection]struct{}
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHub creates a hub accepting upgrades from origins allowed by checkOrigin.
func NewHub(checkOrigin func(origin string) bool, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		sessions: make(map[string]map[*connection]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return checkOrigin == nil || checkOrigin(r.Header.Get("Origin"))
			},
		},
		log: log,
	}
}

// Upgrade switches the request to a websocket.
func (h *Hub) Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return h.upgrader.Upgrade(w, r, nil)
}

// Subscribers returns the number of clients following sessionID.
func (h *Hub) Subscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.sessions[c.sessionID]
	if !ok {
		conns = make(map[*connection]struct{})
		h.sessions[c.sessionID] = conns
	}
	conns[c] = struct{}{}
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.sessions[c.sessionID]
	if !ok {
		return
	}
	if _, ok := conns[c]; ok {
		delete(conns, c)
		close(c.send)
	}
	if len(conns) == 0 {
		delete(h.sessions, c.sessionID)
	}
}

// Publish sends v to every client of sessionID.
func (h *Hub) Publish(sessionID string, v *View) {
	h.broadcast(sessionID, &LiveEvent{Type: EventView, Session: sessionID, View: v})
}

// Close tells the clients of sessionID that the session ended and drops them.
func (h *Hub) Close(sessionID string) {
	data, err := json.Marshal(&LiveEvent{Type: EventClosed, Session: sessionID})
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.sessions[sessionID] {
		select {
		case c.send <- data:
		default:
		}
		close(c.send)
	}
	delete(h.sessions, sessionID)
}

func (h *Hub) broadcast(sessionID string, event *LiveEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("failed to encode live event", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.sessions[sessionID] {
		select {
		case c.send <- data:
		default:
			// slow client misses this view; the next one supersedes it
		}
	}
}

func (h *Hub) sendTo(c *connection, event *LiveEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.sessions[c.sessionID][c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// ServeWS registers conn for sessionID, sends initial and feeds inbound
// messages to dispatch until the client disconnects.
func (h *Hub) ServeWS(conn *websocket.Conn, sessionID string, initial *View, dispatch func(LiveMessage) error) {
	c := &connection{
		sessionID: sessionID,
		conn:      conn,
		send:      make(chan []byte, 32),
	}
	h.register(c)
	if initial != nil {
		h.sendTo(c, &LiveEvent{Type: EventView, Session: sessionID, View: initial})
	}

	go h.writePump(c)
	h.readPump(c, dispatch) // blocks until disconnect
}

func (h *Hub) readPump(c *connection, dispatch func(LiveMessage) error) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var in LiveMessage
		if err := json.Unmarshal(msg, &in); err != nil {
			h.sendTo(c, &LiveEvent{Type: EventError, Session: c.sessionID, Error: "malformed message"})
			continue
		}
		if err := dispatch(in); err != nil {
			h.sendTo(c, &LiveEvent{Type: EventError, Session: c.sessionID, Error: err.Error()})
		}
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
