package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 25 * time.Second
	sendBuffer = 64
)

// Event is the envelope pushed to connected clients
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Event types emitted by the chat handlers
const (
	EventMessageCreated = "message.created"
	EventMessagesRead   = "messages.read"
)

// Client is one live websocket subscription owned by an account. An account
// may hold several clients (multiple tabs); each gets every event addressed
// to the account, in publish order.
type Client struct {
	AccountID string

	conn *websocket.Conn
	send chan Event
	done chan struct{}
	once sync.Once
}

// Hub tracks live clients keyed by account ID and fans events out to them
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		clients: map[string]map[*Client]struct{}{},
	}
}

// Register wires a new connection into the hub and starts its write loop
func (h *Hub) Register(accountID string, conn *websocket.Conn) *Client {
	c := &Client{
		AccountID: accountID,
		conn:      conn,
		send:      make(chan Event, sendBuffer),
		done:      make(chan struct{}),
	}

	h.mu.Lock()
	if h.clients[accountID] == nil {
		h.clients[accountID] = map[*Client]struct{}{}
	}
	h.clients[accountID][c] = struct{}{}
	h.mu.Unlock()

	go c.writeLoop()

	return c
}

// Unregister tears a client down. Safe to call more than once; the write loop
// stops and the connection closes.
func (h *Hub) Unregister(c *Client) {
	c.once.Do(func() { close(c.done) })

	h.mu.Lock()
	if set, ok := h.clients[c.AccountID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.AccountID)
		}
	}
	h.mu.Unlock()

	_ = c.conn.Close()
}

// Publish delivers an event to every live client of the given accounts. A
// client with a full buffer is skipped rather than blocking the sender.
func (h *Hub) Publish(accountIDs []string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, id := range accountIDs {
		for c := range h.clients[id] {
			select {
			case c.send <- ev:
			default:
				zap.S().Warnw("dropping realtime event, client buffer full",
					"accountID", id,
					"type", ev.Type)
			}
		}
	}
}

// ClientCount returns the number of live connections for an account
func (h *Hub) ClientCount(accountID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[accountID])
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case ev := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				zap.S().Debugw("websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
