package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/chaman08/buildhub-sub001/api"
	"github.com/chaman08/buildhub-sub001/realtime"
)

// a client that misses two hub pings in a row is considered gone
const pongWait = 60 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WS exported for testing purposes
type WS struct {
	Hub *realtime.Hub
}

// SubscribeHandler upgrades the connection and registers it with the hub.
// The bearer token may come from the Authorization header or a token query
// parameter. The subscription lives until the client closes the socket.
func (ws WS) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	principal, err := api.AuthenticateRequest(r)
	if err != nil {
		zap.S().Errorw("unauthorized websocket", "url", r.URL, "error", err)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "unauthorized"}`))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("websocket upgrade failed", "error", err)
		return
	}

	client := ws.Hub.Register(principal.ID(), conn)
	zap.S().Debugw("websocket client connected", "accountID", principal.ID())

	// drain the socket until the client goes away, then tear down. Each pong
	// extends the read deadline, so a silently dead peer is reaped once the
	// deadline lapses instead of waiting for a ping write to fail.
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	ws.Hub.Unregister(client)
	zap.S().Debugw("websocket client disconnected", "accountID", principal.ID())
}
