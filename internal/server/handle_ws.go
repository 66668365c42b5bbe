package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/chomp/streetartctf/internal/chomp"
	"github.com/chomp/streetartctf/internal/game"
)

const (
	wsCapture = "capture"
	wsPing    = "ping"
)

// WSRequest is a message a WebSocket client sends.
type WSRequest struct {
	Type     string          `json:"type"`
	ArtID    string          `json:"artId,omitempty"`
	Location *chomp.Location `json:"location,omitempty"`
}

// handleWS upgrades to a WebSocket that streams game events and accepts
// capture and ping requests. The session token is passed as ?token=.
func handleWS(logger *slog.Logger, engine *game.Engine, sessions SessionStore, broker *Broker, hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			writeError(w, http.StatusUnauthorized, "token query parameter required")
			return
		}
		pid, err := playerFromToken(r.Context(), sessions, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid session token")
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			logger.Error("ws accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		c := &Client{
			ID:       uuid.NewString(),
			PlayerID: pid,
			Conn:     conn,
			Send:     broker.Subscribe(),
			Replies:  make(chan Message, 8),
		}
		hub.Register(c)
		defer hub.Unregister(c)
		defer broker.Unsubscribe(c.Send)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		go func() {
			// A dead writer must not leave reply waiting.
			c.WritePump(ctx)
			cancel()
		}()

		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				status := websocket.CloseStatus(err)
				if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
					logger.Debug("ws read ended", "player", pid, "error", err)
				}
				return
			}

			var req WSRequest
			if err := json.Unmarshal(data, &req); err != nil {
				c.reply(ctx, Event{Type: EventError, Data: ErrorResponse{Error: "invalid message"}})
				continue
			}

			switch req.Type {
			case wsCapture:
				res := engine.Capture(ctx, pid, req.ArtID, req.Location)
				c.reply(ctx, Event{Type: EventCaptureResult, Data: res})
			case wsPing:
				c.reply(ctx, Event{Type: EventPong})
			default:
				c.reply(ctx, Event{Type: EventError, Data: ErrorResponse{Error: "unknown message type"}})
			}
		}
	}
}
