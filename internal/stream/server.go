package stream

import (
	"crypto/hmac"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/config"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Server exposes the hub over a WebSocket endpoint at
// /ws/generations/{id}. Browsers cannot set custom headers on a
// WebSocket handshake, so the bearer token travels as a query
// parameter.
type Server struct {
	hub      *Hub
	secret   string
	upgrader websocket.Upgrader
}

func NewServer(hub *Hub, secret string) *Server {
	return &Server{
		hub:    hub,
		secret: secret,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The bot's mini-app origin is not fixed across deployments.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP handler serving the streaming endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/generations/{id}", s.serveWS)
	return mux
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if !hmac.Equal([]byte(token), []byte(s.secret)) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	requestID, err := uuid.Parse(strings.TrimSpace(r.PathValue("id")))
	if err != nil {
		http.Error(w, "invalid request id", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	events, cancel := s.hub.Subscribe(requestID)
	defer cancel()
	defer conn.Close()

	// Reader goroutine only to detect the peer going away.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(config.StreamPingInterval)
	defer ping.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				// Stream finished or subscriber was dropped.
				deadline := time.Now().Add(config.StreamWriteTimeout)
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
				return
			}
			conn.SetWriteDeadline(time.Now().Add(config.StreamWriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				slog.Debug("stream write failed", "request_id", requestID, "error", err)
				return
			}
		case <-ping.C:
			deadline := time.Now().Add(config.StreamWriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		case <-clientGone:
			return
		case <-r.Context().Done():
			return
		}
	}
}
