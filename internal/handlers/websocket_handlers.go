package handlers

import (
	"net/http"

	"realtime-chat/internal/auth"
	ws "realtime-chat/internal/websocket"
	"realtime-chat/pkg/logger"

	"github.com/gorilla/websocket"
)

type WebSocketHandlers struct {
	verifier auth.TokenVerifier
	gateway  *ws.Gateway
	upgrader websocket.Upgrader
}

func NewWebSocketHandlers(verifier auth.TokenVerifier, gateway *ws.Gateway) *WebSocketHandlers {
	return &WebSocketHandlers{
		verifier: verifier,
		gateway:  gateway,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // Configure for production
		},
	}
}

// HandleWebSocket runs the auth handshake and hands the connection to the
// gateway. A rejected handshake terminates the attempt before any state is
// allocated.
func (h *WebSocketHandlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	ident, err := h.verifier.VerifyToken(tokenStr)
	if err != nil {
		http.Error(w, "authentication error", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Upgrade error: %v", err)
		return
	}

	client := h.gateway.NewClient(conn, ident)
	h.gateway.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
