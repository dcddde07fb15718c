package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/badminton-community/hub"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub      *hub.Hub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler accepts upgrades from the given origins. An empty
// list or "*" allows any origin.
func NewWebSocketHandler(h *hub.Hub, allowedOrigins []string) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &WebSocketHandler{
		hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed["*"] || allowed[origin]
			},
		},
	}
}

// ServeNotifications godoc
// @Summary Live notification stream
// @Tags notifications
// @Description Upgrades to a websocket. Browsers may pass the token in the "token" query parameter.
// @Param token query string false "JWT"
// @Success 101
// @Failure 401 {object} map[string]string
// @Router /ws/notifications [get]
func (h *WebSocketHandler) ServeNotifications(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentActor(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "websocket upgrade failed", slog.Int("user_id", actor.UserID), slog.Any("error", err))
		return
	}

	h.hub.Attach(conn, hub.UserRoom(actor.UserID))
	slog.DebugContext(r.Context(), "websocket client attached", slog.Int("user_id", actor.UserID))
}
