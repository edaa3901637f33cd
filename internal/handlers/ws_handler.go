package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/studybuddy/studybuddy-api/internal/auth"
	"github.com/studybuddy/studybuddy-api/internal/config"
	apperr "github.com/studybuddy/studybuddy-api/internal/errors"
	"github.com/studybuddy/studybuddy-api/internal/ws"
)

// WSHandler upgrades authenticated connections and hands them to the hub.
// Browsers cannot set headers on WebSocket handshakes, so the token is
// passed as a query parameter instead of an Authorization header.
type WSHandler struct {
	hub     *ws.Hub
	authCfg config.AuthConfig
	logger  *slog.Logger

	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *ws.Hub, authCfg config.AuthConfig, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		hub:     hub,
		authCfg: authCfg,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// origin checking is handled by the CORS layer in front
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve handles GET /ws?token=<jwt>.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, apperr.InvalidArgumentf("token query parameter is required"))
		return
	}

	claims, err := auth.ValidateToken(token, h.authCfg)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("ws upgrade failed", "user_id", claims.UserID, "err", err)
		return
	}

	ws.NewClient(h.hub, conn, claims.UserID, h.logger)
}
