package handler

import (
	"net/http"

	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/storefront/admin-console/internal/middleware"
	"github.com/storefront/admin-console/internal/session"
	"github.com/storefront/admin-console/internal/websocket"
)

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub            *websocket.Hub
	sessions       middleware.SessionResolver
	allowedOrigins map[string]bool
	upgrader       ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *websocket.Hub, sessions middleware.SessionResolver, allowedOrigins []string) *WebSocketHandler {
	// Build origin lookup map
	originMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		originMap[origin] = true
	}

	h := &WebSocketHandler{
		hub:            hub,
		sessions:       sessions,
		allowedOrigins: originMap,
	}

	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// checkOrigin validates the request origin against allowed origins
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Allow requests with no Origin header (e.g., same-origin or non-browser clients)
		return true
	}

	if h.allowedOrigins[origin] {
		return true
	}

	log.Warn().
		Str("origin", origin).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// HandleWS handles WebSocket connection requests at GET /ws.
// The session cookie (or session header) identifies which tab stream to join.
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	id, ok := session.IDFromRequest(c.Request())
	if !ok {
		log.Debug().Msg("WebSocket connection rejected: missing session")
		return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}

	sess, err := h.sessions.Session(id)
	if err != nil {
		log.Debug().Err(err).Msg("WebSocket connection rejected: invalid session")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	// Create client and register with hub
	client := websocket.NewClient(conn, sess.ID, h.hub)
	h.hub.Register(client)

	log.Info().
		Str("session_id", sess.ID.String()).
		Str("client_id", client.ID()).
		Msg("WebSocket client connected")

	// Start read/write pumps in goroutines
	go client.WritePump()
	go client.ReadPump()

	return nil
}
