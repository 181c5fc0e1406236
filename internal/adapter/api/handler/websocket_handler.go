package handler

import (
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"vendora/internal/adapter/api/middleware"
	ws "vendora/internal/infrastructure/websocket"
	"vendora/pkg/errors"
)

type WebSocketHandler struct {
	wsManager *ws.Manager
	upgrader  gorillaws.Upgrader
	logger    *zap.Logger
}

// NewWebSocketHandler accepts handshakes from allowedOrigins only; an empty
// list accepts any origin.
func NewWebSocketHandler(wsManager *ws.Manager, allowedOrigins []string, logger *zap.Logger) *WebSocketHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	return &WebSocketHandler{
		wsManager: wsManager,
		logger:    logger,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(origins) == 0 {
					return true
				}
				_, ok := origins[r.Header.Get("Origin")]
				return ok
			},
		},
	}
}

// HandleWebSocket upgrades an authenticated request and streams the user's
// notifications and support messages until the connection closes.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	userID := middleware.CurrentUserID(c)
	if userID == "" {
		return errors.Unauthorized("Authentication required", nil)
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.String("uid", userID), zap.Error(err))
		return nil
	}

	client := ws.NewClient(userID, conn)
	h.wsManager.Register <- client

	go client.ReadPump(h.wsManager)
	go client.WritePump()

	return nil
}
