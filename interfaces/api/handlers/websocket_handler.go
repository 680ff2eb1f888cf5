package handlers

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"task-api/domain/access"
	wshub "task-api/infrastructure/websocket"
	"task-api/pkg/logger"
	"task-api/pkg/utils"
)

type WebSocketHandler struct {
	hub *wshub.Hub
}

func NewWebSocketHandler(hub *wshub.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// WebSocketUpgrade rejects plain HTTP requests to the websocket endpoint.
func (h *WebSocketHandler) WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

const writeWait = 10 * time.Second

// syncConn serialises writes; the hub and the read loop both answer on the same socket.
type syncConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *syncConn) WriteJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteJSON(v)
}

func (s *syncConn) Close() error {
	return s.conn.Close()
}

// HandleWebSocket streams the caller's task events until the client goes away.
// Authentication happens before the upgrade, so a caller is always present.
func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	caller, ok := c.Locals(utils.CallerLocalsKey).(*access.Caller)
	if !ok || caller == nil {
		_ = c.Close()
		return
	}

	conn := &syncConn{conn: c}
	h.hub.Register(conn, caller.UserID)
	defer h.hub.Unregister(conn)

	log := logger.WithComponent("websocket")
	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			log.Debug("WebSocket read ended", "user_id", caller.UserID, "error", err)
			return
		}
		h.hub.HandleClientMessage(conn, message)
	}
}
