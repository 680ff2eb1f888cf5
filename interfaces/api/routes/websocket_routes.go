package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"task-api/interfaces/api/handlers"
	"task-api/interfaces/api/middleware"
)

func SetupWebSocketRoutes(app *fiber.App, h *handlers.Handlers) {
	ws := h.WebSocketHandler

	// Browsers cannot set headers on websocket requests, so ?token= is accepted too
	app.Use("/ws", middleware.AuthenticateQuery(h.Resolver), middleware.Protected(), ws.WebSocketUpgrade)
	app.Get("/ws", websocket.New(ws.HandleWebSocket))
}
