package routes

import (
	"github.com/gofiber/fiber/v2"

	"task-api/interfaces/api/handlers"
)

func SetupRoutes(app *fiber.App, h *handlers.Handlers) {
	SetupHealthRoutes(app, h)

	api := app.Group("/api/v1")

	SetupAuthRoutes(api, h)
	SetupTaskRoutes(api, h)

	// WebSocket lives outside the API group
	SetupWebSocketRoutes(app, h)
}
