package routes

import (
	"github.com/gofiber/fiber/v2"

	"task-api/interfaces/api/handlers"
	"task-api/interfaces/api/middleware"
)

// SetupTaskRoutes leaves anonymous access to the task service, which knows the access mode.
func SetupTaskRoutes(api fiber.Router, h *handlers.Handlers) {
	tasks := api.Group("/tasks", middleware.Authenticate(h.Resolver))
	tasks.Get("/", h.TaskHandler.ListTasks)
	tasks.Post("/", h.TaskHandler.CreateTask)
	tasks.Get("/:id", h.TaskHandler.GetTask)
	tasks.Put("/:id", h.TaskHandler.UpdateTask)
	tasks.Delete("/:id", h.TaskHandler.DeleteTask)
}
