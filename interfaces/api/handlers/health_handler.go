package handlers

import (
	"github.com/gofiber/fiber/v2"

	"task-api/pkg/scheduler"
)

type HealthHandler struct {
	scheduler scheduler.JobScheduler // nil when no housekeeping jobs are configured
}

func NewHealthHandler(jobs scheduler.JobScheduler) *HealthHandler {
	return &HealthHandler{scheduler: jobs}
}

// Health reports liveness and the state of the housekeeping jobs.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	body := fiber.Map{
		"status":  "ok",
		"message": "Server is running",
		"service": "Task API",
	}
	if h.scheduler != nil {
		body["scheduler"] = fiber.Map{
			"running": h.scheduler.IsRunning(),
			"jobs":    h.scheduler.ListJobs(),
		}
	}
	return c.JSON(body)
}
