package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"task-api/domain/dto"
	"task-api/domain/services"
	"task-api/pkg/logger"
	"task-api/pkg/utils"
)

type TaskHandler struct {
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

func (h *TaskHandler) ListTasks(c *fiber.Ctx) error {
	ctx := c.UserContext()

	tasks, err := h.taskService.ListTasks(ctx, utils.GetCallerFromContext(c))
	if err != nil {
		return h.respondError(c, err)
	}

	return utils.SuccessResponse(c, dto.TasksToTaskResponses(tasks))
}

func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req dto.TaskRequest
	if fields, err := parseBody(c, &req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return utils.BadRequestResponse(c, "Invalid request body")
	} else if fields != nil {
		return utils.ValidationErrorResponse(c, fields)
	}

	task, err := h.taskService.CreateTask(ctx, utils.GetCallerFromContext(c), &req)
	if err != nil {
		return h.respondError(c, err)
	}

	return utils.CreatedResponse(c, dto.TaskToTaskResponse(task))
}

func (h *TaskHandler) GetTask(c *fiber.Ctx) error {
	ctx := c.UserContext()

	task, err := h.taskService.GetTask(ctx, utils.GetCallerFromContext(c), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}

	return utils.SuccessResponse(c, dto.TaskToTaskResponse(task))
}

// UpdateTask replaces every writable field of the task.
func (h *TaskHandler) UpdateTask(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req dto.TaskRequest
	if fields, err := parseBody(c, &req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return utils.BadRequestResponse(c, "Invalid request body")
	} else if fields != nil {
		return utils.ValidationErrorResponse(c, fields)
	}

	task, err := h.taskService.UpdateTask(ctx, utils.GetCallerFromContext(c), c.Params("id"), &req)
	if err != nil {
		return h.respondError(c, err)
	}

	return utils.SuccessResponse(c, dto.TaskToTaskResponse(task))
}

func (h *TaskHandler) DeleteTask(c *fiber.Ctx) error {
	ctx := c.UserContext()

	if err := h.taskService.DeleteTask(ctx, utils.GetCallerFromContext(c), c.Params("id")); err != nil {
		return h.respondError(c, err)
	}

	return utils.NoContentResponse(c)
}

func (h *TaskHandler) respondError(c *fiber.Ctx, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return utils.ValidationErrorResponse(c, verr.Fields)
	case errors.Is(err, services.ErrUnauthenticated):
		return utils.UnauthorizedResponse(c, "")
	case errors.Is(err, services.ErrTaskNotFound):
		return utils.NotFoundResponse(c, "")
	case errors.Is(err, services.ErrForbidden):
		return utils.ForbiddenResponse(c, "")
	default:
		logger.ErrorContext(c.UserContext(), "Task request failed", "path", c.Path(), "error", err)
		return utils.InternalServerErrorResponse(c)
	}
}
