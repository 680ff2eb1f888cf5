package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"task-api/pkg/logger"
	"task-api/pkg/utils"
)

// ErrorHandler renders errors that escape handlers in the standard envelope.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}

		if code >= fiber.StatusInternalServerError {
			logger.ErrorContext(c.UserContext(), "Unhandled error", "path", c.Path(), "error", err)
		} else {
			logger.WarnContext(c.UserContext(), "Request error", "path", c.Path(), "status", code, "error", err)
		}

		return utils.ErrorResponse(c, code, utils.ErrorCodeForStatus(code), message, nil)
	}
}
