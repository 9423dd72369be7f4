package api

import (
	"errors"

	domain "github.com/example/tasks-api/domain/task"
	"github.com/gofiber/fiber/v2"
)

// errInvalidBody is returned when a request body cannot be decoded.
var errInvalidBody = errors.New("invalid request body")

// statusFor maps an error to its HTTP status and response message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrTextTooLong):
		return fiber.StatusUnprocessableEntity, "Task text is too long"
	case errors.Is(err, domain.ErrInvalidText):
		return fiber.StatusUnprocessableEntity, "Task text is required"
	case errors.Is(err, domain.ErrInvalidID):
		return fiber.StatusUnprocessableEntity, "Invalid task id"
	case errors.Is(err, errInvalidBody):
		return fiber.StatusUnprocessableEntity, "Invalid request body"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusBadRequest, "Task not found"
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}
	return fiber.StatusInternalServerError, "Internal Server Error"
}

// errorHandler handles errors globally. Error bodies are a JSON string.
func (m *APIModule) errorHandler(c *fiber.Ctx, err error) error {
	code, message := statusFor(err)

	if code >= fiber.StatusInternalServerError {
		m.logger.Error("HTTP error", "code", code, "method", c.Method(), "path", c.Path(), "error", err)
	} else {
		m.logger.Debug("HTTP request rejected", "code", code, "method", c.Method(), "path", c.Path(), "error", err)
	}

	return c.Status(code).JSON(message)
}
