package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"companyapi/internal/repository"
	"companyapi/internal/service"
)

// errorPayload defines the single error response body used by every route.
type errorPayload struct {
	Error string `json:"error"`
}

// writeError writes {"error": message} with the given status.
func writeError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(errorPayload{Error: message})
}

// writeServiceError maps service and repository errors onto HTTP statuses.
// Not-found answers with an empty body; store failures surface their raw
// message as a bad request.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.Status(fiber.StatusNotFound)
		return nil
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, service.ErrIDRequired.Error())
	default:
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var e *fiber.Error
		if errors.As(err, &e) {
			status = e.Code
		}
		return writeError(c, status, utils.StatusMessage(status))
	}
}
