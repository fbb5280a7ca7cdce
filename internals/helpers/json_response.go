package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

/* ===============================
   Envelope
=================================*/

// ErrorBody is the "error" member of a failed response.
type ErrorBody struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Envelope is the single response shape every endpoint returns, so clients
// can branch on Success alone.
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       any         `json:"data,omitempty"`
	Error      *ErrorBody  `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

func ok(c *fiber.Ctx, status int, message, fallback string, data any) error {
	if strings.TrimSpace(message) == "" {
		message = fallback
	}
	return c.Status(status).JSON(Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// JsonOK: generic success (GET detail, actions)
func JsonOK(c *fiber.Ctx, message string, data any) error {
	return ok(c, fiber.StatusOK, message, "ok", data)
}

// JsonCreated: POST success
func JsonCreated(c *fiber.Ctx, message string, data any) error {
	return ok(c, fiber.StatusCreated, message, "created", data)
}

// JsonUpdated: PUT/PATCH success
func JsonUpdated(c *fiber.Ctx, message string, data any) error {
	return ok(c, fiber.StatusOK, message, "updated", data)
}

// JsonDeleted: DELETE success
func JsonDeleted(c *fiber.Ctx, message string, data any) error {
	return ok(c, fiber.StatusOK, message, "deleted", data)
}

// JsonList: list with pagination
func JsonList(c *fiber.Ctx, message string, data any, pagination Pagination) error {
	if strings.TrimSpace(message) == "" {
		message = "ok"
	}
	return c.Status(fiber.StatusOK).JSON(Envelope{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: &pagination,
	})
}

/* ===============================
   Errors
=================================*/

// JsonError: non-validation failure
func JsonError(c *fiber.Ctx, status int, message string) error {
	return JsonErrorWithDetails(c, status, message, nil)
}

func JsonErrorWithDetails(c *fiber.Ctx, status int, message string, details any) error {
	if status == 0 {
		status = fiber.StatusInternalServerError
	}
	if strings.TrimSpace(message) == "" {
		message = fiber.ErrInternalServerError.Message
		if status < 500 {
			message = "Request failed"
		}
	}
	return c.Status(status).JSON(Envelope{
		Success: false,
		Error:   &ErrorBody{Message: message, Details: details},
	})
}

// JsonValidationError: 400 with the complete violation list
func JsonValidationError(c *fiber.Ctx, violations []FieldViolation) error {
	if violations == nil {
		violations = []FieldViolation{}
	}
	return JsonErrorWithDetails(c, fiber.StatusBadRequest, "Validation failed", violations)
}
