package middlewares

import (
	"errors"
	"log"

	helper "portfolio_backend/internals/helpers"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the app-wide fiber.Config.ErrorHandler. Every error that
// escapes a handler leaves as the standard envelope; unexpected errors are
// logged and reported without internal detail.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var ve *helper.ValidationError
	if errors.As(err, &ve) {
		return helper.JsonValidationError(c, ve.Violations)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code >= fiber.StatusInternalServerError {
			log.Printf("[ERROR] %s %s: %v", c.Method(), c.OriginalURL(), err)
			return helper.JsonError(c, fe.Code, "Internal server error")
		}
		return helper.JsonError(c, fe.Code, fe.Message)
	}

	log.Printf("[ERROR] reqid=%v %s %s: %v", c.Locals(LocRequestID), c.Method(), c.OriginalURL(), err)
	return helper.JsonError(c, fiber.StatusInternalServerError, "Internal server error")
}
