package userauth

import (
	"github.com/gofiber/fiber/v2"
	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

// ErrorHandler maps domain errors to HTTP responses. Internal error
// messages are never echoed back to the client.
func ErrorHandler(logger Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = defLogger{}
	}

	return func(c *fiber.Ctx, err error) error {
		if verr, ok := err.(validation.Errors); ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fiber.Map{
					"message":   "validation failed",
					"text_code": "validation_error",
					"fields":    verr,
				},
			})
		}

		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			status := richErr.Code
			if status == 0 {
				status = fiber.StatusInternalServerError
			}

			message := richErr.Message
			if richErr.Category == goerrors.CategoryInternal {
				logger.Error("internal error: %v", err)
				message = "internal server error"
			}

			body := fiber.Map{
				"message": message,
			}
			if richErr.TextCode != "" {
				body["text_code"] = richErr.TextCode
			}

			return c.Status(status).JSON(fiber.Map{"error": body})
		}

		if ferr, ok := err.(*fiber.Error); ok {
			return c.Status(ferr.Code).JSON(fiber.Map{
				"error": fiber.Map{"message": ferr.Message},
			})
		}

		logger.Error("unhandled error: %v", err)

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fiber.Map{"message": "internal server error"},
		})
	}
}
