package handlers

import (
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"godrive/apperrors"
)

// respondError translates a service error into the JSON error envelope.
// Typed domain errors carry their own HTTP status; validation failures map
// to 400; anything else is a 500 with a generic message so internals do not
// leak to the client.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	if verrs, ok := err.(validator.ValidationErrors); ok {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid request data",
			"details": verrs.Error(),
		})
	}

	status := apperrors.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("Internal error: %v", err)
		message = fallback
	}
	return c.Status(status).JSON(fiber.Map{
		"status":  "error",
		"message": message,
	})
}

// respondBadBody is the envelope for an unparseable request body.
func respondBadBody(c *fiber.Ctx, err error) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{
		"status":  "error",
		"message": "Invalid request body",
		"details": err.Error(),
	})
}
