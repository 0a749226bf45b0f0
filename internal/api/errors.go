package api

import (
	"errors"

	"github.com/bobby-s-dev/weather-now/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// upstreamError maps lookup failures onto HTTP errors carrying the
// user-facing message.
func upstreamError(err error) error {
	code := fiber.StatusInternalServerError

	var netErr *services.NetworkError
	var notFound *services.NotFoundError
	switch {
	case errors.As(err, &notFound):
		code = fiber.StatusNotFound
	case errors.As(err, &netErr):
		code = fiber.StatusBadGateway
	}

	return fiber.NewError(code, services.UserMessage(err))
}

func ErrorHandler(c *fiber.Ctx, err error) error {
	zap.L().Error("HTTP error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))

	// Default to 500 status code
	code := fiber.StatusInternalServerError

	// Check if it's a Fiber error
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   err.Error(),
		"success": false,
	})
}
