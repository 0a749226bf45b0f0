package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

func SetupRoutes(app *fiber.App, handler *Handler, log *zap.Logger) {
	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
	}))

	// Custom logger middleware
	app.Use(logger.New(logger.Config{
		Format:     "${time} ${pid} ${locals:requestid} ${status} - ${method} ${path}\n",
		TimeFormat: time.RFC3339,
	}))

	// API v1 routes
	api := app.Group("/api/v1")

	api.Get("/health", handler.GetHealth)
	api.Get("/metrics", handler.GetMetrics)

	// Stateless lookups
	locations := api.Group("/locations")
	locations.Get("/search", handler.SearchLocation)
	locations.Get("/suggest", handler.SuggestLocations)
	locations.Get("/reverse", handler.ReverseLocation)

	api.Get("/weather/current", handler.GetCurrentWeather)

	// Interactive sessions
	sessions := api.Group("/sessions")
	sessions.Post("/", handler.CreateSession)
	sessions.Get("/:id", handler.GetSession)
	sessions.Delete("/:id", handler.DeleteSession)
	sessions.Put("/:id/query", handler.SetQuery)
	sessions.Post("/:id/submit", handler.Submit)
	sessions.Post("/:id/suggestions/show", handler.ShowSuggestions)
	sessions.Post("/:id/suggestions/dismiss", handler.DismissSuggestions)
	sessions.Post("/:id/suggestions/:index", handler.SelectSuggestion)
	sessions.Put("/:id/mode", handler.SetMode)
	sessions.Post("/:id/map/click", handler.MapClick)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
			"path":  c.Path(),
		})
	})

	log.Debug("Routes registered")
}
