package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobby-s-dev/weather-now/internal/api"
	"github.com/bobby-s-dev/weather-now/internal/config"
	"github.com/bobby-s-dev/weather-now/internal/orchestrator"
	"github.com/bobby-s-dev/weather-now/internal/scheduler"
	"github.com/bobby-s-dev/weather-now/internal/services"
	"github.com/bobby-s-dev/weather-now/pkg/client"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	zap.ReplaceGlobals(logger)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	if cfg.Server.LogLevel == "debug" {
		if devLogger, err := zap.NewDevelopment(); err == nil {
			logger = devLogger
			zap.ReplaceGlobals(logger)
		}
	}
	defer logger.Sync()

	logger.Info("Starting Weather Now service")

	// Upstream clients
	clientConfig := client.ClientConfig{
		Timeout:         cfg.Upstream.Timeout,
		UserAgent:       cfg.Upstream.UserAgent,
		Threshold:       cfg.CircuitBreaker.Threshold,
		BreakerTimeout:  cfg.CircuitBreaker.Timeout,
		BreakerInterval: cfg.CircuitBreaker.Interval,
	}
	geocoding := client.NewGeocodingClient(cfg.Upstream.GeocodingURL, clientConfig, logger)
	nominatim := client.NewNominatimClient(cfg.Upstream.ReverseGeocodingURL, clientConfig, logger)
	openMeteo := client.NewOpenMeteoClient(cfg.Upstream.WeatherURL, clientConfig, logger)

	resolver := services.NewLocationResolver(geocoding, nominatim, cfg.Suggest.Limit, logger)
	fetcher := services.NewWeatherFetcher(openMeteo, logger)

	// Sessions and the reaper that expires them
	sessions := services.NewSessionStore[*api.Session](cfg.Session.IdleTimeout, cfg.Session.MaxSessions, logger)
	reaper := scheduler.NewScheduler(sessions, cfg.Session.ReapSchedule, logger)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		JSONEncoder:  json.Marshal,
		ErrorHandler: api.ErrorHandler,
	})

	// Setup handlers and routes
	handler := api.NewHandler(api.Deps{
		Resolver: resolver,
		Fetcher:  fetcher,
		Sessions: sessions,
		Options: orchestrator.Options{
			Debounce: cfg.Suggest.Debounce,
			MinChars: cfg.Suggest.MinChars,
		},
		Scheduler: reaper,
		Breakers: map[string]api.BreakerReporter{
			"geocoding":         geocoding,
			"geocoding_suggest": geocoding.Suggestions(),
			"nominatim":         nominatim,
			"openmeteo":         openMeteo,
		},
	}, logger)
	api.SetupRoutes(app, handler, logger)

	// Start reaper
	if err := reaper.Start(); err != nil {
		logger.Fatal("Failed to start session reaper", zap.Error(err))
	}

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("Starting server", zap.String("address", addr))

		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reaper.Stop()

	// Shutdown Fiber app
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	sessions.CloseAll()
	logger.Info("Server stopped")
}
