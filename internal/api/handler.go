package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/bobby-s-dev/weather-now/internal/orchestrator"
	"github.com/bobby-s-dev/weather-now/internal/presenter"
	"github.com/bobby-s-dev/weather-now/internal/services"
	"github.com/bobby-s-dev/weather-now/internal/weathercode"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var validate = validator.New()

// StatusReporter is implemented by the session reaper.
type StatusReporter interface {
	GetStatus() map[string]interface{}
}

// BreakerReporter is implemented by the upstream clients.
type BreakerReporter interface {
	BreakerState() string
}

type Deps struct {
	Resolver orchestrator.Resolver
	Fetcher  orchestrator.Fetcher
	Sessions *services.SessionStore[*Session]
	Options  orchestrator.Options

	// Optional, reported by /health and /metrics.
	Scheduler StatusReporter
	Breakers  map[string]BreakerReporter
}

type Handler struct {
	resolver  orchestrator.Resolver
	fetcher   orchestrator.Fetcher
	sessions  *services.SessionStore[*Session]
	options   orchestrator.Options
	scheduler StatusReporter
	breakers  map[string]BreakerReporter
	renderer  presenter.Renderer
	logger    *zap.Logger
}

func NewHandler(deps Deps, logger *zap.Logger) *Handler {
	return &Handler{
		resolver:  deps.Resolver,
		fetcher:   deps.Fetcher,
		sessions:  deps.Sessions,
		options:   deps.Options,
		scheduler: deps.Scheduler,
		breakers:  deps.Breakers,
		logger:    logger,
	}
}

type coordinateQuery struct {
	Lat float64 `validate:"latitude"`
	Lon float64 `validate:"longitude"`
}

func (q *coordinateQuery) bind(c *fiber.Ctx) error {
	lat, lon := c.Query("lat"), c.Query("lon")
	if lat == "" || lon == "" {
		return fiber.NewError(fiber.StatusBadRequest, "lat and lon parameters are required")
	}

	var err error
	if q.Lat, err = strconv.ParseFloat(lat, 64); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "lat must be a number")
	}
	if q.Lon, err = strconv.ParseFloat(lon, 64); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "lon must be a number")
	}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// SearchLocation handles GET /api/v1/locations/search
func (h *Handler) SearchLocation(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name parameter is required")
	}

	loc, err := h.resolver.ResolveByName(c.UserContext(), name)
	if err != nil {
		return upstreamError(err)
	}
	if loc == nil {
		return upstreamError(services.NewCityNotFound(c.Query("name")))
	}

	return c.JSON(fiber.Map{"location": loc})
}

// SuggestLocations handles GET /api/v1/locations/suggest
func (h *Handler) SuggestLocations(c *fiber.Ctx) error {
	suggestions := h.resolver.Suggest(c.UserContext(), c.Query("q"))
	return c.JSON(fiber.Map{"suggestions": suggestions})
}

// ReverseLocation handles GET /api/v1/locations/reverse
func (h *Handler) ReverseLocation(c *fiber.Ctx) error {
	var q coordinateQuery
	if err := q.bind(c); err != nil {
		return err
	}

	loc, err := h.resolver.ResolveByCoordinates(c.UserContext(), q.Lat, q.Lon)
	if err != nil {
		return upstreamError(err)
	}
	if loc == nil {
		return upstreamError(services.NewCoordinatesNotFound(q.Lat, q.Lon))
	}

	return c.JSON(fiber.Map{"location": loc})
}

// GetCurrentWeather handles GET /api/v1/weather/current
func (h *Handler) GetCurrentWeather(c *fiber.Ctx) error {
	var q coordinateQuery
	if err := q.bind(c); err != nil {
		return err
	}

	h.logger.Info("Fetching current weather",
		zap.Float64("lat", q.Lat),
		zap.Float64("lon", q.Lon))

	snapshot, err := h.fetcher.FetchCurrent(c.UserContext(), q.Lat, q.Lon)
	if err != nil {
		return upstreamError(err)
	}

	code, isDay := snapshot.WeatherCode, snapshot.IsDay
	return c.JSON(fiber.Map{
		"weather":     snapshot,
		"category":    weathercode.Classify(code),
		"description": weathercode.Describe(code),
		"icon":        weathercode.IconFor(code, isDay),
		"theme":       weathercode.ThemeFor(&code, &isDay),
	})
}

// GetHealth handles GET /api/v1/health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now(),
		"uptime":    time.Since(startTime).String(),
		"sessions":  h.sessions.Len(),
		"breakers":  h.breakerStates(),
	})
}

// GetMetrics handles GET /api/v1/metrics
func (h *Handler) GetMetrics(c *fiber.Ctx) error {
	metrics := fiber.Map{
		"sessions": h.sessions.GetStats(),
		"breakers": h.breakerStates(),
	}
	if h.scheduler != nil {
		metrics["reaper"] = h.scheduler.GetStatus()
	}

	return c.JSON(fiber.Map{
		"metrics":   metrics,
		"timestamp": time.Now(),
	})
}

func (h *Handler) breakerStates() map[string]string {
	states := make(map[string]string, len(h.breakers))
	for name, b := range h.breakers {
		states[name] = b.BreakerState()
	}
	return states
}

var startTime = time.Now()
