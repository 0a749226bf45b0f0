package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Server struct {
		Port         string
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
		LogLevel     string
	}

	Upstream struct {
		GeocodingURL        string
		ReverseGeocodingURL string
		WeatherURL          string
		Timeout             time.Duration
		UserAgent           string
	}

	Suggest struct {
		Debounce time.Duration
		MinChars int
		Limit    int
	}

	Session struct {
		IdleTimeout  time.Duration
		MaxSessions  int
		ReapSchedule string
	}

	CircuitBreaker struct {
		Threshold int
		Timeout   time.Duration
		Interval  time.Duration
	}
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}

	// Server configuration
	cfg.Server.Port = getEnv("FIBER_PORT", "8080")
	cfg.Server.ReadTimeout = parseDuration(getEnv("FIBER_READ_TIMEOUT", "10s"))
	cfg.Server.WriteTimeout = parseDuration(getEnv("FIBER_WRITE_TIMEOUT", "30s"))
	cfg.Server.LogLevel = getEnv("LOG_LEVEL", "info")

	// Upstream APIs
	cfg.Upstream.GeocodingURL = getEnv("GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1/search")
	cfg.Upstream.ReverseGeocodingURL = getEnv("REVERSE_GEOCODING_URL", "https://nominatim.openstreetmap.org/reverse")
	cfg.Upstream.WeatherURL = getEnv("WEATHER_URL", "https://api.open-meteo.com/v1/forecast")
	cfg.Upstream.Timeout = parseDuration(getEnv("HTTP_TIMEOUT", "10s"))
	cfg.Upstream.UserAgent = getEnv("USER_AGENT", "weather-now/1.0")

	// Autocomplete
	cfg.Suggest.Debounce = parseDuration(getEnv("SUGGEST_DEBOUNCE", "300ms"))
	cfg.Suggest.MinChars = parseInt(getEnv("SUGGEST_MIN_CHARS", "3"))
	cfg.Suggest.Limit = parseInt(getEnv("SUGGEST_LIMIT", "5"))

	// Sessions
	cfg.Session.IdleTimeout = parseDuration(getEnv("SESSION_IDLE_TIMEOUT", "30m"))
	cfg.Session.MaxSessions = parseInt(getEnv("SESSION_MAX", "1000"))
	cfg.Session.ReapSchedule = getEnv("SESSION_REAP_SCHEDULE", "@every 1m")

	// Circuit breaker configuration
	cfg.CircuitBreaker.Threshold = parseInt(getEnv("CIRCUIT_BREAKER_THRESHOLD", "3"))
	cfg.CircuitBreaker.Timeout = parseDuration(getEnv("CIRCUIT_BREAKER_TIMEOUT", "30s"))
	cfg.CircuitBreaker.Interval = parseDuration(getEnv("CIRCUIT_BREAKER_INTERVAL", "60s"))

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		zap.L().Warn("Failed to parse duration", zap.String("value", value), zap.Error(err))
		return 0
	}
	return duration
}

func parseInt(value string) int {
	intValue, err := strconv.Atoi(value)
	if err != nil {
		zap.L().Warn("Failed to parse int", zap.String("value", value), zap.Error(err))
		return 0
	}
	return intValue
}
