package services

import (
	"context"

	"github.com/bobby-s-dev/weather-now/internal/models"
	"github.com/bobby-s-dev/weather-now/pkg/client"
	"go.uber.org/zap"
)

type CurrentWeatherClient interface {
	GetCurrent(ctx context.Context, lat, lon float64) (*client.OpenMeteoCurrentResponse, error)
}

type WeatherFetcher struct {
	client CurrentWeatherClient
	logger *zap.Logger
}

func NewWeatherFetcher(c CurrentWeatherClient, logger *zap.Logger) *WeatherFetcher {
	return &WeatherFetcher{client: c, logger: logger}
}

// FetchCurrent returns a complete snapshot or an error, never a partial one.
func (f *WeatherFetcher) FetchCurrent(ctx context.Context, lat, lon float64) (*models.WeatherSnapshot, error) {
	resp, err := f.client.GetCurrent(ctx, lat, lon)
	if err != nil {
		f.logger.Error("Failed to fetch current weather",
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
			zap.Error(err))
		return nil, newNetworkError("fetch_weather", MsgWeatherFetchFailed, err)
	}

	cur := resp.Current
	return &models.WeatherSnapshot{
		Temperature:         cur.Temperature2M,
		ApparentTemperature: cur.ApparentTemperature,
		RelativeHumidity:    cur.RelativeHumidity2M,
		Precipitation:       cur.Precipitation,
		WindSpeed:           cur.WindSpeed10M,
		WindDirection:       cur.WindDirection10M,
		WeatherCode:         cur.WeatherCode,
		IsDay:               cur.IsDay == 1,
		Timezone:            resp.Timezone,
	}, nil
}
