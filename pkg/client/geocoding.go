package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

const DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"

// GeocodingClient talks to the Open-Meteo geocoding search API.
// Autocomplete searches go through their own breaker.
type GeocodingClient struct {
	*BaseClient
	suggest *BaseClient
	baseURL string
}

type GeocodingResult struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country"`
}

type GeocodingResponse struct {
	Results []GeocodingResult `json:"results"`
}

type SearchOptions struct {
	Count    int
	Language string
	// Autocomplete marks a best-effort lookup made while the user types.
	Autocomplete bool
}

func NewGeocodingClient(baseURL string, config ClientConfig, logger *zap.Logger) *GeocodingClient {
	if baseURL == "" {
		baseURL = DefaultGeocodingURL
	}
	return &GeocodingClient{
		BaseClient: NewBaseClient("geocoding", config, logger),
		suggest:    NewBaseClient("geocoding-suggest", config, logger),
		baseURL:    baseURL,
	}
}

// Suggestions exposes the breaker used for autocomplete searches.
func (c *GeocodingClient) Suggestions() *BaseClient {
	return c.suggest
}

// Search returns up to opts.Count matches for name. A missing results array
// is returned as an empty slice.
func (c *GeocodingClient) Search(ctx context.Context, name string, opts SearchOptions) ([]GeocodingResult, error) {
	params := url.Values{}
	params.Set("name", name)
	params.Set("count", strconv.Itoa(opts.Count))
	if opts.Language != "" {
		params.Set("language", opts.Language)
		params.Set("format", "json")
	}

	base := c.BaseClient
	if opts.Autocomplete {
		base = c.suggest
	}
	data, err := base.Get(ctx, c.baseURL+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to search locations: %w", err)
	}

	var response GeocodingResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to parse geocoding response: %w", err)
	}
	if response.Results == nil {
		return []GeocodingResult{}, nil
	}
	return response.Results, nil
}
