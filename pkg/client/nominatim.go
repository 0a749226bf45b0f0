package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

const DefaultReverseGeocodingURL = "https://nominatim.openstreetmap.org/reverse"

type NominatimClient struct {
	*BaseClient
	baseURL string
}

type NominatimAddress struct {
	City        string `json:"city"`
	Town        string `json:"town"`
	Village     string `json:"village"`
	Hamlet      string `json:"hamlet"`
	County      string `json:"county"`
	State       string `json:"state"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
}

// NominatimReverseResponse mirrors /reverse?format=json. Error is set when
// nothing was found at the coordinates.
type NominatimReverseResponse struct {
	DisplayName string            `json:"display_name"`
	Address     *NominatimAddress `json:"address"`
	Error       string            `json:"error"`
}

func NewNominatimClient(baseURL string, config ClientConfig, logger *zap.Logger) *NominatimClient {
	if baseURL == "" {
		baseURL = DefaultReverseGeocodingURL
	}
	return &NominatimClient{
		BaseClient: NewBaseClient("nominatim", config, logger),
		baseURL:    baseURL,
	}
}

func (c *NominatimClient) Reverse(ctx context.Context, lat, lon float64) (*NominatimReverseResponse, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("accept-language", "en")

	data, err := c.Get(ctx, c.baseURL+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to reverse geocode: %w", err)
	}

	var response NominatimReverseResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to parse reverse geocoding response: %w", err)
	}
	return &response, nil
}
