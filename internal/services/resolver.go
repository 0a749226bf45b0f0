package services

import (
	"context"
	"strings"

	"github.com/bobby-s-dev/weather-now/internal/models"
	"github.com/bobby-s-dev/weather-now/pkg/client"
	"go.uber.org/zap"
)

const DefaultSuggestLimit = 5

type Geocoder interface {
	Search(ctx context.Context, name string, opts client.SearchOptions) ([]client.GeocodingResult, error)
}

type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (*client.NominatimReverseResponse, error)
}

// LocationResolver turns place names and coordinates into locations.
// Nothing is cached.
type LocationResolver struct {
	geocoder     Geocoder
	reverse      ReverseGeocoder
	suggestLimit int
	logger       *zap.Logger
}

func NewLocationResolver(geocoder Geocoder, reverse ReverseGeocoder, suggestLimit int, logger *zap.Logger) *LocationResolver {
	if suggestLimit <= 0 {
		suggestLimit = DefaultSuggestLimit
	}
	return &LocationResolver{
		geocoder:     geocoder,
		reverse:      reverse,
		suggestLimit: suggestLimit,
		logger:       logger,
	}
}

// ResolveByName returns the best match for name, or nil when there is none.
func (r *LocationResolver) ResolveByName(ctx context.Context, name string) (*models.ResolvedLocation, error) {
	results, err := r.geocoder.Search(ctx, name, client.SearchOptions{Count: 1})
	if err != nil {
		r.logger.Error("Failed to resolve location",
			zap.String("name", name),
			zap.Error(err))
		return nil, newNetworkError("geocode", MsgLocationFetchFailed, err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	loc := candidateFromResult(results[0]).Location()
	return &loc, nil
}

// Suggest never fails: lookup errors are logged and yield an empty list.
func (r *LocationResolver) Suggest(ctx context.Context, partial string) []models.GeoCandidate {
	if strings.TrimSpace(partial) == "" {
		return []models.GeoCandidate{}
	}

	results, err := r.geocoder.Search(ctx, partial, client.SearchOptions{
		Count:        r.suggestLimit,
		Language:     "en",
		Autocomplete: true,
	})
	if err != nil {
		r.logger.Warn("Suggestion lookup failed",
			zap.String("partial", partial),
			zap.Error(err))
		return []models.GeoCandidate{}
	}

	if len(results) > r.suggestLimit {
		results = results[:r.suggestLimit]
	}
	candidates := make([]models.GeoCandidate, 0, len(results))
	for _, res := range results {
		candidates = append(candidates, candidateFromResult(res))
	}
	return candidates
}

// ResolveByCoordinates returns the locality at lat/lon, or nil when the
// point has no usable address.
func (r *LocationResolver) ResolveByCoordinates(ctx context.Context, lat, lon float64) (*models.ResolvedLocation, error) {
	resp, err := r.reverse.Reverse(ctx, lat, lon)
	if err != nil {
		r.logger.Error("Failed to reverse geocode",
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
			zap.Error(err))
		return nil, newNetworkError("reverse_geocode", MsgReverseFetchFailed, err)
	}
	if resp.Error != "" || resp.Address == nil {
		return nil, nil
	}

	name := localityName(resp.Address)
	if name == "" {
		return nil, nil
	}

	return &models.ResolvedLocation{
		Name:      name,
		Country:   resp.Address.Country,
		Latitude:  lat,
		Longitude: lon,
	}, nil
}

// localityName picks the most specific populated place: city, town,
// village, hamlet, then county.
func localityName(addr *client.NominatimAddress) string {
	for _, name := range []string{addr.City, addr.Town, addr.Village, addr.Hamlet, addr.County} {
		if name != "" {
			return name
		}
	}
	return ""
}

func candidateFromResult(res client.GeocodingResult) models.GeoCandidate {
	return models.GeoCandidate{
		ID:        res.ID,
		Name:      res.Name,
		Country:   res.Country,
		Latitude:  res.Latitude,
		Longitude: res.Longitude,
	}
}
