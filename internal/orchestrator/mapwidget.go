package orchestrator

import (
	"context"
	"errors"
	"sync"

	"github.com/bobby-s-dev/weather-now/internal/models"
)

// MapWidget is the slice of a map library the orchestrator needs: a way to
// hear about clicks and a way to show where the user clicked.
type MapWidget interface {
	OnClick(fn func(ctx context.Context, lat, lon float64))
	PlaceMarker(lat, lon float64)
}

var ErrMapNotBound = errors.New("map widget has no click handler")

// RemoteMap stands in for a map that is rendered by a remote client. Clicks
// arrive over the API and the marker position is reported back in the view.
type RemoteMap struct {
	mu      sync.Mutex
	onClick func(ctx context.Context, lat, lon float64)
	marker  *models.Coordinate
}

func NewRemoteMap() *RemoteMap {
	return &RemoteMap{}
}

func (m *RemoteMap) OnClick(fn func(ctx context.Context, lat, lon float64)) {
	m.mu.Lock()
	m.onClick = fn
	m.mu.Unlock()
}

// PlaceMarker creates the marker on first use and moves it afterwards.
func (m *RemoteMap) PlaceMarker(lat, lon float64) {
	m.mu.Lock()
	m.marker = &models.Coordinate{Latitude: lat, Longitude: lon}
	m.mu.Unlock()
}

func (m *RemoteMap) Marker() *models.Coordinate {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.marker == nil {
		return nil
	}
	c := *m.marker
	return &c
}

// Click delivers a click to the registered handler and blocks until it
// returns. Cancelling ctx abandons the lookups the click started.
func (m *RemoteMap) Click(ctx context.Context, lat, lon float64) error {
	m.mu.Lock()
	fn := m.onClick
	m.mu.Unlock()

	if fn == nil {
		return ErrMapNotBound
	}
	fn(ctx, lat, lon)
	return nil
}
