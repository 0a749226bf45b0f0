package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bobby-s-dev/weather-now/pkg/client"
	"go.uber.org/zap"
)

func TestFetchCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"timezone":"Asia/Tokyo","current":{
			"temperature_2m":21.6,"relative_humidity_2m":70,"apparent_temperature":22.4,
			"is_day":0,"precipitation":1.4,"weather_code":61,
			"wind_speed_10m":8.25,"wind_direction_10m":90}}`))
	}))
	defer srv.Close()

	f := NewWeatherFetcher(client.NewOpenMeteoClient(srv.URL, testClientConfig(), zap.NewNop()), zap.NewNop())
	snap, err := f.FetchCurrent(context.Background(), 35.68, 139.69)
	if err != nil {
		t.Fatalf("FetchCurrent: %v", err)
	}

	if snap.Temperature != 21.6 || snap.ApparentTemperature != 22.4 || snap.RelativeHumidity != 70 {
		t.Errorf("unexpected temperatures: %+v", snap)
	}
	if snap.IsDay || snap.WeatherCode != 61 || snap.Precipitation != 1.4 {
		t.Errorf("unexpected conditions: %+v", snap)
	}
	if snap.WindSpeed != 8.25 || snap.WindDirection != 90 || snap.Timezone != "Asia/Tokyo" {
		t.Errorf("unexpected wind/timezone: %+v", snap)
	}
}

func TestFetchCurrentFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   int
	}{
		{"server error", http.StatusInternalServerError, `{}`, 500},
		{"bad request", http.StatusBadRequest, `{"error":true}`, 400},
		{"undecodable body", http.StatusOK, `<html>`, 0},
		{"missing current", http.StatusOK, `{"timezone":"UTC"}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			f := NewWeatherFetcher(client.NewOpenMeteoClient(srv.URL, testClientConfig(), zap.NewNop()), zap.NewNop())
			snap, err := f.FetchCurrent(context.Background(), 1, 2)
			if snap != nil {
				t.Fatalf("expected no snapshot, got %+v", snap)
			}
			var netErr *NetworkError
			if !errors.As(err, &netErr) {
				t.Fatalf("expected *NetworkError, got %v", err)
			}
			if netErr.StatusCode != tt.code {
				t.Errorf("status = %d, want %d", netErr.StatusCode, tt.code)
			}
			if UserMessage(err) != MsgWeatherFetchFailed {
				t.Errorf("message = %q", UserMessage(err))
			}
		})
	}
}
