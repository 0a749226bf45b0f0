package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bobby-s-dev/weather-now/internal/models"
	"github.com/bobby-s-dev/weather-now/internal/orchestrator"
	"github.com/bobby-s-dev/weather-now/internal/presenter"
	"github.com/bobby-s-dev/weather-now/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type stubResolver struct {
	byName   map[string]*models.ResolvedLocation
	byCoords *models.ResolvedLocation
	suggest  []models.GeoCandidate
}

func (r *stubResolver) ResolveByName(_ context.Context, name string) (*models.ResolvedLocation, error) {
	return r.byName[name], nil
}

func (r *stubResolver) Suggest(context.Context, string) []models.GeoCandidate {
	if r.suggest == nil {
		return []models.GeoCandidate{}
	}
	return r.suggest
}

func (r *stubResolver) ResolveByCoordinates(context.Context, float64, float64) (*models.ResolvedLocation, error) {
	return r.byCoords, nil
}

type stubFetcher struct {
	err error
}

func (f *stubFetcher) FetchCurrent(_ context.Context, lat, _ float64) (*models.WeatherSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.WeatherSnapshot{Temperature: 21, WeatherCode: 0, IsDay: true, RelativeHumidity: 40}, nil
}

type idleTimer struct{}

func (idleTimer) Stop() bool { return true }

// neverFires keeps autocomplete out of the HTTP tests.
func neverFires(time.Duration, func()) orchestrator.Timer { return idleTimer{} }

type stubBreaker string

func (b stubBreaker) BreakerState() string { return string(b) }

func newTestApp(t *testing.T, resolver *stubResolver, fetcher *stubFetcher) (*fiber.App, *services.SessionStore[*Session]) {
	t.Helper()
	sessions := services.NewSessionStore[*Session](time.Hour, 10, zap.NewNop())
	t.Cleanup(sessions.CloseAll)

	handler := NewHandler(Deps{
		Resolver: resolver,
		Fetcher:  fetcher,
		Sessions: sessions,
		Options:  orchestrator.Options{AfterFunc: neverFires},
		Breakers: map[string]BreakerReporter{"geocoding": stubBreaker("closed")},
	}, zap.NewNop())

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	SetupRoutes(app, handler, zap.NewNop())
	return app, sessions
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return resp, data
}

func decodeSession(t *testing.T, data []byte) sessionResponse {
	t.Helper()
	var out sessionResponse
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decoding %s: %v", data, err)
	}
	return out
}

func createSession(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, data := doRequest(t, app, http.MethodPost, "/api/v1/sessions", "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, resp.StatusCode, data)
	}
	out := decodeSession(t, data)
	if out.ID == "" {
		t.Fatal("missing session id")
	}
	if out.View.Phase != models.PhaseIdle || out.View.Hint != presenter.IdleHint {
		t.Errorf("unexpected initial view: %+v", out.View)
	}
	return out.ID
}

func TestHealthAndMetrics(t *testing.T) {
	app, _ := newTestApp(t, &stubResolver{}, &stubFetcher{})

	resp, data := doRequest(t, app, http.MethodGet, "/api/v1/health", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(data), `"geocoding":"closed"`) {
		t.Fatalf("health: %d %s", resp.StatusCode, data)
	}

	resp, data = doRequest(t, app, http.MethodGet, "/api/v1/metrics", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(data), `"active_sessions"`) {
		t.Fatalf("metrics: %d %s", resp.StatusCode, data)
	}
}

func TestUnknownSessionReturns404(t *testing.T) {
	app, _ := newTestApp(t, &stubResolver{}, &stubFetcher{})

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/v1/sessions/missing", ""},
		{http.MethodDelete, "/api/v1/sessions/missing", ""},
		{http.MethodPost, "/api/v1/sessions/missing/submit", ""},
		{http.MethodPut, "/api/v1/sessions/missing/query", `{"text":"Paris"}`},
	} {
		resp, data := doRequest(t, app, tc.method, tc.path, tc.body)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", tc.method, tc.path, resp.StatusCode)
		}
		if !strings.Contains(string(data), `"success":false`) {
			t.Errorf("%s %s: unexpected body %s", tc.method, tc.path, data)
		}
	}
}

func TestSubmitFlow(t *testing.T) {
	resolver := &stubResolver{byName: map[string]*models.ResolvedLocation{
		"Paris": {Name: "Paris", Country: "France", Latitude: 48.85, Longitude: 2.35},
	}}
	app, _ := newTestApp(t, resolver, &stubFetcher{})
	id := createSession(t, app)

	resp, data := doRequest(t, app, http.MethodPut, "/api/v1/sessions/"+id+"/query", `{"text":"Paris"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set query: %d %s", resp.StatusCode, data)
	}

	resp, data = doRequest(t, app, http.MethodPost, "/api/v1/sessions/"+id+"/submit", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit: %d %s", resp.StatusCode, data)
	}
	view := decodeSession(t, data).View
	if view.Phase != models.PhaseLoaded || view.Weather == nil || view.Weather.Name != "Paris" {
		t.Fatalf("unexpected view: %+v", view)
	}
	if view.Weather.Temperature != "21°" || view.Theme != "day-clear" {
		t.Errorf("unexpected weather card: %+v theme=%s", view.Weather, view.Theme)
	}
}

func TestSubmitUnknownCity(t *testing.T) {
	app, _ := newTestApp(t, &stubResolver{}, &stubFetcher{})
	id := createSession(t, app)

	doRequest(t, app, http.MethodPut, "/api/v1/sessions/"+id+"/query", `{"text":"Atlantis"}`)
	_, data := doRequest(t, app, http.MethodPost, "/api/v1/sessions/"+id+"/submit", "")

	view := decodeSession(t, data).View
	if view.Phase != models.PhaseFailed || view.Error != "Could not find city: Atlantis" {
		t.Errorf("unexpected view: %+v", view)
	}
}

func TestModeValidation(t *testing.T) {
	app, _ := newTestApp(t, &stubResolver{}, &stubFetcher{})
	id := createSession(t, app)

	resp, _ := doRequest(t, app, http.MethodPut, "/api/v1/sessions/"+id+"/mode", `{"mode":"satellite"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	resp, data := doRequest(t, app, http.MethodPut, "/api/v1/sessions/"+id+"/mode", `{"mode":"map"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set mode: %d %s", resp.StatusCode, data)
	}
	if view := decodeSession(t, data).View; view.Mode != models.ModeMap || view.Hint != presenter.MapHint {
		t.Errorf("unexpected view: %+v", view)
	}
}

func TestMapClick(t *testing.T) {
	resolver := &stubResolver{byCoords: &models.ResolvedLocation{Name: "Kyoto", Country: "Japan", Latitude: 35.01, Longitude: 135.77}}
	app, _ := newTestApp(t, resolver, &stubFetcher{})
	id := createSession(t, app)
	doRequest(t, app, http.MethodPut, "/api/v1/sessions/"+id+"/mode", `{"mode":"map"}`)

	for _, body := range []string{`{"lat":35.01}`, `{"lat":95,"lon":10}`, `{"lat":10,"lon":-181}`, `not json`} {
		resp, _ := doRequest(t, app, http.MethodPost, "/api/v1/sessions/"+id+"/map/click", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, resp.StatusCode)
		}
	}

	resp, data := doRequest(t, app, http.MethodPost, "/api/v1/sessions/"+id+"/map/click", `{"lat":35.01,"lon":135.77}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("click: %d %s", resp.StatusCode, data)
	}
	view := decodeSession(t, data).View
	if view.Mode != models.ModeText || view.Phase != models.PhaseLoaded || view.Query != "Kyoto" {
		t.Errorf("unexpected view: %+v", view)
	}
	if view.Marker == nil || view.Marker.Latitude != 35.01 {
		t.Errorf("marker = %+v", view.Marker)
	}
}

func TestSelectSuggestionIndex(t *testing.T) {
	app, _ := newTestApp(t, &stubResolver{}, &stubFetcher{})
	id := createSession(t, app)

	resp, _ := doRequest(t, app, http.MethodPost, "/api/v1/sessions/"+id+"/suggestions/abc", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("non-numeric index: expected 400, got %d", resp.StatusCode)
	}
	resp, _ = doRequest(t, app, http.MethodPost, "/api/v1/sessions/"+id+"/suggestions/0", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty list: expected 400, got %d", resp.StatusCode)
	}

	for _, action := range []string{"show", "dismiss"} {
		resp, data := doRequest(t, app, http.MethodPost, "/api/v1/sessions/"+id+"/suggestions/"+action, "")
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: %d %s", action, resp.StatusCode, data)
		}
	}
}

func TestDeleteSession(t *testing.T) {
	app, sessions := newTestApp(t, &stubResolver{}, &stubFetcher{})
	id := createSession(t, app)

	resp, _ := doRequest(t, app, http.MethodDelete, "/api/v1/sessions/"+id, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, resp.StatusCode)
	}
	if sessions.Len() != 0 {
		t.Errorf("sessions left: %d", sessions.Len())
	}
	resp, _ = doRequest(t, app, http.MethodGet, "/api/v1/sessions/"+id, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestStatelessLookups(t *testing.T) {
	resolver := &stubResolver{
		byName:  map[string]*models.ResolvedLocation{"Oslo": {Name: "Oslo", Country: "Norway"}},
		suggest: []models.GeoCandidate{{ID: 3, Name: "Oslo", Country: "Norway"}},
	}
	app, _ := newTestApp(t, resolver, &stubFetcher{})

	tests := []struct {
		name   string
		path   string
		status int
		want   string
	}{
		{"search found", "/api/v1/locations/search?name=Oslo", http.StatusOK, `"country":"Norway"`},
		{"search missing name", "/api/v1/locations/search", http.StatusBadRequest, `"success":false`},
		{"search not found", "/api/v1/locations/search?name=Atlantis", http.StatusNotFound, "Could not find city: Atlantis"},
		{"suggest", "/api/v1/locations/suggest?q=Osl", http.StatusOK, `"id":3`},
		{"reverse missing lon", "/api/v1/locations/reverse?lat=1", http.StatusBadRequest, "required"},
		{"reverse not found", "/api/v1/locations/reverse?lat=1&lon=2", http.StatusNotFound, services.MsgLocationUndetermined},
		{"weather bad lat", "/api/v1/weather/current?lat=north&lon=2", http.StatusBadRequest, "lat"},
		{"weather out of range", "/api/v1/weather/current?lat=91&lon=2", http.StatusBadRequest, "latitude"},
		{"weather", "/api/v1/weather/current?lat=59.9&lon=10.7", http.StatusOK, `"description":"Clear sky"`},
		{"unknown route", "/api/v1/nowhere", http.StatusNotFound, "Endpoint not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := doRequest(t, app, http.MethodGet, tt.path, "")
			if resp.StatusCode != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, resp.StatusCode, data)
			}
			if !strings.Contains(string(data), tt.want) {
				t.Errorf("body %s does not contain %q", data, tt.want)
			}
		})
	}
}

func TestWeatherUpstreamFailure(t *testing.T) {
	fetcher := &stubFetcher{err: &services.NetworkError{Op: "fetch_weather", Message: services.MsgWeatherFetchFailed}}
	app, _ := newTestApp(t, &stubResolver{}, fetcher)

	resp, data := doRequest(t, app, http.MethodGet, "/api/v1/weather/current?lat=1&lon=2", "")
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, resp.StatusCode)
	}
	if !strings.Contains(string(data), services.MsgWeatherFetchFailed) {
		t.Errorf("body = %s", data)
	}
}
