// Package presenter turns orchestrator state into ready-to-draw display fields.
package presenter

import (
	"fmt"
	"math"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/bobby-s-dev/weather-now/internal/models"
	"github.com/bobby-s-dev/weather-now/internal/weathercode"
	"github.com/zsefvlol/timezonemapper"
)

const (
	IdleHint    = "Enter a city to get the latest weather conditions."
	MapHint     = "Click on the map to select a location."
	LoadingText = "Fetching weather data..."
)

type View struct {
	Phase              models.Phase         `json:"phase"`
	Mode               models.Mode          `json:"mode"`
	Query              string               `json:"query"`
	Suggestions        []Suggestion         `json:"suggestions"`
	SuggestionsVisible bool                 `json:"suggestions_visible"`
	Loading            bool                 `json:"loading"`
	LoadingText        string               `json:"loading_text,omitempty"`
	Error              string               `json:"error,omitempty"`
	Hint               string               `json:"hint,omitempty"`
	Theme              weathercode.Theme    `json:"theme"`
	Background         weathercode.Gradient `json:"background"`
	Marker             *models.Coordinate   `json:"marker,omitempty"`
	Weather            *WeatherCard         `json:"weather,omitempty"`
}

type Suggestion struct {
	Index int    `json:"index"`
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

type InfoCard struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type WeatherCard struct {
	Name        string               `json:"name"`
	Country     string               `json:"country"`
	Icon        weathercode.Icon     `json:"icon"`
	Category    weathercode.Category `json:"category"`
	Description string               `json:"description"`
	Temperature string               `json:"temperature"`
	Cards       []InfoCard           `json:"cards"`
	TimeZone    string               `json:"time_zone,omitempty"`
	LocalTime   string               `json:"local_time,omitempty"`
}

// Renderer renders views against a clock; the zero value uses time.Now.
type Renderer struct {
	Now func() time.Time
}

func Render(state models.ViewState) View {
	return Renderer{}.Render(state)
}

func (r Renderer) Render(state models.ViewState) View {
	view := View{
		Phase:              state.Phase(),
		Mode:               state.Mode,
		Query:              state.Query,
		Suggestions:        make([]Suggestion, 0, len(state.Suggestions)),
		SuggestionsVisible: state.SuggestionsVisible && len(state.Suggestions) > 0,
		Loading:            state.Loading,
		Error:              state.Error,
		Marker:             state.Marker,
	}

	for i, c := range state.Suggestions {
		view.Suggestions = append(view.Suggestions, Suggestion{
			Index: i,
			ID:    c.ID,
			Label: c.Name + ", " + c.Country,
		})
	}

	switch {
	case state.Loading:
		view.LoadingText = LoadingText
	case state.Mode == models.ModeMap:
		view.Hint = MapHint
	case view.Phase == models.PhaseIdle:
		view.Hint = IdleHint
	}

	if state.Report != nil && !state.Loading {
		code, isDay := state.Report.Weather.WeatherCode, state.Report.Weather.IsDay
		view.Theme = weathercode.ThemeFor(&code, &isDay)
		view.Weather = r.card(state.Report)
	} else {
		view.Theme = weathercode.ThemeFor(nil, nil)
	}
	view.Background = view.Theme.Gradient()

	return view
}

func (r Renderer) card(report *models.WeatherReport) *WeatherCard {
	w := report.Weather
	dayNight := "Night"
	if w.IsDay {
		dayNight = "Day"
	}

	card := &WeatherCard{
		Name:        report.Location.Name,
		Country:     report.Location.Country,
		Icon:        weathercode.IconFor(w.WeatherCode, w.IsDay),
		Category:    weathercode.Classify(w.WeatherCode),
		Description: weathercode.Describe(w.WeatherCode),
		Temperature: degrees(w.Temperature),
		Cards: []InfoCard{
			{Label: "Feels like", Value: degrees(w.ApparentTemperature)},
			{Label: "Humidity", Value: plain(w.RelativeHumidity) + "%"},
			{Label: "Wind", Value: fmt.Sprintf("%.1f km/h", w.WindSpeed)},
			{Label: "Precipitation", Value: plain(w.Precipitation) + " mm"},
			{Label: "Day/Night", Value: dayNight},
		},
	}

	if loc := zoneFor(report.Location, w.Timezone); loc != nil {
		now := time.Now
		if r.Now != nil {
			now = r.Now
		}
		card.TimeZone = loc.String()
		card.LocalTime = now().In(loc).Format("15:04")
	}
	return card
}

// zoneFor maps the coordinates to an IANA zone, falling back to the zone
// the weather provider reported.
func zoneFor(loc models.ResolvedLocation, reported string) *time.Location {
	for _, name := range []string{
		timezonemapper.LatLngToTimezoneString(loc.Latitude, loc.Longitude),
		reported,
	} {
		if name == "" {
			continue
		}
		if tz, err := time.LoadLocation(name); err == nil {
			return tz
		}
	}
	return nil
}

// degrees rounds half up, so -2.5 shows as -2°.
func degrees(v float64) string {
	return strconv.Itoa(int(math.Floor(v+0.5))) + "°"
}

func plain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
