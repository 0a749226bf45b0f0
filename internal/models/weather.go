package models

type Mode string

const (
	ModeText Mode = "text"
	ModeMap  Mode = "map"
)

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
	PhaseFailed  Phase = "failed"
)

// GeoCandidate is one forward-geocoding hit, shown as an autocomplete suggestion.
type GeoCandidate struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c GeoCandidate) Location() ResolvedLocation {
	return ResolvedLocation{
		Name:      c.Name,
		Country:   c.Country,
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
	}
}

type ResolvedLocation struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// WeatherSnapshot holds the current conditions for one coordinate pair.
// It is replaced wholesale by the next fetch.
type WeatherSnapshot struct {
	Temperature         float64 `json:"temperature"`
	ApparentTemperature float64 `json:"apparent_temperature"`
	RelativeHumidity    float64 `json:"relative_humidity"`
	Precipitation       float64 `json:"precipitation"`
	WindSpeed           float64 `json:"wind_speed"`
	WindDirection       float64 `json:"wind_direction"`
	WeatherCode         int     `json:"weather_code"`
	IsDay               bool    `json:"is_day"`
	Timezone            string  `json:"timezone,omitempty"`
}

type WeatherReport struct {
	Location ResolvedLocation `json:"location"`
	Weather  WeatherSnapshot  `json:"weather"`
}

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ViewState is everything the presentation layer needs to draw the screen.
type ViewState struct {
	Query              string         `json:"query"`
	Suggestions        []GeoCandidate `json:"suggestions"`
	SuggestionsVisible bool           `json:"suggestions_visible"`
	Loading            bool           `json:"loading"`
	Error              string         `json:"error,omitempty"`
	Report             *WeatherReport `json:"report,omitempty"`
	Mode               Mode           `json:"mode"`
	Marker             *Coordinate    `json:"marker,omitempty"`
}

func (v ViewState) Phase() Phase {
	switch {
	case v.Loading:
		return PhaseLoading
	case v.Error != "":
		return PhaseFailed
	case v.Report != nil:
		return PhaseLoaded
	default:
		return PhaseIdle
	}
}

// Clone returns a copy that shares no mutable memory with v.
func (v ViewState) Clone() ViewState {
	out := v
	if v.Suggestions != nil {
		out.Suggestions = make([]GeoCandidate, len(v.Suggestions))
		copy(out.Suggestions, v.Suggestions)
	}
	if v.Report != nil {
		r := *v.Report
		out.Report = &r
	}
	if v.Marker != nil {
		m := *v.Marker
		out.Marker = &m
	}
	return out
}
