package weathercode

type Theme string

const (
	ThemeNeutral     Theme = "neutral"
	ThemeRain        Theme = "rain"
	ThemeDayCloudy   Theme = "day-cloudy"
	ThemeDayClear    Theme = "day-clear"
	ThemeNightCloudy Theme = "night-cloudy"
	ThemeNightClear  Theme = "night-clear"
)

// Gradient is a pair of colour keys for the page background.
type Gradient struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (t Theme) Gradient() Gradient {
	if t == ThemeNeutral || t == "" {
		return Gradient{From: "gray-700", To: "gray-900"}
	}
	return Gradient{From: string(t) + "-start", To: string(t) + "-end"}
}

func isRaining(code int) bool {
	return (code >= 51 && code <= 67) || (code >= 80 && code <= 82)
}

func isCloudy(code int) bool {
	return (code >= 1 && code <= 3) || (code >= 45 && code <= 48)
}

// ThemeFor selects the background theme. A nil code or day flag means no
// weather is on screen yet and yields ThemeNeutral.
func ThemeFor(code *int, isDay *bool) Theme {
	if code == nil || isDay == nil {
		return ThemeNeutral
	}
	if isRaining(*code) {
		return ThemeRain
	}
	cloudy := isCloudy(*code)
	switch {
	case *isDay && cloudy:
		return ThemeDayCloudy
	case *isDay:
		return ThemeDayClear
	case cloudy:
		return ThemeNightCloudy
	default:
		return ThemeNightClear
	}
}
