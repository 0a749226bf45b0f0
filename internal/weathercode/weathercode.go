// Package weathercode maps WMO weather interpretation codes, as returned by
// Open-Meteo, to the categories, icons and background themes used for display.
package weathercode

import "sort"

type Category string

const (
	Clear                Category = "clear"
	MainlyClear          Category = "mainly-clear"
	Cloudy               Category = "cloudy"
	Fog                  Category = "fog"
	Drizzle              Category = "drizzle"
	Rain                 Category = "rain"
	FreezingRain         Category = "freezing-rain"
	Snow                 Category = "snow"
	Thunderstorm         Category = "thunderstorm"
	ThunderstormWithHail Category = "thunderstorm-with-hail"
	Unknown              Category = "unknown"
)

// codeRange is an inclusive span of codes sharing one category.
type codeRange struct {
	lo, hi   int
	category Category
}

// ranges must stay sorted by lo and must not overlap.
var ranges = []codeRange{
	{0, 0, Clear},
	{1, 1, MainlyClear},
	{2, 3, Cloudy},
	{45, 45, Fog},
	{48, 48, Fog},
	{51, 51, Drizzle},
	{53, 53, Drizzle},
	{55, 57, Drizzle},
	{61, 61, Rain},
	{63, 63, Rain},
	{65, 65, Rain},
	{66, 67, FreezingRain},
	{71, 71, Snow},
	{73, 73, Snow},
	{75, 75, Snow},
	{77, 77, Snow},
	{80, 82, Rain},
	{85, 86, Snow},
	{95, 95, Thunderstorm},
	{96, 96, ThunderstormWithHail},
	{99, 99, ThunderstormWithHail},
}

// Classify returns the category for code. Codes outside the WMO table map to Unknown.
func Classify(code int) Category {
	i := sort.Search(len(ranges), func(i int) bool { return ranges[i].hi >= code })
	if i < len(ranges) && ranges[i].lo <= code {
		return ranges[i].category
	}
	return Unknown
}

var descriptions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	56: "Light freezing drizzle",
	57: "Dense freezing drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Light freezing rain",
	67: "Heavy freezing rain",
	71: "Slight snow fall",
	73: "Moderate snow fall",
	75: "Heavy snow fall",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

func Describe(code int) string {
	if desc, ok := descriptions[code]; ok {
		return desc
	}
	return "Unknown"
}

type Icon string

const (
	IconSun            Icon = "sun"
	IconMoon           Icon = "moon"
	IconCloudSun       Icon = "cloud-sun"
	IconCloudMoon      Icon = "cloud-moon"
	IconCloud          Icon = "cloud"
	IconCloudFog       Icon = "cloud-fog"
	IconCloudDrizzle   Icon = "cloud-drizzle"
	IconCloudRain      Icon = "cloud-rain"
	IconSnowflake      Icon = "snowflake"
	IconCloudLightning Icon = "cloud-lightning"
	IconCloudHail      Icon = "cloud-hail"
)

// IconFor picks the display icon. Only clear and mainly-clear skies have
// separate day and night variants.
func IconFor(code int, isDay bool) Icon {
	switch Classify(code) {
	case Clear:
		if isDay {
			return IconSun
		}
		return IconMoon
	case MainlyClear:
		if isDay {
			return IconCloudSun
		}
		return IconCloudMoon
	case Fog:
		return IconCloudFog
	case Drizzle:
		return IconCloudDrizzle
	case Rain, FreezingRain:
		return IconCloudRain
	case Snow:
		return IconSnowflake
	case Thunderstorm:
		return IconCloudLightning
	case ThunderstormWithHail:
		return IconCloudHail
	default:
		return IconCloud
	}
}
