package weather

import (
	"strings"

	"github.com/i474232898/weather-lookup/internal/common"
)

const (
	IconSun     = "☀️"
	IconCloud   = "☁️"
	IconRain    = "🌧️"
	IconSnow    = "❄️"
	IconThunder = "⛈️"
	IconFog     = "🌫️"
	IconDefault = "🌤️"
)

// IconFor maps a condition to a display icon by case-insensitive keyword match.
// Keywords are checked in a fixed order, so "Thunderstorm with rain" is rain.
func IconFor(condition string) string {
	c := strings.ToLower(condition)
	switch {
	case common.HasAny(c, "clear", "sun"):
		return IconSun
	case common.HasAny(c, "cloud"):
		return IconCloud
	case common.HasAny(c, "rain", "drizzle"):
		return IconRain
	case common.HasAny(c, "snow"):
		return IconSnow
	case common.HasAny(c, "thunder"):
		return IconThunder
	case common.HasAny(c, "mist", "fog"):
		return IconFog
	default:
		return IconDefault
	}
}
