package weather

import (
	"math"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Condition is the category string reported by a provider ("Clear", "Clouds", ...).
// Live providers may report categories outside the constants below.
type Condition string

const (
	ConditionClear        Condition = "Clear"
	ConditionClouds       Condition = "Clouds"
	ConditionRain         Condition = "Rain"
	ConditionSnow         Condition = "Snow"
	ConditionThunderstorm Condition = "Thunderstorm"
	ConditionPartlyCloudy Condition = "Partly Cloudy"
)

// CurrentReading is the current-conditions view for one city.
// Temperatures are °C, wind speed km/h.
type CurrentReading struct {
	City        string    `json:"city"`
	Country     string    `json:"country,omitempty"`
	Temperature float64   `json:"temperature"`
	Condition   Condition `json:"condition"`
	Description string    `json:"description"`
	Humidity    int       `json:"humidity"`
	WindSpeed   float64   `json:"windSpeed"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	IconCode    string    `json:"iconCode"`

	// Only filled by live providers.
	Pressure   *int     `json:"pressure,omitempty"`
	FeelsLike  *float64 `json:"feelsLike,omitempty"`
	Visibility *int     `json:"visibility,omitempty"`
	UVIndex    *float64 `json:"uvIndex,omitempty"`
}

// Symbol returns the display icon for the reading's condition.
func (r CurrentReading) Symbol() string {
	return IconFor(string(r.Condition))
}

// ForecastDay is one day of a multi-day forecast.
type ForecastDay struct {
	Day       string    `json:"day"`
	Date      time.Time `json:"date"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Condition Condition `json:"condition"`
	Icon      string    `json:"icon"`

	Description  string   `json:"description,omitempty"`
	Humidity     *int     `json:"humidity,omitempty"`
	WindSpeed    *float64 `json:"windSpeed,omitempty"`
	PrecipChance *int     `json:"precipitationChance,omitempty"`
}

// ForecastDays is the number of days a full forecast covers.
const ForecastDays = 7

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// TitleCase upper-cases the first letter of every word and lower-cases the rest.
func TitleCase(s string) string {
	return cases.Title(language.Und).String(s)
}

// DateOf truncates t to midnight in its own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
