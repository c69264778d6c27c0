package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIconFor(t *testing.T) {
	cases := map[string]string{
		"Clear":                  IconSun,
		"sunny":                  IconSun,
		"Clouds":                 IconCloud,
		"Partly Cloudy":          IconCloud,
		"Rain":                   IconRain,
		"light DRIZZLE":          IconRain,
		"Snow":                   IconSnow,
		"Thunderstorm":           IconThunder,
		"Thunderstorm with rain": IconRain,
		"Mist":                   IconFog,
		"fog":                    IconFog,
		"Haze":                   IconDefault,
		"":                       IconDefault,
	}
	for cond, want := range cases {
		assert.Equal(t, want, IconFor(cond), "condition %q", cond)
	}
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Paris", TitleCase("paris"))
	assert.Equal(t, "New York", TitleCase("NEW york"))
	assert.Equal(t, "Broken Clouds", TitleCase("broken clouds"))
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 12.3, Round1(12.345))
	assert.Equal(t, -1.5, Round1(-1.46))
	assert.Equal(t, 18.0, Round1(5*3.6))
}
