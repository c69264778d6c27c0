package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(ts time.Time, temp float64, cond Condition) ForecastSample {
	return ForecastSample{Timestamp: ts, Temperature: temp, Condition: cond, Humidity: 50, WindSpeedMS: 5, Pop: 0.2}
}

func TestGroupForecast_HighLowAndMode(t *testing.T) {
	day1 := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC) // Monday
	day2 := day1.AddDate(0, 0, 1)

	samples := []ForecastSample{
		sample(day1.Add(3*time.Hour), 10.04, ConditionClouds),
		sample(day1.Add(6*time.Hour), 14.26, ConditionRain),
		sample(day1.Add(9*time.Hour), 12, ConditionRain),
		sample(day2.Add(3*time.Hour), 8, ConditionClear),
	}
	samples[2].Pop = 0.85

	days := GroupForecast(samples, time.UTC, ForecastDays)
	require.Len(t, days, 2)

	assert.Equal(t, "Mon", days[0].Day)
	assert.Equal(t, day1, days[0].Date)
	assert.Equal(t, 14.3, days[0].High)
	assert.Equal(t, 10.0, days[0].Low)
	assert.Equal(t, ConditionRain, days[0].Condition)
	assert.Equal(t, IconRain, days[0].Icon)
	require.NotNil(t, days[0].PrecipChance)
	assert.Equal(t, 85, *days[0].PrecipChance)
	require.NotNil(t, days[0].WindSpeed)
	assert.Equal(t, 18.0, *days[0].WindSpeed)

	assert.Equal(t, "Tue", days[1].Day)
	assert.Equal(t, 8.0, days[1].High)
	assert.Equal(t, 8.0, days[1].Low)
}

func TestGroupForecast_TieGoesToFirstSeen(t *testing.T) {
	d := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	samples := []ForecastSample{
		sample(d.Add(1*time.Hour), 1, ConditionSnow),
		sample(d.Add(2*time.Hour), 2, ConditionClear),
		sample(d.Add(3*time.Hour), 3, ConditionClear),
		sample(d.Add(4*time.Hour), 4, ConditionSnow),
	}

	for i := 0; i < 20; i++ {
		days := GroupForecast(samples, time.UTC, ForecastDays)
		require.Len(t, days, 1)
		assert.Equal(t, ConditionSnow, days[0].Condition)
	}
}

func TestGroupForecast_KeepsFirstSevenDatesInPayloadOrder(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	var samples []ForecastSample
	for i := 0; i < 9; i++ {
		samples = append(samples, sample(start.AddDate(0, 0, i), float64(i), ConditionClear))
	}

	days := GroupForecast(samples, time.UTC, ForecastDays)
	require.Len(t, days, 7)
	assert.Equal(t, start.AddDate(0, 0, 0).Truncate(24*time.Hour), days[0].Date)
	assert.Equal(t, 6.0, days[6].High)
}

func TestGroupForecast_UsesLocationForDateBoundaries(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	// 20:00 UTC on the 1st is 05:00 on the 2nd in Tokyo.
	samples := []ForecastSample{
		sample(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), 5, ConditionClear),
		sample(time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC), 7, ConditionClear),
	}

	assert.Len(t, GroupForecast(samples, time.UTC, ForecastDays), 1)
	assert.Len(t, GroupForecast(samples, tokyo, ForecastDays), 2)
}

func TestGroupForecast_Empty(t *testing.T) {
	assert.Empty(t, GroupForecast(nil, time.UTC, ForecastDays))
}
