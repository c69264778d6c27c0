package store

import (
	"context"
	"math/rand/v2"
	"time"
)

func ptr[T any](v T) *T { return &v }

// sampleHistory are the fixed demo rows added by SeedSampleData.
var sampleHistory = []HistoryEntry{
	{City: "New York", Country: ptr("US"), Temperature: 21.5, Condition: "Clear", Description: ptr("Clear Sky"),
		Humidity: ptr(45), WindSpeed: ptr(12.3), Pressure: ptr(1013), FeelsLike: ptr(23.1), Visibility: ptr(10)},
	{City: "London", Country: ptr("GB"), Temperature: 15.2, Condition: "Clouds", Description: ptr("Broken Clouds"),
		Humidity: ptr(78), WindSpeed: ptr(8.7), Pressure: ptr(1008), FeelsLike: ptr(14.8), Visibility: ptr(8)},
	{City: "Tokyo", Country: ptr("JP"), Temperature: 18.9, Condition: "Rain", Description: ptr("Light Rain"),
		Humidity: ptr(85), WindSpeed: ptr(6.2), Pressure: ptr(1005), FeelsLike: ptr(19.5), Visibility: ptr(5)},
	{City: "Paris", Country: ptr("FR"), Temperature: 12.4, Condition: "Clouds", Description: ptr("Overcast Clouds"),
		Humidity: ptr(72), WindSpeed: ptr(11.8), Pressure: ptr(1012), FeelsLike: ptr(11.9), Visibility: ptr(9)},
	{City: "Sydney", Country: ptr("AU"), Temperature: 25.7, Condition: "Clear", Description: ptr("Clear Sky"),
		Humidity: ptr(52), WindSpeed: ptr(15.4), Pressure: ptr(1018), FeelsLike: ptr(27.2), Visibility: ptr(15)},
	{City: "Mumbai", Country: ptr("IN"), Temperature: 32.1, Condition: "Clouds", Description: ptr("Few Clouds"),
		Humidity: ptr(68), WindSpeed: ptr(9.3), Pressure: ptr(1009), FeelsLike: ptr(35.8), Visibility: ptr(7)},
}

var (
	sampleForecastCities     = []string{"New York", "London", "Tokyo", "Paris"}
	sampleForecastConditions = []string{"Clear", "Clouds", "Rain", "Snow"}
)

const sampleForecastDays = 7

// SeedResult reports how many rows SeedSampleData added.
type SeedResult struct {
	History  int `json:"history"`
	Forecast int `json:"forecast"`
}

// SeedSampleData adds the fixed demo history rows and a random week of
// forecasts for a handful of cities. Existing forecasts for those cities are
// replaced. A nil rng selects a randomly seeded source.
func (s *Store) SeedSampleData(ctx context.Context, rng *rand.Rand) (SeedResult, error) {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	between := func(lo, hi int) int { return lo + rng.IntN(hi-lo+1) }

	var res SeedResult
	for _, e := range sampleHistory {
		if _, err := s.InsertHistory(ctx, e); err != nil {
			return res, err
		}
		res.History++
	}

	now := s.clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for _, city := range sampleForecastCities {
		entries := make([]ForecastEntry, 0, sampleForecastDays)
		for i := 0; i < sampleForecastDays; i++ {
			date := today.AddDate(0, 0, i)
			high := between(15, 30)
			cond := sampleForecastConditions[rng.IntN(len(sampleForecastConditions))]
			entries = append(entries, ForecastEntry{
				DayName:      date.Format("Mon"),
				ForecastDate: date,
				HighTemp:     float64(high),
				LowTemp:      float64(high - between(5, 10)),
				Condition:    cond,
				Description:  ptr(cond),
				Humidity:     ptr(between(40, 80)),
				WindSpeed:    ptr(5 + rng.Float64()*15),
				PrecipChance: ptr(between(0, 60)),
			})
		}
		if err := s.ReplaceForecast(ctx, city, entries); err != nil {
			return res, err
		}
		res.Forecast += len(entries)
	}

	s.logger.Info("sample data added", "history", res.History, "forecast", res.Forecast)
	return res, nil
}
