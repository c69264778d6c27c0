package weather

import (
	"context"
)

// Source abstracts a live weather service (e.g. OpenWeatherMap, WeatherAPI).
// Implementations return an error for any transport or payload problem;
// the Adapter decides what to do with it.
type Source interface {
	Name() string
	FetchCurrent(ctx context.Context, city string) (CurrentReading, error)
	FetchForecast(ctx context.Context, city string) ([]ForecastDay, error)
}
