package weather

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/i474232898/weather-lookup/internal/observability"
)

// ErrEmptyCity is returned when a fetch is requested for a blank city name.
var ErrEmptyCity = errors.New("city name is empty")

// Adapter turns a city name into weather data. With a live Source it calls the
// remote service and silently substitutes mock data on any failure; without
// one it always serves mock data.
type Adapter struct {
	live    Source
	mock    *MockGenerator
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewAdapter creates an Adapter. live may be nil (demo mode).
func NewAdapter(live Source, mock *MockGenerator, logger *slog.Logger, metrics *observability.Metrics) *Adapter {
	if mock == nil {
		mock = NewMockGenerator(nil, nil)
	}
	return &Adapter{
		live:    live,
		mock:    mock,
		logger:  logger,
		metrics: metrics,
	}
}

// Live reports whether a live source is configured.
func (a *Adapter) Live() bool {
	return a.live != nil
}

// FetchCurrent returns the current reading for city. Transport and payload
// failures are absorbed; an error is only returned for a blank city or a
// context that is already done.
func (a *Adapter) FetchCurrent(ctx context.Context, city string) (CurrentReading, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return CurrentReading{}, ErrEmptyCity
	}
	if err := ctx.Err(); err != nil {
		return CurrentReading{}, err
	}
	if a.live == nil {
		return a.mock.Current(city), nil
	}

	start := time.Now()
	reading, err := a.live.FetchCurrent(ctx, city)
	a.metrics.ProviderLatency.WithLabelValues("current").Observe(time.Since(start).Seconds())
	if err != nil {
		a.logger.Warn("current weather fetch failed, using mock data",
			"provider", a.live.Name(), "city", city, "error", err)
		a.metrics.FetchFallbacks.WithLabelValues("current").Inc()
		return a.mock.Current(city), nil
	}
	if reading.City == "" {
		reading.City = TitleCase(city)
	}
	return reading, nil
}

// FetchForecast returns up to ForecastDays days for city. Every call fetches
// or generates afresh. Failure handling matches FetchCurrent.
func (a *Adapter) FetchForecast(ctx context.Context, city string) ([]ForecastDay, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, ErrEmptyCity
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a.live == nil {
		return a.mock.Forecast(), nil
	}

	start := time.Now()
	days, err := a.live.FetchForecast(ctx, city)
	a.metrics.ProviderLatency.WithLabelValues("forecast").Observe(time.Since(start).Seconds())
	if err == nil && len(days) == 0 {
		err = errors.New("provider returned no forecast days")
	}
	if err != nil {
		a.logger.Warn("forecast fetch failed, using sample data",
			"provider", a.live.Name(), "city", city, "error", err)
		a.metrics.FetchFallbacks.WithLabelValues("forecast").Inc()
		return a.mock.Forecast(), nil
	}
	if len(days) > ForecastDays {
		days = days[:ForecastDays]
	}
	return days, nil
}

// SampleForecast returns a freshly generated mock forecast, used for the
// initial view before any search.
func (a *Adapter) SampleForecast() []ForecastDay {
	return a.mock.Forecast()
}
