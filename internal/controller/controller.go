// Package controller holds the application state behind the presentation
// layer: the active view, the last search result and the write-through of
// every search into the store.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/i474232898/weather-lookup/internal/export"
	"github.com/i474232898/weather-lookup/internal/observability"
	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
)

var (
	// ErrValidation is returned for empty or placeholder search input and
	// malformed delete requests. Nothing is fetched or written.
	ErrValidation = errors.New("validation failed")
	// ErrUnknownView is returned by SelectTab for names outside Home/Search/History.
	ErrUnknownView = errors.New("unknown view")
)

// SearchPlaceholder is the hint text shown in an empty search box. Submitting
// it unchanged counts as empty input.
const SearchPlaceholder = "Search for a city..."

// Mode labels.
const (
	ModeLive = "Live Data"
	ModeDemo = "Demo Mode"
)

// WeatherSource is what the controller needs from weather.Adapter.
type WeatherSource interface {
	Live() bool
	FetchCurrent(ctx context.Context, city string) (weather.CurrentReading, error)
	FetchForecast(ctx context.Context, city string) ([]weather.ForecastDay, error)
	SampleForecast() []weather.ForecastDay
}

// Store is the persistence surface used by the controller.
type Store interface {
	export.Source
	InsertHistory(ctx context.Context, e store.HistoryEntry) (int64, error)
	ReplaceForecast(ctx context.Context, city string, entries []store.ForecastEntry) error
	DeleteHistory(ctx context.Context, id int64) (int64, error)
	DeleteAllHistory(ctx context.Context) (int64, error)
	DeleteForecast(ctx context.Context, id int64) (int64, error)
	DeleteForecastsForCity(ctx context.Context, city string) (int64, error)
	DeleteAllForecasts(ctx context.Context) (int64, error)
	Statistics(ctx context.Context, topN int) (store.Statistics, error)
}

// Options tune a Controller. Zero values pick defaults.
type Options struct {
	HistoryLimit int
	TopCities    int
	Clock        clockwork.Clock
	Logger       *slog.Logger
	Metrics      *observability.Metrics
}

// Snapshot is the view model handed to the presentation layer.
type Snapshot struct {
	SearchID   string                 `json:"searchId,omitempty"`
	ActiveView View                   `json:"activeView"`
	Mode       string                 `json:"mode"`
	Current    weather.CurrentReading `json:"current"`
	Icon       string                 `json:"icon"`
	Forecast   []weather.ForecastDay  `json:"forecast"`
	UpdatedAt  time.Time              `json:"updatedAt"`
}

type Controller struct {
	source WeatherSource
	store  Store

	historyLimit int
	topCities    int
	clock        clockwork.Clock
	logger       *slog.Logger
	metrics      *observability.Metrics

	// searchMu serializes searches so fetch, write and view update of one
	// search never interleave with another.
	searchMu sync.Mutex

	mu        sync.RWMutex
	active    View
	searchID  string
	current   weather.CurrentReading
	forecast  []weather.ForecastDay
	updatedAt time.Time
}

// New creates a Controller showing the default New York reading on Home.
func New(source WeatherSource, st Store, opts Options) *Controller {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 12
	}
	if opts.TopCities <= 0 {
		opts.TopCities = 10
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = observability.NopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.NewMetricsForTesting()
	}

	c := &Controller{
		source:       source,
		store:        st,
		historyLimit: opts.HistoryLimit,
		topCities:    opts.TopCities,
		clock:        opts.Clock,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		active:       ViewHome,
		current:      defaultReading(),
		forecast:     source.SampleForecast(),
		updatedAt:    opts.Clock.Now(),
	}
	if source.Live() {
		c.metrics.LiveMode.Set(1)
	}
	return c
}

func defaultReading() weather.CurrentReading {
	return weather.CurrentReading{
		City:        "New York",
		Temperature: 22,
		Condition:   weather.ConditionClear,
		Description: "Clear Sky",
		Humidity:    65,
		WindSpeed:   12,
		High:        25,
		Low:         18,
		IconCode:    weather.MockIconCode,
	}
}

// Mode reports whether searches use the live provider.
func (c *Controller) Mode() string {
	if c.source.Live() {
		return ModeLive
	}
	return ModeDemo
}

// Snapshot returns a copy of the current view model.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		SearchID:   c.searchID,
		ActiveView: c.active,
		Mode:       c.Mode(),
		Current:    c.current,
		Icon:       c.current.Symbol(),
		Forecast:   append([]weather.ForecastDay(nil), c.forecast...),
		UpdatedAt:  c.updatedAt,
	}
}

// SubmitSearch fetches current weather and forecast for input, writes both
// through to the store and, only if that succeeded, replaces the view model
// and switches to Home. On any error the previous view model is kept.
func (c *Controller) SubmitSearch(ctx context.Context, input string) (Snapshot, error) {
	city := strings.TrimSpace(input)
	if city == "" || city == SearchPlaceholder {
		c.metrics.Searches.WithLabelValues("invalid").Inc()
		return Snapshot{}, fmt.Errorf("%w: enter a city name", ErrValidation)
	}

	c.searchMu.Lock()
	defer c.searchMu.Unlock()

	searchID := uuid.NewString()
	logger := c.logger.With("search_id", searchID, "city", city)

	current, forecast, err := c.fetchAndStore(ctx, city, logger)
	if err != nil {
		c.metrics.Searches.WithLabelValues("error").Inc()
		return Snapshot{}, err
	}

	c.mu.Lock()
	c.searchID = searchID
	c.current = current
	c.forecast = forecast
	c.updatedAt = c.clock.Now()
	c.active = ViewHome
	c.mu.Unlock()

	c.metrics.Searches.WithLabelValues("ok").Inc()
	logger.Info("search completed", "temperature", current.Temperature, "condition", current.Condition)
	return c.Snapshot(), nil
}

// Refresh fetches and stores weather for city without touching the view.
func (c *Controller) Refresh(ctx context.Context, city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		return fmt.Errorf("%w: empty city", ErrValidation)
	}
	_, _, err := c.fetchAndStore(ctx, city, c.logger.With("city", city, "refresh", true))
	return err
}

func (c *Controller) fetchAndStore(ctx context.Context, city string, logger *slog.Logger) (weather.CurrentReading, []weather.ForecastDay, error) {
	current, err := c.source.FetchCurrent(ctx, city)
	if err != nil {
		logger.Error("current weather unavailable", "error", err)
		return weather.CurrentReading{}, nil, err
	}
	forecast, err := c.source.FetchForecast(ctx, city)
	if err != nil {
		logger.Error("forecast unavailable", "error", err)
		return weather.CurrentReading{}, nil, err
	}

	if _, err := c.store.InsertHistory(ctx, historyEntry(current, c.clock.Now())); err != nil {
		c.metrics.StoreErrors.WithLabelValues("insert_history").Inc()
		logger.Error("saving history failed", "error", err)
		return weather.CurrentReading{}, nil, err
	}
	if err := c.store.ReplaceForecast(ctx, city, forecastEntries(forecast)); err != nil {
		c.metrics.StoreErrors.WithLabelValues("replace_forecast").Inc()
		logger.Error("saving forecast failed", "error", err)
		return weather.CurrentReading{}, nil, err
	}
	return current, forecast, nil
}

func optional[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}

func historyEntry(r weather.CurrentReading, at time.Time) store.HistoryEntry {
	humidity := r.Humidity
	wind := r.WindSpeed
	return store.HistoryEntry{
		City:        r.City,
		Country:     optional(r.Country),
		Temperature: r.Temperature,
		Condition:   string(r.Condition),
		Description: optional(r.Description),
		Humidity:    &humidity,
		WindSpeed:   &wind,
		Pressure:    r.Pressure,
		FeelsLike:   r.FeelsLike,
		Visibility:  r.Visibility,
		UVIndex:     r.UVIndex,
		SearchedAt:  at,
	}
}

func forecastEntries(days []weather.ForecastDay) []store.ForecastEntry {
	out := make([]store.ForecastEntry, 0, len(days))
	for _, d := range days {
		out = append(out, store.ForecastEntry{
			DayName:      d.Day,
			ForecastDate: d.Date,
			HighTemp:     d.High,
			LowTemp:      d.Low,
			Condition:    string(d.Condition),
			Description:  optional(d.Description),
			Humidity:     d.Humidity,
			WindSpeed:    d.WindSpeed,
			PrecipChance: d.PrecipChance,
		})
	}
	return out
}

// History returns the most recent searches for the History view.
func (c *Controller) History(ctx context.Context) ([]store.HistoryEntry, error) {
	return c.store.QueryHistory(ctx, "", c.historyLimit)
}

// Statistics summarises the store.
func (c *Controller) Statistics(ctx context.Context) (store.Statistics, error) {
	return c.store.Statistics(ctx, c.topCities)
}

// RequestExport writes both tables as CSV into dir.
func (c *Controller) RequestExport(ctx context.Context, dir string) (export.Result, error) {
	res, err := export.ToDir(ctx, c.store, dir)
	if err != nil {
		c.logger.Error("export failed", "dir", dir, "error", err)
		return export.Result{}, err
	}
	c.logger.Info("export written", "history", res.HistoryPath, "forecast", res.ForecastPath)
	return res, nil
}
