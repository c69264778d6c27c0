package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	httpapi "github.com/i474232898/weather-lookup/internal/api/http"
	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/controller"
	"github.com/i474232898/weather-lookup/internal/observability"
	"github.com/i474232898/weather-lookup/internal/scheduler"
	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/i474232898/weather-lookup/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.DBPath, clock, logger)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// Without a usable key the adapter runs in demo mode on mock data.
	var live weather.Source
	if cfg.LiveMode() {
		httpCfg := providers.NewHTTPClientConfig(cfg.HTTPTimeout, cfg.ProviderMaxRetries, cfg.ProviderRateLimit)
		switch cfg.Provider {
		case config.ProviderWeatherAPI:
			live = providers.NewWeatherAPIProvider(httpCfg, cfg.WeatherAPIKey)
		default:
			live = providers.NewOpenWeatherProvider(httpCfg, cfg.OpenWeatherURL, cfg.OpenWeatherAPIKey)
		}
	}
	adapter := weather.NewAdapter(live, weather.NewMockGenerator(nil, clock), logger, metrics)

	ctrl := controller.New(adapter, st, controller.Options{
		HistoryLimit: cfg.HistoryViewLimit,
		TopCities:    cfg.TopCities,
		Clock:        clock,
		Logger:       logger,
		Metrics:      metrics,
	})
	logger.Info("weather lookup starting", "mode", ctrl.Mode(), "provider", cfg.Provider, "db", st.Path())

	sched := scheduler.New(cfg.WatchCities, cfg.RefreshInterval, cfg.HTTPTimeout*4, ctrl, logger)
	if err := sched.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	app := httpapi.NewApp(ctrl, true)
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("fiber server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", "error", err)
	}
}
