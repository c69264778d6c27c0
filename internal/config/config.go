package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// PlaceholderAPIKey is the value shipped in sample configs; it is treated as "no key".
const PlaceholderAPIKey = "YOUR_API_KEY_HERE"

// Provider names accepted in WEATHER_PROVIDER.
const (
	ProviderOpenWeather = "openweather"
	ProviderWeatherAPI  = "weatherapi"
)

type AppConfig struct {
	Provider          string
	OpenWeatherAPIKey string
	OpenWeatherURL    string
	WeatherAPIKey     string

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration

	ProviderMaxRetries int
	ProviderRateLimit  float64 // requests per second, 0 = unlimited

	DBPath string

	Port            string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	HistoryViewLimit int
	TopCities        int

	// WatchCities are refreshed every RefreshInterval when non-empty.
	WatchCities     []string
	RefreshInterval time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found or error loading it", "error", err)
	}
	cfg := &AppConfig{}

	cfg.Provider = strings.ToLower(getenvDefault("WEATHER_PROVIDER", ProviderOpenWeather))
	if cfg.Provider != ProviderOpenWeather && cfg.Provider != ProviderWeatherAPI {
		return nil, fmt.Errorf("invalid WEATHER_PROVIDER %q", cfg.Provider)
	}
	cfg.OpenWeatherAPIKey = strings.TrimSpace(os.Getenv("OPENWEATHER_API_KEY"))
	cfg.OpenWeatherURL = strings.TrimRight(getenvDefault("OPENWEATHER_BASE_URL", "http://api.openweathermap.org/data/2.5"), "/")
	cfg.WeatherAPIKey = strings.TrimSpace(os.Getenv("WEATHERAPI_API_KEY"))

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getenvDuration("SHUTDOWN_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "30m"); err != nil {
		return nil, err
	}

	cfg.ProviderMaxRetries = getenvInt("PROVIDER_MAX_RETRIES", 0)
	if cfg.ProviderMaxRetries < 0 {
		return nil, fmt.Errorf("invalid PROVIDER_MAX_RETRIES: must not be negative")
	}

	rateStr := getenvDefault("PROVIDER_RATE_LIMIT", "0")
	rate, err := strconv.ParseFloat(rateStr, 64)
	if err != nil || rate < 0 {
		return nil, fmt.Errorf("invalid PROVIDER_RATE_LIMIT %q", rateStr)
	}
	cfg.ProviderRateLimit = rate

	cfg.DBPath = getenvDefault("WEATHER_DB_PATH", "weather_forecast_real.db")
	cfg.Port = getenvDefault("PORT", "8080")

	cfg.LogLevel = strings.ToLower(getenvDefault("LOG_LEVEL", "info"))
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}
	cfg.LogFormat = strings.ToLower(getenvDefault("LOG_FORMAT", "text"))

	cfg.HistoryViewLimit = getenvInt("HISTORY_VIEW_LIMIT", 12)
	cfg.TopCities = getenvInt("TOP_CITIES", 10)
	if cfg.HistoryViewLimit <= 0 || cfg.TopCities <= 0 {
		return nil, fmt.Errorf("HISTORY_VIEW_LIMIT and TOP_CITIES must be positive")
	}

	cfg.WatchCities = splitList(os.Getenv("WATCH_CITIES"))

	return cfg, nil
}

// LiveMode reports whether a usable credential is configured for the selected provider.
func (c *AppConfig) LiveMode() bool {
	key := c.APIKey()
	return key != "" && key != PlaceholderAPIKey
}

// APIKey returns the credential of the selected provider.
func (c *AppConfig) APIKey() string {
	if c.Provider == ProviderWeatherAPI {
		return c.WeatherAPIKey
	}
	return c.OpenWeatherAPIKey
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	s := getenvDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
