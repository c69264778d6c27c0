package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/sony/gobreaker"
)

// OpenWeatherProvider implements weather.Source for OpenWeatherMap's
// /weather and /forecast endpoints (metric units).
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	// loc decides which calendar day a forecast sample belongs to.
	loc *time.Location
}

var _ weather.Source = (*OpenWeatherProvider)(nil)

func NewOpenWeatherProvider(httpCfg HTTPClientConfig, baseURL, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: baseURL,
		httpCfg: httpCfg,
		circuit: newBreaker("openweather"),
		loc:     time.Local,
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) get(ctx context.Context, path, city string, out any) error {
	if p.apiKey == "" {
		return fmt.Errorf("openweather: %w", errNoAPIKey)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", city)
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")

		u := fmt.Sprintf("%s%s?%s", p.baseURL, path, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

type owmCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmCurrentPayload struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Pressure  float64 `json:"pressure"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Visibility *float64 `json:"visibility"` // metres
	Wind       struct {
		Speed float64 `json:"speed"` // m/s
	} `json:"wind"`
	Weather []owmCondition `json:"weather"`
}

func (p *OpenWeatherProvider) FetchCurrent(ctx context.Context, city string) (weather.CurrentReading, error) {
	var payload owmCurrentPayload
	if err := p.get(ctx, "/weather", city, &payload); err != nil {
		return weather.CurrentReading{}, err
	}
	if len(payload.Weather) == 0 {
		return weather.CurrentReading{}, errEmptyPayload
	}

	w := payload.Weather[0]
	pressure := int(math.Round(payload.Main.Pressure))
	feelsLike := weather.Round1(payload.Main.FeelsLike)

	reading := weather.CurrentReading{
		City:        payload.Name,
		Country:     payload.Sys.Country,
		Temperature: weather.Round1(payload.Main.Temp),
		Condition:   weather.Condition(w.Main),
		Description: weather.TitleCase(w.Description),
		Humidity:    int(math.Round(payload.Main.Humidity)),
		WindSpeed:   weather.Round1(payload.Wind.Speed * 3.6),
		High:        weather.Round1(payload.Main.TempMax),
		Low:         weather.Round1(payload.Main.TempMin),
		IconCode:    w.Icon,
		Pressure:    &pressure,
		FeelsLike:   &feelsLike,
	}
	if payload.Visibility != nil {
		km := int(*payload.Visibility / 1000)
		reading.Visibility = &km
	}
	return reading, nil
}

type owmForecastPayload struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Pop     float64        `json:"pop"`
		Weather []owmCondition `json:"weather"`
	} `json:"list"`
}

func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, city string) ([]weather.ForecastDay, error) {
	var payload owmForecastPayload
	if err := p.get(ctx, "/forecast", city, &payload); err != nil {
		return nil, err
	}

	samples := make([]weather.ForecastSample, 0, len(payload.List))
	for _, item := range payload.List {
		if len(item.Weather) == 0 {
			return nil, errEmptyPayload
		}
		samples = append(samples, weather.ForecastSample{
			Timestamp:   time.Unix(item.Dt, 0),
			Temperature: item.Main.Temp,
			Condition:   weather.Condition(item.Weather[0].Main),
			Humidity:    item.Main.Humidity,
			WindSpeedMS: item.Wind.Speed,
			Pop:         item.Pop,
		})
	}

	return weather.GroupForecast(samples, p.loc, weather.ForecastDays), nil
}
