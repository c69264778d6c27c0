package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/sony/gobreaker"
)

// WeatherAPIProvider implements weather.Source for WeatherAPI.com. Both
// operations use forecast.json, which carries the current block and daily
// high/low in one response.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

var _ weather.Source = (*WeatherAPIProvider)(nil)

func NewWeatherAPIProvider(httpCfg HTTPClientConfig, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1",
		httpCfg: httpCfg,
		circuit: newBreaker("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

type weatherAPIPayload struct {
	Location struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"location"`
	Current struct {
		TempC      float64 `json:"temp_c"`
		FeelsLikeC float64 `json:"feelslike_c"`
		Humidity   float64 `json:"humidity"`
		WindKph    float64 `json:"wind_kph"`
		PressureMb float64 `json:"pressure_mb"`
		VisKm      float64 `json:"vis_km"`
		UV         float64 `json:"uv"`
		Condition  struct {
			Text string `json:"text"`
			Code int    `json:"code"`
		} `json:"condition"`
	} `json:"current"`
	Forecast struct {
		ForecastDay []struct {
			Date string `json:"date"`
			Day  struct {
				MaxTempC          float64 `json:"maxtemp_c"`
				MinTempC          float64 `json:"mintemp_c"`
				MaxWindKph        float64 `json:"maxwind_kph"`
				AvgHumidity       float64 `json:"avghumidity"`
				DailyChanceOfRain int     `json:"daily_chance_of_rain"`
				Condition         struct {
					Text string `json:"text"`
				} `json:"condition"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func (p *WeatherAPIProvider) fetch(ctx context.Context, city string, days int) (weatherAPIPayload, error) {
	var payload weatherAPIPayload
	if p.apiKey == "" {
		return payload, fmt.Errorf("weatherapi: %w", errNoAPIKey)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		values.Set("q", city)
		values.Set("days", strconv.Itoa(days))
		values.Set("aqi", "no")
		values.Set("alerts", "no")

		u := fmt.Sprintf("%s/forecast.json?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return payload, err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return payload, fmt.Errorf("decode forecast.json response: %w", err)
	}
	return payload, nil
}

func (p *WeatherAPIProvider) FetchCurrent(ctx context.Context, city string) (weather.CurrentReading, error) {
	payload, err := p.fetch(ctx, city, 1)
	if err != nil {
		return weather.CurrentReading{}, err
	}
	if payload.Current.Condition.Text == "" || len(payload.Forecast.ForecastDay) == 0 {
		return weather.CurrentReading{}, errEmptyPayload
	}

	c := payload.Current
	today := payload.Forecast.ForecastDay[0].Day
	pressure := int(math.Round(c.PressureMb))
	feelsLike := weather.Round1(c.FeelsLikeC)
	visibility := int(c.VisKm)
	uv := c.UV

	return weather.CurrentReading{
		City:        payload.Location.Name,
		Country:     payload.Location.Country,
		Temperature: weather.Round1(c.TempC),
		Condition:   weather.Condition(c.Condition.Text),
		Description: weather.TitleCase(c.Condition.Text),
		Humidity:    int(math.Round(c.Humidity)),
		WindSpeed:   weather.Round1(c.WindKph),
		High:        weather.Round1(today.MaxTempC),
		Low:         weather.Round1(today.MinTempC),
		IconCode:    strconv.Itoa(c.Condition.Code),
		Pressure:    &pressure,
		FeelsLike:   &feelsLike,
		Visibility:  &visibility,
		UVIndex:     &uv,
	}, nil
}

func (p *WeatherAPIProvider) FetchForecast(ctx context.Context, city string) ([]weather.ForecastDay, error) {
	payload, err := p.fetch(ctx, city, weather.ForecastDays)
	if err != nil {
		return nil, err
	}

	days := make([]weather.ForecastDay, 0, len(payload.Forecast.ForecastDay))
	for _, fd := range payload.Forecast.ForecastDay {
		date, err := time.ParseInLocation("2006-01-02", fd.Date, time.Local)
		if err != nil {
			return nil, fmt.Errorf("parse forecast date %q: %w", fd.Date, err)
		}
		cond := weather.Condition(fd.Day.Condition.Text)
		humidity := int(math.Round(fd.Day.AvgHumidity))
		wind := weather.Round1(fd.Day.MaxWindKph)
		precip := fd.Day.DailyChanceOfRain

		days = append(days, weather.ForecastDay{
			Day:          date.Format("Mon"),
			Date:         date,
			High:         weather.Round1(fd.Day.MaxTempC),
			Low:          weather.Round1(fd.Day.MinTempC),
			Condition:    cond,
			Icon:         weather.IconFor(string(cond)),
			Description:  fd.Day.Condition.Text,
			Humidity:     &humidity,
			WindSpeed:    &wind,
			PrecipChance: &precip,
		})
	}
	return days, nil
}
