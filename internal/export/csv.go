// Package export writes the store tables to CSV files.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/i474232898/weather-lookup/internal/store"
)

// File names written by ToDir.
const (
	HistoryFile  = "weather_history.csv"
	ForecastFile = "weather_forecast.csv"
)

var (
	historyHeader = []string{"ID", "City", "Country", "Temperature", "Condition", "Description",
		"Humidity", "Wind Speed", "Pressure", "Feels Like", "Visibility", "UV Index", "Search Date"}
	forecastHeader = []string{"ID", "City", "Day Name", "Forecast Date", "High Temp", "Low Temp",
		"Condition", "Description", "Humidity", "Wind Speed", "Precipitation Chance", "Created At"}
)

// Source is the read side of the store needed for an export.
type Source interface {
	QueryHistory(ctx context.Context, filter string, limit int) ([]store.HistoryEntry, error)
	QueryForecast(ctx context.Context, city string) ([]store.ForecastEntry, error)
}

// Result describes a finished export.
type Result struct {
	HistoryPath  string `json:"historyPath"`
	ForecastPath string `json:"forecastPath"`
	HistoryRows  int    `json:"historyRows"`
	ForecastRows int    `json:"forecastRows"`
}

// ToDir writes both tables in full into dir, history newest first and
// forecasts by city and date. Existing files are overwritten.
func ToDir(ctx context.Context, src Source, dir string) (Result, error) {
	history, err := src.QueryHistory(ctx, "", 0)
	if err != nil {
		return Result{}, err
	}
	forecast, err := src.QueryForecast(ctx, "")
	if err != nil {
		return Result{}, err
	}

	res := Result{
		HistoryPath:  filepath.Join(dir, HistoryFile),
		ForecastPath: filepath.Join(dir, ForecastFile),
		HistoryRows:  len(history),
		ForecastRows: len(forecast),
	}
	if err := writeFile(res.HistoryPath, func(w io.Writer) error { return WriteHistory(w, history) }); err != nil {
		return Result{}, err
	}
	if err := writeFile(res.ForecastPath, func(w io.Writer) error { return WriteForecast(w, forecast) }); err != nil {
		return Result{}, err
	}
	return res, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// WriteHistory writes the header and one record per entry.
func WriteHistory(w io.Writer, rows []store.HistoryEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(historyHeader); err != nil {
		return err
	}
	for _, e := range rows {
		rec := []string{
			strconv.FormatInt(e.ID, 10),
			e.City,
			str(e.Country),
			num(e.Temperature),
			e.Condition,
			str(e.Description),
			integer(e.Humidity),
			optNum(e.WindSpeed),
			integer(e.Pressure),
			optNum(e.FeelsLike),
			integer(e.Visibility),
			optNum(e.UVIndex),
			timestamp(e.SearchedAt),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteForecast writes the header and one record per entry.
func WriteForecast(w io.Writer, rows []store.ForecastEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(forecastHeader); err != nil {
		return err
	}
	for _, e := range rows {
		date := ""
		if !e.ForecastDate.IsZero() {
			date = e.ForecastDate.Format("2006-01-02")
		}
		rec := []string{
			strconv.FormatInt(e.ID, 10),
			e.City,
			e.DayName,
			date,
			num(e.HighTemp),
			num(e.LowTemp),
			e.Condition,
			str(e.Description),
			integer(e.Humidity),
			optNum(e.WindSpeed),
			integer(e.PrecipChance),
			timestamp(e.CreatedAt),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optNum(v *float64) string {
	if v == nil {
		return ""
	}
	return num(*v)
}

func integer(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func str(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
