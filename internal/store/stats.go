package store

import (
	"context"
	"database/sql"
	"time"
)

// CityCount pairs a city with a row count.
type CityCount struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}

// ConditionShare is one bucket of the condition histogram. Percent is
// relative to the total number of history rows.
type ConditionShare struct {
	Condition string  `json:"condition"`
	Count     int     `json:"count"`
	Percent   float64 `json:"percent"`
}

// Statistics summarises both tables. All numbers are zero when a table is empty.
type Statistics struct {
	HistoryTotal   int       `json:"historyTotal"`
	DistinctCities int       `json:"distinctCities"`
	MinTemp        float64   `json:"minTemp"`
	MaxTemp        float64   `json:"maxTemp"`
	AvgTemp        float64   `json:"avgTemp"`
	AvgHumidity    float64   `json:"avgHumidity"`
	AvgWindSpeed   float64   `json:"avgWindSpeed"`
	AvgPressure    float64   `json:"avgPressure"`
	FirstSearch    time.Time `json:"firstSearch"`
	LastSearch     time.Time `json:"lastSearch"`

	TopCities  []CityCount      `json:"topCities"`
	Conditions []ConditionShare `json:"conditions"`
	Recent     []HistoryEntry   `json:"recent"`

	ForecastTotal   int         `json:"forecastTotal"`
	ForecastCities  int         `json:"forecastCities"`
	AvgHigh         float64     `json:"avgHigh"`
	AvgLow          float64     `json:"avgLow"`
	MinLow          float64     `json:"minLow"`
	MaxHigh         float64     `json:"maxHigh"`
	ForecastPerCity []CityCount `json:"forecastPerCity"`
}

const recentSearches = 5

// Statistics computes aggregate figures over both tables. topN bounds the
// most-searched city list.
func (s *Store) Statistics(ctx context.Context, topN int) (Statistics, error) {
	const op = "statistics"
	var st Statistics

	var (
		minT, maxT, avgT, avgH, avgW, avgP sql.NullFloat64
		first, last                        sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT city), MIN(temperature), MAX(temperature), AVG(temperature),
		       AVG(humidity), AVG(wind_speed), AVG(pressure), MIN(searched_at), MAX(searched_at)
		FROM weather_history`).
		Scan(&st.HistoryTotal, &st.DistinctCities, &minT, &maxT, &avgT, &avgH, &avgW, &avgP, &first, &last)
	if err != nil {
		return Statistics{}, opErr(op, err)
	}
	st.MinTemp, st.MaxTemp, st.AvgTemp = minT.Float64, maxT.Float64, avgT.Float64
	st.AvgHumidity, st.AvgWindSpeed, st.AvgPressure = avgH.Float64, avgW.Float64, avgP.Float64
	if first.Valid {
		st.FirstSearch = parseTimestamp(first.String)
	}
	if last.Valid {
		st.LastSearch = parseTimestamp(last.String)
	}

	if st.TopCities, err = s.cityCounts(ctx, `
		SELECT city, COUNT(*) FROM weather_history
		GROUP BY city ORDER BY COUNT(*) DESC, city LIMIT ?`, topN); err != nil {
		return Statistics{}, opErr(op, err)
	}

	if st.Conditions, err = s.conditionShares(ctx, st.HistoryTotal); err != nil {
		return Statistics{}, opErr(op, err)
	}

	if st.Recent, err = s.QueryHistory(ctx, "", recentSearches); err != nil {
		return Statistics{}, err
	}

	var avgHigh, avgLow, minLow, maxHigh sql.NullFloat64
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT city), AVG(high_temp), AVG(low_temp), MIN(low_temp), MAX(high_temp)
		FROM weather_forecast`).
		Scan(&st.ForecastTotal, &st.ForecastCities, &avgHigh, &avgLow, &minLow, &maxHigh)
	if err != nil {
		return Statistics{}, opErr(op, err)
	}
	st.AvgHigh, st.AvgLow, st.MinLow, st.MaxHigh = avgHigh.Float64, avgLow.Float64, minLow.Float64, maxHigh.Float64

	if st.ForecastPerCity, err = s.cityCounts(ctx, `
		SELECT city, COUNT(*) FROM weather_forecast
		GROUP BY city ORDER BY city`); err != nil {
		return Statistics{}, opErr(op, err)
	}

	return st, nil
}

func (s *Store) cityCounts(ctx context.Context, query string, args ...any) ([]CityCount, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CityCount, 0)
	for rows.Next() {
		var c CityCount
		if err := rows.Scan(&c.City, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) conditionShares(ctx context.Context, total int) ([]ConditionShare, error) {
	out := make([]ConditionShare, 0)
	if total == 0 {
		return out, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT condition, COUNT(*) FROM weather_history
		GROUP BY condition ORDER BY COUNT(*) DESC, condition`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var c ConditionShare
		if err := rows.Scan(&c.Condition, &c.Count); err != nil {
			return nil, err
		}
		c.Percent = float64(c.Count) * 100 / float64(total)
		out = append(out, c)
	}
	return out, rows.Err()
}
