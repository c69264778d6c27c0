package store

import (
	"context"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(testNow)
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "weather.db"), clock, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, clock
}

func week(start time.Time, base float64) []ForecastEntry {
	out := make([]ForecastEntry, 0, 7)
	for i := 0; i < 7; i++ {
		d := start.AddDate(0, 0, i)
		out = append(out, ForecastEntry{
			DayName:      d.Format("Mon"),
			ForecastDate: d,
			HighTemp:     base + float64(i),
			LowTemp:      base - 5,
			Condition:    "Clouds",
			Humidity:     ptr(60 + i),
		})
	}
	return out
}

func TestOpen_InitIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Init(ctx))

	// Reopening an existing file applies the schema again.
	again, err := Open(ctx, s.Path(), nil, nil)
	require.NoError(t, err)
	require.NoError(t, again.Close())

	tables, err := s.DescribeSchema(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, ForecastTable, tables[0].Name)
	assert.Equal(t, []string{"idx_weather_forecast_city", "idx_weather_forecast_date"}, tables[0].Indexes)
	assert.Equal(t, HistoryTable, tables[1].Name)
	assert.Equal(t, []string{"idx_weather_history_city", "idx_weather_history_date"}, tables[1].Indexes)
}

func TestInsertHistory_AssignsIDAndTimestamp(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	id1, err := s.InsertHistory(ctx, HistoryEntry{City: "Paris", Temperature: 18.4, Condition: "Clouds", Humidity: ptr(64)})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	id2, err := s.InsertHistory(ctx, HistoryEntry{City: "Oslo", Temperature: -2, Condition: "Snow"})
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	got, err := s.GetHistory(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, "Paris", got.City)
	assert.Equal(t, 18.4, got.Temperature)
	require.NotNil(t, got.Humidity)
	assert.Equal(t, 64, *got.Humidity)
	assert.Nil(t, got.Country)
	assert.Nil(t, got.Pressure)
	assert.True(t, got.SearchedAt.Equal(testNow), "searched_at %v", got.SearchedAt)

	rows, err := s.QueryHistory(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Oslo", rows[0].City)
	assert.Equal(t, "Paris", rows[1].City)
}

func TestInsertHistory_MissingRequiredField(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.InsertHistory(ctx, HistoryEntry{Temperature: 10, Condition: "Rain"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConstraint)

	var storeErr *Error
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "insert history", storeErr.Op)

	_, err = s.InsertHistory(ctx, HistoryEntry{City: "Rome", Temperature: 10})
	assert.ErrorIs(t, err, ErrConstraint)

	rows, err := s.QueryHistory(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRawInsertViolatingNotNullMapsToConstraint(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.RunQuery(context.Background(), `INSERT INTO weather_history (city, temperature) VALUES ('X', 1)`)
	assert.ErrorIs(t, err, ErrConstraint)
}

func TestGetHistory_NotFound(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.GetHistory(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetForecast(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQueryHistory_SubstringFilterAndLimit(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	for _, c := range []string{"New York", "York", "London", "New Delhi", "100%_City"} {
		_, err := s.InsertHistory(ctx, HistoryEntry{City: c, Temperature: 1, Condition: "Clear"})
		require.NoError(t, err)
		clock.Advance(time.Second)
	}

	rows, err := s.QueryHistory(ctx, "York", 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "York", rows[0].City)
	assert.Equal(t, "New York", rows[1].City)

	rows, err = s.QueryHistory(ctx, "%_", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "100%_City", rows[0].City)

	rows, err = s.QueryHistory(ctx, "", 3)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "100%_City", rows[0].City)
}

func TestReplaceForecast_RoundTripAndReplace(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	first := week(start, 20)
	require.NoError(t, s.ReplaceForecast(ctx, "Paris", first))
	require.NoError(t, s.ReplaceForecast(ctx, "paris", week(start, 5)))

	got, err := s.QueryForecast(ctx, "Paris")
	require.NoError(t, err)
	require.Len(t, got, 7)
	for i, e := range got {
		assert.Equal(t, "Paris", e.City)
		assert.Equal(t, first[i].DayName, e.DayName)
		assert.Equal(t, first[i].ForecastDate.Format("2006-01-02"), e.ForecastDate.Format("2006-01-02"))
		assert.Equal(t, first[i].HighTemp, e.HighTemp)
		assert.Equal(t, first[i].LowTemp, e.LowTemp)
		require.NotNil(t, e.Humidity)
		assert.Equal(t, *first[i].Humidity, *e.Humidity)
		assert.Nil(t, e.PrecipChance)
	}
	firstIDs := []int64{got[0].ID, got[6].ID}

	// Same input again: still exactly seven rows, with fresh ids.
	require.NoError(t, s.ReplaceForecast(ctx, "Paris", week(start, 20)))
	again, err := s.QueryForecast(ctx, "Paris")
	require.NoError(t, err)
	require.Len(t, again, 7)
	assert.NotContains(t, firstIDs, again[0].ID)
	assert.Equal(t, got[3].HighTemp, again[3].HighTemp)

	// Matching is case sensitive, so "paris" kept its own set.
	lower, err := s.QueryForecast(ctx, "paris")
	require.NoError(t, err)
	assert.Len(t, lower, 7)

	all, err := s.QueryForecast(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 14)

	cities, err := s.ForecastCities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Paris", "paris"}, cities)
}

func TestReplaceForecast_InvalidEntryLeavesExistingRows(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.ReplaceForecast(ctx, "Paris", week(start, 20)))

	bad := week(start, 10)
	bad[3].Condition = ""
	err := s.ReplaceForecast(ctx, "Paris", bad)
	assert.ErrorIs(t, err, ErrConstraint)

	err = s.ReplaceForecast(ctx, "  ", week(start, 10))
	assert.ErrorIs(t, err, ErrConstraint)

	got, err := s.QueryForecast(ctx, "Paris")
	require.NoError(t, err)
	require.Len(t, got, 7)
	assert.Equal(t, 20.0, got[0].HighTemp)
}

func TestReplaceForecast_CancelledContextKeepsPriorSet(t *testing.T) {
	s, _ := newTestStore(t)
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.ReplaceForecast(context.Background(), "Paris", week(start, 20)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, s.ReplaceForecast(ctx, "Paris", week(start, 1)))

	got, err := s.QueryForecast(context.Background(), "Paris")
	require.NoError(t, err)
	require.Len(t, got, 7)
	assert.Equal(t, 20.0, got[0].HighTemp)
}

func TestDeletes_ReportCounts(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	var ids []int64
	for _, c := range []string{"A", "B", "C"} {
		id, err := s.InsertHistory(ctx, HistoryEntry{City: c, Temperature: 1, Condition: "Clear"})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.NoError(t, s.ReplaceForecast(ctx, "A", week(start, 1)))
	require.NoError(t, s.ReplaceForecast(ctx, "B", week(start, 1)))

	n, err := s.DeleteHistory(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.DeleteHistory(ctx, ids[0])
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.DeleteAllHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	rows, err := s.QueryHistory(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, rows)

	fc, err := s.QueryForecast(ctx, "A")
	require.NoError(t, err)
	n, err = s.DeleteForecast(ctx, fc[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.DeleteForecastsForCity(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)

	n, err = s.DeleteAllForecasts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

func TestStatistics_Empty(t *testing.T) {
	s, _ := newTestStore(t)
	st, err := s.Statistics(context.Background(), 10)
	require.NoError(t, err)

	assert.Zero(t, st.HistoryTotal)
	assert.Zero(t, st.AvgTemp)
	assert.Empty(t, st.Conditions)
	assert.Empty(t, st.TopCities)
	assert.Empty(t, st.Recent)
	assert.True(t, st.FirstSearch.IsZero())
	assert.Zero(t, st.ForecastTotal)
}

func TestStatistics_Aggregates(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()

	readings := []HistoryEntry{
		{City: "Paris", Temperature: 10, Condition: "Rain", Humidity: ptr(80)},
		{City: "Paris", Temperature: 14, Condition: "Clouds", Humidity: ptr(60)},
		{City: "Rome", Temperature: 20, Condition: "Clear"},
		{City: "Oslo", Temperature: -4, Condition: "Snow"},
		{City: "Paris", Temperature: 12, Condition: "Rain"},
		{City: "Rome", Temperature: 22, Condition: "Clear"},
	}
	for _, r := range readings {
		_, err := s.InsertHistory(ctx, r)
		require.NoError(t, err)
		clock.Advance(time.Hour)
	}
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.ReplaceForecast(ctx, "Rome", week(start, 20)))

	st, err := s.Statistics(ctx, 2)
	require.NoError(t, err)

	assert.Equal(t, 6, st.HistoryTotal)
	assert.Equal(t, 3, st.DistinctCities)
	assert.Equal(t, -4.0, st.MinTemp)
	assert.Equal(t, 22.0, st.MaxTemp)
	assert.InDelta(t, 74.0/6, st.AvgTemp, 1e-9)
	assert.Equal(t, 70.0, st.AvgHumidity)
	assert.True(t, st.FirstSearch.Equal(testNow))
	assert.True(t, st.LastSearch.Equal(testNow.Add(5*time.Hour)))

	assert.Equal(t, []CityCount{{"Paris", 3}, {"Rome", 2}}, st.TopCities)

	var sum float64
	for _, c := range st.Conditions {
		sum += c.Percent
	}
	assert.InDelta(t, 100, sum, 0.01)
	require.NotEmpty(t, st.Conditions)
	assert.Equal(t, "Clear", st.Conditions[0].Condition)
	assert.InDelta(t, 100.0/3, st.Conditions[0].Percent, 1e-9)

	require.Len(t, st.Recent, 5)
	assert.Equal(t, "Rome", st.Recent[0].City)

	assert.Equal(t, 7, st.ForecastTotal)
	assert.Equal(t, 1, st.ForecastCities)
	assert.Equal(t, 15.0, st.MinLow)
	assert.Equal(t, 26.0, st.MaxHigh)
	assert.Equal(t, 23.0, st.AvgHigh)
	assert.Equal(t, []CityCount{{"Rome", 7}}, st.ForecastPerCity)
}

func TestCheckIntegrity_FindsDuplicates(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	report, err := s.CheckIntegrity(ctx)
	require.NoError(t, err)
	assert.True(t, report.Clean())

	// The fake clock does not move, so these two share searched_at.
	for i := 0; i < 2; i++ {
		_, err := s.InsertHistory(ctx, HistoryEntry{City: "Paris", Temperature: 12, Condition: "Rain"})
		require.NoError(t, err)
	}
	_, err = s.InsertHistory(ctx, HistoryEntry{City: "Paris", Temperature: 13, Condition: "Rain"})
	require.NoError(t, err)

	report, err = s.CheckIntegrity(ctx)
	require.NoError(t, err)
	assert.False(t, report.Clean())
	require.Len(t, report.Duplicates, 1)
	assert.Equal(t, "Paris", report.Duplicates[0].City)
	assert.Equal(t, 2, report.Duplicates[0].Count)
	assert.Equal(t, "2024-03-04 09:30:00", report.Duplicates[0].SearchedAt)
	assert.Zero(t, report.NullCritical)

	// Advisory only: nothing was removed.
	rows, err := s.QueryHistory(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestDescribeSchema_Columns(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.InsertHistory(context.Background(), HistoryEntry{City: "Paris", Temperature: 1, Condition: "Clear"})
	require.NoError(t, err)

	tables, err := s.DescribeSchema(context.Background())
	require.NoError(t, err)
	history := tables[1]
	assert.Equal(t, 1, history.RowCount)
	require.Len(t, history.Columns, 13)

	assert.Equal(t, "id", history.Columns[0].Name)
	assert.True(t, history.Columns[0].PrimaryKey)
	assert.Equal(t, "city", history.Columns[1].Name)
	assert.True(t, history.Columns[1].NotNull)
	assert.False(t, history.Columns[2].NotNull)

	last := history.Columns[12]
	assert.Equal(t, "searched_at", last.Name)
	assert.Equal(t, "TIMESTAMP", last.Type)
	require.NotNil(t, last.Default)
	assert.Equal(t, "CURRENT_TIMESTAMP", *last.Default)
}

func TestRunQuery(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	res, err := s.RunQuery(ctx, `INSERT INTO weather_history (city, temperature, condition) VALUES ('A', 1.5, 'Clear'), ('B', 2, 'Rain')`)
	require.NoError(t, err)
	assert.False(t, res.ReturnsRows)
	assert.Equal(t, int64(2), res.RowsAffected)

	res, err = s.RunQuery(ctx, `  select city, temperature, country from weather_history order by city`)
	require.NoError(t, err)
	assert.True(t, res.ReturnsRows)
	assert.Equal(t, []string{"city", "temperature", "country"}, res.Columns)
	assert.Equal(t, [][]string{{"A", "1.5", "NULL"}, {"B", "2", "NULL"}}, res.Rows)

	_, err = s.RunQuery(ctx, "SELEC nonsense")
	assert.Error(t, err)
	_, err = s.RunQuery(ctx, "   ")
	assert.Error(t, err)
}

func TestSeedSampleData(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	res, err := s.SeedSampleData(ctx, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	assert.Equal(t, SeedResult{History: 6, Forecast: 28}, res)

	rows, err := s.QueryHistory(ctx, "Mumbai", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].FeelsLike)
	assert.Equal(t, 35.8, *rows[0].FeelsLike)

	fc, err := s.QueryForecast(ctx, "Tokyo")
	require.NoError(t, err)
	require.Len(t, fc, 7)
	assert.Equal(t, "2024-03-04", fc[0].ForecastDate.Format("2006-01-02"))
	assert.Equal(t, "Mon", fc[0].DayName)
	for _, e := range fc {
		assert.GreaterOrEqual(t, e.HighTemp, 15.0)
		assert.LessOrEqual(t, e.HighTemp, 30.0)
		assert.Less(t, e.LowTemp, e.HighTemp)
	}

	// Seeding twice adds history but keeps one forecast set per city.
	_, err = s.SeedSampleData(ctx, nil)
	require.NoError(t, err)
	all, err := s.QueryForecast(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 28)
}

func TestFileStats(t *testing.T) {
	s, _ := newTestStore(t)
	fs, err := s.FileStats(context.Background())
	require.NoError(t, err)
	assert.Positive(t, fs.PageSize)
	assert.Positive(t, fs.PageCount)
	assert.Equal(t, fs.PageSize*fs.PageCount, fs.Size())
}
