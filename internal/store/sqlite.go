package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"github.com/mattn/go-sqlite3"

	"github.com/i474232898/weather-lookup/internal/common"
	"github.com/i474232898/weather-lookup/internal/observability"
)

// Store is the SQLite-backed persistence for search history and forecasts.
// It owns the database handle; callers must Close it.
type Store struct {
	db       *sql.DB
	path     string
	clock    clockwork.Clock
	logger   *slog.Logger
	validate *validator.Validate
}

// Open opens (or creates) the database at path and applies the schema.
// A nil clock or logger selects the real clock and a discarding logger.
func Open(ctx context.Context, path string, clock clockwork.Clock, logger *slog.Logger) (*Store, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = observability.NopLogger()
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, opErr("open", err)
	}
	// One connection keeps writes from the controller and the scheduler serialized.
	db.SetMaxOpenConns(1)

	s := &Store{
		db:       db,
		path:     path,
		clock:    clock,
		logger:   logger,
		validate: validator.New(),
	}
	if err := s.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenReadOnly opens an existing database without applying the schema, for
// inspection tools that must not change the file.
func OpenReadOnly(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = observability.NopLogger()
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, opErr("open", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, opErr("open", err)
	}
	return &Store{
		db:       db,
		path:     path,
		clock:    clockwork.NewRealClock(),
		logger:   logger,
		validate: validator.New(),
	}, nil
}

// Init creates both tables and their indexes. Running it again is a no-op.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return opErr("init", err)
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) now() string {
	return s.clock.Now().UTC().Format(timestampLayout)
}

// checkRecord reports a missing required field as ErrConstraint before the
// statement reaches the driver.
func (s *Store) checkRecord(v any) error {
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrConstraint, err)
	}
	return nil
}

// mapDriverErr turns SQLite constraint failures into ErrConstraint.
func mapDriverErr(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%w: %v", ErrConstraint, err)
	}
	return err
}

// InsertHistory appends e and returns the assigned id. A zero SearchedAt is
// stamped with the store clock.
func (s *Store) InsertHistory(ctx context.Context, e HistoryEntry) (int64, error) {
	if err := s.checkRecord(e); err != nil {
		return 0, opErr("insert history", err)
	}

	searchedAt := s.now()
	if !e.SearchedAt.IsZero() {
		searchedAt = e.SearchedAt.UTC().Format(timestampLayout)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO weather_history
		(city, country, temperature, condition, description, humidity,
		 wind_speed, pressure, feels_like, visibility, uv_index, searched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.City, e.Country, e.Temperature, e.Condition, e.Description, e.Humidity,
		e.WindSpeed, e.Pressure, e.FeelsLike, e.Visibility, e.UVIndex, searchedAt)
	if err != nil {
		return 0, opErr("insert history", mapDriverErr(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, opErr("insert history", err)
	}
	s.logger.Debug("history saved", "id", id, "city", e.City)
	return id, nil
}

// ReplaceForecast deletes every forecast row whose city equals city exactly
// and inserts entries in its place, all in one transaction. Each entry's City
// is overwritten with city.
func (s *Store) ReplaceForecast(ctx context.Context, city string, entries []ForecastEntry) error {
	if common.IsBlank(city) {
		return opErr("replace forecast", fmt.Errorf("%w: city", ErrConstraint))
	}
	for i := range entries {
		entries[i].City = city
		if err := s.checkRecord(entries[i]); err != nil {
			return opErr("replace forecast", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return opErr("replace forecast", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM weather_forecast WHERE city = ?`, city); err != nil {
		return opErr("replace forecast", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO weather_forecast
		(city, day_name, forecast_date, high_temp, low_temp, condition,
		 description, humidity, wind_speed, precipitation_chance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return opErr("replace forecast", err)
	}
	defer stmt.Close()

	createdAt := s.now()
	for _, e := range entries {
		var date any
		if !e.ForecastDate.IsZero() {
			date = e.ForecastDate.Format(dateLayout)
		}
		if _, err := stmt.ExecContext(ctx, city, e.DayName, date, e.HighTemp, e.LowTemp, e.Condition,
			e.Description, e.Humidity, e.WindSpeed, e.PrecipChance, createdAt); err != nil {
			return opErr("replace forecast", mapDriverErr(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return opErr("replace forecast", err)
	}
	s.logger.Debug("forecast replaced", "city", city, "days", len(entries))
	return nil
}

func (s *Store) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, opErr(op, mapDriverErr(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, opErr(op, err)
	}
	return n, nil
}

// DeleteHistory removes one history row and reports how many rows went away.
func (s *Store) DeleteHistory(ctx context.Context, id int64) (int64, error) {
	return s.exec(ctx, "delete history", `DELETE FROM weather_history WHERE id = ?`, id)
}

func (s *Store) DeleteAllHistory(ctx context.Context) (int64, error) {
	return s.exec(ctx, "delete all history", `DELETE FROM weather_history`)
}

func (s *Store) DeleteForecast(ctx context.Context, id int64) (int64, error) {
	return s.exec(ctx, "delete forecast", `DELETE FROM weather_forecast WHERE id = ?`, id)
}

func (s *Store) DeleteForecastsForCity(ctx context.Context, city string) (int64, error) {
	return s.exec(ctx, "delete city forecasts", `DELETE FROM weather_forecast WHERE city = ?`, city)
}

func (s *Store) DeleteAllForecasts(ctx context.Context) (int64, error) {
	return s.exec(ctx, "delete all forecasts", `DELETE FROM weather_forecast`)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHistory(row scanner) (HistoryEntry, error) {
	var (
		e          HistoryEntry
		searchedAt sql.NullTime
	)
	err := row.Scan(&e.ID, &e.City, &e.Country, &e.Temperature, &e.Condition, &e.Description,
		&e.Humidity, &e.WindSpeed, &e.Pressure, &e.FeelsLike, &e.Visibility, &e.UVIndex, &searchedAt)
	if err != nil {
		return HistoryEntry{}, err
	}
	e.SearchedAt = searchedAt.Time
	return e, nil
}

func scanForecast(row scanner) (ForecastEntry, error) {
	var (
		e         ForecastEntry
		date      sql.NullTime
		createdAt sql.NullTime
	)
	err := row.Scan(&e.ID, &e.City, &e.DayName, &date, &e.HighTemp, &e.LowTemp, &e.Condition,
		&e.Description, &e.Humidity, &e.WindSpeed, &e.PrecipChance, &createdAt)
	if err != nil {
		return ForecastEntry{}, err
	}
	e.ForecastDate = date.Time
	e.CreatedAt = createdAt.Time
	return e, nil
}

// likeEscaper escapes LIKE wildcards so the filter matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// QueryHistory returns history rows whose city contains filter, newest first.
// An empty filter matches everything; limit <= 0 means no limit.
func (s *Store) QueryHistory(ctx context.Context, filter string, limit int) ([]HistoryEntry, error) {
	query := `SELECT ` + historyColumns + ` FROM weather_history`
	var args []any
	if filter != "" {
		query += ` WHERE city LIKE ? ESCAPE '\'`
		args = append(args, "%"+likeEscaper.Replace(filter)+"%")
	}
	query += ` ORDER BY searched_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, opErr("query history", err)
	}
	defer rows.Close()

	out := make([]HistoryEntry, 0)
	for rows.Next() {
		e, err := scanHistory(rows)
		if err != nil {
			return nil, opErr("query history", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, opErr("query history", err)
	}
	return out, nil
}

// GetHistory returns the history row with the given id or ErrNotFound.
func (s *Store) GetHistory(ctx context.Context, id int64) (HistoryEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+historyColumns+` FROM weather_history WHERE id = ?`, id)
	e, err := scanHistory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return HistoryEntry{}, opErr("get history", ErrNotFound)
	}
	if err != nil {
		return HistoryEntry{}, opErr("get history", err)
	}
	return e, nil
}

// QueryForecast returns forecast rows for city (exact match), or all rows
// when city is empty, ordered by city then date.
func (s *Store) QueryForecast(ctx context.Context, city string) ([]ForecastEntry, error) {
	query := `SELECT ` + forecastColumns + ` FROM weather_forecast`
	var args []any
	if city != "" {
		query += ` WHERE city = ?`
		args = append(args, city)
	}
	query += ` ORDER BY city, forecast_date, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, opErr("query forecast", err)
	}
	defer rows.Close()

	out := make([]ForecastEntry, 0)
	for rows.Next() {
		e, err := scanForecast(rows)
		if err != nil {
			return nil, opErr("query forecast", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, opErr("query forecast", err)
	}
	return out, nil
}

func (s *Store) GetForecast(ctx context.Context, id int64) (ForecastEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+forecastColumns+` FROM weather_forecast WHERE id = ?`, id)
	e, err := scanForecast(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ForecastEntry{}, opErr("get forecast", ErrNotFound)
	}
	if err != nil {
		return ForecastEntry{}, opErr("get forecast", err)
	}
	return e, nil
}

// ForecastCities lists the distinct cities that have forecast rows.
func (s *Store) ForecastCities(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT city FROM weather_forecast ORDER BY city`)
	if err != nil {
		return nil, opErr("forecast cities", err)
	}
	defer rows.Close()

	var cities []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, opErr("forecast cities", err)
		}
		cities = append(cities, c)
	}
	return cities, opErr("forecast cities", rows.Err())
}
