package store

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a record with the requested id does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConstraint is returned when a record is missing a required field.
	ErrConstraint = errors.New("required field missing")
)

// Error is returned by every store operation that fails. Op names the
// operation, Err is the underlying cause.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func opErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// HistoryEntry is one observed reading tied to a search. Pointer fields are
// optional columns.
type HistoryEntry struct {
	ID          int64     `json:"id"`
	City        string    `json:"city" validate:"required"`
	Country     *string   `json:"country,omitempty"`
	Temperature float64   `json:"temperature"`
	Condition   string    `json:"condition" validate:"required"`
	Description *string   `json:"description,omitempty"`
	Humidity    *int      `json:"humidity,omitempty"`
	WindSpeed   *float64  `json:"windSpeed,omitempty"`
	Pressure    *int      `json:"pressure,omitempty"`
	FeelsLike   *float64  `json:"feelsLike,omitempty"`
	Visibility  *int      `json:"visibility,omitempty"`
	UVIndex     *float64  `json:"uvIndex,omitempty"`
	SearchedAt  time.Time `json:"searchedAt"` // zero means "now" on insert
}

// ForecastEntry is one day in a city's current forecast set.
type ForecastEntry struct {
	ID           int64     `json:"id"`
	City         string    `json:"city" validate:"required"`
	DayName      string    `json:"dayName" validate:"required"`
	ForecastDate time.Time `json:"forecastDate"`
	HighTemp     float64   `json:"highTemp"`
	LowTemp      float64   `json:"lowTemp"`
	Condition    string    `json:"condition" validate:"required"`
	Description  *string   `json:"description,omitempty"`
	Humidity     *int      `json:"humidity,omitempty"`
	WindSpeed    *float64  `json:"windSpeed,omitempty"`
	PrecipChance *int      `json:"precipitationChance,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

const (
	timestampLayout = "2006-01-02 15:04:05"
	dateLayout      = "2006-01-02"
)

// parseTimestamp reads timestamps written by this package or by SQLite's
// CURRENT_TIMESTAMP. Unparseable input yields the zero time.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{timestampLayout, time.RFC3339, "2006-01-02 15:04:05.999999999-07:00", dateLayout} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t
		}
	}
	return time.Time{}
}
