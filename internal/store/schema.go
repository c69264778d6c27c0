package store

// Table names. Column order and types are read by other tools and must not change.
const (
	HistoryTable  = "weather_history"
	ForecastTable = "weather_forecast"
)

// ExpectedTables lists the tables a valid database file contains.
var ExpectedTables = []string{HistoryTable, ForecastTable}

const schema = `
CREATE TABLE IF NOT EXISTS weather_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	city TEXT NOT NULL,
	country TEXT,
	temperature REAL NOT NULL,
	condition TEXT NOT NULL,
	description TEXT,
	humidity INTEGER,
	wind_speed REAL,
	pressure INTEGER,
	feels_like REAL,
	visibility INTEGER,
	uv_index REAL,
	searched_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS weather_forecast (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	city TEXT NOT NULL,
	day_name TEXT NOT NULL,
	forecast_date DATE,
	high_temp REAL NOT NULL,
	low_temp REAL NOT NULL,
	condition TEXT NOT NULL,
	description TEXT,
	humidity INTEGER,
	wind_speed REAL,
	precipitation_chance INTEGER,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_weather_history_city ON weather_history(city);
CREATE INDEX IF NOT EXISTS idx_weather_history_date ON weather_history(searched_at);
CREATE INDEX IF NOT EXISTS idx_weather_forecast_city ON weather_forecast(city);
CREATE INDEX IF NOT EXISTS idx_weather_forecast_date ON weather_forecast(forecast_date);
`

const historyColumns = `id, city, country, temperature, condition, description, humidity,
	wind_speed, pressure, feels_like, visibility, uv_index, searched_at`

const forecastColumns = `id, city, day_name, forecast_date, high_temp, low_temp, condition,
	description, humidity, wind_speed, precipitation_chance, created_at`
