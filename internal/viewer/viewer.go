// Package viewer is the terminal browser for a weather database file.
package viewer

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/i474232898/weather-lookup/internal/export"
	"github.com/i474232898/weather-lookup/internal/store"
)

// Store is the part of *store.Store the viewer drives.
type Store interface {
	export.Source
	ForecastCities(ctx context.Context) ([]string, error)
	DeleteHistory(ctx context.Context, id int64) (int64, error)
	DeleteForecast(ctx context.Context, id int64) (int64, error)
	DeleteForecastsForCity(ctx context.Context, city string) (int64, error)
	DeleteAllHistory(ctx context.Context) (int64, error)
	DeleteAllForecasts(ctx context.Context) (int64, error)
	SeedSampleData(ctx context.Context, rng *rand.Rand) (store.SeedResult, error)
	RunQuery(ctx context.Context, query string) (store.QueryResult, error)
}

type Config struct {
	Store Store
	// Path is shown in the header only.
	Path string
	// ExportDir receives the CSV files; empty means the working directory.
	ExportDir string
	// Rand drives sample data generation; nil picks a random seed.
	Rand *rand.Rand
}

// Run starts the viewer and blocks until the user quits.
func Run(ctx context.Context, cfg Config) error {
	p := tea.NewProgram(
		newModel(ctx, cfg),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}

const defaultTableHeight = 15

type model struct {
	ctx context.Context
	cfg Config

	active tab
	mode   inputMode

	history      []store.HistoryEntry
	forecast     []store.ForecastEntry
	cities       []string
	historyQuery string
	forecastCity string

	historyTable  table.Model
	forecastTable table.Model
	queryTable    table.Model
	queryResult   store.QueryResult

	filter textinput.Model
	sql    textinput.Model

	prompt  string
	pending tea.Cmd

	showDetail bool
	status     string
	err        error
	width      int
	quitting   bool
}

func newModel(ctx context.Context, cfg Config) *model {
	if cfg.ExportDir == "" {
		cfg.ExportDir = "."
	}

	filter := textinput.New()
	filter.Prompt = "Filter: "
	filter.CharLimit = 64

	sql := textinput.New()
	sql.Prompt = "SQL> "
	sql.Placeholder = "SELECT * FROM weather_history LIMIT 10"

	return &model{
		ctx:           ctx,
		cfg:           cfg,
		historyTable:  newTable(historyColumns),
		forecastTable: newTable(forecastColumns),
		queryTable:    newTable(nil),
		filter:        filter,
		sql:           sql,
	}
}

var (
	historyColumns = []table.Column{
		{Title: "ID", Width: 5},
		{Title: "City", Width: 16},
		{Title: "Country", Width: 7},
		{Title: "Temp", Width: 6},
		{Title: "Condition", Width: 10},
		{Title: "Humidity", Width: 8},
		{Title: "Wind", Width: 6},
		{Title: "Searched At", Width: 19},
	}
	forecastColumns = []table.Column{
		{Title: "ID", Width: 5},
		{Title: "City", Width: 16},
		{Title: "Day", Width: 4},
		{Title: "Date", Width: 10},
		{Title: "High", Width: 6},
		{Title: "Low", Width: 6},
		{Title: "Condition", Width: 10},
		{Title: "Precip", Width: 6},
	}
)

func newTable(cols []table.Column) table.Model {
	return table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(defaultTableHeight),
	)
}

func (m *model) Init() tea.Cmd {
	return m.loadHistory()
}

func (m *model) loadHistory() tea.Cmd {
	filter := m.historyQuery
	return func() tea.Msg {
		rows, err := m.cfg.Store.QueryHistory(m.ctx, filter, 0)
		if err != nil {
			return errorMsg{err}
		}
		return historyLoadedMsg(rows)
	}
}

func (m *model) loadForecast() tea.Cmd {
	city := m.forecastCity
	return func() tea.Msg {
		rows, err := m.cfg.Store.QueryForecast(m.ctx, city)
		if err != nil {
			return errorMsg{err}
		}
		cities, err := m.cfg.Store.ForecastCities(m.ctx)
		if err != nil {
			return errorMsg{err}
		}
		return forecastLoadedMsg{entries: rows, cities: cities}
	}
}

func (m *model) reload() tea.Cmd {
	switch m.active {
	case historyTab:
		return m.loadHistory()
	case forecastTab:
		return m.loadForecast()
	}
	return nil
}

func (m *model) runQuery(query string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.cfg.Store.RunQuery(m.ctx, query)
		if err != nil {
			return errorMsg{err}
		}
		return queryDoneMsg(res)
	}
}

// mutate wraps a store call returning an affected-row count.
func (m *model) mutate(format string, fn func(context.Context) (int64, error)) tea.Cmd {
	return func() tea.Msg {
		n, err := fn(m.ctx)
		if err != nil {
			return errorMsg{err}
		}
		return actionDoneMsg{status: fmt.Sprintf(format, n)}
	}
}

func (m *model) exportCSV() tea.Cmd {
	dir := m.cfg.ExportDir
	return func() tea.Msg {
		res, err := export.ToDir(m.ctx, m.cfg.Store, dir)
		if err != nil {
			return errorMsg{err}
		}
		return actionDoneMsg{status: fmt.Sprintf("Exported %d history and %d forecast records to %s and %s",
			res.HistoryRows, res.ForecastRows, res.HistoryPath, res.ForecastPath)}
	}
}

func (m *model) seed() tea.Cmd {
	rng := m.cfg.Rand
	return func() tea.Msg {
		res, err := m.cfg.Store.SeedSampleData(m.ctx, rng)
		if err != nil {
			return errorMsg{err}
		}
		return actionDoneMsg{status: fmt.Sprintf("Added %d history and %d forecast sample records", res.History, res.Forecast)}
	}
}

func historyRows(entries []store.HistoryEntry) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, table.Row{
			strconv.FormatInt(e.ID, 10),
			e.City,
			orDash(e.Country),
			fmt.Sprintf("%.1f", e.Temperature),
			e.Condition,
			optInt(e.Humidity, "%d%%"),
			optFloat(e.WindSpeed),
			e.SearchedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return rows
}

func forecastRows(entries []store.ForecastEntry) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		date := "-"
		if !e.ForecastDate.IsZero() {
			date = e.ForecastDate.Format("2006-01-02")
		}
		rows = append(rows, table.Row{
			strconv.FormatInt(e.ID, 10),
			e.City,
			e.DayName,
			date,
			fmt.Sprintf("%.1f", e.HighTemp),
			fmt.Sprintf("%.1f", e.LowTemp),
			e.Condition,
			optInt(e.PrecipChance, "%d%%"),
		})
	}
	return rows
}

// setQueryResult swaps the SQL table to the result's shape. Rows are cleared
// first since the table renders old rows against new columns.
func (m *model) setQueryResult(res store.QueryResult) {
	m.queryResult = res
	m.queryTable.SetRows(nil)
	if !res.ReturnsRows {
		m.queryTable.SetColumns(nil)
		return
	}

	cols := make([]table.Column, len(res.Columns))
	for i, name := range res.Columns {
		w := len(name)
		for _, row := range res.Rows {
			w = max(w, len(row[i]))
		}
		cols[i] = table.Column{Title: name, Width: min(max(w, 4), 24)}
	}
	rows := make([]table.Row, len(res.Rows))
	for i, r := range res.Rows {
		rows[i] = table.Row(r)
	}
	m.queryTable.SetColumns(cols)
	m.queryTable.SetRows(rows)
	m.queryTable.GotoTop()
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func optInt(v *int, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func optFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *v)
}
