package viewer

import "github.com/i474232898/weather-lookup/internal/store"

type tab int

const (
	historyTab tab = iota
	forecastTab
	queryTab
)

var tabNames = []string{"History", "Forecasts", "SQL"}

func (t tab) String() string { return tabNames[t] }

type inputMode int

const (
	browseMode inputMode = iota
	filterMode
	confirmMode
)

type historyLoadedMsg []store.HistoryEntry

type forecastLoadedMsg struct {
	entries []store.ForecastEntry
	cities  []string
}

type queryDoneMsg store.QueryResult

// actionDoneMsg reports a finished mutation; the current tab is reloaded.
type actionDoneMsg struct{ status string }

type errorMsg struct{ err error }
