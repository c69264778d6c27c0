package viewer

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/i474232898/weather-lookup/internal/store"
)

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.mode {
		case confirmMode:
			return m.updateConfirm(msg)
		case filterMode:
			return m.updateFilter(msg)
		}
		if m.active == queryTab {
			return m.updateQuery(msg)
		}
		return m.updateBrowse(msg)

	case historyLoadedMsg:
		m.history = []store.HistoryEntry(msg)
		m.historyTable.SetRows(historyRows(m.history))
		m.clampCursor(&m.historyTable, len(m.history))
		m.err = nil

	case forecastLoadedMsg:
		m.forecast = msg.entries
		m.cities = msg.cities
		m.forecastTable.SetRows(forecastRows(m.forecast))
		m.clampCursor(&m.forecastTable, len(m.forecast))
		m.err = nil

	case queryDoneMsg:
		res := store.QueryResult(msg)
		m.setQueryResult(res)
		m.err = nil
		if res.ReturnsRows {
			m.status = fmt.Sprintf("%d row(s) returned", len(res.Rows))
		} else {
			m.status = fmt.Sprintf("Query executed. %d row(s) affected", res.RowsAffected)
		}

	case actionDoneMsg:
		m.status = msg.status
		m.err = nil
		return m, m.reload()

	case errorMsg:
		m.err = msg.err
		m.status = ""

	case tea.WindowSizeMsg:
		m.width = msg.Width
		h := max(msg.Height-12, 5)
		m.historyTable.SetHeight(h)
		m.forecastTable.SetHeight(h)
		m.queryTable.SetHeight(max(h-2, 3))
	}
	return m, nil
}

func (m *model) clampCursor(t *table.Model, n int) {
	if t.Cursor() >= n {
		t.SetCursor(max(n-1, 0))
	}
}

func (m *model) switchTab(delta int) tea.Cmd {
	m.active = tab((int(m.active) + delta + len(tabNames)) % len(tabNames))
	m.showDetail = false
	m.status = ""
	m.err = nil
	if m.active == queryTab {
		return m.sql.Focus()
	}
	m.sql.Blur()
	return m.reload()
}

func (m *model) confirm(prompt string, cmd tea.Cmd) {
	m.mode = confirmMode
	m.prompt = prompt
	m.pending = cmd
}

func (m *model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd := m.pending
	m.mode = browseMode
	m.prompt = ""
	m.pending = nil
	if s := msg.String(); s == "y" || s == "Y" {
		return m, cmd
	}
	m.status = "Cancelled"
	return m, nil
}

func (m *model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = browseMode
		m.filter.Blur()
		value := strings.TrimSpace(m.filter.Value())
		if m.active == forecastTab {
			m.forecastCity = value
		} else {
			m.historyQuery = value
		}
		return m, m.reload()
	case "esc":
		m.mode = browseMode
		m.filter.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return m, cmd
}

func (m *model) updateQuery(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		return m, m.switchTab(1)
	case "shift+tab":
		return m, m.switchTab(-1)
	case "enter":
		q := strings.TrimSpace(m.sql.Value())
		if q == "" {
			return m, nil
		}
		return m, m.runQuery(q)
	case "esc":
		m.sql.Reset()
		return m, nil
	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.queryTable, cmd = m.queryTable.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.sql, cmd = m.sql.Update(msg)
	return m, cmd
}

func (m *model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "tab":
		return m, m.switchTab(1)
	case "shift+tab":
		return m, m.switchTab(-1)

	case "r":
		return m, m.reload()

	case "/":
		m.mode = filterMode
		if m.active == forecastTab {
			m.filter.Prompt = "City: "
			m.filter.SetValue(m.forecastCity)
		} else {
			m.filter.Prompt = "Filter: "
			m.filter.SetValue(m.historyQuery)
		}
		m.filter.CursorEnd()
		return m, m.filter.Focus()

	case "c":
		if m.active == forecastTab {
			m.forecastCity = nextCity(m.cities, m.forecastCity)
			return m, m.loadForecast()
		}

	case "enter":
		m.showDetail = !m.showDetail
		return m, nil

	case "d":
		return m, m.deleteSelected()

	case "D":
		if e, ok := m.selectedForecast(); m.active == forecastTab && ok {
			city := e.City
			m.confirm(fmt.Sprintf("Delete all forecast records for %s?", city),
				m.mutate("Deleted %d forecast record(s) for "+strings.ReplaceAll(city, "%", "%%"), func(ctx context.Context) (int64, error) {
					return m.cfg.Store.DeleteForecastsForCity(ctx, city)
				}))
		}
		return m, nil

	case "X":
		if m.active == forecastTab {
			m.confirm("Delete ALL forecast records?", m.mutate("Deleted %d forecast record(s)", m.cfg.Store.DeleteAllForecasts))
		} else {
			m.confirm("Delete ALL history records?", m.mutate("Deleted %d history record(s)", m.cfg.Store.DeleteAllHistory))
		}
		return m, nil

	case "e":
		return m, m.exportCSV()

	case "s":
		return m, m.seed()
	}

	var cmd tea.Cmd
	if m.active == forecastTab {
		m.forecastTable, cmd = m.forecastTable.Update(msg)
	} else {
		m.historyTable, cmd = m.historyTable.Update(msg)
	}
	return m, cmd
}

func (m *model) deleteSelected() tea.Cmd {
	switch m.active {
	case historyTab:
		e, ok := m.selectedHistory()
		if !ok {
			return nil
		}
		id := e.ID
		m.confirm(fmt.Sprintf("Delete history record %d (%s)?", id, e.City),
			m.mutate("Deleted %d history record(s)", func(ctx context.Context) (int64, error) {
				return m.cfg.Store.DeleteHistory(ctx, id)
			}))
	case forecastTab:
		e, ok := m.selectedForecast()
		if !ok {
			return nil
		}
		id := e.ID
		m.confirm(fmt.Sprintf("Delete forecast record %d (%s %s)?", id, e.City, e.DayName),
			m.mutate("Deleted %d forecast record(s)", func(ctx context.Context) (int64, error) {
				return m.cfg.Store.DeleteForecast(ctx, id)
			}))
	}
	return nil
}

// nextCity cycles "" (all cities) then each distinct city in turn.
func nextCity(cities []string, current string) string {
	if len(cities) == 0 {
		return ""
	}
	if current == "" {
		return cities[0]
	}
	for i, c := range cities {
		if c == current {
			if i+1 < len(cities) {
				return cities[i+1]
			}
			return ""
		}
	}
	return cities[0]
}
