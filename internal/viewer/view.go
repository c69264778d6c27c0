package viewer

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"

	"github.com/i474232898/weather-lookup/internal/store"
)

func (m *model) selectedHistory() (store.HistoryEntry, bool) {
	i := m.historyTable.Cursor()
	if i < 0 || i >= len(m.history) {
		return store.HistoryEntry{}, false
	}
	return m.history[i], true
}

func (m *model) selectedForecast() (store.ForecastEntry, bool) {
	i := m.forecastTable.Cursor()
	if i < 0 || i >= len(m.forecast) {
		return store.ForecastEntry{}, false
	}
	return m.forecast[i], true
}

func (m *model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Weather Database Viewer  " + dimStyle.Render(m.cfg.Path)))
	b.WriteString("\n")

	for i, name := range tabNames {
		if tab(i) == m.active {
			b.WriteString(activeTabStyle.Render(name))
		} else {
			b.WriteString(tabStyle.Render(name))
		}
	}
	b.WriteString("\n\n")

	switch m.active {
	case historyTab:
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d record(s)  filter: %s", len(m.history), orAll(m.historyQuery))))
		b.WriteString("\n")
		b.WriteString(m.historyTable.View())
		if e, ok := m.selectedHistory(); ok && m.showDetail {
			b.WriteString("\n")
			b.WriteString(detailStyle.Render(historyDetail(e)))
		}
	case forecastTab:
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d record(s)  city: %s  cities: %s",
			len(m.forecast), orAll(m.forecastCity), strings.Join(m.cities, ", "))))
		b.WriteString("\n")
		b.WriteString(m.forecastTable.View())
		if e, ok := m.selectedForecast(); ok && m.showDetail {
			b.WriteString("\n")
			b.WriteString(detailStyle.Render(forecastDetail(e)))
		}
	case queryTab:
		b.WriteString(m.sql.View())
		b.WriteString("\n\n")
		if m.queryResult.ReturnsRows {
			b.WriteString(m.queryTable.View())
		}
	}
	b.WriteString("\n")

	switch {
	case m.mode == filterMode:
		b.WriteString(m.filter.View())
	case m.mode == confirmMode:
		b.WriteString(confirmStyle.Render(m.prompt + " (y/n)"))
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	case m.status != "":
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")

	b.WriteString(helpStyle.Render(m.help()))
	return b.String()
}

func (m *model) help() string {
	switch m.active {
	case queryTab:
		return "enter: run • esc: clear • ↑/↓: scroll • tab: switch view • ctrl+c: quit"
	case forecastTab:
		return "↑/↓: navigate • /: city • c: next city • enter: details • d: delete • D: delete city • X: clear all • e: export • s: sample data • r: refresh • tab: switch view • q: quit"
	default:
		return "↑/↓: navigate • /: filter • enter: details • d: delete • X: clear all • e: export • s: sample data • r: refresh • tab: switch view • q: quit"
	}
}

func orAll(s string) string {
	if s == "" {
		return "(all)"
	}
	return s
}

func historyDetail(e store.HistoryEntry) string {
	lines := []string{
		fmt.Sprintf("ID: %d", e.ID),
		fmt.Sprintf("City: %s", e.City),
		fmt.Sprintf("Country: %s", orDash(e.Country)),
		fmt.Sprintf("Temperature: %.1f°C", e.Temperature),
		fmt.Sprintf("Condition: %s", e.Condition),
		fmt.Sprintf("Description: %s", orDash(e.Description)),
		fmt.Sprintf("Humidity: %s", optInt(e.Humidity, "%d%%")),
		fmt.Sprintf("Wind Speed: %s km/h", optFloat(e.WindSpeed)),
		fmt.Sprintf("Pressure: %s", optInt(e.Pressure, "%d hPa")),
		fmt.Sprintf("Feels Like: %s°C", optFloat(e.FeelsLike)),
		fmt.Sprintf("Visibility: %s", optInt(e.Visibility, "%d km")),
		fmt.Sprintf("UV Index: %s", optFloat(e.UVIndex)),
		fmt.Sprintf("Searched At: %s", e.SearchedAt.Format("2006-01-02 15:04:05")),
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func forecastDetail(e store.ForecastEntry) string {
	date := "-"
	if !e.ForecastDate.IsZero() {
		date = e.ForecastDate.Format("2006-01-02")
	}
	lines := []string{
		fmt.Sprintf("ID: %d", e.ID),
		fmt.Sprintf("City: %s", e.City),
		fmt.Sprintf("Day: %s (%s)", e.DayName, date),
		fmt.Sprintf("High / Low: %.1f°C / %.1f°C", e.HighTemp, e.LowTemp),
		fmt.Sprintf("Condition: %s", e.Condition),
		fmt.Sprintf("Description: %s", orDash(e.Description)),
		fmt.Sprintf("Humidity: %s", optInt(e.Humidity, "%d%%")),
		fmt.Sprintf("Wind Speed: %s km/h", optFloat(e.WindSpeed)),
		fmt.Sprintf("Precipitation Chance: %s", optInt(e.PrecipChance, "%d%%")),
		fmt.Sprintf("Created At: %s", e.CreatedAt.Format("2006-01-02 15:04:05")),
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// PrintQuery writes a query result as a bordered table, or the affected row
// count for statements that return no rows.
func PrintQuery(w io.Writer, res store.QueryResult) {
	if !res.ReturnsRows {
		fmt.Fprintf(w, "Query executed. %d row(s) affected\n", res.RowsAffected)
		return
	}
	t := lgtable.New().
		Border(lipgloss.NormalBorder()).
		Headers(res.Columns...).
		Rows(res.Rows...)
	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "%d row(s)\n", len(res.Rows))
}
