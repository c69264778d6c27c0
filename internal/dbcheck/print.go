package dbcheck

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/i474232898/weather-lookup/internal/store"
)

var (
	okColor    = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
	errColor   = color.New(color.FgRed, color.Bold)
	titleColor = color.New(color.FgCyan, color.Bold)
)

const rule = "============================================================"

// Write renders r in the checker's sectioned text layout.
func Write(w io.Writer, r Report) {
	if !r.Exists {
		errColor.Fprintln(w, "DATABASE FILE NOT FOUND")
		fmt.Fprintf(w, "   Expected location: %s\n", r.Path)
		fmt.Fprintln(w, "\n   Run weather-lookup and search for a few cities, or create it below.")
		return
	}

	okColor.Fprintln(w, "DATABASE FILE FOUND")
	fmt.Fprintf(w, "   Path: %s\n", r.Path)
	fmt.Fprintf(w, "   Size: %d bytes (%.1f KB)\n", r.Size, float64(r.Size)/1024)
	fmt.Fprintf(w, "   Last Modified: %s\n", r.Modified.Format("2006-01-02 15:04:05"))

	titleColor.Fprintf(w, "\nTABLES FOUND: %d\n", len(r.Tables))
	fmt.Fprintln(w, strings.Repeat("-", 40))
	for _, t := range r.Tables {
		writeTable(w, t)
	}

	if len(r.Missing) > 0 {
		errColor.Fprintln(w, "MISSING EXPECTED TABLES:")
		for _, name := range r.Missing {
			fmt.Fprintf(w, "   - %s\n", name)
		}
		fmt.Fprintln(w)
	}

	if r.Analyzed {
		writeHistoryAnalysis(w, r.Stats)
		writeForecastAnalysis(w, r.Stats)
		writeIntegrity(w, r.Integrity)
	}

	titleColor.Fprintln(w, "PERFORMANCE ANALYSIS:")
	fmt.Fprintln(w, strings.Repeat("-", 25))
	if len(r.Indexes) == 0 {
		warnColor.Fprintln(w, "   No custom indexes found (may affect query performance)")
	} else {
		fmt.Fprintf(w, "   Custom Indexes: %d\n", len(r.Indexes))
		for _, name := range r.Indexes {
			fmt.Fprintf(w, "      - %s\n", name)
		}
	}
	fmt.Fprintf(w, "   Page Size: %d bytes\n", r.File.PageSize)
	fmt.Fprintf(w, "   Page Count: %d\n", r.File.PageCount)
	fmt.Fprintf(w, "   Database Size: %d bytes\n", r.File.Size())
}

func writeTable(w io.Writer, t TableReport) {
	fmt.Fprintf(w, "Table: %s\n", t.Name)
	if t.Expected {
		okColor.Fprintln(w, "   Expected table")
	} else {
		warnColor.Fprintln(w, "   Unexpected table")
	}

	fmt.Fprintf(w, "   Columns: %d\n", len(t.Columns))
	for _, c := range t.Columns {
		var extra []string
		if c.PrimaryKey {
			extra = append(extra, "PRIMARY KEY")
		}
		if c.NotNull {
			extra = append(extra, "NOT NULL")
		}
		if c.Default != nil {
			extra = append(extra, "DEFAULT "+*c.Default)
		}
		line := fmt.Sprintf("      - %s: %s", c.Name, c.Type)
		if len(extra) > 0 {
			line += " (" + strings.Join(extra, ", ") + ")"
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintf(w, "   Records: %d\n", t.RowCount)
	if len(t.Sample.Rows) > 0 {
		fmt.Fprintf(w, "   Sample data (first %d records):\n", len(t.Sample.Rows))
		for i, row := range t.Sample.Rows {
			fmt.Fprintf(w, "      %d. (%s)\n", i+1, strings.Join(row, ", "))
		}
	}
	fmt.Fprintln(w)
}

func writeHistoryAnalysis(w io.Writer, st store.Statistics) {
	titleColor.Fprintln(w, "WEATHER HISTORY ANALYSIS:")
	fmt.Fprintln(w, strings.Repeat("-", 30))
	fmt.Fprintf(w, "   Total Records: %d\n", st.HistoryTotal)
	if st.HistoryTotal > 0 {
		fmt.Fprintf(w, "   Unique Cities: %d\n", st.DistinctCities)
		fmt.Fprintf(w, "   Date Range: %s to %s\n",
			st.FirstSearch.Format("2006-01-02 15:04:05"), st.LastSearch.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "   Temperature Range: %.1f°C to %.1f°C (Avg: %.1f°C)\n", st.MinTemp, st.MaxTemp, st.AvgTemp)
		fmt.Fprintf(w, "   Top %d Searched Cities:\n", len(st.TopCities))
		for i, c := range st.TopCities {
			fmt.Fprintf(w, "      %d. %s: %d searches\n", i+1, c.City, c.Count)
		}
	}
	fmt.Fprintln(w)
}

func writeForecastAnalysis(w io.Writer, st store.Statistics) {
	titleColor.Fprintln(w, "WEATHER FORECAST ANALYSIS:")
	fmt.Fprintln(w, strings.Repeat("-", 30))
	fmt.Fprintf(w, "   Total Forecast Records: %d\n", st.ForecastTotal)
	if st.ForecastTotal > 0 {
		fmt.Fprintf(w, "   Cities with Forecasts: %d\n", st.ForecastCities)
		fmt.Fprintf(w, "   Temperature Range: %.1f°C to %.1f°C\n", st.MinLow, st.MaxHigh)
		fmt.Fprintf(w, "   Average High: %.1f°C, Average Low: %.1f°C\n", st.AvgHigh, st.AvgLow)
		fmt.Fprintln(w, "   Forecasts by City:")
		for _, c := range st.ForecastPerCity {
			fmt.Fprintf(w, "      - %s: %d days\n", c.City, c.Count)
		}
	}
	fmt.Fprintln(w)
}

func writeIntegrity(w io.Writer, ir store.IntegrityReport) {
	titleColor.Fprintln(w, "DATABASE INTEGRITY CHECKS:")
	fmt.Fprintln(w, strings.Repeat("-", 30))

	if ir.ForeignKeyViolations > 0 {
		errColor.Fprintf(w, "   Foreign key violations found: %d\n", ir.ForeignKeyViolations)
	} else {
		okColor.Fprintln(w, "   No foreign key violations")
	}

	if n := len(ir.Duplicates); n > 0 {
		warnColor.Fprintf(w, "   Found %d potential duplicate records in weather_history\n", n)
		for _, d := range ir.Duplicates {
			fmt.Fprintf(w, "      - %s %.1f°C %s at %s (x%d)\n", d.City, d.Temperature, d.Condition, d.SearchedAt, d.Count)
		}
	} else {
		okColor.Fprintln(w, "   No duplicate records found in weather_history")
	}

	if ir.NullCritical > 0 {
		warnColor.Fprintf(w, "   Found %d records with NULL city or temperature\n", ir.NullCritical)
	} else {
		okColor.Fprintln(w, "   No NULL values in critical fields")
	}
	fmt.Fprintln(w)
}

// Run prints the report for path. When the file does not exist it asks on
// in whether to create it, and if so creates it and checks again.
func Run(ctx context.Context, path string, in io.Reader, out io.Writer) error {
	titleColor.Fprintln(out, "WEATHER DATABASE CHECKER")
	fmt.Fprintln(out, rule)
	fmt.Fprintf(out, "Checking database: %s\n", path)
	fmt.Fprintln(out, rule)

	r, err := Inspect(ctx, path)
	if err != nil {
		return err
	}
	Write(out, r)
	if r.Exists {
		fmt.Fprintln(out, "\n"+rule)
		okColor.Fprintln(out, "DATABASE CHECK COMPLETED")
		fmt.Fprintln(out, rule)
		return nil
	}

	fmt.Fprint(out, "\nDatabase not found. Would you like to create it now? (y/n): ")
	answer, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
	default:
		return nil
	}

	if err := Create(ctx, path); err != nil {
		errColor.Fprintf(out, "Error creating database: %v\n", err)
		return err
	}
	okColor.Fprintln(out, "Database created successfully")
	fmt.Fprintf(out, "Tables created: %s\n", strings.Join(store.ExpectedTables, ", "))

	fmt.Fprintln(out, "\n"+rule)
	fmt.Fprintln(out, "Re-checking the newly created database...")
	if r, err = Inspect(ctx, path); err != nil {
		return err
	}
	Write(out, r)
	return nil
}
