package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/export"
	"github.com/i474232898/weather-lookup/internal/observability"
	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/viewer"
)

func main() {
	dbPath := flag.String("db", "", "database file (default: WEATHER_DB_PATH)")
	query := flag.String("query", "", "run one SQL statement, print the result and exit")
	exportDir := flag.String("export", "", "write both tables as CSV into this directory and exit")
	seed := flag.Bool("seed", false, "add sample history and forecast records and exit")
	flag.Parse()

	if err := run(*dbPath, *query, *exportDir, *seed); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(dbPath, query, exportDir string, seed bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if dbPath == "" {
		dbPath = cfg.DBPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The TUI owns the terminal, so store logs are discarded.
	st, err := store.Open(ctx, dbPath, clockwork.NewRealClock(), observability.NopLogger())
	if err != nil {
		return err
	}
	defer st.Close()

	switch {
	case query != "":
		res, err := st.RunQuery(ctx, query)
		if err != nil {
			return err
		}
		viewer.PrintQuery(os.Stdout, res)
	case exportDir != "":
		res, err := export.ToDir(ctx, st, exportDir)
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d history records to %s\n", res.HistoryRows, res.HistoryPath)
		fmt.Printf("Exported %d forecast records to %s\n", res.ForecastRows, res.ForecastPath)
	case seed:
		res, err := st.SeedSampleData(ctx, nil)
		if err != nil {
			return err
		}
		fmt.Printf("Added %d history and %d forecast sample records\n", res.History, res.Forecast)
	default:
		return viewer.Run(ctx, viewer.Config{Store: st, Path: st.Path()})
	}
	return nil
}
