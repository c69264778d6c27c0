package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/dbcheck"
)

func main() {
	dbPath := flag.String("db", "", "database file to check (default: WEATHER_DB_PATH)")
	flag.Parse()

	path := *dbPath
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
		path = cfg.DBPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := dbcheck.Run(ctx, path, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error checking database: %v\n", err)
		os.Exit(1)
	}
}
