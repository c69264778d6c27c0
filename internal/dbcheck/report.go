// Package dbcheck inspects a weather database file and prints a diagnostic
// report. Findings are advisory; the file is opened read-only.
package dbcheck

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/i474232898/weather-lookup/internal/store"
)

const (
	sampleRows = 3
	topCities  = 5
)

// TableReport is one table with its expectedness and a few sample rows.
type TableReport struct {
	store.TableInfo
	Expected bool
	Sample   store.QueryResult
}

// Report is everything the checker found out about a database file.
type Report struct {
	Path     string
	Exists   bool
	Size     int64
	Modified time.Time

	Tables  []TableReport
	Missing []string

	// Analysis fields are filled only when both expected tables exist.
	Analyzed  bool
	Stats     store.Statistics
	Integrity store.IntegrityReport

	Indexes []string
	File    store.FileStats
}

// Inspect builds a Report for the database at path. A missing file is not
// an error: the report comes back with Exists false.
func Inspect(ctx context.Context, path string) (Report, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	r := Report{Path: abs}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return r, fmt.Errorf("stat %s: %w", path, err)
	}
	r.Exists = true
	r.Size = info.Size()
	r.Modified = info.ModTime()

	st, err := store.OpenReadOnly(ctx, path, nil)
	if err != nil {
		return r, err
	}
	defer st.Close()

	tables, err := st.DescribeSchema(ctx)
	if err != nil {
		return r, err
	}
	present := make([]string, 0, len(tables))
	for _, t := range tables {
		tr := TableReport{TableInfo: t, Expected: slices.Contains(store.ExpectedTables, t.Name)}
		if t.RowCount > 0 {
			if tr.Sample, err = st.SampleRows(ctx, t.Name, sampleRows); err != nil {
				return r, err
			}
		}
		r.Tables = append(r.Tables, tr)
		r.Indexes = append(r.Indexes, t.Indexes...)
		present = append(present, t.Name)
	}
	for _, name := range store.ExpectedTables {
		if !slices.Contains(present, name) {
			r.Missing = append(r.Missing, name)
		}
	}

	if len(r.Missing) == 0 {
		if r.Stats, err = st.Statistics(ctx, topCities); err != nil {
			return r, err
		}
		if r.Integrity, err = st.CheckIntegrity(ctx); err != nil {
			return r, err
		}
		r.Analyzed = true
	}

	if r.File, err = st.FileStats(ctx); err != nil {
		return r, err
	}
	return r, nil
}

// Create makes a new database with both tables and indexes at path.
func Create(ctx context.Context, path string) error {
	st, err := store.Open(ctx, path, nil, nil)
	if err != nil {
		return err
	}
	return st.Close()
}
