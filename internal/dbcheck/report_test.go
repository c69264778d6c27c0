package dbcheck

import (
	"bytes"
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-lookup/internal/store"
)

func init() {
	color.NoColor = true
}

func TestInspect_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.db")

	r, err := Inspect(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, r.Exists)
	assert.Empty(t, r.Tables)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "inspect must not create the file")
}

func TestInspect_SeededDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "weather.db")
	st, err := store.Open(ctx, path, nil, nil)
	require.NoError(t, err)
	_, err = st.SeedSampleData(ctx, rand.New(rand.NewPCG(1, 1)))
	require.NoError(t, err)
	require.NoError(t, st.Close())

	r, err := Inspect(ctx, path)
	require.NoError(t, err)
	require.True(t, r.Exists)
	assert.Positive(t, r.Size)
	assert.Empty(t, r.Missing)
	require.True(t, r.Analyzed)
	require.Len(t, r.Tables, 2)

	for _, tbl := range r.Tables {
		assert.True(t, tbl.Expected, tbl.Name)
		assert.Len(t, tbl.Sample.Rows, sampleRows, tbl.Name)
	}
	assert.Equal(t, 6, r.Stats.HistoryTotal)
	assert.Equal(t, 28, r.Stats.ForecastTotal)
	assert.LessOrEqual(t, len(r.Stats.TopCities), topCities)
	assert.True(t, r.Integrity.Clean())
	assert.Len(t, r.Indexes, 4)
	assert.Positive(t, r.File.Size())

	var buf bytes.Buffer
	Write(&buf, r)
	out := buf.String()
	for _, want := range []string{
		"DATABASE FILE FOUND",
		"TABLES FOUND: 2",
		"Table: weather_history",
		"Expected table",
		"id: INTEGER (PRIMARY KEY)",
		"Records: 28",
		"WEATHER HISTORY ANALYSIS:",
		"Total Records: 6",
		"Total Forecast Records: 28",
		"Cities with Forecasts: 4",
		"No duplicate records found in weather_history",
		"Custom Indexes: 4",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "MISSING EXPECTED TABLES")
}

func TestInspect_UnexpectedAndMissingTables(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "other.db")
	st, err := store.Open(ctx, path, nil, nil)
	require.NoError(t, err)
	_, err = st.RunQuery(ctx, "DROP TABLE weather_forecast")
	require.NoError(t, err)
	_, err = st.RunQuery(ctx, "CREATE TABLE notes (body TEXT)")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	r, err := Inspect(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, []string{store.ForecastTable}, r.Missing)
	assert.False(t, r.Analyzed)

	var buf bytes.Buffer
	Write(&buf, r)
	out := buf.String()
	assert.Contains(t, out, "Unexpected table")
	assert.Contains(t, out, "MISSING EXPECTED TABLES:")
	assert.NotContains(t, out, "WEATHER HISTORY ANALYSIS")
}

func TestRun_DeclineCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.db")
	var out bytes.Buffer

	err := Run(context.Background(), path, strings.NewReader("n\n"), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "DATABASE FILE NOT FOUND")
	assert.Contains(t, out.String(), "(y/n)")
	assert.NotContains(t, out.String(), "created successfully")

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_AcceptCreateThenRecheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.db")
	var out bytes.Buffer

	err := Run(context.Background(), path, strings.NewReader("Y\n"), &out)
	require.NoError(t, err)
	text := out.String()
	assert.Contains(t, text, "Database created successfully")
	assert.Contains(t, text, "Re-checking the newly created database...")
	assert.Contains(t, text, "TABLES FOUND: 2")
	assert.Contains(t, text, "Total Records: 0")

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestRun_ExistingDatabaseCompletes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.db")
	require.NoError(t, Create(context.Background(), path))

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), path, strings.NewReader(""), &out))
	assert.Contains(t, out.String(), "DATABASE CHECK COMPLETED")
	assert.NotContains(t, out.String(), "(y/n)")
}
