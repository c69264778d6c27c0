package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Column describes one table column as reported by PRAGMA table_info.
type Column struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	NotNull    bool    `json:"notNull"`
	Default    *string `json:"default,omitempty"`
	PrimaryKey bool    `json:"primaryKey"`
}

// TableInfo is the diagnostic description of one table.
type TableInfo struct {
	Name     string   `json:"name"`
	Columns  []Column `json:"columns"`
	RowCount int      `json:"rowCount"`
	Indexes  []string `json:"indexes"`
}

// quoteIdent quotes a table name for statements that cannot take parameters.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Tables lists user tables, excluding SQLite's internal ones.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`)
	if err != nil {
		return nil, opErr("tables", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, opErr("tables", err)
		}
		names = append(names, n)
	}
	return names, opErr("tables", rows.Err())
}

// DescribeSchema returns columns, row count and explicit indexes for every
// user table. It is meant for display only.
func (s *Store) DescribeSchema(ctx context.Context) ([]TableInfo, error) {
	names, err := s.Tables(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]TableInfo, 0, len(names))
	for _, name := range names {
		info, err := s.describeTable(ctx, name)
		if err != nil {
			return nil, opErr("describe schema", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (s *Store) describeTable(ctx context.Context, name string) (TableInfo, error) {
	info := TableInfo{Name: name}

	rows, err := s.db.QueryContext(ctx, `PRAGMA table_info(`+quoteIdent(name)+`)`)
	if err != nil {
		return info, err
	}
	for rows.Next() {
		var (
			cid     int
			col     Column
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &dflt, &pk); err != nil {
			rows.Close()
			return info, err
		}
		col.NotNull = notNull != 0
		col.PrimaryKey = pk != 0
		if dflt.Valid {
			col.Default = &dflt.String
		}
		info.Columns = append(info.Columns, col)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return info, err
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+quoteIdent(name)).Scan(&info.RowCount); err != nil {
		return info, err
	}

	info.Indexes, err = s.indexNames(ctx, name)
	return info, err
}

func (s *Store) indexNames(ctx context.Context, table string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'index' AND tbl_name = ? AND sql IS NOT NULL
		ORDER BY name`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// SampleRows returns up to n rows of table in storage order.
func (s *Store) SampleRows(ctx context.Context, table string, n int) (QueryResult, error) {
	return s.RunQuery(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT %d", quoteIdent(table), n))
}

// DuplicateGroup is a set of history rows sharing city, temperature,
// condition and searched_at.
type DuplicateGroup struct {
	City        string  `json:"city"`
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
	SearchedAt  string  `json:"searchedAt"`
	Count       int     `json:"count"`
}

// IntegrityReport collects advisory findings. Nothing is corrected.
type IntegrityReport struct {
	Duplicates           []DuplicateGroup `json:"duplicates"`
	NullCritical         int              `json:"nullCritical"`
	ForeignKeyViolations int              `json:"foreignKeyViolations"`
}

// Clean reports whether no finding was recorded.
func (r IntegrityReport) Clean() bool {
	return len(r.Duplicates) == 0 && r.NullCritical == 0 && r.ForeignKeyViolations == 0
}

// CheckIntegrity looks for duplicate history rows, history rows missing city
// or temperature, and foreign key violations.
func (s *Store) CheckIntegrity(ctx context.Context) (IntegrityReport, error) {
	const op = "check integrity"
	report := IntegrityReport{Duplicates: make([]DuplicateGroup, 0)}

	fkRows, err := s.db.QueryContext(ctx, `PRAGMA foreign_key_check`)
	if err != nil {
		return report, opErr(op, err)
	}
	for fkRows.Next() {
		report.ForeignKeyViolations++
	}
	fkRows.Close()
	if err := fkRows.Err(); err != nil {
		return report, opErr(op, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT city, temperature, condition, searched_at, COUNT(*)
		FROM weather_history
		GROUP BY city, temperature, condition, searched_at
		HAVING COUNT(*) > 1
		ORDER BY COUNT(*) DESC, city`)
	if err != nil {
		return report, opErr(op, err)
	}
	for rows.Next() {
		var (
			g  DuplicateGroup
			at any
		)
		if err := rows.Scan(&g.City, &g.Temperature, &g.Condition, &at, &g.Count); err != nil {
			rows.Close()
			return report, opErr(op, err)
		}
		g.SearchedAt = FormatValue(at)
		report.Duplicates = append(report.Duplicates, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return report, opErr(op, err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM weather_history
		WHERE city IS NULL OR temperature IS NULL`).Scan(&report.NullCritical)
	if err != nil {
		return report, opErr(op, err)
	}
	return report, nil
}

// FileStats are SQLite page figures for the open database.
type FileStats struct {
	PageSize  int64 `json:"pageSize"`
	PageCount int64 `json:"pageCount"`
}

// Size is the database size implied by the page figures.
func (f FileStats) Size() int64 {
	return f.PageSize * f.PageCount
}

func (s *Store) FileStats(ctx context.Context) (FileStats, error) {
	var fs FileStats
	if err := s.db.QueryRowContext(ctx, `PRAGMA page_size`).Scan(&fs.PageSize); err != nil {
		return fs, opErr("file stats", err)
	}
	if err := s.db.QueryRowContext(ctx, `PRAGMA page_count`).Scan(&fs.PageCount); err != nil {
		return fs, opErr("file stats", err)
	}
	return fs, nil
}

// QueryResult is the outcome of RunQuery. Rows-returning statements fill
// Columns and Rows; anything else fills RowsAffected.
type QueryResult struct {
	Columns      []string   `json:"columns,omitempty"`
	Rows         [][]string `json:"rows,omitempty"`
	RowsAffected int64      `json:"rowsAffected"`
	ReturnsRows  bool       `json:"returnsRows"`
}

var rowKeywords = []string{"SELECT", "PRAGMA", "WITH", "EXPLAIN", "VALUES"}

func returnsRows(query string) bool {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return false
	}
	first := strings.ToUpper(fields[0])
	for _, kw := range rowKeywords {
		if first == kw {
			return true
		}
	}
	return false
}

// RunQuery executes an arbitrary SQL statement. Values are rendered as text.
func (s *Store) RunQuery(ctx context.Context, query string) (QueryResult, error) {
	const op = "run query"
	query = strings.TrimSpace(query)
	if query == "" {
		return QueryResult{}, opErr(op, fmt.Errorf("empty query"))
	}

	if !returnsRows(query) {
		n, err := s.exec(ctx, op, query)
		return QueryResult{RowsAffected: n}, err
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return QueryResult{}, opErr(op, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return QueryResult{}, opErr(op, err)
	}
	res := QueryResult{Columns: cols, Rows: make([][]string, 0), ReturnsRows: true}

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return QueryResult{}, opErr(op, err)
		}
		row := make([]string, len(cols))
		for i, v := range values {
			row[i] = FormatValue(v)
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return QueryResult{}, opErr(op, err)
	}
	return res, nil
}

// FormatValue renders a raw column value for display. NULL becomes "NULL".
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(dateLayout)
		}
		return x.Format(timestampLayout)
	default:
		return fmt.Sprint(x)
	}
}
