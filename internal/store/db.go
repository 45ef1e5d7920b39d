package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SalesDB is a read-only handle on a SQLite database holding sales rows
type SalesDB struct {
	db   *sql.DB
	path string
}

// OpenSalesDB opens dbPath read-only. The file must already exist; callers check that
// first since the driver would otherwise create an empty database.
func OpenSalesDB(ctx context.Context, dbPath string) (*SalesDB, error) {
	db, err := sql.Open("sqlite3", readOnlyDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	return &SalesDB{db: db, path: dbPath}, nil
}

// Close releases the connection pool
func (s *SalesDB) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ReadTable returns the column names of table and every row rendered as text, in rowid
// order. NULL becomes the empty string.
func (s *SalesDB) ReadTable(ctx context.Context, table string) ([]string, [][]string, error) {
	query := fmt.Sprintf(`SELECT * FROM %s`, quoteIdent(table))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("query table %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("read columns of %s: %w", table, err)
	}

	var out [][]string
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("scan row of %s: %w", table, err)
		}

		row := make([]string, len(columns))
		for i, v := range values {
			row[i] = cellText(v)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate rows of %s: %w", table, err)
	}

	return columns, out, nil
}

func cellText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// uriPathEscaper escapes the characters SQLite treats specially in a URI path
var uriPathEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// readOnlyDSN builds a file: URI opening dbPath read-only
func readOnlyDSN(dbPath string) string {
	p := filepath.ToSlash(dbPath)
	if strings.HasPrefix(p, "//") {
		p = "/" + strings.TrimLeft(p, "/")
	}
	return "file:" + uriPathEscaper.Replace(p) + "?mode=ro"
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
