// Package sqlite reads Transaction Records from a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"openclaw/internal/core"
	"openclaw/internal/source"

	_ "modernc.org/sqlite"
)

// DefaultQuery selects the columns the metrics read, oldest first.
const DefaultQuery = "SELECT customer_id, amount_spent, date FROM transactions ORDER BY date, id"

type Source struct {
	db    *sql.DB
	path  string
	query string
}

var _ source.Source = (*Source)(nil)

// Open creates the database directory if needed, opens the database and runs
// the embedded migrations. An empty query selects DefaultQuery.
func Open(dbPath, query string) (*Source, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrateUp(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if strings.TrimSpace(query) == "" {
		query = DefaultQuery
	}
	return &Source{db: db, path: dbPath, query: query}, nil
}

func (s *Source) Name() string { return "sqlite:" + filepath.Base(s.path) }

func (s *Source) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Insert stores one transaction. A nil customer id is stored as NULL.
func (s *Source) Insert(ctx context.Context, customerID any, amount float64, date string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO transactions (customer_id, amount_spent, date) VALUES (?, ?, ?)",
		customerID, amount, date)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	return res.LastInsertId()
}

// Load runs the configured query. Every result column becomes a record key;
// NULL columns are kept as nil values.
func (s *Source) Load(ctx context.Context) ([]core.Record, error) {
	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	records := []core.Record{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		rec := make(core.Record, len(cols))
		for i, col := range cols {
			rec[col] = normalize(values[i])
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}

func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
