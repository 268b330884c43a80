// Package postgres reads Transaction Records from PostgreSQL through a
// read-only query.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"openclaw/internal/core"
	"openclaw/internal/source"
)

const (
	DefaultQuery    = "SELECT customer_id, amount_spent, date FROM transactions ORDER BY date"
	DefaultMaxRows  = 10000
	DefaultMaxConns = 10
)

var (
	ErrNotReadOnly      = errors.New("only SELECT/WITH queries are allowed")
	ErrForbiddenKeyword = errors.New("query contains forbidden keywords")
)

var forbiddenKeywords = regexp.MustCompile(`(?i)\b(DROP|DELETE|UPDATE|INSERT|ALTER|TRUNCATE|CREATE|GRANT|REVOKE|EXECUTE|COPY|VACUUM)\b`)

type Config struct {
	DSN      string
	Query    string
	MaxRows  int
	MaxConns int32
}

type Source struct {
	pool    *pgxpool.Pool
	query   string
	maxRows int
}

var _ source.Source = (*Source)(nil)

// ValidateReadOnly accepts statements starting with SELECT or WITH that
// contain none of the data-changing keywords and no second statement.
func ValidateReadOnly(query string) error {
	normalized := strings.ToUpper(strings.TrimSpace(query))
	if !strings.HasPrefix(normalized, "SELECT") && !strings.HasPrefix(normalized, "WITH") {
		return ErrNotReadOnly
	}
	if forbiddenKeywords.MatchString(normalized) {
		return ErrForbiddenKeyword
	}
	if strings.Contains(strings.TrimRight(normalized, "; \t\r\n"), ";") {
		return fmt.Errorf("%w: multiple statements", ErrNotReadOnly)
	}
	return nil
}

// New validates the query and opens a connection pool.
func New(ctx context.Context, cfg Config) (*Source, error) {
	if strings.TrimSpace(cfg.Query) == "" {
		cfg.Query = DefaultQuery
	}
	if err := ValidateReadOnly(cfg.Query); err != nil {
		return nil, err
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = DefaultMaxRows
	}
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = DefaultMaxConns
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres DSN: %w", err)
	}
	poolConfig.MaxConns = cfg.MaxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Source{pool: pool, query: cfg.Query, maxRows: cfg.MaxRows}, nil
}

func (s *Source) Name() string { return "postgres" }

func (s *Source) Close() error {
	s.pool.Close()
	return nil
}

// Load runs the query inside a read-only transaction and returns at most
// MaxRows records.
func (s *Source) Load(ctx context.Context) ([]core.Record, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("begin read-only transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	records := []core.Record{}
	for rows.Next() {
		if len(records) >= s.maxRows {
			break
		}
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		rec := make(core.Record, len(fields))
		for i, f := range fields {
			rec[f.Name] = normalize(values[i])
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}

// normalize maps pgx values onto the types the record coercions understand.
func normalize(v any) any {
	switch x := v.(type) {
	case pgtype.Numeric:
		if !x.Valid || x.NaN {
			return nil
		}
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case [16]byte:
		return uuid.UUID(x).String()
	case []byte:
		return string(x)
	default:
		return v
	}
}
