package factory

import (
	"context"

	"openclaw/internal/source"
)

// Result contains the source instance and optional cleanup function
type Result struct {
	Source  source.Source
	Cleanup source.CleanupFunc
}

// Close runs the cleanup function if there is one.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates sources based on configuration
type Factory interface {
	CreateSource(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for source creation
type Config struct {
	// One or more types; several types produce a source.Multi
	Types []Type

	// Memory specific
	DataFile string

	// SQLite specific
	SQLiteDBPath string
	SQLiteQuery  string

	// Postgres specific
	PostgresDSN      string
	PostgresQuery    string
	PostgresMaxRows  int
	PostgresMaxConns int32

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// Type represents the type of record source
type Type string

const (
	MemorySource   Type = "memory"
	SQLiteSource   Type = "sqlite"
	PostgresSource Type = "postgres"
	SheetsSource   Type = "sheets"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the source type is valid
func (t Type) IsValid() bool {
	switch t {
	case MemorySource, SQLiteSource, PostgresSource, SheetsSource:
		return true
	default:
		return false
	}
}
