package factory

import (
	"context"
	"errors"
	"fmt"

	applog "openclaw/internal/log"
	"openclaw/internal/source"
	"openclaw/internal/source/memory"
	"openclaw/internal/source/postgres"
	"openclaw/internal/source/sheets"
	"openclaw/internal/source/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new source factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentSource),
	}
}

// CreateSource implements Factory.CreateSource. Several types are combined
// into a source.Multi that loads them in the configured order.
func (f *DefaultFactory) CreateSource(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if len(config.Types) == 1 {
		return f.create(ctx, config.Types[0], config)
	}

	var (
		sources  []source.Source
		cleanups []source.CleanupFunc
	)
	closeAll := func() error {
		var errs []error
		for i := len(cleanups) - 1; i >= 0; i-- {
			errs = append(errs, cleanups[i]())
		}
		return errors.Join(errs...)
	}

	for _, t := range config.Types {
		res, err := f.create(ctx, t, config)
		if err != nil {
			closeAll()
			return nil, err
		}
		sources = append(sources, res.Source)
		if res.Cleanup != nil {
			cleanups = append(cleanups, res.Cleanup)
		}
	}

	multi := source.NewMulti(sources...)
	f.logger.Info("Combined record sources", applog.FieldSource, multi.Name())
	return &Result{Source: multi, Cleanup: closeAll}, nil
}

func (f *DefaultFactory) create(ctx context.Context, t Type, config Config) (*Result, error) {
	switch t {
	case MemorySource:
		return f.createMemorySource(config)
	case SQLiteSource:
		return f.createSQLiteSource(config)
	case PostgresSource:
		return f.createPostgresSource(ctx, config)
	case SheetsSource:
		return f.createSheetsSource(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported source type: %s", t)
	}
}

func (f *DefaultFactory) createMemorySource(config Config) (*Result, error) {
	store, err := memory.NewFromFile(config.DataFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory source: %w", err)
	}

	f.logger.Info("Initialized memory source", "data_file", config.DataFile)

	return &Result{Source: store}, nil
}

func (f *DefaultFactory) createSQLiteSource(config Config) (*Result, error) {
	src, err := sqlite.Open(config.SQLiteDBPath, config.SQLiteQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite source: %w", err)
	}

	f.logger.Info("Initialized SQLite source", "db_path", config.SQLiteDBPath)

	return &Result{Source: src, Cleanup: src.Close}, nil
}

func (f *DefaultFactory) createPostgresSource(ctx context.Context, config Config) (*Result, error) {
	src, err := postgres.New(ctx, postgres.Config{
		DSN:      config.PostgresDSN,
		Query:    config.PostgresQuery,
		MaxRows:  config.PostgresMaxRows,
		MaxConns: config.PostgresMaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Postgres source: %w", err)
	}

	f.logger.Info("Initialized Postgres source", "max_rows", config.PostgresMaxRows)

	return &Result{Source: src, Cleanup: src.Close}, nil
}

func (f *DefaultFactory) createSheetsSource(ctx context.Context, config Config) (*Result, error) {
	cli, err := sheets.New(ctx, sheets.Config{
		SpreadsheetID:      config.GoogleSpreadsheetID,
		SheetName:          config.GoogleSheetName,
		ServiceAccountJSON: config.GoogleServiceAccountJSON,
		ServiceAccountFile: config.GoogleServiceAccountFile,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets source: %w", err)
	}

	f.logger.Info("Initialized Google Sheets source", "sheet", config.GoogleSheetName)

	return &Result{Source: cli}, nil
}
