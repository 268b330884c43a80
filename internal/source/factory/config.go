package factory

import (
	"errors"
	"fmt"

	"openclaw/internal/config"
)

// FromAppConfig converts the application config to source config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	var types []Type
	for _, name := range appConfig.SourceTypes() {
		t := Type(name)
		if !t.IsValid() {
			return Config{}, fmt.Errorf("invalid source type in config: %s", name)
		}
		types = append(types, t)
	}

	return Config{
		Types:    types,
		DataFile: appConfig.DataFile,

		SQLiteDBPath: appConfig.SQLiteDBPath,
		SQLiteQuery:  appConfig.SQLiteQuery,

		PostgresDSN:      appConfig.PostgresDSN,
		PostgresQuery:    appConfig.PostgresQuery,
		PostgresMaxRows:  appConfig.PostgresMaxRows,
		PostgresMaxConns: int32(appConfig.PostgresMaxConns),

		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleSheetName,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
	}, nil
}

// Validate validates the source configuration
func (c Config) Validate() error {
	if len(c.Types) == 0 {
		return errors.New("at least one source type is required")
	}

	for _, t := range c.Types {
		if !t.IsValid() {
			return fmt.Errorf("invalid source type: %s", t)
		}

		switch t {
		case MemorySource:
			if c.DataFile == "" {
				return fmt.Errorf("data file is required for memory source")
			}
		case SQLiteSource:
			if c.SQLiteDBPath == "" {
				return fmt.Errorf("SQLite database path is required for sqlite source")
			}
		case PostgresSource:
			if c.PostgresDSN == "" {
				return fmt.Errorf("Postgres DSN is required for postgres source")
			}
		case SheetsSource:
			if c.GoogleSpreadsheetID == "" {
				return fmt.Errorf("Google Spreadsheet ID is required for sheets source")
			}
		}
	}

	return nil
}

// GetTypes returns all valid source types
func GetTypes() []Type {
	return []Type{MemorySource, SQLiteSource, PostgresSource, SheetsSource}
}
