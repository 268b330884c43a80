package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Source types accepted by DATA_SOURCE.
const (
	SourceMemory   = "memory"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
	SourceSheets   = "sheets"
)

type Config struct {
	// Logging
	LogLevel  string
	LogFormat string

	// Record sources; DataSource may list several types separated by commas
	DataSource    string
	DataFile      string
	SourceTimeout time.Duration

	// SQLite
	SQLiteDBPath string
	SQLiteQuery  string

	// Postgres
	PostgresDSN      string
	PostgresQuery    string
	PostgresMaxRows  int
	PostgresMaxConns int

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// AMQP result publishing; disabled when AMQPURL is empty
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	// Runner
	DefaultModel    string
	RevenueFillGaps bool
}

func Load() *Config {
	cfg := &Config{
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		DataSource:    getEnv("DATA_SOURCE", SourceMemory),
		DataFile:      getEnv("DATA_FILE", "./data/transactions.json"),
		SourceTimeout: getEnvDuration("SOURCE_TIMEOUT", 30*time.Second),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/openclaw.db"),
		SQLiteQuery:  getEnv("SQLITE_QUERY", ""),

		PostgresDSN:      getEnv("POSTGRES_DSN", ""),
		PostgresQuery:    getEnv("POSTGRES_QUERY", ""),
		PostgresMaxRows:  getEnvInt("POSTGRES_MAX_ROWS", 10000),
		PostgresMaxConns: getEnvInt("POSTGRES_MAX_CONNS", 10),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Transactions"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "openclaw"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "runner.results"),

		DefaultModel:    getEnv("DEFAULT_MODEL", "llama3.1"),
		RevenueFillGaps: getEnvBool("REVENUE_FILL_GAPS", false),
	}

	return cfg
}

// SourceTypes splits DataSource into trimmed, non-empty type names.
func (c *Config) SourceTypes() []string {
	var out []string
	for _, t := range strings.Split(c.DataSource, ",") {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	return combine(append(c.commonErrors(), c.sourceErrors()...))
}

// ValidateCommon checks the settings every command needs: logging, result
// publishing and the default model. Data source settings are left to
// ValidateSources.
func (c *Config) ValidateCommon() error {
	return combine(c.commonErrors())
}

// ValidateSources checks the data source selection, its per-type settings
// and the load timeout.
func (c *Config) ValidateSources() error {
	return combine(c.sourceErrors())
}

func (c *Config) commonErrors() []string {
	var errors []string

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPRoutingKey == "" {
			errors = append(errors, "AMQP routing key cannot be empty when AMQP URL is provided")
		}
	}

	if strings.TrimSpace(c.DefaultModel) == "" {
		errors = append(errors, "default model cannot be empty")
	}

	return errors
}

func (c *Config) sourceErrors() []string {
	var errors []string

	types := c.SourceTypes()
	if len(types) == 0 {
		errors = append(errors, "data source cannot be empty")
	}
	validSources := []string{SourceMemory, SourceSQLite, SourcePostgres, SourceSheets}
	for _, t := range types {
		switch t {
		case SourceMemory:
			if c.DataFile == "" {
				errors = append(errors, "data file cannot be empty when using memory source")
			}
		case SourceSQLite:
			if c.SQLiteDBPath == "" {
				errors = append(errors, "SQLite database path cannot be empty when using sqlite source")
			}
		case SourcePostgres:
			if c.PostgresDSN == "" {
				errors = append(errors, "Postgres DSN is required when using postgres source")
			}
			if c.PostgresMaxRows < 1 {
				errors = append(errors, fmt.Sprintf("invalid Postgres max rows %d: must be at least 1", c.PostgresMaxRows))
			}
			if c.PostgresMaxConns < 1 || c.PostgresMaxConns > 100 {
				errors = append(errors, fmt.Sprintf("invalid Postgres max conns %d: must be between 1 and 100", c.PostgresMaxConns))
			}
		case SourceSheets:
			if c.GoogleSpreadsheetID == "" {
				errors = append(errors, "Google Spreadsheet ID is required when using sheets source")
			}
			if c.GoogleSheetName == "" {
				errors = append(errors, "Google Sheet name is required when using sheets source")
			}
			if c.GoogleServiceAccountFile != "" {
				if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
					errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
				}
			}
		default:
			errors = append(errors, fmt.Sprintf("invalid data source '%s': must be one of %v", t, validSources))
		}
	}

	if c.SourceTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid source timeout %v: must be at least 1 second", c.SourceTimeout))
	}

	return errors
}

func combine(errors []string) error {
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
