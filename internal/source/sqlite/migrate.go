package sqlite

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// migrationsTable holds the schema bookkeeping, apart from the tables a
// source query reads.
const migrationsTable = "openclaw_schema_migrations"

//go:embed migrations/*.sql
var migrations embed.FS

// newMigrator opens its own connection through the migrate sqlite driver.
// Closing the migrator closes only that connection.
func newMigrator(dbPath string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("load embedded migrations: %w", err)
	}
	dsn := fmt.Sprintf("sqlite://%s?x-migrations-table=%s", dbPath, migrationsTable)
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return nil, fmt.Errorf("create migrator for %s: %w", dbPath, err)
	}
	return m, nil
}

func closeMigrator(m *migrate.Migrate) error {
	srcErr, dbErr := m.Close()
	return errors.Join(srcErr, dbErr)
}

// migrateUp brings the transactions schema to the latest version.
func migrateUp(dbPath string) (err error) {
	m, err := newMigrator(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeMigrator(m); err == nil && cerr != nil {
			err = fmt.Errorf("close migrator: %w", cerr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// SchemaVersion reports the applied schema version. ok is false for a
// database that was never migrated.
func SchemaVersion(dbPath string) (version uint, ok bool, err error) {
	m, err := newMigrator(dbPath)
	if err != nil {
		return 0, false, err
	}
	defer closeMigrator(m)

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, false, nil
	case err != nil:
		return 0, false, fmt.Errorf("read schema version: %w", err)
	case dirty:
		return version, true, fmt.Errorf("schema version %d is dirty", version)
	}
	return version, true, nil
}
