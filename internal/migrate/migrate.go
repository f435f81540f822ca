// Package migrate brings an sqlite database up to the schema in migrations/.
package migrate

import (
	"database/sql"
	"errors"
	"fmt"

	embedded "github.com/goserg/ratingengine"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// VersionTable records the applied schema version next to the engine's own
// tables.
const VersionTable = "ratingengine_schema_version"

// UpServerDB is a no-op on an up-to-date database.
func UpServerDB(db *sql.DB) error {
	sourceDriver, err := iofs.New(embedded.ServerMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	databaseDriver, err := sqlite3.WithInstance(db, &sqlite3.Config{
		MigrationsTable: VersionTable,
	})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "ratingengine", databaseDriver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
