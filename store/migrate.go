// server/store/migrate.go
package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrations embed.FS

// migrateUp applies the embedded migrations under dir to the database at
// databaseURL and returns the resulting schema version.
func migrateUp(dir, databaseURL string) (uint, error) {
	src, err := iofs.New(migrations, dir)
	if err != nil {
		return 0, fmt.Errorf("load migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return 0, storageFailure("migrate", err)
	}
	return runMigrations(m)
}

// migrateSQLite migrates through a handle opened from the very DSN the
// store uses. Closing m closes that handle.
func migrateSQLite(dsn string) (uint, error) {
	src, err := iofs.New(migrations, "migrations/sqlite")
	if err != nil {
		return 0, fmt.Errorf("load migrations: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return 0, storageFailure("migrate", err)
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		db.Close()
		return 0, storageFailure("migrate", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		driver.Close()
		return 0, storageFailure("migrate", err)
	}
	return runMigrations(m)
}

// runMigrations applies every pending migration and closes m. An up to
// date schema is not an error.
func runMigrations(m *migrate.Migrate) (uint, error) {
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, storageFailure("migrate", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, storageFailure("migrate", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	return version, nil
}
