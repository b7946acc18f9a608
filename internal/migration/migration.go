package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var embeddedMigrations embed.FS

const migrationsDir = "migrations"

var (
	ErrSchemaDirty    = errors.New("schema_dirty")
	ErrSchemaOutdated = errors.New("schema_outdated")
)

// Schema history:
//   - 1: sites, contracts and invoices with a server-set issued_at.
//   - 2: site coordinates, contract price and invoicing frequency, invoice
//     amount unit and billing period replacing issued_at, timeseries_records.
//   - 3: invoices.version optimistic concurrency token.
//
// Applied versions are tracked by golang-migrate in schema_migrations.

// RunMigrations applies every pending migration for the given database type.
func RunMigrations(db *sql.DB, dbType string) error {
	migrator, err := newMigrator(db, dbType)
	if err != nil {
		return err
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

// MigrateTo moves the schema up or down to exactly version.
func MigrateTo(db *sql.DB, dbType string, version uint) error {
	migrator, err := newMigrator(db, dbType)
	if err != nil {
		return err
	}

	if err := migrator.Migrate(version); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate to version %d: %w", version, err)
	}
	return nil
}

// Rollback reverts the last steps migrations.
func Rollback(db *sql.DB, dbType string, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("rollback steps must be positive, got %d", steps)
	}

	migrator, err := newMigrator(db, dbType)
	if err != nil {
		return err
	}

	if err := migrator.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rollback %d migrations: %w", steps, err)
	}
	return nil
}

// CurrentVersion reports the applied schema version, 0 when nothing is applied.
func CurrentVersion(db *sql.DB, dbType string) (uint, bool, error) {
	migrator, err := newMigrator(db, dbType)
	if err != nil {
		return 0, false, err
	}

	version, dirty, err := migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return version, dirty, nil
}

// EnsureLatest fails when the schema is dirty or behind the embedded migrations.
func EnsureLatest(db *sql.DB, dbType string) error {
	latest, err := LatestMigrationVersion(dbType)
	if err != nil {
		return err
	}

	current, dirty, err := CurrentVersion(db, dbType)
	if err != nil {
		return err
	}
	if dirty {
		return fmt.Errorf("%w: version %d", ErrSchemaDirty, current)
	}
	if current < latest {
		return fmt.Errorf("%w: at version %d, latest is %d", ErrSchemaOutdated, current, latest)
	}
	return nil
}

func newMigrator(db *sql.DB, dbType string) (*migrate.Migrate, error) {
	if db == nil {
		return nil, errors.New("migration database handle is required")
	}

	dir, err := dialectDir(dbType)
	if err != nil {
		return nil, err
	}

	sub, err := fs.Sub(embeddedMigrations, dir)
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("create migration source: %w", err)
	}

	driver, err := databaseDriver(db, dbType)
	if err != nil {
		return nil, fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, dbType, driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return migrator, nil
}

func databaseDriver(db *sql.DB, dbType string) (database.Driver, error) {
	switch dbType {
	case "postgres":
		return postgres.WithInstance(db, &postgres.Config{})
	case "mysql":
		return mysql.WithInstance(db, &mysql.Config{})
	case "sqlite", "sqlite3":
		return sqlite3.WithInstance(db, &sqlite3.Config{})
	default:
		return nil, fmt.Errorf("unsupported %s type", dbType)
	}
}

func dialectDir(dbType string) (string, error) {
	switch dbType {
	case "postgres", "mysql":
		return migrationsDir + "/" + dbType, nil
	case "sqlite", "sqlite3":
		return migrationsDir + "/sqlite", nil
	default:
		return "", fmt.Errorf("unsupported %s type", dbType)
	}
}
