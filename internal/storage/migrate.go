package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

const (
	// schemaSourceName labels the embedded ledger schema inside migrate.
	schemaSourceName = "ledger-schema"
	// MigrationsTable records the applied ledger schema version.
	MigrationsTable = "ledgerbook_schema_migrations"
)

//go:embed migrations/*.sql
var ledgerSchema embed.FS

// ErrDirtySchema means a previous migration stopped halfway and the
// database needs manual repair before the ledgers can be served.
var ErrDirtySchema = errors.New("ledger schema is dirty")

// schemaMigrator owns the dedicated connection migrate closes on exit, so
// the repository pool stays open.
type schemaMigrator struct {
	db *sql.DB
	m  *migrate.Migrate
}

func openSchemaMigrator(dbPath string) (*schemaMigrator, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open migration database: %w", err)
	}

	driver, err := sqlite.WithInstance(db, &sqlite.Config{MigrationsTable: MigrationsTable})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite driver: %w", err)
	}

	src, err := iofs.New(ledgerSchema, "migrations")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open embedded ledger schema: %w", err)
	}

	m, err := migrate.NewWithInstance(schemaSourceName, src, "sqlite", driver)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return &schemaMigrator{db: db, m: m}, nil
}

func (s *schemaMigrator) close() {
	s.m.Close()
	s.db.Close()
}

// version returns the applied version, zero for an empty database.
func (s *schemaMigrator) version() (uint, error) {
	v, dirty, err := s.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return v, fmt.Errorf("%w at version %d", ErrDirtySchema, v)
	}
	return v, nil
}

// RunMigrations brings the ledger schema at dbPath up to date and returns
// the resulting version.
func RunMigrations(dbPath string) (uint, error) {
	s, err := openSchemaMigrator(dbPath)
	if err != nil {
		return 0, err
	}
	defer s.close()

	from, err := s.version()
	if err != nil {
		return from, err
	}

	if err := s.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return from, fmt.Errorf("run migrations: %w", err)
	}

	to, err := s.version()
	if err != nil {
		return to, err
	}
	if to != from {
		slog.Info("Ledger schema migrated", "db_path", dbPath, "from_version", from, "to_version", to)
	} else {
		slog.Debug("Ledger schema up to date", "db_path", dbPath, "version", to)
	}
	return to, nil
}

// SchemaVersion reports the ledger schema version applied at dbPath
// without migrating.
func SchemaVersion(dbPath string) (uint, error) {
	s, err := openSchemaMigrator(dbPath)
	if err != nil {
		return 0, err
	}
	defer s.close()
	return s.version()
}
