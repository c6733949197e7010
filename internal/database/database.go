package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"
)

// SchemaVersion is written on first open. It only marks that the structure
// exists; there is no migration chain behind it.
const SchemaVersion = 1

var schema = []string{
	`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id         TEXT PRIMARY KEY,
		document   TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS retired_ids (
		id         TEXT PRIMARY KEY,
		retired_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS name_aliases (
		raw_pattern    TEXT NOT NULL,
		preferred_name TEXT NOT NULL,
		created_at     TIMESTAMP NOT NULL
	)`,
}

func New(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	switch driver {
	case DriverSQLite:
		// SQLite allows one writer at a time.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting busy timeout: %w", err)
		}
	default:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	return db, nil
}

// Migrate creates the tables on first open and records SchemaVersion.
// It is safe to call on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	if count > 0 {
		return nil
	}

	if _, err := db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES ($1)", SchemaVersion); err != nil {
		return fmt.Errorf("writing schema version: %w", err)
	}

	return nil
}

// Version returns the recorded schema version, or 0 when none has been written.
func Version(ctx context.Context, db *sql.DB) (int, error) {
	var v int

	err := db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&v)
	if err == sql.ErrNoRows {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}

	return v, nil
}
