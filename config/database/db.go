package database

import (
	"database/sql"
	"fmt"
	"time"

	"tulisan/config"
	"tulisan/pkg/logger"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	pingAttempts = 5
	pingBackoff  = 2 * time.Second
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS contents (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS contents_created_at_idx ON contents (created_at DESC);`

// SQLite keeps created_at as unix nanoseconds so ordering never depends on
// the driver's text encoding of timestamps.
const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS contents (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS contents_created_at_idx ON contents (created_at DESC);`

// Open connects to the store selected by cfg.StoreDriver. The memory driver
// has no database handle and returns nil.
func Open(cfg *config.Config) (*sql.DB, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		return ConnectPostgres(cfg.PostgresDSN())
	case config.DriverSqlite:
		return OpenSqlite(cfg.SqlitePath)
	case config.DriverMemory:
		return nil, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// ConnectPostgres opens a lib/pq handle and pings it with a short retry loop
// to ride out DNS or network blips during startup.
func ConnectPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	for i := 0; i < pingAttempts; i++ {
		if err = db.Ping(); err == nil {
			logger.Sugar.Info("Successfully connected to the database")
			if err := Migrate(db, config.DriverPostgres); err != nil {
				_ = db.Close()
				return nil, err
			}
			return db, nil
		}
		logger.Sugar.Infof("Database connection failed, retrying in %s... (%v)", pingBackoff, err)
		time.Sleep(pingBackoff)
	}
	_ = db.Close()
	return nil, fmt.Errorf("could not connect to database after %d attempts: %w", pingAttempts, err)
}

// OpenSqlite opens or creates the SQLite database at path.
func OpenSqlite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if err := Migrate(db, config.DriverSqlite); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Sugar.Infof("Opened sqlite store at %s", path)
	return db, nil
}

// Migrate creates the contents table for the given driver if it is missing.
func Migrate(db *sql.DB, driver string) error {
	var schema string
	switch driver {
	case config.DriverPostgres:
		schema = postgresSchema
	case config.DriverSqlite:
		schema = sqliteSchema
	default:
		return fmt.Errorf("no schema for driver %q", driver)
	}
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
