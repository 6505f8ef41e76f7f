package sqldb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/andresuchdata/wenku/backend-go/internal/config"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverPGX      = "pgx"
	DriverSQLite   = "sqlite"
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know by name.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

type DB struct {
	*sqlx.DB
	sem         *semaphore.Weighted
	maxLifetime time.Duration
}

// Open connects according to the database config: sqlite when configured, a URL when
// one is given, host/port settings otherwise.
func Open(cfg *config.DatabaseConfig) (*DB, error) {
	switch {
	case cfg.Driver == DriverSQLite:
		return NewSQLite(cfg.SQLitePath)
	case cfg.URL != "":
		return NewDBFromURL(cfg.URL)
	default:
		return NewDB(cfg)
	}
}

// NewDB creates a new Postgres connection pool from host/port settings
func NewDB(cfg *config.DatabaseConfig) (*DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sqlx.Connect(DriverPostgres, connStr)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return wrap(db, 25, 5*time.Minute), nil
}

// NewDBFromURL connects to Postgres through pgx using a connection URL
func NewDBFromURL(url string) (*DB, error) {
	db, err := sqlx.Connect(DriverPGX, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres url: %w", err)
	}
	return wrap(db, 25, 5*time.Minute), nil
}

// NewSQLite opens a SQLite catalog. ":memory:" gives a private in-memory database.
func NewSQLite(path string) (*DB, error) {
	if path == "" {
		path = ":memory:"
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sqlx.Connect(DriverSQLite, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	// A single connection that is never recycled keeps in-memory databases alive
	// and serializes writers.
	return wrap(db, 1, 0), nil
}

func wrap(db *sqlx.DB, maxOpen int, maxLifetime time.Duration) *DB {
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(min(maxOpen, 5))
	db.SetConnMaxLifetime(maxLifetime)
	db.SetConnMaxIdleTime(maxLifetime)

	return &DB{
		DB:          db,
		sem:         semaphore.NewWeighted(10),
		maxLifetime: maxLifetime,
	}
}

// WithTx executes a function within a transaction
func (db *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer db.sem.Release(1)

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("could not rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}
