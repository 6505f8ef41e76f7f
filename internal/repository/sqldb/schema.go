package sqldb

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		doc_type    TEXT NOT NULL,
		category    TEXT NOT NULL,
		series_name TEXT,
		episode_num INTEGER,
		format      TEXT NOT NULL,
		bucket      TEXT NOT NULL DEFAULT '',
		bucket_key  TEXT NOT NULL UNIQUE,
		content     TEXT,
		file_size   BIGINT NOT NULL DEFAULT 0,
		audio_series_id TEXT,
		audio_episode_num INTEGER,
		read_count  BIGINT NOT NULL DEFAULT 0 CHECK (read_count >= 0),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (episode_num IS NULL OR series_name IS NOT NULL)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_series ON documents (category, series_name, episode_num)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_read_count ON documents (read_count DESC)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		doc_type    TEXT NOT NULL,
		category    TEXT NOT NULL,
		series_name TEXT,
		episode_num INTEGER,
		format      TEXT NOT NULL,
		bucket      TEXT NOT NULL DEFAULT '',
		bucket_key  TEXT NOT NULL UNIQUE,
		content     TEXT,
		file_size   INTEGER NOT NULL DEFAULT 0,
		audio_series_id TEXT,
		audio_episode_num INTEGER,
		read_count  INTEGER NOT NULL DEFAULT 0 CHECK (read_count >= 0),
		created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CHECK (episode_num IS NULL OR series_name IS NOT NULL)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_series ON documents (category, series_name, episode_num)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_read_count ON documents (read_count DESC)`,
}

// Migrate creates the catalog schema if it does not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	statements := postgresSchema
	if db.DriverName() == DriverSQLite {
		statements = sqliteSchema
	}

	return db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
		}
		return nil
	})
}
