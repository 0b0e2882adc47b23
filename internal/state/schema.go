package state

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaVersion = 1

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS schema_info (
        version INTEGER NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS sessions (
        id         TEXT PRIMARY KEY,
        lock_path  TEXT NOT NULL,
        started_at TEXT NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS temp_files (
        id         INTEGER PRIMARY KEY AUTOINCREMENT,
        session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
        path       TEXT NOT NULL,
        created_at TEXT NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS autosave_snapshots (
        id           INTEGER PRIMARY KEY AUTOINCREMENT,
        project_path TEXT NOT NULL,
        payload      TEXT NOT NULL,
        sha256       TEXT NOT NULL,
        created_at   TEXT NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_snapshots_project ON autosave_snapshots(project_path, id)`,
}

func (s *Store) applyMigrations(ctx context.Context) error {
	for i, statement := range migrations {
		if _, err := s.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("apply migration %d: %w", i, err)
		}
	}

	var version sql.NullInt64
	row := s.db.QueryRowContext(ctx, `SELECT version FROM schema_info LIMIT 1`)
	if err := row.Scan(&version); err != nil {
		if err != sql.ErrNoRows {
			return fmt.Errorf("read schema version: %w", err)
		}
	}
	if !version.Valid {
		if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_info (version) VALUES (?)`, schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return nil
	}
	if version.Int64 != schemaVersion {
		return fmt.Errorf("state database schema version %d is not supported (want %d); remove %s to rebuild", version.Int64, schemaVersion, s.path)
	}
	return nil
}
