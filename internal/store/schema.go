package store

import (
	"database/sql"
	"fmt"
)

const schemaVersion = 1

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  id TEXT NOT NULL UNIQUE,
  project_root TEXT NOT NULL DEFAULT '',
  project_name TEXT NOT NULL DEFAULT '',
  project_version TEXT NOT NULL DEFAULT '',
  python_version TEXT NOT NULL DEFAULT '',
  tool_version TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS documents (
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  path TEXT NOT NULL,
  module TEXT NOT NULL,
  PRIMARY KEY (run_id, path)
)`,
	`CREATE TABLE IF NOT EXISTS symbols (
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  path TEXT NOT NULL,
  symbol TEXT NOT NULL,
  documentation TEXT NOT NULL DEFAULT '[]'
)`,
	`CREATE TABLE IF NOT EXISTS occurrences (
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  path TEXT NOT NULL,
  symbol TEXT NOT NULL,
  start_line INTEGER NOT NULL,
  start_char INTEGER NOT NULL,
  end_line INTEGER NOT NULL,
  end_char INTEGER NOT NULL,
  role INTEGER NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS failures (
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  path TEXT NOT NULL,
  reason TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_occurrences_symbol ON occurrences(run_id, symbol)`,
	`CREATE INDEX IF NOT EXISTS idx_symbols_symbol ON symbols(run_id, symbol)`,
}

func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("store schema version %d is newer than supported version %d", version, schemaVersion)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}
	if _, err := db.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion)); err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}
	return nil
}
