// Package index provides the SQLite-backed catalogue of compiled charts.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS charts (
	path            TEXT PRIMARY KEY,
	checksum        TEXT NOT NULL DEFAULT '',
	title           TEXT NOT NULL DEFAULT '',
	artist          TEXT NOT NULL DEFAULT '',
	arrangement     TEXT NOT NULL DEFAULT '',
	bass            INTEGER NOT NULL DEFAULT 0,
	max_difficulty  INTEGER NOT NULL DEFAULT 0,
	notes_count     INTEGER NOT NULL DEFAULT 0,
	song_length     REAL NOT NULL DEFAULT 0,
	points_per_note REAL NOT NULL DEFAULT 0,
	output          TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL DEFAULT 'compiled',
	error           TEXT NOT NULL DEFAULT '',
	compiled_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_charts_status ON charts(status);

CREATE TABLE IF NOT EXISTS compile_runs (
	id          TEXT PRIMARY KEY,
	started_at  DATETIME NOT NULL,
	finished_at DATETIME NOT NULL,
	total       INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0
);
`

// DB wraps a sql.DB with catalogue operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
