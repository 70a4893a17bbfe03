// Package storage persists scanned definitions in a SQLite index so names can
// be looked up without rescanning the source tree.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SchemaVersion is written to the metadata table when the schema is created.
const SchemaVersion = "1"

// timeFormat is fixed width so stored timestamps sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Open opens (creating if needed) the index database at path and ensures the
// schema exists. Parent directories are created as required.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create index directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open index %s: %w", path, err)
	}

	// One connection, so PRAGMAs stay in effect.
	db.SetMaxOpenConns(1)

	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// CreateSchema creates the scans, definitions and metadata tables. It is safe
// to call on an existing index.
func CreateSchema(db *sql.DB) error {
	// PRAGMA foreign_keys is a no-op inside a transaction
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	tables := []struct {
		name string
		ddl  string
	}{
		{"metadata", createMetadataTable},
		{"scans", createScansTable},
		{"definitions", createDefinitionsTable},
	}

	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range indexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	bootstrapSQL := `
		INSERT OR IGNORE INTO metadata (key, value, updated_at)
		VALUES ('schema_version', ?, ?)
	`
	if _, err := tx.Exec(bootstrapSQL, SchemaVersion, now); err != nil {
		return fmt.Errorf("failed to bootstrap metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}

	return nil
}

// GetSchemaVersion returns the stored schema version, or "0" for a database
// without a metadata table.
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

const createMetadataTable = `
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

const createScansTable = `
CREATE TABLE IF NOT EXISTS scans (
    scan_id TEXT PRIMARY KEY,                    -- UUID
    root TEXT NOT NULL,                          -- Scanned directory
    started_at TEXT NOT NULL,                    -- RFC 3339, UTC
    file_count INTEGER NOT NULL DEFAULT 0,
    definition_count INTEGER NOT NULL DEFAULT 0
)
`

const createDefinitionsTable = `
CREATE TABLE IF NOT EXISTS definitions (
    fold_key TEXT NOT NULL,                      -- Lowercased qualified name
    name TEXT NOT NULL,                          -- Qualified name as written
    kind TEXT NOT NULL,                          -- class, interface, trait
    namespace TEXT NOT NULL DEFAULT '',
    file_path TEXT NOT NULL,
    start_line INTEGER NOT NULL,
    end_line INTEGER NOT NULL,
    code TEXT NOT NULL,                          -- Rendered standalone fragment
    scan_id TEXT NOT NULL,
    PRIMARY KEY (fold_key, file_path),
    FOREIGN KEY (scan_id) REFERENCES scans(scan_id)
)
`

var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_definitions_file_path ON definitions(file_path)",
	"CREATE INDEX IF NOT EXISTS idx_definitions_scan_id ON definitions(scan_id)",
	"CREATE INDEX IF NOT EXISTS idx_scans_root ON scans(root)",
}
