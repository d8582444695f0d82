// Package db opens the embedded SQLite stores and owns their authoritative
// schemas. Two separate database files exist per project runtime dir: the
// derived cache (steward.db) and session memory (memory.db).
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// ErrSchema indicates a store file is missing expected tables, e.g. it was
// opened against an incompatible database file.
var ErrSchema = errors.New("incompatible store schema")

// Open opens (creating if needed) a SQLite database file and applies the
// given schema. Schema application uses CREATE TABLE IF NOT EXISTS
// throughout, so opening an already-initialized file is a no-op and two
// processes racing on first run cannot corrupt the schema.
func Open(path, schema string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single-writer model: statement durability comes from the WAL journal.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return conn, nil
}

// CheckTables verifies that every named table exists, returning ErrSchema
// when one is missing.
func CheckTables(conn *sql.DB, tables ...string) error {
	for _, table := range tables {
		ok, err := HasTable(conn, table)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: missing table %s", ErrSchema, table)
		}
	}
	return nil
}

// HasTable reports whether a table (or virtual table) exists.
func HasTable(conn *sql.DB, name string) (bool, error) {
	var found string
	err := conn.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?", name,
	).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to inspect schema: %w", err)
	}
	return true, nil
}
