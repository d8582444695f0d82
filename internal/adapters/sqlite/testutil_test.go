// Package sqlite_test contains integration tests for the SQLite adapters.
//
// All test setup goes through setupCacheDB/setupMemoryDB so tests run
// against the authoritative schemas in internal/db rather than hardcoded
// CREATE TABLE statements.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/steward/internal/db"
)

// setupCacheDB creates an in-memory cache store with the authoritative schema.
func setupCacheDB(t *testing.T) *sql.DB {
	t.Helper()

	conn := openMemoryDB(t)
	if _, err := conn.Exec(db.CacheSchemaSQL); err != nil {
		t.Fatalf("failed to create cache schema: %v", err)
	}
	return conn
}

// setupMemoryDB creates an in-memory session store. withFTS controls whether
// the full-text tables are installed, so both search paths are testable.
func setupMemoryDB(t *testing.T, withFTS bool) *sql.DB {
	t.Helper()

	conn := openMemoryDB(t)
	if _, err := conn.Exec(db.MemorySchemaSQL); err != nil {
		t.Fatalf("failed to create memory schema: %v", err)
	}
	if withFTS {
		enabled, err := db.EnsureFTS(conn)
		if err != nil {
			t.Fatalf("failed to install FTS tables: %v", err)
		}
		if !enabled {
			t.Skip("sqlite build has no FTS5 support")
		}
	}
	return conn
}

func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		conn.Close()
	})
	return conn
}
