package db

import "database/sql"

// ftsSchemaSQL creates external-content FTS5 tables over messages and facts.
const ftsSchemaSQL = `
CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts
	USING fts5(content, content=messages, content_rowid=id);

CREATE VIRTUAL TABLE IF NOT EXISTS facts_fts
	USING fts5(fact_text, content=facts, content_rowid=id);
`

// ftsTriggerSQL keeps the FTS tables transactionally coupled to their base
// tables: an indexed record can never outlive or precede its base row.
const ftsTriggerSQL = `
CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
	INSERT INTO messages_fts(rowid, content) VALUES (new.id, new.content);
END;

CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
	INSERT INTO messages_fts(messages_fts, rowid, content) VALUES('delete', old.id, old.content);
END;

CREATE TRIGGER IF NOT EXISTS facts_ai AFTER INSERT ON facts BEGIN
	INSERT INTO facts_fts(rowid, fact_text) VALUES (new.id, new.fact_text);
END;

CREATE TRIGGER IF NOT EXISTS facts_ad AFTER DELETE ON facts BEGIN
	INSERT INTO facts_fts(facts_fts, rowid, fact_text) VALUES('delete', old.id, old.fact_text);
END;
`

// DetectFTS5 reports whether this SQLite build supports FTS5. Engine
// unavailability is never an error; callers fall back to substring search.
func DetectFTS5(conn *sql.DB) bool {
	if _, err := conn.Exec("CREATE VIRTUAL TABLE IF NOT EXISTS _fts5_probe USING fts5(x)"); err != nil {
		return false
	}
	_, _ = conn.Exec("DROP TABLE IF EXISTS _fts5_probe")
	return true
}

// EnsureFTS provisions the FTS5 virtual tables and sync triggers on the
// memory store when the build supports them. Returns true when FTS is
// active.
func EnsureFTS(conn *sql.DB) (bool, error) {
	if !DetectFTS5(conn) {
		return false, nil
	}
	if _, err := conn.Exec(ftsSchemaSQL); err != nil {
		return false, err
	}
	if _, err := conn.Exec(ftsTriggerSQL); err != nil {
		return false, err
	}
	return true, nil
}
