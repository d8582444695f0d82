package db

// CacheSchemaSQL is the authoritative schema for the derived cache store.
//
// Every row in workers, tasks, and approvals is fully derivable from the
// canonical documents; events is the only insert-only table and is never
// touched by reconciliation. Timestamps are stored as RFC3339 TEXT so that
// exported rows round-trip through packs byte-identically.
const CacheSchemaSQL = `
CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ts TEXT NOT NULL,
	actor TEXT NOT NULL,
	type TEXT NOT NULL,
	payload_json TEXT
);

CREATE TABLE IF NOT EXISTS workers (
	id TEXT PRIMARY KEY,
	role_id TEXT NOT NULL,
	title TEXT,
	department TEXT,
	provider TEXT,
	model TEXT,
	reports_to TEXT,
	authority TEXT
);

CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	status TEXT NOT NULL,
	owner_role TEXT,
	requires_approval_json TEXT,
	updated_ts TEXT
);

CREATE TABLE IF NOT EXISTS approvals (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	task_id TEXT,
	approval_type TEXT,
	status TEXT,
	approved_by TEXT,
	ts TEXT
);

CREATE TABLE IF NOT EXISTS snapshots (
	key TEXT PRIMARY KEY,
	value TEXT
);
`

// CacheTables lists the tables every healthy cache store must contain.
var CacheTables = []string{"events", "workers", "tasks", "approvals", "snapshots"}

// MemorySchemaSQL is the authoritative schema for the session memory store.
// FTS structures are provisioned separately by EnsureFTS since FTS5 may be
// absent from the SQLite build.
const MemorySchemaSQL = `
CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	namespace TEXT NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	ts TEXT NOT NULL,
	metadata_json TEXT
);

CREATE TABLE IF NOT EXISTS facts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	namespace TEXT NOT NULL,
	fact_text TEXT NOT NULL,
	ts TEXT NOT NULL,
	importance INTEGER DEFAULT 5,
	tags_json TEXT,
	supersedes_id INTEGER
);

CREATE TABLE IF NOT EXISTS summaries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	namespace TEXT NOT NULL,
	summary_text TEXT NOT NULL,
	ts TEXT NOT NULL,
	scope TEXT DEFAULT 'rolling'
);

CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ts TEXT NOT NULL,
	type TEXT NOT NULL,
	payload_json TEXT
);

CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT
);

CREATE INDEX IF NOT EXISTS idx_messages_session_ns ON messages(session_id, namespace);
CREATE INDEX IF NOT EXISTS idx_messages_ts ON messages(ts);
CREATE INDEX IF NOT EXISTS idx_facts_session_ns ON facts(session_id, namespace);
CREATE INDEX IF NOT EXISTS idx_summaries_session_ns ON summaries(session_id, namespace);
`

// MemoryTables lists the tables every healthy memory store must contain.
var MemoryTables = []string{"messages", "facts", "summaries", "events", "meta"}
