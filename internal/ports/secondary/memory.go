package secondary

import "context"

// MessageRecord represents one conversational message as stored in session
// memory. (Namespace, SessionID) define a logical conversation partition.
type MessageRecord struct {
	ID        int64
	SessionID string
	Namespace string
	Role      string // free-form speaker tag
	Content   string
	Timestamp string
	Metadata  map[string]any
}

// FactRecord represents one persisted fact. A fact with SupersedesID set
// marks an older fact for replacement; rows carrying the marker are held out
// of active views until an explicit purge removes them.
type FactRecord struct {
	ID           int64
	SessionID    string
	Namespace    string
	Text         string
	Timestamp    string
	Importance   int // 1..10, default 5
	Tags         []string
	SupersedesID int64 // 0 = supersedes nothing
}

// SummaryRecord represents the current summary for a (session, namespace,
// scope) triple. At most one row per triple.
type SummaryRecord struct {
	ID        int64
	SessionID string
	Namespace string
	Text      string
	Timestamp string
	Scope     string // free-form lineage label, default "rolling"
}

// MemoryEventRecord is one internal memory event (insert-only).
type MemoryEventRecord struct {
	ID        int64
	Timestamp string
	Type      string
	Payload   map[string]any
}

// PurgeFilter narrows a purge to a namespace and/or a timestamp cutoff.
// Zero values match everything.
type PurgeFilter struct {
	Namespace string
	OlderThan string // RFC3339 timestamp; rows strictly older are removed
}

// MessageRepository defines the secondary port for message persistence.
type MessageRepository interface {
	// Insert persists a message and returns its row id.
	Insert(ctx context.Context, msg *MessageRecord) (int64, error)

	// Recent returns up to limit most recent messages, ordered oldest-first
	// (newest last).
	Recent(ctx context.Context, sessionID, namespace string, limit int) ([]*MessageRecord, error)

	// Count returns the number of messages in a session/namespace.
	Count(ctx context.Context, sessionID, namespace string) (int, error)

	// Purge deletes messages matching the filter and returns the count.
	Purge(ctx context.Context, filter PurgeFilter) (int64, error)
}

// FactRepository defines the secondary port for fact persistence.
type FactRepository interface {
	// Insert persists a fact and returns its row id.
	Insert(ctx context.Context, fact *FactRecord) (int64, error)

	// Active returns non-superseding facts ordered by importance descending,
	// then recency descending.
	Active(ctx context.Context, sessionID, namespace string, limit int) ([]*FactRecord, error)

	// Count returns the number of active facts in a session/namespace.
	Count(ctx context.Context, sessionID, namespace string) (int, error)

	// PurgeSuperseded removes facts that superseded an older fact, returning
	// the count deleted.
	PurgeSuperseded(ctx context.Context, sessionID, namespace string) (int64, error)

	// Purge deletes facts matching the filter and returns the count.
	Purge(ctx context.Context, filter PurgeFilter) (int64, error)
}

// SummaryRepository defines the secondary port for summary persistence.
type SummaryRepository interface {
	// Upsert updates the summary row for (session, namespace, scope) in
	// place when one exists, otherwise inserts. Returns the row id.
	Upsert(ctx context.Context, summary *SummaryRecord) (int64, error)

	// Get returns the current summary for (session, namespace, scope), or
	// nil when none exists.
	Get(ctx context.Context, sessionID, namespace, scope string) (*SummaryRecord, error)

	// Purge deletes summaries in the namespace ("" = all) and returns the
	// count.
	Purge(ctx context.Context, namespace string) (int64, error)
}

// MemoryEventRepository defines the secondary port for memory events.
type MemoryEventRepository interface {
	// Append records one memory event.
	Append(ctx context.Context, eventType string, payload map[string]any) error
}

// SearchIndex defines the secondary port for session-memory search. An
// implementation ranks most-relevant-first when an indexed engine is
// available and most-recent-first (importance-then-recency for facts) under
// the fallback; both paths produce the same record shape.
type SearchIndex interface {
	// SearchMessages returns messages whose content matches the query.
	SearchMessages(ctx context.Context, sessionID, namespace, query string, limit int) ([]*MessageRecord, error)

	// SearchFacts returns active facts whose text matches the query.
	SearchFacts(ctx context.Context, sessionID, namespace, query string, limit int) ([]*FactRecord, error)
}

// MetaRepository defines the secondary port for the memory store's
// key/value metadata table.
type MetaRepository interface {
	// Get returns the value for a key, or "" when unset.
	Get(ctx context.Context, key string) (string, error)

	// Set stores a key/value, overwriting any prior value.
	Set(ctx context.Context, key, value string) error
}

// MemoryPackStore defines the secondary port used by pack export/import
// against the session memory store.
type MemoryPackStore interface {
	// ExportRows returns all rows, optionally filtered to the given
	// namespaces (events are never filtered), ordered by id.
	ExportRows(ctx context.Context, namespaces []string) (*MemoryRows, error)

	// ImportRows appends all rows in a single transaction and returns the
	// per-table counts. Existing rows are never modified.
	ImportRows(ctx context.Context, rows *MemoryRows) (map[string]int, error)
}

// MemoryRows bundles the session-memory tables for pack transport.
type MemoryRows struct {
	Messages  []*MessageRecord
	Facts     []*FactRecord
	Summaries []*SummaryRecord
	Events    []*MemoryEventRecord
}
