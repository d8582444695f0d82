package primary

import (
	"context"

	"github.com/example/steward/internal/ports/secondary"
)

// MemoryService exposes session-memory operations. All content passes
// through redaction before it reaches the store; redaction is a write-path
// gate, not an optional post-process.
type MemoryService interface {
	// Remember redacts and stores a message, returning its row id.
	Remember(ctx context.Context, sessionID, namespace, role, content string, metadata map[string]any) (int64, error)

	// Recall returns up to limit recent messages, oldest first.
	Recall(ctx context.Context, sessionID, namespace string, limit int) ([]*secondary.MessageRecord, error)

	// RecordFact redacts and stores a fact, returning its row id.
	RecordFact(ctx context.Context, fact FactInput) (int64, error)

	// ActiveFacts returns active facts by importance then recency.
	ActiveFacts(ctx context.Context, sessionID, namespace string, limit int) ([]*secondary.FactRecord, error)

	// WriteSummary redacts and upserts the summary for (session, namespace,
	// scope), returning the row id.
	WriteSummary(ctx context.Context, sessionID, namespace, scope, text string) (int64, error)

	// Summary returns the current summary for the triple, or nil.
	Summary(ctx context.Context, sessionID, namespace, scope string) (*secondary.SummaryRecord, error)

	// SearchMessages searches message content.
	SearchMessages(ctx context.Context, sessionID, namespace, query string, limit int) ([]*secondary.MessageRecord, error)

	// SearchFacts searches active fact text.
	SearchFacts(ctx context.Context, sessionID, namespace, query string, limit int) ([]*secondary.FactRecord, error)

	// Purge removes session memory by namespace and/or age and returns
	// per-table deleted counts.
	Purge(ctx context.Context, req PurgeRequest) (*PurgeResult, error)

	// PurgeSuperseded garbage-collects superseded facts.
	PurgeSuperseded(ctx context.Context, sessionID, namespace string) (int64, error)
}

// FactInput carries a new fact. Importance 0 defaults to 5; SupersedesID 0
// supersedes nothing.
type FactInput struct {
	SessionID    string
	Namespace    string
	Text         string
	Importance   int
	Tags         []string
	SupersedesID int64
}

// PurgeRequest narrows a purge. Zero values match everything; summaries
// ignore the age cutoff (they carry upsert semantics, not retention).
type PurgeRequest struct {
	Namespace     string
	OlderThanDays int
}

// PurgeResult reports deleted row counts per table.
type PurgeResult struct {
	Messages  int64
	Facts     int64
	Summaries int64
}
