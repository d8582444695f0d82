package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/steward/internal/ports/secondary"
)

// MemoryPackStore implements secondary.MemoryPackStore with SQLite. It is
// the pack codec's view of the memory store: bulk ordered reads for export
// and a single-transaction append for import.
type MemoryPackStore struct {
	db *sql.DB
}

// NewMemoryPackStore creates a new SQLite memory pack store.
func NewMemoryPackStore(conn *sql.DB) *MemoryPackStore {
	return &MemoryPackStore{db: conn}
}

// ExportRows returns all rows ordered by id, optionally filtered to the
// given namespaces. Events are always exported unfiltered.
func (r *MemoryPackStore) ExportRows(ctx context.Context, namespaces []string) (*secondary.MemoryRows, error) {
	nsFilter, nsArgs := namespaceFilter(namespaces)
	out := &secondary.MemoryRows{}

	msgRows, err := r.db.QueryContext(ctx,
		"SELECT id, session_id, namespace, role, content, ts, metadata_json FROM messages"+nsFilter+" ORDER BY id",
		nsArgs...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to export messages: %w", err)
	}
	defer msgRows.Close()
	if out.Messages, err = scanMessages(msgRows); err != nil {
		return nil, err
	}

	factRows, err := r.db.QueryContext(ctx,
		"SELECT id, session_id, namespace, fact_text, ts, importance, tags_json, supersedes_id FROM facts"+nsFilter+" ORDER BY id",
		nsArgs...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to export facts: %w", err)
	}
	defer factRows.Close()
	if out.Facts, err = scanFacts(factRows); err != nil {
		return nil, err
	}

	sumRows, err := r.db.QueryContext(ctx,
		"SELECT id, session_id, namespace, summary_text, ts, scope FROM summaries"+nsFilter+" ORDER BY id",
		nsArgs...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to export summaries: %w", err)
	}
	defer sumRows.Close()
	for sumRows.Next() {
		var s secondary.SummaryRecord
		if err := sumRows.Scan(&s.ID, &s.SessionID, &s.Namespace, &s.Text, &s.Timestamp, &s.Scope); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		out.Summaries = append(out.Summaries, &s)
	}
	if err := sumRows.Err(); err != nil {
		return nil, err
	}

	evRows, err := r.db.QueryContext(ctx,
		"SELECT id, ts, type, payload_json FROM events ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to export memory events: %w", err)
	}
	defer evRows.Close()
	for evRows.Next() {
		var (
			ev          secondary.MemoryEventRecord
			payloadJSON sql.NullString
		)
		if err := evRows.Scan(&ev.ID, &ev.Timestamp, &ev.Type, &payloadJSON); err != nil {
			return nil, fmt.Errorf("failed to scan memory event: %w", err)
		}
		ev.Payload = unmarshalPayload(payloadJSON)
		out.Events = append(out.Events, &ev)
	}

	return out, evRows.Err()
}

// ImportRows appends all rows in one transaction and returns per-table
// counts. A failure partway through leaves the store untouched.
func (r *MemoryPackStore) ImportRows(ctx context.Context, rows *secondary.MemoryRows) (map[string]int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin import transaction: %w", err)
	}
	defer tx.Rollback()

	counts := map[string]int{}

	for _, msg := range rows.Messages {
		metadataJSON, err := marshalPayload(msg.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message metadata: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO messages (session_id, namespace, role, content, ts, metadata_json) VALUES (?, ?, ?, ?, ?, ?)",
			msg.SessionID, msg.Namespace, msg.Role, msg.Content, msg.Timestamp, metadataJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to import message: %w", err)
		}
		counts["messages"]++
	}

	for _, fact := range rows.Facts {
		tagsJSON, err := marshalTags(fact.Tags)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal fact tags: %w", err)
		}
		var supersedes any
		if fact.SupersedesID != 0 {
			supersedes = fact.SupersedesID
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO facts (session_id, namespace, fact_text, ts, importance, tags_json, supersedes_id) VALUES (?, ?, ?, ?, ?, ?, ?)",
			fact.SessionID, fact.Namespace, fact.Text, fact.Timestamp, fact.Importance, tagsJSON, supersedes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to import fact: %w", err)
		}
		counts["facts"]++
	}

	for _, s := range rows.Summaries {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO summaries (session_id, namespace, summary_text, ts, scope) VALUES (?, ?, ?, ?, ?)",
			s.SessionID, s.Namespace, s.Text, s.Timestamp, s.Scope,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to import summary: %w", err)
		}
		counts["summaries"]++
	}

	for _, ev := range rows.Events {
		payloadJSON, err := marshalPayload(ev.Payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal memory event payload: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO events (ts, type, payload_json) VALUES (?, ?, ?)",
			ev.Timestamp, ev.Type, payloadJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to import memory event: %w", err)
		}
		counts["events"]++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}

	return counts, nil
}

func namespaceFilter(namespaces []string) (string, []any) {
	if len(namespaces) == 0 {
		return "", nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(namespaces)), ",")
	args := make([]any, len(namespaces))
	for i, ns := range namespaces {
		args[i] = ns
	}
	return " WHERE namespace IN (" + placeholders + ")", args
}

// Ensure MemoryPackStore implements the interface
var _ secondary.MemoryPackStore = (*MemoryPackStore)(nil)
