package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/steward/internal/ports/secondary"
)

// DefaultImportance is the mid-range importance assigned to facts that do
// not specify one.
const DefaultImportance = 5

// FactRepository implements secondary.FactRepository with SQLite.
type FactRepository struct {
	db *sql.DB
}

// NewFactRepository creates a new SQLite fact repository.
func NewFactRepository(conn *sql.DB) *FactRepository {
	return &FactRepository{db: conn}
}

// Insert persists a fact and returns its row id.
func (r *FactRepository) Insert(ctx context.Context, fact *secondary.FactRecord) (int64, error) {
	tagsJSON, err := marshalTags(fact.Tags)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal fact tags: %w", err)
	}

	importance := fact.Importance
	if importance == 0 {
		importance = DefaultImportance
	}

	var supersedes any
	if fact.SupersedesID != 0 {
		supersedes = fact.SupersedesID
	}

	ts := fact.Timestamp
	if ts == "" {
		ts = nowRFC3339()
	}

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO facts (session_id, namespace, fact_text, ts, importance, tags_json, supersedes_id) VALUES (?, ?, ?, ?, ?, ?, ?)",
		fact.SessionID, fact.Namespace, fact.Text, ts, importance, tagsJSON, supersedes,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert fact: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get fact id: %w", err)
	}

	return id, nil
}

// Active returns non-superseding facts by importance descending, then
// recency descending. Rows that carry a supersedes_id are replacement
// markers and are excluded.
func (r *FactRepository) Active(ctx context.Context, sessionID, namespace string, limit int) ([]*secondary.FactRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, session_id, namespace, fact_text, ts, importance, tags_json, supersedes_id FROM facts "+
			"WHERE session_id = ? AND namespace = ? AND supersedes_id IS NULL "+
			"ORDER BY importance DESC, id DESC LIMIT ?",
		sessionID, namespace, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list active facts: %w", err)
	}
	defer rows.Close()

	return scanFacts(rows)
}

// Count returns the number of active facts in a session/namespace.
func (r *FactRepository) Count(ctx context.Context, sessionID, namespace string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM facts WHERE session_id = ? AND namespace = ? AND supersedes_id IS NULL",
		sessionID, namespace,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count facts: %w", err)
	}
	return count, nil
}

// PurgeSuperseded removes facts marked as superseding an older fact.
func (r *FactRepository) PurgeSuperseded(ctx context.Context, sessionID, namespace string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM facts WHERE session_id = ? AND namespace = ? AND supersedes_id IS NOT NULL",
		sessionID, namespace,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge superseded facts: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged facts: %w", err)
	}

	return deleted, nil
}

// Purge deletes facts matching the filter and returns the count.
func (r *FactRepository) Purge(ctx context.Context, filter secondary.PurgeFilter) (int64, error) {
	query := "DELETE FROM facts WHERE 1=1"
	args := []any{}

	if filter.Namespace != "" {
		query += " AND namespace = ?"
		args = append(args, filter.Namespace)
	}
	if filter.OlderThan != "" {
		query += " AND ts < ?"
		args = append(args, filter.OlderThan)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to purge facts: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged facts: %w", err)
	}

	return deleted, nil
}

func scanFacts(rows *sql.Rows) ([]*secondary.FactRecord, error) {
	var facts []*secondary.FactRecord
	for rows.Next() {
		var (
			fact       secondary.FactRecord
			tagsJSON   sql.NullString
			supersedes sql.NullInt64
		)
		if err := rows.Scan(&fact.ID, &fact.SessionID, &fact.Namespace, &fact.Text, &fact.Timestamp, &fact.Importance, &tagsJSON, &supersedes); err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}
		fact.Tags = unmarshalTags(tagsJSON)
		fact.SupersedesID = supersedes.Int64
		facts = append(facts, &fact)
	}
	return facts, rows.Err()
}

// Ensure FactRepository implements the interface
var _ secondary.FactRepository = (*FactRepository)(nil)
