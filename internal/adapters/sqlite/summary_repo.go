package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/steward/internal/ports/secondary"
)

// DefaultScope is the summary lineage used when a caller does not name one.
const DefaultScope = "rolling"

// SummaryRepository implements secondary.SummaryRepository with SQLite.
type SummaryRepository struct {
	db *sql.DB
}

// NewSummaryRepository creates a new SQLite summary repository.
func NewSummaryRepository(conn *sql.DB) *SummaryRepository {
	return &SummaryRepository{db: conn}
}

// Upsert updates the summary for (session, namespace, scope) in place when
// one exists, otherwise inserts. At most one row per triple is current.
func (r *SummaryRepository) Upsert(ctx context.Context, summary *secondary.SummaryRecord) (int64, error) {
	scope := summary.Scope
	if scope == "" {
		scope = DefaultScope
	}

	ts := summary.Timestamp
	if ts == "" {
		ts = nowRFC3339()
	}

	var existingID int64
	err := r.db.QueryRowContext(ctx,
		"SELECT id FROM summaries WHERE session_id = ? AND namespace = ? AND scope = ?",
		summary.SessionID, summary.Namespace, scope,
	).Scan(&existingID)

	if err == nil {
		_, err = r.db.ExecContext(ctx,
			"UPDATE summaries SET summary_text = ?, ts = ? WHERE id = ?",
			summary.Text, ts, existingID,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to update summary: %w", err)
		}
		return existingID, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to look up summary: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO summaries (session_id, namespace, summary_text, ts, scope) VALUES (?, ?, ?, ?, ?)",
		summary.SessionID, summary.Namespace, summary.Text, ts, scope,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert summary: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get summary id: %w", err)
	}

	return id, nil
}

// Get returns the current summary for (session, namespace, scope), or nil.
func (r *SummaryRepository) Get(ctx context.Context, sessionID, namespace, scope string) (*secondary.SummaryRecord, error) {
	if scope == "" {
		scope = DefaultScope
	}

	var summary secondary.SummaryRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT id, session_id, namespace, summary_text, ts, scope FROM summaries "+
			"WHERE session_id = ? AND namespace = ? AND scope = ? ORDER BY id DESC LIMIT 1",
		sessionID, namespace, scope,
	).Scan(&summary.ID, &summary.SessionID, &summary.Namespace, &summary.Text, &summary.Timestamp, &summary.Scope)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}

	return &summary, nil
}

// Purge deletes summaries in the namespace ("" = all).
func (r *SummaryRepository) Purge(ctx context.Context, namespace string) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if namespace != "" {
		res, err = r.db.ExecContext(ctx, "DELETE FROM summaries WHERE namespace = ?", namespace)
	} else {
		res, err = r.db.ExecContext(ctx, "DELETE FROM summaries")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to purge summaries: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged summaries: %w", err)
	}

	return deleted, nil
}

// Ensure SummaryRepository implements the interface
var _ secondary.SummaryRepository = (*SummaryRepository)(nil)
