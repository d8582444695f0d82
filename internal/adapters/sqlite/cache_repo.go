// Package sqlite contains SQLite implementations of the repository
// interfaces for both the derived cache and the session memory store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/steward/internal/db"
	"github.com/example/steward/internal/ports/secondary"
)

// CacheRepository implements secondary.CacheRepository with SQLite.
type CacheRepository struct {
	db *sql.DB
}

// NewCacheRepository creates a new SQLite cache repository.
func NewCacheRepository(conn *sql.DB) *CacheRepository {
	return &CacheRepository{db: conn}
}

// GetSnapshot returns the value for a snapshot key, or "" when unset.
func (r *CacheRepository) GetSnapshot(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		"SELECT value FROM snapshots WHERE key = ?", key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get snapshot %s: %w", key, err)
	}
	return value, nil
}

// SetSnapshot stores a snapshot key/value, overwriting any prior value.
func (r *CacheRepository) SetSnapshot(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO snapshots (key, value) VALUES (?, ?)", key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set snapshot %s: %w", key, err)
	}
	return nil
}

// ReplaceDerived atomically replaces the derived tables, stores the gate
// snapshots, and appends one reconcile audit event. Delete-then-insert, not
// upsert: stale rows from removed canonical entries must disappear.
func (r *CacheRepository) ReplaceDerived(ctx context.Context, snap secondary.DerivedSnapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin reconcile transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"workers", "tasks", "approvals"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, w := range snap.Workers {
		_, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO workers (id, role_id, title, department, provider, model, reports_to, authority) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			w.ID, w.RoleID, w.Title, w.Department, w.Provider, w.Model, w.ReportsTo, w.Authority,
		)
		if err != nil {
			return fmt.Errorf("failed to insert worker %s: %w", w.ID, err)
		}
	}

	for _, t := range snap.Tasks {
		approvalsJSON, err := json.Marshal(t.RequiresApproval)
		if err != nil {
			return fmt.Errorf("failed to marshal approvals for task %s: %w", t.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO tasks (id, title, status, owner_role, requires_approval_json, updated_ts) VALUES (?, ?, ?, ?, ?, ?)",
			t.ID, t.Title, t.Status, t.OwnerRole, string(approvalsJSON), t.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert task %s: %w", t.ID, err)
		}
	}

	for _, a := range snap.Approvals {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO approvals (task_id, approval_type, status, approved_by, ts) VALUES (?, ?, ?, ?, ?)",
			a.TaskID, a.Type, a.Status, a.ApprovedBy, a.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("failed to insert approval for task %s: %w", a.TaskID, err)
		}
	}

	for _, kv := range [][2]string{
		{secondary.SnapshotCanonicalHash, snap.CanonicalHash},
		{secondary.SnapshotLastIngestedTS, snap.IngestedAt},
	} {
		_, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO snapshots (key, value) VALUES (?, ?)", kv[0], kv[1],
		)
		if err != nil {
			return fmt.Errorf("failed to store snapshot %s: %w", kv[0], err)
		}
	}

	payload, err := json.Marshal(map[string]any{"hash": snap.CanonicalHash})
	if err != nil {
		return fmt.Errorf("failed to marshal reconcile payload: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO events (ts, actor, type, payload_json) VALUES (?, ?, ?, ?)",
		snap.IngestedAt, "system", "reconcile", string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to record reconcile event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reconcile transaction: %w", err)
	}

	return nil
}

// TaskCountsByStatus returns the number of tasks per status.
func (r *CacheRepository) TaskCountsByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM tasks GROUP BY status",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan task count: %w", err)
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

// TasksByStatus returns the tasks currently in the given status.
func (r *CacheRepository) TasksByStatus(ctx context.Context, status string) ([]*secondary.TaskRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, title, status, owner_role, requires_approval_json, updated_ts FROM tasks WHERE status = ? ORDER BY id",
		status,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*secondary.TaskRecord
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// PendingApprovals returns approvals still in status pending.
func (r *CacheRepository) PendingApprovals(ctx context.Context) ([]*secondary.ApprovalRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, task_id, approval_type, status, approved_by, ts FROM approvals WHERE status = 'pending' ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending approvals: %w", err)
	}
	defer rows.Close()

	return scanApprovals(rows)
}

// AppendEvent appends one audit event.
func (r *CacheRepository) AppendEvent(ctx context.Context, actor, eventType string, payload map[string]any) error {
	payloadJSON, err := marshalPayload(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO events (ts, actor, type, payload_json) VALUES (?, ?, ?, ?)",
		nowRFC3339(), actor, eventType, payloadJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// Events returns all audit events in insertion order.
func (r *CacheRepository) Events(ctx context.Context) ([]*secondary.EventRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, ts, actor, type, payload_json FROM events ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*secondary.EventRecord
	for rows.Next() {
		var (
			event       secondary.EventRecord
			payloadJSON sql.NullString
		)
		if err := rows.Scan(&event.ID, &event.Timestamp, &event.Actor, &event.Type, &payloadJSON); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		event.Payload = unmarshalPayload(payloadJSON)
		events = append(events, &event)
	}

	return events, rows.Err()
}

// ImportEvents appends the given events in one transaction.
func (r *CacheRepository) ImportEvents(ctx context.Context, events []*secondary.EventRecord) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin import transaction: %w", err)
	}
	defer tx.Rollback()

	for _, ev := range events {
		payloadJSON, err := marshalPayload(ev.Payload)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal event payload: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO events (ts, actor, type, payload_json) VALUES (?, ?, ?, ?)",
			ev.Timestamp, ev.Actor, ev.Type, payloadJSON,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to import event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit event import: %w", err)
	}

	return len(events), nil
}

// ExportDerived returns the full cache contents: derived tables, the audit
// event log, and the canonical hash snapshot.
func (r *CacheRepository) ExportDerived(ctx context.Context) (*secondary.DerivedExport, error) {
	export := &secondary.DerivedExport{}

	hash, err := r.GetSnapshot(ctx, secondary.SnapshotCanonicalHash)
	if err != nil {
		return nil, err
	}
	export.CanonicalHash = hash

	export.Events, err = r.Events(ctx)
	if err != nil {
		return nil, err
	}

	workerRows, err := r.db.QueryContext(ctx,
		"SELECT id, role_id, title, department, provider, model, reports_to, authority FROM workers ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to export workers: %w", err)
	}
	defer workerRows.Close()
	for workerRows.Next() {
		var (
			w                                     secondary.WorkerRecord
			title, dept, provider, model, reports sql.NullString
			authority                             sql.NullString
		)
		if err := workerRows.Scan(&w.ID, &w.RoleID, &title, &dept, &provider, &model, &reports, &authority); err != nil {
			return nil, fmt.Errorf("failed to scan worker: %w", err)
		}
		w.Title = title.String
		w.Department = dept.String
		w.Provider = provider.String
		w.Model = model.String
		w.ReportsTo = reports.String
		w.Authority = authority.String
		export.Workers = append(export.Workers, &w)
	}
	if err := workerRows.Err(); err != nil {
		return nil, err
	}

	taskRows, err := r.db.QueryContext(ctx,
		"SELECT id, title, status, owner_role, requires_approval_json, updated_ts FROM tasks ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to export tasks: %w", err)
	}
	defer taskRows.Close()
	for taskRows.Next() {
		task, err := scanTask(taskRows)
		if err != nil {
			return nil, err
		}
		export.Tasks = append(export.Tasks, task)
	}
	if err := taskRows.Err(); err != nil {
		return nil, err
	}

	approvalRows, err := r.db.QueryContext(ctx,
		"SELECT id, task_id, approval_type, status, approved_by, ts FROM approvals ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to export approvals: %w", err)
	}
	defer approvalRows.Close()
	export.Approvals, err = scanApprovals(approvalRows)
	if err != nil {
		return nil, err
	}

	return export, nil
}

// Reset drops and recreates the cache schema, discarding all rows.
func (r *CacheRepository) Reset(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin reset transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"events", "workers", "tasks", "approvals", "snapshots"} {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("failed to drop %s: %w", table, err)
		}
	}
	if _, err := tx.ExecContext(ctx, db.CacheSchemaSQL); err != nil {
		return fmt.Errorf("failed to recreate cache schema: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(rows rowScanner) (*secondary.TaskRecord, error) {
	var (
		task          secondary.TaskRecord
		ownerRole     sql.NullString
		approvalsJSON sql.NullString
		updatedTS     sql.NullString
	)
	if err := rows.Scan(&task.ID, &task.Title, &task.Status, &ownerRole, &approvalsJSON, &updatedTS); err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	task.OwnerRole = ownerRole.String
	task.UpdatedAt = updatedTS.String
	if approvalsJSON.Valid && approvalsJSON.String != "" {
		if err := json.Unmarshal([]byte(approvalsJSON.String), &task.RequiresApproval); err != nil {
			return nil, fmt.Errorf("failed to parse approvals for task %s: %w", task.ID, err)
		}
	}
	return &task, nil
}

func scanApprovals(rows *sql.Rows) ([]*secondary.ApprovalRecord, error) {
	var approvals []*secondary.ApprovalRecord
	for rows.Next() {
		var (
			a                                  secondary.ApprovalRecord
			taskID, aType, status, by, aTimeTS sql.NullString
		)
		if err := rows.Scan(&a.ID, &taskID, &aType, &status, &by, &aTimeTS); err != nil {
			return nil, fmt.Errorf("failed to scan approval: %w", err)
		}
		a.TaskID = taskID.String
		a.Type = aType.String
		a.Status = status.String
		a.ApprovedBy = by.String
		a.Timestamp = aTimeTS.String
		approvals = append(approvals, &a)
	}
	return approvals, rows.Err()
}

func marshalPayload(payload map[string]any) (any, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func unmarshalPayload(payloadJSON sql.NullString) map[string]any {
	if !payloadJSON.Valid || payloadJSON.String == "" {
		return nil
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(payloadJSON.String), &payload); err != nil {
		return nil
	}
	return payload
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Ensure CacheRepository implements the interface
var _ secondary.CacheRepository = (*CacheRepository)(nil)
