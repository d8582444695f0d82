// Package secondary defines the secondary ports (driven adapters) for the
// application. These are the interfaces through which the application drives
// the embedded stores.
package secondary

import "context"

// CacheRepository defines the secondary port for the derived cache store.
//
// The cache is a queryable projection of canonical state plus an append-only
// audit-event log. It is written to only by the reconciliation engine (and
// by pack import, which appends events); every derived row is fully
// replaceable from canonical documents.
type CacheRepository interface {
	// GetSnapshot returns the value for a snapshot key, or "" when the key
	// has never been set.
	GetSnapshot(ctx context.Context, key string) (string, error)

	// SetSnapshot stores a snapshot key/value, overwriting any prior value.
	SetSnapshot(ctx context.Context, key, value string) error

	// ReplaceDerived atomically replaces the workers, tasks, and approvals
	// tables with the given rows, stores the canonical hash and ingestion
	// timestamp snapshots, and appends one reconcile audit event. Either
	// every step is visible or none is.
	ReplaceDerived(ctx context.Context, snap DerivedSnapshot) error

	// TaskCountsByStatus returns the number of tasks per status.
	TaskCountsByStatus(ctx context.Context) (map[string]int, error)

	// TasksByStatus returns the tasks currently in the given status.
	TasksByStatus(ctx context.Context, status string) ([]*TaskRecord, error)

	// PendingApprovals returns approvals still in status pending, the only
	// status that participates in blocking logic.
	PendingApprovals(ctx context.Context) ([]*ApprovalRecord, error)

	// AppendEvent appends one audit event. Events are never overwritten or
	// deleted by reconciliation.
	AppendEvent(ctx context.Context, actor, eventType string, payload map[string]any) error

	// Events returns all audit events in insertion order.
	Events(ctx context.Context) ([]*EventRecord, error)

	// ImportEvents appends the given events in one transaction and returns
	// the number inserted.
	ImportEvents(ctx context.Context, events []*EventRecord) (int, error)

	// ExportDerived returns the full contents of the derived tables.
	ExportDerived(ctx context.Context) (*DerivedExport, error)

	// Reset drops and recreates the entire cache schema, discarding all
	// rows including audit events. Used by rehydration only.
	Reset(ctx context.Context) error
}

// DerivedSnapshot carries one reconciliation's worth of derived rows plus
// the gate metadata stored alongside them.
type DerivedSnapshot struct {
	Workers       []*WorkerRecord
	Tasks         []*TaskRecord
	Approvals     []*ApprovalRecord
	CanonicalHash string
	IngestedAt    string
}

// DerivedExport is the full cache contents, used by pack export: every
// derived table, the audit-event log, and the canonical hash the derived
// rows were ingested under ("" when the cache has never been reconciled).
type DerivedExport struct {
	Workers       []*WorkerRecord
	Tasks         []*TaskRecord
	Approvals     []*ApprovalRecord
	Events        []*EventRecord
	CanonicalHash string
}

// WorkerRecord represents a worker as stored in the cache.
type WorkerRecord struct {
	ID         string
	RoleID     string
	Title      string
	Department string
	Provider   string
	Model      string
	ReportsTo  string // weak reference to another worker's role id, not enforced
	Authority  string // "read" or "write"
}

// TaskRecord represents a task as stored in the cache.
type TaskRecord struct {
	ID               string
	Title            string
	Status           string
	OwnerRole        string
	RequiresApproval []string // serialized as JSON in the store
	UpdatedAt        string
}

// ApprovalRecord represents an approval-log row as stored in the cache.
type ApprovalRecord struct {
	ID         int64
	TaskID     string // weak reference to a task id
	Type       string
	Status     string // pending | approved | rejected
	ApprovedBy string
	Timestamp  string
}

// EventRecord is one append-only audit event.
type EventRecord struct {
	ID        int64
	Timestamp string
	Actor     string
	Type      string
	Payload   map[string]any
}

// Snapshot keys maintained by the reconciliation engine.
const (
	SnapshotCanonicalHash  = "canonical_hash"
	SnapshotLastIngestedTS = "last_ingested_ts"
)
