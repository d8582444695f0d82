// Package primary defines the primary ports (driving interfaces) consumed by
// the CLI layer. Each operation is a synchronous, bounded-latency call over
// local disk; none take interactive input.
package primary

import "context"

// ReconcileService keeps the derived cache consistent with canonical state.
type ReconcileService interface {
	// Reconcile compares the canonical content hash against the last
	// ingested hash and re-ingests atomically when they differ. Returns
	// true when the cache was updated, false when already in sync.
	Reconcile(ctx context.Context) (bool, error)

	// Rehydrate rebuilds the cache from zero: the schema is recreated empty
	// and canonical state re-ingested. All prior cache rows, audit events
	// included, are discarded.
	Rehydrate(ctx context.Context) error
}

// StatusService renders the project status report.
type StatusService interface {
	// RenderStatus reconciles, renders the terminal status report, and
	// refreshes STATUS.md alongside.
	RenderStatus(ctx context.Context) (string, error)
}
