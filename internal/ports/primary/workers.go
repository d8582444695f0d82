package primary

import (
	"context"

	"github.com/example/steward/internal/workers"
)

// WorkerStateService manages durable worker state: the committed roster,
// per-worker checkpoints, and summaries. These files travel with the
// repository, so a worker can resume on a machine that has never seen the
// runtime directory.
type WorkerStateService interface {
	// Roster returns the committed worker roster, empty when none exists.
	Roster(ctx context.Context) ([]workers.RosterEntry, error)

	// SaveCheckpoint writes a markdown checkpoint for the worker and stamps
	// it in the roster. Returns the checkpoint id.
	SaveCheckpoint(ctx context.Context, workerID string, cp workers.Checkpoint) (string, error)

	// Resume returns the worker's most recent checkpoint, or nil.
	Resume(ctx context.Context, workerID string) (*workers.Checkpoint, error)

	// WorkerSummary returns the worker's summary markdown, or "" when the
	// worker has none.
	WorkerSummary(ctx context.Context, workerID string) (string, error)

	// SyncFromRuntime projects the runtime worker registry into the
	// committed roster and summaries. Returns a human-readable result.
	SyncFromRuntime(ctx context.Context) (string, error)
}
