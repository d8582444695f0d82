package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/example/steward/internal/config"
	"github.com/example/steward/internal/ports/primary"
	"github.com/example/steward/internal/workers"
)

// WorkerStateServiceImpl implements the WorkerStateService interface.
type WorkerStateServiceImpl struct {
	paths config.Paths
}

// NewWorkerStateService creates a new WorkerStateService with injected dependencies.
func NewWorkerStateService(paths config.Paths) *WorkerStateServiceImpl {
	return &WorkerStateServiceImpl{paths: paths}
}

// Roster returns the committed worker roster.
func (s *WorkerStateServiceImpl) Roster(ctx context.Context) ([]workers.RosterEntry, error) {
	return workers.LoadRoster(s.paths.WorkersDir())
}

// SaveCheckpoint writes a checkpoint for the worker.
func (s *WorkerStateServiceImpl) SaveCheckpoint(ctx context.Context, workerID string, cp workers.Checkpoint) (string, error) {
	return workers.WriteCheckpoint(s.paths.WorkersDir(), workerID, cp)
}

// Resume returns the worker's most recent checkpoint, or nil.
func (s *WorkerStateServiceImpl) Resume(ctx context.Context, workerID string) (*workers.Checkpoint, error) {
	return workers.LatestCheckpoint(s.paths.WorkersDir(), workerID)
}

// WorkerSummary returns the worker's summary markdown, or "".
func (s *WorkerStateServiceImpl) WorkerSummary(ctx context.Context, workerID string) (string, error) {
	return workers.LoadSummary(s.paths.WorkersDir(), workerID)
}

// registryDoc mirrors the runtime worker registry file.
type registryDoc struct {
	Workers []registryWorker `json:"workers"`
}

type registryWorker struct {
	WorkerID         string `json:"worker_id"`
	Role             string `json:"role"`
	Provider         string `json:"provider"`
	Model            string `json:"model"`
	Status           string `json:"status"`
	LastCheckpointID string `json:"last_checkpoint_id"`
}

// SyncFromRuntime projects the runtime worker registry into the committed
// roster and one summary file per worker.
func (s *WorkerStateServiceImpl) SyncFromRuntime(ctx context.Context) (string, error) {
	data, err := os.ReadFile(s.paths.WorkerRegistryPath())
	if os.IsNotExist(err) {
		return "No runtime worker registry found.", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read worker registry: %w", err)
	}

	var registry registryDoc
	if err := json.Unmarshal(data, &registry); err != nil {
		return "Failed to read runtime worker registry.", nil
	}
	if len(registry.Workers) == 0 {
		return "No workers in runtime registry.", nil
	}

	workersDir := s.paths.WorkersDir()
	entries := make([]workers.RosterEntry, 0, len(registry.Workers))
	for _, w := range registry.Workers {
		entries = append(entries, workers.RosterEntry{
			WorkerID:         w.WorkerID,
			Role:             w.Role,
			Provider:         w.Provider,
			Model:            w.Model,
			Status:           w.Status,
			LastCheckpointID: w.LastCheckpointID,
		})
	}
	if err := workers.WriteRoster(workersDir, entries); err != nil {
		return "", err
	}

	for _, w := range registry.Workers {
		if w.WorkerID == "" {
			continue
		}
		err := workers.WriteSummary(workersDir, w.WorkerID, workers.SummaryInput{
			Role:             w.Role,
			Provider:         w.Provider,
			Model:            w.Model,
			Status:           w.Status,
			LastCheckpointID: w.LastCheckpointID,
		})
		if err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("Synced %d worker(s) to canonical state.", len(registry.Workers)), nil
}

// Ensure WorkerStateServiceImpl implements the interface
var _ primary.WorkerStateService = (*WorkerStateServiceImpl)(nil)
