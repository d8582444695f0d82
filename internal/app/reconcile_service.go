// Package app contains the application services driving the canonical state
// engine, the session memory store, and pack export/import.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/steward/internal/canonical"
	"github.com/example/steward/internal/config"
	"github.com/example/steward/internal/ports/primary"
	"github.com/example/steward/internal/ports/secondary"
)

// ReconcileServiceImpl implements the ReconcileService interface.
type ReconcileServiceImpl struct {
	paths     config.Paths
	cacheRepo secondary.CacheRepository
}

// NewReconcileService creates a new ReconcileService with injected dependencies.
func NewReconcileService(paths config.Paths, cacheRepo secondary.CacheRepository) *ReconcileServiceImpl {
	return &ReconcileServiceImpl{
		paths:     paths,
		cacheRepo: cacheRepo,
	}
}

// Reconcile brings the derived cache in sync with the canonical documents.
// The content hash over the canonical files gates the work: when it matches
// the stored snapshot the cache is already current and nothing is written.
// Returns true when the cache changed.
func (s *ReconcileServiceImpl) Reconcile(ctx context.Context) (bool, error) {
	stateDir := s.paths.StateDir()

	hash, err := canonical.ComputeHash(stateDir)
	if err != nil {
		return false, fmt.Errorf("failed to hash canonical state: %w", err)
	}

	stored, err := s.cacheRepo.GetSnapshot(ctx, secondary.SnapshotCanonicalHash)
	if err != nil {
		return false, err
	}
	if stored == hash {
		return false, nil
	}

	state, err := canonical.Load(stateDir)
	if err != nil {
		return false, fmt.Errorf("failed to load canonical state: %w", err)
	}

	ingestedAt := time.Now().UTC().Format(time.RFC3339)
	snap := secondary.DerivedSnapshot{
		Workers:       canonical.IngestTeam(state.Team),
		Tasks:         canonical.IngestBoard(state.Board, ingestedAt),
		Approvals:     canonical.IngestApprovals(state.Approvals),
		CanonicalHash: hash,
		IngestedAt:    ingestedAt,
	}

	if err := s.cacheRepo.ReplaceDerived(ctx, snap); err != nil {
		return false, err
	}

	return true, nil
}

// Rehydrate discards the entire cache, audit events included, and rebuilds
// it from the canonical documents. The recovery path for a corrupt or
// tampered cache.
func (s *ReconcileServiceImpl) Rehydrate(ctx context.Context) error {
	if err := s.cacheRepo.Reset(ctx); err != nil {
		return err
	}
	if _, err := s.Reconcile(ctx); err != nil {
		return fmt.Errorf("failed to rebuild cache: %w", err)
	}
	return nil
}

// Ensure ReconcileServiceImpl implements the interface
var _ primary.ReconcileService = (*ReconcileServiceImpl)(nil)
