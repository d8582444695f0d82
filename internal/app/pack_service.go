package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/example/steward/internal/canonical"
	"github.com/example/steward/internal/config"
	"github.com/example/steward/internal/pack"
	"github.com/example/steward/internal/ports/primary"
	"github.com/example/steward/internal/ports/secondary"
)

// PackServiceImpl implements the PackService interface. It orchestrates the
// pack codec against the two stores; a pack that fails validation never
// reaches either store.
type PackServiceImpl struct {
	paths     config.Paths
	cacheRepo secondary.CacheRepository
	memStore  secondary.MemoryPackStore
	reconcile primary.ReconcileService
}

// NewPackService creates a new PackService with injected dependencies.
func NewPackService(
	paths config.Paths,
	cacheRepo secondary.CacheRepository,
	memStore secondary.MemoryPackStore,
	reconcile primary.ReconcileService,
) *PackServiceImpl {
	return &PackServiceImpl{
		paths:     paths,
		cacheRepo: cacheRepo,
		memStore:  memStore,
		reconcile: reconcile,
	}
}

// ExportCachePack exports the audit-event log and derived state as a cache
// pack. An empty destination defaults to a timestamped directory under the
// pack cache. Returns the pack path.
func (s *PackServiceImpl) ExportCachePack(ctx context.Context, destination string) (string, error) {
	if destination == "" {
		destination = filepath.Join(s.paths.PackCacheDir(),
			fmt.Sprintf("cache_pack_%s", time.Now().UTC().Format("20060102_150405")))
	}

	export, err := s.cacheRepo.ExportDerived(ctx)
	if err != nil {
		return "", err
	}

	return pack.WriteCachePack(destination, s.paths.PackCacheDir(), export)
}

// ImportCachePack imports a cache pack. Events are always appended; the
// derived tables are never taken from the pack, because canonical documents
// remain the source of truth. After the event append the cache is
// reconciled from canonical state, so derived rows match the local project
// whether or not the pack's canonical hash agrees. Returns a human-readable
// result.
func (s *PackServiceImpl) ImportCachePack(ctx context.Context, source string) (string, error) {
	export, manifest, err := pack.ReadCachePack(source, s.paths.PackCacheDir())
	if err != nil {
		return "", err
	}

	imported, err := s.cacheRepo.ImportEvents(ctx, export.Events)
	if err != nil {
		return "", err
	}

	currentHash, err := canonical.ComputeHash(s.paths.StateDir())
	if err != nil {
		return "", fmt.Errorf("failed to hash canonical state: %w", err)
	}
	derivedCompatible := manifest.CanonicalHash != "" && manifest.CanonicalHash == currentHash

	if _, err := s.reconcile.Reconcile(ctx); err != nil {
		return "", err
	}

	if err := s.cacheRepo.AppendEvent(ctx, "system", "import_memory", map[string]any{
		"source":           source,
		"events_imported":  imported,
		"derived_imported": derivedCompatible,
	}); err != nil {
		return "", err
	}

	derivedNote := "skipped (reconciled from canonical)"
	if derivedCompatible {
		derivedNote = "imported (schema match)"
	}

	return fmt.Sprintf(
		"Imported %d events from cache pack.\nDerived state: %s.\nCanonical YAML remains source of truth.",
		imported, derivedNote,
	), nil
}

// ExportSessionPack exports session memory as a portable pack, optionally
// filtered to the given namespaces. Returns the pack path.
func (s *PackServiceImpl) ExportSessionPack(ctx context.Context, destination string, namespaces []string) (string, error) {
	if destination == "" {
		destination = filepath.Join(s.paths.PackCacheDir(),
			fmt.Sprintf("session_pack_%s", time.Now().UTC().Format("20060102_150405")))
	}

	rows, err := s.memStore.ExportRows(ctx, namespaces)
	if err != nil {
		return "", err
	}

	return pack.WriteSessionPack(destination, s.paths.PackCacheDir(), rows, namespaces)
}

// ImportSessionPack imports a session memory pack append-only and returns
// per-table inserted counts. The pack is fully read and validated before
// any row is written.
func (s *PackServiceImpl) ImportSessionPack(ctx context.Context, source string) (map[string]int, error) {
	rows, manifest, err := pack.ReadSessionPack(source, s.paths.PackCacheDir())
	if err != nil {
		return nil, err
	}
	if manifest.Type != "" && manifest.Type != pack.TypeSessionMemory {
		return nil, fmt.Errorf("%w: pack type %q is not a session memory pack", pack.ErrUnsupportedVersion, manifest.Type)
	}

	return s.memStore.ImportRows(ctx, rows)
}

// Ensure PackServiceImpl implements the interface
var _ primary.PackService = (*PackServiceImpl)(nil)
