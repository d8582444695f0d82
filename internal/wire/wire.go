// Package wire provides dependency injection for the steward application.
// A Container owns the store handles for one project root and builds every
// service from them.
package wire

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/example/steward/internal/adapters/sqlite"
	"github.com/example/steward/internal/app"
	"github.com/example/steward/internal/config"
	"github.com/example/steward/internal/db"
	"github.com/example/steward/internal/ports/primary"
	"github.com/example/steward/internal/redact"
)

// Container holds the wired services and the store handles they share.
// One CLI invocation builds one container; Close releases both databases.
type Container struct {
	Paths  config.Paths
	Config *config.Config

	Reconcile primary.ReconcileService
	Status    primary.StatusService
	Memory    primary.MemoryService
	Packs     primary.PackService
	Workers   primary.WorkerStateService

	cacheDB  *sql.DB
	memoryDB *sql.DB
}

// NewContainer opens the cache and memory stores under the project root and
// wires all services. The memory store gets FTS tables when the SQLite build
// supports FTS5; search degrades to substring matching otherwise.
func NewContainer(projectRoot string) (*Container, error) {
	paths := config.Paths{ProjectRoot: projectRoot}

	cfg, err := config.LoadConfig(projectRoot)
	if err != nil {
		return nil, err
	}

	cacheDB, err := db.Open(paths.CacheDBPath(), db.CacheSchemaSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache store: %w", err)
	}
	if err := db.CheckTables(cacheDB, "workers", "tasks", "approvals", "events", "snapshots"); err != nil {
		cacheDB.Close()
		return nil, fmt.Errorf("cache store at %s: %w", paths.CacheDBPath(), err)
	}

	memoryDB, err := db.Open(paths.MemoryDBPath(), db.MemorySchemaSQL)
	if err != nil {
		cacheDB.Close()
		return nil, fmt.Errorf("failed to open memory store: %w", err)
	}
	if err := db.CheckTables(memoryDB, "messages", "facts", "summaries", "events", "meta"); err != nil {
		cacheDB.Close()
		memoryDB.Close()
		return nil, fmt.Errorf("memory store at %s: %w", paths.MemoryDBPath(), err)
	}
	ftsEnabled, err := db.EnsureFTS(memoryDB)
	if err != nil {
		cacheDB.Close()
		memoryDB.Close()
		return nil, err
	}

	metaRepo := sqlite.NewMetaRepository(memoryDB)
	if err := metaRepo.Set(context.Background(), "fts_enabled", strconv.FormatBool(ftsEnabled)); err != nil {
		cacheDB.Close()
		memoryDB.Close()
		return nil, err
	}

	cacheRepo := sqlite.NewCacheRepository(cacheDB)
	messageRepo := sqlite.NewMessageRepository(memoryDB)
	factRepo := sqlite.NewFactRepository(memoryDB)
	summaryRepo := sqlite.NewSummaryRepository(memoryDB)
	memoryEventRepo := sqlite.NewMemoryEventRepository(memoryDB)
	searchIndex := sqlite.NewSearchIndex(memoryDB)
	packStore := sqlite.NewMemoryPackStore(memoryDB)

	filter := redact.NewFilter(cfg.RedactDenylist)

	reconcileService := app.NewReconcileService(paths, cacheRepo)
	statusService := app.NewStatusService(paths, reconcileService)
	memoryService := app.NewMemoryService(messageRepo, factRepo, summaryRepo, memoryEventRepo, searchIndex, filter)
	packService := app.NewPackService(paths, cacheRepo, packStore, reconcileService)
	workerService := app.NewWorkerStateService(paths)

	return &Container{
		Paths:     paths,
		Config:    cfg,
		Reconcile: reconcileService,
		Status:    statusService,
		Memory:    memoryService,
		Packs:     packService,
		Workers:   workerService,
		cacheDB:   cacheDB,
		memoryDB:  memoryDB,
	}, nil
}

// Close releases the store handles.
func (c *Container) Close() error {
	var firstErr error
	if err := c.cacheDB.Close(); err != nil {
		firstErr = err
	}
	if err := c.memoryDB.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
