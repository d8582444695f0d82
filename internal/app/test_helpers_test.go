package app_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/steward/internal/adapters/sqlite"
	"github.com/example/steward/internal/app"
	"github.com/example/steward/internal/canonical"
	"github.com/example/steward/internal/config"
	"github.com/example/steward/internal/db"
	"github.com/example/steward/internal/redact"
)

// testProject is a throwaway project root with open cache and memory stores.
type testProject struct {
	paths    config.Paths
	cacheDB  *sql.DB
	memoryDB *sql.DB
}

// newTestProject creates a project directory with canonical state and both
// stores opened against real files, the way the CLI wires them.
func newTestProject(t *testing.T, state *canonical.State) *testProject {
	t.Helper()

	paths := config.Paths{ProjectRoot: t.TempDir()}

	if state != nil {
		if err := canonical.Save(paths.StateDir(), state); err != nil {
			t.Fatalf("failed to write canonical state: %v", err)
		}
	}

	cacheDB, err := db.Open(paths.CacheDBPath(), db.CacheSchemaSQL)
	if err != nil {
		t.Fatalf("failed to open cache store: %v", err)
	}
	t.Cleanup(func() { cacheDB.Close() })

	memoryDB, err := db.Open(paths.MemoryDBPath(), db.MemorySchemaSQL)
	if err != nil {
		t.Fatalf("failed to open memory store: %v", err)
	}
	t.Cleanup(func() { memoryDB.Close() })

	return &testProject{paths: paths, cacheDB: cacheDB, memoryDB: memoryDB}
}

// sampleState is a small but fully populated canonical document set.
func sampleState() *canonical.State {
	return &canonical.State{
		Team: canonical.TeamDoc{
			Orchestrator: canonical.Orchestrator{RoleID: "lead", Title: "Lead"},
			Roles: []canonical.Role{
				{
					RoleID: "developer", Title: "Developer", Department: "engineering", ReportsTo: "lead",
					Workers: []canonical.RoleWorker{{ID: "dev-1", Provider: "acme", Model: "m1"}},
				},
			},
		},
		Board: canonical.BoardDoc{
			Columns: []string{"backlog", "in_progress", "done"},
			Tasks: []canonical.BoardTask{
				{ID: "T-1", Title: "Design", Status: "done", OwnerRole: "developer"},
				{ID: "T-2", Title: "Build", Status: "in_progress", OwnerRole: "developer", RequiresApproval: []string{"review"}},
			},
		},
		Approvals: canonical.ApprovalsDoc{
			ApprovalLog: []canonical.ApprovalEntry{
				{TaskID: "T-2", TriggerID: "review", Status: "pending"},
			},
		},
	}
}

// newMemoryService wires a MemoryService over the test project's memory
// store with an empty denylist.
func newMemoryService(p *testProject) *app.MemoryServiceImpl {
	return app.NewMemoryService(
		sqlite.NewMessageRepository(p.memoryDB),
		sqlite.NewFactRepository(p.memoryDB),
		sqlite.NewSummaryRepository(p.memoryDB),
		sqlite.NewMemoryEventRepository(p.memoryDB),
		sqlite.NewSearchIndex(p.memoryDB),
		redact.NewFilter(nil),
	)
}
