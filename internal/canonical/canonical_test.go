package canonical_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/example/steward/internal/canonical"
)

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestLoad(t *testing.T) {
	t.Run("missing files load as empty documents", func(t *testing.T) {
		state, err := canonical.Load(t.TempDir())
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(state.Board.Tasks) != 0 || len(state.Team.Roles) != 0 {
			t.Errorf("empty dir loaded non-empty state: %+v", state)
		}
	})

	t.Run("parses all documents", func(t *testing.T) {
		dir := t.TempDir()
		writeDoc(t, dir, canonical.TeamFile, `
orchestrator:
  role_id: lead
  title: Lead
roles:
  - role_id: developer
    title: Developer
    department: engineering
    workers:
      - id: dev-1
        provider: acme
        model: m1
`)
		writeDoc(t, dir, canonical.BoardFile, `
columns: [backlog, in_progress, done]
tasks:
  - id: T-1
    title: First task
    status: backlog
`)
		writeDoc(t, dir, canonical.ApprovalsFile, `
approval_log:
  - task_id: T-1
    trigger_id: review
    status: pending
`)

		state, err := canonical.Load(dir)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if state.Team.Orchestrator.RoleID != "lead" {
			t.Errorf("orchestrator = %q, want lead", state.Team.Orchestrator.RoleID)
		}
		if len(state.Board.Columns) != 3 || len(state.Board.Tasks) != 1 {
			t.Errorf("board = %+v", state.Board)
		}
		if len(state.Approvals.ApprovalLog) != 1 {
			t.Errorf("approvals = %+v", state.Approvals)
		}
	})

	t.Run("unparseable document fails the load", func(t *testing.T) {
		dir := t.TempDir()
		writeDoc(t, dir, canonical.BoardFile, "columns: [unclosed")

		if _, err := canonical.Load(dir); err == nil {
			t.Fatal("Load succeeded on malformed YAML, want error")
		}
	})
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")

	in := &canonical.State{
		Board: canonical.BoardDoc{
			Columns: []string{"backlog", "done"},
			Tasks:   []canonical.BoardTask{{ID: "T-9", Title: "Round trip", Status: "done"}},
		},
	}
	if err := canonical.Save(dir, in); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	out, err := canonical.Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(out.Board.Tasks) != 1 || out.Board.Tasks[0].ID != "T-9" {
		t.Errorf("round trip board = %+v", out.Board)
	}
}

func TestComputeHash(t *testing.T) {
	t.Run("deterministic for identical content", func(t *testing.T) {
		dirA := t.TempDir()
		dirB := t.TempDir()
		for _, dir := range []string{dirA, dirB} {
			writeDoc(t, dir, canonical.TeamFile, "roles: []\n")
			writeDoc(t, dir, canonical.BoardFile, "tasks: []\n")
		}

		hashA, err := canonical.ComputeHash(dirA)
		if err != nil {
			t.Fatalf("ComputeHash failed: %v", err)
		}
		hashB, err := canonical.ComputeHash(dirB)
		if err != nil {
			t.Fatalf("ComputeHash failed: %v", err)
		}
		if hashA != hashB {
			t.Errorf("hashes differ for identical content: %s vs %s", hashA, hashB)
		}
		if len(hashA) != 64 {
			t.Errorf("hash length = %d, want 64 hex chars", len(hashA))
		}
	})

	t.Run("changes when any document changes", func(t *testing.T) {
		dir := t.TempDir()
		writeDoc(t, dir, canonical.BoardFile, "tasks: []\n")

		before, err := canonical.ComputeHash(dir)
		if err != nil {
			t.Fatalf("ComputeHash failed: %v", err)
		}

		writeDoc(t, dir, canonical.BoardFile, "tasks: [{id: T-1}]\n")
		after, err := canonical.ComputeHash(dir)
		if err != nil {
			t.Fatalf("ComputeHash failed: %v", err)
		}
		if before == after {
			t.Error("hash unchanged after document edit")
		}
	})

	t.Run("missing files contribute nothing", func(t *testing.T) {
		withFile := t.TempDir()
		writeDoc(t, withFile, canonical.BoardFile, "tasks: []\n")

		empty, err := canonical.ComputeHash(t.TempDir())
		if err != nil {
			t.Fatalf("ComputeHash failed: %v", err)
		}
		nonEmpty, err := canonical.ComputeHash(withFile)
		if err != nil {
			t.Fatalf("ComputeHash failed: %v", err)
		}
		if empty == nonEmpty {
			t.Error("hash of empty dir equals hash with a document present")
		}
	})
}

func TestIngestTeam(t *testing.T) {
	t.Run("defaults the orchestrator row", func(t *testing.T) {
		workers := canonical.IngestTeam(canonical.TeamDoc{})
		if len(workers) != 1 {
			t.Fatalf("got %d workers, want 1", len(workers))
		}
		orch := workers[0]
		if orch.ID != "orchestrator" || orch.Title != "Orchestrator" || orch.Authority != "write" {
			t.Errorf("orchestrator row = %+v", orch)
		}
		if orch.Department != "orchestration" {
			t.Errorf("department = %q, want orchestration", orch.Department)
		}
	})

	t.Run("expands roles into worker rows", func(t *testing.T) {
		workers := canonical.IngestTeam(canonical.TeamDoc{
			Roles: []canonical.Role{
				{
					RoleID: "developer", Title: "Developer", Department: "engineering", ReportsTo: "orchestrator",
					Workers: []canonical.RoleWorker{
						{ID: "dev-1", Provider: "acme", Model: "m1"},
						{Provider: "acme", Model: "m2"},
					},
				},
				{RoleID: "reviewer", Title: "Reviewer", Authority: "write"},
			},
		})

		// orchestrator + two developer workers + one role-only reviewer row
		if len(workers) != 4 {
			t.Fatalf("got %d workers, want 4", len(workers))
		}
		if workers[1].ID != "dev-1" || workers[1].Authority != "read" {
			t.Errorf("worker row = %+v", workers[1])
		}
		if workers[2].ID != "developer" {
			t.Errorf("worker without id should fall back to role id, got %q", workers[2].ID)
		}
		if workers[3].ID != "reviewer" || workers[3].Authority != "write" {
			t.Errorf("role-only row = %+v", workers[3])
		}
	})
}

func TestIngestBoard(t *testing.T) {
	tasks := canonical.IngestBoard(canonical.BoardDoc{
		Tasks: []canonical.BoardTask{
			{ID: "T-1", Title: "A", Status: "backlog", RequiresApproval: []string{"review"}},
		},
	}, "2026-08-01T10:00:00Z")

	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(tasks))
	}
	if tasks[0].UpdatedAt != "2026-08-01T10:00:00Z" {
		t.Errorf("UpdatedAt = %q, want the ingestion timestamp", tasks[0].UpdatedAt)
	}
}

func TestIngestApprovals(t *testing.T) {
	rows := canonical.IngestApprovals(canonical.ApprovalsDoc{
		ApprovalLog: []canonical.ApprovalEntry{
			{TaskID: "T-1", TriggerID: "review"},
			{TaskID: "T-2", ApprovalType: "security", Status: "approved", ApprovedBy: "lead"},
		},
	})

	if len(rows) != 2 {
		t.Fatalf("got %d approvals, want 2", len(rows))
	}
	if rows[0].Type != "review" {
		t.Errorf("type fallback = %q, want trigger id", rows[0].Type)
	}
	if rows[0].Status != "pending" {
		t.Errorf("status default = %q, want pending", rows[0].Status)
	}
	if rows[1].Type != "security" || rows[1].Status != "approved" {
		t.Errorf("explicit row = %+v", rows[1])
	}
}
