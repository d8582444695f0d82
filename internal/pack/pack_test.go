package pack_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/steward/internal/pack"
	"github.com/example/steward/internal/ports/secondary"
)

func sampleMemoryRows() *secondary.MemoryRows {
	return &secondary.MemoryRows{
		Messages: []*secondary.MessageRecord{
			{ID: 1, SessionID: "s1", Namespace: "default", Role: "user", Content: "hello", Timestamp: "2026-08-01T10:00:00Z", Metadata: map[string]any{"k": "v"}},
			{ID: 2, SessionID: "s1", Namespace: "default", Role: "assistant", Content: "hi", Timestamp: "2026-08-01T10:00:05Z"},
		},
		Facts: []*secondary.FactRecord{
			{ID: 1, SessionID: "s1", Namespace: "default", Text: "a fact", Timestamp: "2026-08-01T10:01:00Z", Importance: 7, Tags: []string{"x"}},
			{ID: 2, SessionID: "s1", Namespace: "default", Text: "a newer fact", Timestamp: "2026-08-01T10:02:00Z", Importance: 5, SupersedesID: 1},
		},
		Summaries: []*secondary.SummaryRecord{
			{ID: 1, SessionID: "s1", Namespace: "default", Text: "summary", Timestamp: "2026-08-01T10:03:00Z", Scope: "rolling"},
		},
		Events: []*secondary.MemoryEventRecord{
			{ID: 1, Timestamp: "2026-08-01T10:04:00Z", Type: "export_pack"},
		},
	}
}

func TestSessionPack_DirectoryRoundTrip(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "pack")

	path, err := pack.WriteSessionPack(dest, t.TempDir(), sampleMemoryRows(), nil)
	if err != nil {
		t.Fatalf("WriteSessionPack failed: %v", err)
	}
	if path != dest {
		t.Errorf("pack path = %q, want %q", path, dest)
	}

	rows, manifest, err := pack.ReadSessionPack(path, t.TempDir())
	if err != nil {
		t.Fatalf("ReadSessionPack failed: %v", err)
	}

	if manifest.Type != pack.TypeSessionMemory {
		t.Errorf("manifest type = %q", manifest.Type)
	}
	if manifest.Counts["messages"] != 2 || manifest.Counts["facts"] != 2 {
		t.Errorf("manifest counts = %v", manifest.Counts)
	}

	if len(rows.Messages) != 2 || len(rows.Facts) != 2 || len(rows.Summaries) != 1 || len(rows.Events) != 1 {
		t.Fatalf("row counts = %d/%d/%d/%d", len(rows.Messages), len(rows.Facts), len(rows.Summaries), len(rows.Events))
	}
	if rows.Messages[0].Content != "hello" || rows.Messages[0].Metadata["k"] != "v" {
		t.Errorf("message round trip = %+v", rows.Messages[0])
	}
	if rows.Facts[1].SupersedesID != 1 {
		t.Errorf("supersedes_id round trip = %d, want 1", rows.Facts[1].SupersedesID)
	}
	if rows.Summaries[0].Scope != "rolling" {
		t.Errorf("summary scope round trip = %q", rows.Summaries[0].Scope)
	}
}

func TestSessionPack_ZipRoundTrip(t *testing.T) {
	workDir := t.TempDir()
	dest := filepath.Join(workDir, "memory.zip")
	staging := filepath.Join(workDir, "staging")

	path, err := pack.WriteSessionPack(dest, staging, sampleMemoryRows(), []string{"default"})
	if err != nil {
		t.Fatalf("WriteSessionPack failed: %v", err)
	}
	if path != dest {
		t.Errorf("pack path = %q, want the zip path", path)
	}

	t.Run("staging directory is removed after compression", func(t *testing.T) {
		entries, err := os.ReadDir(staging)
		if err != nil {
			t.Fatalf("failed to read staging parent: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("staging parent has %d leftover entries", len(entries))
		}
	})

	t.Run("zip reads back identically", func(t *testing.T) {
		scratchParent := filepath.Join(workDir, "scratch")
		if err := os.MkdirAll(scratchParent, 0755); err != nil {
			t.Fatal(err)
		}

		rows, manifest, err := pack.ReadSessionPack(dest, scratchParent)
		if err != nil {
			t.Fatalf("ReadSessionPack failed: %v", err)
		}
		if len(rows.Messages) != 2 {
			t.Errorf("messages = %d, want 2", len(rows.Messages))
		}
		if ns, ok := manifest.Namespaces.([]any); !ok || len(ns) != 1 || ns[0] != "default" {
			t.Errorf("manifest namespaces = %v", manifest.Namespaces)
		}

		entries, err := os.ReadDir(scratchParent)
		if err != nil {
			t.Fatalf("failed to read scratch parent: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("scratch parent has %d leftover entries after read", len(entries))
		}
	})
}

func TestSessionPack_Validation(t *testing.T) {
	t.Run("missing pack is ErrNotFound", func(t *testing.T) {
		_, _, err := pack.ReadSessionPack(filepath.Join(t.TempDir(), "nope"), t.TempDir())
		if !errors.Is(err, pack.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("missing manifest is ErrNotFound", func(t *testing.T) {
		_, _, err := pack.ReadSessionPack(t.TempDir(), t.TempDir())
		if !errors.Is(err, pack.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("wrong version is ErrUnsupportedVersion", func(t *testing.T) {
		dir := t.TempDir()
		manifest, _ := json.Marshal(map[string]any{"version": "2.0", "type": "session_memory"})
		if err := os.WriteFile(filepath.Join(dir, pack.ManifestFile), manifest, 0644); err != nil {
			t.Fatal(err)
		}

		_, _, err := pack.ReadSessionPack(dir, t.TempDir())
		if !errors.Is(err, pack.ErrUnsupportedVersion) {
			t.Errorf("err = %v, want ErrUnsupportedVersion", err)
		}
	})

	t.Run("tampered file is ErrIntegrity and yields no rows", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "pack")
		if _, err := pack.WriteSessionPack(dest, t.TempDir(), sampleMemoryRows(), nil); err != nil {
			t.Fatalf("WriteSessionPack failed: %v", err)
		}

		messagesPath := filepath.Join(dest, pack.MessagesFile)
		if err := os.WriteFile(messagesPath, []byte(`{"id":99,"content":"injected"}`+"\n"), 0644); err != nil {
			t.Fatal(err)
		}

		rows, _, err := pack.ReadSessionPack(dest, t.TempDir())
		if !errors.Is(err, pack.ErrIntegrity) {
			t.Errorf("err = %v, want ErrIntegrity", err)
		}
		if rows != nil {
			t.Error("tampered pack returned rows, want none")
		}
	})

	t.Run("absent table file means zero rows", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "pack")
		if _, err := pack.WriteSessionPack(dest, t.TempDir(), &secondary.MemoryRows{}, nil); err != nil {
			t.Fatalf("WriteSessionPack failed: %v", err)
		}

		rows, _, err := pack.ReadSessionPack(dest, t.TempDir())
		if err != nil {
			t.Fatalf("ReadSessionPack failed: %v", err)
		}
		if len(rows.Messages) != 0 || len(rows.Events) != 0 {
			t.Errorf("empty pack produced rows: %+v", rows)
		}
	})
}

func TestCachePack_RoundTrip(t *testing.T) {
	export := &secondary.DerivedExport{
		Workers: []*secondary.WorkerRecord{
			{ID: "orchestrator", RoleID: "orchestrator", Title: "Orchestrator", Department: "orchestration", Authority: "write"},
		},
		Tasks: []*secondary.TaskRecord{
			{ID: "T-1", Title: "Task", Status: "done", RequiresApproval: []string{"review"}, UpdatedAt: "2026-08-01T10:00:00Z"},
		},
		Approvals: []*secondary.ApprovalRecord{
			{TaskID: "T-1", Type: "review", Status: "approved", ApprovedBy: "lead", Timestamp: "2026-08-01T11:00:00Z"},
		},
		Events: []*secondary.EventRecord{
			{Timestamp: "2026-08-01T10:00:00Z", Actor: "system", Type: "reconcile", Payload: map[string]any{"hash": "abc"}},
		},
		CanonicalHash: "abc",
	}

	t.Run("directory pack", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "pack")
		if _, err := pack.WriteCachePack(dest, t.TempDir(), export); err != nil {
			t.Fatalf("WriteCachePack failed: %v", err)
		}

		got, manifest, err := pack.ReadCachePack(dest, t.TempDir())
		if err != nil {
			t.Fatalf("ReadCachePack failed: %v", err)
		}
		if manifest.Type != pack.TypeCache || manifest.CanonicalHash != "abc" {
			t.Errorf("manifest = %+v", manifest)
		}
		if got.CanonicalHash != "abc" {
			t.Errorf("CanonicalHash = %q", got.CanonicalHash)
		}
		if len(got.Events) != 1 || got.Events[0].Payload["hash"] != "abc" {
			t.Errorf("events = %+v", got.Events)
		}
		if len(got.Workers) != 1 || len(got.Tasks) != 1 || len(got.Approvals) != 1 {
			t.Errorf("derived sizes = %d/%d/%d", len(got.Workers), len(got.Tasks), len(got.Approvals))
		}
		if got.Tasks[0].RequiresApproval[0] != "review" {
			t.Errorf("task round trip = %+v", got.Tasks[0])
		}
	})

	t.Run("zip pack", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "cache.zip")
		if _, err := pack.WriteCachePack(dest, t.TempDir(), export); err != nil {
			t.Fatalf("WriteCachePack failed: %v", err)
		}

		got, _, err := pack.ReadCachePack(dest, t.TempDir())
		if err != nil {
			t.Fatalf("ReadCachePack failed: %v", err)
		}
		if len(got.Events) != 1 {
			t.Errorf("events = %d, want 1", len(got.Events))
		}
	})

	t.Run("tampered derived state is ErrIntegrity", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "pack")
		if _, err := pack.WriteCachePack(dest, t.TempDir(), export); err != nil {
			t.Fatalf("WriteCachePack failed: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dest, pack.DerivedStateFile), []byte(`{"workers":[]}`), 0644); err != nil {
			t.Fatal(err)
		}

		_, _, err := pack.ReadCachePack(dest, t.TempDir())
		if !errors.Is(err, pack.ErrIntegrity) {
			t.Errorf("err = %v, want ErrIntegrity", err)
		}
	})
}
