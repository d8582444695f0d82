package workers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRosterRoundTrip(t *testing.T) {
	dir := t.TempDir()

	entries := []RosterEntry{
		{WorkerID: "dev-1", Role: "developer", Provider: "acme", Model: "m1", Status: "busy"},
		{WorkerID: "dev-2", Role: "developer", Provider: "acme", Model: "m1"},
	}
	if err := WriteRoster(dir, entries); err != nil {
		t.Fatalf("WriteRoster failed: %v", err)
	}

	got, err := LoadRoster(dir)
	if err != nil {
		t.Fatalf("LoadRoster failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].WorkerID != "dev-1" || got[0].Status != "busy" {
		t.Errorf("entry 0 = %+v", got[0])
	}
	// Empty status is stored as ready.
	if got[1].Status != "ready" {
		t.Errorf("Status = %q, want ready", got[1].Status)
	}
}

func TestLoadRoster_Missing(t *testing.T) {
	got, err := LoadRoster(t.TempDir())
	if err != nil {
		t.Fatalf("LoadRoster failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d entries, want 0", len(got))
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	dir := t.TempDir()

	if err := WriteRoster(dir, []RosterEntry{{WorkerID: "dev-1", Role: "developer"}}); err != nil {
		t.Fatalf("WriteRoster failed: %v", err)
	}

	id, err := WriteCheckpoint(dir, "dev-1", Checkpoint{
		Role:         "developer",
		Provider:     "acme",
		Completed:    []string{"wired the cache repo", "added roster tests"},
		Pending:      []string{"status rendering"},
		FilesChanged: []string{"internal/adapters/sqlite/cache_repo.go"},
		Decisions:    []string{"drop and recreate on rehydrate"},
		NextSteps:    "start on the status report",
	})
	if err != nil {
		t.Fatalf("WriteCheckpoint failed: %v", err)
	}
	if len(id) != len("20060102_150405") {
		t.Errorf("checkpoint id = %q", id)
	}

	cp, err := LatestCheckpoint(dir, "dev-1")
	if err != nil {
		t.Fatalf("LatestCheckpoint failed: %v", err)
	}
	if cp == nil {
		t.Fatal("expected a checkpoint")
	}
	if cp.CheckpointID != id {
		t.Errorf("CheckpointID = %q, want %q", cp.CheckpointID, id)
	}
	if cp.WorkerID != "dev-1" || cp.Role != "developer" || cp.Provider != "acme" {
		t.Errorf("header = %q/%q/%q", cp.WorkerID, cp.Role, cp.Provider)
	}
	if cp.Timestamp == "" {
		t.Error("Timestamp not parsed")
	}
	if len(cp.Completed) != 2 || cp.Completed[0] != "wired the cache repo" {
		t.Errorf("Completed = %v", cp.Completed)
	}
	if len(cp.Pending) != 1 || len(cp.FilesChanged) != 1 || len(cp.Decisions) != 1 {
		t.Errorf("sections = %v / %v / %v", cp.Pending, cp.FilesChanged, cp.Decisions)
	}
	if cp.NextSteps != "start on the status report" {
		t.Errorf("NextSteps = %q", cp.NextSteps)
	}

	// The roster carries the new checkpoint id.
	roster, err := LoadRoster(dir)
	if err != nil {
		t.Fatalf("LoadRoster failed: %v", err)
	}
	if roster[0].LastCheckpointID != id {
		t.Errorf("LastCheckpointID = %q, want %q", roster[0].LastCheckpointID, id)
	}
}

func TestLatestCheckpoint_PicksNewest(t *testing.T) {
	dir := t.TempDir()
	cpDir := filepath.Join(dir, "checkpoints", "dev-1")
	if err := os.MkdirAll(cpDir, 0755); err != nil {
		t.Fatal(err)
	}

	older := "# Checkpoint: 20260101_090000\nWorker: dev-1 | Role: developer | Provider: acme\nTimestamp: 2026-01-01T09:00:00Z\n\n## Progress\nold work\n"
	newer := "# Checkpoint: 20260102_090000\nWorker: dev-1 | Role: developer | Provider: acme\nTimestamp: 2026-01-02T09:00:00Z\n\n## Progress\nnew work\n"
	if err := os.WriteFile(filepath.Join(cpDir, "20260101_090000.md"), []byte(older), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cpDir, "20260102_090000.md"), []byte(newer), 0644); err != nil {
		t.Fatal(err)
	}

	cp, err := LatestCheckpoint(dir, "dev-1")
	if err != nil {
		t.Fatalf("LatestCheckpoint failed: %v", err)
	}
	if cp.CheckpointID != "20260102_090000" {
		t.Errorf("CheckpointID = %q, want the newer one", cp.CheckpointID)
	}
	if cp.ProgressSummary != "new work" {
		t.Errorf("ProgressSummary = %q", cp.ProgressSummary)
	}
}

func TestLatestCheckpoint_NoneExist(t *testing.T) {
	cp, err := LatestCheckpoint(t.TempDir(), "ghost")
	if err != nil {
		t.Fatalf("LatestCheckpoint failed: %v", err)
	}
	if cp != nil {
		t.Errorf("got %+v, want nil", cp)
	}
}

func TestSummaryRoundTrip(t *testing.T) {
	dir := t.TempDir()

	err := WriteSummary(dir, "dev-1", SummaryInput{
		Role:             "developer",
		Provider:         "acme",
		Model:            "m1",
		Status:           "busy",
		LastCheckpointID: "20260101_090000",
		Responsibilities: []string{"cache layer"},
		OpenTickets:      []string{"T-2"},
		LatestProgress:   "halfway through the search adapter",
	})
	if err != nil {
		t.Fatalf("WriteSummary failed: %v", err)
	}

	got, err := LoadSummary(dir, "dev-1")
	if err != nil {
		t.Fatalf("LoadSummary failed: %v", err)
	}
	for _, want := range []string{
		"# Worker: dev-1",
		"Role: developer | Provider: acme | Model: m1",
		"Status: busy",
		"Last Checkpoint: 20260101_090000",
		"## Current Responsibilities",
		"- T-2",
		"## Latest Progress",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}

func TestWriteSummary_Defaults(t *testing.T) {
	dir := t.TempDir()

	if err := WriteSummary(dir, "dev-9", SummaryInput{}); err != nil {
		t.Fatalf("WriteSummary failed: %v", err)
	}

	got, err := LoadSummary(dir, "dev-9")
	if err != nil {
		t.Fatalf("LoadSummary failed: %v", err)
	}
	for _, want := range []string{
		"Role: dev-9 | Provider: ? | Model: ?",
		"Status: ready",
		"Last Checkpoint: none",
		"- (awaiting assignment)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}

func TestLoadSummary_Missing(t *testing.T) {
	got, err := LoadSummary(t.TempDir(), "ghost")
	if err != nil {
		t.Fatalf("LoadSummary failed: %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
