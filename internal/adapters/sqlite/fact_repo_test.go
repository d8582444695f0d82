package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/steward/internal/adapters/sqlite"
	"github.com/example/steward/internal/ports/secondary"
)

func TestFactRepository_InsertAndActive(t *testing.T) {
	conn := setupMemoryDB(t, false)
	repo := sqlite.NewFactRepository(conn)
	ctx := context.Background()

	_, err := repo.Insert(ctx, &secondary.FactRecord{
		SessionID: "s1", Namespace: "default", Text: "minor detail", Importance: 2,
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := repo.Insert(ctx, &secondary.FactRecord{
		SessionID: "s1", Namespace: "default", Text: "critical constraint", Importance: 9,
		Tags: []string{"architecture", "storage"},
	}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := repo.Insert(ctx, &secondary.FactRecord{
		SessionID: "s1", Namespace: "default", Text: "defaulted importance",
	}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	facts, err := repo.Active(ctx, "s1", "default", 10)
	if err != nil {
		t.Fatalf("Active failed: %v", err)
	}
	if len(facts) != 3 {
		t.Fatalf("got %d facts, want 3", len(facts))
	}
	if facts[0].Text != "critical constraint" {
		t.Errorf("highest importance first, got %q", facts[0].Text)
	}
	if facts[1].Importance != sqlite.DefaultImportance {
		t.Errorf("importance = %d, want default %d", facts[1].Importance, sqlite.DefaultImportance)
	}
	if len(facts[0].Tags) != 2 || facts[0].Tags[0] != "architecture" {
		t.Errorf("tags = %v, want [architecture storage]", facts[0].Tags)
	}
}

func TestFactRepository_Supersession(t *testing.T) {
	conn := setupMemoryDB(t, false)
	repo := sqlite.NewFactRepository(conn)
	ctx := context.Background()

	oldID, err := repo.Insert(ctx, &secondary.FactRecord{
		SessionID: "s1", Namespace: "default", Text: "port is 8080",
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := repo.Insert(ctx, &secondary.FactRecord{
		SessionID: "s1", Namespace: "default", Text: "port is 9090", SupersedesID: oldID,
	}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	t.Run("superseding fact is excluded from active views", func(t *testing.T) {
		facts, err := repo.Active(ctx, "s1", "default", 10)
		if err != nil {
			t.Fatalf("Active failed: %v", err)
		}
		if len(facts) != 1 {
			t.Fatalf("got %d active facts, want 1", len(facts))
		}
		if facts[0].ID != oldID {
			t.Errorf("active fact = %d, want %d", facts[0].ID, oldID)
		}

		count, err := repo.Count(ctx, "s1", "default")
		if err != nil {
			t.Fatalf("Count failed: %v", err)
		}
		if count != 1 {
			t.Errorf("active count = %d, want 1", count)
		}
	})

	t.Run("superseding row survives until explicit purge", func(t *testing.T) {
		removed, err := repo.PurgeSuperseded(ctx, "s1", "default")
		if err != nil {
			t.Fatalf("PurgeSuperseded failed: %v", err)
		}
		if removed != 1 {
			t.Errorf("removed = %d, want 1", removed)
		}

		again, err := repo.PurgeSuperseded(ctx, "s1", "default")
		if err != nil {
			t.Fatalf("PurgeSuperseded failed: %v", err)
		}
		if again != 0 {
			t.Errorf("second purge removed %d, want 0", again)
		}
	})
}

func TestFactRepository_Purge(t *testing.T) {
	conn := setupMemoryDB(t, false)
	repo := sqlite.NewFactRepository(conn)
	ctx := context.Background()

	if _, err := repo.Insert(ctx, &secondary.FactRecord{
		SessionID: "s1", Namespace: "scratch", Text: "ephemeral", Timestamp: "2026-01-01T00:00:00Z",
	}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := repo.Insert(ctx, &secondary.FactRecord{
		SessionID: "s1", Namespace: "durable", Text: "kept", Timestamp: "2026-01-01T00:00:00Z",
	}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	deleted, err := repo.Purge(ctx, secondary.PurgeFilter{Namespace: "scratch"})
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	count, err := repo.Count(ctx, "s1", "durable")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("durable count = %d, want 1", count)
	}
}
