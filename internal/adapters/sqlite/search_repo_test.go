package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/example/steward/internal/adapters/sqlite"
	"github.com/example/steward/internal/ports/secondary"
)

func seedSearchData(t *testing.T, conn *sql.DB) (oldFactID int64) {
	t.Helper()
	ctx := context.Background()

	messages := sqlite.NewMessageRepository(conn)
	for _, content := range []string{
		"we decided on sqlite for the cache",
		"the board has three columns",
		"sqlite WAL mode is enabled",
	} {
		if _, err := messages.Insert(ctx, &secondary.MessageRecord{
			SessionID: "s1", Namespace: "default", Role: "user", Content: content,
		}); err != nil {
			t.Fatalf("failed to seed message: %v", err)
		}
	}

	facts := sqlite.NewFactRepository(conn)
	var err error
	oldFactID, err = facts.Insert(ctx, &secondary.FactRecord{
		SessionID: "s1", Namespace: "default", Text: "cache lives in sqlite",
	})
	if err != nil {
		t.Fatalf("failed to seed fact: %v", err)
	}
	if _, err := facts.Insert(ctx, &secondary.FactRecord{
		SessionID: "s1", Namespace: "default", Text: "cache moved to sqlite WAL", SupersedesID: oldFactID,
	}); err != nil {
		t.Fatalf("failed to seed fact: %v", err)
	}

	return oldFactID
}

func TestSearchIndex_FTS(t *testing.T) {
	conn := setupMemoryDB(t, true)
	search := sqlite.NewSearchIndex(conn)
	ctx := context.Background()
	oldFactID := seedSearchData(t, conn)

	t.Run("matches message terms", func(t *testing.T) {
		got, err := search.SearchMessages(ctx, "s1", "default", "sqlite", 10)
		if err != nil {
			t.Fatalf("SearchMessages failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d matches, want 2", len(got))
		}
	})

	t.Run("hostile query syntax is neutralized", func(t *testing.T) {
		got, err := search.SearchMessages(ctx, "s1", "default", `sqlite AND ("cache*)`, 10)
		if err != nil {
			t.Fatalf("SearchMessages failed on hostile query: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("got %d matches, want the one message containing both terms", len(got))
		}
	})

	t.Run("superseding facts stay out of results", func(t *testing.T) {
		got, err := search.SearchFacts(ctx, "s1", "default", "sqlite", 10)
		if err != nil {
			t.Fatalf("SearchFacts failed: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("got %d fact matches, want 1", len(got))
		}
		if got[0].ID != oldFactID {
			t.Errorf("matched fact %d, want %d", got[0].ID, oldFactID)
		}
	})
}

func TestSearchIndex_Fallback(t *testing.T) {
	conn := setupMemoryDB(t, false)
	search := sqlite.NewSearchIndex(conn)
	ctx := context.Background()
	oldFactID := seedSearchData(t, conn)

	t.Run("substring match, newest first", func(t *testing.T) {
		got, err := search.SearchMessages(ctx, "s1", "default", "sqlite", 10)
		if err != nil {
			t.Fatalf("SearchMessages failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d matches, want 2", len(got))
		}
		if got[0].Content != "sqlite WAL mode is enabled" {
			t.Errorf("first match = %q, want the newest message", got[0].Content)
		}
	})

	t.Run("fallback is case sensitive", func(t *testing.T) {
		got, err := search.SearchMessages(ctx, "s1", "default", "SQLITE", 10)
		if err != nil {
			t.Fatalf("SearchMessages failed: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("got %d matches for uppercased query, want 0 in fallback mode", len(got))
		}
	})

	t.Run("superseding facts stay out of results", func(t *testing.T) {
		got, err := search.SearchFacts(ctx, "s1", "default", "sqlite", 10)
		if err != nil {
			t.Fatalf("SearchFacts failed: %v", err)
		}
		if len(got) != 1 || got[0].ID != oldFactID {
			t.Errorf("fact matches = %+v, want only fact %d", got, oldFactID)
		}
	})
}

func TestSanitizeQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"plain terms", "hello world", `"hello" "world"`},
		{"operators stripped", `cache AND (warm OR cold)`, `"cache" "warm" "cold"`},
		{"quotes and stars stripped", `"exact*" phrase`, `"exact" "phrase"`},
		{"empty after stripping", `AND OR NOT ()`, `""`},
		{"empty input", "", `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sqlite.SanitizeQuery(tt.query); got != tt.want {
				t.Errorf("SanitizeQuery(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}
