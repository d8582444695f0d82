package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/steward/internal/db"
	"github.com/example/steward/internal/ports/secondary"
)

// SearchIndex implements secondary.SearchIndex with SQLite. It prefers the
// FTS5 virtual tables when present and transparently falls back to a
// substring scan when they are not; both paths return the same record shape.
//
// The two paths rank differently on purpose: FTS orders by relevance and
// matches sanitized exact terms, the fallback orders by recency (importance
// then recency for facts) and matches a case-sensitive substring. That
// asymmetry is an accepted limitation of fallback mode.
type SearchIndex struct {
	db *sql.DB
}

// NewSearchIndex creates a new SQLite search index over the memory store.
func NewSearchIndex(conn *sql.DB) *SearchIndex {
	return &SearchIndex{db: conn}
}

// SearchMessages returns messages whose content matches the query.
func (s *SearchIndex) SearchMessages(ctx context.Context, sessionID, namespace, query string, limit int) ([]*secondary.MessageRecord, error) {
	hasFTS, err := db.HasTable(s.db, "messages_fts")
	if err != nil {
		return nil, err
	}

	var rows *sql.Rows
	if hasFTS {
		rows, err = s.db.QueryContext(ctx,
			"SELECT m.id, m.session_id, m.namespace, m.role, m.content, m.ts, m.metadata_json FROM messages m "+
				"JOIN messages_fts fts ON m.id = fts.rowid "+
				"WHERE fts.content MATCH ? AND m.session_id = ? AND m.namespace = ? "+
				"ORDER BY fts.rank LIMIT ?",
			SanitizeQuery(query), sessionID, namespace, limit,
		)
	} else {
		// instr is a byte-exact substring test; LIKE would fold ASCII case.
		rows, err = s.db.QueryContext(ctx,
			"SELECT id, session_id, namespace, role, content, ts, metadata_json FROM messages "+
				"WHERE session_id = ? AND namespace = ? AND instr(content, ?) > 0 "+
				"ORDER BY id DESC LIMIT ?",
			sessionID, namespace, query, limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// SearchFacts returns active facts whose text matches the query. Superseded
// rows never match on either path.
func (s *SearchIndex) SearchFacts(ctx context.Context, sessionID, namespace, query string, limit int) ([]*secondary.FactRecord, error) {
	hasFTS, err := db.HasTable(s.db, "facts_fts")
	if err != nil {
		return nil, err
	}

	var rows *sql.Rows
	if hasFTS {
		rows, err = s.db.QueryContext(ctx,
			"SELECT f.id, f.session_id, f.namespace, f.fact_text, f.ts, f.importance, f.tags_json, f.supersedes_id FROM facts f "+
				"JOIN facts_fts fts ON f.id = fts.rowid "+
				"WHERE fts.fact_text MATCH ? AND f.session_id = ? AND f.namespace = ? "+
				"AND f.supersedes_id IS NULL "+
				"ORDER BY fts.rank LIMIT ?",
			SanitizeQuery(query), sessionID, namespace, limit,
		)
	} else {
		rows, err = s.db.QueryContext(ctx,
			"SELECT id, session_id, namespace, fact_text, ts, importance, tags_json, supersedes_id FROM facts "+
				"WHERE session_id = ? AND namespace = ? AND instr(fact_text, ?) > 0 "+
				"AND supersedes_id IS NULL "+
				"ORDER BY importance DESC, id DESC LIMIT ?",
			sessionID, namespace, query, limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search facts: %w", err)
	}
	defer rows.Close()

	return scanFacts(rows)
}

// SanitizeQuery strips FTS5 syntax from a user query and wraps each
// remaining term in quotes for exact-phrase matching. This trades partial
// and fuzzy matching for immunity to query-syntax errors.
func SanitizeQuery(query string) string {
	cleaned := strings.NewReplacer(
		`"`, "", "*", "", "(", "", ")", "",
		"AND", "", "OR", "", "NOT", "",
	).Replace(query)

	terms := strings.Fields(cleaned)
	if len(terms) == 0 {
		return `""`
	}

	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		quoted = append(quoted, `"`+term+`"`)
	}

	return strings.Join(quoted, " ")
}

// Ensure SearchIndex implements the interface
var _ secondary.SearchIndex = (*SearchIndex)(nil)
