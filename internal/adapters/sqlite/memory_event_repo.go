package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/steward/internal/ports/secondary"
)

// MemoryEventRepository implements secondary.MemoryEventRepository with
// SQLite.
type MemoryEventRepository struct {
	db *sql.DB
}

// NewMemoryEventRepository creates a new SQLite memory event repository.
func NewMemoryEventRepository(conn *sql.DB) *MemoryEventRepository {
	return &MemoryEventRepository{db: conn}
}

// Append records one memory event.
func (r *MemoryEventRepository) Append(ctx context.Context, eventType string, payload map[string]any) error {
	payloadJSON, err := marshalPayload(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal memory event payload: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO events (ts, type, payload_json) VALUES (?, ?, ?)",
		nowRFC3339(), eventType, payloadJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to append memory event: %w", err)
	}

	return nil
}

// Ensure MemoryEventRepository implements the interface
var _ secondary.MemoryEventRepository = (*MemoryEventRepository)(nil)
