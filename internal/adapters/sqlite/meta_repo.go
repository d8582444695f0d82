package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/steward/internal/ports/secondary"
)

// MetaRepository implements secondary.MetaRepository with SQLite.
type MetaRepository struct {
	db *sql.DB
}

// NewMetaRepository creates a new SQLite meta repository.
func NewMetaRepository(conn *sql.DB) *MetaRepository {
	return &MetaRepository{db: conn}
}

// Get returns the value for a key, or "" when unset.
func (r *MetaRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get meta %s: %w", key, err)
	}
	return value, nil
}

// Set stores a key/value, overwriting any prior value.
func (r *MetaRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)", key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set meta %s: %w", key, err)
	}
	return nil
}

// Ensure MetaRepository implements the interface
var _ secondary.MetaRepository = (*MetaRepository)(nil)
