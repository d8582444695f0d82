package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/example/steward/internal/ports/secondary"
)

// MessageRepository implements secondary.MessageRepository with SQLite.
type MessageRepository struct {
	db *sql.DB
}

// NewMessageRepository creates a new SQLite message repository.
func NewMessageRepository(conn *sql.DB) *MessageRepository {
	return &MessageRepository{db: conn}
}

// Insert persists a message and returns its row id. The write commits before
// returning.
func (r *MessageRepository) Insert(ctx context.Context, msg *secondary.MessageRecord) (int64, error) {
	metadataJSON, err := marshalPayload(msg.Metadata)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal message metadata: %w", err)
	}

	ts := msg.Timestamp
	if ts == "" {
		ts = nowRFC3339()
	}

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO messages (session_id, namespace, role, content, ts, metadata_json) VALUES (?, ?, ?, ?, ?, ?)",
		msg.SessionID, msg.Namespace, msg.Role, msg.Content, ts, metadataJSON,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert message: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get message id: %w", err)
	}

	return id, nil
}

// Recent returns up to limit most recent messages, oldest first.
func (r *MessageRepository) Recent(ctx context.Context, sessionID, namespace string, limit int) ([]*secondary.MessageRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, session_id, namespace, role, content, ts, metadata_json FROM messages WHERE session_id = ? AND namespace = ? ORDER BY id DESC LIMIT ?",
		sessionID, namespace, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent messages: %w", err)
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}

	// Query returns newest-first; callers want newest last.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// Count returns the number of messages in a session/namespace.
func (r *MessageRepository) Count(ctx context.Context, sessionID, namespace string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM messages WHERE session_id = ? AND namespace = ?",
		sessionID, namespace,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

// Purge deletes messages matching the filter and returns the count.
func (r *MessageRepository) Purge(ctx context.Context, filter secondary.PurgeFilter) (int64, error) {
	query := "DELETE FROM messages WHERE 1=1"
	args := []any{}

	if filter.Namespace != "" {
		query += " AND namespace = ?"
		args = append(args, filter.Namespace)
	}
	if filter.OlderThan != "" {
		query += " AND ts < ?"
		args = append(args, filter.OlderThan)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to purge messages: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged messages: %w", err)
	}

	return deleted, nil
}

func scanMessages(rows *sql.Rows) ([]*secondary.MessageRecord, error) {
	var messages []*secondary.MessageRecord
	for rows.Next() {
		var (
			msg          secondary.MessageRecord
			metadataJSON sql.NullString
		)
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Namespace, &msg.Role, &msg.Content, &msg.Timestamp, &metadataJSON); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Metadata = unmarshalPayload(metadataJSON)
		messages = append(messages, &msg)
	}
	return messages, rows.Err()
}

func marshalTags(tags []string) (any, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func unmarshalTags(tagsJSON sql.NullString) []string {
	if !tagsJSON.Valid || tagsJSON.String == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(tagsJSON.String), &tags); err != nil {
		return nil
	}
	return tags
}

// Ensure MessageRepository implements the interface
var _ secondary.MessageRepository = (*MessageRepository)(nil)
