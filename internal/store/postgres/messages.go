package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/roomrelay/server/internal/types"
)

// MessageStore implements store.MessageStore.
type MessageStore struct {
	db *sql.DB
}

func (s *MessageStore) Insert(ctx context.Context, msg *types.Message) (*types.Message, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO messages (uuid, created_at, content, user_id, room_id, read)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		msg.UUID, msg.CreatedAt, msg.Content, msg.UserID, msg.RoomID, msg.Read,
	).Scan(&msg.ID)
	if err != nil {
		return nil, fmt.Errorf("messages.insert: %w", err)
	}
	return msg, nil
}

func (s *MessageStore) ByUUID(ctx context.Context, id uuid.UUID) (*types.Message, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, uuid, created_at, content, user_id, room_id, read
		FROM messages WHERE uuid=$1`, id)
	return scanMessage(row)
}

func (s *MessageStore) Page(ctx context.Context, roomID types.Uid, page, pageSize int) ([]types.Message, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if page < 0 {
		page = 0
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, uuid, created_at, content, user_id, room_id, read
		FROM messages
		WHERE room_id=$1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, roomID, pageSize, page*pageSize)
	if err != nil {
		return nil, fmt.Errorf("messages.page: %w", err)
	}
	defer rows.Close()

	var out []types.Message
	for rows.Next() {
		var m types.Message
		if err := rows.Scan(&m.ID, &m.UUID, &m.CreatedAt, &m.Content, &m.UserID, &m.RoomID, &m.Read); err != nil {
			return nil, fmt.Errorf("messages.page: scan: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *MessageStore) MarkRead(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE messages SET read=TRUE WHERE uuid = ANY($1)`, pq.Array(uuidStrings(ids)))
	if err != nil {
		return fmt.Errorf("messages.markRead: %w", err)
	}
	return nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func scanMessage(row *sql.Row) (*types.Message, error) {
	var m types.Message
	err := row.Scan(&m.ID, &m.UUID, &m.CreatedAt, &m.Content, &m.UserID, &m.RoomID, &m.Read)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("messages: scan: %w", err)
	}
	return &m, nil
}
