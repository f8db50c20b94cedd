package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roomrelay/server/internal/types"
)

// RoomStore implements store.RoomStore.
type RoomStore struct {
	db *sql.DB
}

func (s *RoomStore) Exists(ctx context.Context, id types.Uid) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM rooms WHERE id=$1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("rooms.exists: %w", err)
	}
	return exists, nil
}

func (s *RoomStore) ByID(ctx context.Context, id types.Uid) (*types.Room, error) {
	var r types.Room
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM rooms WHERE id=$1`, id).Scan(&r.ID, &r.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rooms.byID: %w", err)
	}
	return &r, nil
}

func (s *RoomStore) Insert(ctx context.Context, room *types.Room) (*types.Room, error) {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO rooms (name) VALUES ($1) RETURNING id`, room.Name,
	).Scan(&room.ID)
	if err != nil {
		return nil, fmt.Errorf("rooms.insert: %w", err)
	}
	return room, nil
}

func (s *RoomStore) Members(ctx context.Context, roomID types.Uid) ([]types.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.username, u.password_hash
		FROM users u
		INNER JOIN rooms_users ru ON ru.user_id = u.id
		WHERE ru.room_id = $1`, roomID)
	if err != nil {
		return nil, fmt.Errorf("rooms.members: %w", err)
	}
	defer rows.Close()

	var out []types.User
	for rows.Next() {
		var u types.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash); err != nil {
			return nil, fmt.Errorf("rooms.members: scan: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *RoomStore) ForUser(ctx context.Context, userID types.Uid) ([]types.RoomSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, COALESCE(ru.generated_room_name, r.name, '#' || r.id::text) AS display_name
		FROM rooms r
		INNER JOIN rooms_users ru ON ru.room_id = r.id
		WHERE ru.user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("rooms.forUser: %w", err)
	}
	defer rows.Close()

	var out []types.RoomSummary
	for rows.Next() {
		var rs types.RoomSummary
		if err := rows.Scan(&rs.ID, &rs.DisplayName); err != nil {
			return nil, fmt.Errorf("rooms.forUser: scan: %w", err)
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}

func (s *RoomStore) InsertMemberships(ctx context.Context, memberships []types.Membership) error {
	if len(memberships) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("rooms.insertMemberships: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO rooms_users (room_id, user_id, generated_room_name) VALUES ($1, $2, $3)`)
	if err != nil {
		return fmt.Errorf("rooms.insertMemberships: prepare: %w", err)
	}
	defer stmt.Close()

	for _, m := range memberships {
		if _, err := stmt.ExecContext(ctx, m.RoomID, m.UserID, m.PersonalRoomName); err != nil {
			return fmt.Errorf("rooms.insertMemberships: exec: %w", err)
		}
	}

	return tx.Commit()
}
