package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roomrelay/server/internal/types"
)

// UserStore implements store.UserStore.
type UserStore struct {
	db *sql.DB
}

func (s *UserStore) Exists(ctx context.Context, id types.Uid) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id=$1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("users.exists: %w", err)
	}
	return exists, nil
}

func (s *UserStore) ByID(ctx context.Context, id types.Uid) (*types.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, username, password_hash FROM users WHERE id=$1`, id)
	return scanUser(row)
}

func (s *UserStore) ByUsername(ctx context.Context, username string) (*types.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, username, password_hash FROM users WHERE username=$1`, username)
	return scanUser(row)
}

func (s *UserStore) All(ctx context.Context) ([]types.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, username, password_hash FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("users.all: %w", err)
	}
	defer rows.Close()

	var out []types.User
	for rows.Next() {
		var u types.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash); err != nil {
			return nil, fmt.Errorf("users.all: scan: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *UserStore) Insert(ctx context.Context, user *types.User) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id`,
		user.Username, user.PasswordHash,
	).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("users.insert: %w", err)
	}
	return nil
}

func (s *UserStore) Delete(ctx context.Context, user *types.User) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, user.ID)
	if err != nil {
		return fmt.Errorf("users.delete: %w", err)
	}
	return nil
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanUser(row scannable) (*types.User, error) {
	var u types.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("users: scan: %w", err)
	}
	return &u, nil
}
