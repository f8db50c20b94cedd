// Package postgres implements the store interfaces on top of
// database/sql with the lib/pq driver.
package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	username VARCHAR(255) UNIQUE NOT NULL,
	password_hash TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS rooms (
	id SERIAL PRIMARY KEY,
	name VARCHAR(255) NOT NULL
);

CREATE TABLE IF NOT EXISTS rooms_users (
	room_id INTEGER NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	generated_room_name VARCHAR(255),
	PRIMARY KEY (room_id, user_id)
);

CREATE TABLE IF NOT EXISTS messages (
	id SERIAL PRIMARY KEY,
	uuid UUID UNIQUE NOT NULL,
	created_at TIMESTAMP NOT NULL,
	content TEXT NOT NULL,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	room_id INTEGER NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
	read BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_messages_room_created ON messages(room_id, created_at DESC);
`

// DB wraps the shared *sql.DB connection all three store adapters share.
type DB struct {
	conn *sql.DB
}

// Open connects to Postgres, verifies the connection, and applies the
// schema (idempotent CREATE TABLE IF NOT EXISTS), standing in for a
// dedicated migration tool.
func Open(connStr string) (*DB, error) {
	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return db, nil
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(schema)
	return err
}

// Close closes the underlying connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Users returns a UserStore backed by this connection.
func (db *DB) Users() *UserStore { return &UserStore{db: db.conn} }

// Rooms returns a RoomStore backed by this connection.
func (db *DB) Rooms() *RoomStore { return &RoomStore{db: db.conn} }

// Messages returns a MessageStore backed by this connection.
func (db *DB) Messages() *MessageStore { return &MessageStore{db: db.conn} }
