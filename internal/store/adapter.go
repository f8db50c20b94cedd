// Package store declares the repository interfaces the core depends on.
// The core never imports a concrete database driver directly; it only
// ever sees UserStore, RoomStore, and MessageStore. Substituting a
// different backing store means implementing these three interfaces.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/roomrelay/server/internal/types"
)

// UserStore is the persistence surface for User records.
type UserStore interface {
	Exists(ctx context.Context, id types.Uid) (bool, error)
	ByID(ctx context.Context, id types.Uid) (*types.User, error)
	ByUsername(ctx context.Context, username string) (*types.User, error)
	All(ctx context.Context) ([]types.User, error)
	Insert(ctx context.Context, user *types.User) error
	Delete(ctx context.Context, user *types.User) error
}

// RoomStore is the persistence surface for Room and Membership records.
type RoomStore interface {
	Exists(ctx context.Context, id types.Uid) (bool, error)
	ByID(ctx context.Context, id types.Uid) (*types.Room, error)
	Insert(ctx context.Context, room *types.Room) (*types.Room, error)
	// Members returns every user subscribed to the room.
	Members(ctx context.Context, roomID types.Uid) ([]types.User, error)
	// ForUser returns every room the user belongs to, with the display
	// name already resolved: coalesce(personal_room_name, room.name, "#"+id).
	ForUser(ctx context.Context, userID types.Uid) ([]types.RoomSummary, error)
	InsertMemberships(ctx context.Context, memberships []types.Membership) error
}

// MessageStore is the persistence surface for Message records.
type MessageStore interface {
	Insert(ctx context.Context, message *types.Message) (*types.Message, error)
	ByUUID(ctx context.Context, id uuid.UUID) (*types.Message, error)
	// Page returns messages for a room ordered by created_at descending.
	Page(ctx context.Context, roomID types.Uid, page, pageSize int) ([]types.Message, error)
	// MarkRead sets read=true for every message whose uuid is in the list,
	// in a single statement. Idempotent: repeating the call with a subset
	// (or the same set) of uuids has no additional effect.
	MarkRead(ctx context.Context, ids []uuid.UUID) error
}

// Stores bundles the three repositories the core is wired against.
type Stores struct {
	Users    UserStore
	Rooms    RoomStore
	Messages MessageStore
}
