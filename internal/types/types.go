// Package types holds the persistent record shapes shared across the
// storage, auth, router, and session layers.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Uid identifies a User or Room row. Surrogate, server-assigned.
type Uid int64

// ZeroUid is the id of a record that does not exist.
const ZeroUid Uid = 0

func (uid Uid) IsZero() bool {
	return uid == ZeroUid
}

// User is an authenticated account. Only PasswordHash is ever mutated
// after creation; the core never deletes a User.
type User struct {
	ID           Uid
	Username     string
	PasswordHash string
}

// Room is a named chat room. Names are client-supplied labels; the
// per-member display name lives on the Membership row instead.
type Room struct {
	ID   Uid
	Name string
}

// Membership links a User to a Room with an optional personal label.
// The composite key (RoomID, UserID) is unique.
type Membership struct {
	RoomID           Uid
	UserID           Uid
	PersonalRoomName *string
}

// RoomSummary is a room as seen by one particular user: the display name
// already resolved to personal_room_name, room name, or "#<id>".
type RoomSummary struct {
	ID          Uid
	DisplayName string
}

// Message is one persisted chat message. UUID is the client-supplied,
// globally unique, cross-boundary identifier; ID is the storage surrogate.
type Message struct {
	ID        Uid
	UUID      uuid.UUID
	RoomID    Uid
	UserID    Uid
	Content   string
	CreatedAt time.Time
	Read      bool
}
