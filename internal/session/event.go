package session

import (
	"github.com/google/uuid"

	"github.com/roomrelay/server/internal/types"
)

// ThreadEvent is the cross-session tagged union delivered through a
// user's inbox: either a chat message fanned out from another session,
// or a read receipt. Exactly one of the two pointer fields is set.
type ThreadEvent struct {
	UserMessage  *UserMessageEvent
	MessagesRead *MessagesReadEvent
}

// UserMessageEvent carries a message from its sender to one recipient.
type UserMessageEvent struct {
	UUID     uuid.UUID
	SenderID types.Uid
	Content  string
}

// MessagesReadEvent carries a read receipt to propagate to other members.
type MessagesReadEvent struct {
	RoomID       types.Uid
	MessageUUIDs []uuid.UUID
}
