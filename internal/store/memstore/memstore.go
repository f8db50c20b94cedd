// Package memstore is an in-memory implementation of the store
// interfaces, used by tests in place of the Postgres adapter. It
// mirrors the three-type split of internal/store/postgres so a single
// backing struct can be exposed through three unrelated interfaces
// whose ByID/Insert methods differ in return type.
package memstore

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/roomrelay/server/internal/store"
	"github.com/roomrelay/server/internal/types"
)

// ErrDuplicateUUID mirrors the unique-constraint violation a real
// database would raise on a repeated message uuid.
var ErrDuplicateUUID = errors.New("memstore: duplicate message uuid")

type state struct {
	mu sync.Mutex

	nextUserID types.Uid
	nextRoomID types.Uid
	nextMsgID  types.Uid

	users       map[types.Uid]*types.User
	rooms       map[types.Uid]*types.Room
	memberships []types.Membership
	messages    []*types.Message
}

// Backend holds the shared in-memory state and hands out the three
// store implementations wired to it.
type Backend struct {
	s *state
}

// New builds an empty in-memory backend.
func New() *Backend {
	return &Backend{s: &state{
		users: make(map[types.Uid]*types.User),
		rooms: make(map[types.Uid]*types.Room),
	}}
}

// Stores returns the store.Stores bundle wired to this backend.
func (b *Backend) Stores() *store.Stores {
	return &store.Stores{Users: Users{b.s}, Rooms: Rooms{b.s}, Messages: Messages{b.s}}
}

// Users implements store.UserStore.
type Users struct{ s *state }

func (u Users) Exists(_ context.Context, id types.Uid) (bool, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	_, ok := u.s.users[id]
	return ok, nil
}

func (u Users) ByID(_ context.Context, id types.Uid) (*types.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	rec, ok := u.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (u Users) ByUsername(_ context.Context, username string) (*types.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, rec := range u.s.users {
		if rec.Username == username {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (u Users) All(_ context.Context) ([]types.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	out := make([]types.User, 0, len(u.s.users))
	for _, rec := range u.s.users {
		out = append(out, *rec)
	}
	return out, nil
}

func (u Users) Insert(_ context.Context, user *types.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	u.s.nextUserID++
	user.ID = u.s.nextUserID
	cp := *user
	u.s.users[user.ID] = &cp
	return nil
}

func (u Users) Delete(_ context.Context, user *types.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	delete(u.s.users, user.ID)
	return nil
}

// Rooms implements store.RoomStore.
type Rooms struct{ s *state }

func (r Rooms) Exists(_ context.Context, id types.Uid) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.rooms[id]
	return ok, nil
}

func (r Rooms) ByID(_ context.Context, id types.Uid) (*types.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.rooms[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r Rooms) Insert(_ context.Context, room *types.Room) (*types.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextRoomID++
	room.ID = r.s.nextRoomID
	cp := *room
	r.s.rooms[room.ID] = &cp
	return room, nil
}

func (r Rooms) Members(_ context.Context, roomID types.Uid) ([]types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []types.User
	for _, m := range r.s.memberships {
		if m.RoomID == roomID {
			if rec, ok := r.s.users[m.UserID]; ok {
				out = append(out, *rec)
			}
		}
	}
	return out, nil
}

func (r Rooms) ForUser(_ context.Context, userID types.Uid) ([]types.RoomSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []types.RoomSummary
	for _, m := range r.s.memberships {
		if m.UserID != userID {
			continue
		}
		room := r.s.rooms[m.RoomID]
		name := room.Name
		if m.PersonalRoomName != nil {
			name = *m.PersonalRoomName
		}
		out = append(out, types.RoomSummary{ID: m.RoomID, DisplayName: name})
	}
	return out, nil
}

func (r Rooms) InsertMemberships(_ context.Context, memberships []types.Membership) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.memberships = append(r.s.memberships, memberships...)
	return nil
}

// Messages implements store.MessageStore.
type Messages struct{ s *state }

func (m Messages) Insert(_ context.Context, msg *types.Message) (*types.Message, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, rec := range m.s.messages {
		if rec.UUID == msg.UUID {
			return nil, ErrDuplicateUUID
		}
	}
	m.s.nextMsgID++
	msg.ID = m.s.nextMsgID
	cp := *msg
	m.s.messages = append(m.s.messages, &cp)
	return msg, nil
}

func (m Messages) ByUUID(_ context.Context, id uuid.UUID) (*types.Message, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, rec := range m.s.messages {
		if rec.UUID == id {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (m Messages) Page(_ context.Context, roomID types.Uid, page, pageSize int) ([]types.Message, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if pageSize <= 0 {
		pageSize = 20
	}
	if page < 0 {
		page = 0
	}

	var matched []types.Message
	for i := len(m.s.messages) - 1; i >= 0; i-- {
		rec := m.s.messages[i]
		if rec.RoomID == roomID {
			matched = append(matched, *rec)
		}
	}

	start := page * pageSize
	if start >= len(matched) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (m Messages) MarkRead(_ context.Context, ids []uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	for _, rec := range m.s.messages {
		if want[rec.UUID] {
			rec.Read = true
		}
	}
	return nil
}
