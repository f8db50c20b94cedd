package session

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roomrelay/server/internal/store"
	"github.com/roomrelay/server/internal/store/memstore"
	"github.com/roomrelay/server/internal/types"
)

type fakeSocket struct {
	written []WsResponse
}

func (f *fakeSocket) ReadMessage() (int, []byte, error) { return 0, nil, nil }

func (f *fakeSocket) WriteMessage(_ int, data []byte) error {
	var resp WsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return err
	}
	f.written = append(f.written, resp)
	return nil
}

func (f *fakeSocket) Close() error { return nil }

type fakeRouter struct {
	boxes map[types.Uid]*Inbox
}

func newFakeRouter() *fakeRouter { return &fakeRouter{boxes: make(map[types.Uid]*Inbox)} }

func (r *fakeRouter) register(id types.Uid, b *Inbox) { r.boxes[id] = b }

func (r *fakeRouter) Lookup(id types.Uid) (*Inbox, bool) {
	b, ok := r.boxes[id]
	return b, ok
}

func (r *fakeRouter) Unregister(id types.Uid, mine *Inbox) {
	if r.boxes[id] == mine {
		delete(r.boxes, id)
	}
}

func newTestActor(t *testing.T, userID types.Uid, stores *store.Stores, rt *fakeRouter, socket *fakeSocket) *Actor {
	t.Helper()
	return NewActor(socket, userID, NewInbox(), rt, stores, zerolog.Nop())
}

func seedRoomWithMembers(t *testing.T, stores *store.Stores, userIDs ...types.Uid) types.Uid {
	t.Helper()
	ctx := context.Background()

	room, err := stores.Rooms.Insert(ctx, &types.Room{Name: "general"})
	if err != nil {
		t.Fatalf("Rooms.Insert: %v", err)
	}

	var memberships []types.Membership
	for _, uid := range userIDs {
		memberships = append(memberships, types.Membership{RoomID: room.ID, UserID: uid})
	}
	if err := stores.Rooms.InsertMemberships(ctx, memberships); err != nil {
		t.Fatalf("InsertMemberships: %v", err)
	}
	return room.ID
}

func TestHandleMessageFanOutAndPersist(t *testing.T) {
	backend := memstore.New()
	stores := backend.Stores()
	ctx := context.Background()

	sender := &types.User{Username: "alice"}
	recipient := &types.User{Username: "bob"}
	if err := stores.Users.Insert(ctx, sender); err != nil {
		t.Fatalf("insert sender: %v", err)
	}
	if err := stores.Users.Insert(ctx, recipient); err != nil {
		t.Fatalf("insert recipient: %v", err)
	}

	roomID := seedRoomWithMembers(t, stores, sender.ID, recipient.ID)

	rt := newFakeRouter()
	recipientInbox := NewInbox()
	rt.register(recipient.ID, recipientInbox)

	socket := &fakeSocket{}
	actor := newTestActor(t, sender.ID, stores, rt, socket)

	msgID := uuid.New()
	ok := actor.handleMessage(&MessageRequest{UUID: msgID, RoomID: roomID, Content: "hi"})
	if !ok {
		t.Fatal("handleMessage returned false")
	}

	if len(socket.written) != 1 || socket.written[0].Ok == nil || socket.written[0].Ok.MessageReceived == nil {
		t.Fatalf("sender ack = %+v", socket.written)
	}
	if *socket.written[0].Ok.MessageReceived != msgID {
		t.Fatalf("acked uuid = %v, want %v", *socket.written[0].Ok.MessageReceived, msgID)
	}

	select {
	case <-recipientInbox.Signal():
	default:
		t.Fatal("recipient inbox was never signaled")
	}
	ev, ok := recipientInbox.Recv()
	if !ok || ev.UserMessage == nil || ev.UserMessage.UUID != msgID {
		t.Fatalf("recipient event = %+v, %v", ev, ok)
	}

	stored, err := stores.Messages.ByUUID(ctx, msgID)
	if err != nil || stored == nil {
		t.Fatalf("ByUUID after handleMessage: %v, %v", stored, err)
	}
}

func TestHandleMessageUnknownRoom(t *testing.T) {
	backend := memstore.New()
	stores := backend.Stores()
	socket := &fakeSocket{}
	actor := newTestActor(t, types.Uid(1), stores, newFakeRouter(), socket)

	ok := actor.handleMessage(&MessageRequest{UUID: uuid.New(), RoomID: types.Uid(999), Content: "x"})
	if !ok {
		t.Fatal("handleMessage on unknown room terminated the session")
	}
	if len(socket.written) != 1 || socket.written[0].Err != ErrUserNotFound {
		t.Fatalf("response = %+v, want Err=%s", socket.written, ErrUserNotFound)
	}
}

func TestHandleMessageSenderNotMember(t *testing.T) {
	backend := memstore.New()
	stores := backend.Stores()
	ctx := context.Background()

	member := &types.User{Username: "alice"}
	outsider := &types.User{Username: "mallory"}
	if err := stores.Users.Insert(ctx, member); err != nil {
		t.Fatalf("insert member: %v", err)
	}
	if err := stores.Users.Insert(ctx, outsider); err != nil {
		t.Fatalf("insert outsider: %v", err)
	}
	roomID := seedRoomWithMembers(t, stores, member.ID)

	socket := &fakeSocket{}
	actor := newTestActor(t, outsider.ID, stores, newFakeRouter(), socket)

	ok := actor.handleMessage(&MessageRequest{UUID: uuid.New(), RoomID: roomID, Content: "x"})
	if !ok {
		t.Fatal("handleMessage terminated the session")
	}
	if len(socket.written) != 1 || socket.written[0].Err != ErrNotMemberOfRoom {
		t.Fatalf("response = %+v, want Err=%s", socket.written, ErrNotMemberOfRoom)
	}
}

// TestHandleMessagesReadUpdatesBeforeMembershipCheck pins the intended
// ordering: the bulk read-receipt update runs even when the caller
// turns out not to be a room member.
func TestHandleMessagesReadUpdatesBeforeMembershipCheck(t *testing.T) {
	backend := memstore.New()
	stores := backend.Stores()
	ctx := context.Background()

	member := &types.User{Username: "alice"}
	outsider := &types.User{Username: "mallory"}
	if err := stores.Users.Insert(ctx, member); err != nil {
		t.Fatalf("insert member: %v", err)
	}
	if err := stores.Users.Insert(ctx, outsider); err != nil {
		t.Fatalf("insert outsider: %v", err)
	}
	roomID := seedRoomWithMembers(t, stores, member.ID)

	msgID := uuid.New()
	if _, err := stores.Messages.Insert(ctx, &types.Message{UUID: msgID, RoomID: roomID, UserID: member.ID}); err != nil {
		t.Fatalf("seed message: %v", err)
	}

	socket := &fakeSocket{}
	actor := newTestActor(t, outsider.ID, stores, newFakeRouter(), socket)

	ok := actor.handleMessagesRead(&MessagesReadRequest{RoomID: roomID, MessageUUIDs: []uuid.UUID{msgID}})
	if !ok {
		t.Fatal("handleMessagesRead terminated the session")
	}
	if len(socket.written) != 1 || socket.written[0].Err != ErrNotMemberOfRoom {
		t.Fatalf("response = %+v, want Err=%s", socket.written, ErrNotMemberOfRoom)
	}

	stored, err := stores.Messages.ByUUID(ctx, msgID)
	if err != nil || stored == nil {
		t.Fatalf("ByUUID: %v, %v", stored, err)
	}
	if !stored.Read {
		t.Fatal("MarkRead did not apply despite running before the membership check")
	}
}

func TestHandleMessagesReadFansOutToOtherMembers(t *testing.T) {
	backend := memstore.New()
	stores := backend.Stores()
	ctx := context.Background()

	sender := &types.User{Username: "alice"}
	peer := &types.User{Username: "bob"}
	if err := stores.Users.Insert(ctx, sender); err != nil {
		t.Fatalf("insert sender: %v", err)
	}
	if err := stores.Users.Insert(ctx, peer); err != nil {
		t.Fatalf("insert peer: %v", err)
	}
	roomID := seedRoomWithMembers(t, stores, sender.ID, peer.ID)

	msgID := uuid.New()
	if _, err := stores.Messages.Insert(ctx, &types.Message{UUID: msgID, RoomID: roomID, UserID: peer.ID}); err != nil {
		t.Fatalf("seed message: %v", err)
	}

	rt := newFakeRouter()
	peerInbox := NewInbox()
	rt.register(peer.ID, peerInbox)

	actor := newTestActor(t, sender.ID, stores, rt, &fakeSocket{})

	ok := actor.handleMessagesRead(&MessagesReadRequest{RoomID: roomID, MessageUUIDs: []uuid.UUID{msgID}})
	if !ok {
		t.Fatal("handleMessagesRead returned false")
	}

	ev, ok := peerInbox.Recv()
	if !ok || ev.MessagesRead == nil || ev.MessagesRead.RoomID != roomID {
		t.Fatalf("peer event = %+v, %v", ev, ok)
	}
}
