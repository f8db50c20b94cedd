// Package session implements the per-connection Session Actor: the
// state machine that multiplexes inbound socket frames and cross-session
// ThreadEvents, enforces room-membership authorization, and drives
// persistence and fan-out for chat messages and read receipts.
package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/roomrelay/server/internal/store"
	"github.com/roomrelay/server/internal/types"
)

// textMessageType mirrors gorilla/websocket.TextMessage's wire value so
// this package does not need to import the websocket driver directly.
const textMessageType = 1

// Socket is the minimal duplex frame transport the Actor needs. A
// *websocket.Conn satisfies it without any adapter.
type Socket interface {
	ReadMessage() (messageType int, data []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// RouterHandle is the subset of router.Router the Actor depends on,
// expressed as an interface here to avoid a session <-> router import
// cycle (router.Router holds *session.Inbox values).
type RouterHandle interface {
	Lookup(userID types.Uid) (*Inbox, bool)
	Unregister(userID types.Uid, mine *Inbox)
}

// Actor is one connection's state: the socket halves, its inbox
// receiver, its authenticated identity, and handles to storage and the
// router. It is strictly single-threaded; nothing outside Run ever
// touches its fields.
type Actor struct {
	socket Socket
	userID types.Uid
	inbox  *Inbox
	router RouterHandle
	stores *store.Stores
	log    zerolog.Logger
}

// NewActor builds an Actor bound to one connection.
func NewActor(socket Socket, userID types.Uid, inbox *Inbox, router RouterHandle, stores *store.Stores, log zerolog.Logger) *Actor {
	return &Actor{
		socket: socket,
		userID: userID,
		inbox:  inbox,
		router: router,
		stores: stores,
		log:    log.With().Int64("user_id", int64(userID)).Logger(),
	}
}

type rawFrame struct {
	messageType int
	data        []byte
	err         error
}

// Run is the main loop: repeatedly wait for either an inbound socket
// frame or a ThreadEvent from the inbox, whichever arrives first. There
// is no priority between the two sources. It returns when the socket
// closes, the inbox is closed, or an unrecoverable error occurs; on
// return the caller is expected to have already removed (or is about to
// remove) this session from the Router via Unregister.
func (a *Actor) Run() {
	// Buffered by 1: readLoop's send must not block forever when Run
	// returns for a reason other than the read side closing first (a
	// write failure or a storage error). The deferred socket.Close()
	// below unblocks readLoop's in-flight ReadMessage, and it needs
	// somewhere to park its next result without a receiver still running.
	frames := make(chan rawFrame, 1)
	go a.readLoop(frames)

	defer func() {
		a.router.Unregister(a.userID, a.inbox)
		a.inbox.Close()
		a.socket.Close()
	}()

	for {
		select {
		case fr, ok := <-frames:
			if !ok || fr.err != nil {
				return
			}
			if !a.handleFrame(fr.messageType, fr.data) {
				return
			}

		case <-a.inbox.Signal():
			for {
				ev, ok := a.inbox.Recv()
				if !ok {
					break
				}
				if !a.handleEvent(ev) {
					return
				}
			}
		}
	}
}

func (a *Actor) readLoop(out chan<- rawFrame) {
	defer close(out)
	for {
		mt, data, err := a.socket.ReadMessage()
		out <- rawFrame{messageType: mt, data: data, err: err}
		if err != nil {
			return
		}
	}
}

// handleFrame processes one inbound socket frame. It returns false when
// the Actor should terminate.
func (a *Actor) handleFrame(messageType int, data []byte) bool {
	if messageType != textMessageType {
		return a.write(errResponse(ErrWrongFormat))
	}

	var req WsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return a.write(errResponse(ErrWrongFormat))
	}

	switch {
	case req.Message != nil:
		return a.handleMessage(req.Message)
	case req.MessagesRead != nil:
		return a.handleMessagesRead(req.MessagesRead)
	default:
		return a.write(errResponse(ErrWrongFormat))
	}
}

// handleMessage persists an inbound chat message and fans it out to the
// room's other online members. Persistence precedes fan-out so any live
// delivery is already durable in history.
func (a *Actor) handleMessage(req *MessageRequest) bool {
	ctx := context.Background()

	room, err := a.stores.Rooms.ByID(ctx, req.RoomID)
	if err != nil {
		a.log.Error().Err(err).Msg("session: room lookup failed")
		return false
	}
	if room == nil {
		return a.write(errResponse(ErrUserNotFound))
	}

	members, err := a.stores.Rooms.Members(ctx, req.RoomID)
	if err != nil {
		a.log.Error().Err(err).Msg("session: members lookup failed")
		return false
	}
	if !memberOf(members, a.userID) {
		return a.write(errResponse(ErrNotMemberOfRoom))
	}

	msg := &types.Message{
		UUID:      req.UUID,
		RoomID:    req.RoomID,
		UserID:    a.userID,
		Content:   req.Content,
		CreatedAt: time.Now().UTC(),
		Read:      false,
	}
	if _, err := a.stores.Messages.Insert(ctx, msg); err != nil {
		a.log.Error().Err(err).Msg("session: message persist failed")
		return false
	}

	for _, member := range members {
		if member.ID == a.userID {
			continue
		}
		if inbox, ok := a.router.Lookup(member.ID); ok {
			inbox.Send(ThreadEvent{UserMessage: &UserMessageEvent{
				UUID:     req.UUID,
				SenderID: a.userID,
				Content:  req.Content,
			}})
		}
		// A missing recipient is not an error: they are simply offline.
	}

	return a.write(okMessageReceived(req.UUID))
}

// handleMessagesRead marks the given messages read and, if the caller
// is a room member, fans the receipt out to the room's other online
// members. The bulk update runs before the membership check, so a
// non-member's request still marks the messages read even though the
// response reports NotMemberOfRoom.
func (a *Actor) handleMessagesRead(req *MessagesReadRequest) bool {
	ctx := context.Background()

	if err := a.stores.Messages.MarkRead(ctx, req.MessageUUIDs); err != nil {
		a.log.Error().Err(err).Msg("session: mark-read failed")
		return false
	}

	members, err := a.stores.Rooms.Members(ctx, req.RoomID)
	if err != nil {
		a.log.Error().Err(err).Msg("session: members lookup failed")
		return false
	}
	if !memberOf(members, a.userID) {
		return a.write(errResponse(ErrNotMemberOfRoom))
	}

	for _, member := range members {
		if member.ID == a.userID {
			continue
		}
		if inbox, ok := a.router.Lookup(member.ID); ok {
			inbox.Send(ThreadEvent{MessagesRead: &MessagesReadEvent{
				RoomID:       req.RoomID,
				MessageUUIDs: req.MessageUUIDs,
			}})
		}
	}

	return true
}

// handleEvent translates one inbox event into a wire response.
func (a *Actor) handleEvent(ev ThreadEvent) bool {
	switch {
	case ev.UserMessage != nil:
		um := ev.UserMessage
		return a.write(okMessage(MessagePayload{
			UUID:      um.UUID,
			UserID:    um.SenderID,
			Content:   um.Content,
			CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
			Read:      false,
		}))
	case ev.MessagesRead != nil:
		mr := ev.MessagesRead
		return a.write(okMessagesRead(MessagesReadRequest{
			RoomID:       mr.RoomID,
			MessageUUIDs: mr.MessageUUIDs,
		}))
	default:
		return true
	}
}

// write serializes resp and sends it. A serialization failure is
// answered with Fatal in its place; a write failure terminates the loop.
func (a *Actor) write(resp WsResponse) bool {
	data, err := json.Marshal(resp)
	if err != nil {
		a.log.Error().Err(err).Msg("session: serialization failed")
		data, _ = json.Marshal(errResponse(ErrFatal))
	}

	if err := a.socket.WriteMessage(textMessageType, data); err != nil {
		a.log.Warn().Err(err).Msg("session: write failed, terminating")
		return false
	}
	return true
}

func memberOf(members []types.User, userID types.Uid) bool {
	for _, m := range members {
		if m.ID == userID {
			return true
		}
	}
	return false
}
