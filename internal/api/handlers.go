package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/roomrelay/server/internal/auth"
	"github.com/roomrelay/server/internal/types"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID types.Uid `json:"user_id"`
	Token  string    `json:"token"`
}

// handleLogin verifies the submitted credentials and, on success,
// issues a bearer token for the authenticated user.
func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Envelope{Error: AccessDenied})
		return
	}

	user, err := a.stores.Users.ByUsername(r.Context(), req.Username)
	if err != nil {
		a.log.Error().Err(err).Msg("api: login lookup failed")
		writeJSON(w, http.StatusInternalServerError, Envelope{Error: UnexpectedError})
		return
	}
	if user == nil || !auth.VerifyPassword(req.Password, user.PasswordHash) {
		writeJSON(w, http.StatusUnauthorized, Envelope{Error: AccessDenied})
		return
	}

	token, err := a.tokens.Encode(user.ID)
	if err != nil {
		a.log.Error().Err(err).Msg("api: token encode failed")
		writeJSON(w, http.StatusInternalServerError, Envelope{Error: UnexpectedError})
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{UserID: user.ID, Token: token})
}

type userResponse struct {
	ID       types.Uid `json:"id"`
	Username string    `json:"username"`
}

// handleGetUsers lists every registered user.
func (a *API) handleGetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.stores.Users.All(r.Context())
	if err != nil {
		a.log.Error().Err(err).Msg("api: get-users failed")
		writeJSON(w, http.StatusInternalServerError, Envelope{Error: AuthenticatedUnexpectedError})
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse{ID: u.ID, Username: u.Username})
	}
	writeJSON(w, http.StatusOK, out)
}

type roomResponse struct {
	ID   types.Uid `json:"id"`
	Name string    `json:"name"`
}

// handleGetRooms returns the caller's rooms with personalized display
// names already resolved by the store layer.
func (a *API) handleGetRooms(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r)

	rooms, err := a.stores.Rooms.ForUser(r.Context(), claims.UserID)
	if err != nil {
		a.log.Error().Err(err).Msg("api: get-rooms failed")
		writeJSON(w, http.StatusInternalServerError, Envelope{Error: AuthenticatedUnexpectedError})
		return
	}

	out := make([]roomResponse, 0, len(rooms))
	for _, rm := range rooms {
		out = append(out, roomResponse{ID: rm.ID, Name: rm.DisplayName})
	}
	writeJSON(w, http.StatusOK, out)
}

type createPrivateRoomRequest struct {
	Name           string    `json:"name"`
	ReceiverUserID types.Uid `json:"receiver_user_id"`
}

type createPrivateRoomResponse struct {
	ID   types.Uid `json:"id"`
	Name string    `json:"name"`
}

// handleCreatePrivateRoom creates a two-member room and inserts
// memberships with swapped personal labels, so each side sees the
// other's username as the room's display name.
func (a *API) handleCreatePrivateRoom(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r)

	var req createPrivateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Envelope{Error: UserNotFound})
		return
	}

	sender, err := a.stores.Users.ByID(r.Context(), claims.UserID)
	if err != nil {
		a.log.Error().Err(err).Msg("api: create-private-room sender lookup failed")
		writeJSON(w, http.StatusInternalServerError, Envelope{Error: AuthenticatedUnexpectedError})
		return
	}
	receiver, err := a.stores.Users.ByID(r.Context(), req.ReceiverUserID)
	if err != nil {
		a.log.Error().Err(err).Msg("api: create-private-room receiver lookup failed")
		writeJSON(w, http.StatusInternalServerError, Envelope{Error: AuthenticatedUnexpectedError})
		return
	}
	if sender == nil || receiver == nil {
		writeJSON(w, http.StatusNotFound, Envelope{Error: UserNotFound})
		return
	}

	room, err := a.stores.Rooms.Insert(r.Context(), &types.Room{Name: req.Name})
	if err != nil {
		a.log.Error().Err(err).Msg("api: create-private-room insert failed")
		writeJSON(w, http.StatusInternalServerError, Envelope{Error: AuthenticatedUnexpectedError})
		return
	}

	receiverName := receiver.Username
	senderName := sender.Username
	err = a.stores.Rooms.InsertMemberships(r.Context(), []types.Membership{
		{RoomID: room.ID, UserID: sender.ID, PersonalRoomName: &receiverName},
		{RoomID: room.ID, UserID: receiver.ID, PersonalRoomName: &senderName},
	})
	if err != nil {
		a.log.Error().Err(err).Msg("api: create-private-room memberships failed")
		writeJSON(w, http.StatusInternalServerError, Envelope{Error: AuthenticatedUnexpectedError})
		return
	}

	writeJSON(w, http.StatusOK, createPrivateRoomResponse{ID: room.ID, Name: receiver.Username})
}

type messageResponse struct {
	ID        types.Uid `json:"id"`
	UUID      string    `json:"uuid"`
	UserID    types.Uid `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt string    `json:"created_at"`
	Read      bool      `json:"read"`
}

// handleGetMessages returns one page of a room's message history,
// newest first, after confirming the room exists and the caller is a
// member of it.
func (a *API) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r)
	q := r.URL.Query()

	roomID, err := strconv.ParseInt(q.Get("room_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Envelope{Error: RoomNotFound})
		return
	}
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	room, err := a.stores.Rooms.ByID(r.Context(), types.Uid(roomID))
	if err != nil {
		a.log.Error().Err(err).Msg("api: get-messages room lookup failed")
		writeJSON(w, http.StatusInternalServerError, Envelope{Error: AuthenticatedUnexpectedError})
		return
	}
	if room == nil {
		writeJSON(w, http.StatusNotFound, Envelope{Error: RoomNotFound})
		return
	}

	members, err := a.stores.Rooms.Members(r.Context(), types.Uid(roomID))
	if err != nil {
		a.log.Error().Err(err).Msg("api: get-messages members lookup failed")
		writeJSON(w, http.StatusInternalServerError, Envelope{Error: AuthenticatedUnexpectedError})
		return
	}
	if !memberOf(members, claims.UserID) {
		writeJSON(w, http.StatusForbidden, Envelope{Error: NotMemberOfRoom})
		return
	}

	messages, err := a.stores.Messages.Page(r.Context(), types.Uid(roomID), page, pageSize)
	if err != nil {
		a.log.Error().Err(err).Msg("api: get-messages page failed")
		writeJSON(w, http.StatusInternalServerError, Envelope{Error: AuthenticatedUnexpectedError})
		return
	}

	out := make([]messageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, messageResponse{
			ID:        m.ID,
			UUID:      m.UUID.String(),
			UserID:    m.UserID,
			Content:   m.Content,
			CreatedAt: m.CreatedAt.Format("2006-01-02T15:04:05"),
			Read:      m.Read,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func memberOf(members []types.User, userID types.Uid) bool {
	for _, m := range members {
		if m.ID == userID {
			return true
		}
	}
	return false
}
