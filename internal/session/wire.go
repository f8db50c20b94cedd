package session

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/roomrelay/server/internal/types"
)

// Wire discriminator strings. These literal values must never change:
// existing clients depend on them.
const (
	typeMessage      = "Message"
	typeMessagesRead = "MessagesRead"
)

// WsRequest is the client->server tagged union, encoded on the wire as
// {"type": "Message"|"MessagesRead", ...fields}.
type WsRequest struct {
	Message      *MessageRequest
	MessagesRead *MessagesReadRequest
}

// MessageRequest is the payload of a WsRequest{type:"Message"}.
type MessageRequest struct {
	UUID    uuid.UUID `json:"uuid"`
	RoomID  types.Uid `json:"room_id"`
	Content string    `json:"content"`
}

// MessagesReadRequest is the payload of a WsRequest{type:"MessagesRead"}.
type MessagesReadRequest struct {
	RoomID       types.Uid   `json:"room_id"`
	MessageUUIDs []uuid.UUID `json:"message_uuids"`
}

// UnmarshalJSON dispatches on the "type" discriminator into the matching
// concrete payload. An unrecognized or missing type is a parse error,
// which the Actor reports to the client as WrongFormat.
func (r *WsRequest) UnmarshalJSON(data []byte) error {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	switch head.Type {
	case typeMessage:
		var m MessageRequest
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		r.Message = &m
	case typeMessagesRead:
		var m MessagesReadRequest
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		r.MessagesRead = &m
	default:
		return fmt.Errorf("session: unknown request type %q", head.Type)
	}
	return nil
}

// WsResponse is the server->client tagged union: either Ok(payload) or
// Err(tag). The "Ok"/"Err" discriminators are literal wire strings that
// existing clients depend on.
type WsResponse struct {
	Ok  *OkPayload `json:"Ok,omitempty"`
	Err string     `json:"Err,omitempty"`
}

// OkPayload is the inner tagged union of a successful WsResponse.
type OkPayload struct {
	Message         *MessagePayload      `json:"Message,omitempty"`
	MessageReceived *uuid.UUID           `json:"MessageReceived,omitempty"`
	MessagesRead    *MessagesReadRequest `json:"MessagesRead,omitempty"`
}

// MessagePayload is a delivered chat message as seen by a recipient.
type MessagePayload struct {
	UUID      uuid.UUID `json:"uuid"`
	UserID    types.Uid `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt string    `json:"created_at"`
	Read      bool      `json:"read"`
}

// Error tag values for WsResponse.Err. These are wire-visible literal
// strings; existing clients match on them directly.
const (
	ErrWrongFormat     = "WrongFormat"
	ErrUserNotFound    = "UserNotFound"
	ErrNotMemberOfRoom = "NotMemberOfRoom"
	ErrFatal           = "Fatal"
)

func okMessage(p MessagePayload) WsResponse {
	return WsResponse{Ok: &OkPayload{Message: &p}}
}

func okMessageReceived(id uuid.UUID) WsResponse {
	return WsResponse{Ok: &OkPayload{MessageReceived: &id}}
}

func okMessagesRead(p MessagesReadRequest) WsResponse {
	return WsResponse{Ok: &OkPayload{MessagesRead: &p}}
}

func errResponse(tag string) WsResponse {
	return WsResponse{Err: tag}
}
