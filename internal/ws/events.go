package ws

import (
	"encoding/json"

	"storechatgo/internal/services/chat"
)

// Envelope wraps every WS frame, both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"` // arbitrary JSON object
}

// client -> server frame types
const (
	frameJoinRoom    = "join_room"
	frameSendMessage = "send_message"
	frameTyping      = "typing"
	frameStopTyping  = "stop_typing"
)

// server -> client event types
const (
	EventMessageHistory = "message_history"
	EventUserJoined     = "user_joined"
	EventUserLeft       = "user_left"
	EventNewMessage     = "new_message"
	EventUserTyping     = "user_typing"
	EventError          = "error"
)

// ──────────────────────────── Request / Event DTOs ───────────────────────────

// JoinRoomBody is the body for "join_room".
type JoinRoomBody struct {
	RoomID string `json:"roomId" validate:"required"`
}

// SendMessageBody is the body for "send_message".
type SendMessageBody struct {
	Message string `json:"message" validate:"required"`
}

// PresenceBody is broadcast for "user_joined" / "user_left".
type PresenceBody struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// TypingBody is broadcast for "user_typing".
type TypingBody struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// HistoryBody is pushed to a joining connection only.
type HistoryBody struct {
	Messages []chat.ChatMessageDTO `json:"messages"`
}

// ErrorBody is returned to the originating connection for failures.
type ErrorBody struct {
	Message string `json:"message"`
}

func marshalEvent(eventType string, data any) ([]byte, error) {
	return json.Marshal(map[string]any{
		"type": eventType,
		"data": data,
	})
}
