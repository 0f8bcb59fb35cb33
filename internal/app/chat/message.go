/*
Package chat implements the realtime gateway: connection lifecycle, history,
message posting with sanitization, authorized deletion, and broadcast.

This file defines the message model and the JSON events exchanged over a
WebSocket connection. Every frame is an Event envelope {type, payload}.
*/
package chat

import (
	"time"
)

const (
	// DefaultChannel is the broadcast group every connection joins. Only this
	// channel is used in practice; the channel field exists so clients can
	// name it explicitly.
	DefaultChannel = "global"

	// HistoryLimit caps the number of messages returned by a history request.
	HistoryLimit = 50
)

// AuthorRef is the minimal author projection attached to broadcast and
// history messages.
type AuthorRef struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Message is a chat message as seen by clients: the persisted record joined
// with its author projection.
type Message struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Channel   string    `json:"channel"`
	CreatedAt time.Time `json:"createdAt"`
	Author    AuthorRef `json:"user"`
}

// EventType names a WebSocket event.
type EventType string

// Inbound events, sent by clients.
const (
	EventRequestHistory EventType = "request_chat_history"
	EventSendMessage    EventType = "send_message"
	EventDeleteMessage  EventType = "delete_message"
)

// Outbound events, pushed by the server.
const (
	EventUserProfile    EventType = "user_profile"
	EventChatHistory    EventType = "chat_history"
	EventReceiveMessage EventType = "receive_message"
	EventMessageDeleted EventType = "message_deleted"
	EventError          EventType = "error_message"
)

// Event is the envelope for every WebSocket frame in both directions.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

// HistoryRequestPayload asks for the recent messages of a channel.
type HistoryRequestPayload struct {
	Channel string `json:"channel,omitempty"`
}

// HistoryPayload answers a history request. Exactly one of History or Error
// is set, mirroring the request/response union of the protocol.
type HistoryPayload struct {
	History []Message `json:"history,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// SendMessagePayload submits new message content.
type SendMessagePayload struct {
	Content string `json:"content"`
	Channel string `json:"channel,omitempty"`
}

// DeleteMessagePayload requests deletion of a message by id.
type DeleteMessagePayload struct {
	MessageID int64 `json:"messageId"`
}

// MessageDeletedPayload notifies every connection that a message is gone.
type MessageDeletedPayload struct {
	MessageID int64 `json:"messageId"`
}

// ErrorPayload is a structured, connection-local error event.
type ErrorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ProfilePayload is pushed once to a connection right after it is accepted.
// It contains the connected user's own non-credential fields only.
type ProfilePayload struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Role      string `json:"role"`
	Bio       string `json:"bio,omitempty"`
}
