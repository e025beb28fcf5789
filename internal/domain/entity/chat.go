package entity

import (
	"encoding/json"
	"time"
)

// ChatType distinguishes course-wide groups from direct conversations.
type ChatType string

const (
	ChatTypeGroup      ChatType = "group"
	ChatTypeIndividual ChatType = "individual"
)

// MessageType classifies a chat message payload.
type MessageType string

const MessageTypeText MessageType = "text"

// ChatGroup is one logical channel grouping a course's participants.
type ChatGroup struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name,omitempty"`
	Description string       `json:"description,omitempty"`
	Photo       string       `json:"photo,omitempty"`
	ChatType    ChatType     `json:"chatType"`
	Course      int64        `json:"course"`
	Blocked     bool         `json:"blocked"`
	IsActive    bool         `json:"isActive"`
	IsAdmin     bool         `json:"isAdmin"`
	IsPublic    bool         `json:"isPublic"`
	LastMessage *ChatMessage `json:"lastMessage,omitempty"`
	Unread      int          `json:"unread"`
	CreatedAt   *time.Time   `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time   `json:"updatedAt,omitempty"`
	User        *User        `json:"user,omitempty"`
}

// ChatMessage is a single message; identity is ID and messages are immutable
// once created.
type ChatMessage struct {
	ID                int64       `json:"id"`
	Text              string      `json:"text"`
	MessageType       MessageType `json:"messageType"`
	ChatGroup         int64       `json:"chatGroup"`
	User              User        `json:"user"`
	IsRead            bool        `json:"isRead"`
	IsDeletedBySender bool        `json:"isDeletedBySender"`
	IsDeletedByAdmin  bool        `json:"isDeletedByAdmin"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         *time.Time  `json:"updatedAt,omitempty"`
}

// NewMessageRequest is the outbound payload for creating a chat message.
type NewMessageRequest struct {
	Text        string      `json:"text" validate:"required"`
	MessageType MessageType `json:"message_type" validate:"required"`
	ChatGroup   int64       `json:"chat_group" validate:"required"`
}

// Socket actions used on the realtime channel. Frames with any other action
// are ignored.
const (
	SocketActionMessage = "chat_message"
	SocketActionTyping  = "chat_typing"
)

// SocketEnvelope is the {action, data} wrapper framing every realtime payload.
// Data stays raw until the action is recognized.
type SocketEnvelope struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// TypingEvent signals that a user is composing a message.
type TypingEvent struct {
	User User `json:"user"`
}

// ChatEvent is a decoded realtime frame delivered to subscribers. Exactly one
// of Message and Typing is set, according to Action.
type ChatEvent struct {
	Action  string
	Message *ChatMessage
	Typing  *TypingEvent
}
