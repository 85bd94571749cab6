package model

import "time"

// Notification is the enriched, display-ready form of one incoming message.
// Immutable once constructed; it is either handed to subscribers or dropped,
// never persisted.
type Notification struct {
	ConversationID int64     `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	SenderName     string    `json:"sender_name"`
	MessagePreview string    `json:"message_preview"`
	CreatedAt      time.Time `json:"created_at"`
}

// MessageEvent is the validated shape of a message:received transport event.
type MessageEvent struct {
	ConversationID int64  `json:"conversation_id"`
	SenderID       int64  `json:"sender_id"`
	Content        string `json:"content"`
}

// ConversationUnread is one row of the unread-count API response.
type ConversationUnread struct {
	ConversationID int64 `json:"conversation_id"`
	UnreadCount    int   `json:"unread_count"`
}
