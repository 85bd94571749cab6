package domain

import (
	"errors"
	"fmt"

	"chatnotify/internal/model"
)

const (
	// PreviewMaxRunes is the longest message excerpt shown in a notification.
	PreviewMaxRunes = 50

	previewEllipsis = "..."

	// EmptyPreview replaces previews for messages with no text content.
	EmptyPreview = "New message"
)

var ErrInvalidPayload = errors.New("invalid message payload")

// ValidateMessage checks the shape contract of a message:received payload.
// Content may be empty (the preview falls back), but both ids are required.
func ValidateMessage(ev model.MessageEvent) error {
	if ev.ConversationID <= 0 {
		return fmt.Errorf("%w: missing conversation_id", ErrInvalidPayload)
	}
	if ev.SenderID <= 0 {
		return fmt.Errorf("%w: missing sender_id", ErrInvalidPayload)
	}
	return nil
}

// Preview truncates message content for display. Content longer than
// PreviewMaxRunes is cut there and ellipsis-suffixed; empty content gets
// the EmptyPreview placeholder.
func Preview(content string) string {
	if content == "" {
		return EmptyPreview
	}
	runes := []rune(content)
	if len(runes) <= PreviewMaxRunes {
		return content
	}
	return string(runes[:PreviewMaxRunes]) + previewEllipsis
}

// FallbackName names a sender whose display name is not cached.
func FallbackName(senderID int64) string {
	return fmt.Sprintf("User #%d", senderID)
}
