package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chatnotify/internal/domain"
	"chatnotify/internal/model"
)

func TestDecodeMessage(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		ev, err := DecodeMessage([]byte(`{"conversation_id":7,"sender_id":9,"content":"hi"}`))
		require.NoError(t, err)
		require.Equal(t, int64(7), ev.ConversationID)
		require.Equal(t, int64(9), ev.SenderID)
		require.Equal(t, "hi", ev.Content)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := DecodeMessage([]byte(`{`))
		require.ErrorIs(t, err, domain.ErrInvalidPayload)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := DecodeMessage([]byte(`{"content":"hi"}`))
		require.ErrorIs(t, err, domain.ErrInvalidPayload)
	})
}

func TestHandlerNormalized(t *testing.T) {
	h := Handler{}.Normalized()
	require.NotPanics(t, func() {
		h.OnConnect()
		h.OnDisconnect()
		h.OnReconnect()
		h.OnMessage(model.MessageEvent{ConversationID: 1, SenderID: 2})
	})
}
