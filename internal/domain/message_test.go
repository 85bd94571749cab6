package domain

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"chatnotify/internal/model"
)

func TestValidateMessage(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		err := ValidateMessage(model.MessageEvent{ConversationID: 7, SenderID: 9, Content: "hi"})
		require.NoError(t, err)
	})

	t.Run("empty content is valid", func(t *testing.T) {
		err := ValidateMessage(model.MessageEvent{ConversationID: 7, SenderID: 9})
		require.NoError(t, err)
	})

	t.Run("missing ids", func(t *testing.T) {
		invalid := []model.MessageEvent{
			{SenderID: 9, Content: "hi"},
			{ConversationID: 7, Content: "hi"},
			{ConversationID: -1, SenderID: 9},
			{ConversationID: 7, SenderID: 0},
		}
		for _, ev := range invalid {
			require.ErrorIs(t, ValidateMessage(ev), ErrInvalidPayload)
		}
	})
}

func TestPreview(t *testing.T) {
	t.Run("short content is untouched", func(t *testing.T) {
		require.Equal(t, "See you at noon", Preview("See you at noon"))
	})

	t.Run("exactly the limit is untouched", func(t *testing.T) {
		content := strings.Repeat("a", PreviewMaxRunes)
		require.Equal(t, content, Preview(content))
	})

	t.Run("long content is truncated with ellipsis", func(t *testing.T) {
		content := "Hi there, are you free tomorrow for the exam review session?"
		got := Preview(content)
		require.Equal(t, "Hi there, are you free tomorrow for the exam revie...", got)
		require.LessOrEqual(t, utf8.RuneCountInString(got), PreviewMaxRunes+3)
	})

	t.Run("truncation counts runes, not bytes", func(t *testing.T) {
		content := strings.Repeat("á", PreviewMaxRunes+1)
		got := Preview(content)
		require.Equal(t, strings.Repeat("á", PreviewMaxRunes)+"...", got)
	})

	t.Run("empty content falls back", func(t *testing.T) {
		require.Equal(t, EmptyPreview, Preview(""))
	})
}

func TestFallbackName(t *testing.T) {
	require.Equal(t, "User #42", FallbackName(42))
}
