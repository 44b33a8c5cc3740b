package telegram

import (
	"encoding/json"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyKeyboardSerialisesAsArray(t *testing.T) {
	edit := tgbotapi.NewEditMessageReplyMarkup(42, 7, emptyKeyboard())
	require.NotNil(t, edit.ReplyMarkup)

	data, err := json.Marshal(edit.ReplyMarkup)
	require.NoError(t, err)
	assert.JSONEq(t, `{"inline_keyboard":[]}`, string(data))
}
