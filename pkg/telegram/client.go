package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

type Client struct {
	Bot          *tgbotapi.BotAPI
	UpdateConfig tgbotapi.UpdateConfig
}

func NewClient(token string, debug bool) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	bot.Debug = debug

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	return &Client{
		Bot:          bot,
		UpdateConfig: updateConfig,
	}, nil
}

// SendText sends a plain message and logs delivery failures.
func (c *Client) SendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := c.Bot.Send(msg); err != nil {
		logrus.WithError(err).WithField("chat_id", chatID).Error("Failed to send message")
	}
}

// SendMarkdown sends a message rendered as Markdown.
func (c *Client) SendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := c.Bot.Send(msg); err != nil {
		logrus.WithError(err).WithField("chat_id", chatID).Error("Failed to send message")
	}
}

// SendWithKeyboard sends a message with an inline keyboard attached.
func (c *Client) SendWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	if _, err := c.Bot.Send(msg); err != nil {
		logrus.WithError(err).WithField("chat_id", chatID).Error("Failed to send message")
	}
}

// AnswerCallback acknowledges an inline button press and removes its keyboard.
func (c *Client) AnswerCallback(callback *tgbotapi.CallbackQuery, text string) {
	if callback.Message != nil {
		edit := tgbotapi.NewEditMessageReplyMarkup(callback.Message.Chat.ID, callback.Message.MessageID, emptyKeyboard())
		if _, err := c.Bot.Send(edit); err != nil {
			logrus.WithError(err).Warn("Failed to clear inline keyboard")
		}
	}

	if _, err := c.Bot.Request(tgbotapi.NewCallback(callback.ID, text)); err != nil {
		logrus.WithError(err).Warn("Failed to answer callback")
	}
}

// Stop stops long polling.
func (c *Client) Stop() {
	c.Bot.StopReceivingUpdates()
}

// emptyKeyboard serialises as an empty inline_keyboard array; a nil slice would be sent as null.
func emptyKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
}
