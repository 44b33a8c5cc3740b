package handler

import (
	"context"
	"strings"

	"daily-tasks-bot/internal/config"
	"daily-tasks-bot/internal/service"
	"daily-tasks-bot/pkg/calendar"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Messenger is the outgoing side of the bot. *telegram.Client implements it.
type Messenger interface {
	SendText(chatID int64, text string)
	SendMarkdown(chatID int64, text string)
	SendWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup)
	AnswerCallback(callback *tgbotapi.CallbackQuery, text string)
}

type Handler struct {
	client      Messenger
	userService *service.UserService
	taskService *service.TaskService
	attendance  *service.AttendanceService
	rollover    *service.RolloverEngine
	analytics   *service.AnalyticsService
	userStates  map[int64]string
	config      *config.BotConfig
	today       func() string
	now         func() string
}

func NewHandler(
	client Messenger,
	userService *service.UserService,
	taskService *service.TaskService,
	attendance *service.AttendanceService,
	rollover *service.RolloverEngine,
	analytics *service.AnalyticsService,
	cfg *config.BotConfig,
) *Handler {
	return &Handler{
		client:      client,
		userService: userService,
		taskService: taskService,
		attendance:  attendance,
		rollover:    rollover,
		analytics:   analytics,
		userStates:  make(map[int64]string),
		config:      cfg,
		today:       calendar.Today,
		now:         calendar.NowClock,
	}
}

// HandleUpdates processes updates one at a time until the channel closes or ctx is done.
func (h *Handler) HandleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			h.HandleUpdate(ctx, update)
		}
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.handleCallbackQuery(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		return
	}

	h.handleMessage(ctx, update.Message)
}

// handleCallbackQuery handles the inline buttons under /tasks
func (h *Handler) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil || callback.Message.Chat == nil {
		return
	}

	taskID, date, ok := parseDoneCallback(callback.Data)
	if !ok {
		h.client.AnswerCallback(callback, "")
		return
	}

	h.client.AnswerCallback(callback, "")

	message := &tgbotapi.Message{
		MessageID: callback.Message.MessageID,
		Chat:      callback.Message.Chat,
		From:      callback.From,
	}
	h.completeTask(ctx, message, taskID, date)
}

func (h *Handler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	username := ""
	if message.From != nil {
		username = message.From.UserName
	}
	logrus.Infof("[%s] %s", username, message.Text)

	chatID := message.Chat.ID

	if message.IsCommand() {
		if message.Command() == "cancel" {
			delete(h.userStates, chatID)
			h.client.SendText(chatID, "❌ Cancelled.")
			return
		}
		h.handleCommand(ctx, message)
		return
	}

	if state, exists := h.userStates[chatID]; exists {
		h.handleProfileState(ctx, message, state)
		return
	}

	if strings.TrimSpace(message.Text) != "" {
		h.client.SendText(chatID, "Use /help to see the available commands.")
	}
}
