package handler

import (
	"context"
	"fmt"
	"strings"

	"daily-tasks-bot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// addTask creates a task: /addtask date title
func (h *Handler) addTask(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID

	user, ok := h.requireUser(ctx, chatID)
	if !ok {
		return
	}

	dateArg, title, _ := strings.Cut(strings.TrimSpace(args), " ")
	if strings.TrimSpace(title) == "" {
		h.client.SendText(chatID, "❌ Usage: /addtask date title\nExample: /addtask tomorrow Prepare the report")
		return
	}

	dueDate, err := parseDateArg(dateArg, h.today())
	if err != nil {
		h.client.SendText(chatID, "❌ "+err.Error())
		return
	}

	task, err := h.taskService.CreateTask(ctx, user.ID, title, dueDate)
	if err != nil {
		h.replyError(chatID, "Task creation", err)
		return
	}

	h.client.SendText(chatID, fmt.Sprintf("✅ Task #%d created for %s\n📝 %s", task.ID, task.DueDate, task.Title))
}

// showDayTasks lists a day's tasks with a completion button per open task
func (h *Handler) showDayTasks(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID

	user, ok := h.requireUser(ctx, chatID)
	if !ok {
		return
	}

	date, err := parseDateArg(args, h.today())
	if err != nil {
		h.client.SendText(chatID, "❌ "+err.Error())
		return
	}

	entry, status, err := h.attendance.GetDayStatus(ctx, user.ID, date)
	if err != nil {
		h.replyError(chatID, "Task list", err)
		return
	}

	titles, err := h.taskTitles(ctx, user.ID)
	if err != nil {
		h.replyError(chatID, "Task list", err)
		return
	}

	text := formatDay(entry, status, titles)

	open := entry.Unfinished()
	if len(open) == 0 {
		h.client.SendText(chatID, text)
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(open))
	for _, id := range open {
		label := fmt.Sprintf("✅ #%d", id)
		if title, ok := titles[id]; ok {
			label += " " + title
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, doneCallbackData(id, date)),
		))
	}

	h.client.SendWithKeyboard(chatID, text, tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (h *Handler) listTasks(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	user, ok := h.requireUser(ctx, chatID)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListTasks(ctx, user.ID)
	if err != nil {
		h.replyError(chatID, "Task list", err)
		return
	}

	h.client.SendText(chatID, formatTaskList(tasks))
}

func (h *Handler) doneCommand(ctx context.Context, message *tgbotapi.Message, args string) {
	taskID, date, err := parseTaskDateArgs(args, h.today())
	if err != nil {
		h.client.SendText(message.Chat.ID, "❌ "+err.Error()+"\nUsage: /done id [date]")
		return
	}

	h.completeTask(ctx, message, taskID, date)
}

// completeTask is shared by /done and the inline buttons
func (h *Handler) completeTask(ctx context.Context, message *tgbotapi.Message, taskID uint, date string) {
	chatID := message.Chat.ID

	user, ok := h.requireUser(ctx, chatID)
	if !ok {
		return
	}

	task, ok := h.ownTask(ctx, chatID, user, taskID)
	if !ok {
		return
	}

	result, err := h.taskService.CompleteTask(ctx, task.UserID, taskID, date)
	if err != nil {
		h.replyError(chatID, "Task completion", err)
		return
	}

	h.client.SendText(chatID, formatPropagation("✅ Completed", taskID, date, result))
}

func (h *Handler) reopenTask(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID

	user, ok := h.requireUser(ctx, chatID)
	if !ok {
		return
	}

	taskID, date, err := parseTaskDateArgs(args, h.today())
	if err != nil {
		h.client.SendText(chatID, "❌ "+err.Error()+"\nUsage: /reopen id [date]")
		return
	}

	task, ok := h.ownTask(ctx, chatID, user, taskID)
	if !ok {
		return
	}

	result, err := h.taskService.ReopenTask(ctx, task.UserID, taskID, date)
	if err != nil {
		h.replyError(chatID, "Task reopen", err)
		return
	}

	h.client.SendText(chatID, formatPropagation("🔄 Reopened", taskID, date, result))
}

func (h *Handler) deleteTask(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID

	user, ok := h.requireUser(ctx, chatID)
	if !ok {
		return
	}

	taskID, err := parseTaskID(args)
	if err != nil {
		h.client.SendText(chatID, "❌ "+err.Error()+"\nUsage: /deltask id")
		return
	}

	if _, ok := h.ownTask(ctx, chatID, user, taskID); !ok {
		return
	}

	removed, err := h.taskService.DeleteTask(ctx, taskID, h.today())
	if err != nil {
		h.replyError(chatID, "Task deletion", err)
		return
	}

	h.client.SendText(chatID, fmt.Sprintf("🗑️ Task #%d deleted, removed from %d day(s)", taskID, removed))
}

func (h *Handler) taskHistory(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID

	user, ok := h.requireUser(ctx, chatID)
	if !ok {
		return
	}

	taskID, err := parseTaskID(args)
	if err != nil {
		h.client.SendText(chatID, "❌ "+err.Error()+"\nUsage: /history id")
		return
	}

	records, err := h.taskService.History(ctx, taskID)
	if err != nil {
		h.replyError(chatID, "Task history", err)
		return
	}

	mine := records[:0]
	for _, r := range records {
		if r.UserID == user.ID || user.IsAdmin() {
			mine = append(mine, r)
		}
	}

	h.client.SendText(chatID, formatHistory(taskID, mine))
}

// ownTask loads a task and checks it belongs to the sender; admins may act on any task.
func (h *Handler) ownTask(ctx context.Context, chatID int64, user *models.User, taskID uint) (*models.Task, bool) {
	task, err := h.taskService.GetTask(ctx, taskID)
	if err != nil {
		h.replyError(chatID, "Task lookup", err)
		return nil, false
	}
	if task.UserID != user.ID && !user.IsAdmin() {
		h.client.SendText(chatID, fmt.Sprintf("❌ Task #%d is not yours", taskID))
		return nil, false
	}
	return task, true
}

func (h *Handler) taskTitles(ctx context.Context, userID uint) (map[uint]string, error) {
	tasks, err := h.taskService.ListTasks(ctx, userID)
	if err != nil {
		return nil, err
	}

	titles := make(map[uint]string, len(tasks))
	for _, t := range tasks {
		titles[t.ID] = t.Title
	}
	return titles, nil
}
