package handler

import (
	"context"
	"fmt"
	"strings"

	"daily-tasks-bot/pkg/calendar"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// rolloverDay moves unfinished tasks: /rollover from to
func (h *Handler) rolloverDay(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID

	user, ok := h.requireUser(ctx, chatID)
	if !ok {
		return
	}

	fields := strings.Fields(args)
	if len(fields) != 2 {
		h.client.SendText(chatID, "❌ Usage: /rollover from to\nExample: /rollover today tomorrow")
		return
	}

	from, err := parseDateArg(fields[0], h.today())
	if err != nil {
		h.client.SendText(chatID, "❌ "+err.Error())
		return
	}
	to, err := parseDateArg(fields[1], h.today())
	if err != nil {
		h.client.SendText(chatID, "❌ "+err.Error())
		return
	}

	moved, err := h.rollover.RolloverDay(ctx, user.ID, from, to)
	if err != nil {
		h.replyError(chatID, "Rollover", err)
		return
	}

	if len(moved) == 0 {
		h.client.SendText(chatID, fmt.Sprintf("👌 Nothing unfinished on %s", from))
		return
	}

	h.client.SendText(chatID, fmt.Sprintf("🔁 Moved %d task(s) from %s to %s", len(moved), from, to))
}

// rolloverWeek rolls each day of a week into the next one
func (h *Handler) rolloverWeek(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID

	user, ok := h.requireUser(ctx, chatID)
	if !ok {
		return
	}

	weekStart, err := h.weekStartArg(args)
	if err != nil {
		h.client.SendText(chatID, "❌ "+err.Error())
		return
	}

	result, err := h.rollover.RolloverWeek(ctx, user.ID, weekStart)
	if err != nil {
		h.replyError(chatID, "Week rollover", err)
		return
	}

	h.client.SendText(chatID, formatRolloverWeek(result))
}

func (h *Handler) weeklyReport(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID

	user, ok := h.requireUser(ctx, chatID)
	if !ok {
		return
	}

	weekStart, err := h.weekStartArg(args)
	if err != nil {
		h.client.SendText(chatID, "❌ "+err.Error())
		return
	}

	stats, err := h.analytics.WeeklyAnalytics(ctx, user.ID, weekStart)
	if err != nil {
		h.replyError(chatID, "Weekly report", err)
		return
	}

	h.client.SendText(chatID, formatWeekly(stats))
}

// teamReport shows team statistics: /team team from to. Members see their own team, admins any team.
func (h *Handler) teamReport(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID

	user, ok := h.requireUser(ctx, chatID)
	if !ok {
		return
	}

	fields := strings.Fields(args)
	if len(fields) != 3 {
		h.client.SendText(chatID, "❌ Usage: /team team from to\nExample: /team backend 2024-01-01 2024-01-31")
		return
	}

	teamID := fields[0]
	if teamID != user.TeamID && !user.IsAdmin() {
		h.client.SendText(chatID, "❌ You can only see reports of your own team")
		return
	}

	from, err := parseDateArg(fields[1], h.today())
	if err != nil {
		h.client.SendText(chatID, "❌ "+err.Error())
		return
	}
	to, err := parseDateArg(fields[2], h.today())
	if err != nil {
		h.client.SendText(chatID, "❌ "+err.Error())
		return
	}

	stats, err := h.analytics.TeamAnalytics(ctx, teamID, from, to)
	if err != nil {
		h.replyError(chatID, "Team report", err)
		return
	}

	h.client.SendText(chatID, formatTeam(stats))
}

// weekStartArg reads an optional day and returns the Monday of its week.
func (h *Handler) weekStartArg(args string) (string, error) {
	date, err := parseDateArg(args, h.today())
	if err != nil {
		return "", err
	}
	return calendar.WeekStart(date)
}
