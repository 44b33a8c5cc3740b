package handler

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// checkIn records the start of the working day
func (h *Handler) checkIn(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID

	user, ok := h.requireUser(ctx, chatID)
	if !ok {
		return
	}

	date, clock, err := parseDateClockArgs(args, h.today(), h.now())
	if err != nil {
		h.client.SendText(chatID, "❌ "+err.Error()+"\nUsage: /in [date] [time]")
		return
	}

	entry, err := h.attendance.CheckIn(ctx, user.ID, date, clock)
	if err != nil {
		h.replyError(chatID, "Check-in", err)
		return
	}

	_, status, err := h.attendance.GetDayStatus(ctx, user.ID, date)
	if err != nil {
		h.replyError(chatID, "Check-in", err)
		return
	}

	text := fmt.Sprintf(`✅ Checked in!

📅 Date: %s
⏰ Time: %s`, entry.Date, clock)
	if status.Late {
		text += "\n⚠️ Marked as late"
	}
	if n := len(entry.AssignedTaskIDs); n > 0 {
		text += fmt.Sprintf("\n📝 Tasks for today: %d (see /tasks)", n)
	}

	h.client.SendText(chatID, text)
}

// checkOut records the end of the working day
func (h *Handler) checkOut(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID

	user, ok := h.requireUser(ctx, chatID)
	if !ok {
		return
	}

	date, clock, err := parseDateClockArgs(args, h.today(), h.now())
	if err != nil {
		h.client.SendText(chatID, "❌ "+err.Error()+"\nUsage: /out [date] [time]")
		return
	}

	if _, err := h.attendance.CheckOut(ctx, user.ID, date, clock); err != nil {
		h.replyError(chatID, "Check-out", err)
		return
	}

	entry, status, err := h.attendance.GetDayStatus(ctx, user.ID, date)
	if err != nil {
		h.replyError(chatID, "Check-out", err)
		return
	}

	h.client.SendText(chatID, "🏁 Checked out!\n\n"+formatDay(entry, status, nil))
}

// fixCheckInOut overwrites recorded times: /fix date in|- out|-
func (h *Handler) fixCheckInOut(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	usage := "❌ Usage: /fix date in|- out|-\nExample: /fix 2024-01-10 09:00 18:00"

	user, ok := h.requireUser(ctx, chatID)
	if !ok {
		return
	}

	fields := strings.Fields(args)
	if len(fields) != 3 {
		h.client.SendText(chatID, usage)
		return
	}

	date, err := parseDateArg(fields[0], h.today())
	if err != nil {
		h.client.SendText(chatID, "❌ "+err.Error())
		return
	}

	var times [2]*string
	for i, field := range fields[1:] {
		if field == "-" {
			continue
		}
		clock, err := parseClockArg(field)
		if err != nil {
			h.client.SendText(chatID, "❌ "+err.Error())
			return
		}
		times[i] = &clock
	}

	if times[0] == nil && times[1] == nil {
		h.client.SendText(chatID, usage)
		return
	}

	if _, err := h.attendance.UpdateCheckInOut(ctx, user.ID, date, times[0], times[1]); err != nil {
		h.replyError(chatID, "Time correction", err)
		return
	}

	entry, status, err := h.attendance.GetDayStatus(ctx, user.ID, date)
	if err != nil {
		h.replyError(chatID, "Time correction", err)
		return
	}

	h.client.SendText(chatID, "✏️ Times updated\n\n"+formatDay(entry, status, nil))
}

// markAbsent handles /absent [date] [to] and /present [date]
func (h *Handler) markAbsent(ctx context.Context, message *tgbotapi.Message, args string, absent bool) {
	chatID := message.Chat.ID

	user, ok := h.requireUser(ctx, chatID)
	if !ok {
		return
	}

	fields := strings.Fields(args)
	if len(fields) > 2 || (!absent && len(fields) > 1) {
		h.client.SendText(chatID, "❌ Usage: /absent [date] [to] or /present [date]")
		return
	}

	dates := make([]string, 0, 2)
	for _, field := range fields {
		date, err := parseDateArg(field, h.today())
		if err != nil {
			h.client.SendText(chatID, "❌ "+err.Error())
			return
		}
		dates = append(dates, date)
	}
	if len(dates) == 0 {
		dates = append(dates, h.today())
	}

	if len(dates) == 2 {
		marked, err := h.attendance.MarkAbsentRange(ctx, user.ID, dates[0], dates[1])
		if len(marked) > 0 {
			h.client.SendText(chatID, fmt.Sprintf("🏖️ %d day(s) marked as absent: %s – %s", len(marked), dates[0], dates[1]))
		}
		if err != nil {
			h.replyError(chatID, "Absence update", err)
		}
		return
	}

	date := dates[0]
	if _, err := h.attendance.MarkAbsent(ctx, user.ID, date, absent); err != nil {
		h.replyError(chatID, "Absence update", err)
		return
	}

	if absent {
		h.client.SendText(chatID, fmt.Sprintf("🏖️ %s marked as absent", date))
	} else {
		h.client.SendText(chatID, fmt.Sprintf("✅ Absence mark cleared for %s", date))
	}
}

// showStatus shows attendance and tasks of a day without creating it
func (h *Handler) showStatus(ctx context.Context, message *tgbotapi.Message, args string) {
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
		h.replyError(chatID, "Status", err)
		return
	}

	titles, err := h.taskTitles(ctx, user.ID)
	if err != nil {
		h.replyError(chatID, "Status", err)
		return
	}

	h.client.SendText(chatID, formatDay(entry, status, titles))
}
