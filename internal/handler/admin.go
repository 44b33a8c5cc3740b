package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"daily-tasks-bot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// showAllUsers lists every registered user
func (h *Handler) showAllUsers(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	if _, ok := h.requireAdmin(ctx, chatID); !ok {
		return
	}

	users, err := h.userService.GetAllUsers(ctx)
	if err != nil {
		h.replyError(chatID, "User list", err)
		return
	}

	h.client.SendText(chatID, formatUsers(users))
}

func (h *Handler) setUserRole(ctx context.Context, message *tgbotapi.Message, args, role string) {
	chatID := message.Chat.ID

	if _, ok := h.requireAdmin(ctx, chatID); !ok {
		return
	}

	targetChatID, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		h.client.SendText(chatID, "❌ Usage: /promote chat_id or /demote chat_id")
		return
	}

	if targetChatID == chatID && role != models.RoleAdmin {
		h.client.SendText(chatID, "❌ You cannot demote yourself")
		return
	}

	if err := h.userService.SetRole(ctx, targetChatID, role); err != nil {
		h.replyError(chatID, "Role change", err)
		return
	}

	h.client.SendText(chatID, fmt.Sprintf("✅ User %d is now %s", targetChatID, role))
}

// setUserActive toggles team report membership: /setactive user_id on|off
func (h *Handler) setUserActive(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	usage := "❌ Usage: /setactive user_id on|off"

	if _, ok := h.requireAdmin(ctx, chatID); !ok {
		return
	}

	fields := strings.Fields(args)
	if len(fields) != 2 {
		h.client.SendText(chatID, usage)
		return
	}

	id, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		h.client.SendText(chatID, usage)
		return
	}

	var active bool
	switch strings.ToLower(fields[1]) {
	case "on", "yes", "true":
		active = true
	case "off", "no", "false":
		active = false
	default:
		h.client.SendText(chatID, usage)
		return
	}

	if err := h.userService.SetActive(ctx, uint(id), active); err != nil {
		h.replyError(chatID, "Activity change", err)
		return
	}

	state := "active"
	if !active {
		state = "inactive"
	}
	h.client.SendText(chatID, fmt.Sprintf("✅ User %d is now %s", id, state))
}

func formatUsers(users []*models.User) string {
	if len(users) == 0 {
		return "📭 No users yet"
	}

	lines := []string{fmt.Sprintf("👥 Users (%d):", len(users))}
	for _, u := range users {
		roleEmoji := "👤"
		if u.IsAdmin() {
			roleEmoji = "👑"
		}
		team := u.TeamID
		if team == "" {
			team = "-"
		}
		line := fmt.Sprintf("%s #%d %s, chat %d, team %s", roleEmoji, u.ID, u.DisplayName(), u.ChatID, team)
		if !u.Active {
			line += " (inactive)"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
