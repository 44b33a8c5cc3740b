package handler

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	stateAwaitingFirstName = "awaiting_first_name"
	stateAwaitingLastName  = "awaiting_last_name:"
)

// startProfileCreation starts the two-step profile dialog
func (h *Handler) startProfileCreation(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	if user, err := h.userService.GetUser(ctx, chatID); err == nil && user != nil {
		h.client.SendText(chatID, "❌ You already have a profile.\nUse /myprofile to see it.")
		return
	}

	h.userStates[chatID] = stateAwaitingFirstName

	h.client.SendText(chatID, `👤 Creating a profile

Step 1 of 2:
✏️ Please send your first name:`)
}

// handleProfileState handles replies inside the profile dialog
func (h *Handler) handleProfileState(ctx context.Context, message *tgbotapi.Message, state string) {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	switch {
	case state == stateAwaitingFirstName:
		if text == "" {
			h.client.SendText(chatID, "✏️ The first name cannot be empty, please send it again:")
			return
		}
		h.userStates[chatID] = stateAwaitingLastName + text

		h.client.SendText(chatID, fmt.Sprintf(`Step 2 of 2:
✅ First name saved: %s
✏️ Now send your last name (or "-" to skip):`, text))

	case strings.HasPrefix(state, stateAwaitingLastName):
		firstName := strings.TrimPrefix(state, stateAwaitingLastName)
		lastName := text
		if lastName == "-" {
			lastName = ""
		}

		username := ""
		if message.From != nil {
			username = message.From.UserName
		}

		delete(h.userStates, chatID)

		user, err := h.userService.CreateUser(ctx, chatID, username, firstName, lastName)
		if err != nil {
			h.replyError(chatID, "Profile creation", err)
			return
		}

		h.client.SendText(chatID, fmt.Sprintf(`🎉 Profile created!

%s

Use /jointeam to join your team.`, h.userService.FormatUserInfo(user)))

	default:
		delete(h.userStates, chatID)
	}
}

// showProfile shows the sender's profile
func (h *Handler) showProfile(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	user, ok := h.requireUser(ctx, chatID)
	if !ok {
		return
	}

	h.client.SendText(chatID, h.userService.FormatUserInfo(user))
}

func (h *Handler) joinTeam(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID

	if _, ok := h.requireUser(ctx, chatID); !ok {
		return
	}

	team := strings.TrimSpace(args)
	if team == "" {
		h.client.SendText(chatID, "❌ Usage: /jointeam team")
		return
	}

	if err := h.userService.JoinTeam(ctx, chatID, team); err != nil {
		h.replyError(chatID, "Joining team", err)
		return
	}

	h.client.SendText(chatID, fmt.Sprintf("✅ You are now in team %s", team))
}
