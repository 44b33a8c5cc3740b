package handler

import (
	"context"
	"fmt"

	"daily-tasks-bot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()
	args := message.CommandArguments()

	switch command {
	case "start", "help":
		h.sendHelpMessage(message)
	case "helpadmin":
		h.sendAdminHelpMessage(ctx, message)

	// Profile
	case "createprofile":
		h.startProfileCreation(ctx, message)
	case "myprofile":
		h.showProfile(ctx, message)
	case "jointeam":
		h.joinTeam(ctx, message, args)

	// Attendance
	case "in":
		h.checkIn(ctx, message, args)
	case "out":
		h.checkOut(ctx, message, args)
	case "fix":
		h.fixCheckInOut(ctx, message, args)
	case "absent":
		h.markAbsent(ctx, message, args, true)
	case "present":
		h.markAbsent(ctx, message, args, false)
	case "status":
		h.showStatus(ctx, message, args)

	// Tasks
	case "addtask":
		h.addTask(ctx, message, args)
	case "tasks":
		h.showDayTasks(ctx, message, args)
	case "mytasks":
		h.listTasks(ctx, message)
	case "done":
		h.doneCommand(ctx, message, args)
	case "reopen":
		h.reopenTask(ctx, message, args)
	case "deltask":
		h.deleteTask(ctx, message, args)
	case "history":
		h.taskHistory(ctx, message, args)

	// Rollover and reports
	case "rollover":
		h.rolloverDay(ctx, message, args)
	case "rolloverweek":
		h.rolloverWeek(ctx, message, args)
	case "week":
		h.weeklyReport(ctx, message, args)
	case "team":
		h.teamReport(ctx, message, args)

	// Admin
	case "allusers":
		h.showAllUsers(ctx, message)
	case "promote":
		h.setUserRole(ctx, message, args, models.RoleAdmin)
	case "demote":
		h.setUserRole(ctx, message, args, models.RoleClient)
	case "setactive":
		h.setUserActive(ctx, message, args)

	default:
		h.sendUnknownCommand(message)
	}
}

func (h *Handler) sendUnknownCommand(message *tgbotapi.Message) {
	h.client.SendText(message.Chat.ID, "❌ Unknown command. Use /help to see the list of commands.")
}

const helpText = `📋 Available commands:

👤 Profile:
/createprofile - Create a profile
/myprofile - Show my profile
/jointeam team - Join a team

⏰ Attendance:
/in [date] [time] - Check in (now by default)
/out [date] [time] - Check out
/fix date in|- out|- - Correct check-in/out times
/absent [date] [to] - Mark a day or a period as absent
/present [date] - Clear the absence mark
/status [date] - Day status and hours

📝 Tasks:
/addtask date title - Create a task due on date
/tasks [date] - Tasks assigned to a day
/mytasks - All my tasks
/done id [date] - Complete a task
/reopen id [date] - Reopen a task
/deltask id - Delete a task
/history id - Completion history of a task

🔁 Rollover and reports:
/rollover from to - Carry unfinished tasks from one day to another
/rolloverweek [monday] - Roll a whole week forward day by day
/week [monday] - Weekly statistics
/team team from to - Team statistics

Dates: YYYY-MM-DD, dd.mm.yyyy, dd.mm, today, tomorrow, yesterday.
Times: hh:mm, hh.mm, hh-mm.`

func (h *Handler) sendHelpMessage(message *tgbotapi.Message) {
	h.client.SendText(message.Chat.ID, helpText)
}

func (h *Handler) sendAdminHelpMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	if _, ok := h.requireAdmin(ctx, chatID); !ok {
		return
	}

	text := `👑 Administration:
/allusers - Show all users
/promote chat_id - Make a user an administrator
/demote chat_id - Make an administrator a regular user
/setactive user_id on|off - Include or exclude a user from team reports`

	if h.config != nil && h.config.BaseAdminChatID > 0 {
		text += fmt.Sprintf("\n\n🔧 Main administrator chat ID: %d", h.config.BaseAdminChatID)
	}

	h.client.SendText(chatID, text)
}
