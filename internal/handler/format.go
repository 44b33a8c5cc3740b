package handler

import (
	"fmt"
	"strings"

	"daily-tasks-bot/internal/models"
	"daily-tasks-bot/internal/service"
)

func formatDay(entry *models.WorkEntry, status service.DayStatus, titles map[uint]string) string {
	var lines []string

	lines = append(lines, fmt.Sprintf("📅 %s", entry.Date))

	switch {
	case entry.IsAbsent:
		lines = append(lines, "🏖️ Absent")
	case status.Absent:
		lines = append(lines, "⚪ Not checked in")
	default:
		state := "🟢 Present"
		if status.Late {
			state += " (late)"
		}
		lines = append(lines, state)
	}

	if entry.CheckInTime != nil {
		lines = append(lines, "⏰ In: "+*entry.CheckInTime)
	}
	if entry.CheckOutTime != nil {
		lines = append(lines, "🏁 Out: "+*entry.CheckOutTime)
	}
	if status.Hours != nil {
		lines = append(lines, fmt.Sprintf("⏳ Hours: %.2f", *status.Hours))
	}

	if titles == nil {
		lines = append(lines, fmt.Sprintf("📝 Tasks: %d open, %d done", len(entry.Unfinished()), len(entry.CompletedTaskIDs)))
		return strings.Join(lines, "\n")
	}

	lines = append(lines, "", formatTaskIDs("📝 Open:", entry.Unfinished(), titles))
	lines = append(lines, formatTaskIDs("✅ Done:", entry.CompletedTaskIDs, titles))

	return strings.Join(lines, "\n")
}

func formatTaskIDs(header string, ids []uint, titles map[uint]string) string {
	if len(ids) == 0 {
		return header + " none"
	}

	lines := []string{header}
	for _, id := range ids {
		title, ok := titles[id]
		if !ok {
			title = "(deleted)"
		}
		lines = append(lines, fmt.Sprintf("  #%d %s", id, title))
	}
	return strings.Join(lines, "\n")
}

func formatTaskList(tasks []*models.Task) string {
	if len(tasks) == 0 {
		return "📭 You have no tasks. Create one with /addtask"
	}

	lines := []string{"📝 Your tasks:"}
	for _, task := range tasks {
		mark := "⬜"
		switch task.Status {
		case models.TaskStatusCompleted:
			mark = "✅"
		case models.TaskStatusInProgress:
			mark = "🔄"
		}
		lines = append(lines, fmt.Sprintf("%s #%d %s (due %s)", mark, task.ID, task.Title, task.DueDate))
	}
	return strings.Join(lines, "\n")
}

func formatPropagation(verb string, taskID uint, date string, result *service.PropagationResult) string {
	text := fmt.Sprintf("%s #%d on %s", verb, taskID, date)
	if result == nil {
		return text
	}
	if len(result.Updated) > 0 {
		text += "\n🔄 Updated days: " + strings.Join(result.Updated, ", ")
	}
	if len(result.Created) > 0 {
		text += "\n➕ Added to days: " + strings.Join(result.Created, ", ")
	}
	return text
}

func formatHistory(taskID uint, records []*models.TaskCompletionRecord) string {
	if len(records) == 0 {
		return fmt.Sprintf("📭 Task #%d has no completions yet", taskID)
	}

	lines := []string{fmt.Sprintf("📜 Completions of #%d:", taskID)}
	for _, r := range records {
		line := fmt.Sprintf("• %s (at %s)", r.Date, r.CompletedAt.Format("2006-01-02 15:04"))
		if r.Notes != "" {
			line += " - " + r.Notes
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func formatRolloverWeek(result *service.WeekRolloverResult) string {
	lines := []string{fmt.Sprintf("🔁 Week of %s", result.WeekStart)}

	for _, tr := range result.Transitions {
		lines = append(lines, fmt.Sprintf("• %s → %s: %d moved", tr.From, tr.To, len(tr.Moved)))
	}
	if len(result.Skipped) > 0 {
		lines = append(lines, "⏭️ Nothing to move: "+strings.Join(result.Skipped, ", "))
	}
	for _, e := range result.Errors {
		lines = append(lines, fmt.Sprintf("❌ %s: failed", e.Date))
	}

	return strings.Join(lines, "\n")
}

func formatWeekly(stats *service.WeeklyStats) string {
	lines := []string{
		fmt.Sprintf("📊 Week %s – %s", stats.WeekStart, stats.WeekEnd),
		"",
	}

	for _, day := range stats.Days {
		mark := "⚪"
		switch {
		case day.Status.Present && day.Status.Late:
			mark = "🟡"
		case day.Status.Present:
			mark = "🟢"
		}
		line := fmt.Sprintf("%s %s: %d/%d done", mark, day.Date, day.Completed, day.Assigned)
		if day.Status.Hours != nil {
			line += fmt.Sprintf(", %.2fh", *day.Status.Hours)
		}
		lines = append(lines, line)
	}

	lines = append(lines,
		"",
		fmt.Sprintf("✅ Completed: %d", stats.Completed),
		fmt.Sprintf("📝 Planned: %d", stats.Assigned),
		fmt.Sprintf("🟢 Present days: %d", stats.PresentDays),
		fmt.Sprintf("⚪ Absent days: %d", stats.AbsentDays),
		fmt.Sprintf("📈 Completion rate: %.2f", stats.CompletionRate),
	)

	return strings.Join(lines, "\n")
}

func formatTeam(stats *service.TeamStats) string {
	lines := []string{
		fmt.Sprintf("👥 Team %s, %s – %s", stats.TeamID, stats.DateFrom, stats.DateTo),
		"",
	}

	for _, m := range stats.Members {
		lines = append(lines, fmt.Sprintf("👤 %s: %d done, %d planned, %d present, %d late, %.2fh",
			m.Name, m.Completed, m.Assigned, m.PresentDays, m.LateDays, m.TotalHours))
	}
	for _, e := range stats.Errors {
		lines = append(lines, fmt.Sprintf("❌ user %d: could not be loaded", e.UserID))
	}

	lines = append(lines,
		"",
		fmt.Sprintf("✅ Completed: %d", stats.Completed),
		fmt.Sprintf("📝 Planned: %d", stats.Assigned),
		fmt.Sprintf("⏳ Total hours: %.2f (avg %.2f)", stats.TotalHours, stats.AverageHours),
		fmt.Sprintf("📈 Completion rate: %.2f", stats.CompletionRate),
	)

	return strings.Join(lines, "\n")
}
