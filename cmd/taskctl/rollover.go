package main

import (
	"errors"
	"fmt"

	"daily-tasks-bot/internal/service"
	"daily-tasks-bot/pkg/calendar"

	"github.com/spf13/cobra"
)

var (
	rolloverUser uint
	rolloverTeam string
	rolloverFrom string
	rolloverTo   string
	rolloverWeek string
)

var rolloverDayCmd = &cobra.Command{
	Use:   "rollover-day",
	Short: "Move a user's unfinished tasks from one day to another",
	Args:  cobra.NoArgs,
	RunE:  runRolloverDay,
}

var rolloverWeekCmd = &cobra.Command{
	Use:   "rollover-week",
	Short: "Roll each day of a week into the next, for one user or a whole team",
	Args:  cobra.NoArgs,
	RunE:  runRolloverWeek,
}

func init() {
	rolloverDayCmd.Flags().UintVar(&rolloverUser, "user", 0, "User ID")
	rolloverDayCmd.Flags().StringVar(&rolloverFrom, "from", "", "Source day, YYYY-MM-DD (default today)")
	rolloverDayCmd.Flags().StringVar(&rolloverTo, "to", "", "Destination day, YYYY-MM-DD (default the day after --from)")
	_ = rolloverDayCmd.MarkFlagRequired("user")

	rolloverWeekCmd.Flags().UintVar(&rolloverUser, "user", 0, "User ID")
	rolloverWeekCmd.Flags().StringVar(&rolloverTeam, "team", "", "Roll every active member of the team")
	rolloverWeekCmd.Flags().StringVar(&rolloverWeek, "week", "", "Any day of the week, YYYY-MM-DD (default this week)")
	rolloverWeekCmd.MarkFlagsMutuallyExclusive("user", "team")
	rolloverWeekCmd.MarkFlagsOneRequired("user", "team")
}

func runRolloverDay(cmd *cobra.Command, args []string) error {
	from := rolloverFrom
	if from == "" {
		from = calendar.Today()
	}
	to := rolloverTo
	if to == "" {
		next, err := calendar.AddDays(from, 1)
		if err != nil {
			return err
		}
		to = next
	}

	moved, err := services.Rollover.RolloverDay(cmd.Context(), rolloverUser, from, to)
	if err != nil {
		return err
	}

	transition := service.DayTransition{From: from, To: to, Moved: moved}
	if outputFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), transition)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "user %d: %s -> %s, %d moved %v\n", rolloverUser, from, to, len(moved), moved)
	return nil
}

func runRolloverWeek(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	day := rolloverWeek
	if day == "" {
		day = calendar.Today()
	}
	weekStart, err := calendar.WeekStart(day)
	if err != nil {
		return err
	}

	userIDs := []uint{rolloverUser}
	if rolloverTeam != "" {
		members, err := services.Users.ActiveMembers(ctx, rolloverTeam)
		if err != nil {
			return err
		}
		userIDs = userIDs[:0]
		for _, m := range members {
			userIDs = append(userIDs, m.ID)
		}
	}

	var (
		results []*service.WeekRolloverResult
		errs    []error
	)
	for _, userID := range userIDs {
		result, err := services.Rollover.RolloverWeek(ctx, userID, weekStart)
		if err != nil {
			errs = append(errs, fmt.Errorf("user %d: %w", userID, err))
			continue
		}
		results = append(results, result)
		if err := result.Err(); err != nil {
			errs = append(errs, fmt.Errorf("user %d: %w", userID, err))
		}
	}

	if outputFormat == "json" {
		if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
			return err
		}
	} else {
		out := cmd.OutOrStdout()
		for _, r := range results {
			fmt.Fprintf(out, "user %d, week of %s\n", r.UserID, r.WeekStart)
			for _, tr := range r.Transitions {
				fmt.Fprintf(out, "  %s -> %s  %d moved %v\n", tr.From, tr.To, len(tr.Moved), tr.Moved)
			}
			if len(r.Skipped) > 0 {
				fmt.Fprintf(out, "  skipped %v\n", r.Skipped)
			}
		}
	}

	return errors.Join(errs...)
}
