package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"daily-tasks-bot/internal/service"
	"daily-tasks-bot/pkg/calendar"

	"github.com/spf13/cobra"
)

var (
	reportUser uint
	reportWeek string
	reportTeam string
	reportFrom string
	reportTo   string
)

var weeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Show a user's weekly statistics",
	Args:  cobra.NoArgs,
	RunE:  runWeekly,
}

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Show team statistics over a date range",
	Args:  cobra.NoArgs,
	RunE:  runTeam,
}

func init() {
	weeklyCmd.Flags().UintVar(&reportUser, "user", 0, "User ID")
	weeklyCmd.Flags().StringVar(&reportWeek, "week", "", "Any day of the week, YYYY-MM-DD (default this week)")
	_ = weeklyCmd.MarkFlagRequired("user")

	teamCmd.Flags().StringVar(&reportTeam, "team", "", "Team ID")
	teamCmd.Flags().StringVar(&reportFrom, "from", "", "First day, YYYY-MM-DD (default Monday of this week)")
	teamCmd.Flags().StringVar(&reportTo, "to", "", "Last day, YYYY-MM-DD (default today)")
	_ = teamCmd.MarkFlagRequired("team")
}

func runWeekly(cmd *cobra.Command, args []string) error {
	day := reportWeek
	if day == "" {
		day = calendar.Today()
	}
	weekStart, err := calendar.WeekStart(day)
	if err != nil {
		return err
	}

	stats, err := services.Analytics.WeeklyAnalytics(cmd.Context(), reportUser, weekStart)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), stats)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "User %d, week %s - %s\n", stats.UserID, stats.WeekStart, stats.WeekEnd)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tPLANNED\tDONE\tPRESENT\tLATE\tHOURS")
	for _, d := range stats.Days {
		hours := "-"
		if d.Status.Hours != nil {
			hours = fmt.Sprintf("%.2f", *d.Status.Hours)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%t\t%t\t%s\n", d.Date, d.Assigned, d.Completed, d.Status.Present, d.Status.Late, hours)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "Completed %d, planned %d, present %d, absent %d, rate %.2f\n",
		stats.Completed, stats.Assigned, stats.PresentDays, stats.AbsentDays, stats.CompletionRate)
	return nil
}

func runTeam(cmd *cobra.Command, args []string) error {
	to := reportTo
	if to == "" {
		to = calendar.Today()
	}
	from := reportFrom
	if from == "" {
		start, err := calendar.WeekStart(to)
		if err != nil {
			return err
		}
		from = start
	}

	stats, err := services.Analytics.TeamAnalytics(cmd.Context(), reportTeam, from, to)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), teamReport{TeamStats: stats, Errors: memberErrors(stats.Errors)})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Team %s, %s - %s\n", stats.TeamID, stats.DateFrom, stats.DateTo)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "USER\tNAME\tOPEN\tDONE\tPRESENT\tLATE\tHOURS\tRATE")
	for _, m := range stats.Members {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d\t%.2f\t%.2f\n",
			m.UserID, m.Name, m.Assigned, m.Completed, m.PresentDays, m.LateDays, m.TotalHours, m.CompletionRate)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "Total hours %.2f, average %.2f, rate %.2f\n", stats.TotalHours, stats.AverageHours, stats.CompletionRate)
	for _, e := range stats.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", e)
	}
	return nil
}

type teamReport struct {
	*service.TeamStats
	Errors []string `json:"errors,omitempty"`
}

func memberErrors(errs []service.MemberError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Error())
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
