package main

import (
	"context"
	"fmt"
	"os"

	"daily-tasks-bot/internal/app"
	"daily-tasks-bot/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	services     *app.App
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "taskctl",
	Short: "Bulk rollover jobs and reports for the daily tasks bot",
	Long: `taskctl runs the caller-triggered jobs of the daily tasks bot against the same
stores the bot uses: day and week rollover, weekly and team statistics.
Settings are read from the environment and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadCLIConfig()
		if err != nil {
			return err
		}
		logrus.SetLevel(cfg.LogLevel)
		logrus.SetOutput(os.Stderr)

		services, err = app.New(cmd.Context(), cfg)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if services == nil {
			return nil
		}
		return services.Close(context.Background())
	},
}

// execute is the entry point called from main.
func execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "text", "Output format: text, json")

	rootCmd.AddCommand(rolloverDayCmd)
	rootCmd.AddCommand(rolloverWeekCmd)
	rootCmd.AddCommand(weeklyCmd)
	rootCmd.AddCommand(teamCmd)
}
