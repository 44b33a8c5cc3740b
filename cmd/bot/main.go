package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"daily-tasks-bot/internal/app"
	"daily-tasks-bot/internal/config"
	"daily-tasks-bot/internal/handler"
	"daily-tasks-bot/pkg/telegram"

	"github.com/sirupsen/logrus"
)

func main() {
	logrus.Info("Initializing config...")
	cfg := config.GetBotConfig()
	logrus.SetLevel(cfg.LogLevel)
	logrus.Info("Config initialized...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize services")
	}

	if err := application.Users.InitializeAdmin(ctx, cfg.BaseAdminChatID); err != nil {
		logrus.Warnf("Failed to initialize admin: %v", err)
	} else if cfg.BaseAdminChatID > 0 {
		logrus.Infof("Admin initialized with chat ID: %d", cfg.BaseAdminChatID)
	}

	client, err := telegram.NewClient(cfg.TelegramToken, cfg.TelegramDebug)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create Telegram client")
	}

	logrus.Infof("Authorized on account %s", client.Bot.Self.UserName)

	botHandler := handler.NewHandler(
		client,
		application.Users,
		application.Tasks,
		application.Attendance,
		application.Rollover,
		application.Analytics,
		cfg,
	)

	updates := client.Bot.GetUpdatesChan(client.UpdateConfig)

	done := make(chan struct{})
	go func() {
		defer close(done)
		botHandler.HandleUpdates(ctx, updates)
	}()

	logrus.Info("Bot started. Press Ctrl+C to stop.")
	<-ctx.Done()

	client.Stop()
	<-done

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := application.Close(shutdownCtx); err != nil {
		logrus.Infof("Error closing stores: %v", err)
	}

	logrus.Info("Bot stopped gracefully")
}
