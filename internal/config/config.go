package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

type BotConfig struct {
	TelegramToken    string
	TelegramDebug    bool
	BaseAdminChatID  int64
	DatabaseURL      string
	StoreDriver      string
	MongoURI         string
	MongoDatabase    string
	LateThreshold    string
	LogLevel         logrus.Level
	AnalyticsWorkers int
}

var instance *BotConfig
var once sync.Once

// GetBotConfig loads the bot configuration once and exits on invalid settings.
func GetBotConfig() *BotConfig {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			logrus.Fatalf("error loading env variables: %s", err.Error())
		}

		cfg, err := FromEnv()
		if err != nil {
			logrus.Fatal(err)
		}

		if cfg.TelegramToken == "" {
			logrus.Fatal("could not get bot token")
		}

		if cfg.BaseAdminChatID == -2 {
			logrus.Fatal("could not get admin chat id")
		}

		instance = cfg
	})

	return instance
}

// LoadCLIConfig reads the store settings for command line tools; a missing .env is fine.
func LoadCLIConfig() (*BotConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the process environment.
func FromEnv() (*BotConfig, error) {
	cfg := &BotConfig{
		TelegramToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramDebug:    getEnvAsBool("TELEGRAM_DEBUG", false),
		BaseAdminChatID:  getEnvAsInt("BASE_ADMIN_CHAT_ID", -2),
		DatabaseURL:      getEnv("DATABASE_URL", "tasks.db"),
		StoreDriver:      strings.ToLower(getEnv("STORE_DRIVER", StoreSQLite)),
		MongoURI:         getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:    getEnv("MONGODB_DATABASE", "daily_tasks"),
		LateThreshold:    getEnv("LATE_THRESHOLD", "10:00"),
		AnalyticsWorkers: int(getEnvAsInt("ANALYTICS_WORKERS", 4)),
	}

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	switch cfg.StoreDriver {
	case StoreSQLite:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("could not get db url")
		}
	case StoreMongo:
		if cfg.MongoURI == "" || cfg.MongoDatabase == "" {
			return nil, errors.New("mongo store requires MONGODB_URI and MONGODB_DATABASE")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.AnalyticsWorkers < 1 {
		cfg.AnalyticsWorkers = 1
	}

	return cfg, nil
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsInt(name string, defaultVal int64) int64 {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseInt(valStr, 10, 64); err == nil {
		return val
	}

	return defaultVal
}
