package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment     string
	AppName         string
	Port            string
	LogLevel        slog.Level
	DataPath        string
	FavoritesPath   string
	HistoryPath     string
	SettingsPath    string
	WebhookURL      string
	ScraperEnabled  bool
	ShutdownSeconds int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment:     getEnv("APP_ENV", "development"),
		AppName:         getEnv("APP_NAME", "mangaread-scraper"),
		Port:            getEnv("APP_PORT", "5000"),
		DataPath:        getEnv("DATA_PATH", "./data/data.json"),
		FavoritesPath:   getEnv("FAVORITES_PATH", "./data/favorites.json"),
		HistoryPath:     getEnv("HISTORY_PATH", "./data/history.sqlite"),
		SettingsPath:    getEnv("SETTINGS_PATH", "./settings.yaml"),
		WebhookURL:      getEnv("NOTIFY_WEBHOOK_URL", ""),
		ScraperEnabled:  getEnvAsBool("SCRAPER_ENABLED", true),
		ShutdownSeconds: getEnvAsInt("SHUTDOWN_SECONDS", 5),
	}

	if cfg.ShutdownSeconds <= 0 {
		cfg.ShutdownSeconds = 5
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "INFO"))
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	return cfg, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch raw {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q, expected DEBUG|INFO|WARN|ERROR", raw)
	}
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
