package config

import (
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	Environment     string
	LogLevel        slog.Level
	RedisURL        string
	GameFile        string
	PlaythroughFile string
}

func Load() *Config {
	return &Config{
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:        getEnv("REDIS_URL", "localhost:6379"),
		GameFile:        getEnv("GAME_FILE", ""),
		PlaythroughFile: getEnv("PLAYTHROUGH_FILE", ""),
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
