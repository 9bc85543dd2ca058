package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	CanvasFile        string
	HTTPPort          string
	ShutdownTimeout   time.Duration
	WatchDebounce     time.Duration
	ClaudeProjectsDir string
	OpenAIBaseURL     string
	EncryptionKey     string
	Database          DatabaseConfig
}

type DatabaseConfig struct {
	Driver string
	Path   string
	DSN    string
}

func Load() Config {
	home, _ := os.UserHomeDir()
	return Config{
		CanvasFile:        getEnv("CANVAS_FILE", "PROMPTS.md"),
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		ShutdownTimeout:   getDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		WatchDebounce:     getMillis("WATCH_DEBOUNCE_MS", 250*time.Millisecond),
		ClaudeProjectsDir: getEnv("CLAUDE_PROJECTS_DIR", filepath.Join(home, ".claude", "projects")),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
		EncryptionKey:     getEnv("ENCRYPTION_KEY", "prompt-canvas-dev-key"),
		Database: DatabaseConfig{
			Driver: getEnv("DB_DRIVER", "sqlite"),
			Path:   getEnv("DB_PATH", filepath.Join("data", "prompt-canvas.db")),
			DSN:    getEnv("DB_DSN", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

func getMillis(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if ms, err := strconv.Atoi(value); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return fallback
}
