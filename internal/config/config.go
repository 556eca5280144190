package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	DiscordToken string

	// Bestdori API
	APIBaseURL string

	// Fetch retry policy
	FetchAttempts   int
	FetchRetryDelay time.Duration

	// Database
	DatabasePath string

	// Rendered image output directory
	OutputDir string

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DiscordToken: os.Getenv("DISCORD_BOT_TOKEN"),
		APIBaseURL:   getEnvOrDefault("BESTDORI_API_URL", "https://bestdori.com/api"),
		DatabasePath: getEnvOrDefault("DATABASE_PATH", "./data/bot.db"),
		OutputDir:    getEnvOrDefault("OUTPUT_DIR", "./data/output"),
		LogLevel:     getEnvOrDefault("LOG_LEVEL", "info"),
	}

	// Parse fetch retry policy
	attemptsStr := getEnvOrDefault("FETCH_ATTEMPTS", "5")
	attempts, err := strconv.Atoi(attemptsStr)
	if err != nil || attempts < 1 {
		return nil, fmt.Errorf("invalid FETCH_ATTEMPTS: %q", attemptsStr)
	}
	cfg.FetchAttempts = attempts

	delayStr := getEnvOrDefault("FETCH_RETRY_DELAY", "1s")
	delay, err := time.ParseDuration(delayStr)
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_RETRY_DELAY: %w", err)
	}
	cfg.FetchRetryDelay = delay

	// Validate required fields
	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_BOT_TOKEN is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
