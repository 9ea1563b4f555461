package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabasePath   string
	LogLevel       string
	Port           string
	APIToken       string
	WizardHashKey  string
	WizardBlockKey string
}

// Load reads the configuration from the environment. Values in envFile fill
// in variables that are not already set; a missing file is not an error.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	}

	config := Config{
		DatabasePath:   envOrDefault("DATABASE_PATH", "./data/chore-helper.db"),
		LogLevel:       envOrDefault("LOG_LEVEL", "info"),
		Port:           envOrDefault("PORT", "8080"),
		APIToken:       os.Getenv("API_TOKEN"),
		WizardHashKey:  os.Getenv("WIZARD_HASH_KEY"),
		WizardBlockKey: os.Getenv("WIZARD_BLOCK_KEY"),
	}

	if _, err := ParseLevel(config.LogLevel); err != nil {
		return Config{}, err
	}
	if config.WizardBlockKey != "" && config.WizardHashKey == "" {
		return Config{}, fmt.Errorf("WIZARD_HASH_KEY is required when WIZARD_BLOCK_KEY is set")
	}
	switch len(config.WizardBlockKey) {
	case 0, 16, 24, 32:
	default:
		return Config{}, fmt.Errorf("WIZARD_BLOCK_KEY must be 16, 24 or 32 bytes")
	}

	return config, nil
}

func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown LOG_LEVEL %q", level)
}

// SetupLogging installs the default text logger at the configured level.
func SetupLogging(config Config) {
	level, err := ParseLevel(config.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
