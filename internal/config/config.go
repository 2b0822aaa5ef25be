// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the application configuration loaded from environment variables.
// Every default reproduces the fixed production schedule.
type Config struct {
	DataFile             string        `validate:"required"`
	BaseURL              string        `validate:"required,url"`
	TaskGroup            string        `validate:"required"`
	TaskTimeout          time.Duration `validate:"gt=0"`
	PassInterval         time.Duration `validate:"gte=0"`
	RequestTimeout       time.Duration `validate:"gte=0"`
	IsolateAccountErrors bool
	ListenAddr           string // Empty disables the status API.
	DBPath               string // Empty disables the attempt journal.
	LogLevel             slog.Level
}

// HasStatusAPI reports whether the status HTTP server should be started.
func (c *Config) HasStatusAPI() bool {
	return c.ListenAddr != ""
}

// HasJournal reports whether the attempt journal should be opened.
func (c *Config) HasJournal() bool {
	return c.DBPath != ""
}

var validate = validator.New()

// Load reads configuration from environment variables and returns a validated Config.
// A .env file in the working directory is loaded first when present; real
// environment variables take precedence over it.
// Optional variables with defaults: CATSFARM_DATA_FILE (data.txt),
// CATSFARM_BASE_URL (https://api.catshouse.club), CATSFARM_TASK_GROUP (cats),
// CATSFARM_TASK_TIMEOUT (15s), CATSFARM_PASS_INTERVAL (15m),
// CATSFARM_REQUEST_TIMEOUT (30s), CATSFARM_ISOLATE_ACCOUNT_ERRORS (false),
// CATSFARM_LOG_LEVEL (info).
// Opt-in variables, empty by default: CATSFARM_LISTEN_ADDR enables the status
// API, CATSFARM_DB_PATH enables the attempt journal.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := &Config{
		DataFile:       "data.txt",
		BaseURL:        "https://api.catshouse.club",
		TaskGroup:      "cats",
		TaskTimeout:    15 * time.Second,
		PassInterval:   15 * time.Minute,
		RequestTimeout: 30 * time.Second,
		LogLevel:       slog.LevelInfo,
	}

	if v, ok := os.LookupEnv("CATSFARM_DATA_FILE"); ok {
		cfg.DataFile = v
	}
	if v, ok := os.LookupEnv("CATSFARM_BASE_URL"); ok {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}
	if v, ok := os.LookupEnv("CATSFARM_TASK_GROUP"); ok {
		cfg.TaskGroup = v
	}

	var err error
	if cfg.TaskTimeout, err = durationEnv("CATSFARM_TASK_TIMEOUT", cfg.TaskTimeout); err != nil {
		return nil, err
	}
	if cfg.PassInterval, err = durationEnv("CATSFARM_PASS_INTERVAL", cfg.PassInterval); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = durationEnv("CATSFARM_REQUEST_TIMEOUT", cfg.RequestTimeout); err != nil {
		return nil, err
	}

	if v, ok := os.LookupEnv("CATSFARM_ISOLATE_ACCOUNT_ERRORS"); ok {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("CATSFARM_ISOLATE_ACCOUNT_ERRORS has invalid boolean %q: %w", v, err)
		}
		cfg.IsolateAccountErrors = parsed
	}

	if v, ok := os.LookupEnv("CATSFARM_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok := os.LookupEnv("CATSFARM_DB_PATH"); ok {
		cfg.DBPath = v
	}

	if v, ok := os.LookupEnv("CATSFARM_LOG_LEVEL"); ok {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("CATSFARM_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// durationEnv parses key as a time.Duration, returning def when unset.
func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid duration %q: %w", key, v, err)
	}
	return parsed, nil
}

// loadDotEnv loads path into the environment if it exists. Variables already
// set are not overridden.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
