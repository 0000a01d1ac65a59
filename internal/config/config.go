// ABOUTME: Centralized configuration for the trigram bot
// ABOUTME: Loads an optional TOML file, then environment variables, with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all configuration for the bot
type Config struct {
	// Storage settings
	DBPath         string
	DefaultTable   string
	PoolSize       int
	BusyRetryDelay time.Duration
	BusyBudget     time.Duration

	// Dispatch settings
	MaxInFlight      int
	RateLimit        float64
	RateBurst        int
	DeliveryAttempts int

	LogLevel string
}

// fileConfig mirrors Config for TOML decoding. Durations are strings like "250ms".
type fileConfig struct {
	DBPath           string  `toml:"db_path"`
	DefaultTable     string  `toml:"default_table"`
	PoolSize         int     `toml:"pool_size"`
	BusyRetryDelay   string  `toml:"busy_retry_delay"`
	BusyBudget       string  `toml:"busy_budget"`
	MaxInFlight      int     `toml:"max_in_flight"`
	RateLimit        float64 `toml:"rate_limit"`
	RateBurst        int     `toml:"rate_burst"`
	DeliveryAttempts int     `toml:"delivery_attempts"`
	LogLevel         string  `toml:"log_level"`
}

// DefaultDataDir returns the default data directory following the XDG spec.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ".local/share/trigrambot"
		}
		dataHome = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataHome, "trigrambot")
}

// DefaultDBPath returns the default database file path
func DefaultDBPath() string {
	return filepath.Join(DefaultDataDir(), "trigrambot.db")
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		DBPath:           DefaultDBPath(),
		DefaultTable:     "lexems",
		PoolSize:         8,
		BusyRetryDelay:   time.Millisecond,
		BusyBudget:       30 * time.Second,
		MaxInFlight:      16,
		RateLimit:        0,
		RateBurst:        10,
		DeliveryAttempts: 5,
		LogLevel:         "info",
	}
}

// Load reads configuration from TRIGRAMBOT_CONFIG (if set) and environment variables
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("TRIGRAMBOT_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.DBPath = getEnv("TRIGRAMBOT_DB_PATH", getEnv("DATABASE_PATH", cfg.DBPath))
	cfg.DefaultTable = getEnv("TRIGRAMBOT_DEFAULT_TABLE", cfg.DefaultTable)
	cfg.PoolSize = getEnvInt("TRIGRAMBOT_POOL_SIZE", cfg.PoolSize)
	cfg.BusyRetryDelay = getEnvDuration("TRIGRAMBOT_BUSY_RETRY_DELAY", cfg.BusyRetryDelay)
	cfg.BusyBudget = getEnvDuration("TRIGRAMBOT_BUSY_BUDGET", cfg.BusyBudget)
	cfg.MaxInFlight = getEnvInt("TRIGRAMBOT_MAX_IN_FLIGHT", cfg.MaxInFlight)
	cfg.RateLimit = getEnvFloat("TRIGRAMBOT_RATE_LIMIT", cfg.RateLimit)
	cfg.RateBurst = getEnvInt("TRIGRAMBOT_RATE_BURST", cfg.RateBurst)
	cfg.DeliveryAttempts = getEnvInt("TRIGRAMBOT_DELIVERY_ATTEMPTS", cfg.DeliveryAttempts)
	cfg.LogLevel = getEnv("TRIGRAMBOT_LOG_LEVEL", cfg.LogLevel)

	return cfg, cfg.Validate()
}

func (c *Config) mergeFile(path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	if fc.DBPath != "" {
		c.DBPath = fc.DBPath
	}
	if fc.DefaultTable != "" {
		c.DefaultTable = fc.DefaultTable
	}
	if fc.PoolSize != 0 {
		c.PoolSize = fc.PoolSize
	}
	if fc.MaxInFlight != 0 {
		c.MaxInFlight = fc.MaxInFlight
	}
	if fc.RateLimit != 0 {
		c.RateLimit = fc.RateLimit
	}
	if fc.RateBurst != 0 {
		c.RateBurst = fc.RateBurst
	}
	if fc.DeliveryAttempts != 0 {
		c.DeliveryAttempts = fc.DeliveryAttempts
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	for _, d := range []struct {
		raw string
		dst *time.Duration
		key string
	}{
		{fc.BusyRetryDelay, &c.BusyRetryDelay, "busy_retry_delay"},
		{fc.BusyBudget, &c.BusyBudget, "busy_budget"},
	} {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("config file %s: %s: %w", path, d.key, err)
		}
		*d.dst = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("TRIGRAMBOT_DB_PATH must not be empty")
	}
	if c.DefaultTable == "" {
		return fmt.Errorf("TRIGRAMBOT_DEFAULT_TABLE must not be empty")
	}
	if c.PoolSize < 1 || c.PoolSize > 64 {
		return fmt.Errorf("TRIGRAMBOT_POOL_SIZE must be 1-64, got %d", c.PoolSize)
	}
	if c.BusyRetryDelay < 0 {
		return fmt.Errorf("TRIGRAMBOT_BUSY_RETRY_DELAY must not be negative, got %v", c.BusyRetryDelay)
	}
	if c.BusyBudget <= 0 {
		return fmt.Errorf("TRIGRAMBOT_BUSY_BUDGET must be positive, got %v", c.BusyBudget)
	}
	if c.MaxInFlight < 1 || c.MaxInFlight > 1024 {
		return fmt.Errorf("TRIGRAMBOT_MAX_IN_FLIGHT must be 1-1024, got %d", c.MaxInFlight)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("TRIGRAMBOT_RATE_LIMIT must not be negative, got %f", c.RateLimit)
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		return fmt.Errorf("TRIGRAMBOT_RATE_BURST must be at least 1 when rate limiting, got %d", c.RateBurst)
	}
	if c.DeliveryAttempts < 1 || c.DeliveryAttempts > 20 {
		return fmt.Errorf("TRIGRAMBOT_DELIVERY_ATTEMPTS must be 1-20, got %d", c.DeliveryAttempts)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
