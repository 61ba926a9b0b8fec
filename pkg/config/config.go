package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Rollover policy names accepted in configuration
const (
	OrderReject = "reject"
	OrderSort   = "sort"

	OverlapClamp     = "clamp"
	OverlapReject    = "reject"
	OverlapLastWrite = "last-write"
)

// Config holds all configuration for the application
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	Env string // development, staging, production

	// Rollover defaults, overridable per chain file and per command
	Rollover RolloverConfig

	// ChainFile is the default chain definition path
	ChainFile string

	// Logging
	LogLevel  string
	LogFormat string
}

// RolloverConfig holds the weight builder defaults
type RolloverConfig struct {
	Window        int    // business days of blending before each expiry
	OrderPolicy   string // reject | sort
	OverlapPolicy string // clamp | reject | last-write
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	loadEnvFile()
	return build()
}

// LoadFile reads an explicit .env file before the environment.
// Values already present in the environment win.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return Load()
	}
	if err := godotenv.Load(path); err != nil {
		return nil, fmt.Errorf("load env file %s: %w", path, err)
	}
	return build()
}

func build() (*Config, error) {
	cfg := &Config{
		Env: getEnv("ENV", "development"),

		Rollover: RolloverConfig{
			Window:        getEnvAsInt("ROLLOVER_WINDOW", 5),
			OrderPolicy:   getEnv("ROLLOVER_ORDER_POLICY", OrderReject),
			OverlapPolicy: getEnv("ROLLOVER_OVERLAP_POLICY", OverlapClamp),
		},

		ChainFile: getEnv("CHAIN_FILE", "config/chain.yaml"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks configuration values
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Rollover.Window < 0 {
		return fmt.Errorf("ROLLOVER_WINDOW must be >= 0, got %d", c.Rollover.Window)
	}

	switch c.Rollover.OrderPolicy {
	case OrderReject, OrderSort:
	default:
		return fmt.Errorf("ROLLOVER_ORDER_POLICY must be one of: reject, sort")
	}

	switch c.Rollover.OverlapPolicy {
	case OverlapClamp, OverlapReject, OverlapLastWrite:
	default:
		return fmt.Errorf("ROLLOVER_OVERLAP_POLICY must be one of: clamp, reject, last-write")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
