package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Remote API
	APIBaseURL     string
	AuthUser       string
	AuthPass       string
	RequestTimeout time.Duration

	// Transaction list
	PerPage int

	// Saved views store
	SQLiteDBPath string

	// Logging
	LogFile  string
	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		APIBaseURL:     getEnv("GROSZ_API_URL", "http://localhost:3001"),
		AuthUser:       getEnv("GROSZ_AUTH_USER", "admin"),
		AuthPass:       getEnv("GROSZ_AUTH_PASS", "admin"),
		RequestTimeout: getEnvDuration("GROSZ_REQUEST_TIMEOUT", 15*time.Second),

		PerPage: getEnvInt("GROSZ_PER_PAGE", 50),

		SQLiteDBPath: getEnv("GROSZ_DB_PATH", "./data/grosz.db"),

		LogFile:  getEnv("GROSZ_LOG_FILE", "./data/grosz.log"),
		LogLevel: getEnv("GROSZ_LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if parsed, err := url.Parse(c.APIBaseURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid API base URL '%s': %v", c.APIBaseURL, err))
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid API base URL scheme '%s': must be 'http' or 'https'", parsed.Scheme))
	} else if parsed.Host == "" {
		errors = append(errors, fmt.Sprintf("invalid API base URL '%s': missing host", c.APIBaseURL))
	}

	if c.AuthUser == "" {
		errors = append(errors, "auth user cannot be empty")
	}

	// The server clamps per_page to 200; reject values it would refuse.
	if c.PerPage < 1 {
		errors = append(errors, fmt.Sprintf("invalid per page %d: must be at least 1", c.PerPage))
	} else if c.PerPage > 200 {
		errors = append(errors, fmt.Sprintf("invalid per page %d: must be at most 200", c.PerPage))
	}

	if c.RequestTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid request timeout %v: must be at least 1 second", c.RequestTimeout))
	} else if c.RequestTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid request timeout %v: must be at most 5 minutes", c.RequestTimeout))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create database directory '%s': %v", dir, err))
				}
			}
		}
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	isValidLevel := false
	for _, level := range validLevels {
		if c.LogLevel == level {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLevels))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
