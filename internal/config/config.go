package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr               string
	DBPath             string
	LogLevel           string
	JobWorkerCount     int
	JobQueueSize       int
	SessionTTLMinutes  int
	SessionCardLimit   int
	ImportMaxBodyBytes int64
}

// Load reads configuration from a .env file (if present) and environment
// variables, applying defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:               envOr("ADDR", ":8080"),
		DBPath:             envOr("DB_PATH", "file:studydeck.db"),
		LogLevel:           envOr("LOG_LEVEL", "INFO"),
		JobWorkerCount:     envIntOr("JOB_WORKER_COUNT", 2),
		JobQueueSize:       envIntOr("JOB_QUEUE_SIZE", 64),
		SessionTTLMinutes:  envIntOr("SESSION_TTL_MINUTES", 30),
		SessionCardLimit:   envIntOr("SESSION_CARD_LIMIT", 100),
		ImportMaxBodyBytes: int64(envIntOr("IMPORT_MAX_BODY_BYTES", 1<<20)),
	}
}

// Validate checks the configuration and reports every problem at once.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL %q is not one of DEBUG, INFO, WARN, ERROR", c.LogLevel))
	}
	if c.JobWorkerCount <= 0 {
		problems = append(problems, "JOB_WORKER_COUNT must be positive")
	}
	if c.JobQueueSize <= 0 {
		problems = append(problems, "JOB_QUEUE_SIZE must be positive")
	}
	if c.SessionTTLMinutes <= 0 {
		problems = append(problems, "SESSION_TTL_MINUTES must be positive")
	}
	if c.SessionCardLimit <= 0 {
		problems = append(problems, "SESSION_CARD_LIMIT must be positive")
	}
	if c.ImportMaxBodyBytes <= 0 {
		problems = append(problems, "IMPORT_MAX_BODY_BYTES must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
