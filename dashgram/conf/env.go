package conf

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// FromEnv builds a normalized configuration from DASHGRAM_* environment
// variables, loading a .env file first when one is present. It returns the
// project id alongside the config so the pair can be fed straight into the
// factory.
func FromEnv() (string, *Config, error) {
	// A missing .env file is fine, the variables may come from the environment itself
	_ = godotenv.Load()

	projectID := os.Getenv("DASHGRAM_PROJECT_ID")

	cfg := Default()
	cfg.TrackLevel = parseIntEnv("DASHGRAM_TRACK_LEVEL", cfg.TrackLevel)
	cfg.FlushInterval = parseDurationEnv("DASHGRAM_FLUSH_INTERVAL", cfg.FlushInterval)
	cfg.Debug = parseBoolEnv("DASHGRAM_DEBUG", cfg.Debug)
	cfg.Disabled = parseBoolEnv("DASHGRAM_DISABLED", cfg.Disabled)
	if url := os.Getenv("DASHGRAM_EVENTS_URL"); url != "" {
		cfg.Advanced.EventsURL = url
	}
	cfg.Advanced.BatchSize = parseIntEnv("DASHGRAM_BATCH_SIZE", cfg.Advanced.BatchSize)
	cfg.Advanced.QueueSize = parseIntEnv("DASHGRAM_QUEUE_SIZE", cfg.Advanced.QueueSize)

	if err := Normalize(projectID, cfg); err != nil {
		return "", nil, fmt.Errorf("configuration from environment: %w", err)
	}
	return projectID, cfg, nil
}

func parseIntEnv(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseBoolEnv(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseDurationEnv(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return parsed
}
