package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	// Daemon
	Port  int
	Debug bool

	// Academy backend
	BackendURL   string
	BackendToken string // bearer token for authenticated endpoints

	// Judge
	JudgeTimeout       int // seconds, per execution request
	JudgeMaxConcurrent int
	JudgeRatePerSecond int

	// Local runtime (speculative, readiness only)
	RuntimeEnabled     bool
	RuntimeImage       string
	RuntimeWaitSeconds int

	// Preview
	PreviewDebounceMS int

	// Journal
	JournalPath string

	// Events
	AMQPURL string // empty disables the event stream
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnvInt("PORT", 7438),
		Debug:              getEnvBool("DEBUG", false),
		BackendURL:         getEnv("ACADEMY_API_URL", "http://localhost:8000"),
		BackendToken:       getEnv("ACADEMY_API_TOKEN", ""),
		JudgeTimeout:       getEnvInt("JUDGE_TIMEOUT", 30),
		JudgeMaxConcurrent: getEnvInt("JUDGE_MAX_CONCURRENT", 4),
		JudgeRatePerSecond: getEnvInt("JUDGE_RATE_PER_SECOND", 2),
		RuntimeEnabled:     getEnvBool("RUNTIME_ENABLED", true),
		RuntimeImage:       getEnv("RUNTIME_IMAGE", "python:3.12-alpine"),
		RuntimeWaitSeconds: getEnvInt("RUNTIME_WAIT_SECONDS", 30),
		PreviewDebounceMS:  getEnvInt("PREVIEW_DEBOUNCE_MS", 500),
		JournalPath:        getEnv("JOURNAL_PATH", ""),
		AMQPURL:            getEnv("AMQP_URL", ""),
	}

	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("ACADEMY_API_URL must not be empty")
	}

	return cfg, nil
}

// Local converts an environment-based Config into the daemon's LocalConfig
// shape. Used when no config file exists, e.g. containerized deployments.
func (c *Config) Local() *LocalConfig {
	cfg := DefaultLocalConfig()
	cfg.Daemon.Port = c.Port
	if c.Debug {
		cfg.Daemon.LogLevel = "debug"
	}
	cfg.Backend.URL = c.BackendURL
	cfg.Backend.Token = c.BackendToken
	cfg.Judge.TimeoutSeconds = c.JudgeTimeout
	cfg.Judge.MaxConcurrent = c.JudgeMaxConcurrent
	cfg.Judge.RatePerSecond = c.JudgeRatePerSecond
	cfg.Runtime.Enabled = c.RuntimeEnabled
	cfg.Runtime.Image = c.RuntimeImage
	cfg.Runtime.WaitSeconds = c.RuntimeWaitSeconds
	cfg.Preview.DebounceMS = c.PreviewDebounceMS
	cfg.Events.URL = c.AMQPURL
	return cfg
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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
