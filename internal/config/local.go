package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalConfig holds configuration for local daemon mode
type LocalConfig struct {
	Daemon  DaemonConfig  `yaml:"daemon"`
	Backend BackendConfig `yaml:"backend"`
	Judge   JudgeConfig   `yaml:"judge"`
	Runtime RuntimeConfig `yaml:"runtime"`
	Preview PreviewConfig `yaml:"preview"`
	Events  EventsConfig  `yaml:"events"`
}

// DaemonConfig holds daemon server settings
type DaemonConfig struct {
	Port     int    `yaml:"port"`
	Bind     string `yaml:"bind"`
	LogLevel string `yaml:"log_level"`
}

// BackendConfig holds Academy REST API settings
type BackendConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"-"` // loaded from secrets.yaml
}

// JudgeConfig holds remote judge settings
type JudgeConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
	MaxConcurrent  int `yaml:"max_concurrent"`
	RatePerSecond  int `yaml:"rate_per_second"`
}

// RuntimeConfig holds the speculative local interpreter settings
type RuntimeConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Image       string `yaml:"image"`
	WaitSeconds int    `yaml:"wait_seconds"`
}

// PreviewConfig holds live preview settings
type PreviewConfig struct {
	DebounceMS int `yaml:"debounce_ms"`
}

// EventsConfig holds the optional AMQP event stream settings
type EventsConfig struct {
	URL string `yaml:"url"`
}

// SecretsConfig holds the API token loaded from secrets.yaml
type SecretsConfig struct {
	Backend struct {
		Token string `yaml:"token"`
	} `yaml:"backend"`
}

// AcademyDir returns the path to ~/.academy
func AcademyDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".academy"), nil
}

// EnsureAcademyDir creates ~/.academy and subdirectories if they don't exist
func EnsureAcademyDir() (string, error) {
	dir, err := AcademyDir()
	if err != nil {
		return "", err
	}

	subdirs := []string{
		"",
		"logs",
		"journal",
		"cache",
	}

	for _, subdir := range subdirs {
		path := filepath.Join(dir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", fmt.Errorf("create dir %s: %w", path, err)
		}
	}

	return dir, nil
}

// DefaultLocalConfig returns sensible defaults for local mode
func DefaultLocalConfig() *LocalConfig {
	return &LocalConfig{
		Daemon: DaemonConfig{
			Port:     7438,
			Bind:     "127.0.0.1",
			LogLevel: "info",
		},
		Backend: BackendConfig{
			URL: "http://localhost:8000",
		},
		Judge: JudgeConfig{
			TimeoutSeconds: 30,
			MaxConcurrent:  4,
			RatePerSecond:  2,
		},
		Runtime: RuntimeConfig{
			Enabled:     true,
			Image:       "python:3.12-alpine",
			WaitSeconds: 30,
		},
		Preview: PreviewConfig{
			DebounceMS: 500,
		},
		Events: EventsConfig{},
	}
}

// LoadLocalConfig loads configuration from ~/.academy/config.yaml
func LoadLocalConfig() (*LocalConfig, error) {
	dir, err := AcademyDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(dir, "config.yaml")

	// No config file: fall back to environment configuration, which
	// covers containerized deployments without a home directory setup.
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		env, err := Load()
		if err != nil {
			return nil, err
		}
		return env.Local(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultLocalConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := loadSecrets(dir, cfg); err != nil {
		return nil, fmt.Errorf("load secrets: %w", err)
	}

	return cfg, nil
}

// loadSecrets loads the backend token from secrets.yaml
func loadSecrets(dir string, cfg *LocalConfig) error {
	secretsPath := filepath.Join(dir, "secrets.yaml")

	// If secrets file doesn't exist, skip
	if _, err := os.Stat(secretsPath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(secretsPath)
	if err != nil {
		return fmt.Errorf("read secrets: %w", err)
	}

	var secrets SecretsConfig
	if err := yaml.Unmarshal(data, &secrets); err != nil {
		return fmt.Errorf("parse secrets: %w", err)
	}

	if secrets.Backend.Token != "" {
		cfg.Backend.Token = secrets.Backend.Token
	}

	return nil
}

// SaveSecrets writes the backend token to ~/.academy/secrets.yaml
func SaveSecrets(token string) error {
	dir, err := EnsureAcademyDir()
	if err != nil {
		return err
	}

	var secrets SecretsConfig
	secrets.Backend.Token = token

	data, err := yaml.Marshal(&secrets)
	if err != nil {
		return fmt.Errorf("marshal secrets: %w", err)
	}

	secretsPath := filepath.Join(dir, "secrets.yaml")
	if err := os.WriteFile(secretsPath, data, 0600); err != nil {
		return fmt.Errorf("write secrets: %w", err)
	}

	return nil
}

// SaveLocalConfig saves configuration to ~/.academy/config.yaml
func SaveLocalConfig(cfg *LocalConfig) error {
	dir, err := EnsureAcademyDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(dir, "config.yaml")

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}
