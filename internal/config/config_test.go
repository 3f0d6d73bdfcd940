package config

import (
	"os"
	"testing"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{"returns default when not set", "TEST_KEY_UNSET", "default", "", "default"},
		{"returns env value when set", "TEST_KEY_SET", "default", "custom", "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue int
		envValue     string
		want         int
	}{
		{"returns default when not set", "TEST_INT_UNSET", 100, "", 100},
		{"parses valid int", "TEST_INT_VALID", 100, "42", 42},
		{"returns default on invalid int", "TEST_INT_INVALID", 100, "not-a-number", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := getEnvInt(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvInt(%q, %d) = %d, want %d", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestConfigLocal(t *testing.T) {
	os.Setenv("PORT", "9001")
	os.Setenv("ACADEMY_API_URL", "https://academy.example.com")
	os.Setenv("DEBUG", "true")
	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("ACADEMY_API_URL")
		os.Unsetenv("DEBUG")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	local := cfg.Local()
	if local.Daemon.Port != 9001 {
		t.Errorf("Daemon.Port = %d, want 9001", local.Daemon.Port)
	}
	if local.Daemon.LogLevel != "debug" {
		t.Errorf("Daemon.LogLevel = %q, want debug", local.Daemon.LogLevel)
	}
	if local.Backend.URL != "https://academy.example.com" {
		t.Errorf("Backend.URL = %q, want env value", local.Backend.URL)
	}
	if local.Daemon.Bind != "127.0.0.1" {
		t.Errorf("Daemon.Bind = %q, want default bind", local.Daemon.Bind)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 7438 {
		t.Errorf("Port = %d, want 7438", cfg.Port)
	}
	if cfg.BackendURL == "" {
		t.Error("BackendURL should have a default")
	}
	if cfg.JudgeTimeout != 30 {
		t.Errorf("JudgeTimeout = %d, want 30", cfg.JudgeTimeout)
	}
	if cfg.PreviewDebounceMS != 500 {
		t.Errorf("PreviewDebounceMS = %d, want 500", cfg.PreviewDebounceMS)
	}
	if cfg.RuntimeWaitSeconds != 30 {
		t.Errorf("RuntimeWaitSeconds = %d, want 30", cfg.RuntimeWaitSeconds)
	}
}
