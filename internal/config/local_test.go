package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAcademyDir(t *testing.T) {
	dir, err := AcademyDir()
	if err != nil {
		t.Fatalf("AcademyDir() error = %v", err)
	}

	if filepath.Base(dir) != ".academy" {
		t.Errorf("AcademyDir() = %q, want ending with .academy", dir)
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("AcademyDir() = %q, want absolute path", dir)
	}
}

func TestEnsureAcademyDir(t *testing.T) {
	originalHome := os.Getenv("HOME")
	defer os.Setenv("HOME", originalHome)

	tmpHome := t.TempDir()
	os.Setenv("HOME", tmpHome)

	dir, err := EnsureAcademyDir()
	if err != nil {
		t.Fatalf("EnsureAcademyDir() error = %v", err)
	}

	expectedDir := filepath.Join(tmpHome, ".academy")
	if dir != expectedDir {
		t.Errorf("EnsureAcademyDir() = %q, want %q", dir, expectedDir)
	}

	for _, subdir := range []string{"logs", "journal", "cache"} {
		path := filepath.Join(dir, subdir)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("EnsureAcademyDir() should create %s", subdir)
		}
	}
}

func TestDefaultLocalConfig(t *testing.T) {
	cfg := DefaultLocalConfig()
	if cfg == nil {
		t.Fatal("DefaultLocalConfig() returned nil")
	}

	if cfg.Daemon.Port != 7438 {
		t.Errorf("Daemon.Port = %d, want 7438", cfg.Daemon.Port)
	}
	if cfg.Daemon.Bind != "127.0.0.1" {
		t.Errorf("Daemon.Bind = %q, want 127.0.0.1", cfg.Daemon.Bind)
	}
	if cfg.Judge.TimeoutSeconds != 30 {
		t.Errorf("Judge.TimeoutSeconds = %d, want 30", cfg.Judge.TimeoutSeconds)
	}
	if !cfg.Runtime.Enabled {
		t.Error("Runtime.Enabled should default to true")
	}
	if cfg.Events.URL != "" {
		t.Error("Events.URL should default to empty (disabled)")
	}
}

func TestLoadLocalConfig_Defaults(t *testing.T) {
	originalHome := os.Getenv("HOME")
	defer os.Setenv("HOME", originalHome)
	os.Setenv("HOME", t.TempDir())

	cfg, err := LoadLocalConfig()
	if err != nil {
		t.Fatalf("LoadLocalConfig() error = %v", err)
	}
	if cfg.Preview.DebounceMS != 500 {
		t.Errorf("Preview.DebounceMS = %d, want 500", cfg.Preview.DebounceMS)
	}
}

func TestSaveAndLoadLocalConfig(t *testing.T) {
	originalHome := os.Getenv("HOME")
	defer os.Setenv("HOME", originalHome)
	os.Setenv("HOME", t.TempDir())

	cfg := DefaultLocalConfig()
	cfg.Daemon.Port = 9999
	cfg.Backend.URL = "https://academy.example.com"

	if err := SaveLocalConfig(cfg); err != nil {
		t.Fatalf("SaveLocalConfig() error = %v", err)
	}

	loaded, err := LoadLocalConfig()
	if err != nil {
		t.Fatalf("LoadLocalConfig() error = %v", err)
	}

	if loaded.Daemon.Port != 9999 {
		t.Errorf("Daemon.Port = %d, want 9999", loaded.Daemon.Port)
	}
	if loaded.Backend.URL != "https://academy.example.com" {
		t.Errorf("Backend.URL = %q, want saved value", loaded.Backend.URL)
	}
}

func TestSaveSecrets(t *testing.T) {
	originalHome := os.Getenv("HOME")
	defer os.Setenv("HOME", originalHome)
	os.Setenv("HOME", t.TempDir())

	if err := SaveSecrets("tok-123"); err != nil {
		t.Fatalf("SaveSecrets() error = %v", err)
	}

	// The config file must exist for secrets to be merged on load
	if err := SaveLocalConfig(DefaultLocalConfig()); err != nil {
		t.Fatalf("SaveLocalConfig() error = %v", err)
	}

	cfg, err := LoadLocalConfig()
	if err != nil {
		t.Fatalf("LoadLocalConfig() error = %v", err)
	}
	if cfg.Backend.Token != "tok-123" {
		t.Errorf("Backend.Token = %q, want %q", cfg.Backend.Token, "tok-123")
	}
}

func TestLoadSecrets(t *testing.T) {
	originalHome := os.Getenv("HOME")
	defer os.Setenv("HOME", originalHome)
	tmpHome := t.TempDir()
	os.Setenv("HOME", tmpHome)

	dir := filepath.Join(tmpHome, ".academy")
	os.MkdirAll(dir, 0755)

	secrets := "backend:\n  token: sekrit\n"
	os.WriteFile(filepath.Join(dir, "secrets.yaml"), []byte(secrets), 0600)
	os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("daemon:\n  port: 7438\n"), 0644)

	cfg, err := LoadLocalConfig()
	if err != nil {
		t.Fatalf("LoadLocalConfig() error = %v", err)
	}
	if cfg.Backend.Token != "sekrit" {
		t.Errorf("Backend.Token = %q, want %q", cfg.Backend.Token, "sekrit")
	}
}
