package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/academy/internal/config"
)

// cmdInit initializes Academy for first-time use
func cmdInit() error {
	fmt.Println("Academy - First-Time Setup")
	fmt.Println("==========================")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	// 1. Create directory structure
	fmt.Print("Creating ~/.academy directory structure... ")
	academyDir, err := config.EnsureAcademyDir()
	if err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	fmt.Println("✓")

	// 2. Create default config if it doesn't exist
	configPath := filepath.Join(academyDir, "config.yaml")
	cfg := config.DefaultLocalConfig()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Print("Creating default configuration... ")
		if err := config.SaveLocalConfig(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Println("✓")
	} else {
		fmt.Println("Configuration already exists ✓")
		if loaded, err := config.LoadLocalConfig(); err == nil {
			cfg = loaded
		}
	}

	// 3. Backend setup
	fmt.Println()
	fmt.Println("Backend Setup")
	fmt.Println("-------------")
	fmt.Printf("Enter Academy backend URL [%s]: ", cfg.Backend.URL)
	url, _ := reader.ReadString('\n')
	url = strings.TrimSpace(url)
	if url != "" {
		cfg.Backend.URL = url
		if err := config.SaveLocalConfig(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
	}

	if cfg.Backend.Token != "" {
		fmt.Println("API token: already configured ✓")
	} else {
		fmt.Print("Enter API token (or press Enter to skip): ")
		token, _ := reader.ReadString('\n')
		token = strings.TrimSpace(token)
		if token != "" {
			if err := config.SaveSecrets(token); err != nil {
				fmt.Printf("  ⚠ Failed to save: %v\n", err)
			} else {
				fmt.Println("  ✓ Saved")
			}
		}
	}

	// 4. Summary
	fmt.Println()
	fmt.Println("Setup Complete!")
	fmt.Println("===============")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. academy start              # Start the daemon")
	fmt.Println("  2. academy status             # Verify the daemon is up")
	fmt.Println("  3. academy course continue 3  # Pick up where you left off")

	return nil
}

// cmdConfig shows the current configuration
func cmdConfig() error {
	cfg, err := config.LoadLocalConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fmt.Println("Academy Configuration")
	fmt.Println("=====================")
	fmt.Printf("Daemon:\n")
	fmt.Printf("  Bind:       %s:%d\n", cfg.Daemon.Bind, cfg.Daemon.Port)
	fmt.Printf("  Log level:  %s\n", cfg.Daemon.LogLevel)
	fmt.Printf("Backend:\n")
	fmt.Printf("  URL:        %s\n", cfg.Backend.URL)
	fmt.Printf("  Token:      %s\n", maskToken(cfg.Backend.Token))
	fmt.Printf("Judge:\n")
	fmt.Printf("  Timeout:    %ds\n", cfg.Judge.TimeoutSeconds)
	fmt.Printf("  Concurrent: %d\n", cfg.Judge.MaxConcurrent)
	fmt.Printf("  Rate:       %d/s\n", cfg.Judge.RatePerSecond)
	fmt.Printf("Runtime:\n")
	fmt.Printf("  Enabled:    %t\n", cfg.Runtime.Enabled)
	fmt.Printf("  Image:      %s\n", cfg.Runtime.Image)
	fmt.Printf("Preview:\n")
	fmt.Printf("  Debounce:   %dms\n", cfg.Preview.DebounceMS)
	if cfg.Events.URL != "" {
		fmt.Printf("Events:\n")
		fmt.Printf("  URL:        %s\n", cfg.Events.URL)
	}

	return nil
}

func maskToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
