package cfg

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TZ", "")

	cfg, err := LoadArgs([]string{"--session-secret", testSecret})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.StoreBackend != StoreSQLite {
		t.Errorf("Expected store 'sqlite', got '%s'", cfg.StoreBackend)
	}
	if cfg.SQLitePath != "./data/radio.db" {
		t.Errorf("Expected sqlite path './data/radio.db', got '%s'", cfg.SQLitePath)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("Expected session TTL 24h, got %v", cfg.SessionTTL)
	}
	if cfg.SettingsTimeout != 3*time.Second {
		t.Errorf("Expected settings timeout 3s, got %v", cfg.SettingsTimeout)
	}
	if cfg.SchedulerInterval != 900 {
		t.Errorf("Expected scheduler interval 900, got %d", cfg.SchedulerInterval)
	}
	if cfg.AIModel != "gemini-2.5-flash" {
		t.Errorf("Expected AI model 'gemini-2.5-flash', got '%s'", cfg.AIModel)
	}
	if cfg.SiteURL() != "http://localhost:8080" {
		t.Errorf("Expected site URL 'http://localhost:8080', got '%s'", cfg.SiteURL())
	}
	if Get() != cfg {
		t.Error("Expected Get to return the loaded configuration")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TZ", "")
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("PORT", "9090")
	t.Setenv("BASE_URL", "https://radio.example.com")
	t.Setenv("UPSTREAM_TIMEOUT", "2s")
	t.Setenv("DEBUG", "true")

	cfg, err := LoadArgs(nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected port '9090', got '%s'", cfg.Port)
	}
	if cfg.UpstreamTimeout != 2*time.Second {
		t.Errorf("Expected upstream timeout 2s, got %v", cfg.UpstreamTimeout)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
	if cfg.SiteURL() != "https://radio.example.com" {
		t.Errorf("Expected site URL 'https://radio.example.com', got '%s'", cfg.SiteURL())
	}
}

func TestLoadRejectsInvalidConfiguration(t *testing.T) {
	t.Setenv("TZ", "")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short secret", []string{"--session-secret", "corto"}, "at least 32 characters"},
		{"firestore without project", []string{"--session-secret", testSecret, "--store", "firestore"}, "firestore project"},
		{"unknown store", []string{"--session-secret", testSecret, "--store", "mongo"}, "failed to parse configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadArgs(tt.args)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got: %v", tt.want, err)
			}
		})
	}
}
