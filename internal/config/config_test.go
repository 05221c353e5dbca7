package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	cfg := &Config{
		APIBaseURL:            "https://staging.amora.app",
		RequestTimeoutSeconds: 10,
		DefaultProfile:        "work",
	}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.APIBaseURL != "https://staging.amora.app" {
		t.Errorf("APIBaseURL = %q, want staging URL", loaded.APIBaseURL)
	}
	if loaded.DefaultProfile != "work" {
		t.Errorf("DefaultProfile = %q, want %q", loaded.DefaultProfile, "work")
	}
	if loaded.RequestTimeout() != 10*time.Second {
		t.Errorf("RequestTimeout() = %v, want 10s", loaded.RequestTimeout())
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestDefaults(t *testing.T) {
	var cfg *Config
	if got := cfg.BaseURL(); got != DefaultBaseURL {
		t.Errorf("nil BaseURL() = %q, want %q", got, DefaultBaseURL)
	}
	if got := cfg.RequestTimeout(); got != DefaultTimeoutSeconds*time.Second {
		t.Errorf("nil RequestTimeout() = %v, want %ds", got, DefaultTimeoutSeconds)
	}

	empty := &Config{}
	if got := empty.BaseURL(); got != DefaultBaseURL {
		t.Errorf("empty BaseURL() = %q, want %q", got, DefaultBaseURL)
	}
}

func TestSavePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	if err := Save(path, &Config{DefaultProfile: "main"}); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}
