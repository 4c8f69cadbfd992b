package config

import (
	"os"
	"testing"
)

// chdir changes the working directory for the test, restoring it on
// cleanup. Equivalent to t.Chdir, which requires Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restore wd: %v", err)
		}
	})
}

const sampleConfig = `
api:
  base_url: https://mira.example.com
  timeout_seconds: 5
session:
  token_db_path: /tmp/mira-test.db
chat:
  greeting: "Hello from the test suite"
log:
  level: debug
`

// TestLoad verifies that Load unmarshals a full config file.
func TestLoad(t *testing.T) {
	tmp, err := os.CreateTemp(t.TempDir(), "cfg-*.yaml")
	if err != nil {
		t.Fatalf("temp file: %v", err)
	}
	if _, err := tmp.WriteString(sampleConfig); err != nil {
		t.Fatalf("write: %v", err)
	}
	tmp.Close()

	t.Setenv("CONFIG_PATH", tmp.Name())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.BaseURL != "https://mira.example.com" {
		t.Fatalf("unexpected base URL: %s", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSeconds != 5 {
		t.Fatalf("unexpected timeout: %d", cfg.API.TimeoutSeconds)
	}
	if cfg.Session.TokenDBPath != "/tmp/mira-test.db" {
		t.Fatalf("unexpected token db path: %s", cfg.Session.TokenDBPath)
	}
	if cfg.Chat.Greeting != "Hello from the test suite" {
		t.Fatalf("unexpected greeting: %s", cfg.Chat.Greeting)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level: %s", cfg.Log.Level)
	}
}

// TestLoad_Defaults verifies that an absent config file still yields a usable config.
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.BaseURL != "http://127.0.0.1:8000" {
		t.Fatalf("unexpected default base URL: %s", cfg.API.BaseURL)
	}
	if cfg.Chat.Greeting == "" {
		t.Fatal("default greeting should not be empty")
	}
}

// TestLoad_EnvOverride verifies MIRA_API_URL wins over the default.
func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("MIRA_API_URL", "https://override.example.com")
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.BaseURL != "https://override.example.com" {
		t.Fatalf("env override not applied: %s", cfg.API.BaseURL)
	}
}
