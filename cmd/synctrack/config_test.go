package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danmuck/synctrack/internal/config"
	"github.com/danmuck/synctrack/internal/testutil/testlog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "synctrack.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadClientConfigDefaultsAndOverrides(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `
address = "127.0.0.1:1400"
tracks = ["camera:x", " ", "fx:fade"]
start_row = 32
max_connect_attempts = 3
`)
	cfg, err := loadClientConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	def := config.DefaultClientConfig()
	if cfg.Address != "127.0.0.1:1400" {
		t.Fatalf("unexpected address: %q", cfg.Address)
	}
	if len(cfg.Tracks) != 2 || cfg.Tracks[1] != "fx:fade" {
		t.Fatalf("unexpected tracks: %+v", cfg.Tracks)
	}
	if cfg.StartRow != 32 || cfg.MaxConnectAttempts != 3 {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.PollInterval != def.PollInterval || cfg.PollTimeout != def.PollTimeout {
		t.Fatalf("defaults not kept: %+v", cfg)
	}
}

func TestLoadClientConfigEmptyPathUsesDefaults(t *testing.T) {
	testlog.Start(t)
	cfg, err := loadClientConfig("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.Address != config.DefaultClientConfig().Address {
		t.Fatalf("unexpected address: %q", cfg.Address)
	}
}

func TestLoadClientConfigRejectsUnknownAndInvalid(t *testing.T) {
	testlog.Start(t)
	if _, err := loadClientConfig(writeConfig(t, `adress = "x:1"`)); err == nil {
		t.Fatalf("expected unknown key error")
	}
	if _, err := loadClientConfig(writeConfig(t, `poll_interval = "often"`)); err == nil {
		t.Fatalf("expected duration error")
	}
	if _, err := loadClientConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected missing file error")
	}
}
