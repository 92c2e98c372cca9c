package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Player.Binary != "mpv" || cfg.Player.TickMS != 100 {
		t.Fatalf("unexpected player defaults: %+v", cfg.Player)
	}
	if cfg.Card.Style != "classic" || cfg.Card.Color != "#ffffff" {
		t.Fatalf("unexpected card defaults: %+v", cfg.Card)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[player]
binary = "/opt/mpv"
tick_ms = -5

[card]
username = "@grace"
style = "FILM"
color = "not-a-color"

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Player.Binary != "/opt/mpv" || cfg.Player.TickMS != 100 {
		t.Fatalf("unexpected player config: %+v", cfg.Player)
	}
	if cfg.Card.Username != "grace" || cfg.Card.Style != "film" || cfg.Card.Color != "#ffffff" {
		t.Fatalf("unexpected card config: %+v", cfg.Card)
	}
	if cfg.Log.Level != "debug" || cfg.FFmpeg.FFprobe != "ffprobe" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("TCARD_LOG_LEVEL", "")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("TCARD_LOG_LEVEL=warn\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// godotenv does not override variables that are already set.
	os.Unsetenv("TCARD_LOG_LEVEL")

	cfg, err := LoadConfig(filepath.Join(dir, "none.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("expected warn from .env, got %q", cfg.Log.Level)
	}
}

func TestLoadConfigRejectsBadTOML(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[player\nbinary="), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDefaultUsernameFromKeyring(t *testing.T) {
	keyring.MockInit()
	t.Setenv("USER", "tester")

	if got := defaultUsername(""); got != "tester" {
		t.Fatalf("expected login fallback, got %q", got)
	}
	if err := rememberUsername("cardmaker"); err != nil {
		t.Fatalf("remember: %v", err)
	}
	if got := defaultUsername(""); got != "cardmaker" {
		t.Fatalf("expected keyring value, got %q", got)
	}
	if got := defaultUsername("explicit"); got != "explicit" {
		t.Fatalf("expected configured value, got %q", got)
	}
}
