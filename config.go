package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/zalando/go-keyring"
)

const keyringService = "tcard"

// Config holds user settings read from config.toml.
type Config struct {
	Player  PlayerConfig  `toml:"player"`
	FFmpeg  FFmpegConfig  `toml:"ffmpeg"`
	Card    Card          `toml:"card"`
	Log     LogConfig     `toml:"log"`
	History HistoryConfig `toml:"history"`
}

type PlayerConfig struct {
	Binary    string `toml:"binary"`
	SocketDir string `toml:"socket_dir"`
	TickMS    int    `toml:"tick_ms"`
}

type FFmpegConfig struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

type LogConfig struct {
	Path  string `toml:"path"`
	Level string `toml:"level"`
}

type HistoryConfig struct {
	Path    string `toml:"path"`
	Enabled bool   `toml:"enabled"`
}

// DefaultConfig returns settings used when no config file exists.
func DefaultConfig() Config {
	stateDir := defaultStateDir()
	return Config{
		Player:  PlayerConfig{Binary: "mpv", TickMS: 100},
		FFmpeg:  FFmpegConfig{FFmpeg: "ffmpeg", FFprobe: "ffprobe"},
		Card:    DefaultCard(""),
		Log:     LogConfig{Path: filepath.Join(stateDir, "tcard.log"), Level: "info"},
		History: HistoryConfig{Path: filepath.Join(stateDir, "history.db"), Enabled: true},
	}
}

// DefaultConfigPath is $XDG_CONFIG_HOME/tcard/config.toml.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "tcard", "config.toml")
}

func defaultStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "tcard")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "tcard")
	}
	return filepath.Join(home, ".local", "state", "tcard")
}

// LoadConfig reads .env overrides, then the TOML file at path. A missing
// file yields defaults.
func LoadConfig(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	if path == "" {
		path = os.Getenv("TCARD_CONFIG")
	}
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if level := os.Getenv("TCARD_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	defaults := DefaultConfig()
	c.Player.Binary = strings.TrimSpace(c.Player.Binary)
	if c.Player.Binary == "" {
		c.Player.Binary = defaults.Player.Binary
	}
	if c.Player.TickMS <= 0 {
		c.Player.TickMS = defaults.Player.TickMS
	}
	if strings.TrimSpace(c.FFmpeg.FFmpeg) == "" {
		c.FFmpeg.FFmpeg = defaults.FFmpeg.FFmpeg
	}
	if strings.TrimSpace(c.FFmpeg.FFprobe) == "" {
		c.FFmpeg.FFprobe = defaults.FFmpeg.FFprobe
	}
	if c.Log.Path == "" {
		c.Log.Path = defaults.Log.Path
	}
	if c.History.Path == "" {
		c.History.Path = defaults.History.Path
	}
	c.Card = c.Card.Normalize()
}

// defaultUsername looks up the remembered username in the OS keyring,
// falling back to the login name.
func defaultUsername(configured string) string {
	if configured != "" {
		return configured
	}
	systemUser := getSystemUser()
	if name, err := keyring.Get(keyringService, systemUser); err == nil && name != "" {
		return name
	}
	return systemUser
}

// rememberUsername stores name so later sessions start with it.
func rememberUsername(name string) error {
	if name == "" {
		return nil
	}
	if err := keyring.Set(keyringService, getSystemUser(), name); err != nil {
		return fmt.Errorf("failed to save username: %w", err)
	}
	return nil
}

func getSystemUser() string {
	username := os.Getenv("USER")
	if username == "" {
		username = os.Getenv("USERNAME") // Windows fallback
	}
	if username == "" {
		username = "anon"
	}
	return username
}
