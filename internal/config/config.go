package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// SyncConfig tunes one live sync.
type SyncConfig struct {
	Enabled      bool
	PollInterval time.Duration
	PushGrace    time.Duration
	PushBackoff  time.Duration
	MaxRetries   int
}

// Config captures everything crownwatch reads from config.toml.
type Config struct {
	BaseURL           string
	SessionCookie     string
	TournamentSlug    string
	LogFile           string
	LogLevel          string
	MetricsAddr       string
	SuspendWhenHidden bool
	AllowStale        bool

	Notifications SyncConfig
	Tournament    SyncConfig
}

const (
	defaultConfigPath = "~/.config/crownwatch/config.toml"
	defaultLogFile    = "~/.local/state/crownwatch/crownwatch.log"
	defaultBaseURL    = "http://127.0.0.1:8000"
	defaultLogLevel   = "info"

	defaultNotificationsPoll = 30 * time.Second
	defaultTournamentPoll    = 10 * time.Second
	defaultPushGrace         = 2 * time.Second
	defaultPushBackoff       = 3 * time.Second
	defaultMaxRetries        = 3
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		BaseURL:           defaultBaseURL,
		LogFile:           mustExpand(defaultLogFile),
		LogLevel:          defaultLogLevel,
		SuspendWhenHidden: true,
		Notifications: SyncConfig{
			Enabled:      true,
			PollInterval: defaultNotificationsPoll,
			PushGrace:    defaultPushGrace,
			PushBackoff:  defaultPushBackoff,
			MaxRetries:   defaultMaxRetries,
		},
		Tournament: SyncConfig{
			Enabled:      true,
			PollInterval: defaultTournamentPoll,
		},
	}
}

type rawSync struct {
	Enabled      *bool  `toml:"enabled"`
	PollInterval string `toml:"poll_interval"`
	PushGrace    string `toml:"push_grace"`
	PushBackoff  string `toml:"push_backoff"`
	MaxRetries   int    `toml:"max_retries"`
}

type rawConfig struct {
	BaseURL           string  `toml:"base_url"`
	SessionCookie     string  `toml:"session_cookie"`
	TournamentSlug    string  `toml:"tournament_slug"`
	LogFile           string  `toml:"log_file"`
	LogLevel          string  `toml:"log_level"`
	MetricsAddr       string  `toml:"metrics_addr"`
	SuspendWhenHidden *bool   `toml:"suspend_when_hidden"`
	AllowStale        bool    `toml:"allow_stale"`
	Notifications     rawSync `toml:"notifications"`
	Tournament        rawSync `toml:"tournament"`
}

// Load locates and parses the crownwatch config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	cfg.SessionCookie = strings.TrimSpace(raw.SessionCookie)
	cfg.TournamentSlug = strings.TrimSpace(raw.TournamentSlug)
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	if raw.SuspendWhenHidden != nil {
		cfg.SuspendWhenHidden = *raw.SuspendWhenHidden
	}
	cfg.AllowStale = raw.AllowStale

	if err := applySync(&cfg.Notifications, raw.Notifications, "notifications"); err != nil {
		return Config{}, err
	}
	if err := applySync(&cfg.Tournament, raw.Tournament, "tournament"); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func applySync(dst *SyncConfig, raw rawSync, section string) error {
	if raw.Enabled != nil {
		dst.Enabled = *raw.Enabled
	}
	for _, f := range []struct {
		key string
		in  string
		out *time.Duration
	}{
		{"poll_interval", raw.PollInterval, &dst.PollInterval},
		{"push_grace", raw.PushGrace, &dst.PushGrace},
		{"push_backoff", raw.PushBackoff, &dst.PushBackoff},
	} {
		if strings.TrimSpace(f.in) == "" {
			continue
		}
		d, err := time.ParseDuration(strings.TrimSpace(f.in))
		if err != nil {
			return fmt.Errorf("parse config: %s.%s: %w", section, f.key, err)
		}
		if d <= 0 {
			return fmt.Errorf("parse config: %s.%s must be positive", section, f.key)
		}
		*f.out = d
	}
	if raw.MaxRetries < 0 {
		return fmt.Errorf("parse config: %s.max_retries must not be negative", section)
	}
	if raw.MaxRetries > 0 {
		dst.MaxRetries = raw.MaxRetries
	}
	return nil
}

// Authenticated reports whether a session cookie is configured.
func (c Config) Authenticated() bool {
	return c.SessionCookie != ""
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
