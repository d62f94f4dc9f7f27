// Package prefs handles crownwatch user preferences persistence.
// Preferences are stored in ~/.config/crownwatch/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds user preferences for crownwatch.
type Prefs struct {
	Theme string `toml:"theme"`
	// Notifications is the desktop notification permission: "default",
	// "granted" or "denied".
	Notifications string `toml:"notifications"`
	Sound         bool   `toml:"sound"`
}

const (
	defaultPrefsPath     = "~/.config/crownwatch/prefs.toml"
	defaultTheme         = "Nightfox"
	defaultNotifications = "default"
)

// Defaults returns the preferences used when no file exists.
func Defaults() Prefs {
	return Prefs{Theme: defaultTheme, Notifications: defaultNotifications, Sound: true}
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from path. A missing file yields the defaults. An
// unreadable or invalid file also yields the defaults, together with the
// error so the caller can report it.
func Load(path string) (Prefs, error) {
	p := Defaults()
	resolved, err := resolvePath(path)
	if err != nil {
		return p, err
	}
	data, err := os.ReadFile(resolved)
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err == nil {
		err = toml.Unmarshal(data, &p)
	}
	if err != nil {
		return Defaults(), fmt.Errorf("load prefs %s: %w", resolved, err)
	}
	return p.normalized(), nil
}

func (p Prefs) normalized() Prefs {
	if strings.TrimSpace(p.Theme) == "" {
		p.Theme = defaultTheme
	}
	switch n := strings.ToLower(strings.TrimSpace(p.Notifications)); n {
	case "granted", "denied":
		p.Notifications = n
	default:
		p.Notifications = defaultNotifications
	}
	return p
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

// Update loads the preferences at path, applies fn and saves the result. An
// invalid file is replaced, starting from the defaults.
func Update(path string, fn func(*Prefs)) error {
	p, _ := Load(path)
	fn(&p)
	return Save(path, p)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
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
