// Package prefs handles oneearth user preferences persistence.
// Preferences are stored in ~/.config/oneearth/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/oneearth/internal/theme"
)

// Prefs holds user preferences for oneearth.
type Prefs struct {
	Mode string `toml:"mode"`
}

const (
	defaultPrefsPath = "~/.config/oneearth/prefs.toml"
	defaultMode      = string(theme.System)
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from the given path, falling back to defaults if
// the file is missing, unreadable or invalid.
func Load(path string) (Prefs, error) {
	prefs, err := Read(path)
	if err != nil {
		return Prefs{Mode: defaultMode}, nil // Graceful degradation
	}
	if _, err := theme.ParseMode(prefs.Mode); err != nil {
		prefs.Mode = defaultMode
	}
	return prefs, nil
}

// Read is Load without the fallbacks: a missing file yields the defaults,
// but read and parse failures are returned. The stored mode is not
// validated.
func Read(path string) (Prefs, error) {
	prefs := Prefs{Mode: defaultMode}

	resolved, err := resolvePath(path)
	if err != nil {
		return prefs, fmt.Errorf("resolve path: %w", err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs, nil
		}
		return prefs, fmt.Errorf("read prefs: %w", err)
	}

	if err := toml.Unmarshal(data, &prefs); err != nil {
		return Prefs{Mode: defaultMode}, fmt.Errorf("parse prefs: %w", err)
	}
	return prefs, nil
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

// File adapts a preferences file to theme.Storage.
type File struct {
	Path string
}

// LoadMode implements theme.Storage. A missing file yields the default
// mode; read and parse failures are returned for the store to log.
func (f File) LoadMode() (string, error) {
	p, err := Read(f.Path)
	if err != nil {
		return "", err
	}
	return p.Mode, nil
}

// SaveMode implements theme.Storage.
func (f File) SaveMode(mode string) error {
	p, _ := Load(f.Path)
	p.Mode = mode
	return Save(f.Path, p)
}

var _ theme.Storage = File{}

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
