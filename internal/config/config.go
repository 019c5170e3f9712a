package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the dashboard settings.
type Config struct {
	APIOrigin      string        `mapstructure:"api_origin"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	SeriesDays     int           `mapstructure:"series_days"`
	Retries        int           `mapstructure:"retries"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	PrefsPath      string        `mapstructure:"prefs_path"`
	NoPersist      bool          `mapstructure:"no_persist"`
	LogFile        string        `mapstructure:"log_file"`
	SiteURL        string        `mapstructure:"site_url"`
	Debug          bool          `mapstructure:"debug"`

	// File is the config file that was read, empty when none existed.
	File string `mapstructure:"-"`
}

const (
	defaultConfigPath     = "~/.config/oneearth/config.toml"
	defaultPrefsPath      = "~/.config/oneearth/prefs.toml"
	defaultAPIOrigin      = "http://127.0.0.1:8081"
	defaultPollInterval   = 60 * time.Second
	defaultSeriesDays     = 30
	defaultRetries        = 3
	defaultRequestTimeout = 10 * time.Second

	// EnvPrefix prefixes environment overrides, e.g. ONEEARTH_API_ORIGIN.
	EnvPrefix = "ONEEARTH"
)

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"api-origin":    "api_origin",
	"poll-interval": "poll_interval",
	"days":          "series_days",
	"retries":       "retries",
	"timeout":       "request_timeout",
	"prefs":         "prefs_path",
	"no-persist":    "no_persist",
	"log-file":      "log_file",
	"site-url":      "site_url",
	"debug":         "debug",
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIOrigin:      defaultAPIOrigin,
		PollInterval:   defaultPollInterval,
		SeriesDays:     defaultSeriesDays,
		Retries:        defaultRetries,
		RequestTimeout: defaultRequestTimeout,
		PrefsPath:      mustExpand(defaultPrefsPath),
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return defaultConfigPath
}

// RegisterFlags adds the overridable settings to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("api-origin", defaultAPIOrigin, "metrics API origin")
	fs.Duration("poll-interval", defaultPollInterval, "refresh interval")
	fs.Int("days", defaultSeriesDays, "days of history in the series chart")
	fs.Int("retries", defaultRetries, "retries per refresh before showing an error")
	fs.Duration("timeout", defaultRequestTimeout, "per-request timeout")
	fs.String("prefs", defaultPrefsPath, "preferences file")
	fs.Bool("no-persist", false, "keep the theme mode in memory only")
	fs.String("log-file", "", "write debug logs to this file")
	fs.String("site-url", "", "public site URL shown in the footer")
	fs.Bool("debug", false, "log at debug level")
}

// Load reads the config file at path (the default location when empty) and
// applies ONEEARTH_* environment variables and any changed flags in fs on
// top. A missing file is not an error.
func Load(path string, fs *pflag.FlagSet) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if flag := fs.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	v.SetConfigFile(resolved)
	v.SetConfigType("toml")
	file := resolved
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, os.ErrNotExist) && !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		file = ""
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = file

	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_origin", defaultAPIOrigin)
	v.SetDefault("poll_interval", defaultPollInterval)
	v.SetDefault("series_days", defaultSeriesDays)
	v.SetDefault("retries", defaultRetries)
	v.SetDefault("request_timeout", defaultRequestTimeout)
	v.SetDefault("prefs_path", defaultPrefsPath)
	v.SetDefault("no_persist", false)
	v.SetDefault("log_file", "")
	v.SetDefault("site_url", "")
	v.SetDefault("debug", false)
}

func (c *Config) normalize() error {
	c.APIOrigin = strings.TrimSpace(c.APIOrigin)
	if c.APIOrigin == "" {
		c.APIOrigin = defaultAPIOrigin
	}
	c.SiteURL = strings.TrimSpace(c.SiteURL)

	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.SeriesDays <= 0 {
		return fmt.Errorf("series_days must be positive, got %d", c.SeriesDays)
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", c.Retries)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}

	if strings.TrimSpace(c.PrefsPath) == "" {
		c.PrefsPath = defaultPrefsPath
	}
	c.PrefsPath = mustExpand(c.PrefsPath)
	if strings.TrimSpace(c.LogFile) != "" {
		c.LogFile = mustExpand(c.LogFile)
	} else {
		c.LogFile = ""
	}
	return nil
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
