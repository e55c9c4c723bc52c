// Package config loads client settings from defaults, a TOML file and
// TODO_* environment variables, in that order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults.
const (
	DefaultAPIURL    = "https://jsonplaceholder.typicode.com"
	DefaultLimit     = 10
	DefaultOwnerID   = 1
	DefaultStaleTime = time.Minute
	DefaultCacheSize = 16
	DefaultTheme     = "classic"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Themes lists the accepted theme names.
var Themes = []string{"classic", "neon", "mono"}

// Duration decodes TOML strings like "30s".
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Config is the effective client configuration.
type Config struct {
	APIURL       string   `toml:"api_url"`
	Limit        int      `toml:"limit"`
	OwnerID      int      `toml:"owner_id"`
	Timeout      Duration `toml:"timeout"`
	StaleTime    Duration `toml:"stale_time"`
	CacheSize    int      `toml:"cache_size"`
	ReconcileIDs bool     `toml:"reconcile_ids"`
	Theme        string   `toml:"theme"`
	LogLevel     string   `toml:"log_level"`
	LogFormat    string   `toml:"log_format"`
	LogFile      string   `toml:"log_file"`

	// Path is the file the config was read from, if any.
	Path string `toml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIURL:       DefaultAPIURL,
		Limit:        DefaultLimit,
		OwnerID:      DefaultOwnerID,
		StaleTime:    Duration{DefaultStaleTime},
		CacheSize:    DefaultCacheSize,
		ReconcileIDs: true,
		Theme:        DefaultTheme,
		LogLevel:     DefaultLogLevel,
		LogFormat:    DefaultLogFormat,
	}
}

// DefaultPath is $XDG_CONFIG_HOME/todo/config.toml, falling back to
// ~/.config/todo/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "todo", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".config", "todo", "config.toml"), nil
}

// Load builds the config from defaults, the file and the environment. An
// explicit path must exist; the default path is optional. The result is not
// validated, so callers can apply flag overrides before calling Validate.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			path = ""
		} else {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	cfg.Path = path

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromEnv(cfg *Config) error {
	str := func(name string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v := strings.TrimSpace(os.Getenv(name))
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = n
		return nil
	}

	str("TODO_API_URL", &cfg.APIURL)
	str("TODO_THEME", &cfg.Theme)
	str("TODO_LOG_LEVEL", &cfg.LogLevel)
	str("TODO_LOG_FORMAT", &cfg.LogFormat)
	str("TODO_LOG_FILE", &cfg.LogFile)
	if err := num("TODO_LIMIT", &cfg.Limit); err != nil {
		return err
	}
	if err := num("TODO_OWNER_ID", &cfg.OwnerID); err != nil {
		return err
	}
	if v := strings.TrimSpace(os.Getenv("TODO_TIMEOUT")); v != "" {
		if err := cfg.Timeout.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("TODO_TIMEOUT: %w", err)
		}
	}
	if v := strings.TrimSpace(os.Getenv("TODO_RECONCILE_IDS")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TODO_RECONCILE_IDS: %w", err)
		}
		cfg.ReconcileIDs = b
	}
	return nil
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api_url %q must be an absolute URL", c.APIURL)
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit must be >= 0, got %d", c.Limit)
	}
	if c.Timeout.Duration < 0 {
		return fmt.Errorf("timeout must be >= 0, got %s", c.Timeout)
	}
	if c.StaleTime.Duration < 0 {
		return fmt.Errorf("stale_time must be >= 0, got %s", c.StaleTime)
	}
	if !validTheme(c.Theme) {
		return fmt.Errorf("unknown theme %q (want %s)", c.Theme, strings.Join(Themes, ", "))
	}
	return nil
}

func validTheme(name string) bool {
	for _, t := range Themes {
		if strings.EqualFold(t, name) {
			return true
		}
	}
	return false
}

// Encode renders c as TOML.
func (c *Config) Encode() (string, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return buf.String(), nil
}
