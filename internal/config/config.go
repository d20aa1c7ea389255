// Package config handles configuration loading and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/dori/dsboard/internal/board"
	"github.com/dori/dsboard/internal/model"
	"github.com/dori/dsboard/internal/ui/theme"
)

// Default values.
const (
	DefaultDataDir    = "~/.local/share/dsboard"
	DefaultTheme      = "nord"
	DefaultLogLevel   = "info"
	DefaultStorageKey = "kanban-columns"
	DefaultSeedURL    = "https://dummyjson.com/todos"
	DefaultSeedLimit  = 15
	DefaultSeedWait   = 10 * time.Second
)

// DefaultRoster is the assignee list used when none is configured
var DefaultRoster = []string{"Ann", "Leslie", "Shane", "Victoria", "Philip", "Darren"}

// Config holds the full configuration for dsboard.
type Config struct {
	DataDir    string `toml:"data_dir" yaml:"data_dir"`
	Theme      string `toml:"theme" yaml:"theme"`
	LogLevel   string `toml:"log_level" yaml:"log_level"`
	StorageKey string `toml:"storage_key" yaml:"storage_key"`

	Seed   SeedConfig   `toml:"seed" yaml:"seed"`
	Roster RosterConfig `toml:"roster" yaml:"roster"`
	Notify NotifyConfig `toml:"notify" yaml:"notify"`

	// File is the config file that was read, if any (computed)
	File string `toml:"-" yaml:"-"`
}

// SeedConfig controls the one-time seed import
type SeedConfig struct {
	Enabled bool         `toml:"enabled" yaml:"enabled"`
	URL     string       `toml:"url" yaml:"url"`
	Limit   int          `toml:"limit" yaml:"limit"`
	Timeout Duration     `toml:"timeout" yaml:"timeout"`
	Bands   []BandConfig `toml:"bands" yaml:"bands"`
}

// BandConfig is one seed band as written in the config file
type BandConfig struct {
	Column model.Status `toml:"column" yaml:"column"`
	Size   int          `toml:"size" yaml:"size"`
}

// BoardBands converts the configured bands for the seed import
func (s SeedConfig) BoardBands() []board.Band {
	out := make([]board.Band, len(s.Bands))
	for i, b := range s.Bands {
		out[i] = board.Band{Column: b.Column, Size: b.Size}
	}
	return out
}

// RosterConfig lists the people tasks can be assigned to
type RosterConfig struct {
	Names   []string `toml:"names" yaml:"names"`
	Default string   `toml:"default" yaml:"default"`
}

// NotifyConfig toggles desktop notifications
type NotifyConfig struct {
	Enabled bool `toml:"enabled" yaml:"enabled"`
}

// Duration is a time.Duration written as "10s" in config files
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText renders the duration as a Go duration string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns a config populated with default values
func Default() *Config {
	bands := make([]BandConfig, len(board.DefaultBands))
	for i, b := range board.DefaultBands {
		bands[i] = BandConfig{Column: b.Column, Size: b.Size}
	}
	roster := make([]string, len(DefaultRoster))
	copy(roster, DefaultRoster)

	return &Config{
		DataDir:    DefaultDataDir,
		Theme:      DefaultTheme,
		LogLevel:   DefaultLogLevel,
		StorageKey: DefaultStorageKey,
		Seed: SeedConfig{
			Enabled: true,
			URL:     DefaultSeedURL,
			Limit:   DefaultSeedLimit,
			Timeout: Duration{DefaultSeedWait},
			Bands:   bands,
		},
		Roster: RosterConfig{
			Names:   roster,
			Default: roster[0],
		},
	}
}

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. Config file (path, else $DSBOARD_CONFIG, else the user config file)
// 3. Environment variables
// CLI flags are applied by the caller afterwards, followed by Finalize.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if v := os.Getenv("DSBOARD_CONFIG"); v != "" {
			path, explicit = v, true
		} else {
			path = UserConfigFile()
		}
	}

	if path != "" {
		path = expandPath(path)
		if _, err := os.Stat(path); err == nil {
			if err := loadConfigFile(cfg, path); err != nil {
				return nil, fmt.Errorf("loading config file %s: %w", path, err)
			}
			cfg.File = path
		} else if explicit {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadConfigFile loads TOML config from the given file. Keys absent from
// the file keep their current values.
func loadConfigFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// loadFromEnv overrides config from DSBOARD_* environment variables.
func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("DSBOARD_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("DSBOARD_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv("DSBOARD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DSBOARD_SEED_URL"); v != "" {
		cfg.Seed.URL = v
	}
	if v := os.Getenv("DSBOARD_SEED_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DSBOARD_SEED_ENABLED: %w", err)
		}
		cfg.Seed.Enabled = b
	}
	return nil
}

// Finalize expands paths, fills derived defaults and validates.
func (c *Config) Finalize() error {
	c.DataDir = expandPath(c.DataDir)
	if c.Roster.Default == "" && len(c.Roster.Names) > 0 {
		c.Roster.Default = c.Roster.Names[0]
	}
	return c.Validate()
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	var errs []error
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir must not be empty"))
	}
	if _, ok := theme.ByName(c.Theme); !ok {
		errs = append(errs, fmt.Errorf("unknown theme %q (have %s)", c.Theme, strings.Join(theme.Names(), ", ")))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if strings.TrimSpace(c.StorageKey) == "" {
		errs = append(errs, errors.New("storage_key must not be empty"))
	}
	if c.Seed.Limit <= 0 {
		errs = append(errs, fmt.Errorf("seed.limit must be positive, got %d", c.Seed.Limit))
	}
	if c.Seed.Timeout.Duration <= 0 {
		errs = append(errs, fmt.Errorf("seed.timeout must be positive, got %s", c.Seed.Timeout))
	}
	if err := board.ValidateBands(c.Seed.BoardBands()); err != nil {
		errs = append(errs, fmt.Errorf("seed.bands: %w", err))
	}
	return errors.Join(errs...)
}

// DBPath returns the SQLite file inside the data directory
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "dsboard.db")
}

// LogPath returns the log file inside the data directory
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "dsboard.log")
}

// LockPath returns the instance lock file inside the data directory
func (c *Config) LockPath() string {
	return filepath.Join(c.DataDir, "dsboard.lock")
}

// DefaultAssignee returns the assignee given to tasks created without one
func (c *Config) DefaultAssignee() string {
	if c.Roster.Default != "" {
		return c.Roster.Default
	}
	if len(c.Roster.Names) > 0 {
		return c.Roster.Names[0]
	}
	return ""
}
