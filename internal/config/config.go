// Package config loads jira settings from defaults, an optional config file,
// JIRA_* environment variables and command-line flags, in that order of
// precedence (flags win).
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

// Config holds all jira configuration.
type Config struct {
	// DB is the document path. The extension picks the backend.
	DB string `mapstructure:"db"`

	// AutoInit creates an empty document when DB does not exist.
	AutoInit bool `mapstructure:"auto_init"`

	Log       LogConfig       `mapstructure:"log"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`

	// ConfigFile is the file the settings were read from, if any.
	ConfigFile string `mapstructure:"-"`
}

// LogConfig configures logging output and rotation.
type LogConfig struct {
	File       string `mapstructure:"file"` // empty = stderr
	Verbose    bool   `mapstructure:"verbose"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// DashboardConfig configures the live dashboard.
type DashboardConfig struct {
	Port     int           `mapstructure:"port"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// Default values.
const (
	DefaultDB                = "data/db.json"
	DefaultDashboardPort     = 8080
	DefaultDashboardDebounce = 100 * time.Millisecond
	DefaultLogMaxSizeMB      = 10
	DefaultLogMaxBackups     = 3
	DefaultLogMaxAgeDays     = 28
)

// EnvPrefix is prepended to environment variable names (JIRA_DB, JIRA_LOG_FILE, ...).
const EnvPrefix = "JIRA"

// flagKeys maps command-line flag names to config keys.
// --no-init is handled separately since it inverts auto_init.
var flagKeys = map[string]string{
	"db":       "db",
	"log-file": "log.file",
	"verbose":  "log.verbose",
	"port":     "dashboard.port",
	"debounce": "dashboard.debounce",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db", DefaultDB)
	v.SetDefault("auto_init", true)
	v.SetDefault("log.file", "")
	v.SetDefault("log.verbose", false)
	v.SetDefault("log.max_size_mb", DefaultLogMaxSizeMB)
	v.SetDefault("log.max_backups", DefaultLogMaxBackups)
	v.SetDefault("log.max_age_days", DefaultLogMaxAgeDays)
	v.SetDefault("dashboard.port", DefaultDashboardPort)
	v.SetDefault("dashboard.debounce", DefaultDashboardDebounce)
}

// Options controls where Load looks for settings.
type Options struct {
	// File is an explicit config file; when set, search paths are ignored
	// and a missing file is an error.
	File string

	// SearchPaths are directories searched for jira.{yaml,yml,toml,json}.
	// Nil means the working directory and $HOME/.config/jira.
	SearchPaths []string

	// Flags are bound on top of file and environment values. Only flags the
	// user actually set override lower layers.
	Flags *pflag.FlagSet
}

// Load builds a Config from defaults, file, environment and flags.
func Load(opts Options) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName("jira")
		paths := opts.SearchPaths
		if paths == nil {
			paths = defaultSearchPaths()
		}
		for _, p := range paths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	if opts.Flags != nil {
		if f := opts.Flags.Lookup("no-init"); f != nil && f.Changed {
			cfg.AutoInit = false
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DB) == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Dashboard.Port < 0 || c.Dashboard.Port > 65535 {
		return fmt.Errorf("dashboard.port must be between 0 and 65535 (got %d)", c.Dashboard.Port)
	}
	if c.Dashboard.Debounce < 0 {
		return fmt.Errorf("dashboard.debounce must not be negative (got %v)", c.Dashboard.Debounce)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return fmt.Errorf("log rotation limits must not be negative")
	}
	return nil
}

func defaultSearchPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "jira"))
	}
	return paths
}
