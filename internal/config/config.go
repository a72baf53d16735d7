// Package config loads the connection settings used by the sqlrecord
// command-line tools.
//
// Values are layered with koanf. From lowest to highest priority they are:
// defaults, the YAML config file, SQLRECORD_* environment variables and
// explicitly set flags.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/syssam/sqlrecord/dialect"
)

// EnvPrefix prefixes environment variables read by Load.
const EnvPrefix = "SQLRECORD_"

// DefaultFiles are searched in the working directory when no config file is
// given.
var DefaultFiles = []string{"sqlrecord.yaml", "sqlrecord.yml"}

// Defaults.
const (
	DefaultSlowThreshold = 100 * time.Millisecond
	DefaultLogLevel      = "info"
)

// Config holds the tool settings.
type Config struct {
	Provider         string        `koanf:"provider"`
	ConnectionString string        `koanf:"connection_string"`
	Tables           string        `koanf:"tables"`
	SlowThreshold    time.Duration `koanf:"slow_threshold"`
	LogLevel         string        `koanf:"log_level"`

	// File is the config file that was read, if any.
	File string `koanf:"-"`
}

// Load reads the configuration. cfgFile names an explicit config file; when
// empty the DefaultFiles are tried. flags may be nil; only flags that were
// set override other sources, with kebab-case names mapped to snake_case
// keys.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		"provider":       "",
		"slow_threshold": DefaultSlowThreshold.String(),
		"log_level":      DefaultLogLevel,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", used, err)
		}
	}

	// SQLRECORD_CONNECTION_STRING -> connection_string
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("config: load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.File = used
	return &cfg, nil
}

// findConfigFile returns explicit, or the first existing default file.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range DefaultFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Validate reports settings that cannot name a database.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ConnectionString) == "" && strings.TrimSpace(c.Provider) == "" {
		return fmt.Errorf("config: connection_string or provider is required")
	}
	if c.SlowThreshold < 0 {
		return fmt.Errorf("config: slow_threshold must not be negative")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Dialect resolves the configured provider, sniffing the connection string
// when the provider is empty or ambiguous.
func (c *Config) Dialect() (dialect.Dialect, error) {
	return dialect.Resolve(c.Provider, c.ConnectionString)
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: log_level: %w", err)
	}
	return l, nil
}

// Logger returns a text logger writing to w at the configured level. An
// invalid level falls back to info.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	if w == nil {
		return slog.New(slog.DiscardHandler)
	}
	l, err := c.Level()
	if err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}
