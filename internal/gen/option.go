package gen

import (
	"runtime"
	"strings"
	"time"
)

// DefaultHeader heads every generated file.
const DefaultHeader = "// Code generated by recordgen. DO NOT EDIT."

// DefaultSuffix is appended to the lower-cased entity name to form the
// output file name.
const DefaultSuffix = "_record.go"

// Config configures generation.
type Config struct {
	// Dir is the directory patterns are resolved against.
	Dir string
	// Patterns are go/packages load patterns.
	Patterns []string
	// Types restricts generation to the named structs. When empty, every
	// struct with at least one sqlrecord tag is generated.
	Types []string
	// Header is written at the top of each file.
	Header string
	// Suffix names output files.
	Suffix string
	// Workers bounds parallel file writes.
	Workers int
	// Debounce delays regeneration after file events in watch mode.
	Debounce time.Duration
}

// Option configures generation.
type Option func(*Config) error

// WithDir sets the directory load patterns are resolved against.
func WithDir(dir string) Option {
	return func(c *Config) error {
		c.Dir = dir
		return nil
	}
}

// WithPatterns sets the packages to load, e.g. "./models".
func WithPatterns(patterns ...string) Option {
	return func(c *Config) error {
		if len(patterns) == 0 {
			return NewConfigError("Patterns", nil, "at least one package pattern is required")
		}
		c.Patterns = patterns
		return nil
	}
}

// WithTypes restricts generation to the named structs.
func WithTypes(names ...string) Option {
	return func(c *Config) error {
		for _, n := range names {
			if strings.TrimSpace(n) == "" {
				return NewConfigError("Types", n, "type name cannot be empty")
			}
		}
		c.Types = names
		return nil
	}
}

// WithHeader sets the file header comment.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithSuffix sets the output file suffix.
func WithSuffix(suffix string) Option {
	return func(c *Config) error {
		if !strings.HasSuffix(suffix, ".go") {
			return NewConfigError("Suffix", suffix, "suffix must end in .go")
		}
		c.Suffix = suffix
		return nil
	}
}

// WithWorkers bounds parallel file writes.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return NewConfigError("Workers", n, "workers must be positive")
		}
		c.Workers = n
		return nil
	}
}

// WithDebounce sets the watch-mode debounce.
func WithDebounce(d time.Duration) Option {
	return func(c *Config) error {
		if d < 0 {
			return NewConfigError("Debounce", d, "debounce must not be negative")
		}
		c.Debounce = d
		return nil
	}
}

// NewConfig returns a Config with defaults and opts applied.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Dir:      ".",
		Patterns: []string{"."},
		Header:   DefaultHeader,
		Suffix:   DefaultSuffix,
		Workers:  runtime.GOMAXPROCS(0),
		Debounce: 300 * time.Millisecond,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}
