package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlrecord"
	"github.com/syssam/sqlrecord/dialect"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "sqlrecord.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("provider", "", "")
	fs.String("connection-string", "", "")
	fs.Duration("slow-threshold", 0, "")
	fs.String("log-level", "", "")
	return fs
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.File)
	assert.Empty(t, cfg.Provider)
	assert.Equal(t, DefaultSlowThreshold, cfg.SlowThreshold)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
provider: mysql
connection_string: "user:pw@tcp(localhost:3306)/app"
slow_threshold: 250ms
log_level: warn
tables: schema.yaml
`)

	t.Run("file", func(t *testing.T) {
		cfg, err := Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, path, cfg.File)
		assert.Equal(t, "mysql", cfg.Provider)
		assert.Equal(t, 250*time.Millisecond, cfg.SlowThreshold)
		assert.Equal(t, "schema.yaml", cfg.Tables)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("SQLRECORD_PROVIDER", "postgres")
		cfg, err := Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "postgres", cfg.Provider)
		assert.Equal(t, "warn", cfg.LogLevel)
	})

	t.Run("flags over env", func(t *testing.T) {
		t.Setenv("SQLRECORD_PROVIDER", "postgres")
		fs := testFlags()
		require.NoError(t, fs.Parse([]string{"--provider=sqlite", "--slow-threshold=2s"}))
		cfg, err := Load(path, fs)
		require.NoError(t, err)
		assert.Equal(t, "sqlite", cfg.Provider)
		assert.Equal(t, 2*time.Second, cfg.SlowThreshold)
		assert.Equal(t, "user:pw@tcp(localhost:3306)/app", cfg.ConnectionString, "unset flags keep lower layers")
	})
}

func TestLoadDefaultFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "provider: sqlite\n")
	t.Chdir(dir)
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "sqlrecord.yaml", cfg.File)
	assert.Equal(t, "sqlite", cfg.Provider)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)

	path := writeConfig(t, t.TempDir(), "provider: [unterminated\n")
	_, err = Load(path, nil)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"empty", Config{LogLevel: "info"}, "connection_string or provider is required"},
		{"negative threshold", Config{Provider: "sqlite", SlowThreshold: -1, LogLevel: "info"}, "slow_threshold"},
		{"bad level", Config{Provider: "sqlite", LogLevel: "loud"}, "log_level"},
		{"ok", Config{ConnectionString: "app.db", LogLevel: "DEBUG"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigDialect(t *testing.T) {
	d, err := (&Config{ConnectionString: "Server=db;Database=app;User Id=sa"}).Dialect()
	require.NoError(t, err)
	assert.Equal(t, dialect.SQLServer, d.Name())

	d, err = (&Config{Provider: "npgsql"}).Dialect()
	require.NoError(t, err)
	assert.Equal(t, dialect.Postgres, d.Name())

	_, err = (&Config{Provider: "oracle"}).Dialect()
	assert.True(t, sqlrecord.IsProviderNotSupported(err))
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := (&Config{LogLevel: "warn"}).Logger(&buf)
	log.Info("hidden")
	log.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	(&Config{LogLevel: "nonsense"}).Logger(&buf).Info("fallback")
	assert.Contains(t, buf.String(), "fallback")

	assert.NotNil(t, (&Config{}).Logger(nil))
}
