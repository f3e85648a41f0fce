package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Missing file falls back to defaults", func(t *testing.T) {
		cfg, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "sparkmatchdb", cfg.Database.DBName)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, 10, cfg.Gemini.TimeoutSeconds)
	})

	t.Run("File values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
log:
  level: debug
gemini:
  api_key: file-key
`), 0o644))

		cfg, err := loadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "file-key", cfg.Gemini.APIKey)
		// Untouched sections keep their defaults.
		assert.Equal(t, "localhost", cfg.Database.Host)
	})

	t.Run("Environment wins over the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("jwt:\n  secret: from-file\n"), 0o644))
		t.Setenv("JWT_SECRET", "from-env")
		t.Setenv("GEMINI_API_KEY", "env-key")

		cfg, err := loadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.JWT.Secret)
		assert.Equal(t, "env-key", cfg.Gemini.APIKey)
	})

	t.Run("Listen address comes from the environment without a file", func(t *testing.T) {
		t.Setenv("HOST", "0.0.0.0")
		t.Setenv("PORT", "3000")

		cfg, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, 3000, cfg.Server.Port)
	})

	t.Run("Non-numeric PORT is an error", func(t *testing.T) {
		t.Setenv("PORT", "eighty")
		_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorContains(t, err, "PORT")
	})

	t.Run("Malformed yaml is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: [not: a map"), 0o644))
		_, err := loadConfig(path)
		assert.Error(t, err)
	})
}

func TestDatabaseDSN(t *testing.T) {
	cfg := defaultConfig()

	t.Run("Structured fields", func(t *testing.T) {
		dsn := cfg.Database.DSN()
		assert.Contains(t, dsn, "host=localhost")
		assert.Contains(t, dsn, "dbname=sparkmatchdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("DATABASE_URL wins", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://u:p@host/db")
		assert.Equal(t, "postgres://u:p@host/db", cfg.Database.DSN())
	})
}
