package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "data/app.db", cfg.Database.DSN())
	assert.Equal(t, 4, cfg.Geocode.Concurrency)
}

func TestLoadFromYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatch.yaml")
	yml := `
server:
  port: "9090"
oracle:
  model: gemini-test
geocode:
  concurrency: 2
  cache_ttl: 1h
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	t.Setenv("ORACLE_MODEL", "gemini-env")
	t.Setenv("DATABASE_URL", "postgres://localhost/dispatch")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "gemini-env", cfg.Oracle.Model)
	assert.Equal(t, 2, cfg.Geocode.Concurrency)
	assert.Equal(t, time.Hour, cfg.Geocode.CacheTTL)
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/dispatch", cfg.Database.DSN())
}

func TestLoadFromRejectsBadValues(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	t.Run("driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "mysql")
		_, err := LoadFrom(missing)
		require.Error(t, err)
	})

	t.Run("pgx without url", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "pgx")
		_, err := LoadFrom(missing)
		require.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("concurrency", func(t *testing.T) {
		t.Setenv("GEOCODE_CONCURRENCY", "zero")
		_, err := LoadFrom(missing)
		require.ErrorContains(t, err, "GEOCODE_CONCURRENCY")
	})
}

func TestGet(t *testing.T) {
	t.Setenv("DISPATCH_TEST_KEY", "  ")
	assert.Equal(t, "fallback", Get("DISPATCH_TEST_KEY", "fallback"))

	t.Setenv("DISPATCH_TEST_KEY", "value")
	assert.Equal(t, "value", Get("DISPATCH_TEST_KEY", "fallback"))
}
