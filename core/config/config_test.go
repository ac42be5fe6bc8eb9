package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	xdg.Reload()

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, filepath.Join(dir, "data", "media-catalog", "catalog.db"), cfg.Database.Name)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 2, cfg.Catalog.Parallelism)
	assert.False(t, cfg.Catalog.AllowEmptyScan)
	assert.Equal(t, time.Hour, cfg.Catalog.ScanInterval)
	assert.Equal(t, filepath.Join(dir, "state", "media-catalog", "locks"), cfg.Catalog.LockDir)
	assert.Equal(t, "localhost:9000", cfg.Storage.Endpoint)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATABASE_DRIVER", "mysql")
	t.Setenv("DATABASE_NAME", "catalog")
	t.Setenv("CATALOG_ALLOW_EMPTY_SCAN", "true")
	t.Setenv("CATALOG_SCAN_INTERVAL", "15m")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "catalog", cfg.Database.Name)
	assert.True(t, cfg.Catalog.AllowEmptyScan)
	assert.Equal(t, 15*time.Minute, cfg.Catalog.ScanInterval)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "from-dotenv.db")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DATABASE_NAME="+dbPath+"\nLOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("DATABASE_NAME")
		os.Unsetenv("LOG_LEVEL")
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, dbPath, cfg.Database.Name)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	content := "catalog:\n  parallelism: 6\nlog:\n  format: json\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Catalog.Parallelism)
	assert.Equal(t, "json", cfg.Log.Format)
}
