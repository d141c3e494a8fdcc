package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "release", cfg.Server.Mode)
	require.True(t, cfg.Database.AutoMigrate)
	require.Equal(t, 1000, cfg.Ingestion.BatchSize)
	require.Equal(t, 4, cfg.Ingestion.WorkerCount)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "hourcount.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
server:
  port: 9090
  host: "127.0.0.1"
database:
  dsn: "file:/tmp/test.db"
  auto_migrate: false
ingestion:
  batch_size: 250
  worker_count: 2
`), 0o644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "127.0.0.1", cfg.Server.Host)
	require.Equal(t, "file:/tmp/test.db", cfg.Database.DSN)
	require.False(t, cfg.Database.AutoMigrate)
	require.Equal(t, 250, cfg.Ingestion.BatchSize)
	require.Equal(t, 2, cfg.Ingestion.WorkerCount)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "hourcount.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
server:
  port: 9090
`), 0o644))

	t.Setenv("HOURCOUNT_SERVER__PORT", "9191")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	require.Equal(t, 9191, cfg.Server.Port)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_RejectsNonPositiveIngestionSettings(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "hourcount.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
ingestion:
  batch_size: 0
`), 0o644))

	_, err := Load(cfgPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "batch_size")
}
