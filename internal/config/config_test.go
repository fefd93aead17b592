package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	require.Equal(t, "java", cfg.JavaBin)
	require.Equal(t, "1G", cfg.MinMemory)
	require.Equal(t, "2G", cfg.MaxMemory)
	require.Equal(t, 25565, cfg.Port)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "quarry-backups", cfg.Storage.Bucket)
	require.NotEmpty(t, cfg.InstanceDir)
}

func TestLoadReadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "instance_dir: /srv/mc\njava_bin: /usr/bin/java21\nport: 25570\nlog:\n  level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "/srv/mc", cfg.InstanceDir)
	require.Equal(t, "/usr/bin/java21", cfg.JavaBin)
	require.Equal(t, 25570, cfg.Port)
	require.Equal(t, "debug", cfg.Log.Level)
	// Untouched fields keep their defaults.
	require.Equal(t, "2G", cfg.MaxMemory)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 25570\n"), 0644))

	t.Setenv("QUARRY_PORT", "26000")
	t.Setenv("QUARRY_STORAGE_ENDPOINT", "minio.local:9000")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 26000, cfg.Port)
	require.Equal(t, "minio.local:9000", cfg.Storage.Endpoint)
}

func TestSaveRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	cfg.InstanceDir = "/srv/mc"
	cfg.Port = 25999
	cfg.Storage.Endpoint = "minio.local:9000"

	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/srv/mc", loaded.InstanceDir)
	require.Equal(t, 25999, loaded.Port)
	require.Equal(t, "minio.local:9000", loaded.Storage.Endpoint)
}

func TestLoadErrorsOnMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [25565, unclosed"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}
