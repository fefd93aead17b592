package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/quarry-cli/internal/server"
)

// runCommand executes the root command with args against an isolated
// config and instance directory.
func runCommand(t *testing.T, instanceDir string, args ...string) error {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	args = append(args, "--config", configPath, "--instance", instanceDir)

	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.Execute()
}

func TestInitNonInteractiveWritesConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	instanceDir := filepath.Join(t.TempDir(), "server")

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"init",
		"--config", configPath,
		"--instance-dir", instanceDir,
		"--port", "25570",
		"--max-memory", "4G",
	})
	cmd.SetOut(&bytes.Buffer{})
	require.NoError(t, cmd.Execute())

	require.FileExists(t, configPath)
	require.DirExists(t, instanceDir)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "25570")
	require.Contains(t, string(data), "4G")
}

func TestInitRejectsInvalidPort(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"init", "--config", configPath, "--port", "99999"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	require.Error(t, cmd.Execute())
}

func TestStartErrorsWithoutInstalledServer(t *testing.T) {
	err := runCommand(t, filepath.Join(t.TempDir(), "server"), "start")
	require.Error(t, err)
	require.Contains(t, err.Error(), "quarry install")
}

func TestStopErrorsWithoutRunningServer(t *testing.T) {
	err := runCommand(t, t.TempDir(), "stop")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no running server")
}

func TestStatusRunsOnEmptyInstance(t *testing.T) {
	require.NoError(t, runCommand(t, filepath.Join(t.TempDir(), "server"), "status"))
}

func TestPluginsListOnMissingDirIsNotAnError(t *testing.T) {
	require.NoError(t, runCommand(t, filepath.Join(t.TempDir(), "server"), "plugins", "list"))
}

func TestPluginsInstallFromLocalPath(t *testing.T) {
	instanceDir := t.TempDir()

	src := filepath.Join(t.TempDir(), "worldedit.jar")
	require.NoError(t, os.WriteFile(src, []byte("jar"), 0644))

	require.NoError(t, runCommand(t, instanceDir, "plugins", "install", src))
	require.FileExists(t, filepath.Join(instanceDir, "plugins", "worldedit.jar"))

	// Installing again without --force fails.
	err := runCommand(t, instanceDir, "plugins", "install", src)
	require.Error(t, err)
	require.Contains(t, err.Error(), "--force")
}

func TestPluginsRemoveAbsentPluginIsNotAnError(t *testing.T) {
	require.NoError(t, runCommand(t, t.TempDir(), "plugins", "remove", "ghost", "--yes"))
}

func TestPluginsUpdateRequiresFrom(t *testing.T) {
	err := runCommand(t, t.TempDir(), "plugins", "update", "worldedit")
	require.Error(t, err)
	require.Contains(t, err.Error(), "--from")
}

func TestConfigPortRewritesProperties(t *testing.T) {
	instanceDir := t.TempDir()
	inst := server.NewInstance(instanceDir)
	require.NoError(t, inst.WriteDefaultProperties(25565))

	require.NoError(t, runCommand(t, instanceDir, "config", "port", "26000"))

	port, err := inst.Port()
	require.NoError(t, err)
	require.Equal(t, 26000, port)
}

func TestConfigPortErrorsWithoutProperties(t *testing.T) {
	err := runCommand(t, filepath.Join(t.TempDir(), "server"), "config", "port", "26000")
	require.Error(t, err)
	require.Contains(t, err.Error(), "quarry install")
}

func TestConfigPortRejectsGarbage(t *testing.T) {
	require.Error(t, runCommand(t, t.TempDir(), "config", "port", "high"))
	require.Error(t, runCommand(t, t.TempDir(), "config", "port", strconv.Itoa(70000)))
}

func TestBackupCreatesArchive(t *testing.T) {
	instanceDir := t.TempDir()
	inst := server.NewInstance(instanceDir)
	require.NoError(t, inst.WriteDefaultProperties(25565))

	require.NoError(t, runCommand(t, instanceDir, "backup"))

	entries, err := os.ReadDir(inst.BackupsDir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestBackupUploadErrorsWithoutStorageConfig(t *testing.T) {
	instanceDir := t.TempDir()
	require.NoError(t, server.NewInstance(instanceDir).WriteDefaultProperties(25565))

	err := runCommand(t, instanceDir, "backup", "--upload")
	require.Error(t, err)
	require.Contains(t, err.Error(), "storage.endpoint")
}

func TestFormatSize(t *testing.T) {
	require.Equal(t, "0 B", formatSize(0))
	require.Equal(t, "512 B", formatSize(512))
	require.Equal(t, "1.5 KB", formatSize(1536))
	require.Equal(t, "4.0 MB", formatSize(4<<20))
	require.Equal(t, "2.0 GB", formatSize(2<<30))
	// Past the largest unit the value keeps growing in GB.
	require.Equal(t, "2048.0 GB", formatSize(2<<40))
}
