package plugins

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/quarry-cli/internal/fetch"
)

func writeJar(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "plugins")
	return NewManager(dir, fetch.NewFileGetter(), nil), dir
}

func TestListReturnsErrNoPluginsDirWhenMissing(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.List()
	require.ErrorIs(t, err, ErrNoPluginsDir)
}

func TestListSortsJarsAndSkipsOtherFiles(t *testing.T) {
	m, dir := newTestManager(t)
	writeJar(t, dir, "worldedit.jar", "we")
	writeJar(t, dir, "essentials.jar", "ess")
	writeJar(t, dir, "notes.txt", "skip me")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Essentials"), 0755))

	infos, err := m.List()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	require.Equal(t, "essentials", infos[0].Name)
	require.Equal(t, "worldedit", infos[1].Name)
	require.Equal(t, int64(3), infos[0].Size)
}

func TestInstallFromLocalPathCreatesPluginsDir(t *testing.T) {
	m, dir := newTestManager(t)

	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "worldedit.jar")
	require.NoError(t, os.WriteFile(src, []byte("jar bytes"), 0644))

	info, err := m.Install(context.Background(), src, false)
	require.NoError(t, err)
	require.Equal(t, "worldedit", info.Name)
	require.FileExists(t, filepath.Join(dir, "worldedit.jar"))

	// Source is copied, not moved.
	require.FileExists(t, src)
}

func TestInstallRefusesDuplicatesWithoutForce(t *testing.T) {
	m, dir := newTestManager(t)
	writeJar(t, dir, "worldedit.jar", "old")

	src := filepath.Join(t.TempDir(), "worldedit.jar")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0644))

	_, err := m.Install(context.Background(), src, false)
	require.ErrorIs(t, err, ErrAlreadyInstalled)

	_, err = m.Install(context.Background(), src, true)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "worldedit.jar"))
	require.NoError(t, err)
	require.Equal(t, "new", string(data))
}

func TestUpdateRequiresInstalledPlugin(t *testing.T) {
	m, _ := newTestManager(t)

	src := filepath.Join(t.TempDir(), "worldedit.jar")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0644))

	err := m.Update(context.Background(), "worldedit", src)
	require.ErrorIs(t, err, ErrNotInstalled)
}

func TestUpdateReplacesJarInPlace(t *testing.T) {
	m, dir := newTestManager(t)
	writeJar(t, dir, "worldedit.jar", "v1")

	src := filepath.Join(t.TempDir(), "worldedit.jar")
	require.NoError(t, os.WriteFile(src, []byte("v2"), 0644))

	require.NoError(t, m.Update(context.Background(), "worldedit", src))

	data, err := os.ReadFile(filepath.Join(dir, "worldedit.jar"))
	require.NoError(t, err)
	require.Equal(t, "v2", string(data))
}

func TestRemove(t *testing.T) {
	m, dir := newTestManager(t)
	writeJar(t, dir, "worldedit.jar", "we")

	require.NoError(t, m.Remove("worldedit"))
	require.NoFileExists(t, filepath.Join(dir, "worldedit.jar"))

	err := m.Remove("worldedit")
	require.ErrorIs(t, err, ErrNotInstalled)
}

func TestNameNormalization(t *testing.T) {
	m, dir := newTestManager(t)
	writeJar(t, dir, "worldedit.jar", "we")

	require.True(t, m.IsInstalled("worldedit"))
	require.True(t, m.IsInstalled("worldedit.jar"))
	require.NoError(t, m.Remove("worldedit.jar"))
	require.NoFileExists(t, filepath.Join(dir, "worldedit.jar"))
}
