// Package plugins manages the add-on jars in the instance plugins
// directory.
//
// A plugin is identified by its jar filename: installing copies a jar
// into the directory, removing deletes it. There is no registry or
// metadata beyond the files themselves.
package plugins

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quarrylabs/quarry-cli/internal/fetch"
)

var (
	// ErrNoPluginsDir means the plugins directory does not exist yet.
	ErrNoPluginsDir = errors.New("plugins directory does not exist")
	// ErrNotInstalled means the named plugin jar is absent.
	ErrNotInstalled = errors.New("plugin is not installed")
	// ErrAlreadyInstalled means the jar is already present.
	ErrAlreadyInstalled = errors.New("plugin is already installed")
)

// Info describes one installed plugin jar.
type Info struct {
	Name     string
	FileName string
	Size     int64
	Modified time.Time
}

// Manager lists, installs, updates, and removes plugin jars.
type Manager struct {
	dir    string
	getter fetch.Getter
	logger *zap.Logger
}

// NewManager creates a Manager over dir.
func NewManager(dir string, getter fetch.Getter, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{dir: dir, getter: getter, logger: logger}
}

// Dir returns the plugins directory path.
func (m *Manager) Dir() string {
	return m.dir
}

// List returns the installed plugins sorted by name. ErrNoPluginsDir is
// returned when the directory has never been created.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoPluginsDir
		}
		return nil, fmt.Errorf("failed to read plugins directory: %w", err)
	}

	var infos []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jar") {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, Info{
			Name:     strings.TrimSuffix(entry.Name(), ".jar"),
			FileName: entry.Name(),
			Size:     fi.Size(),
			Modified: fi.ModTime(),
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// IsInstalled reports whether the named plugin jar exists.
func (m *Manager) IsInstalled(name string) bool {
	_, err := os.Stat(m.jarPath(name))
	return err == nil
}

// Install fetches src (URL or local path) into the plugins directory,
// creating it on demand. Installing over an existing jar requires force.
func (m *Manager) Install(ctx context.Context, src string, force bool) (*Info, error) {
	fileName := jarName(filepath.Base(strings.TrimSuffix(src, "/")))
	dest := filepath.Join(m.dir, fileName)

	if !force {
		if _, err := os.Stat(dest); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyInstalled, fileName)
		}
	}

	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create plugins directory: %w", err)
	}

	m.logger.Debug("installing plugin", zap.String("src", src), zap.String("dest", dest))

	if err := m.getter.Get(ctx, src, dest, force); err != nil {
		return nil, fmt.Errorf("failed to install plugin from %s: %w", src, err)
	}

	fi, err := os.Stat(dest)
	if err != nil {
		return nil, fmt.Errorf("plugin installed but not readable: %w", err)
	}

	return &Info{
		Name:     strings.TrimSuffix(fileName, ".jar"),
		FileName: fileName,
		Size:     fi.Size(),
		Modified: fi.ModTime(),
	}, nil
}

// Update replaces an installed plugin jar with a fresh copy from src.
// The plugin must already be installed.
func (m *Manager) Update(ctx context.Context, name, src string) error {
	if !m.IsInstalled(name) {
		return fmt.Errorf("%w: %s", ErrNotInstalled, name)
	}

	dest := m.jarPath(name)
	m.logger.Debug("updating plugin", zap.String("name", name), zap.String("src", src))

	if err := m.getter.Get(ctx, src, dest, true); err != nil {
		return fmt.Errorf("failed to update plugin %s: %w", name, err)
	}
	return nil
}

// Remove deletes an installed plugin jar. Removing an absent plugin
// returns ErrNotInstalled so callers can treat it as a notice rather
// than a failure.
func (m *Manager) Remove(name string) error {
	path := m.jarPath(name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotInstalled, name)
		}
		return fmt.Errorf("failed to check plugin %s: %w", name, err)
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove plugin %s: %w", name, err)
	}
	m.logger.Debug("removed plugin", zap.String("name", name))
	return nil
}

func (m *Manager) jarPath(name string) string {
	return filepath.Join(m.dir, jarName(name))
}

// jarName accepts either "worldedit" or "worldedit.jar".
func jarName(name string) string {
	if strings.HasSuffix(name, ".jar") {
		return name
	}
	return name + ".jar"
}
