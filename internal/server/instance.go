// Package server models the managed server installation on disk.
//
// An instance is a directory holding server.jar, eula.txt,
// server.properties, world data, and a plugins directory. The package
// knows where those files live and what state they are in; it does not
// run the server (see internal/process) or download anything (see
// internal/fetch and internal/paper).
package server

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// JarName is the fixed name the server jar is installed under.
	JarName = "server.jar"
	// PropertiesName is the server configuration file.
	PropertiesName = "server.properties"
	// EULAName is the license acknowledgement file.
	EULAName = "eula.txt"
	// PluginsDirName holds installed add-on jars.
	PluginsDirName = "plugins"
	// BackupsDirName holds local backup archives.
	BackupsDirName = "backups"
)

// Instance is a server installation rooted at Dir.
type Instance struct {
	Dir string
}

// NewInstance returns an Instance for dir without touching the
// filesystem.
func NewInstance(dir string) *Instance {
	return &Instance{Dir: dir}
}

// EnsureDir creates the instance directory if it does not exist.
func (i *Instance) EnsureDir() error {
	if err := os.MkdirAll(i.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create instance directory %s: %w", i.Dir, err)
	}
	return nil
}

// JarPath returns the path of the installed server jar.
func (i *Instance) JarPath() string {
	return filepath.Join(i.Dir, JarName)
}

// PropertiesPath returns the path of server.properties.
func (i *Instance) PropertiesPath() string {
	return filepath.Join(i.Dir, PropertiesName)
}

// EULAPath returns the path of eula.txt.
func (i *Instance) EULAPath() string {
	return filepath.Join(i.Dir, EULAName)
}

// PluginsDir returns the plugins directory path.
func (i *Instance) PluginsDir() string {
	return filepath.Join(i.Dir, PluginsDirName)
}

// BackupsDir returns the backups directory path.
func (i *Instance) BackupsDir() string {
	return filepath.Join(i.Dir, BackupsDirName)
}

// PidPath returns the path of the pid file written for a managed run.
func (i *Instance) PidPath() string {
	return filepath.Join(i.Dir, "server.pid")
}

// Installed reports whether the server jar is present.
func (i *Instance) Installed() bool {
	info, err := os.Stat(i.JarPath())
	return err == nil && !info.IsDir()
}

// EULAAccepted reports whether eula.txt exists and contains eula=true.
func (i *Instance) EULAAccepted() bool {
	data, err := os.ReadFile(i.EULAPath())
	if err != nil {
		return false
	}
	accepted, err := ReadBool(string(data), "eula")
	return err == nil && accepted
}

// AcceptEULA writes eula.txt acknowledging the Minecraft EULA.
func (i *Instance) AcceptEULA() error {
	if err := i.EnsureDir(); err != nil {
		return err
	}
	content := "# Accepted via quarry install\neula=true\n"
	if err := os.WriteFile(i.EULAPath(), []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", i.EULAPath(), err)
	}
	return nil
}

// WriteDefaultProperties creates server.properties with the given port
// if the file does not already exist.
func (i *Instance) WriteDefaultProperties(port int) error {
	if _, err := os.Stat(i.PropertiesPath()); err == nil {
		return nil
	}
	if err := i.EnsureDir(); err != nil {
		return err
	}
	if err := os.WriteFile(i.PropertiesPath(), []byte(DefaultProperties(port)), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", i.PropertiesPath(), err)
	}
	return nil
}

// Port reads the configured server-port from server.properties.
func (i *Instance) Port() (int, error) {
	data, err := os.ReadFile(i.PropertiesPath())
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", i.PropertiesPath(), err)
	}
	port, err := ReadPort(string(data))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", i.PropertiesPath(), err)
	}
	return port, nil
}

// SetPort rewrites the server-port line in server.properties, leaving
// every other byte of the file untouched.
func (i *Instance) SetPort(port int) error {
	data, err := os.ReadFile(i.PropertiesPath())
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", i.PropertiesPath(), err)
	}

	updated, err := ReplacePort(string(data), port)
	if err != nil {
		return fmt.Errorf("%s: %w", i.PropertiesPath(), err)
	}

	if err := os.WriteFile(i.PropertiesPath(), []byte(updated), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", i.PropertiesPath(), err)
	}
	return nil
}
