// Package backup archives the server instance and optionally uploads
// the archive to S3-compatible storage.
package backup

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quarrylabs/quarry-cli/internal/server"
)

// Archiver writes tar.gz snapshots of an instance.
type Archiver struct {
	inst   *server.Instance
	logger *zap.Logger
}

// NewArchiver creates an Archiver for the instance.
func NewArchiver(inst *server.Instance, logger *zap.Logger) *Archiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archiver{inst: inst, logger: logger}
}

// skipped lists instance entries that never belong in a backup: the jar
// is re-downloadable, backups must not nest, and the pid file is
// transient.
var skipped = map[string]bool{
	server.JarName:        true,
	server.BackupsDirName: true,
	"server.pid":          true,
	"cache":               true,
	"libraries":           true,
	"logs":                true,
}

// Create archives the instance into <instance>/backups and returns the
// archive path. The archive holds world data, configuration, and
// plugins.
func (a *Archiver) Create() (string, error) {
	entries, err := os.ReadDir(a.inst.Dir)
	if err != nil {
		return "", fmt.Errorf("failed to read instance directory: %w", err)
	}

	if err := os.MkdirAll(a.inst.BackupsDir(), 0755); err != nil {
		return "", fmt.Errorf("failed to create backups directory: %w", err)
	}

	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(a.inst.BackupsDir(), fmt.Sprintf("quarry-%s.tar.gz", stamp))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create archive: %w", err)
	}
	defer f.Close()

	gw := gzip.NewWriter(f)
	tw := tar.NewWriter(gw)

	for _, entry := range entries {
		if skipped[entry.Name()] {
			continue
		}
		src := filepath.Join(a.inst.Dir, entry.Name())
		if err := a.addTree(tw, src, entry.Name()); err != nil {
			tw.Close()
			gw.Close()
			os.Remove(path)
			return "", err
		}
	}

	if err := tw.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := gw.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize archive: %w", err)
	}

	a.logger.Debug("backup created", zap.String("path", path))
	return path, nil
}

// addTree writes src (file or directory) into the archive under name.
func (a *Archiver) addTree(tw *tar.Writer, src, name string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		// Symlinks inside worlds are rare and not restorable portably.
		if info.Mode()&os.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		entryName := name
		if rel != "." {
			entryName = filepath.Join(name, rel)
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return fmt.Errorf("failed to build header for %s: %w", path, err)
		}
		hdr.Name = filepath.ToSlash(entryName)

		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("failed to write header for %s: %w", path, err)
		}
		if info.IsDir() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()

		if _, err := io.Copy(tw, f); err != nil {
			return fmt.Errorf("failed to archive %s: %w", path, err)
		}
		return nil
	})
}

// Entries lists the file names inside an archive, used by tests and by
// `quarry backup --verify`.
func Entries(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}
	defer gr.Close()

	var names []string
	tr := tar.NewReader(gr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("corrupt archive: %w", err)
		}
		names = append(names, strings.TrimSuffix(hdr.Name, "/"))
	}
	return names, nil
}
