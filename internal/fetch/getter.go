// Package fetch retrieves single files from remote URLs or local paths.
package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	getter "github.com/hashicorp/go-getter"
)

// Getter fetches a single file from src and places it at dest. Src may be
// an http(s) URL or a local filesystem path; local sources are copied, not
// moved.
type Getter interface {
	// Get fetches src to dest. If dest already exists Get does nothing
	// unless force is true.
	Get(ctx context.Context, src, dest string, force bool) error
}

// FileGetter implements Getter on top of hashicorp/go-getter.
type FileGetter struct {
	get func(ctx context.Context, src, dest, working string) error
}

// NewFileGetter creates the production Getter.
func NewFileGetter() *FileGetter {
	return &FileGetter{
		get: func(ctx context.Context, src, dest, working string) error {
			c := &getter.Client{
				Ctx:  ctx,
				Src:  src,
				Dst:  dest,
				Pwd:  working,
				Mode: getter.ClientModeFile,
				// Local sources are copied, never symlinked.
				Getters: map[string]getter.Getter{
					"file":  &getter.FileGetter{Copy: true},
					"http":  &getter.HttpGetter{},
					"https": &getter.HttpGetter{},
				},
			}

			if err := c.Get(); err != nil {
				return fmt.Errorf("unable to fetch file from %s: %w", src, err)
			}
			return nil
		},
	}
}

// Get fetches src to dest, creating dest's parent directory. Existing
// destinations short-circuit unless force is set.
func (g *FileGetter) Get(ctx context.Context, src, dest string, force bool) error {
	if _, err := os.Stat(dest); err == nil && !force {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	pwd, err := os.Getwd()
	if err != nil {
		return err
	}

	src, err = normalizeSource(src, pwd)
	if err != nil {
		return err
	}

	return g.get(ctx, src, dest, pwd)
}

// IsURL reports whether src looks like a remote source rather than a
// local filesystem path.
func IsURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// normalizeSource resolves local paths to absolute ones and verifies they
// exist, so a typo fails with a clear message instead of a detector error
// from go-getter.
func normalizeSource(src, pwd string) (string, error) {
	if IsURL(src) {
		return src, nil
	}

	if !filepath.IsAbs(src) {
		src = filepath.Join(pwd, src)
	}
	if _, err := os.Stat(src); err != nil {
		return "", fmt.Errorf("local source %s does not exist: %w", src, err)
	}
	return src, nil
}
