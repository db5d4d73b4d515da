package crontab

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileBackend keeps the crontab in a plain file, e.g. a user spool file or a
// drop-in under /etc/cron.d.
type FileBackend struct {
	fs   afero.Fs
	path string
}

// NewFileBackend creates a file backend on fs (the OS filesystem when nil).
func NewFileBackend(fs afero.Fs, path string) *FileBackend {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileBackend{fs: fs, path: path}
}

// Name implements Backend.
func (b *FileBackend) Name() string {
	return "file"
}

// Path returns the crontab file path.
func (b *FileBackend) Path() string {
	return b.path
}

// Load reads the file. A missing file is an empty crontab.
func (b *FileBackend) Load(_ context.Context) (string, error) {
	data, err := afero.ReadFile(b.fs, b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read crontab file: %w", err)
	}
	return string(data), nil
}

// Install writes content to a temporary file next to the target, syncs it and
// renames it over the target.
func (b *FileBackend) Install(_ context.Context, content string) error {
	dir := filepath.Dir(b.path)
	if err := b.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create crontab directory: %w", err)
	}

	tmp, err := afero.TempFile(b.fs, dir, "."+filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary crontab file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		_ = b.fs.Remove(tmpPath)
		return fmt.Errorf("failed to write temporary crontab file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = b.fs.Remove(tmpPath)
		return fmt.Errorf("failed to sync temporary crontab file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = b.fs.Remove(tmpPath)
		return fmt.Errorf("failed to close temporary crontab file: %w", err)
	}

	if err := b.fs.Chmod(tmpPath, 0644); err != nil {
		_ = b.fs.Remove(tmpPath)
		return fmt.Errorf("failed to set crontab file mode: %w", err)
	}

	if err := b.fs.Rename(tmpPath, b.path); err != nil {
		_ = b.fs.Remove(tmpPath)
		return fmt.Errorf("failed to replace crontab file: %w", err)
	}

	return nil
}
