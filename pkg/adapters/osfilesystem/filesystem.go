// Package osfilesystem provides a filesystem implementation using the os package.
package osfilesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/user/timecut/pkg/ports"
)

// ErrNotFlat is returned by RemoveDir when the directory holds a subdirectory.
var ErrNotFlat = errors.New("osfilesystem: directory contains a subdirectory")

// FileSystem implements ports.FileSystem using the os package.
type FileSystem struct{}

// New creates a new FileSystem.
func New() *FileSystem {
	return &FileSystem{}
}

// WriteFile writes data to a file. The parent directory must exist.
func (fs *FileSystem) WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

// MkdirAll creates a directory and all parent directories.
func (fs *FileSystem) MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

// Exists checks if a file or directory exists.
func (fs *FileSystem) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Remove deletes a file or empty directory.
func (fs *FileSystem) Remove(path string) error {
	return os.Remove(path)
}

// EnsureDir creates the missing ancestors of filePath one component at a
// time, starting from the outermost.
func (fs *FileSystem) EnsureDir(filePath string) error {
	dir := filepath.Dir(filePath)
	if dir == "." || dir == "" {
		return nil
	}

	volume := filepath.VolumeName(dir)
	current := volume
	parts := strings.Split(dir[len(volume):], string(filepath.Separator))
	for i, part := range parts {
		if part == "" {
			if i == 0 {
				current += string(filepath.Separator)
			}
			continue
		}
		current = filepath.Join(current, part)

		info, err := os.Stat(current)
		if err == nil {
			if !info.IsDir() {
				return fmt.Errorf("create directory %s: not a directory", current)
			}
			continue
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("create directory %s: %w", current, err)
		}
		if err := os.Mkdir(current, 0755); err != nil && !os.IsExist(err) {
			return fmt.Errorf("create directory %s: %w", current, err)
		}
	}
	return nil
}

// RemoveDir deletes the files directly inside dir, then dir itself.
func (fs *FileSystem) RemoveDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			return fmt.Errorf("%w: %s", ErrNotFlat, filepath.Join(dir, entry.Name()))
		}
	}
	for _, entry := range entries {
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("remove frame: %w", err)
		}
	}
	if err := os.Remove(dir); err != nil {
		return fmt.Errorf("remove directory: %w", err)
	}
	return nil
}

// Ensure FileSystem implements ports.FileSystem
var _ ports.FileSystem = (*FileSystem)(nil)
