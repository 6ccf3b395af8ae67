package mocks

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/user/timecut/pkg/ports"
)

// FileSystem is an in-memory implementation of ports.FileSystem.
type FileSystem struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]bool

	WriteFileFunc func(path string, data []byte) error
	EnsureDirFunc func(filePath string) error
	RemoveDirFunc func(dir string) error

	// Recorded calls for verification
	RemoveDirCalls []string
}

// NewFileSystem creates a new mock FileSystem.
func NewFileSystem() *FileSystem {
	return &FileSystem{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
}

func (m *FileSystem) WriteFile(path string, data []byte) error {
	if m.WriteFileFunc != nil {
		return m.WriteFileFunc(path, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if dir := filepath.Dir(path); dir != "." && !m.dirs[dir] {
		return fmt.Errorf("directory not found: %s", dir)
	}
	m.files[path] = data
	return nil
}

func (m *FileSystem) MkdirAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for p := filepath.Clean(path); p != "." && p != string(filepath.Separator); p = filepath.Dir(p) {
		m.dirs[p] = true
	}
	return nil
}

func (m *FileSystem) Exists(path string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.files[path]; ok {
		return true, nil
	}
	return m.dirs[path], nil
}

func (m *FileSystem) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
	delete(m.dirs, path)
	return nil
}

func (m *FileSystem) EnsureDir(filePath string) error {
	if m.EnsureDirFunc != nil {
		return m.EnsureDirFunc(filePath)
	}
	dir := filepath.Dir(filePath)
	if dir == "." {
		return nil
	}
	return m.MkdirAll(dir)
}

func (m *FileSystem) RemoveDir(dir string) error {
	m.mu.Lock()
	m.RemoveDirCalls = append(m.RemoveDirCalls, dir)
	m.mu.Unlock()
	if m.RemoveDirFunc != nil {
		return m.RemoveDirFunc(dir)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.dirs[dir] {
		return fmt.Errorf("directory not found: %s", dir)
	}
	prefix := dir + string(filepath.Separator)
	for path := range m.files {
		if strings.HasPrefix(path, prefix) {
			delete(m.files, path)
		}
	}
	delete(m.dirs, dir)
	return nil
}

// Files returns the paths of all files below dir (for test verification).
func (m *FileSystem) Files(dir string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	prefix := dir + string(filepath.Separator)
	var paths []string
	for path := range m.files {
		if strings.HasPrefix(path, prefix) {
			paths = append(paths, path)
		}
	}
	return paths
}

var _ ports.FileSystem = (*FileSystem)(nil)
