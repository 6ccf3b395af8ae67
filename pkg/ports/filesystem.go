package ports

// FileSystem abstracts file system operations.
type FileSystem interface {
	// WriteFile writes data to a file, creating it if necessary.
	WriteFile(path string, data []byte) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Exists checks if a file or directory exists.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory.
	Remove(path string) error

	// EnsureDir creates every missing ancestor directory of filePath,
	// outermost first. Existing directories are left alone.
	EnsureDir(filePath string) error

	// RemoveDir deletes every file directly inside dir and then dir itself.
	// It fails without deleting anything when dir holds a subdirectory.
	RemoveDir(dir string) error
}
