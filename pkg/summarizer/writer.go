package summarizer

import (
	"fmt"

	"github.com/user/timecut/pkg/adapters/osfilesystem"
	"github.com/user/timecut/pkg/ports"
)

// Formatter converts a Summary to text.
type Formatter interface {
	Format(summary *Summary) string
}

// FormatFunc is a function adapter for the Formatter interface.
type FormatFunc func(summary *Summary) string

// Format implements the Formatter interface.
func (f FormatFunc) Format(summary *Summary) string {
	return f(summary)
}

// Writer saves formatted summaries.
type Writer struct {
	formatter Formatter
	fs        ports.FileSystem
}

// NewWriter creates a Writer on the operating system file system.
func NewWriter(formatter Formatter) *Writer {
	return NewWriterFS(formatter, osfilesystem.New())
}

// NewWriterFS creates a Writer on fs.
func NewWriterFS(formatter Formatter, fs ports.FileSystem) *Writer {
	return &Writer{formatter: formatter, fs: fs}
}

// Write formats summary and stores it at path, creating missing parent
// directories.
func (w *Writer) Write(path string, summary *Summary) error {
	if err := w.fs.EnsureDir(path); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := w.fs.WriteFile(path, []byte(w.formatter.Format(summary))); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
