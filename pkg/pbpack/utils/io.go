package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// AtomicFile writes a file through a temp path so the destination is never
// observed half-written, even if serialization fails partway.
type AtomicFile struct {
	path     string
	tempPath string
	file     *os.File
}

// NewAtomicFile creates a new atomic file writer.
func NewAtomicFile(path string) (*AtomicFile, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	tempPath := fmt.Sprintf("%s.tmp.%d", path, os.Getpid())
	file, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	return &AtomicFile{
		path:     path,
		tempPath: tempPath,
		file:     file,
	}, nil
}

// Write writes data to the temporary file.
func (af *AtomicFile) Write(p []byte) (n int, err error) {
	if af.file == nil {
		return 0, fmt.Errorf("file is closed")
	}
	return af.file.Write(p)
}

// Commit syncs and atomically renames the temporary file to the final path.
func (af *AtomicFile) Commit() error {
	if af.file == nil {
		return fmt.Errorf("file is closed")
	}

	if err := af.file.Sync(); err != nil {
		return fmt.Errorf("sync file: %w", err)
	}

	if err := af.file.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	af.file = nil

	if err := os.Rename(af.tempPath, af.path); err != nil {
		return fmt.Errorf("rename file: %w", err)
	}

	// Sync directory to ensure rename is persisted
	return SyncDir(filepath.Dir(af.path))
}

// Close ensures cleanup of resources. Committing first makes Close a no-op;
// otherwise the temp file is removed.
func (af *AtomicFile) Close() error {
	if af.file != nil {
		af.file.Close()
		af.file = nil
		os.Remove(af.tempPath)
	}
	return nil
}

// SyncDir syncs a directory to ensure file operations are persisted.
func SyncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()

	return d.Sync()
}
