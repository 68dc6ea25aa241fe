package utils

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// MappedFile holds file bytes, mmap-backed where the platform allows it.
type MappedFile struct {
	Data []byte
	mmap []byte
}

// OpenMapped reads a whole file, preferring a read-only mmap over heap
// allocation. The caller must Close the result when done with Data.
func OpenMapped(path string) (*MappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if stat.Size() == 0 {
		return &MappedFile{}, nil
	}

	if mapped, merr := unix.Mmap(int(f.Fd()), 0, int(stat.Size()), unix.PROT_READ, unix.MAP_SHARED); merr == nil {
		return &MappedFile{Data: mapped, mmap: mapped}, nil
	}

	// Fallback: read into heap if mmap fails
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return &MappedFile{Data: buf}, nil
}

// Close releases the mapping, if any. Data must not be used afterwards.
func (m *MappedFile) Close() error {
	if m.mmap != nil {
		err := unix.Munmap(m.mmap)
		m.mmap = nil
		m.Data = nil
		return err
	}
	m.Data = nil
	return nil
}
