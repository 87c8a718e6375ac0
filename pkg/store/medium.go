package store

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Memory is a RAM-backed medium, erased on creation.
type Memory struct {
	mu   sync.RWMutex
	data []byte
}

var _ Medium = (*Memory)(nil)

// NewMemory creates an erased medium of size bytes.
func NewMemory(size int) *Memory {
	data := make([]byte, size)
	for i := range data {
		data[i] = Erased
	}
	return &Memory{data: data}
}

// Size returns the medium size in bytes.
func (m *Memory) Size() int64 {
	return int64(len(m.data))
}

// ReadAt implements io.ReaderAt.
func (m *Memory) ReadAt(p []byte, off int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if off < 0 || off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt implements io.WriterAt. Writes past the end are rejected.
func (m *Memory) WriteAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if off < 0 || off+int64(len(p)) > int64(len(m.data)) {
		return 0, fmt.Errorf("write of %d bytes at %d exceeds medium size %d", len(p), off, len(m.data))
	}
	return copy(m.data[off:], p), nil
}

// Bytes returns a copy of the medium contents.
func (m *Memory) Bytes() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out
}

// File is a fixed-size medium backed by a host file. Every write is synced.
type File struct {
	f    *os.File
	size int64
}

var _ Medium = (*File)(nil)

// OpenFile opens path as a medium of size bytes, creating it erased if it does not exist.
// An existing file is padded or truncated to size.
func OpenFile(path string, size int64) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage file %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat storage file %s: %w", path, err)
	}

	if cur := info.Size(); cur < size {
		pad := make([]byte, size-cur)
		for i := range pad {
			pad[i] = Erased
		}
		if _, err := f.WriteAt(pad, cur); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to initialise storage file %s: %w", path, err)
		}
	} else if cur > size {
		if err := f.Truncate(size); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to resize storage file %s: %w", path, err)
		}
	}

	return &File{f: f, size: size}, nil
}

// Size returns the medium size in bytes.
func (m *File) Size() int64 {
	return m.size
}

// ReadAt implements io.ReaderAt.
func (m *File) ReadAt(p []byte, off int64) (int, error) {
	return m.f.ReadAt(p, off)
}

// WriteAt implements io.WriterAt and syncs the file.
func (m *File) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > m.size {
		return 0, fmt.Errorf("write of %d bytes at %d exceeds medium size %d", len(p), off, m.size)
	}
	n, err := m.f.WriteAt(p, off)
	if err != nil {
		return n, err
	}
	return n, m.f.Sync()
}

// Close closes the underlying file.
func (m *File) Close() error {
	return m.f.Close()
}
