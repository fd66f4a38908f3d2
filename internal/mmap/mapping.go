package mmap

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
)

// Mapping represents a writable memory-mapped file.
// It owns the underlying byte slice and the file handle.
type Mapping struct {
	f      *os.File
	data   []byte
	closed atomic.Bool
	// unmap is the platform-specific function to unmap the memory.
	unmap func([]byte) error
}

// OpenFile opens or creates the file at path, extends it to at least minSize
// bytes (it never shrinks) and maps the whole file read-write.
func OpenFile(path string, minSize int) (*Mapping, error) {
	if minSize < 0 {
		return nil, ErrInvalidSize
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	size := fi.Size()
	if size < int64(minSize) {
		if err := f.Truncate(int64(minSize)); err != nil {
			f.Close()
			return nil, fmt.Errorf("mmap: resize %s: %w", path, err)
		}
		size = int64(minSize)
	}
	if size > int64(maxInt) {
		f.Close()
		return nil, ErrInvalidSize
	}

	m := &Mapping{f: f}
	if err := m.mapLocked(int(size)); err != nil {
		f.Close()
		return nil, err
	}

	return m, nil
}

const maxInt = int(^uint(0) >> 1)

func (m *Mapping) mapLocked(size int) error {
	if size == 0 {
		m.data, m.unmap = nil, nil
		return nil
	}
	data, unmapFunc, err := osMap(m.f, size)
	if err != nil {
		return err
	}
	m.data = data
	m.unmap = unmapFunc
	return nil
}

func (m *Mapping) unmapLocked() error {
	if m.unmap == nil || m.data == nil {
		return nil
	}
	err := m.unmap(m.data)
	m.data, m.unmap = nil, nil
	return err
}

// Close unmaps the memory and closes the file. It is idempotent.
// Close does not flush; call Flush first when durability is required.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil // Already closed
	}
	err := m.unmapLocked()
	if m.f != nil {
		if closeErr := m.f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		m.f = nil
	}
	return err
}

// Bytes returns the underlying read-write byte slice.
// Warning: The slice is valid only until Grow or Close is called.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the size of the mapping in bytes.
func (m *Mapping) Size() int {
	if m.closed.Load() {
		return 0
	}
	return len(m.data)
}

// Name returns the path of the mapped file.
func (m *Mapping) Name() string {
	if m.f == nil {
		return ""
	}
	return m.f.Name()
}

// Flush synchronously writes all modified pages of the mapping back to the file.
func (m *Mapping) Flush() error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.data == nil {
		return nil
	}
	return osFlush(m.f, m.data)
}

// Grow extends the backing file to size bytes and re-maps it.
// Growing to a size not larger than the current mapping is a no-op.
// Writes made through the previous mapping are preserved: shared mappings
// write through to the file, so unmapping never discards them.
func (m *Mapping) Grow(size int) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if size < 0 {
		return ErrInvalidSize
	}
	if size <= len(m.data) {
		return nil
	}

	if err := m.unmapLocked(); err != nil {
		return err
	}
	if err := m.f.Truncate(int64(size)); err != nil {
		return fmt.Errorf("mmap: resize %s: %w", m.f.Name(), err)
	}
	return m.mapLocked(size)
}

// Advise provides hints to the kernel about how the memory will be accessed.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.data == nil {
		return nil
	}
	return osAdvise(m.data, pattern)
}

// ReadAt implements io.ReaderAt.
func (m *Mapping) ReadAt(p []byte, off int64) (n int, err error) {
	if m.closed.Load() {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, ErrInvalidOffset
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n = copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt implements io.WriterAt. Writes never extend the mapping.
func (m *Mapping) WriteAt(p []byte, off int64) (n int, err error) {
	if m.closed.Load() {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, ErrInvalidOffset
	}
	if off+int64(len(p)) > int64(len(m.data)) {
		return 0, ErrOutOfBounds
	}
	return copy(m.data[off:], p), nil
}
