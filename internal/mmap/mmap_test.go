package mmap

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMmap_OpenFileCreatesAndSizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")

	m, err := OpenFile(path, 8192)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 8192, m.Size())
	assert.Len(t, m.Bytes(), 8192)
	assert.Equal(t, path, m.Name())

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(8192), fi.Size())
}

func TestMmap_OpenFileNeverShrinks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.db")
	require.NoError(t, os.WriteFile(path, make([]byte, 16384), 0o644))

	m, err := OpenFile(path, 4096)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 16384, m.Size())
}

func TestMmap_WriteFlushReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rw.db")

	m, err := OpenFile(path, 4096)
	require.NoError(t, err)

	n, err := m.WriteAt([]byte("Hello, Mmap!"), 100)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	require.NoError(t, m.Flush())
	require.NoError(t, m.Close())

	m2, err := OpenFile(path, 4096)
	require.NoError(t, err)
	defer m2.Close()

	buf := make([]byte, 5)
	n, err = m2.ReadAt(buf, 107) // "Mmap!"
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "Mmap!", string(buf))

	// ReadAt out of bounds
	n, err = m2.ReadAt(buf, 10000)
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)

	// ReadAt partial
	buf3 := make([]byte, 10)
	n, err = m2.ReadAt(buf3, 4091)
	assert.Equal(t, 5, n)
	assert.Equal(t, io.EOF, err)

	// ReadAt negative offset
	_, err = m2.ReadAt(buf, -1)
	assert.Equal(t, ErrInvalidOffset, err)

	// WriteAt past the end never grows the mapping
	_, err = m2.WriteAt([]byte("xx"), 4095)
	assert.Equal(t, ErrOutOfBounds, err)
}

func TestMmap_GrowPreservesContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grow.db")

	m, err := OpenFile(path, 4096)
	require.NoError(t, err)
	defer m.Close()

	copy(m.Bytes()[10:], "persist")
	region, err := m.Region(10, 7)
	require.NoError(t, err)

	require.NoError(t, m.Grow(3*4096))
	assert.Equal(t, 3*4096, m.Size())
	assert.Equal(t, "persist", string(m.Bytes()[10:17]))
	assert.Equal(t, "persist", string(region.Bytes()))

	// Shrinking requests are ignored
	require.NoError(t, m.Grow(4096))
	assert.Equal(t, 3*4096, m.Size())

	assert.Equal(t, ErrInvalidSize, m.Grow(-1))
}

func TestMmap_RegionAndAdvise(t *testing.T) {
	m, err := OpenFile(filepath.Join(t.TempDir(), "region.db"), 4096)
	require.NoError(t, err)

	require.NoError(t, m.Advise(AccessRandom))

	r, err := m.Region(100, 200)
	require.NoError(t, err)
	assert.Len(t, r.Bytes(), 200)
	assert.Equal(t, 200, r.Len())
	require.NoError(t, r.Advise(AccessSequential))

	// Writes through a region alias the mapping
	copy(r.Bytes(), "abc")
	assert.Equal(t, "abc", string(m.Bytes()[100:103]))

	_, err = m.Region(-1, 0)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = m.Region(4000, 200)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	require.NoError(t, m.Close())

	assert.Nil(t, r.Bytes())
	assert.Error(t, r.Advise(AccessDefault))
}

func TestMmap_AfterClose(t *testing.T) {
	m, err := OpenFile(filepath.Join(t.TempDir(), "closed.db"), 4096)
	require.NoError(t, err)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close()) // idempotent

	assert.Nil(t, m.Bytes())
	assert.Equal(t, 0, m.Size())
	assert.ErrorIs(t, m.Advise(AccessRandom), ErrClosed)
	assert.ErrorIs(t, m.Flush(), ErrClosed)
	assert.ErrorIs(t, m.Grow(8192), ErrClosed)
	_, err = m.Region(0, 1)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMmap_InvalidSize(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "neg.db"), -1)
	assert.ErrorIs(t, err, ErrInvalidSize)
}
