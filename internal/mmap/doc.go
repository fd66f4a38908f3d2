// Package mmap provides writable, shared memory-mapped file access.
//
// # Overview
//
// The page store keeps its whole backing file mapped read-write. Writes land
// directly in the mapping and become durable only after Flush, which forces
// dirty pages back to the file (msync on Unix, FlushViewOfFile on Windows).
//
// # Usage
//
//	m, err := mmap.OpenFile("data.db", 100*4096)
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()          // zero-copy, read-write
//	copy(data[4096:], payload)
//	err = m.Flush()            // durability barrier
//
//	// View into a specific region
//	region, _ := m.Region(offset, size)
//
//	// Extend the file and re-map it
//	err = m.Grow(200 * 4096)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_SHARED, msync(2), madvise(2)
//   - Windows: CreateFileMapping/MapViewOfFile (madvise is a no-op)
//
// # Ownership
//
// A Mapping exclusively owns both the mapped region and the open file handle.
// Slices returned by Bytes and Region.Bytes are invalidated by Grow and Close.
// Close is idempotent. Mapping is not safe for concurrent mutation.
package mmap
