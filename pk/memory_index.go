package pk

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"
	"sync"

	"github.com/hupe1980/pagedb/codec"
)

// ErrCorruptIndex is returned by Load when the page cannot be decoded.
// The index is left empty in that case.
var ErrCorruptIndex = errors.New("pk: corrupt primary index")

// MemoryIndex is an in-memory implementation of Index backed by a Go map.
// It is persisted as a codec-encoded object of key -> page id.
type MemoryIndex struct {
	mu sync.RWMutex
	m  map[string]uint32
}

var _ Index = (*MemoryIndex)(nil)

// NewMemoryIndex creates a new in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		m: make(map[string]uint32),
	}
}

// Lookup returns the page id for the given key.
func (idx *MemoryIndex) Lookup(key string) (uint32, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	id, ok := idx.m[key]
	return id, ok
}

// Upsert points key at pageID.
func (idx *MemoryIndex) Upsert(key string, pageID uint32) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.m[key] = pageID
}

// Delete removes key and reports whether it was present.
func (idx *MemoryIndex) Delete(key string) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	_, ok := idx.m[key]
	delete(idx.m, key)
	return ok
}

// Len returns the number of keys.
func (idx *MemoryIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.m)
}

// Keys returns all keys in lexicographic order.
func (idx *MemoryIndex) Keys() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return slices.Sorted(maps.Keys(idx.m))
}

// All iterates over a snapshot of the index in key order.
func (idx *MemoryIndex) All() iter.Seq2[string, uint32] {
	idx.mu.RLock()
	snap := maps.Clone(idx.m)
	idx.mu.RUnlock()

	return func(yield func(string, uint32) bool) {
		for _, k := range slices.Sorted(maps.Keys(snap)) {
			if !yield(k, snap[k]) {
				return
			}
		}
	}
}

// MaxPageID returns the largest page id referenced, or 0 when empty.
func (idx *MemoryIndex) MaxPageID() uint32 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var hi uint32
	for _, id := range idx.m {
		hi = max(hi, id)
	}
	return hi
}

// Marshal encodes the index with c. Keys are emitted in sorted order by
// both built-in codecs, so equal indexes produce equal bytes.
func (idx *MemoryIndex) Marshal(c codec.Codec) ([]byte, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	b, err := c.Marshal(idx.m)
	if err != nil {
		return nil, fmt.Errorf("pk: marshal: %w", err)
	}
	return b, nil
}

// Load replaces the index with the mapping decoded from data.
// Trailing zero padding is ignored. On failure the index is empty and
// ErrCorruptIndex is returned.
func (idx *MemoryIndex) Load(c codec.Codec, data []byte) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.m = make(map[string]uint32)

	data = bytes.TrimRight(data, "\x00")
	if len(data) == 0 {
		return nil
	}

	m := make(map[string]uint32)
	if err := c.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptIndex, err)
	}
	idx.m = m
	return nil
}
