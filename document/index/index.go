// Package index implements the in-memory secondary index: for every
// top-level field of a stored object it maps the field value to the set of
// keys holding it.
//
// Posting lists are roaring bitmaps of page ids. Every put allocates a fresh
// page, so a page id names exactly one key and a reverse map resolves
// bitmap members back to keys.
package index

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/pagedb/document"
)

// InvertedIndex accelerates equality and in queries.
//
// Supported operators:
// - OpEqual
// - OpIn (array of Values)
//
// Other operators fall back to scanning + evaluating document.FilterSet.
type InvertedIndex struct {
	mu sync.RWMutex

	// field -> valueKey -> page ids
	fields map[string]map[string]*roaring.Bitmap
	// page id -> key
	keys map[uint32]string
}

// New returns an empty index.
func New() *InvertedIndex {
	return &InvertedIndex{
		fields: make(map[string]map[string]*roaring.Bitmap),
		keys:   make(map[uint32]string),
	}
}

// Add indexes every top-level field of v under key stored at pageID.
// Values that are not objects have no fields and are not indexed.
func (ix *InvertedIndex) Add(key string, pageID uint32, v document.Value) {
	doc, ok := v.AsObject()
	if ix == nil || !ok {
		return
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.addLocked(key, pageID, doc)
}

// Remove drops the postings of v for pageID. Buckets left empty are kept.
func (ix *InvertedIndex) Remove(pageID uint32, v document.Value) {
	doc, ok := v.AsObject()
	if ix == nil || !ok {
		return
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeLocked(pageID, doc)
}

// Update moves key from its old document (at oldPage) to newDoc (at newPage).
func (ix *InvertedIndex) Update(key string, oldPage uint32, oldDoc document.Value, newPage uint32, newDoc document.Value) {
	if ix == nil {
		return
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if doc, ok := oldDoc.AsObject(); ok {
		ix.removeLocked(oldPage, doc)
	}
	if doc, ok := newDoc.AsObject(); ok {
		ix.addLocked(key, newPage, doc)
	}
}

func (ix *InvertedIndex) addLocked(key string, pageID uint32, doc document.Document) {
	ix.keys[pageID] = key
	for field, v := range doc {
		vm, ok := ix.fields[field]
		if !ok {
			vm = make(map[string]*roaring.Bitmap)
			ix.fields[field] = vm
		}
		vk := v.Key()
		bm, ok := vm[vk]
		if !ok {
			bm = roaring.New()
			vm[vk] = bm
		}
		bm.Add(pageID)
	}
}

func (ix *InvertedIndex) removeLocked(pageID uint32, doc document.Document) {
	for field, v := range doc {
		vm, ok := ix.fields[field]
		if !ok {
			continue
		}
		if bm, ok := vm[v.Key()]; ok {
			bm.Remove(pageID)
		}
	}
	delete(ix.keys, pageID)
}

// Lookup returns the keys whose document has field equal to v in page id
// order, which is the order of their most recent put.
func (ix *InvertedIndex) Lookup(field string, v document.Value) []string {
	if ix == nil {
		return nil
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.resolveLocked(ix.postingsLocked(field, v))
}

// Compile attempts to answer fs with bitmap operations alone.
// If fs uses an operator the index cannot serve, ok=false.
func (ix *InvertedIndex) Compile(fs *document.FilterSet) (bm *roaring.Bitmap, ok bool) {
	if ix == nil || !fs.Indexable() {
		return nil, false
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var result *roaring.Bitmap
	for _, f := range fs.Filters {
		var fbm *roaring.Bitmap
		switch f.Operator {
		case document.OpEqual:
			fbm = ix.postingsLocked(f.Key, f.Value)
		case document.OpIn:
			arr, _ := f.Value.AsArray()
			parts := make([]*roaring.Bitmap, 0, len(arr))
			for _, vv := range arr {
				if p := ix.postingsLocked(f.Key, vv); p != nil {
					parts = append(parts, p)
				}
			}
			fbm = roaring.FastOr(parts...)
		default:
			return nil, false
		}

		if fbm == nil || fbm.IsEmpty() {
			// Key/value doesn't exist; fast path to empty.
			return roaring.New(), true
		}
		if result == nil {
			result = fbm.Clone()
		} else {
			result.And(fbm)
		}
		if result.IsEmpty() {
			return result, true
		}
	}

	return result, true
}

// Match returns the keys selected by fs in page id order. See Compile.
func (ix *InvertedIndex) Match(fs *document.FilterSet) ([]string, bool) {
	bm, ok := ix.Compile(fs)
	if !ok {
		return nil, false
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.resolveLocked(bm), true
}

func (ix *InvertedIndex) postingsLocked(field string, v document.Value) *roaring.Bitmap {
	vm, ok := ix.fields[field]
	if !ok {
		return nil
	}
	return vm[v.Key()]
}

func (ix *InvertedIndex) resolveLocked(bm *roaring.Bitmap) []string {
	if bm == nil || bm.IsEmpty() {
		return []string{}
	}
	out := make([]string, 0, bm.GetCardinality())
	seen := make(map[string]struct{}, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		key, ok := ix.keys[it.Next()]
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

// Reset drops every posting.
func (ix *InvertedIndex) Reset() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.fields = make(map[string]map[string]*roaring.Bitmap)
	ix.keys = make(map[uint32]string)
}

// Stats describes the index shape.
type Stats struct {
	Fields  int
	Buckets int
	Entries uint64
}

// Stats returns the number of indexed fields, value buckets and postings.
func (ix *InvertedIndex) Stats() Stats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	s := Stats{Fields: len(ix.fields)}
	for _, vm := range ix.fields {
		s.Buckets += len(vm)
		for _, bm := range vm {
			s.Entries += bm.GetCardinality()
		}
	}
	return s
}
