// Package pk holds the primary index: the authoritative key -> page id map.
package pk

import "iter"

// Index is the primary index mapping key -> page id.
type Index interface {
	Lookup(key string) (uint32, bool)
	Upsert(key string, pageID uint32)
	Delete(key string) bool
	Len() int
	All() iter.Seq2[string, uint32]
}
