// Package pager implements the page store: fixed-size pages addressed by
// numeric id over a single memory-mapped file.
//
// Page n occupies bytes [n*PageSize, (n+1)*PageSize) of the file. Reads return
// views into the mapping and observe unflushed writes. Nothing is durable
// until Flush returns.
package pager
