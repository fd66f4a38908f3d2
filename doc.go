// Package pagedb provides an embedded, single-file document store for Go.
//
// Records live in fixed 4096-byte pages of a memory-mapped file. Page 0 holds
// the primary index (key -> page id); every other page holds exactly one
// length-prefixed JSON document. An in-memory secondary index maps every
// top-level field value to the keys holding it and is rebuilt on open.
//
// # Quick Start
//
//	db, err := pagedb.Open("users.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	_ = db.Put("user:1", document.MustFromAny(map[string]any{"age": 30, "city": "NY"}))
//	_ = db.Flush() // durable after this
//
//	v, ok := db.Get("user:1")
//	keys := db.Query("city", document.String("NY"))
//
// # Durability Model
//
// Nothing is flushed implicitly. Flush writes the primary index to page 0
// and syncs the mapping; mutations since the last Flush are lost if the
// process dies. Close does not flush.
//
// # Storage Model
//
// Every Put writes a fresh page. The page previously held by the key is
// never reused, so the file only grows. Stats reports the number of such
// leaked pages.
//
// # Concurrency
//
// A DB is safe for concurrent use by multiple goroutines within one process.
// Opening the same file from several processes is not supported.
package pagedb
