package pagedb

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/hupe1980/pagedb/document"
	"github.com/hupe1980/pagedb/document/index"
	"github.com/hupe1980/pagedb/internal/mmap"
	"github.com/hupe1980/pagedb/internal/pager"
	"github.com/hupe1980/pagedb/internal/record"
	"github.com/hupe1980/pagedb/pk"
)

// indexPage is the page holding the serialized primary index.
const indexPage pager.PageID = 0

// DB is an open database file.
type DB struct {
	mu sync.RWMutex

	path      string
	pager     *pager.Pager
	primary   *pk.MemoryIndex
	secondary *index.InvertedIndex
	nextPage  uint32
	closed    bool

	opts options
}

// Entry is a key with its document.
type Entry struct {
	Key   string
	Value document.Value
}

// Open opens or creates the database file at path.
//
// A primary index page that does not decode is treated as empty, and records
// that cannot be read are left out of the secondary index. Open fails only
// when the file cannot be opened, resized or mapped.
func Open(path string, optFns ...Option) (*DB, error) {
	opts := applyOptions(optFns)
	ctx := context.Background()

	p, err := pager.Open(path, func(o *pager.Options) {
		o.MinPages = opts.minPages
	})
	if err != nil {
		err = &ErrIO{Op: "open", Path: path, cause: err}
		opts.logger.LogOpen(ctx, path, 0, 0, 0, err)
		return nil, err
	}
	_ = p.Advise(mmap.AccessRandom)

	db := &DB{
		path:      path,
		pager:     p,
		primary:   pk.NewMemoryIndex(),
		secondary: index.New(),
		opts:      opts,
	}

	page, err := p.ReadPage(indexPage)
	if err != nil {
		_ = p.Close()
		err = &ErrIO{Op: "map", Path: path, cause: err}
		opts.logger.LogOpen(ctx, path, 0, 0, 0, err)
		return nil, err
	}
	if err := db.primary.Load(opts.codec, page); err != nil {
		opts.logger.WarnContext(ctx, "primary index unreadable, starting empty",
			"path", path,
			"error", err,
		)
	}

	if db.primary.Len() > 0 {
		db.nextPage = db.primary.MaxPageID() + 1
	} else {
		db.nextPage = 1
	}

	skipped := db.rebuild(ctx)
	opts.logger.LogOpen(ctx, path, db.primary.Len(), db.secondary.Stats().Buckets, skipped, nil)

	return db, nil
}

// rebuild re-creates the secondary index from every reachable record and
// returns the number of records that could not be read.
func (db *DB) rebuild(ctx context.Context) int {
	db.secondary.Reset()

	skipped := 0
	for key, id := range db.primary.All() {
		v, err := db.readLocked(id)
		if err != nil {
			skipped++
			db.opts.logger.LogSkipped(ctx, key, id, err)
			continue
		}
		db.secondary.Add(key, id, v)
	}
	return skipped
}

// readLocked reads and decodes the record at page id.
func (db *DB) readLocked(id uint32) (document.Value, error) {
	page, err := db.pager.ReadPage(pager.PageID(id))
	if err != nil {
		return document.Value{}, translateError(err)
	}
	v, err := record.Decode(db.opts.codec, page)
	if err != nil {
		return document.Value{}, translateError(err)
	}
	return v, nil
}

// Path returns the path of the database file.
func (db *DB) Path() string {
	return db.path
}

// Put stores v under key, replacing any previous document.
//
// The record is written to a fresh page. An oversized value fails with
// ErrValueTooLarge before anything is modified.
func (db *DB) Put(key string, v document.Value) (err error) {
	start := time.Now()
	var id uint32
	defer func() {
		db.opts.metricsCollector.RecordPut(time.Since(start), err)
		db.opts.logger.LogPut(context.Background(), key, id, err)
	}()

	page, err := record.Encode(db.opts.codec, v)
	if err != nil {
		if errors.Is(err, record.ErrValueTooLarge) {
			return translateError(err)
		}
		return fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrClosed
	}

	id = db.nextPage
	if id == math.MaxUint32 {
		return fmt.Errorf("%w: page ids exhausted", ErrPageOutOfBounds)
	}
	if err := db.ensurePageLocked(id); err != nil {
		return err
	}

	if oldID, ok := db.primary.Lookup(key); ok {
		old, err := db.readLocked(oldID)
		if err == nil {
			db.secondary.Remove(oldID, old)
		} else {
			db.opts.logger.LogSkipped(context.Background(), key, oldID, err)
		}
	}

	if err := db.pager.WritePage(pager.PageID(id), page); err != nil {
		return translateError(err)
	}
	db.nextPage++

	db.primary.Upsert(key, id)
	db.secondary.Add(key, id, v)

	return nil
}

// PutAny converts v with document.FromAny and stores it under key.
func (db *DB) PutAny(key string, v any) error {
	dv, err := document.FromAny(v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return db.Put(key, dv)
}

// ensurePageLocked makes page id addressable, growing the file if allowed.
func (db *DB) ensurePageLocked(id uint32) error {
	need := int(id) + 1
	if need <= db.pager.NumPages() {
		return nil
	}
	if !db.opts.growth {
		return fmt.Errorf("%w: page %d (mapped pages %d)", ErrPageOutOfBounds, id, db.pager.NumPages())
	}
	if err := db.pager.Grow(need); err != nil {
		return &ErrIO{Op: "resize", Path: db.path, cause: err}
	}
	db.opts.logger.DebugContext(context.Background(), "file grown",
		"path", db.path,
		"pages", db.pager.NumPages(),
	)
	return nil
}

// Get returns the document stored under key. Unknown keys, pages out of
// range and records that fail to decode all report false.
// Use GetStrict to tell these apart.
func (db *DB) Get(key string) (document.Value, bool) {
	start := time.Now()

	v, err := db.GetStrict(key)
	if err != nil && !errors.Is(err, ErrKeyNotFound) && !errors.Is(err, ErrClosed) {
		db.opts.logger.WithKey(key).DebugContext(context.Background(), "get failed", "error", err)
	}

	found := err == nil
	db.opts.metricsCollector.RecordGet(time.Since(start), found)
	return v, found
}

// GetStrict returns the document stored under key or the reason it cannot:
// ErrKeyNotFound, ErrPageOutOfBounds or ErrCorruptRecord.
func (db *DB) GetStrict(key string) (document.Value, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.closed {
		return document.Value{}, ErrClosed
	}

	id, ok := db.primary.Lookup(key)
	if !ok {
		return document.Value{}, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return db.readLocked(id)
}

// GetField returns the named top-level field of the document under key.
func (db *DB) GetField(key, field string) (document.Value, bool) {
	v, ok := db.Get(key)
	if !ok {
		return document.Value{}, false
	}
	return v.Field(field)
}

// Has reports whether key is present in the primary index.
func (db *DB) Has(key string) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	_, ok := db.primary.Lookup(key)
	return ok
}

// Len returns the number of keys.
func (db *DB) Len() int {
	return db.primary.Len()
}

// Keys returns all keys in lexicographic order.
func (db *DB) Keys() []string {
	return db.primary.Keys()
}

// Delete removes key. It fails with ErrKeyNotFound if key is absent.
// The page that held the record is not reclaimed.
func (db *DB) Delete(key string) (err error) {
	start := time.Now()
	defer func() {
		db.opts.metricsCollector.RecordDelete(time.Since(start), err)
		db.opts.logger.LogDelete(context.Background(), key, err)
	}()

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrClosed
	}

	if id, ok := db.primary.Lookup(key); ok {
		old, err := db.readLocked(id)
		if err == nil {
			db.secondary.Remove(id, old)
		} else {
			db.opts.logger.LogSkipped(context.Background(), key, id, err)
		}
	}

	if !db.primary.Delete(key) {
		return fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return nil
}

func (db *DB) order(keys []string) []string {
	if db.opts.sortedResults {
		slices.Sort(keys)
	}
	return keys
}

// Query returns the keys whose document has field equal to v.
func (db *DB) Query(field string, v document.Value) []string {
	start := time.Now()
	keys := db.order(db.secondary.Lookup(field, v))

	db.opts.metricsCollector.RecordQuery(len(keys), true, time.Since(start))
	db.opts.logger.LogQuery(context.Background(), field, len(keys), true)
	return keys
}

// QueryPage returns at most limit keys of Query(field, v) after skipping
// offset of them. A negative limit means no limit; a negative offset is
// treated as zero.
func (db *DB) QueryPage(field string, v document.Value, limit, offset int) []string {
	keys := db.Query(field, v)
	offset = max(offset, 0)
	if offset >= len(keys) {
		return []string{}
	}
	keys = keys[offset:]
	if limit >= 0 && limit < len(keys) {
		keys = keys[:limit]
	}
	return keys
}

// QueryFilter returns the keys whose document matches every filter in fs.
// Sets made only of equality and in filters are answered by the secondary
// index; anything else falls back to a full scan.
func (db *DB) QueryFilter(fs *document.FilterSet) []string {
	start := time.Now()

	keys, indexed := db.secondary.Match(fs)
	if !indexed {
		keys = []string{}
		for _, e := range db.Filter(func(_ string, v document.Value) bool {
			return fs.MatchesValue(v)
		}) {
			keys = append(keys, e.Key)
		}
	}
	keys = db.order(keys)

	db.opts.metricsCollector.RecordQuery(len(keys), indexed, time.Since(start))
	db.opts.logger.LogQuery(context.Background(), "filter", len(keys), indexed)
	return keys
}

// All iterates over every readable record in key order. Records that cannot
// be read are skipped.
func (db *DB) All() iter.Seq2[string, document.Value] {
	return func(yield func(string, document.Value) bool) {
		for key := range db.primary.All() {
			v, ok := db.Get(key)
			if !ok {
				continue
			}
			if !yield(key, v) {
				return
			}
		}
	}
}

// Filter scans every record and returns those for which pred holds, in key
// order. It never uses the secondary index.
func (db *DB) Filter(pred func(key string, v document.Value) bool) []Entry {
	out := []Entry{}
	for key, v := range db.All() {
		if pred(key, v) {
			out = append(out, Entry{Key: key, Value: v})
		}
	}
	return out
}

// Stats describes the state of an open database.
type Stats struct {
	// Keys is the number of live keys.
	Keys int
	// NextPageID is the page the next put will write.
	NextPageID uint32
	// MappedPages is the number of pages in the file.
	MappedPages int
	// LeakedPages counts written pages no key refers to anymore.
	LeakedPages int
	// IndexedFields and IndexBuckets describe the secondary index.
	IndexedFields int
	IndexBuckets  int
}

// Stats returns a snapshot of database statistics.
func (db *DB) Stats() Stats {
	db.mu.RLock()
	defer db.mu.RUnlock()

	is := db.secondary.Stats()
	keys := db.primary.Len()
	return Stats{
		Keys:          keys,
		NextPageID:    db.nextPage,
		MappedPages:   db.pager.NumPages(),
		LeakedPages:   max(int(db.nextPage)-1-keys, 0),
		IndexedFields: is.Fields,
		IndexBuckets:  is.Buckets,
	}
}

// Flush writes the primary index to page 0 and syncs the file.
// The secondary index is not persisted.
func (db *DB) Flush() (err error) {
	start := time.Now()
	keys := db.primary.Len()
	defer func() {
		db.opts.metricsCollector.RecordFlush(time.Since(start), err)
		db.opts.logger.LogFlush(context.Background(), keys, err)
	}()

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrClosed
	}

	b, err := db.primary.Marshal(db.opts.codec)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	if len(b) > pager.PageSize {
		return fmt.Errorf("%w: primary index is %d bytes (max %d)", ErrValueTooLarge, len(b), pager.PageSize)
	}

	page := make([]byte, pager.PageSize)
	copy(page, b)
	if err := db.pager.WritePage(indexPage, page); err != nil {
		return translateError(err)
	}
	if err := db.pager.Flush(); err != nil {
		return &ErrIO{Op: "flush", Path: db.path, cause: err}
	}
	return nil
}

// Close unmaps and closes the file. It does not flush.
// Closing a closed DB is a no-op.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil
	}
	db.closed = true
	if err := db.pager.Close(); err != nil {
		return &ErrIO{Op: "close", Path: db.path, cause: err}
	}
	return nil
}
