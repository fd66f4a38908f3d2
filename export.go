package pagedb

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/pagedb/blobstore"
	"github.com/hupe1980/pagedb/codec"
	"github.com/hupe1980/pagedb/compress"
	"github.com/hupe1980/pagedb/document"
)

// snapshot encodes the readable records among keys as one pretty-printed
// object of key -> document. Unreadable records are left out.
func (db *DB) snapshot(keys []string) ([]byte, int, error) {
	doc := make(document.Document, len(keys))
	for _, key := range keys {
		if v, ok := db.Get(key); ok {
			doc[key] = v
		}
	}

	b, err := codec.MarshalPretty(db.opts.codec, document.Object(doc))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return b, len(doc), nil
}

// writeFile replaces the file at path atomically.
func writeFile(ctx context.Context, path string, data []byte) error {
	store := blobstore.NewLocalStore(filepath.Dir(path))
	return store.Put(ctx, filepath.Base(path), data)
}

// ExportQuery writes the documents of Query(field, v) to path as a
// pretty-printed JSON object of key -> document.
func (db *DB) ExportQuery(field string, v document.Value, path string) (err error) {
	ctx := context.Background()
	n := 0
	defer func() { db.opts.logger.LogExport(ctx, path, n, err) }()

	data, n, err := db.snapshot(db.Query(field, v))
	if err != nil {
		return err
	}
	return writeFile(ctx, path, data)
}

// ExportToFile writes every document to path as a pretty-printed JSON
// object of key -> document.
func (db *DB) ExportToFile(path string) (err error) {
	ctx := context.Background()
	n := 0
	defer func() { db.opts.logger.LogExport(ctx, path, n, err) }()

	data, n, err := db.snapshot(db.Keys())
	if err != nil {
		return err
	}
	return writeFile(ctx, path, data)
}

// ShowAll prints every record as "key => document", one per line, in key
// order. A record that cannot be read is printed with its error and the
// listing continues.
func (db *DB) ShowAll(w io.Writer) error {
	for _, key := range db.Keys() {
		v, err := db.GetStrict(key)
		if err != nil {
			if _, werr := fmt.Fprintf(w, "%s => <error: %v>\n", key, err); werr != nil {
				return werr
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%s => %s\n", key, v); err != nil {
			return err
		}
	}
	return nil
}

// Backup exports every document, compresses the export with c and uploads
// it as name to all stores concurrently. It fails if any upload fails.
func (db *DB) Backup(ctx context.Context, name string, c compress.Type, stores ...blobstore.Store) (err error) {
	n := 0
	defer func() { db.opts.logger.LogExport(ctx, "backup:"+name, n, err) }()

	if len(stores) == 0 {
		return fmt.Errorf("backup %s: no stores", name)
	}

	data, n, err := db.snapshot(db.Keys())
	if err != nil {
		return err
	}
	data, err = compress.Compress(data, c)
	if err != nil {
		return fmt.Errorf("backup %s: %w", name, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, store := range stores {
		g.Go(func() error {
			return store.Put(gctx, name, data)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("backup %s: %w", name, err)
	}
	return nil
}

// Restore reads the export name from store, decompresses it with c and puts
// every document it holds. It returns the number of documents restored.
// Restore does not flush.
func (db *DB) Restore(ctx context.Context, store blobstore.Store, name string, c compress.Type) (n int, err error) {
	defer func() { db.opts.logger.LogExport(ctx, "restore:"+name, n, err) }()

	data, err := store.Get(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("restore %s: %w", name, err)
	}
	data, err = compress.Decompress(data, c)
	if err != nil {
		return 0, fmt.Errorf("restore %s: %w", name, err)
	}

	var v document.Value
	if err := db.opts.codec.Unmarshal(data, &v); err != nil {
		return 0, fmt.Errorf("restore %s: %w: %w", name, ErrCorruptRecord, err)
	}
	entries, ok := v.AsObject()
	if !ok {
		return 0, fmt.Errorf("restore %s: %w: export is not an object", name, ErrCorruptRecord)
	}

	for _, key := range entries.Keys() {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if err := db.Put(key, entries[key]); err != nil {
			return n, fmt.Errorf("restore %s: %q: %w", name, key, err)
		}
		n++
	}
	return n, nil
}
