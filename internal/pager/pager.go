package pager

import (
	"errors"
	"fmt"

	"github.com/hupe1980/pagedb/internal/mmap"
)

const (
	// PageSize is the size of a page in bytes.
	PageSize = 4096
	// MinPages is the number of pages a fresh file is pre-allocated to.
	MinPages = 100
)

var (
	// ErrPageOutOfBounds is returned when a page range exceeds the mapped region.
	ErrPageOutOfBounds = errors.New("pager: page out of bounds")
	// ErrPageOverflow is returned when data written to a page exceeds PageSize.
	ErrPageOverflow = errors.New("pager: data too large for page")
)

// PageID identifies a page within the file.
type PageID uint32

// Offset returns the byte offset of the page within the file.
func (id PageID) Offset() int64 {
	return int64(id) * PageSize
}

// Options configures a Pager.
type Options struct {
	// MinPages is the minimum number of pages the file is extended to at open.
	MinPages int
}

// DefaultOptions returns the default pager options.
func DefaultOptions() Options {
	return Options{MinPages: MinPages}
}

// Pager owns the mapped byte region and the open file handle.
type Pager struct {
	m    *mmap.Mapping
	opts Options
}

// Open opens or creates the file at path, ensures it holds at least
// opts.MinPages pages and maps it read-write.
func Open(path string, optFns ...func(*Options)) (*Pager, error) {
	opts := DefaultOptions()
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	if opts.MinPages < 1 {
		opts.MinPages = 1
	}

	m, err := mmap.OpenFile(path, opts.MinPages*PageSize)
	if err != nil {
		return nil, fmt.Errorf("pager: open %s: %w", path, err)
	}

	return &Pager{m: m, opts: opts}, nil
}

// NumPages returns the number of whole pages currently mapped.
func (p *Pager) NumPages() int {
	return p.m.Size() / PageSize
}

// Path returns the path of the backing file.
func (p *Pager) Path() string {
	return p.m.Name()
}

// ReadPage returns a PageSize view of page id. The view aliases the mapping
// and is valid until the next Grow or Close.
func (p *Pager) ReadPage(id PageID) ([]byte, error) {
	off := id.Offset()
	if off+PageSize > int64(p.m.Size()) {
		return nil, fmt.Errorf("%w: page %d (mapped pages %d)", ErrPageOutOfBounds, id, p.NumPages())
	}

	region, err := p.m.Region(int(off), PageSize)
	if err != nil {
		if errors.Is(err, mmap.ErrOutOfBounds) {
			return nil, fmt.Errorf("%w: page %d", ErrPageOutOfBounds, id)
		}
		return nil, err
	}
	return region.Bytes(), nil
}

// WritePage copies data into page id. Bytes beyond len(data) are left untouched.
func (p *Pager) WritePage(id PageID, data []byte) error {
	if len(data) > PageSize {
		return fmt.Errorf("%w: %d bytes", ErrPageOverflow, len(data))
	}

	off := id.Offset()
	if off+int64(len(data)) > int64(p.m.Size()) {
		return fmt.Errorf("%w: page %d (mapped pages %d)", ErrPageOutOfBounds, id, p.NumPages())
	}

	if _, err := p.m.WriteAt(data, off); err != nil {
		if errors.Is(err, mmap.ErrOutOfBounds) {
			return fmt.Errorf("%w: page %d", ErrPageOutOfBounds, id)
		}
		return err
	}
	return nil
}

// Grow makes sure at least pages pages are mapped. The file grows by doubling
// the current page count until the request fits.
func (p *Pager) Grow(pages int) error {
	current := p.NumPages()
	if pages <= current {
		return nil
	}

	target := max(current, p.opts.MinPages)
	for target < pages {
		target *= 2
	}

	if err := p.m.Grow(target * PageSize); err != nil {
		return fmt.Errorf("pager: grow to %d pages: %w", target, err)
	}
	return nil
}

// Advise hints the kernel about the expected access pattern of the file.
func (p *Pager) Advise(pattern mmap.AccessPattern) error {
	return p.m.Advise(pattern)
}

// Flush forces all writes since the last flush to the backing file.
func (p *Pager) Flush() error {
	if err := p.m.Flush(); err != nil {
		return fmt.Errorf("pager: flush: %w", err)
	}
	return nil
}

// Close unmaps the file and closes it without flushing.
func (p *Pager) Close() error {
	return p.m.Close()
}
