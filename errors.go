package pagedb

import (
	"errors"
	"fmt"

	"github.com/hupe1980/pagedb/internal/pager"
	"github.com/hupe1980/pagedb/internal/record"
)

var (
	// ErrKeyNotFound is returned when deleting or strictly reading a key that does not exist.
	ErrKeyNotFound = errors.New("key not found")
	// ErrValueTooLarge is returned when an encoded record or the primary index exceeds one page.
	ErrValueTooLarge = errors.New("value too large")
	// ErrPageOutOfBounds is returned when a page lies outside the mapped file.
	ErrPageOutOfBounds = errors.New("page out of bounds")
	// ErrCorruptRecord is returned by strict reads of a page that does not decode.
	ErrCorruptRecord = errors.New("corrupt record")
	// ErrEncoding is returned when a value cannot be encoded.
	ErrEncoding = errors.New("encoding error")
	// ErrClosed is returned when operating on a closed DB.
	ErrClosed = errors.New("db is closed")
)

// ErrIO indicates a failure of the backing file: open, resize, map or flush.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrIO struct {
	Op    string
	Path  string
	cause error
}

func (e *ErrIO) Error() string {
	return fmt.Sprintf("io error: %s %s: %v", e.Op, e.Path, e.cause)
}

func (e *ErrIO) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, record.ErrValueTooLarge), errors.Is(err, pager.ErrPageOverflow):
		return fmt.Errorf("%w: %w", ErrValueTooLarge, err)
	case errors.Is(err, pager.ErrPageOutOfBounds):
		return fmt.Errorf("%w: %w", ErrPageOutOfBounds, err)
	case errors.Is(err, record.ErrCorruptRecord):
		return fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}

	return err
}
