// Package record encodes documents into single data pages.
//
// Layout of a data page:
//
//	[0:4)      uint32 little-endian payload length L
//	[4:4+L)    codec-encoded document
//	[4+L:4096) zero padding
package record

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/pagedb/codec"
	"github.com/hupe1980/pagedb/document"
	"github.com/hupe1980/pagedb/internal/pager"
)

// HeaderSize is the size of the length prefix.
const HeaderSize = 4

// MaxPayload is the largest encoded document that fits in one page.
const MaxPayload = pager.PageSize - HeaderSize

var (
	// ErrValueTooLarge is returned when the encoded record would exceed one page.
	ErrValueTooLarge = errors.New("record: value too large for page")
	// ErrCorruptRecord is returned when a page does not hold a decodable record.
	ErrCorruptRecord = errors.New("record: corrupt record")
)

// Encode marshals v with c and returns a full, zero-padded page.
func Encode(c codec.Codec, v document.Value) ([]byte, error) {
	payload, err := c.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("record: encode: %w", err)
	}
	return Frame(payload)
}

// Frame wraps an already encoded payload into a full page.
func Frame(payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrValueTooLarge, len(payload), MaxPayload)
	}
	page := make([]byte, pager.PageSize)
	binary.LittleEndian.PutUint32(page, uint32(len(payload)))
	copy(page[HeaderSize:], payload)
	return page, nil
}

// Payload returns the encoded document stored in page without decoding it.
// The returned slice aliases page.
func Payload(page []byte) ([]byte, error) {
	if len(page) < HeaderSize {
		return nil, fmt.Errorf("%w: short page (%d bytes)", ErrCorruptRecord, len(page))
	}
	n := binary.LittleEndian.Uint32(page)
	if n == 0 || uint64(n) > uint64(len(page)-HeaderSize) {
		return nil, fmt.Errorf("%w: length %d", ErrCorruptRecord, n)
	}
	return page[HeaderSize : HeaderSize+int(n)], nil
}

// Decode reads the record stored in page.
func Decode(c codec.Codec, page []byte) (document.Value, error) {
	payload, err := Payload(page)
	if err != nil {
		return document.Value{}, err
	}
	var v document.Value
	if err := c.Unmarshal(payload, &v); err != nil {
		return document.Value{}, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return v, nil
}
