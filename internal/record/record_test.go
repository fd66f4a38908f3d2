package record

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pagedb/codec"
	"github.com/hupe1980/pagedb/document"
	"github.com/hupe1980/pagedb/internal/pager"
)

func TestRecord_EncodeDecode(t *testing.T) {
	v := document.Object(document.Document{
		"name": document.String("Alice"),
		"age":  document.Int(30),
		"tags": document.Array([]document.Value{document.String("a")}),
	})

	for _, c := range []codec.Codec{codec.JSON{}, codec.GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			page, err := Encode(c, v)
			require.NoError(t, err)
			require.Len(t, page, pager.PageSize)

			want := `{"age":30,"name":"Alice","tags":["a"]}`
			assert.Equal(t, uint32(len(want)), binary.LittleEndian.Uint32(page))
			assert.Equal(t, want, string(page[HeaderSize:HeaderSize+len(want)]))
			assert.Equal(t, make([]byte, pager.PageSize-HeaderSize-len(want)), page[HeaderSize+len(want):])

			got, err := Decode(c, page)
			require.NoError(t, err)
			assert.True(t, v.Equal(got))
		})
	}
}

// stringOfEncodedLen returns a string value whose JSON encoding is n bytes.
func stringOfEncodedLen(n int) document.Value {
	return document.String(strings.Repeat("x", n-2))
}

func TestRecord_Boundary(t *testing.T) {
	page, err := Encode(codec.Default, stringOfEncodedLen(pager.PageSize-4))
	require.NoError(t, err)
	assert.Equal(t, uint32(pager.PageSize-4), binary.LittleEndian.Uint32(page))

	got, err := Decode(codec.Default, page)
	require.NoError(t, err)
	assert.Len(t, got.StringValue(), pager.PageSize-6)

	_, err = Encode(codec.Default, stringOfEncodedLen(pager.PageSize-3))
	assert.ErrorIs(t, err, ErrValueTooLarge)
}

func TestRecord_DecodeCorrupt(t *testing.T) {
	tests := []struct {
		name string
		page []byte
	}{
		{"short", []byte{1, 0}},
		{"zero length", make([]byte, pager.PageSize)},
		{"length past page", func() []byte {
			p := make([]byte, pager.PageSize)
			binary.LittleEndian.PutUint32(p, pager.PageSize)
			return p
		}()},
		{"bad payload", func() []byte {
			p, _ := Frame([]byte(`{"a":`))
			return p
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(codec.Default, tt.page)
			assert.ErrorIs(t, err, ErrCorruptRecord)
		})
	}
}

func TestRecord_Payload(t *testing.T) {
	page, err := Frame([]byte(`"hi"`))
	require.NoError(t, err)

	p, err := Payload(page)
	require.NoError(t, err)
	assert.Equal(t, []byte(`"hi"`), p)

	_, err = Frame(bytes.Repeat([]byte{'1'}, MaxPayload+1))
	assert.ErrorIs(t, err, ErrValueTooLarge)
}
