package compress

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompress_RoundTrip(t *testing.T) {
	compressible := bytes.Repeat([]byte(`{"age":30,"city":"NY"},`), 200)
	random := make([]byte, 1024)
	_, err := rand.Read(random)
	require.NoError(t, err)

	for _, typ := range []Type{None, LZ4, ZSTD} {
		t.Run(typ.String(), func(t *testing.T) {
			for name, data := range map[string][]byte{
				"compressible": compressible,
				"random":       random,
				"empty":        {},
			} {
				t.Run(name, func(t *testing.T) {
					enc, err := Compress(data, typ)
					require.NoError(t, err)

					dec, err := Decompress(enc, typ)
					require.NoError(t, err)
					assert.Equal(t, len(data), len(dec))
					assert.True(t, bytes.Equal(data, dec))
				})
			}
		})
	}
}

func TestCompress_Shrinks(t *testing.T) {
	data := bytes.Repeat([]byte("pagedb"), 1000)

	for _, typ := range []Type{LZ4, ZSTD} {
		enc, err := Compress(data, typ)
		require.NoError(t, err)
		assert.Less(t, len(enc), len(data), typ.String())
	}
}

func TestDecompress_Corrupt(t *testing.T) {
	_, err := Decompress([]byte{1, 2, 3}, LZ4)
	assert.ErrorIs(t, err, ErrCorrupt)

	enc, err := Compress(bytes.Repeat([]byte("a"), 512), ZSTD)
	require.NoError(t, err)
	_, err = Decompress(enc[:len(enc)-2], ZSTD)
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = Compress([]byte("x"), Type(9))
	assert.Error(t, err)
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want Type
	}{
		{"", None},
		{"none", None},
		{"LZ4", LZ4},
		{"zstd", ZSTD},
		{" zst ", ZSTD},
	}
	for _, tt := range tests {
		got, err := ParseType(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseType("gzip")
	assert.Error(t, err)

	assert.Equal(t, ".zst", ZSTD.Ext())
	assert.Equal(t, ".lz4", LZ4.Ext())
	assert.Equal(t, "", None.Ext())
	assert.Equal(t, "unknown(9)", Type(9).String())
}
