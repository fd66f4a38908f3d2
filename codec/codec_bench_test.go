package codec_test

import (
	"strconv"
	"testing"

	"github.com/hupe1980/pagedb/codec"
	"github.com/hupe1980/pagedb/document"
)

type benchChild struct {
	K string `json:"k"`
	V int64  `json:"v"`
}

type benchPayload struct {
	ID       uint64            `json:"id"`
	Title    string            `json:"title"`
	Score    float64           `json:"score"`
	Tags     []string          `json:"tags"`
	Attrs    map[string]string `json:"attrs"`
	Flags    []bool            `json:"flags"`
	Children []benchChild      `json:"children"`
}

func benchmarkCodecMarshal(b *testing.B, c codec.Codec, v any) {
	b.Helper()
	b.ReportAllocs()

	warm, err := c.Marshal(v)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(warm)))

	var sink []byte
	b.ResetTimer()
	for b.Loop() {
		out, err := c.Marshal(v)
		if err != nil {
			b.Fatal(err)
		}
		sink = out
	}
	_ = sink
}

func benchmarkCodecUnmarshal[T any](b *testing.B, c codec.Codec, data []byte, dst *T) {
	b.Helper()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	var v T
	b.ResetTimer()
	for b.Loop() {
		if err := c.Unmarshal(data, &v); err != nil {
			b.Fatal(err)
		}
	}
	if dst != nil {
		*dst = v
	}
}

func BenchmarkCodec_Marshal_Payload(b *testing.B) {
	payload := benchPayload{
		ID:    123456789,
		Title: "hello pagedb",
		Score: 0.12345,
		Tags:  []string{"a", "b", "c", "d", "e"},
		Attrs: map[string]string{
			"kind":  "bench",
			"owner": "hupe1980",
			"repo":  "pagedb",
			"lang":  "go",
		},
		Flags: []bool{true, false, true, true, false, false, true},
		Children: []benchChild{
			{K: "x", V: 1},
			{K: "y", V: 2},
			{K: "z", V: 3},
		},
	}

	b.Run("stdlib", func(b *testing.B) { benchmarkCodecMarshal(b, codec.JSON{}, payload) })
	b.Run("go-json", func(b *testing.B) { benchmarkCodecMarshal(b, codec.GoJSON{}, payload) })
}

func BenchmarkCodec_Unmarshal_Payload(b *testing.B) {
	payload := benchPayload{
		ID:    123456789,
		Title: "hello pagedb",
		Score: 0.12345,
		Tags:  []string{"a", "b", "c", "d", "e"},
		Attrs: map[string]string{
			"kind":  "bench",
			"owner": "hupe1980",
			"repo":  "pagedb",
			"lang":  "go",
		},
		Flags: []bool{true, false, true, true, false, false, true},
		Children: []benchChild{
			{K: "x", V: 1},
			{K: "y", V: 2},
			{K: "z", V: 3},
		},
	}

	jsonData := codec.MustMarshal(codec.JSON{}, payload)

	b.Run("stdlib", func(b *testing.B) {
		var sink benchPayload
		benchmarkCodecUnmarshal(b, codec.JSON{}, jsonData, &sink)
		_ = sink
	})
	b.Run("go-json", func(b *testing.B) {
		var sink benchPayload
		benchmarkCodecUnmarshal(b, codec.GoJSON{}, jsonData, &sink)
		_ = sink
	})
}

func benchDocument() document.Value {
	return document.Object(document.Document{
		"name":    document.String("Alice"),
		"age":     document.Int(30),
		"rating":  document.Float(4.75),
		"active":  document.Bool(true),
		"city":    document.String("NY"),
		"tags":    document.Array([]document.Value{document.String("a"), document.String("b"), document.String("c")}),
		"numbers": document.Array([]document.Value{document.Int(1), document.Int(2), document.Int(3), document.Int(4)}),
	})
}

func BenchmarkCodec_Marshal_Document(b *testing.B) {
	v := benchDocument()

	b.Run("stdlib", func(b *testing.B) { benchmarkCodecMarshal(b, codec.JSON{}, v) })
	b.Run("go-json", func(b *testing.B) { benchmarkCodecMarshal(b, codec.GoJSON{}, v) })
}

func BenchmarkCodec_Unmarshal_Document(b *testing.B) {
	jsonData := codec.MustMarshal(codec.JSON{}, benchDocument())

	b.Run("stdlib", func(b *testing.B) {
		var sink document.Value
		benchmarkCodecUnmarshal(b, codec.JSON{}, jsonData, &sink)
		_ = sink
	})
	b.Run("go-json", func(b *testing.B) {
		var sink document.Value
		benchmarkCodecUnmarshal(b, codec.GoJSON{}, jsonData, &sink)
		_ = sink
	})
}

func BenchmarkCodec_Marshal_PrimaryIndex(b *testing.B) {
	idx := make(map[string]uint32, 200)
	for i := range 200 {
		idx["user:"+strconv.Itoa(i)] = uint32(i + 1)
	}

	b.Run("stdlib", func(b *testing.B) { benchmarkCodecMarshal(b, codec.JSON{}, idx) })
	b.Run("go-json", func(b *testing.B) { benchmarkCodecMarshal(b, codec.GoJSON{}, idx) })
}
