package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pagedb/document"
)

func user(age int64, city string) document.Value {
	return document.Object(document.Document{"age": document.Int(age), "city": document.String(city)})
}

func TestInvertedIndex_Lookup(t *testing.T) {
	ix := New()
	ix.Add("user:1", 1, user(30, "NY"))
	ix.Add("user:2", 2, user(25, "LA"))
	ix.Add("user:3", 3, user(30, "NY"))

	assert.Equal(t, []string{"user:1", "user:3"}, ix.Lookup("age", document.Int(30)))
	assert.Equal(t, []string{"user:2"}, ix.Lookup("city", document.String("LA")))
	assert.Equal(t, []string{"user:1", "user:3"}, ix.Lookup("age", document.Float(30)))

	assert.Empty(t, ix.Lookup("age", document.Int(99)))
	assert.Empty(t, ix.Lookup("missing", document.Int(30)))
	assert.NotNil(t, ix.Lookup("missing", document.Int(30)))
}

func TestInvertedIndex_NonObjectsAreNotIndexed(t *testing.T) {
	ix := New()
	ix.Add("scalar", 1, document.Int(30))
	ix.Add("list", 2, document.Array([]document.Value{document.Int(30)}))

	assert.Equal(t, Stats{}, ix.Stats())
}

func TestInvertedIndex_NestedValuesAreOpaque(t *testing.T) {
	ix := New()
	addr := document.Object(document.Document{"zip": document.String("10001")})
	ix.Add("user:1", 1, document.Object(document.Document{"addr": addr}))

	assert.Equal(t, []string{"user:1"}, ix.Lookup("addr", addr))
	assert.Empty(t, ix.Lookup("zip", document.String("10001")))
}

func TestInvertedIndex_UpdateAndRemove(t *testing.T) {
	ix := New()
	ix.Add("user:1", 1, user(30, "NY"))
	ix.Update("user:1", 1, user(30, "NY"), 4, user(31, "SF"))

	assert.Empty(t, ix.Lookup("age", document.Int(30)))
	assert.Empty(t, ix.Lookup("city", document.String("NY")))
	assert.Equal(t, []string{"user:1"}, ix.Lookup("age", document.Int(31)))
	assert.Equal(t, []string{"user:1"}, ix.Lookup("city", document.String("SF")))

	ix.Remove(4, user(31, "SF"))
	assert.Empty(t, ix.Lookup("age", document.Int(31)))

	// Empty buckets stay around
	s := ix.Stats()
	assert.Equal(t, 2, s.Fields)
	assert.Equal(t, 4, s.Buckets)
	assert.Equal(t, uint64(0), s.Entries)
}

func TestInvertedIndex_CompileEqAndIn(t *testing.T) {
	ix := New()
	ix.Add("a", 1, document.Object(document.Document{"category": document.String("tech"), "status": document.String("active")}))
	ix.Add("b", 2, document.Object(document.Document{"category": document.String("sports"), "status": document.String("active")}))
	ix.Add("c", 3, document.Object(document.Document{"category": document.String("tech"), "status": document.String("inactive")}))

	bm, ok := ix.Compile(document.NewFilterSet(
		document.Eq("category", document.String("tech")),
		document.In("status", document.String("active")),
	))
	require.True(t, ok)
	assert.Equal(t, []uint32{1}, bm.ToArray())

	keys, ok := ix.Match(document.NewFilterSet(
		document.In("status", document.String("active"), document.String("inactive")),
	))
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, keys)

	keys, ok = ix.Match(document.NewFilterSet(
		document.Eq("category", document.String("tech")),
		document.Eq("status", document.String("missing")),
	))
	require.True(t, ok)
	assert.Empty(t, keys)

	keys, ok = ix.Match(document.NewFilterSet(
		document.In("status", document.String("unknown")),
	))
	require.True(t, ok)
	assert.Empty(t, keys)
}

func TestInvertedIndex_CompileFallsBack(t *testing.T) {
	ix := New()
	ix.Add("a", 1, user(30, "NY"))

	_, ok := ix.Compile(document.NewFilterSet(document.Gt("age", document.Int(10))))
	assert.False(t, ok)

	_, ok = ix.Compile(document.NewFilterSet())
	assert.False(t, ok)

	_, ok = ix.Match(nil)
	assert.False(t, ok)
}

func TestInvertedIndex_Reset(t *testing.T) {
	ix := New()
	ix.Add("a", 1, user(30, "NY"))
	ix.Reset()

	assert.Empty(t, ix.Lookup("age", document.Int(30)))
	assert.Equal(t, Stats{}, ix.Stats())
}

func TestInvertedIndex_PageOrder(t *testing.T) {
	ix := New()
	ix.Add("user:b", 1, user(30, "NY"))
	ix.Add("user:a", 2, user(30, "NY"))

	assert.Equal(t, []string{"user:b", "user:a"}, ix.Lookup("age", document.Int(30)))

	// A rewrite moves the key to the end
	ix.Update("user:b", 1, user(30, "NY"), 3, user(30, "NY"))
	assert.Equal(t, []string{"user:a", "user:b"}, ix.Lookup("city", document.String("NY")))
}
