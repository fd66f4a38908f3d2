package prommetrics

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pagedb"
	"github.com/hupe1980/pagedb/document"
)

func TestCollector_Records(t *testing.T) {
	c := New("pagedb")

	c.RecordPut(time.Millisecond, nil)
	c.RecordPut(time.Millisecond, errors.New("boom"))
	c.RecordGet(time.Microsecond, true)
	c.RecordGet(time.Microsecond, false)
	c.RecordDelete(time.Microsecond, nil)
	c.RecordQuery(3, true, time.Microsecond)
	c.RecordQuery(2, false, time.Microsecond)
	c.RecordFlush(time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.ops.WithLabelValues("put", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ops.WithLabelValues("put", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ops.WithLabelValues("get", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ops.WithLabelValues("query", "scan")))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.results))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.getMisses))

	expected := `
# HELP pagedb_get_misses_total Total gets that found no readable record
# TYPE pagedb_get_misses_total counter
pagedb_get_misses_total 1
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "pagedb_get_misses_total"))
}

func TestCollector_Register(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	c := New("pagedb")
	require.NoError(t, reg.Register(c))

	c.RecordFlush(time.Millisecond, nil)

	n, err := testutil.GatherAndCount(reg, "pagedb_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCollector_WithDB(t *testing.T) {
	c := New("pagedb")
	db, err := pagedb.Open(filepath.Join(t.TempDir(), "metrics.db"), pagedb.WithMetricsCollector(c))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Put("user:1", document.Object(document.Document{"city": document.String("NY")})))
	_, _ = db.Get("user:1")
	_, _ = db.Get("user:2")
	_ = db.Query("city", document.String("NY"))
	require.NoError(t, db.Flush())

	assert.Equal(t, 1.0, testutil.ToFloat64(c.ops.WithLabelValues("put", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ops.WithLabelValues("get", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ops.WithLabelValues("get", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ops.WithLabelValues("query", "indexed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ops.WithLabelValues("flush", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.results))
}
