// Package prommetrics exposes pagedb operation metrics to Prometheus.
//
//	c := prommetrics.New("pagedb")
//	prometheus.MustRegister(c)
//	db, _ := pagedb.Open("data.db", pagedb.WithMetricsCollector(c))
package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/pagedb"
)

// Collector implements pagedb.MetricsCollector and prometheus.Collector.
type Collector struct {
	opLatency *prometheus.HistogramVec
	ops       *prometheus.CounterVec
	results   prometheus.Counter
	getMisses prometheus.Counter
}

var (
	_ pagedb.MetricsCollector = (*Collector)(nil)
	_ prometheus.Collector    = (*Collector)(nil)
)

// New creates a Collector whose metric names start with namespace.
// The collector is not registered.
func New(namespace string) *Collector {
	return &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of database operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total database operations by outcome",
		}, []string{"op", "status"}),
		results: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_results_total",
			Help:      "Total keys returned by queries",
		}),
		getMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "get_misses_total",
			Help:      "Total gets that found no readable record",
		}),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (c *Collector) observe(op, status string, d time.Duration) {
	c.opLatency.WithLabelValues(op).Observe(d.Seconds())
	c.ops.WithLabelValues(op, status).Inc()
}

// RecordPut implements pagedb.MetricsCollector.
func (c *Collector) RecordPut(d time.Duration, err error) {
	c.observe("put", status(err), d)
}

// RecordGet implements pagedb.MetricsCollector.
func (c *Collector) RecordGet(d time.Duration, found bool) {
	st := "ok"
	if !found {
		st = "miss"
		c.getMisses.Inc()
	}
	c.observe("get", st, d)
}

// RecordDelete implements pagedb.MetricsCollector.
func (c *Collector) RecordDelete(d time.Duration, err error) {
	c.observe("delete", status(err), d)
}

// RecordQuery implements pagedb.MetricsCollector.
func (c *Collector) RecordQuery(results int, indexed bool, d time.Duration) {
	st := "indexed"
	if !indexed {
		st = "scan"
	}
	c.results.Add(float64(results))
	c.observe("query", st, d)
}

// RecordFlush implements pagedb.MetricsCollector.
func (c *Collector) RecordFlush(d time.Duration, err error) {
	c.observe("flush", status(err), d)
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.opLatency.Describe(ch)
	c.ops.Describe(ch)
	c.results.Describe(ch)
	c.getMisses.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.opLatency.Collect(ch)
	c.ops.Collect(ch)
	c.results.Collect(ch)
	c.getMisses.Collect(ch)
}
