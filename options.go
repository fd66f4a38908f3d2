package pagedb

import (
	"log/slog"

	"github.com/hupe1980/pagedb/codec"
	"github.com/hupe1980/pagedb/internal/pager"
)

type options struct {
	codec            codec.Codec
	metricsCollector MetricsCollector
	logger           *Logger
	minPages         int
	growth           bool
	sortedResults    bool
}

// Option configures Open.
type Option func(*options)

// WithCodec configures the codec used for records and the primary index page.
// The codec is part of the file format: reopen a file with the codec it was
// written with.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &pagedb.BasicMetricsCollector{}
//	db, _ := pagedb.Open("data.db", pagedb.WithMetricsCollector(metrics))
//	// ... use db ...
//	stats := metrics.GetStats()
//	fmt.Printf("Puts: %d, Avg latency: %dns\n", stats.PutCount, stats.PutAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := pagedb.NewJSONLogger(slog.LevelInfo)
//	db, _ := pagedb.Open("data.db", pagedb.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMinPages sets the number of pages a file is extended to at open.
// Values below 2 are raised to 2 (the index page plus one data page).
func WithMinPages(n int) Option {
	return func(o *options) {
		o.minPages = n
	}
}

// WithGrowth controls whether the file grows when the next page id passes
// the mapped extent. With growth disabled, Put fails with
// ErrPageOutOfBounds once the file is full. Enabled by default.
func WithGrowth(enabled bool) Option {
	return func(o *options) {
		o.growth = enabled
	}
}

// WithSortedResults controls the order of Query, QueryPage and QueryFilter
// results. When enabled (the default) keys are sorted lexicographically;
// otherwise they come in the order of their most recent put.
func WithSortedResults(enabled bool) Option {
	return func(o *options) {
		o.sortedResults = enabled
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:            codec.Default,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		minPages:         pager.MinPages,
		growth:           true,
		sortedResults:    true,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	o.minPages = max(o.minPages, 2)
	return o
}
