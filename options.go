package propgraph

import (
	"log/slog"

	"github.com/hupe1980/propgraph/codec"
	"github.com/hupe1980/propgraph/engine"
)

type options struct {
	compute          engine.Compute
	strict           bool
	codec            codec.Codec
	compression      Compression
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures graph construction behavior.
type Option func(*options)

// WithEngine configures the compute backend the graph delegates bulk work
// to. If unset, an in-process engine.Local is used.
func WithEngine(compute engine.Compute) Option {
	return func(o *options) {
		o.compute = compute
	}
}

// WithStrict makes loads fail with ErrUnresolvedRows instead of silently
// dropping rows whose keys do not resolve. The check runs before any
// backend write is attempted.
func WithStrict() Option {
	return func(o *options) {
		o.strict = true
	}
}

// WithCodec configures the codec used for snapshot payloads.
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

// WithCompression configures the compression scheme used for snapshot
// payloads.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. The metric package provides a Prometheus implementation.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
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

func applyOptions(optFns []Option) options {
	o := options{
		compression:      CompressionZstd,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
