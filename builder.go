// Package propgraph provides the property-graph construction layer.
//
// This file implements the fluent builder API for creating and configuring
// Graph instances. The builder is immutable - each method returns a new
// builder with the updated configuration.
package propgraph

import (
	"log/slog"

	"github.com/hupe1980/propgraph/codec"
	"github.com/hupe1980/propgraph/engine"
)

// NewBuilder creates a graph builder with defaults: an in-process
// engine.Local backend, lenient resolution, zstd-compressed snapshots.
//
// Example:
//
//	g, err := propgraph.NewBuilder().
//	    Engine(engine.NewLocal()).
//	    Strict().
//	    Build()
func NewBuilder() Builder {
	return Builder{
		compression: CompressionZstd,
	}
}

// Builder is an immutable fluent builder for creating Graph instances.
// Each method returns a new builder with the updated configuration.
type Builder struct {
	compute     engine.Compute
	strict      bool
	codec       codec.Codec
	compression Compression
	logger      *Logger
	metrics     MetricsCollector
}

// Engine sets the compute backend the graph delegates bulk work to.
func (b Builder) Engine(compute engine.Compute) Builder {
	b.compute = compute
	return b
}

// Strict makes loads fail on unresolved rows instead of dropping them
// silently.
func (b Builder) Strict() Builder {
	b.strict = true
	return b
}

// Codec sets the codec used for snapshot payloads.
func (b Builder) Codec(c codec.Codec) Builder {
	b.codec = c
	return b
}

// Compression sets the compression scheme for snapshot payloads.
func (b Builder) Compression(c Compression) Builder {
	b.compression = c
	return b
}

// Logger sets the structured logger.
func (b Builder) Logger(logger *Logger) Builder {
	b.logger = logger
	return b
}

// LogLevel sets a text logger with the given level.
func (b Builder) LogLevel(level slog.Level) Builder {
	b.logger = NewTextLogger(level)
	return b
}

// Metrics sets the metrics collector.
func (b Builder) Metrics(mc MetricsCollector) Builder {
	b.metrics = mc
	return b
}

// Build creates the Graph.
func (b Builder) Build() (*Graph, error) {
	optFns := []Option{
		WithCompression(b.compression),
	}
	if b.compute != nil {
		optFns = append(optFns, WithEngine(b.compute))
	}
	if b.strict {
		optFns = append(optFns, WithStrict())
	}
	if b.codec != nil {
		optFns = append(optFns, WithCodec(b.codec))
	}
	if b.logger != nil {
		optFns = append(optFns, WithLogger(b.logger))
	}
	if b.metrics != nil {
		optFns = append(optFns, WithMetricsCollector(b.metrics))
	}
	return New(optFns...)
}
