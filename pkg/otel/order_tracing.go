package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// Span names
	SpanReplay = "replay_events"

	// Attribute keys
	AttributeRunID        = "replay.run_id"
	AttributeInputPath    = "replay.input"
	AttributeEventCount   = "replay.events"
	AttributeMissCount    = "replay.misses"
	AttributeMaxChunkSize = "book.max_chunk_size"
	AttributeBidDepth     = "book.bids.depth"
	AttributeAskDepth     = "book.asks.depth"
)

// StartSpan starts a new span on the global tracer provider. With tracing
// disabled the span is a no-op.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// AddAttributes adds attributes to a span
func AddAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	if span == nil {
		return
	}
	span.SetAttributes(attrs...)
}
