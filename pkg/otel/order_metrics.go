package otel

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	instrumentationName = "github.com/erain9/chunkbook/pkg/otel"

	// Operations
	OpCreate = "create"
	OpUpdate = "update"
	OpRemove = "remove"
	OpDump   = "dump"

	// Outcomes
	OutcomeApplied  = "applied"
	OutcomeNotFound = "not_found"
	OutcomeEmpty    = "empty"

	// SideNone labels operations that matched neither side
	SideNone = "none"
)

var (
	// bookMetrics holds the singleton instance
	bookMetrics     *BookMetrics
	bookMetricsOnce sync.Once
)

// SideDepth is a point-in-time view of one side of the book
type SideDepth struct {
	Side   string
	Orders int64
	Chunks int64
	Splits int64
}

// DepthSource reports the current depth of each side
type DepthSource interface {
	Depths() []SideDepth
}

// BookMetrics holds metrics for order book operations
type BookMetrics struct {
	meter      metric.Meter
	operations metric.Int64Counter
}

// NewBookMetrics creates the order book instruments on meter
func NewBookMetrics(meter metric.Meter) (*BookMetrics, error) {
	operations, err := meter.Int64Counter(
		"orderbook.operations.total",
		metric.WithDescription("Total number of order book operations by outcome"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	return &BookMetrics{
		meter:      meter,
		operations: operations,
	}, nil
}

// GetBookMetrics returns the BookMetrics singleton bound to the global meter
// provider. Instruments created before Setup follow the provider installed later.
func GetBookMetrics() *BookMetrics {
	bookMetricsOnce.Do(func() {
		m, err := NewBookMetrics(otel.GetMeterProvider().Meter(instrumentationName))
		if err != nil {
			m = &BookMetrics{}
		}
		bookMetrics = m
	})
	return bookMetrics
}

// RecordOperation increments the operations counter
func (m *BookMetrics) RecordOperation(ctx context.Context, op, side, outcome string) {
	if m == nil || m.operations == nil {
		return
	}

	m.operations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("side", side),
		attribute.String("outcome", outcome),
	))
}

// ObserveDepth registers observable instruments reporting the depth, chunk
// count and split count of every side reported by src.
func (m *BookMetrics) ObserveDepth(src DepthSource) (metric.Registration, error) {
	if m == nil || m.meter == nil {
		return nil, nil
	}

	depth, err := m.meter.Int64ObservableGauge(
		"orderbook.depth",
		metric.WithDescription("Number of resting orders"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, err
	}

	chunks, err := m.meter.Int64ObservableGauge(
		"orderbook.chunks",
		metric.WithDescription("Number of sorted chunks backing the side"),
		metric.WithUnit("{chunk}"),
	)
	if err != nil {
		return nil, err
	}

	splits, err := m.meter.Int64ObservableCounter(
		"orderbook.chunk.splits.total",
		metric.WithDescription("Total number of chunk splits"),
		metric.WithUnit("{split}"),
	)
	if err != nil {
		return nil, err
	}

	return m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		for _, d := range src.Depths() {
			attrs := metric.WithAttributes(attribute.String("side", d.Side))
			o.ObserveInt64(depth, d.Orders, attrs)
			o.ObserveInt64(chunks, d.Chunks, attrs)
			o.ObserveInt64(splits, d.Splits, attrs)
		}
		return nil
	}, depth, chunks, splits)
}
