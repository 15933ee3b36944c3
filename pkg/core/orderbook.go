package core

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/erain9/chunkbook/pkg/otel"
)

// OrderBook keeps a bid index and an ask index and routes order events to them
type OrderBook struct {
	bids    SideIndex
	asks    SideIndex
	nextID  int64
	metrics *otel.BookMetrics
}

// NewOrderBook creates an OrderBook over the two side indexes. bids must rank
// with BidOrder and asks with AskOrder.
func NewOrderBook(bids, asks SideIndex) *OrderBook {
	return &OrderBook{
		bids:    bids,
		asks:    asks,
		metrics: otel.GetBookMetrics(),
	}
}

// SetMetrics replaces the metrics sink, nil disables recording
func (ob *OrderBook) SetMetrics(m *otel.BookMetrics) {
	ob.metrics = m
}

// NextID returns the identifier the next created order will receive
func (ob *OrderBook) NextID() int64 {
	return ob.nextID
}

// Side returns the index holding side, or nil for an invalid side
func (ob *OrderBook) Side(side Side) SideIndex {
	switch side {
	case Buy:
		return ob.bids
	case Sell:
		return ob.asks
	default:
		return nil
	}
}

// Create assigns the next identifier to a new order and rests it on its side
func (ob *OrderBook) Create(ctx context.Context, side Side, quantity, price int64) (Order, error) {
	index := ob.Side(side)
	if index == nil {
		return Order{}, fmt.Errorf("%w: %d", ErrInvalidSide, side)
	}

	order := NewOrder(ob.nextID, side, price, quantity)
	ob.nextID++
	index.Insert(order)

	ob.metrics.RecordOperation(ctx, otel.OpCreate, side.String(), otel.OutcomeApplied)
	return order, nil
}

// Update moves the order with the given identifier to a new price. Unknown
// identifiers are ignored and reported as false.
func (ob *OrderBook) Update(ctx context.Context, id, price int64) bool {
	for _, side := range []Side{Buy, Sell} {
		if ob.Side(side).UpdateByID(id, price) {
			ob.metrics.RecordOperation(ctx, otel.OpUpdate, side.String(), otel.OutcomeApplied)
			return true
		}
	}

	ob.metrics.RecordOperation(ctx, otel.OpUpdate, otel.SideNone, otel.OutcomeNotFound)
	return false
}

// Remove cancels the order with the given identifier. Unknown identifiers are
// ignored and reported as false.
func (ob *OrderBook) Remove(ctx context.Context, id int64) (Order, bool) {
	for _, side := range []Side{Buy, Sell} {
		if order, ok := ob.Side(side).RemoveByID(id); ok {
			ob.metrics.RecordOperation(ctx, otel.OpRemove, side.String(), otel.OutcomeApplied)
			return order, true
		}
	}

	ob.metrics.RecordOperation(ctx, otel.OpRemove, otel.SideNone, otel.OutcomeNotFound)
	return Order{}, false
}

// GetOrder returns the resting order with the given identifier
func (ob *OrderBook) GetOrder(id int64) (Order, bool) {
	if order, ok := ob.bids.Get(id); ok {
		return order, true
	}
	return ob.asks.Get(id)
}

// Dump hands side to sink in priority order. An empty side writes nothing.
func (ob *OrderBook) Dump(ctx context.Context, side Side, sink Sink) error {
	index := ob.Side(side)
	if index == nil {
		return fmt.Errorf("%w: %d", ErrInvalidSide, side)
	}

	if index.IsEmpty() {
		ob.metrics.RecordOperation(ctx, otel.OpDump, side.String(), otel.OutcomeEmpty)
		return nil
	}

	ob.metrics.RecordOperation(ctx, otel.OpDump, side.String(), otel.OutcomeApplied)
	return sink.WriteSide(side, index.All())
}

// Best returns the top of book for side
func (ob *OrderBook) Best(side Side) (Order, bool) {
	index := ob.Side(side)
	if index == nil {
		return Order{}, false
	}
	return index.Best()
}

// Bids returns the bid side in priority order
func (ob *OrderBook) Bids() iter.Seq[Order] {
	return ob.bids.All()
}

// Asks returns the ask side in priority order
func (ob *OrderBook) Asks() iter.Seq[Order] {
	return ob.asks.All()
}

// Len returns the number of resting orders on side
func (ob *OrderBook) Len(side Side) int {
	index := ob.Side(side)
	if index == nil {
		return 0
	}
	return index.Len()
}

// Depths implements otel.DepthSource
func (ob *OrderBook) Depths() []otel.SideDepth {
	depths := make([]otel.SideDepth, 0, 2)
	for _, side := range []Side{Buy, Sell} {
		stats := ob.Side(side).Stats()
		depths = append(depths, otel.SideDepth{
			Side:   side.String(),
			Orders: int64(stats.Orders),
			Chunks: int64(stats.Chunks),
			Splits: stats.Splits,
		})
	}
	return depths
}

// String implements fmt.Stringer interface
func (ob *OrderBook) String() string {
	builder := strings.Builder{}

	for _, side := range []Side{Sell, Buy} {
		stats := ob.Side(side).Stats()
		fmt.Fprintf(&builder, "%s: %d orders in %d chunks", side, stats.Orders, stats.Chunks)
		if best, ok := ob.Side(side).Best(); ok {
			fmt.Fprintf(&builder, ", best %s", best)
		}
		builder.WriteString("\n")
	}

	return builder.String()
}
