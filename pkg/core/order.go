package core

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Side represents buy or sell side of the order
type Side int

// Order sides
const (
	Sell Side = iota
	Buy
)

// String returns side as it appears in event streams and book dumps
func (s Side) String() string {
	switch s {
	case Buy:
		return "Buy"
	case Sell:
		return "Sell"
	default:
		return "Unknown"
	}
}

// Valid reports whether s is Buy or Sell
func (s Side) Valid() bool {
	return s == Buy || s == Sell
}

// ParseSide parses the "Buy" / "Sell" tokens of the event format
func ParseSide(s string) (Side, error) {
	switch s {
	case "Buy":
		return Buy, nil
	case "Sell":
		return Sell, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidSide, s)
	}
}

// Order is a resting order. Only the price can change, and only through
// WithPrice, which hands back a new value.
type Order struct {
	id       int64
	side     Side
	price    int64
	quantity int64
}

// NewOrder creates an order value
func NewOrder(id int64, side Side, price, quantity int64) Order {
	return Order{
		id:       id,
		side:     side,
		price:    price,
		quantity: quantity,
	}
}

// ID returns the order identifier
func (o Order) ID() int64 {
	return o.id
}

// Side returns the side of the order
func (o Order) Side() Side {
	return o.side
}

// Price returns the limit price
func (o Order) Price() int64 {
	return o.price
}

// Quantity returns the order quantity
func (o Order) Quantity() int64 {
	return o.quantity
}

// WithPrice returns a copy of the order carrying a new price
func (o Order) WithPrice(price int64) Order {
	o.price = price
	return o
}

// String renders the order the way book dumps print it
func (o Order) String() string {
	return fmt.Sprintf("%s %d %d", o.side, o.price, o.quantity)
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler
func (o Order) MarshalZerologObject(e *zerolog.Event) {
	e.Int64("id", o.id).
		Str("side", o.side.String()).
		Int64("price", o.price).
		Int64("quantity", o.quantity)
}
