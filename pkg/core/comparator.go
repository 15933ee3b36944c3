package core

import "cmp"

// Comparator is a total order over orders. Compare returns a negative
// number when a ranks ahead of b, zero when they are the same order and a
// positive number otherwise. Implementations must break ties on the order
// identifier so that two distinct orders never compare equal.
type Comparator interface {
	Compare(a, b Order) int
}

// ComparatorFunc adapts a plain function to the Comparator interface
type ComparatorFunc func(a, b Order) int

// Compare calls f(a, b)
func (f ComparatorFunc) Compare(a, b Order) int {
	return f(a, b)
}

// BidOrder ranks bids: highest price first, then largest quantity, then
// earliest identifier.
type BidOrder struct{}

// Compare implements Comparator
func (BidOrder) Compare(a, b Order) int {
	if c := cmp.Compare(b.price, a.price); c != 0 {
		return c
	}
	if c := cmp.Compare(b.quantity, a.quantity); c != 0 {
		return c
	}
	return cmp.Compare(a.id, b.id)
}

// AskOrder ranks asks: lowest price first, then smallest quantity, then
// earliest identifier.
type AskOrder struct{}

// Compare implements Comparator
func (AskOrder) Compare(a, b Order) int {
	if c := cmp.Compare(a.price, b.price); c != 0 {
		return c
	}
	if c := cmp.Compare(a.quantity, b.quantity); c != 0 {
		return c
	}
	return cmp.Compare(a.id, b.id)
}

// ComparatorFor returns the priority order used for side
func ComparatorFor(side Side) Comparator {
	if side == Buy {
		return BidOrder{}
	}
	return AskOrder{}
}
