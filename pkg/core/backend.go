package core

import "iter"

// SideIndex defines the interface for one side of the book kept in priority order
type SideIndex interface {
	// Mutations
	Insert(order Order)
	RemoveByID(id int64) (Order, bool)
	UpdateByID(id int64, price int64) bool

	// Lookups
	Get(id int64) (Order, bool)
	Best() (Order, bool)

	// Traversal in priority order
	All() iter.Seq[Order]

	Len() int
	IsEmpty() bool
	Stats() IndexStats
}

// IndexStats describes the shape of a SideIndex
type IndexStats struct {
	Orders       int
	Chunks       int
	LargestChunk int
	Splits       int64
}

// Sink consumes dumps of one side of the book
type Sink interface {
	WriteSide(side Side, orders iter.Seq[Order]) error
}
