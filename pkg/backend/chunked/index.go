package chunked

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/erain9/chunkbook/pkg/core"
)

const (
	// DefaultMaxChunkSize is the chunk size bound used when none is configured
	DefaultMaxChunkSize = 256

	// MaxChunkSizeLimit is the largest accepted chunk size bound
	MaxChunkSizeLimit = 1 << 20

	// New chunks reserve room for at most this many orders up front
	maxReservedChunkCap = 1024
)

// ErrCorrupted is wrapped by every invariant violation the index detects
var ErrCorrupted = errors.New("chunked index corrupted")

// chunk is a sorted run of orders. Every order in chunk i ranks ahead of
// every order in chunk i+1.
type chunk []core.Order

// Index keeps one side of the book as a sequence of bounded, sorted chunks
// plus an identifier map. It implements core.SideIndex.
type Index struct {
	cmp          core.Comparator
	chunks       []chunk
	byID         map[int64]core.Order
	maxChunkSize int
	splits       int64
}

var _ core.SideIndex = (*Index)(nil)

// Option configures an Index
type Option func(*Index)

// WithMaxChunkSize bounds the number of orders held by one chunk
func WithMaxChunkSize(n int) Option {
	return func(ix *Index) {
		ix.maxChunkSize = n
	}
}

// New creates an empty index ordered by cmp
func New(cmp core.Comparator, opts ...Option) *Index {
	if cmp == nil {
		panic(fmt.Errorf("%w: nil comparator", core.ErrInvalidArgument))
	}

	ix := &Index{
		cmp:          cmp,
		byID:         make(map[int64]core.Order),
		maxChunkSize: DefaultMaxChunkSize,
	}
	for _, opt := range opts {
		opt(ix)
	}

	if ix.maxChunkSize < 1 || ix.maxChunkSize > MaxChunkSizeLimit {
		panic(fmt.Errorf("%w: max chunk size %d", core.ErrInvalidArgument, ix.maxChunkSize))
	}

	return ix
}

// NewSide creates an empty index ranked for side
func NewSide(side core.Side, opts ...Option) *Index {
	return New(core.ComparatorFor(side), opts...)
}

// MaxChunkSize returns the configured chunk bound
func (ix *Index) MaxChunkSize() int {
	return ix.maxChunkSize
}

// Insert adds order to the index. Inserting an identifier that is already
// present is a programming error and panics.
func (ix *Index) Insert(order core.Order) {
	if _, exists := ix.byID[order.ID()]; exists {
		panic(fmt.Errorf("%w: id %d", core.ErrOrderExists, order.ID()))
	}
	ix.byID[order.ID()] = order

	if len(ix.chunks) == 0 {
		c := make(chunk, 1, ix.chunkCap(1))
		c[0] = order
		ix.chunks = append(ix.chunks, c)
		return
	}

	idx := ix.locateChunk(order)
	if idx == len(ix.chunks) {
		// Ranks behind everything we hold
		idx--
		ix.chunks[idx] = append(ix.chunks[idx], order)
	} else {
		pos, _ := slices.BinarySearchFunc(ix.chunks[idx], order, ix.cmp.Compare)
		ix.chunks[idx] = slices.Insert(ix.chunks[idx], pos, order)
	}

	ix.maybeSplit(idx)
}

// RemoveByID removes the order with the given identifier and returns it.
// Unknown identifiers leave the index untouched and report false.
func (ix *Index) RemoveByID(id int64) (core.Order, bool) {
	order, ok := ix.byID[id]
	if !ok {
		return core.Order{}, false
	}
	delete(ix.byID, id)

	idx := ix.locateChunk(order)
	if idx == len(ix.chunks) {
		panic(fmt.Errorf("%w: order %d ranks behind every chunk", ErrCorrupted, id))
	}

	pos, found := slices.BinarySearchFunc(ix.chunks[idx], order, ix.cmp.Compare)
	if !found {
		panic(fmt.Errorf("%w: order %d missing from chunk %d", ErrCorrupted, id, idx))
	}

	ix.chunks[idx] = slices.Delete(ix.chunks[idx], pos, pos+1)
	if len(ix.chunks[idx]) == 0 {
		// Searches probe the last element of each chunk, so empty chunks
		// can never stay behind.
		ix.chunks = slices.Delete(ix.chunks, idx, idx+1)
	}

	return order, true
}

// UpdateByID reprices an order by removing it and inserting a copy with the
// new price. Unknown identifiers report false.
func (ix *Index) UpdateByID(id int64, price int64) bool {
	order, ok := ix.RemoveByID(id)
	if !ok {
		return false
	}

	ix.Insert(order.WithPrice(price))
	return true
}

// Get returns the order with the given identifier
func (ix *Index) Get(id int64) (core.Order, bool) {
	order, ok := ix.byID[id]
	return order, ok
}

// Best returns the order ranked first
func (ix *Index) Best() (core.Order, bool) {
	if len(ix.chunks) == 0 {
		return core.Order{}, false
	}
	return ix.chunks[0][0], true
}

// All yields every order in priority order. The index must not be mutated
// while the sequence is being consumed.
func (ix *Index) All() iter.Seq[core.Order] {
	return func(yield func(core.Order) bool) {
		for _, c := range ix.chunks {
			for _, order := range c {
				if !yield(order) {
					return
				}
			}
		}
	}
}

// Len returns the number of orders held
func (ix *Index) Len() int {
	return len(ix.byID)
}

// IsEmpty reports whether the index holds no orders
func (ix *Index) IsEmpty() bool {
	return len(ix.byID) == 0
}

// Stats implements core.SideIndex
func (ix *Index) Stats() core.IndexStats {
	largest := 0
	for _, c := range ix.chunks {
		largest = max(largest, len(c))
	}

	return core.IndexStats{
		Orders:       len(ix.byID),
		Chunks:       len(ix.chunks),
		LargestChunk: largest,
		Splits:       ix.splits,
	}
}

// Verify checks every structural invariant and reports the first violation
func (ix *Index) Verify() error {
	seen := 0
	var prev core.Order

	for i, c := range ix.chunks {
		if len(c) == 0 {
			return fmt.Errorf("%w: chunk %d is empty", ErrCorrupted, i)
		}
		if len(c) > ix.maxChunkSize {
			return fmt.Errorf("%w: chunk %d holds %d orders, bound is %d", ErrCorrupted, i, len(c), ix.maxChunkSize)
		}

		for j, order := range c {
			if seen > 0 && ix.cmp.Compare(prev, order) >= 0 {
				return fmt.Errorf("%w: order %d at chunk %d position %d does not rank behind order %d",
					ErrCorrupted, order.ID(), i, j, prev.ID())
			}

			stored, ok := ix.byID[order.ID()]
			if !ok {
				return fmt.Errorf("%w: order %d is chunked but not indexed", ErrCorrupted, order.ID())
			}
			if stored != order {
				return fmt.Errorf("%w: order %d indexed as %s but chunked as %s", ErrCorrupted, order.ID(), stored, order)
			}

			prev = order
			seen++
		}
	}

	if seen != len(ix.byID) {
		return fmt.Errorf("%w: %d orders chunked, %d indexed", ErrCorrupted, seen, len(ix.byID))
	}

	return nil
}

// String implements fmt.Stringer interface
func (ix *Index) String() string {
	sb := strings.Builder{}

	for i, c := range ix.chunks {
		fmt.Fprintf(&sb, "chunk %d (%d):\n", i, len(c))
		for _, order := range c {
			fmt.Fprintf(&sb, "\t%d %s\n", order.ID(), order)
		}
	}

	return sb.String()
}

// locateChunk returns the first chunk whose last order does not rank ahead
// of order, or len(chunks) when order ranks behind all of them.
func (ix *Index) locateChunk(order core.Order) int {
	idx, _ := slices.BinarySearchFunc(ix.chunks, order, func(c chunk, target core.Order) int {
		return ix.cmp.Compare(c[len(c)-1], target)
	})
	return idx
}

// chunkCap is the capacity reserved for a new chunk holding n orders. Large
// bounds grow through append instead of being allocated up front.
func (ix *Index) chunkCap(n int) int {
	return max(n, min(ix.maxChunkSize, maxReservedChunkCap)+1)
}

// maybeSplit halves chunk idx once it outgrows the bound. The upper half
// becomes a new chunk right after it.
func (ix *Index) maybeSplit(idx int) {
	c := ix.chunks[idx]
	if len(c) <= ix.maxChunkSize {
		return
	}

	mid := len(c) / 2
	sibling := make(chunk, len(c)-mid, ix.chunkCap(len(c)-mid))
	copy(sibling, c[mid:])

	ix.chunks[idx] = c[:mid]
	ix.chunks = slices.Insert(ix.chunks, idx+1, sibling)
	ix.splits++
}
