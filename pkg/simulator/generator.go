package simulator

import (
	"bufio"
	"io"
	"math/rand/v2"

	"github.com/erain9/chunkbook/pkg/core"
	"github.com/erain9/chunkbook/pkg/events"
)

// Sampling bounds of generated events
const (
	MaxQuantity = 1_000_000
	MaxPrice    = 10_000
)

// Generator produces a random event stream. Every kind and both sides are
// equally likely. Updates and removals target an identifier drawn uniformly
// from zero up to the number of creates so far, so some of them miss.
type Generator struct {
	rng     *rand.Rand
	creates int64
}

// New creates a Generator drawing from rng
func New(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// NewSeeded creates a Generator with a deterministic source
func NewSeeded(seed uint64) *Generator {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Creates returns the number of CREATE events generated so far
func (g *Generator) Creates() int64 {
	return g.creates
}

// Next returns the next event
func (g *Generator) Next() events.Event {
	switch events.Kind(g.rng.IntN(5)) {
	case events.Create:
		side := core.Sell
		if g.rng.IntN(2) == 0 {
			side = core.Buy
		}
		g.creates++
		return events.NewCreate(side, g.quantity(), g.price())
	case events.Update:
		return events.NewUpdate(g.id(), g.price())
	case events.Remove:
		return events.NewRemove(g.id())
	case events.Bids:
		return events.Event{Kind: events.Bids}
	default:
		return events.Event{Kind: events.Asks}
	}
}

// Write emits n events to w, one per line
func (g *Generator) Write(w io.Writer, n int) error {
	bw := bufio.NewWriter(w)
	for range n {
		// bufio.Writer keeps the first write error and reports it on the next write
		bw.WriteString(g.Next().String())
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (g *Generator) quantity() int64 {
	return g.rng.Int64N(MaxQuantity) + 1
}

func (g *Generator) price() int64 {
	price := g.rng.Int64N(MaxPrice) + 1
	if g.rng.IntN(2) == 0 {
		return -price
	}
	return price
}

func (g *Generator) id() int64 {
	return g.rng.Int64N(g.creates + 1)
}
