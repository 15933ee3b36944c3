package chunked

import (
	"slices"
	"testing"

	"github.com/erain9/chunkbook/pkg/core"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// Narrow ranges force plenty of equal prices and quantities so the
// identifier tie-break is exercised constantly.
var (
	priceGen    = rapid.Int64Range(-20, 20)
	quantityGen = rapid.Int64Range(1, 4)
	sideGen     = rapid.SampledFrom([]core.Side{core.Buy, core.Sell})
)

func TestProperty_IndexMatchesTreeModel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		side := sideGen.Draw(t, "side")
		maxChunk := rapid.IntRange(1, 8).Draw(t, "maxChunk")

		ix := NewSide(side, WithMaxChunkSize(maxChunk))
		model := newTreeIndex(core.ComparatorFor(side))
		cmp := core.ComparatorFor(side)
		var nextID int64

		drawID := func(t *rapid.T) int64 {
			return rapid.Int64Range(0, nextID+2).Draw(t, "id")
		}

		t.Repeat(map[string]func(*rapid.T){
			"insert": func(t *rapid.T) {
				order := core.NewOrder(nextID, side, priceGen.Draw(t, "price"), quantityGen.Draw(t, "quantity"))
				nextID++
				ix.Insert(order)
				model.Insert(order)
			},
			"remove": func(t *rapid.T) {
				id := drawID(t)
				got, ok := ix.RemoveByID(id)
				want, wantOK := model.RemoveByID(id)
				require.Equal(t, wantOK, ok, "remove %d", id)
				require.Equal(t, want, got, "remove %d", id)
			},
			"update": func(t *rapid.T) {
				id := drawID(t)
				price := priceGen.Draw(t, "price")
				require.Equal(t, model.UpdateByID(id, price), ix.UpdateByID(id, price), "update %d", id)
			},
			"removeAbsent": func(t *rapid.T) {
				before := slices.Collect(ix.All())
				stats := ix.Stats()
				_, ok := ix.RemoveByID(nextID + 1000)
				require.False(t, ok)
				require.Equal(t, before, slices.Collect(ix.All()))
				require.Equal(t, stats, ix.Stats())
			},
			"": func(t *rapid.T) {
				require.NoError(t, ix.Verify())

				got := slices.Collect(ix.All())
				require.Equal(t, slices.Collect(model.All()), got)
				for i := 1; i < len(got); i++ {
					require.Negative(t, cmp.Compare(got[i-1], got[i]))
				}

				require.Equal(t, model.Len(), ix.Len())
				require.Equal(t, ix.Len() == 0, ix.IsEmpty())

				best, ok := ix.Best()
				wantBest, wantOK := model.Best()
				require.Equal(t, wantOK, ok)
				require.Equal(t, wantBest, best)

				stats := ix.Stats()
				require.LessOrEqual(t, stats.LargestChunk, maxChunk)
				require.Equal(t, stats.Chunks == 0, ix.IsEmpty())
			},
		})
	})
}

type indexOp struct {
	kind     int
	id       int64
	price    int64
	quantity int64
}

const (
	opInsert = iota
	opRemove
	opUpdate
)

func TestProperty_UpdateIsRemoveThenInsert(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		side := sideGen.Draw(t, "side")
		maxChunk := rapid.IntRange(1, 6).Draw(t, "maxChunk")
		n := rapid.IntRange(0, 200).Draw(t, "n")

		ops := make([]indexOp, 0, n)
		var nextID int64
		for range n {
			op := indexOp{kind: rapid.IntRange(opInsert, opUpdate).Draw(t, "kind")}
			switch op.kind {
			case opInsert:
				op.id = nextID
				nextID++
				op.quantity = quantityGen.Draw(t, "quantity")
			default:
				op.id = rapid.Int64Range(0, nextID+1).Draw(t, "id")
			}
			op.price = priceGen.Draw(t, "price")
			ops = append(ops, op)
		}

		direct := NewSide(side, WithMaxChunkSize(maxChunk))
		replayed := NewSide(side, WithMaxChunkSize(maxChunk))

		for _, op := range ops {
			switch op.kind {
			case opInsert:
				order := core.NewOrder(op.id, side, op.price, op.quantity)
				direct.Insert(order)
				replayed.Insert(order)
			case opRemove:
				direct.RemoveByID(op.id)
				replayed.RemoveByID(op.id)
			case opUpdate:
				direct.UpdateByID(op.id, op.price)
				if order, ok := replayed.RemoveByID(op.id); ok {
					replayed.Insert(order.WithPrice(op.price))
				}
			}
		}

		require.Equal(t, slices.Collect(replayed.All()), slices.Collect(direct.All()))
		require.NoError(t, direct.Verify())
	})
}

func TestProperty_InsertOnlyIsSorted(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		side := sideGen.Draw(t, "side")
		maxChunk := rapid.IntRange(1, 16).Draw(t, "maxChunk")
		prices := rapid.SliceOf(rapid.Int64Range(-10000, 10000)).Draw(t, "prices")

		ix := NewSide(side, WithMaxChunkSize(maxChunk))
		for i, price := range prices {
			ix.Insert(core.NewOrder(int64(i), side, price, int64(i%3+1)))
		}

		got := slices.Collect(ix.All())
		require.Len(t, got, len(prices))
		require.True(t, slices.IsSortedFunc(got, core.ComparatorFor(side).Compare))
		require.NoError(t, ix.Verify())
	})
}
