package chunked

import (
	"iter"

	"github.com/erain9/chunkbook/pkg/core"
	"github.com/tidwall/btree"
)

// treeIndex is a balanced-tree backed side index. It is kept only as the
// model for property tests and as a baseline in benchmarks.
type treeIndex struct {
	tree *btree.BTreeG[core.Order]
	byID map[int64]core.Order
}

var _ core.SideIndex = (*treeIndex)(nil)

func newTreeIndex(cmp core.Comparator) *treeIndex {
	return &treeIndex{
		tree: btree.NewBTreeG(func(a, b core.Order) bool {
			return cmp.Compare(a, b) < 0
		}),
		byID: make(map[int64]core.Order),
	}
}

func (t *treeIndex) Insert(order core.Order) {
	t.byID[order.ID()] = order
	t.tree.Set(order)
}

func (t *treeIndex) RemoveByID(id int64) (core.Order, bool) {
	order, ok := t.byID[id]
	if !ok {
		return core.Order{}, false
	}
	delete(t.byID, id)
	t.tree.Delete(order)
	return order, true
}

func (t *treeIndex) UpdateByID(id int64, price int64) bool {
	order, ok := t.RemoveByID(id)
	if !ok {
		return false
	}
	t.Insert(order.WithPrice(price))
	return true
}

func (t *treeIndex) Get(id int64) (core.Order, bool) {
	order, ok := t.byID[id]
	return order, ok
}

func (t *treeIndex) Best() (core.Order, bool) {
	return t.tree.Min()
}

func (t *treeIndex) All() iter.Seq[core.Order] {
	return func(yield func(core.Order) bool) {
		t.tree.Scan(yield)
	}
}

func (t *treeIndex) Len() int {
	return len(t.byID)
}

func (t *treeIndex) IsEmpty() bool {
	return len(t.byID) == 0
}

func (t *treeIndex) Stats() core.IndexStats {
	return core.IndexStats{Orders: t.tree.Len()}
}
