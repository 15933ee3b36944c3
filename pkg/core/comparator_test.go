package core

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBidOrder_Compare(t *testing.T) {
	tests := []struct {
		name string
		a, b Order
		want int
	}{
		{"higher price first", NewOrder(1, Buy, 110, 1), NewOrder(0, Buy, 100, 9), -1},
		{"lower price last", NewOrder(0, Buy, 100, 9), NewOrder(1, Buy, 110, 1), 1},
		{"larger quantity first", NewOrder(1, Buy, 100, 9), NewOrder(0, Buy, 100, 5), -1},
		{"earlier id first", NewOrder(0, Buy, 100, 5), NewOrder(1, Buy, 100, 5), -1},
		{"same order", NewOrder(2, Buy, 100, 5), NewOrder(2, Buy, 100, 5), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sign(BidOrder{}.Compare(tt.a, tt.b)))
		})
	}
}

func TestAskOrder_Compare(t *testing.T) {
	tests := []struct {
		name string
		a, b Order
		want int
	}{
		{"lower price first", NewOrder(1, Sell, 90, 9), NewOrder(0, Sell, 100, 1), -1},
		{"negative prices", NewOrder(1, Sell, -10, 1), NewOrder(0, Sell, -5, 1), -1},
		{"smaller quantity first", NewOrder(1, Sell, 100, 2), NewOrder(0, Sell, 100, 5), -1},
		{"earlier id first", NewOrder(0, Sell, 100, 5), NewOrder(1, Sell, 100, 5), -1},
		{"later id last", NewOrder(3, Sell, 100, 5), NewOrder(1, Sell, 100, 5), 1},
		{"same order", NewOrder(2, Sell, 100, 5), NewOrder(2, Sell, 100, 5), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sign(AskOrder{}.Compare(tt.a, tt.b)))
		})
	}
}

func TestComparatorFor(t *testing.T) {
	assert.Equal(t, BidOrder{}, ComparatorFor(Buy))
	assert.Equal(t, AskOrder{}, ComparatorFor(Sell))
}

func TestComparatorFunc(t *testing.T) {
	byID := ComparatorFunc(func(a, b Order) int { return int(a.ID() - b.ID()) })

	orders := []Order{NewOrder(2, Buy, 1, 1), NewOrder(0, Buy, 1, 1), NewOrder(1, Buy, 1, 1)}
	slices.SortFunc(orders, byID.Compare)

	assert.Equal(t, []int64{0, 1, 2}, []int64{orders[0].ID(), orders[1].ID(), orders[2].ID()})
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
