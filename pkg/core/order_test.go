package core

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSideString(t *testing.T) {
	tests := []struct {
		name string
		side Side
		want string
	}{
		{"Buy", Buy, "Buy"},
		{"Sell", Sell, "Sell"},
		{"Invalid", Side(999), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.side.String())
		})
	}
}

func TestParseSide(t *testing.T) {
	tests := []struct {
		input   string
		want    Side
		wantErr bool
	}{
		{"Buy", Buy, false},
		{"Sell", Sell, false},
		{"buy", 0, true},
		{"SELL", 0, true},
		{"", 0, true},
		{"Hold", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSide(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSide)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}

	assert.False(t, Side(7).Valid())
}

func TestNewOrder(t *testing.T) {
	order := NewOrder(3, Sell, -25, 40)

	assert.Equal(t, int64(3), order.ID())
	assert.Equal(t, Sell, order.Side())
	assert.Equal(t, int64(-25), order.Price())
	assert.Equal(t, int64(40), order.Quantity())
}

func TestOrder_WithPrice(t *testing.T) {
	order := NewOrder(1, Buy, 100, 5)
	moved := order.WithPrice(90)

	assert.Equal(t, int64(100), order.Price(), "original must be untouched")
	assert.Equal(t, int64(90), moved.Price())
	assert.Equal(t, order.ID(), moved.ID())
	assert.Equal(t, order.Side(), moved.Side())
	assert.Equal(t, order.Quantity(), moved.Quantity())
}

func TestOrder_String(t *testing.T) {
	assert.Equal(t, "Buy 110 3", NewOrder(1, Buy, 110, 3).String())
	assert.Equal(t, "Sell -7 1000000", NewOrder(2, Sell, -7, 1000000).String())
}

func TestOrder_MarshalZerologObject(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	logger.Info().EmbedObject(NewOrder(4, Sell, 50, 2)).Msg("order")

	assert.JSONEq(t,
		`{"level":"info","id":4,"side":"Sell","price":50,"quantity":2,"message":"order"}`,
		buf.String())
}
