package store

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(t.TempDir())
}

func TestAddProductRoundTrip(t *testing.T) {
	s := newTestStore(t)

	price := decimal.RequireFromString("9.99")
	_, err := s.AddProduct("Nitro", price, "1 month of Discord Nitro", 5)
	require.NoError(t, err)

	got, err := s.GetProduct("Nitro")
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(price))
	assert.Equal(t, 5, got.Stock)
	assert.Equal(t, "1 month of Discord Nitro", got.Description)
	assert.False(t, got.AddedAt.IsZero())
}

func TestGetProductUnknown(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetProduct("ghost")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestRemoveProduct(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddProduct("Nitro", decimal.NewFromInt(10), "", 1)
	require.NoError(t, err)

	removed, err := s.RemoveProduct("Nitro")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.RemoveProduct("Nitro")
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = s.GetProduct("Nitro")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestSetPriceAndStock(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddProduct("Nitro", decimal.NewFromInt(10), "", 1)
	require.NoError(t, err)

	require.NoError(t, s.SetPrice("Nitro", decimal.RequireFromString("12.50")))
	require.NoError(t, s.SetStock("Nitro", 7))

	got, err := s.GetProduct("Nitro")
	require.NoError(t, err)
	assert.Equal(t, "12.5", got.Price.String())
	assert.Equal(t, 7, got.Stock)

	assert.ErrorIs(t, s.SetPrice("ghost", decimal.NewFromInt(1)), ErrProductNotFound)
	assert.ErrorIs(t, s.SetStock("ghost", 1), ErrProductNotFound)
}

func TestDecrementStockFlooredAtZero(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddProduct("Nitro", decimal.NewFromInt(10), "", 1)
	require.NoError(t, err)

	require.NoError(t, s.DecrementStock("Nitro"))
	require.NoError(t, s.DecrementStock("Nitro"))

	got, err := s.GetProduct("Nitro")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)

	// Product deleted mid-flight: decrement is a no-op, not an error.
	require.NoError(t, s.DecrementStock("ghost"))
}
