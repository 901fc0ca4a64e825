package repository

import (
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCart() domain.Cart {
	return domain.Cart{Lines: []domain.CartLine{
		{ProductID: 2, Title: "Ring", Price: decimal.RequireFromString("5.50"), Image: "2.jpg", Quantity: 1},
		{ProductID: 1, Title: "Backpack", Price: decimal.RequireFromString("109.95"), Image: "1.jpg", Quantity: 3},
		{ProductID: 9, Title: "Sticker", Price: decimal.RequireFromString("0.333"), Image: "", Quantity: 12},
	}}
}

// assertSameCart compares lines field by field; decimals are compared by
// value since their internal exponent may differ after a round trip.
func assertSameCart(t *testing.T, want, got domain.Cart) {
	t.Helper()
	require.Len(t, got.Lines, len(want.Lines))
	for i := range want.Lines {
		w, g := want.Lines[i], got.Lines[i]
		assert.Equal(t, w.ProductID, g.ProductID, "line %d", i)
		assert.Equal(t, w.Title, g.Title, "line %d", i)
		assert.Equal(t, w.Image, g.Image, "line %d", i)
		assert.Equal(t, w.Quantity, g.Quantity, "line %d", i)
		assert.True(t, w.Price.Equal(g.Price), "line %d price: want %s got %s", i, w.Price, g.Price)
	}
}
