package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummary(t *testing.T) {
	cases := []struct {
		name     string
		lines    []Line
		subtotal string
		shipping string
		tax      string
		total    string
	}{
		{"empty", nil, "0", "0", "0", "0"},
		{"under threshold", []Line{{Product: product("p1", "49.99"), Quantity: 1}}, "49.99", "9.99", "4", "63.98"},
		{"at threshold", []Line{{Product: product("p1", "25.00"), Quantity: 2}}, "50", "9.99", "4", "63.99"},
		{"over threshold", []Line{{Product: product("p1", "50.01"), Quantity: 1}}, "50.01", "0", "4", "54.01"},
		{"tax rounding", []Line{{Product: onSale(product("p1", "89.99"), "79.99"), Quantity: 2}}, "159.98", "0", "12.8", "172.78"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Restore("u1", tc.lines).Summary()

			assert.True(t, money(tc.subtotal).Equal(s.Subtotal), "subtotal %s", s.Subtotal)
			assert.True(t, money(tc.shipping).Equal(s.Shipping), "shipping %s", s.Shipping)
			assert.True(t, money(tc.tax).Equal(s.Tax), "tax %s", s.Tax)
			assert.True(t, money(tc.total).Equal(s.Total), "total %s", s.Total)
		})
	}
}

func TestSummary_ItemCount(t *testing.T) {
	c := New("u1")
	require.NoError(t, c.AddToCart(product("p1", "1.00"), 2))
	require.NoError(t, c.AddToCart(product("p2", "1.00"), 3))

	assert.Equal(t, 5, c.Summary().ItemCount)
}
