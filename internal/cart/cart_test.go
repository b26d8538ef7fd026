package cart

import (
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func product(id, price string) Product {
	return Product{ID: id, Name: "Product " + id, Price: money(price), InStock: true}
}

func onSale(p Product, price string) Product {
	sp := money(price)
	p.SalePrice, p.OnSale = &sp, true
	return p
}

func TestCart_Scenario(t *testing.T) {
	c := New("u1")
	p1 := product("p1", "10.00")

	require.NoError(t, c.AddToCart(p1, 2))
	require.NoError(t, c.AddToCart(p1, 3))
	l, ok := c.Line("p1")
	require.True(t, ok)
	assert.Equal(t, 5, l.Quantity)
	assert.Len(t, c.Lines(), 1)

	require.NoError(t, c.UpdateQuantity("p1", 1))
	l, _ = c.Line("p1")
	assert.Equal(t, 1, l.Quantity)

	require.NoError(t, c.RemoveFromCart("p1"))
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0, c.ItemCount())
	assert.True(t, c.Subtotal().IsZero())
}

func TestCart_RepeatedAddsSum(t *testing.T) {
	c := New("u1")
	p := product("p1", "1.00")

	sum := 0
	for _, q := range []int{1, 4, 2, 7, 3} {
		require.NoError(t, c.AddToCart(p, q))
		sum += q
	}

	require.Len(t, c.Lines(), 1)
	assert.Equal(t, sum, c.Lines()[0].Quantity)
	assert.Equal(t, sum, c.ItemCount())
}

func TestCart_RemoveThenAddStartsFresh(t *testing.T) {
	c := New("u1")
	p := product("p1", "1.00")

	require.NoError(t, c.AddToCart(p, 6))
	require.NoError(t, c.RemoveFromCart("p1"))
	require.NoError(t, c.AddToCart(p, 2))

	l, ok := c.Line("p1")
	require.True(t, ok)
	assert.Equal(t, 2, l.Quantity)
}

func TestCart_SubtotalUsesEffectivePrice(t *testing.T) {
	c := New("u1")
	require.NoError(t, c.AddToCart(onSale(product("p1", "89.99"), "79.99"), 2))
	require.NoError(t, c.AddToCart(product("p2", "64.50"), 1))

	// A sale price without the on-sale flag is ignored.
	stale := product("p3", "10.00")
	sp := money("5.00")
	stale.SalePrice = &sp
	require.NoError(t, c.AddToCart(stale, 3))

	assert.True(t, money("254.48").Equal(c.Subtotal()), c.Subtotal().String())
	assert.Equal(t, 6, c.ItemCount())
}

func TestCart_LinesKeepInsertionOrder(t *testing.T) {
	c := New("u1")
	for _, id := range []string{"p3", "p1", "p2"} {
		require.NoError(t, c.AddToCart(product(id, "1.00"), 1))
	}
	require.NoError(t, c.AddToCart(product("p3", "1.00"), 1))

	var ids []string
	for _, l := range c.Lines() {
		ids = append(ids, l.Product.ID)
	}
	assert.Equal(t, []string{"p3", "p1", "p2"}, ids)
}

func TestCart_Errors(t *testing.T) {
	c := New("u1")
	p := product("p1", "1.00")

	assert.ErrorIs(t, c.AddToCart(p, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, c.AddToCart(p, -2), ErrInvalidQuantity)

	out := p
	out.InStock = false
	assert.ErrorIs(t, c.AddToCart(out, 1), ErrOutOfStock)

	assert.ErrorIs(t, c.UpdateQuantity("p1", 1), ErrProductNotFound)
	assert.ErrorIs(t, c.RemoveFromCart("p1"), ErrProductNotFound)
	assert.True(t, c.IsEmpty())

	require.NoError(t, c.AddToCart(p, 3))
	assert.ErrorIs(t, c.UpdateQuantity("p1", 0), ErrInvalidQuantity)
	assert.ErrorIs(t, c.UpdateQuantity("p1", -1), ErrInvalidQuantity)

	l, _ := c.Line("p1")
	assert.Equal(t, 3, l.Quantity)
}

func TestCart_AddSumsWithoutLimit(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	p := product("p1", "1.00")

	for round := 0; round < 50; round++ {
		c := New("u1")
		want := 0
		for n := rng.IntN(40) + 1; n > 0; n-- {
			qty := rng.IntN(25) + 1
			require.NoError(t, c.AddToCart(p, qty))
			want += qty
		}

		require.Len(t, c.Lines(), 1)
		l, _ := c.Line("p1")
		assert.Equal(t, want, l.Quantity)
		assert.Equal(t, want, c.ItemCount())
	}

	c := New("u1")
	for i := 0; i < 11; i++ {
		require.NoError(t, c.AddToCart(p, 10))
	}
	require.NoError(t, c.UpdateQuantity("p1", 250))
	l, _ := c.Line("p1")
	assert.Equal(t, 250, l.Quantity)
}

func TestCart_AddRefreshesSnapshot(t *testing.T) {
	c := New("u1")
	require.NoError(t, c.AddToCart(product("p1", "10.00"), 1))
	require.NoError(t, c.AddToCart(onSale(product("p1", "10.00"), "8.00"), 1))

	assert.True(t, money("16.00").Equal(c.Subtotal()))
}

func TestCart_ListenersSeeEveryMutation(t *testing.T) {
	c := New("u1")
	p := product("p1", "1.00")

	var events []Event
	unsubscribe := c.Subscribe(func(e Event) {
		// notified after the change is applied
		assert.Equal(t, e.ItemCount, c.ItemCount())
		events = append(events, e)
	})

	require.NoError(t, c.AddToCart(p, 2))
	require.NoError(t, c.AddToCart(p, 3))
	require.NoError(t, c.UpdateQuantity("p1", 1))
	require.NoError(t, c.RemoveFromCart("p1"))
	c.ClearCart()

	// failed mutations are silent
	_ = c.RemoveFromCart("p1")
	_ = c.AddToCart(p, 0)

	require.Len(t, events, 5)
	assert.Equal(t, []EventKind{
		EventItemAdded, EventItemAdded, EventQuantityUpdated, EventItemRemoved, EventCartCleared,
	}, []EventKind{events[0].Kind, events[1].Kind, events[2].Kind, events[3].Kind, events[4].Kind})
	assert.Equal(t, 5, events[1].Quantity)
	assert.Equal(t, 1, events[2].Quantity)
	assert.Equal(t, 0, events[3].Quantity)
	assert.Equal(t, "u1", events[0].Owner)
	assert.Equal(t, "p1", events[0].ProductID)

	unsubscribe()
	require.NoError(t, c.AddToCart(p, 1))
	assert.Len(t, events, 5)
}

func TestCart_ListenersRunInSubscriptionOrder(t *testing.T) {
	c := New("u1")

	var order []int
	for i := range 3 {
		c.Subscribe(func(Event) { order = append(order, i) })
	}
	c.ClearCart()

	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestRestore(t *testing.T) {
	c := Restore("u1", []Line{
		{Product: product("p1", "1.00"), Quantity: 2},
		{Product: product("p2", "1.00"), Quantity: 0},
		{Product: product("p1", "1.00"), Quantity: 3},
		{Product: product("p3", "1.00"), Quantity: 500},
	})

	require.Len(t, c.Lines(), 2)
	l, _ := c.Line("p1")
	assert.Equal(t, 5, l.Quantity)
	l, _ = c.Line("p3")
	assert.Equal(t, 500, l.Quantity)
	assert.Equal(t, "u1", c.Owner)
}
