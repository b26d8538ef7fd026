// Package cart holds the shopping cart: the single-owner Cart value with its
// mutation rules, the per-owner Service around it, and the HTTP surface of
// the cart service.
package cart

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrProductNotFound = errors.New("product not in cart")
	ErrOutOfStock      = errors.New("product out of stock")
)

// Product is the snapshot of a catalog product kept on a cart line, enough to
// price and render the line without asking the catalog again.
type Product struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Price     decimal.Decimal  `json:"price"`
	SalePrice *decimal.Decimal `json:"sale_price,omitempty"`
	OnSale    bool             `json:"on_sale"`
	Image     string           `json:"image,omitempty"`
	InStock   bool             `json:"in_stock"`
}

// UnitPrice is the sale price while the product is on sale, else the list price.
func (p Product) UnitPrice() decimal.Decimal {
	if p.OnSale && p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

type Line struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

func (l Line) Total() decimal.Decimal {
	return l.Product.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type EventKind string

const (
	EventItemAdded       EventKind = "item_added"
	EventQuantityUpdated EventKind = "quantity_updated"
	EventItemRemoved     EventKind = "item_removed"
	EventCartCleared     EventKind = "cart_cleared"
)

// Event describes one completed cart mutation. Quantity is the resulting line
// quantity (0 once the line is gone) and ItemCount the resulting cart total.
type Event struct {
	Kind      EventKind `json:"kind"`
	Owner     string    `json:"owner"`
	ProductID string    `json:"product_id,omitempty"`
	Quantity  int       `json:"quantity"`
	ItemCount int       `json:"item_count"`
	At        time.Time `json:"at"`
}

type Listener func(Event)

// Cart is one owner's cart. At most one line exists per product id and lines
// keep the order in which they were first added. A Cart is not safe for
// concurrent use; Service serializes access per owner.
type Cart struct {
	Owner string

	lines   []Line
	subs    []subscriber
	nextSub int
	now     func() time.Time
}

type subscriber struct {
	id int
	fn Listener
}

func New(owner string) *Cart {
	return &Cart{Owner: owner, now: time.Now}
}

// Restore rebuilds a cart from persisted lines. Lines with a non-positive
// quantity are dropped and repeated product ids are merged.
func Restore(owner string, lines []Line) *Cart {
	c := New(owner)
	for _, l := range lines {
		if l.Quantity < 1 || l.Product.ID == "" {
			continue
		}
		if i := c.index(l.Product.ID); i >= 0 {
			c.lines[i].Quantity += l.Quantity
			continue
		}
		c.lines = append(c.lines, l)
	}
	return c
}

// Subscribe registers l for every successful mutation. Listeners run
// synchronously in subscription order, after the state change and before the
// mutating call returns.
func (c *Cart) Subscribe(l Listener) (unsubscribe func()) {
	id := c.nextSub
	c.nextSub++
	c.subs = append(c.subs, subscriber{id: id, fn: l})

	return func() {
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

func (c *Cart) notify(kind EventKind, productID string, qty int) {
	if len(c.subs) == 0 {
		return
	}

	e := Event{
		Kind:      kind,
		Owner:     c.Owner,
		ProductID: productID,
		Quantity:  qty,
		ItemCount: c.ItemCount(),
		At:        c.now().UTC(),
	}
	for _, s := range append([]subscriber(nil), c.subs...) {
		s.fn(e)
	}
}

func (c *Cart) index(productID string) int {
	for i, l := range c.lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}

// AddToCart adds qty of p, creating the line or incrementing an existing one.
// The line's product snapshot is refreshed to p.
func (c *Cart) AddToCart(p Product, qty int) error {
	if qty < 1 {
		return errors.Wrapf(ErrInvalidQuantity, "quantity %d", qty)
	}
	if !p.InStock {
		return errors.Wrapf(ErrOutOfStock, "%s", p.ID)
	}

	i := c.index(p.ID)
	if i < 0 {
		c.lines = append(c.lines, Line{Product: p, Quantity: qty})
		c.notify(EventItemAdded, p.ID, qty)
		return nil
	}

	next := c.lines[i].Quantity + qty
	c.lines[i] = Line{Product: p, Quantity: next}
	c.notify(EventItemAdded, p.ID, next)
	return nil
}

// UpdateQuantity sets the quantity of an existing line. Quantities below 1 are
// rejected; use RemoveFromCart to drop a line.
func (c *Cart) UpdateQuantity(productID string, qty int) error {
	if qty < 1 {
		return errors.Wrapf(ErrInvalidQuantity, "quantity %d", qty)
	}

	i := c.index(productID)
	if i < 0 {
		return errors.Wrapf(ErrProductNotFound, "%s", productID)
	}
	c.lines[i].Quantity = qty
	c.notify(EventQuantityUpdated, productID, qty)
	return nil
}

func (c *Cart) RemoveFromCart(productID string) error {
	i := c.index(productID)
	if i < 0 {
		return errors.Wrapf(ErrProductNotFound, "%s", productID)
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	c.notify(EventItemRemoved, productID, 0)
	return nil
}

func (c *Cart) ClearCart() {
	c.lines = nil
	c.notify(EventCartCleared, "", 0)
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Line(productID string) (Line, bool) {
	if i := c.index(productID); i >= 0 {
		return c.lines[i], true
	}
	return Line{}, false
}

func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

// Subtotal is the sum of unit price times quantity over all lines.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Total())
	}
	return total
}

// ItemCount is the sum of all line quantities.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}
