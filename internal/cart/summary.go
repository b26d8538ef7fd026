package cart

import "github.com/shopspring/decimal"

var (
	// FreeShippingOver is the subtotal above which shipping is free.
	FreeShippingOver = decimal.NewFromInt(50)
	ShippingFee      = decimal.RequireFromString("9.99")
	TaxRate          = decimal.RequireFromString("0.08")
)

// Summary is the order summary shown next to the cart.
type Summary struct {
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
}

// Summary prices the cart. An empty cart costs nothing, shipping included.
func (c *Cart) Summary() Summary {
	sub := c.Subtotal()

	shipping := decimal.Zero
	if !c.IsEmpty() && !sub.GreaterThan(FreeShippingOver) {
		shipping = ShippingFee
	}
	tax := sub.Mul(TaxRate).Round(2)

	return Summary{
		ItemCount: c.ItemCount(),
		Subtotal:  sub,
		Shipping:  shipping,
		Tax:       tax,
		Total:     sub.Add(shipping).Add(tax),
	}
}
