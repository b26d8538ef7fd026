package catalog

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound       = errors.New("product not found")
	ErrInvalidProduct = errors.New("invalid product")
)

type Product struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	FullDescription string           `json:"full_description,omitempty"`
	Price           decimal.Decimal  `json:"price"`
	SalePrice       *decimal.Decimal `json:"sale_price,omitempty"`
	OnSale          bool             `json:"on_sale"`
	Category        string           `json:"category"`
	Images          []string         `json:"images"`
	Rating          float64          `json:"rating"`
	ReviewCount     int              `json:"review_count"`
	InStock         bool             `json:"in_stock"`
	Featured        bool             `json:"featured"`
	IsNew           bool             `json:"is_new"`
	IsBestseller    bool             `json:"is_bestseller"`
	Specifications  []Specification  `json:"specifications,omitempty"`
	Reviews         []Review         `json:"reviews,omitempty"`
}

type Specification struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Review struct {
	Author  string `json:"author"`
	Rating  int    `json:"rating"`
	Date    string `json:"date"`
	Content string `json:"content"`
}

// EffectivePrice is the sale price while the product is on sale, else the list price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.OnSale && p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// Spec returns the value of the named specification, matched case-insensitively.
func (p Product) Spec(name string) (string, bool) {
	for _, s := range p.Specifications {
		if strings.EqualFold(s.Name, name) {
			return s.Value, true
		}
	}
	return "", false
}

func (p Product) Validate() error {
	switch {
	case strings.TrimSpace(p.ID) == "":
		return errors.Wrap(ErrInvalidProduct, "empty id")
	case strings.TrimSpace(p.Name) == "":
		return errors.Wrapf(ErrInvalidProduct, "%s: empty name", p.ID)
	case p.Price.IsNegative():
		return errors.Wrapf(ErrInvalidProduct, "%s: negative price", p.ID)
	case len(p.Images) == 0:
		return errors.Wrapf(ErrInvalidProduct, "%s: no images", p.ID)
	case p.Rating < 0 || p.Rating > 5:
		return errors.Wrapf(ErrInvalidProduct, "%s: rating out of range", p.ID)
	case p.ReviewCount < 0:
		return errors.Wrapf(ErrInvalidProduct, "%s: negative review count", p.ID)
	}

	if p.OnSale {
		if p.SalePrice == nil {
			return errors.Wrapf(ErrInvalidProduct, "%s: on sale without sale price", p.ID)
		}
		if p.SalePrice.IsNegative() || !p.SalePrice.LessThan(p.Price) {
			return errors.Wrapf(ErrInvalidProduct, "%s: sale price must be below price", p.ID)
		}
	}
	return nil
}
