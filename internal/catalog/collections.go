package catalog

import "github.com/go-faster/errors"

var ErrUnknownCollection = errors.New("unknown collection")

const (
	CollectionFeatured    = "featured"
	CollectionNew         = "new"
	CollectionBestsellers = "bestsellers"
)

// Collection returns the products shown in a home page carousel: one of the
// flag groups or a category, minus the excluded product id.
func Collection(products []Product, name, exclude string, limit int) ([]Product, error) {
	var keep func(Product) bool

	switch name {
	case CollectionFeatured:
		keep = func(p Product) bool { return p.Featured }
	case CollectionNew:
		keep = func(p Product) bool { return p.IsNew }
	case CollectionBestsellers:
		keep = func(p Product) bool { return p.IsBestseller }
	default:
		if _, ok := LookupCategory(name); !ok {
			return nil, errors.Wrapf(ErrUnknownCollection, "%q", name)
		}
		keep = func(p Product) bool { return p.Category == name }
	}

	out := make([]Product, 0)
	for _, p := range products {
		if p.ID == exclude || !keep(p) {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Related lists other products in the same category as p.
func Related(products []Product, p Product, limit int) []Product {
	out := make([]Product, 0)
	for _, c := range products {
		if c.Category != p.Category || c.ID == p.ID {
			continue
		}
		out = append(out, c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
