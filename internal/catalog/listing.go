package catalog

import (
	"sort"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

const DefaultPageSize = 12

var ErrUnknownSort = errors.New("unknown sort order")

type SortOrder string

const (
	SortFeatured  SortOrder = "featured"
	SortPriceLow  SortOrder = "price-low"
	SortPriceHigh SortOrder = "price-high"
	SortNewest    SortOrder = "newest"
	SortRating    SortOrder = "rating"
)

func ParseSort(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return SortFeatured, nil
	case SortFeatured, SortPriceLow, SortPriceHigh, SortNewest, SortRating:
		return o, nil
	default:
		return "", errors.Wrapf(ErrUnknownSort, "%q", s)
	}
}

// Listing is the browse state of the product grid. The With* methods return a
// copy positioned on page 1, since any filter or sort change invalidates the
// current page.
type Listing struct {
	Category string
	Query    string
	Facets   FacetSelection
	InStock  bool
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     SortOrder
	Page     int
	PageSize int
}

// WithCategory switches department. Facet selections belong to the previous
// category and are dropped.
func (l Listing) WithCategory(category string) Listing {
	l.Category = category
	l.Facets = nil
	l.Page = 1
	return l
}

func (l Listing) WithQuery(q string) Listing {
	l.Query = q
	l.Page = 1
	return l
}

func (l Listing) WithFacet(key string, ids ...string) Listing {
	next := make(FacetSelection, len(l.Facets)+1)
	for k, v := range l.Facets {
		next[k] = v
	}
	if len(ids) == 0 {
		delete(next, key)
	} else {
		next[key] = ids
	}
	l.Facets = next
	l.Page = 1
	return l
}

func (l Listing) WithPriceRange(lo, hi *decimal.Decimal) Listing {
	l.MinPrice, l.MaxPrice = lo, hi
	l.Page = 1
	return l
}

func (l Listing) WithInStock(only bool) Listing {
	l.InStock = only
	l.Page = 1
	return l
}

func (l Listing) WithSort(o SortOrder) Listing {
	l.Sort = o
	l.Page = 1
	return l
}

func (l Listing) WithPage(page int) Listing {
	l.Page = page
	return l
}

// Page is one page of a listing result.
type Page struct {
	Items      []Product `json:"items"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalItems int       `json:"total_items"`
	TotalPages int       `json:"total_pages"`
	// Empty marks the "no products found" state; it is not an error.
	Empty bool `json:"empty"`
}

// Apply runs the listing pipeline over products: category, query, facets,
// sort, paginate. The input slice is not modified.
func Apply(products []Product, l Listing) (Page, error) {
	out := FilterByCategory(products, l.Category)
	out = FilterByQuery(out, l.Query)

	out, err := filterFacets(out, l)
	if err != nil {
		return Page{}, err
	}

	order := l.Sort
	if order == "" {
		order = SortFeatured
	}
	SortProducts(out, order)

	return Paginate(out, l.Page, l.PageSize), nil
}

// FilterByCategory keeps products whose category equals category exactly.
// An empty category keeps everything.
func FilterByCategory(products []Product, category string) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// FilterByQuery keeps products whose name or description contains q,
// ignoring case.
func FilterByQuery(products []Product, q string) []Product {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return products
	}

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
		}
	}
	return out
}

func filterFacets(products []Product, l Listing) ([]Product, error) {
	facets, err := resolveFacets(l.Category, l.Facets)
	if err != nil {
		return nil, err
	}
	if len(facets) == 0 && !l.InStock && l.MinPrice == nil && l.MaxPrice == nil {
		return products, nil
	}

	out := products[:0:0]
	for _, p := range products {
		if l.InStock && !p.InStock {
			continue
		}
		price := p.EffectivePrice()
		if l.MinPrice != nil && price.LessThan(*l.MinPrice) {
			continue
		}
		if l.MaxPrice != nil && price.GreaterThan(*l.MaxPrice) {
			continue
		}
		if !matchesAll(p, facets) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func matchesAll(p Product, facets []resolvedFacet) bool {
	for _, f := range facets {
		if !f.matches(p) {
			return false
		}
	}
	return true
}

// SortProducts orders products in place. The sort is stable so ties keep
// catalog order.
func SortProducts(products []Product, order SortOrder) {
	var less func(a, b Product) bool

	switch order {
	case SortPriceLow:
		less = func(a, b Product) bool { return a.EffectivePrice().LessThan(b.EffectivePrice()) }
	case SortPriceHigh:
		less = func(a, b Product) bool { return a.EffectivePrice().GreaterThan(b.EffectivePrice()) }
	case SortNewest:
		less = func(a, b Product) bool { return a.IsNew && !b.IsNew }
	case SortRating:
		less = func(a, b Product) bool {
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
			return a.ReviewCount > b.ReviewCount
		}
	default:
		less = func(a, b Product) bool { return a.Featured && !b.Featured }
	}

	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
}

// TotalPages is ceil(count / pageSize).
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 || count <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}

// Paginate cuts one 1-based page out of products. The page index is clamped
// into [1, TotalPages].
func Paginate(products []Product, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total := TotalPages(len(products), pageSize)
	if page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}

	res := Page{
		Items:      []Product{},
		Page:       page,
		PageSize:   pageSize,
		TotalItems: len(products),
		TotalPages: total,
		Empty:      len(products) == 0,
	}
	if res.Empty {
		return res
	}

	from := (page - 1) * pageSize
	to := min(from+pageSize, len(products))
	res.Items = append(res.Items, products[from:to]...)
	return res
}
