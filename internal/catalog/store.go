package catalog

import "context"

// Store is the catalog read seam. Implementations return products in display
// order.
type Store interface {
	Ping(ctx context.Context) error
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (Product, bool, error)
}
