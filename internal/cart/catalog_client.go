package cart

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrCatalogNotFound    = errors.New("catalog product not found")
	ErrCatalogBadStatus   = errors.New("catalog bad status")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

// ProductSource resolves a product id to the snapshot stored on a cart line.
type ProductSource interface {
	GetProduct(ctx context.Context, id string) (Product, error)
}

// catalogProduct is the subset of the catalog product document the cart needs.
type catalogProduct struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Price     decimal.Decimal  `json:"price"`
	SalePrice *decimal.Decimal `json:"sale_price"`
	OnSale    bool             `json:"on_sale"`
	Images    []string         `json:"images"`
	InStock   bool             `json:"in_stock"`
}

type CatalogClient struct {
	BaseURL string
	Client  *http.Client
}

func NewCatalogClient(baseURL string, timeout time.Duration) *CatalogClient {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &CatalogClient{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (c *CatalogClient) GetProduct(ctx context.Context, id string) (Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/products/"+url.PathEscape(id), nil)
	if err != nil {
		return Product{}, errors.Wrap(err, "build catalog request")
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return Product{}, errors.Wrap(ErrCatalogUnavailable, err.Error())
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return Product{}, errors.Wrapf(ErrCatalogNotFound, "%s", id)
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return Product{}, errors.Wrapf(ErrCatalogBadStatus, "status=%d", resp.StatusCode)
	}

	var p catalogProduct
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return Product{}, errors.Wrap(err, "decode catalog product")
	}

	snap := Product{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		SalePrice: p.SalePrice,
		OnSale:    p.OnSale,
		InStock:   p.InStock,
	}
	if len(p.Images) > 0 {
		snap.Image = p.Images[0]
	}
	return snap, nil
}
