package catalog

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"AslyStore/pkg/kit"
)

const (
	readyTimeout   = 1 * time.Second
	defaultRelated = 8
	maxCollection  = 50
)

var errBadParam = errors.New("bad query parameter")

type Server struct {
	Store Store
	Log   *zap.Logger

	PageSize    int
	MaxPageSize int
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", kit.Healthz)
	r.Get("/readyz", s.readyz)

	r.Get("/products", s.list)
	r.Get("/products/{id}", s.get)
	r.Get("/products/{id}/related", s.related)
	r.Get("/collections/{name}", s.collection)
	r.Get("/categories", s.categories)
	r.Get("/categories/{id}", s.category)

	return r
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.Store.Ping(ctx); err != nil {
		s.logWarn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type listResp struct {
	Page
	Category string    `json:"category,omitempty"`
	Query    string    `json:"query,omitempty"`
	Sort     SortOrder `json:"sort"`
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	l, err := s.parseListing(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	products, err := s.Store.List(r.Context())
	if err != nil {
		s.writeError(w, r, errors.Wrap(err, "list products"))
		return
	}

	page, err := Apply(products, l)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	kit.WriteJSON(w, http.StatusOK, listResp{
		Page:     page,
		Category: l.Category,
		Query:    l.Query,
		Sort:     l.Sort,
	})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) related(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r.URL.Query(), "limit", defaultRelated)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	p, ok := s.lookup(w, r)
	if !ok {
		return
	}

	products, err := s.Store.List(r.Context())
	if err != nil {
		s.writeError(w, r, errors.Wrap(err, "list products"))
		return
	}

	kit.WriteJSON(w, http.StatusOK, Related(products, p, limit))
}

func (s *Server) collection(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(q, "limit", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if limit <= 0 || limit > maxCollection {
		limit = maxCollection
	}

	products, err := s.Store.List(r.Context())
	if err != nil {
		s.writeError(w, r, errors.Wrap(err, "list products"))
		return
	}

	out, err := Collection(products, chi.URLParam(r, "name"), q.Get("exclude"), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) categories(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, Categories())
}

func (s *Server) category(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, ok := LookupCategory(id)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	c.Facets = FacetsFor(c.ID)
	kit.WriteJSON(w, http.StatusOK, c)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (Product, bool) {
	id := chi.URLParam(r, "id")

	p, ok, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, errors.Wrapf(err, "get product %s", id))
		return Product{}, false
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return Product{}, false
	}
	return p, true
}

func (s *Server) parseListing(q url.Values) (Listing, error) {
	order, err := ParseSort(q.Get("sort"))
	if err != nil {
		return Listing{}, err
	}

	page, err := intParam(q, "page", 1)
	if err != nil {
		return Listing{}, err
	}

	size, err := intParam(q, "page_size", s.PageSize)
	if err != nil {
		return Listing{}, err
	}
	if size <= 0 || (s.MaxPageSize > 0 && size > s.MaxPageSize) {
		size = s.PageSize
	}

	l := Listing{
		Category: strings.TrimSpace(q.Get("category")),
		Query:    strings.TrimSpace(q.Get("query")),
		Sort:     order,
		Page:     page,
		PageSize: size,
	}

	if v := q.Get("in_stock"); v != "" {
		if l.InStock, err = strconv.ParseBool(v); err != nil {
			return Listing{}, errors.Wrap(errBadParam, "in_stock")
		}
	}
	if l.MinPrice, err = priceParam(q, "min_price"); err != nil {
		return Listing{}, err
	}
	if l.MaxPrice, err = priceParam(q, "max_price"); err != nil {
		return Listing{}, err
	}

	// Only the active category's facet keys select products; other
	// parameters are ignored.
	for _, f := range FacetsFor(l.Category) {
		ids := splitList(q[f.Key])
		if len(ids) == 0 {
			continue
		}
		if l.Facets == nil {
			l.Facets = FacetSelection{}
		}
		l.Facets[f.Key] = ids
	}

	return l, nil
}

func intParam(q url.Values, key string, def int) (int, error) {
	v := q.Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrap(errBadParam, key)
	}
	return n, nil
}

func priceParam(q url.Values, key string) (*decimal.Decimal, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil || d.IsNegative() {
		return nil, errors.Wrap(errBadParam, key)
	}
	return &d, nil
}

// splitList accepts both repeated keys and comma separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errBadParam), errors.Is(err, ErrUnknownSort), errors.Is(err, ErrUnknownFacet):
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, ErrUnknownCollection):
		kit.WriteError(w, r, http.StatusNotFound, err.Error(), nil)
	default:
		s.logError("catalog request failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func (s *Server) logWarn(msg string, fields ...zap.Field) {
	if s.Log != nil {
		s.Log.Warn(msg, fields...)
	}
}

func (s *Server) logError(msg string, fields ...zap.Field) {
	if s.Log != nil {
		s.Log.Error(msg, fields...)
	}
}
