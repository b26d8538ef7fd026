package cart

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"AslyStore/internal/auth"
	"AslyStore/pkg/kit"
)

const readyTimeout = 1 * time.Second

type Server struct {
	Cart *Service
	Log  *zap.Logger

	// JWT, when set, makes the service verify the forwarded bearer token
	// instead of trusting the gateway's identity header alone.
	JWT *auth.TokenMaker
}

// MaxRequestQuantity bounds the quantity a single add or update request may
// carry. Lines themselves have no upper limit.
const MaxRequestQuantity = 99

// Quantity defaults to 1 when omitted.
type addReq struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

type updateReq struct {
	Quantity int `json:"quantity"`
}

type lineResp struct {
	Line
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type cartResp struct {
	Owner   string     `json:"owner"`
	Items   []lineResp `json:"items"`
	Summary Summary    `json:"summary"`
}

func newCartResp(c *Cart) cartResp {
	lines := c.Lines()
	items := make([]lineResp, 0, len(lines))
	for _, l := range lines {
		items = append(items, lineResp{Line: l, UnitPrice: l.Product.UnitPrice(), LineTotal: l.Total()})
	}
	return cartResp{Owner: c.Owner, Items: items, Summary: c.Summary()}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", kit.Healthz)
	r.Get("/readyz", s.readyz)

	r.Group(func(pr chi.Router) {
		if s.JWT != nil {
			pr.Use(AuthJWT(s.JWT))
		} else {
			pr.Use(RequireUserHeaders)
		}
		pr.Get("/cart", s.get)
		pr.Delete("/cart", s.clear)
		pr.Post("/cart/items", s.add)
		pr.Put("/cart/items/{productID}", s.update)
		pr.Delete("/cart/items/{productID}", s.remove)
	})

	return r
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.Cart.Ping(ctx); err != nil {
		if s.Log != nil {
			s.Log.Warn("readyz failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	owner, _ := OwnerFromContext(r.Context())
	s.respond(w, r)(s.Cart.Get(r.Context(), owner))
}

func (s *Server) add(w http.ResponseWriter, r *http.Request) {
	owner, _ := OwnerFromContext(r.Context())

	var req addReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	if qty > MaxRequestQuantity {
		s.writeError(w, r, errors.Wrapf(ErrInvalidQuantity, "quantity %d", qty))
		return
	}

	s.respond(w, r)(s.Cart.Add(r.Context(), owner, req.ProductID, qty))
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	owner, _ := OwnerFromContext(r.Context())

	var req updateReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}
	if req.Quantity > MaxRequestQuantity {
		s.writeError(w, r, errors.Wrapf(ErrInvalidQuantity, "quantity %d", req.Quantity))
		return
	}

	s.respond(w, r)(s.Cart.Update(r.Context(), owner, chi.URLParam(r, "productID"), req.Quantity))
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	owner, _ := OwnerFromContext(r.Context())
	s.respond(w, r)(s.Cart.Remove(r.Context(), owner, chi.URLParam(r, "productID")))
}

func (s *Server) clear(w http.ResponseWriter, r *http.Request) {
	owner, _ := OwnerFromContext(r.Context())
	s.respond(w, r)(s.Cart.Clear(r.Context(), owner))
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request) func(*Cart, error) {
	return func(c *Cart, err error) {
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		kit.WriteJSON(w, http.StatusOK, newCartResp(c))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidQuantity):
		kit.WriteError(w, r, http.StatusBadRequest, "invalid quantity",
			map[string]any{"min": 1, "max": MaxRequestQuantity})
	case errors.Is(err, ErrUnknownProduct):
		kit.WriteError(w, r, http.StatusBadRequest, "invalid product_id", nil)
	case errors.Is(err, ErrProductNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "not in cart", nil)
	case errors.Is(err, ErrOutOfStock):
		kit.WriteError(w, r, http.StatusConflict, "out of stock", nil)
	case errors.Is(err, ErrCatalogUnavailable):
		kit.WriteError(w, r, http.StatusServiceUnavailable, "catalog unavailable", nil)
	case errors.Is(err, ErrCatalogBadStatus):
		kit.WriteError(w, r, http.StatusBadGateway, "catalog error", nil)
	case isTimeoutErr(err):
		kit.WriteError(w, r, http.StatusGatewayTimeout, "timeout", nil)
	default:
		if s.Log != nil {
			s.Log.Error("cart request failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func isTimeoutErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
