package cart

import (
	"context"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

var ErrUnknownProduct = errors.New("unknown product")

// Service owns every cart of the process. Calls for the same owner are
// serialized, so each cart sees the single-threaded semantics of Cart while
// different owners proceed in parallel.
type Service struct {
	store     Store
	products  ProductSource
	log       *zap.Logger
	listeners []Listener

	locks ownerLocks
}

func NewService(store Store, products ProductSource, log *zap.Logger, listeners ...Listener) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:     store,
		products:  products,
		log:       log,
		listeners: listeners,
		locks:     ownerLocks{m: map[string]*ownerLock{}},
	}
}

func (s *Service) Ping(ctx context.Context) error { return s.store.Ping(ctx) }

func (s *Service) Get(ctx context.Context, owner string) (*Cart, error) {
	unlock := s.locks.lock(owner)
	defer unlock()

	return s.load(ctx, owner)
}

// Add looks productID up in the catalog and adds qty of it.
func (s *Service) Add(ctx context.Context, owner, productID string, qty int) (*Cart, error) {
	productID = strings.TrimSpace(productID)
	if qty < 1 {
		return nil, errors.Wrapf(ErrInvalidQuantity, "quantity %d", qty)
	}
	if productID == "" {
		return nil, errors.Wrap(ErrUnknownProduct, "empty product id")
	}

	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrCatalogNotFound) {
			return nil, errors.Wrapf(ErrUnknownProduct, "%s", productID)
		}
		return nil, err
	}

	return s.mutate(ctx, owner, func(c *Cart) error { return c.AddToCart(p, qty) })
}

func (s *Service) Update(ctx context.Context, owner, productID string, qty int) (*Cart, error) {
	return s.mutate(ctx, owner, func(c *Cart) error { return c.UpdateQuantity(productID, qty) })
}

func (s *Service) Remove(ctx context.Context, owner, productID string) (*Cart, error) {
	return s.mutate(ctx, owner, func(c *Cart) error { return c.RemoveFromCart(productID) })
}

func (s *Service) Clear(ctx context.Context, owner string) (*Cart, error) {
	return s.mutate(ctx, owner, func(c *Cart) error {
		c.ClearCart()
		return nil
	})
}

func (s *Service) load(ctx context.Context, owner string) (*Cart, error) {
	lines, err := s.store.Load(ctx, owner)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	return Restore(owner, lines), nil
}

// mutate applies fn to the owner's cart and persists the result. Events are
// delivered to the service listeners only once the cart is saved.
func (s *Service) mutate(ctx context.Context, owner string, fn func(*Cart) error) (*Cart, error) {
	unlock := s.locks.lock(owner)
	defer unlock()

	c, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}

	var pending []Event
	unsubscribe := c.Subscribe(func(e Event) { pending = append(pending, e) })
	err = fn(c)
	unsubscribe()
	if err != nil {
		return nil, err
	}

	if c.IsEmpty() {
		err = s.store.Delete(ctx, owner)
	} else {
		err = s.store.Save(ctx, owner, c.Lines())
	}
	if err != nil {
		return nil, errors.Wrap(err, "save cart")
	}

	for _, e := range pending {
		s.log.Debug("cart mutated",
			zap.String("owner", e.Owner),
			zap.String("kind", string(e.Kind)),
			zap.String("product_id", e.ProductID),
			zap.Int("item_count", e.ItemCount),
		)
		for _, l := range s.listeners {
			l(e)
		}
	}
	return c, nil
}

type ownerLock struct {
	sync.Mutex
	refs int
}

// ownerLocks hands out one mutex per owner and forgets it once nobody holds
// or waits on it.
type ownerLocks struct {
	mu sync.Mutex
	m  map[string]*ownerLock
}

func (l *ownerLocks) lock(owner string) (unlock func()) {
	l.mu.Lock()
	ol, ok := l.m[owner]
	if !ok {
		ol = &ownerLock{}
		l.m[owner] = ol
	}
	ol.refs++
	l.mu.Unlock()

	ol.Lock()
	return func() {
		ol.Unlock()

		l.mu.Lock()
		ol.refs--
		if ol.refs == 0 {
			delete(l.m, owner)
		}
		l.mu.Unlock()
	}
}
