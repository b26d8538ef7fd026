package catalog

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
)

type MemStore struct {
	mu    sync.RWMutex
	items []Product
	byID  map[string]int
}

// NewMemStore validates products and indexes them by id. Duplicate ids are rejected.
func NewMemStore(products []Product) (*MemStore, error) {
	s := &MemStore{
		items: make([]Product, 0, len(products)),
		byID:  make(map[string]int, len(products)),
	}
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := s.byID[p.ID]; dup {
			return nil, errors.Wrapf(ErrInvalidProduct, "duplicate id %s", p.ID)
		}
		s.byID[p.ID] = len(s.items)
		s.items = append(s.items, p)
	}
	return s, nil
}

// NewStore returns the in-memory store holding the built-in catalog.
func NewStore() *MemStore {
	s, err := NewMemStore(Seed())
	if err != nil {
		panic(err)
	}
	return s
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) List(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id string) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return Product{}, false, nil
	}
	return s.items[i], true, nil
}
