package cart

import (
	"context"
	"sync"
)

type MemStore struct {
	mu sync.RWMutex
	m  map[string][]Line
}

func NewMemStore() *MemStore {
	return &MemStore{m: map[string][]Line{}}
}

func NewStore() Store {
	return NewMemStore()
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Load(ctx context.Context, owner string) ([]Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines := s.m[owner]
	out := make([]Line, len(lines))
	copy(out, lines)
	return out, nil
}

func (s *MemStore) Save(ctx context.Context, owner string, lines []Line) error {
	cp := make([]Line, len(lines))
	copy(cp, lines)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[owner] = cp
	return nil
}

func (s *MemStore) Delete(ctx context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, owner)
	return nil
}
