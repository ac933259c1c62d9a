package store

import (
	"context"
	"sync"

	"github.com/shandysiswandi/gobacktest/internal/backtest/entity"
	"github.com/shandysiswandi/gobacktest/internal/pkg/pkgerror"
)

type InMemoryStore struct {
	mu    sync.RWMutex
	items []entity.Backtest
	index map[string]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		index: make(map[string]int),
	}
}

func (s *InMemoryStore) Create(ctx context.Context, bt entity.Backtest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[bt.ID]; exists {
		return pkgerror.NewBusiness("backtest already exists", pkgerror.CodeConflict)
	}

	s.index[bt.ID] = len(s.items)
	s.items = append(s.items, bt)

	return nil
}

func (s *InMemoryStore) Update(ctx context.Context, id string, fn func(bt *entity.Backtest)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return pkgerror.ErrNotFound
	}

	fn(&s.items[i])

	return nil
}

func (s *InMemoryStore) Get(ctx context.Context, id string) (entity.Backtest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return entity.Backtest{}, pkgerror.ErrNotFound
	}

	return clone(s.items[i]), nil
}

// List returns up to limit backtests, newest first.
func (s *InMemoryStore) List(ctx context.Context, limit int) ([]entity.Backtest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := min(limit, len(s.items))
	out := make([]entity.Backtest, 0, n)
	for i := len(s.items) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, clone(s.items[i]))
	}

	return out, nil
}

func clone(bt entity.Backtest) entity.Backtest {
	if bt.Metrics != nil {
		m := *bt.Metrics
		bt.Metrics = &m
	}
	if bt.Trades != nil {
		bt.Trades = append([]entity.Trade(nil), bt.Trades...)
	}
	return bt
}
