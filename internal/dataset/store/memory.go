package store

import (
	"context"
	"sync"

	"github.com/shandysiswandi/gobacktest/internal/dataset/entity"
)

// InMemoryRegistry is a process-lifetime catalog of datasets, ordered by
// first insertion. All access goes through one RWMutex.
type InMemoryRegistry struct {
	mu    sync.RWMutex
	items []entity.Dataset
	index map[string]int
}

func NewInMemoryRegistry() *InMemoryRegistry {
	return &InMemoryRegistry{
		index: make(map[string]int),
	}
}

func (r *InMemoryRegistry) Insert(ctx context.Context, ds entity.Dataset, publish func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[ds.Filename]; exists {
		return entity.ErrDuplicateFilename
	}

	if err := runHook(publish); err != nil {
		return err
	}

	r.append(ds)

	return nil
}

func (r *InMemoryRegistry) Upsert(ctx context.Context, ds entity.Dataset, publish func() error) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := runHook(publish); err != nil {
		return false, err
	}

	if i, exists := r.index[ds.Filename]; exists {
		r.items[i] = ds
		return true, nil
	}

	r.append(ds)

	return false, nil
}

func (r *InMemoryRegistry) List(ctx context.Context) ([]entity.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entity.Dataset, len(r.items))
	copy(out, r.items)

	return out, nil
}

func (r *InMemoryRegistry) Get(ctx context.Context, filename string) (entity.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[filename]
	if !ok {
		return entity.Dataset{}, entity.ErrNotFound
	}

	return r.items[i], nil
}

func (r *InMemoryRegistry) Exists(ctx context.Context, filename string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.index[filename]

	return ok, nil
}

func (r *InMemoryRegistry) UpdateStatus(ctx context.Context, filename string, status entity.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[filename]
	if !ok {
		return entity.ErrNotFound
	}

	r.items[i].Status = status

	return nil
}

func (r *InMemoryRegistry) Delete(ctx context.Context, filename string, unpublish func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[filename]
	if !ok {
		return entity.ErrNotFound
	}

	if err := runHook(unpublish); err != nil {
		return err
	}

	r.items = append(r.items[:i], r.items[i+1:]...)
	delete(r.index, filename)
	for j := i; j < len(r.items); j++ {
		r.index[r.items[j].Filename] = j
	}

	return nil
}

func (r *InMemoryRegistry) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items), nil
}

func (r *InMemoryRegistry) Close() error {
	return nil
}

func (r *InMemoryRegistry) append(ds entity.Dataset) {
	r.index[ds.Filename] = len(r.items)
	r.items = append(r.items, ds)
}

func runHook(fn func() error) error {
	if fn == nil {
		return nil
	}
	return fn()
}
