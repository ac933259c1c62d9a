package pkgroutine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// DefaultMaxGoroutine is used when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 10

// ErrPanic is wrapped by the error recorded for a task that panicked.
var ErrPanic = errors.New("goroutine panicked")

// Manager runs named tasks in goroutines with a configurable concurrency limit.
//
// It collects errors returned by tasks (a recovered panic counts as an error)
// and can be waited on using Wait.
type Manager struct {
	mu   sync.Mutex
	errs []error
	wg   *sync.WaitGroup
	sema chan struct{}
}

// NewManager creates a new Manager with the provided maximum concurrency.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = DefaultMaxGoroutine
	}

	return &Manager{
		wg:   &sync.WaitGroup{},
		sema: make(chan struct{}, maxGoroutine),
	}
}

// Go schedules f to run in a goroutine once a slot is free.
//
// It blocks while the manager is at its concurrency limit. If pCtx is done
// before a slot frees up, f is never run and the cancellation is logged.
func (g *Manager) Go(pCtx context.Context, name string, f func(ctx context.Context) error) {
	select {
	case g.sema <- struct{}{}:
	case <-pCtx.Done():
		slog.WarnContext(pCtx, "goroutine canceled before start", "task", name, "because", pCtx.Err())
		return
	}

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() {
			<-g.sema

			if rvr := recover(); rvr != nil {
				slog.ErrorContext(pCtx, "panic occurred in goroutine", "task", name, "panic", rvr, "stack", string(debug.Stack()))
				g.record(fmt.Errorf("%w: %s: %v", ErrPanic, name, rvr))
			}
		}()

		select {
		case <-pCtx.Done():
			slog.WarnContext(pCtx, "goroutine canceled", "task", name, "because", pCtx.Err())
		default:
			if err := f(pCtx); err != nil {
				g.record(fmt.Errorf("%s: %w", name, err))
			}
		}
	}()
}

func (g *Manager) record(err error) {
	g.mu.Lock()
	g.errs = append(g.errs, err)
	g.mu.Unlock()
}

// Wait blocks until all scheduled goroutines finish and returns any collected errors.
func (g *Manager) Wait() error {
	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()

	return errors.Join(g.errs...)
}
