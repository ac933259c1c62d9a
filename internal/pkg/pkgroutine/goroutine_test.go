package pkgroutine

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewManagerDefaultMax(t *testing.T) {
	mgr := NewManager(0)
	if got := cap(mgr.sema); got != DefaultMaxGoroutine {
		t.Fatalf("expected cap %d, got %d", DefaultMaxGoroutine, got)
	}
}

func TestManagerCollectsErrors(t *testing.T) {
	mgr := NewManager(2)
	errOne := errors.New("one")
	errTwo := errors.New("two")

	mgr.Go(context.Background(), "first", func(ctx context.Context) error {
		return errOne
	})
	mgr.Go(context.Background(), "second", func(ctx context.Context) error {
		return errTwo
	})

	joined := mgr.Wait()
	if joined == nil {
		t.Fatalf("expected errors")
	}
	if !errors.Is(joined, errOne) || !errors.Is(joined, errTwo) {
		t.Fatalf("expected both errors, got %v", joined)
	}
	if !strings.Contains(joined.Error(), "first: one") {
		t.Fatalf("expected task name in error, got %q", joined.Error())
	}
}

func TestManagerRecordsPanics(t *testing.T) {
	mgr := NewManager(1)
	mgr.Go(context.Background(), "explode", func(ctx context.Context) error {
		panic("boom")
	})

	err := mgr.Wait()
	if !errors.Is(err, ErrPanic) {
		t.Fatalf("expected ErrPanic, got %v", err)
	}
}

func TestManagerLimitsConcurrency(t *testing.T) {
	mgr := NewManager(2)

	var running, peak int32
	for iter := 0; iter < 6; iter++ {
		mgr.Go(context.Background(), "work", func(ctx context.Context) error {
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return nil
		})
	}

	if err := mgr.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if peak > 2 {
		t.Fatalf("expected at most 2 concurrent tasks, saw %d", peak)
	}
}

func TestManagerSkipsCanceledContext(t *testing.T) {
	mgr := NewManager(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Bool
	mgr.Go(ctx, "never", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})

	if err := mgr.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ran.Load() {
		t.Fatal("expected task not to run on canceled context")
	}
}
