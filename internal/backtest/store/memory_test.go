package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shandysiswandi/gobacktest/internal/backtest/entity"
	"github.com/shandysiswandi/gobacktest/internal/pkg/pkgerror"
)

func TestInMemoryStoreCreateGetUpdate(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	if err := s.Create(ctx, entity.Backtest{ID: "a", Status: entity.StatusPending}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Create(ctx, entity.Backtest{ID: "a"}); err == nil {
		t.Fatal("expected conflict on duplicate id")
	}

	if err := s.Update(ctx, "a", func(bt *entity.Backtest) {
		bt.Status = entity.StatusCompleted
		bt.Metrics = &entity.Metrics{TotalTrades: 3}
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != entity.StatusCompleted || got.Metrics.TotalTrades != 3 {
		t.Fatalf("unexpected backtest %+v", got)
	}

	got.Metrics.TotalTrades = 99
	again, _ := s.Get(ctx, "a")
	if again.Metrics.TotalTrades != 3 {
		t.Fatal("get must return a copy")
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, pkgerror.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := s.Update(ctx, "missing", func(*entity.Backtest) {}); !errors.Is(err, pkgerror.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestInMemoryStoreListNewestFirst(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := s.Create(ctx, entity.Backtest{ID: fmt.Sprintf("bt-%d", i)}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := s.List(ctx, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].ID != "bt-4" || list[2].ID != "bt-2" {
		t.Fatalf("unexpected list %+v", list)
	}

	all, _ := s.List(ctx, 100)
	if len(all) != 5 {
		t.Fatalf("expected 5, got %d", len(all))
	}
}
