package event

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/shandysiswandi/gobacktest/internal/dataset/entity"
)

type Handler interface {
	Handle(ctx context.Context, event entity.DatasetEvent) error
}

type ConsumerConfig struct {
	Workers     int
	MaxRetries  int
	BaseBackoff time.Duration
}

// Consumer drains a Bus with a fixed pool of workers. Each event is handled
// at most once per EventID; failed attempts are retried with exponential
// backoff.
type Consumer struct {
	bus         *Bus
	handler     Handler
	workers     int
	maxRetries  int
	baseBackoff time.Duration
	seen        sync.Map
	wg          sync.WaitGroup
}

func NewConsumer(bus *Bus, handler Handler, cfg ConsumerConfig) *Consumer {
	workers := cfg.Workers
	if workers < 1 {
		workers = 2
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	baseBackoff := cfg.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = 100 * time.Millisecond
	}

	return &Consumer{
		bus:         bus,
		handler:     handler,
		workers:     workers,
		maxRetries:  maxRetries,
		baseBackoff: baseBackoff,
	}
}

func (c *Consumer) Start() {
	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker()
	}
}

// Stop closes the bus and waits for queued events to drain.
func (c *Consumer) Stop(ctx context.Context) error {
	if c.bus != nil {
		c.bus.Close()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Consumer) worker() {
	defer c.wg.Done()

	for event := range c.bus.Subscribe() {
		c.processEvent(event)
	}
}

func (c *Consumer) processEvent(event entity.DatasetEvent) {
	if c.handler == nil {
		return
	}

	if event.EventID != 0 {
		if _, loaded := c.seen.LoadOrStore(event.EventID, struct{}{}); loaded {
			slog.Info("skip duplicate dataset event", "event_id", event.EventID, "filename", event.Dataset.Filename)
			return
		}
	}

	ctx := context.Background()
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.baseBackoff
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0

	err := backoff.RetryNotify(
		func() error { return c.handler.Handle(ctx, event) },
		backoff.WithMaxRetries(policy, uint64(c.maxRetries)),
		func(err error, wait time.Duration) {
			slog.Warn("retrying dataset event", "event_id", event.EventID, "wait", wait, "error", err)
		},
	)
	if err != nil {
		slog.Error("failed to handle dataset event after retries",
			"event_id", event.EventID,
			"type", event.Type,
			"filename", event.Dataset.Filename,
			"error", err,
		)
	}
}
