package event

import (
	"context"
	"errors"
	"sync"

	"github.com/shandysiswandi/gobacktest/internal/dataset/entity"
)

var ErrBusClosed = errors.New("event bus is closed")

// Bus is a bounded in-process queue of dataset events. Publish blocks while
// the buffer is full, until ctx is done.
type Bus struct {
	mu     sync.RWMutex
	closed bool
	ch     chan entity.DatasetEvent
}

func NewBus(buffer int) *Bus {
	if buffer < 1 {
		buffer = 1
	}

	return &Bus{
		ch: make(chan entity.DatasetEvent, buffer),
	}
}

func (b *Bus) Publish(ctx context.Context, event entity.DatasetEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}

	select {
	case b.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bus) Subscribe() <-chan entity.DatasetEvent {
	return b.ch
}

func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true
	close(b.ch)
}
