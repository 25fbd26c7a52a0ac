// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/danielhkuo/livepoll/models"
)

// subscriberBuffer is the per-subscriber channel size. A subscriber that
// falls this far behind starts losing events.
const subscriberBuffer = 64

// Bus carries change events between the vote processor and everything that
// renders state: refresh loops, the notification feed, and overlay sockets.
type Bus interface {
	Publish(ctx context.Context, ev models.Event) error
	// Subscribe returns a channel that is closed when ctx is cancelled.
	Subscribe(ctx context.Context) (<-chan models.Event, error)
}

// MemoryBus fans events out to subscribers within one process.
type MemoryBus struct {
	mu   sync.RWMutex
	subs map[chan models.Event]struct{}
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[chan models.Event]struct{})}
}

// Publish never blocks; slow subscribers miss the event.
func (b *MemoryBus) Publish(ctx context.Context, ev models.Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			slog.Warn("dropping event for slow subscriber", "type", ev.Type)
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context) (<-chan models.Event, error) {
	ch := make(chan models.Event, subscriberBuffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		close(ch)
		b.mu.Unlock()
	}()

	return ch, nil
}

var _ Bus = (*MemoryBus)(nil)
